package domain

import "time"

// CartEventType — тип изменения корзины.
type CartEventType string

const (
	CartEventItemAdded       CartEventType = "cart.item_added"
	CartEventQuantityChanged CartEventType = "cart.quantity_changed"
	CartEventItemRemoved     CartEventType = "cart.item_removed"
	CartEventCleared         CartEventType = "cart.cleared"
)

// CartEvent рассылается подписчикам после успешного сохранения корзины.
type CartEvent struct {
	Type   CartEventType
	LineID string
	// Cart — снимок корзины после изменения.
	Cart     Cart
	Occurred time.Time
}
