package kafka

import (
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/pricing"
)

// EventType определяет тип события
type EventType string

const (
	// Order события
	EventTypeOrderDispatched EventType = "order.dispatched"
)

// Topics для Kafka
const (
	TopicCartEvents  = "storefront.cart.events"
	TopicOrderEvents = "storefront.order.events"
)

// CartEvent — сообщение об изменении корзины.
type CartEvent struct {
	EventType EventType             `json:"event_type"`
	CartKey   string                `json:"cart_key"`
	LineID    string                `json:"line_id,omitempty"`
	Lines     int                   `json:"lines"`
	Items     int                   `json:"items"`
	Total     int64                 `json:"total"`
	Cart      []domain.CartLineItem `json:"cart"`
	Timestamp time.Time             `json:"timestamp"`
}

// OrderEvent — сообщение о переданном заказе.
type OrderEvent struct {
	EventType     EventType             `json:"event_type"`
	OrderID       string                `json:"order_id"`
	CustomerName  string                `json:"customer_name"`
	Address       string                `json:"address"`
	PaymentMethod string                `json:"payment_method,omitempty"`
	Recipient     string                `json:"recipient,omitempty"`
	Items         []domain.CartLineItem `json:"items"`
	Total         int64                 `json:"total"`
	Message       string                `json:"message"`
	Timestamp     time.Time             `json:"timestamp"`
}

// NewCartEvent создаёт сообщение из события корзины.
func NewCartEvent(cartKey string, event domain.CartEvent) *CartEvent {
	items := event.Cart.Items
	if items == nil {
		items = []domain.CartLineItem{}
	}
	ts := event.Occurred
	if ts.IsZero() {
		ts = time.Now()
	}
	return &CartEvent{
		EventType: EventType(event.Type),
		CartKey:   cartKey,
		LineID:    event.LineID,
		Lines:     len(items),
		Items:     pricing.ItemCount(items),
		Total:     pricing.CartTotal(items),
		Cart:      items,
		Timestamp: ts.UTC(),
	}
}

// NewOrderEvent создаёт сообщение о заказе
func NewOrderEvent(order domain.Order) *OrderEvent {
	return &OrderEvent{
		EventType:     EventTypeOrderDispatched,
		OrderID:       order.ID,
		CustomerName:  order.Customer.Name,
		Address:       order.Customer.Address,
		PaymentMethod: order.Customer.PaymentMethod,
		Recipient:     order.Recipient,
		Items:         order.Items,
		Total:         order.Total,
		Message:       order.Message,
		Timestamp:     time.Now().UTC(),
	}
}
