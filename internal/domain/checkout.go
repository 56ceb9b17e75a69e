package domain

// CheckoutState описывает состояние попытки оформления заказа.
type CheckoutState string

const (
	CheckoutStateIdle       CheckoutState = "idle"
	CheckoutStateValidating CheckoutState = "validating"
	// CheckoutStateRejected — пустая корзина или не заполнены обязательные поля.
	CheckoutStateRejected  CheckoutState = "rejected"
	CheckoutStateFormatted CheckoutState = "formatted"
	// CheckoutStateDispatched — терминальное состояние попытки.
	CheckoutStateDispatched CheckoutState = "dispatched"
)

// Customer — поля, которые покупатель вводит при оформлении.
type Customer struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	PaymentMethod string `json:"payment_method"`
}

// Order — отформатированный заказ, готовый к передаче во внешний канал.
type Order struct {
	ID        string         `json:"id"`
	Customer  Customer       `json:"customer"`
	Items     []CartLineItem `json:"items"`
	Total     int64          `json:"total"`
	Message   string         `json:"message"`
	Recipient string         `json:"recipient,omitempty"`
}
