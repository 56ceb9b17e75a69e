// Package checkout превращает корзину и данные покупателя в текстовый заказ
// и передаёт его во внешний канал.
package checkout

import (
	"strconv"
	"strings"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/pricing"
)

const (
	greeting      = "Halo, saya ingin pesan:"
	itemBullet    = "🍪"
	toppingPrefix = "   + Topping: "
	labelTotal    = "Total: "
	labelName     = "Nama: "
	labelAddress  = "Alamat: "
	labelPayment  = "Metode Pembayaran: "
)

// Formatter собирает человекочитаемое сообщение заказа.
type Formatter struct {
	money *pricing.Formatter
}

// NewFormatter создаёт форматтер с заданным форматом денежных сумм.
func NewFormatter(money *pricing.Formatter) *Formatter {
	if money == nil {
		money = pricing.MustFormatter(pricing.DefaultFormatterConfig())
	}
	return &Formatter{money: money}
}

// Validate проверяет, что заказ можно оформить.
// Строка из одних пробелов считается пустой.
func Validate(items []domain.CartLineItem, customer domain.Customer) error {
	switch {
	case len(items) == 0:
		return domain.ErrEmptyCart
	case strings.TrimSpace(customer.Name) == "":
		return domain.ErrCustomerNameRequired
	case strings.TrimSpace(customer.Address) == "":
		return domain.ErrCustomerAddressRequired
	}
	return nil
}

// Format возвращает детерминированный многострочный текст заказа
// или ошибку валидации. Разметка не экранируется: канал текстовый.
func (f *Formatter) Format(items []domain.CartLineItem, customer domain.Customer) (string, error) {
	if err := Validate(items, customer); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(greeting)
	b.WriteString("\n\n")

	for _, item := range items {
		b.WriteString(itemBullet + " " + item.Name + " x" + strconv.Itoa(item.Qty) + " — " + f.money.Format(pricing.ItemTotal(item)) + "\n")
		if len(item.Toppings) > 0 {
			names := make([]string, len(item.Toppings))
			for i, t := range item.Toppings {
				names[i] = t.Name
			}
			b.WriteString(toppingPrefix + strings.Join(names, ", ") + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(labelTotal + f.money.Format(pricing.CartTotal(items)) + "\n\n")
	b.WriteString(labelName + strings.TrimSpace(customer.Name) + "\n")
	b.WriteString(labelAddress + strings.TrimSpace(customer.Address) + "\n")
	b.WriteString(labelPayment + strings.TrimSpace(customer.PaymentMethod))

	return b.String(), nil
}
