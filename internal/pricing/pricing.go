// Package pricing считает стоимость позиций и корзины в минимальных денежных единицах.
package pricing

import "github.com/vladislavdragonenkov/storefront/internal/domain"

// LineTotal возвращает (цена товара + сумма цен топпингов) × qty.
// Некорректное qty отсекается на границе корзины.
func LineTotal(product domain.Product, toppings []domain.Topping, qty int) int64 {
	return lineTotal(product.Price, toppings, qty)
}

// ItemTotal считает стоимость позиции по её снимку цены и топпингов.
func ItemTotal(item domain.CartLineItem) int64 {
	return lineTotal(item.Price, item.Toppings, item.Qty)
}

// CartTotal — сумма ItemTotal по всем позициям.
func CartTotal(items []domain.CartLineItem) int64 {
	var total int64
	for _, item := range items {
		total += ItemTotal(item)
	}
	return total
}

// ItemCount — сумма количеств по всем позициям.
func ItemCount(items []domain.CartLineItem) int {
	var count int
	for _, item := range items {
		count += item.Qty
	}
	return count
}

// ToppingsTotal — сумма цен выбранных топпингов.
func ToppingsTotal(toppings []domain.Topping) int64 {
	var sum int64
	for _, t := range toppings {
		sum += t.Price
	}
	return sum
}

func lineTotal(unitPrice int64, toppings []domain.Topping, qty int) int64 {
	return (unitPrice + ToppingsTotal(toppings)) * int64(qty)
}
