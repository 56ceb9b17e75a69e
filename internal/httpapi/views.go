package httpapi

import (
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/pricing"
)

type productView struct {
	domain.Product
	PriceLabel string `json:"price_label"`
}

type toppingView struct {
	domain.Topping
	PriceLabel string `json:"price_label"`
}

type productDetailView struct {
	Product  productView   `json:"product"`
	Toppings []toppingView `json:"toppings"`
}

type lineView struct {
	domain.CartLineItem
	LineTotal      int64  `json:"line_total"`
	LineTotalLabel string `json:"line_total_label"`
}

type cartView struct {
	Items      []lineView `json:"items"`
	ItemCount  int        `json:"item_count"`
	Total      int64      `json:"total"`
	TotalLabel string     `json:"total_label"`
}

type quoteView struct {
	ProductID  string        `json:"product_id"`
	Qty        int           `json:"qty"`
	Toppings   []toppingView `json:"toppings"`
	Total      int64         `json:"total"`
	TotalLabel string        `json:"total_label"`
}

type checkoutView struct {
	OrderID     string                 `json:"order_id"`
	State       domain.CheckoutState   `json:"state"`
	Transitions []domain.CheckoutState `json:"transitions"`
	Message     string                 `json:"message"`
	DispatchURL string                 `json:"dispatch_url"`
	Total       int64                  `json:"total"`
	TotalLabel  string                 `json:"total_label"`
}

func (h *Handler) productView(p domain.Product) productView {
	return productView{Product: p, PriceLabel: h.money.Format(p.Price)}
}

func (h *Handler) toppingViews(toppings []domain.Topping) []toppingView {
	views := make([]toppingView, len(toppings))
	for i, t := range toppings {
		views[i] = toppingView{Topping: t, PriceLabel: h.money.Format(t.Price)}
	}
	return views
}

// cartView строит представление из одного снимка позиций, чтобы итог совпадал со строками.
func (h *Handler) cartView(items []domain.CartLineItem) cartView {
	lines := make([]lineView, len(items))
	for i, item := range items {
		total := pricing.ItemTotal(item)
		lines[i] = lineView{CartLineItem: item, LineTotal: total, LineTotalLabel: h.money.Format(total)}
	}
	total := pricing.CartTotal(items)
	return cartView{
		Items:      lines,
		ItemCount:  pricing.ItemCount(items),
		Total:      total,
		TotalLabel: h.money.Format(total),
	}
}
