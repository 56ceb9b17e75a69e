package cart

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/pricing"
)

// Draft — черновик позиции в карточке товара: количество и выбранные топпинги
// до добавления в корзину. Отбрасывается после Submit или закрытия карточки.
type Draft struct {
	product  domain.Product
	eligible []domain.Topping
	qty      int
	selected []domain.Topping
}

// NewDraft открывает черновик с количеством 1 и без топпингов.
func NewDraft(product domain.Product, eligible []domain.Topping) *Draft {
	return &Draft{
		product:  product,
		eligible: append([]domain.Topping(nil), eligible...),
		qty:      1,
	}
}

// Product возвращает товар черновика.
func (d *Draft) Product() domain.Product {
	return d.product
}

// Qty возвращает текущее количество.
func (d *Draft) Qty() int {
	return d.qty
}

// AdjustQty сдвигает количество на delta с ограничением [1, max_order].
func (d *Draft) AdjustQty(delta int) int {
	return d.SetQty(d.qty + delta)
}

// SetQty выставляет количество с ограничением [1, max_order].
func (d *Draft) SetQty(qty int) int {
	if qty < 1 {
		qty = 1
	}
	if d.product.HasMaxOrder() && qty > d.product.MaxOrder {
		qty = d.product.MaxOrder
	}
	d.qty = qty
	return d.qty
}

// ToggleTopping включает или выключает топпинг и возвращает новое состояние.
// Один топпинг не может быть выбран дважды.
func (d *Draft) ToggleTopping(id string) (bool, error) {
	for i, t := range d.selected {
		if t.ID == id {
			d.selected = append(d.selected[:i], d.selected[i+1:]...)
			return false, nil
		}
	}
	for _, t := range d.eligible {
		if t.ID == id {
			d.selected = append(d.selected, t)
			return true, nil
		}
	}
	return false, fmt.Errorf("%w: %s", domain.ErrToppingNotEligible, id)
}

// Selected возвращает выбранные топпинги в порядке выбора.
func (d *Draft) Selected() []domain.Topping {
	return append([]domain.Topping(nil), d.selected...)
}

// Total — стоимость черновика с учётом количества и топпингов.
func (d *Draft) Total() int64 {
	return pricing.LineTotal(d.product, d.selected, d.qty)
}

// Submit добавляет черновик в корзину.
func (d *Draft) Submit(ctx context.Context, store *Store) (domain.CartLineItem, error) {
	return store.Add(ctx, d.product, d.qty, d.selected)
}
