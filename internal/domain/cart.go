package domain

// CartLineItem — позиция корзины со снимком полей товара на момент добавления.
type CartLineItem struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Image     string `json:"image"`
	// MaxOrder фиксирует лимит товара на момент добавления; используется,
	// если товар исчез из каталога.
	MaxOrder int       `json:"max_order,omitempty"`
	Qty      int       `json:"qty"`
	Toppings []Topping `json:"toppings"`
}

// Clone возвращает копию позиции, не разделяющую срез топпингов.
func (i CartLineItem) Clone() CartLineItem {
	if i.Toppings != nil {
		toppings := make([]Topping, len(i.Toppings))
		copy(toppings, i.Toppings)
		i.Toppings = toppings
	}
	return i
}

// Cart — упорядоченный список позиций; порядок добавления важен для отображения.
type Cart struct {
	Items []CartLineItem `json:"items"`
}

// Clone возвращает глубокую копию корзины.
func (c Cart) Clone() Cart {
	items := make([]CartLineItem, len(c.Items))
	for i, item := range c.Items {
		items[i] = item.Clone()
	}
	return Cart{Items: items}
}

// IsEmpty сообщает, что в корзине нет позиций.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ValidateInvariants проверяет инварианты позиций корзины.
func (c Cart) ValidateInvariants() []error {
	var errs []error
	seen := make(map[string]struct{}, len(c.Items))
	for _, item := range c.Items {
		if item.ID == "" {
			errs = append(errs, ErrLineIDRequired)
		}
		if _, dup := seen[item.ID]; dup {
			errs = append(errs, ErrLineIDDuplicate)
		}
		seen[item.ID] = struct{}{}
		if item.Qty < 1 || (item.MaxOrder > 0 && item.Qty > item.MaxOrder) {
			errs = append(errs, ErrQuantityOutOfRange)
		}
		if item.Price < 0 {
			errs = append(errs, ErrPriceNegative)
		}
	}
	return errs
}
