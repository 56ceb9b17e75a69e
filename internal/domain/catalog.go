package domain

// Product описывает позицию каталога витрины.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	// Price — цена за единицу в минимальных денежных единицах.
	Price    int64  `json:"price"`
	Category string `json:"category"`
	Image    string `json:"image"`
	// MaxOrder ограничивает количество в одной позиции корзины; 0 — без ограничения.
	MaxOrder int `json:"max_order,omitempty"`
	// Toppings — идентификаторы допустимых для товара топпингов.
	Toppings []string `json:"toppings"`
}

// HasMaxOrder сообщает, задан ли лимит количества для товара.
func (p Product) HasMaxOrder() bool {
	return p.MaxOrder > 0
}

// AllowsTopping проверяет, входит ли топпинг в список допустимых для товара.
func (p Product) AllowsTopping(toppingID string) bool {
	for _, id := range p.Toppings {
		if id == toppingID {
			return true
		}
	}
	return false
}

// Validate проверяет инварианты товара после загрузки или редактирования.
func (p Product) Validate() []error {
	var errs []error
	if p.ID == "" {
		errs = append(errs, ErrProductIDRequired)
	}
	if p.Price < 0 {
		errs = append(errs, ErrPriceNegative)
	}
	if p.MaxOrder < 0 {
		errs = append(errs, ErrMaxOrderInvalid)
	}
	return errs
}

// Topping — дополнительная опция к товару.
type Topping struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// Validate проверяет инварианты топпинга.
func (t Topping) Validate() []error {
	var errs []error
	if t.ID == "" {
		errs = append(errs, ErrToppingIDRequired)
	}
	if t.Price < 0 {
		errs = append(errs, ErrPriceNegative)
	}
	return errs
}

// StoreConfig — настройки магазина из store.json.
type StoreConfig struct {
	Name   string `json:"name"`
	Slogan string `json:"slogan"`
	// WhatsApp — номер получателя заказов.
	WhatsApp string `json:"whatsapp"`
	Logo     string `json:"logo,omitempty"`
	Favicon  string `json:"favicon,omitempty"`
}
