package domain

import (
	"errors"
	"fmt"
)

var (
	// Ошибка отсутствующего идентификатора товара.
	ErrProductIDRequired = errors.New("product id is required")
	// Ошибка отсутствующего идентификатора топпинга.
	ErrToppingIDRequired = errors.New("topping id is required")
	// Ошибка отрицательной цены товара или топпинга.
	ErrPriceNegative = errors.New("price must be non-negative")
	// Ошибка отрицательного лимита max_order.
	ErrMaxOrderInvalid = errors.New("max_order must be positive when set")
	// ErrProductNotFound возвращается, если товара нет в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrToppingNotFound возвращается, если топпинга нет в каталоге.
	ErrToppingNotFound = errors.New("topping not found")
	// ErrCatalogUnavailable — каталог не загрузился, витрина работает в деградированном режиме.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// Ошибка отсутствующего идентификатора позиции корзины.
	ErrLineIDRequired = errors.New("line id is required")
	// Ошибка повторяющегося идентификатора позиции корзины.
	ErrLineIDDuplicate = errors.New("line id is duplicated")
	// ErrQuantityOutOfRange — количество вне диапазона [1, max_order].
	ErrQuantityOutOfRange = errors.New("quantity out of range")
	// ErrToppingNotEligible — топпинг не разрешён для товара.
	ErrToppingNotEligible = errors.New("topping is not eligible for product")
	// ErrDuplicateTopping — топпинг выбран дважды; топпинги позиции образуют множество.
	ErrDuplicateTopping = errors.New("topping selected more than once")

	// ErrStorageKeyNotFound возвращается хранилищем, если ключ ещё не записан.
	ErrStorageKeyNotFound = errors.New("storage key not found")

	// ErrValidation — базовая ошибка валидации оформления заказа.
	ErrValidation = errors.New("validation failed")
	// ErrEmptyCart — попытка оформить пустую корзину.
	ErrEmptyCart = fmt.Errorf("%w: cart is empty", ErrValidation)
	// ErrCustomerNameRequired — не указано имя покупателя.
	ErrCustomerNameRequired = fmt.Errorf("%w: customer name is required", ErrValidation)
	// ErrCustomerAddressRequired — не указан адрес доставки.
	ErrCustomerAddressRequired = fmt.Errorf("%w: customer address is required", ErrValidation)
)

// LoadFailure описывает ошибку загрузки одного из ресурсов каталога.
type LoadFailure struct {
	Resource string
	Err      error
}

func (e *LoadFailure) Error() string {
	return fmt.Sprintf("load %s: %v", e.Resource, e.Err)
}

func (e *LoadFailure) Unwrap() error {
	return e.Err
}

// IsLoadFailure проверяет, является ли ошибка ошибкой загрузки каталога.
func IsLoadFailure(err error) bool {
	var lf *LoadFailure
	return errors.As(err, &lf)
}

// IsValidationFailure проверяет, является ли ошибка ошибкой валидации оформления.
func IsValidationFailure(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsBoundsRejection проверяет, относится ли ошибка к нарушению границ количества.
func IsBoundsRejection(err error) bool {
	return errors.Is(err, ErrQuantityOutOfRange)
}
