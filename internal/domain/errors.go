package domain

import "errors"

var (
	// ErrProductNotFound возвращается, если товар с указанным ID не существует.
	ErrProductNotFound = errors.New("product not found")
	// ErrOutOfStock — бизнес-ошибка: товар существует, но остаток равен нулю.
	ErrOutOfStock = errors.New("product is out of stock")
	// ErrStockBelowZero возвращается, если корректировка остатка увела бы его ниже нуля.
	ErrStockBelowZero = errors.New("stock adjustment would drive stock below zero")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// Ошибка отсутствующего имени клиента в заказе.
	ErrCustomerRequired = errors.New("customer_name is required")
	// Ошибка отсутствующего имени товара.
	ErrProductNameRequired = errors.New("product_name is required")
	// Ошибка отсутствующей ссылки на товар в заказе.
	ErrProductIDRequired = errors.New("product_id is required")
	// Ошибка отрицательного остатка товара.
	ErrStockNegative = errors.New("stock must be non-negative")
)

// IsDomainError сообщает, относится ли ошибка к бизнес-ошибкам,
// которые граница HTTP транслирует в конкретные статусы.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrOutOfStock) ||
		errors.Is(err, ErrStockBelowZero)
}
