package domain

import "time"

// Order фиксирует успешное резервирование одной единицы товара под клиента.
// Запись создаётся только рабочим процессом оформления заказа и после
// коммита транзакции никогда не изменяется.
type Order struct {
	ID           int64
	CustomerName string
	// Product — снимок товара на момент оформления заказа.
	// Связь товар→заказы является производным запросом, а не владением.
	Product   Product
	CreatedAt time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerName == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if o.Product.ID == 0 {
		errs = append(errs, ErrProductIDRequired)
	}

	return errs
}
