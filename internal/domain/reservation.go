package domain

import "context"

// ReservationOutcome отражает результат попытки резервирования единицы товара.
type ReservationOutcome string

const (
	// OutcomeReserved — остаток уменьшен на единицу, резерв удался.
	OutcomeReserved ReservationOutcome = "reserved"
	// OutcomeOutOfStock — остаток равен нулю, состояние товара не изменено.
	OutcomeOutOfStock ReservationOutcome = "out_of_stock"
	// OutcomeNotFound — товара с таким ID не существует.
	OutcomeNotFound ReservationOutcome = "not_found"
)

// OrderTx — операции, доступные внутри одной атомарной транзакции оформления заказа.
// Резервирование и вставка заказа либо фиксируются вместе, либо вместе откатываются.
type OrderTx interface {
	// ReserveStock берёт эксклюзивную блокировку на строку товара и при
	// положительном остатке уменьшает его на единицу. Блокировка удерживается
	// до завершения объемлющей транзакции; попытки по одному товару строго
	// сериализуются, разные товары друг друга не блокируют.
	ReserveStock(ctx context.Context, productID int64) (ReservationOutcome, Product, error)
	// InsertOrder сохраняет заказ и возвращает его с присвоенным ID.
	InsertOrder(ctx context.Context, order Order) (Order, error)
}

// TxRunner выполняет функцию внутри транзакции хранилища.
// Ошибка из fn откатывает транзакцию целиком.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx OrderTx) error) error
}
