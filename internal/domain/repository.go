package domain

import "context"

// ProductRepository описывает требования к хранилищу товаров.
type ProductRepository interface {
	// Create сохраняет новый товар и возвращает его с присвоенным ID.
	Create(ctx context.Context, product Product) (Product, error)
	// List возвращает все товары в порядке, определяемом хранилищем.
	List(ctx context.Context) ([]Product, error)
	// Get возвращает товар по идентификатору или ErrProductNotFound, если его нет.
	Get(ctx context.Context, id int64) (Product, error)
	// AdjustStock добавляет delta к остатку товара. Возвращает ErrProductNotFound,
	// если товара нет, и ErrStockBelowZero, если остаток стал бы отрицательным.
	AdjustStock(ctx context.Context, id int64, delta int64) (Product, error)
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// List возвращает все заказы вместе со снимками их товаров.
	List(ctx context.Context) ([]Order, error)
	// ListByProduct возвращает заказы по конкретному товару (производный запрос).
	ListByProduct(ctx context.Context, productID int64) ([]Order, error)
}
