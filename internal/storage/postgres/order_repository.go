package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

const orderSelect = `
	SELECT o.id, o.customer_name, o.created_at,
	       p.id, p.name, p.stock, p.created_at, p.updated_at
	FROM orders o
	JOIN products p ON p.id = o.product_id
`

func (r *orderRepository) List(ctx context.Context) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, orderSelect+` ORDER BY o.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

// ListByProduct — производный запрос «заказы товара X»; обратная связь
// не хранится на стороне товара.
func (r *orderRepository) ListByProduct(ctx context.Context, productID int64) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, orderSelect+` WHERE o.product_id = $1 ORDER BY o.id ASC`, productID)
	if err != nil {
		return nil, fmt.Errorf("list orders by product: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

func scanOrders(rows *sql.Rows) ([]domain.Order, error) {
	orders := make([]domain.Order, 0)
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID, &order.CustomerName, &order.CreatedAt,
			&order.Product.ID, &order.Product.Name, &order.Product.Stock,
			&order.Product.CreatedAt, &order.Product.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)
