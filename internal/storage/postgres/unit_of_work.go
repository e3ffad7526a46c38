package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const (
	// txTimeout ограничивает транзакцию оформления целиком, включая ожидание
	// строчной блокировки позади других резервирований того же товара.
	txTimeout = 10 * time.Second
	// lockWaitTimeout страхует от зависшей чужой транзакции: по истечении
	// Postgres прерывает ожидание блокировки, и транзакция откатывается.
	lockWaitTimeout = "5s"
)

// WithinTx выполняет fn в одной транзакции БД. Строчная блокировка,
// взятая ReserveStock через SELECT ... FOR UPDATE, удерживается до
// коммита или отката, что сериализует резервирования одного товара.
func (s *Store) WithinTx(ctx context.Context, fn func(tx domain.OrderTx) error) error {
	ctx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin order tx: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%s'", lockWaitTimeout)); err != nil {
		return fmt.Errorf("set lock timeout: %w", err)
	}

	if err := fn(&orderTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order tx: %w", err)
	}
	committed = true
	return nil
}

// orderTx реализует протокол резервирования поверх *sql.Tx.
type orderTx struct {
	tx *sql.Tx
}

// ReserveStock блокирует строку товара и уменьшает остаток на единицу,
// если он положителен. Конкурент, ждущий ту же строку, увидит остаток
// только после коммита или отката текущей транзакции.
func (t *orderTx) ReserveStock(ctx context.Context, productID int64) (domain.ReservationOutcome, domain.Product, error) {
	var product domain.Product
	err := t.tx.QueryRowContext(ctx, `
		SELECT id, name, stock, created_at, updated_at
		FROM products
		WHERE id = $1
		FOR UPDATE
	`, productID).Scan(
		&product.ID, &product.Name, &product.Stock,
		&product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.OutcomeNotFound, domain.Product{}, nil
		}
		return "", domain.Product{}, fmt.Errorf("lock product row: %w", err)
	}

	if product.Stock <= 0 {
		return domain.OutcomeOutOfStock, product, nil
	}

	err = t.tx.QueryRowContext(ctx, `
		UPDATE products
		SET stock = stock - 1,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING stock, updated_at
	`, productID).Scan(&product.Stock, &product.UpdatedAt)
	if err != nil {
		return "", domain.Product{}, fmt.Errorf("decrement stock: %w", err)
	}

	return domain.OutcomeReserved, product, nil
}

// InsertOrder сохраняет заказ в той же транзакции, что и декремент остатка.
func (t *orderTx) InsertOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO orders (customer_name, product_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, order.CustomerName, order.Product.ID).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}

	return order, nil
}

var _ domain.TxRunner = (*Store)(nil)
var _ domain.OrderTx = (*orderTx)(nil)
