package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
	"github.com/vladislavdragonenkov/storefront/internal/storage/postgres"
)

// Dependencies содержит слой хранения, от которого собираются сервисы.
// Backend сообщает выбранную реализацию ("memory" или "postgres").
type Dependencies struct {
	Products domain.ProductRepository
	Orders   domain.OrderRepository
	Runner   domain.TxRunner

	Backend string
	Ping    func(ctx context.Context) error
	Close   func() error
}

// initStorage выбирает реализацию хранилища: при пустом DSN поднимается
// in-memory хранилище, иначе открывается PostgreSQL и применяются миграции.
func initStorage(ctx context.Context, dsn string, logger *log.Entry) (*Dependencies, error) {
	if dsn == "" {
		store := memory.NewStore()
		logger.Info("postgres DSN is empty, using in-memory storage")
		return &Dependencies{
			Products: store.Products(),
			Orders:   store.Orders(),
			Runner:   store,
			Backend:  "memory",
			Ping:     store.Ping,
			Close:    func() error { return nil },
		}, nil
	}

	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres storage: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	logger.Info("postgres storage initialized, schema is up to date")
	return &Dependencies{
		Products: postgres.NewProductRepository(store),
		Orders:   postgres.NewOrderRepository(store),
		Runner:   store,
		Backend:  "postgres",
		Ping:     store.Ping,
		Close:    store.Close,
	}, nil
}
