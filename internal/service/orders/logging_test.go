package orders_test

import (
	"context"
	"testing"

	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/orders"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

func newLoggingService(t *testing.T) (*orders.LoggingService, *memory.Store, *logtest.Hook) {
	t.Helper()

	baseLogger, hook := logtest.NewNullLogger()
	logger := baseLogger.WithField("component", "orders-test")

	store := memory.NewStore()
	svc := orders.NewServiceWithoutMetrics(store, store.Orders(), logger)
	return orders.NewLoggingService(svc, logger), store, hook
}

func TestLoggingService_PlaceOrderSuccess(t *testing.T) {
	svc, store, hook := newLoggingService(t)
	ctx := context.Background()

	product, err := store.Products().Create(ctx, domain.Product{Name: "widget", Stock: 1})
	require.NoError(t, err)

	order, err := svc.PlaceOrder(ctx, product.ID, "alice")
	require.NoError(t, err)
	require.NotZero(t, order.ID)

	entries := hook.AllEntries()
	require.Len(t, entries, 2)

	started := entries[0]
	require.Equal(t, "started processing order", started.Message)
	require.Equal(t, product.ID, started.Data["product_id"])
	require.Equal(t, "alice", started.Data["customer_name"])

	finished := entries[1]
	require.Equal(t, "order processed", finished.Message)
	require.Contains(t, finished.Data, "elapsed_ms")
	require.GreaterOrEqual(t, finished.Data["elapsed_ms"].(int64), int64(0))
}

func TestLoggingService_PlaceOrderError(t *testing.T) {
	svc, _, hook := newLoggingService(t)
	ctx := context.Background()

	_, err := svc.PlaceOrder(ctx, 9999, "alice")
	require.ErrorIs(t, err, domain.ErrProductNotFound)

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	require.Equal(t, log.ErrorLevel, entries[1].Level)
	require.Equal(t, "exception in processing order", entries[1].Message)
	require.ErrorIs(t, entries[1].Data[log.ErrorKey].(error), domain.ErrProductNotFound)
}

// Декоратор только наблюдает: значения и ошибки проходят без изменений.
func TestLoggingService_DoesNotAlterSemantics(t *testing.T) {
	svc, store, _ := newLoggingService(t)
	ctx := context.Background()

	product, err := store.Products().Create(ctx, domain.Product{Name: "widget", Stock: 0})
	require.NoError(t, err)

	_, err = svc.PlaceOrder(ctx, product.ID, "bob")
	require.ErrorIs(t, err, domain.ErrOutOfStock)

	listed, err := svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, listed)
}
