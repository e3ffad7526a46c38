package orders

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// LoggingService — явный декоратор вокруг Service, логирующий вход в
// PlaceOrder, аргументы, длительность в миллисекундах и сообщение ошибки.
// Наблюдает, не вмешиваясь: возвращаемые значения и семантика ошибок
// проходят сквозь него без изменений.
type LoggingService struct {
	inner  *Service
	logger *log.Entry
}

// NewLoggingService оборачивает сервис заказов декоратором логирования.
func NewLoggingService(inner *Service, logger *log.Entry) *LoggingService {
	if logger == nil {
		logger = log.New().WithField("component", "orders")
	}
	return &LoggingService{
		inner:  inner,
		logger: logger,
	}
}

// List делегируется без дополнительного логирования.
func (s *LoggingService) List(ctx context.Context) ([]domain.Order, error) {
	return s.inner.List(ctx)
}

// ListByProduct делегируется без дополнительного логирования.
func (s *LoggingService) ListByProduct(ctx context.Context, productID int64) ([]domain.Order, error) {
	return s.inner.ListByProduct(ctx, productID)
}

// PlaceOrder логирует обработку заказа вокруг вызова внутреннего сервиса.
func (s *LoggingService) PlaceOrder(ctx context.Context, productID int64, customerName string) (domain.Order, error) {
	entry := s.logger.WithFields(log.Fields{
		"method":        "PlaceOrder",
		"product_id":    productID,
		"customer_name": customerName,
	})
	entry.Info("started processing order")

	start := time.Now()
	order, err := s.inner.PlaceOrder(ctx, productID, customerName)
	if err != nil {
		entry.WithError(err).Error("exception in processing order")
		return order, err
	}

	entry.WithField("elapsed_ms", time.Since(start).Milliseconds()).Info("order processed")
	return order, nil
}
