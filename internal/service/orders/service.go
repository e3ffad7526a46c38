package orders

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
)

// Service реализует рабочий процесс оформления заказа поверх протокола
// резервирования остатка: блокировка строки товара, декремент и вставка
// заказа выполняются в одной транзакции хранилища.
type Service struct {
	runner domain.TxRunner
	orders domain.OrderRepository
	logger *log.Entry

	metrics       *metrics.OrderMetrics
	kafkaProducer *kafka.Producer // опциональный producer для событий order.placed
}

// NewService конструирует рабочий экземпляр сервиса заказов.
func NewService(runner domain.TxRunner, orders domain.OrderRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "orders")
	}
	return &Service{
		runner:  runner,
		orders:  orders,
		logger:  logger,
		metrics: metrics.NewOrderMetrics(),
	}
}

// NewServiceWithKafka конструирует сервис, публикующий события заказов в Kafka.
func NewServiceWithKafka(runner domain.TxRunner, orders domain.OrderRepository, producer *kafka.Producer, logger *log.Entry) *Service {
	s := NewService(runner, orders, logger)
	s.kafkaProducer = producer
	return s
}

// NewServiceWithoutMetrics конструирует сервис без метрик (для тестов).
func NewServiceWithoutMetrics(runner domain.TxRunner, orders domain.OrderRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "orders")
	}
	return &Service{
		runner: runner,
		orders: orders,
		logger: logger,
	}
}

// List возвращает все заказы.
func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	return s.orders.List(ctx)
}

// ListByProduct возвращает заказы одного товара: обратная ссылка
// товар -> заказы как производная выборка, без коллекции на товаре.
func (s *Service) ListByProduct(ctx context.Context, productID int64) ([]domain.Order, error) {
	return s.orders.ListByProduct(ctx, productID)
}

// PlaceOrder атомарно резервирует единицу товара и создаёт заказ.
// Доменные ошибки ErrProductNotFound и ErrOutOfStock доходят до границы
// без изменений; любой сбой откатывает и декремент, и вставку.
func (s *Service) PlaceOrder(ctx context.Context, productID int64, customerName string) (domain.Order, error) {
	start := time.Now()
	if s.metrics != nil {
		s.metrics.RecordReservationStarted()
	}
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordReservationFinished()
			s.metrics.RecordPlaceDuration(time.Since(start))
		}
	}()

	var placed domain.Order
	err := s.runner.WithinTx(ctx, func(tx domain.OrderTx) error {
		outcome, product, err := tx.ReserveStock(ctx, productID)
		if err != nil {
			return err
		}

		switch outcome {
		case domain.OutcomeNotFound:
			return domain.ErrProductNotFound
		case domain.OutcomeOutOfStock:
			return domain.ErrOutOfStock
		}

		placed, err = tx.InsertOrder(ctx, domain.Order{
			CustomerName: customerName,
			Product:      product,
		})
		return err
	})
	if err != nil {
		s.recordRejection(err)
		s.publishOrderRejected(productID, customerName, err)
		return domain.Order{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordOrderPlaced()
	}
	s.publishOrderPlaced(placed)

	return placed, nil
}

func (s *Service) recordRejection(err error) {
	if s.metrics == nil {
		return
	}
	switch {
	case errors.Is(err, domain.ErrOutOfStock):
		s.metrics.RecordOrderRejected(metrics.RejectReasonOutOfStock)
	case errors.Is(err, domain.ErrProductNotFound):
		s.metrics.RecordOrderRejected(metrics.RejectReasonNotFound)
	default:
		s.metrics.RecordOrderRejected(metrics.RejectReasonInternal)
	}
}

// publishOrderRejected отправляет событие бизнес-отказа. Внутренние сбои
// событием не являются и не публикуются.
func (s *Service) publishOrderRejected(productID int64, customerName string, cause error) {
	if s.kafkaProducer == nil {
		return
	}

	var reason string
	switch {
	case errors.Is(cause, domain.ErrOutOfStock):
		reason = metrics.RejectReasonOutOfStock
	case errors.Is(cause, domain.ErrProductNotFound):
		reason = metrics.RejectReasonNotFound
	default:
		return
	}

	if err := s.kafkaProducer.PublishOrderRejected(productID, customerName, reason); err != nil {
		s.logger.WithError(err).WithField("product_id", productID).Warn("failed to publish order.rejected event")
	}
}

// publishOrderPlaced отправляет событие после коммита. Ошибка публикации
// только логируется: заказ уже зафиксирован, и результат вызова не меняется.
func (s *Service) publishOrderPlaced(order domain.Order) {
	if s.kafkaProducer == nil {
		return
	}
	if err := s.kafkaProducer.PublishOrderPlaced(order.ID, order.Product.ID, order.CustomerName, order.Product.Stock); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to publish order.placed event")
	}
}
