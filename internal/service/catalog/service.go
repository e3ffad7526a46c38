package catalog

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
)

// Service реализует операции управления каталогом: список, создание,
// корректировка остатка. Путь корректировки аддитивен и не проходит через
// протокол резервирования.
type Service struct {
	products domain.ProductRepository
	logger   *log.Entry

	kafkaProducer *kafka.Producer // опциональный producer для событий каталога
}

// NewService конструирует сервис каталога.
func NewService(products domain.ProductRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "catalog")
	}
	return &Service{
		products: products,
		logger:   logger,
	}
}

// NewServiceWithKafka конструирует сервис, публикующий события каталога в Kafka.
func NewServiceWithKafka(products domain.ProductRepository, producer *kafka.Producer, logger *log.Entry) *Service {
	s := NewService(products, logger)
	s.kafkaProducer = producer
	return s
}

// List возвращает все товары каталога.
func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.products.List(ctx)
}

// Create сохраняет новый товар с начальным остатком.
func (s *Service) Create(ctx context.Context, name string, initialStock int64) (domain.Product, error) {
	product, err := s.products.Create(ctx, domain.Product{Name: name, Stock: initialStock})
	if err != nil {
		s.logger.WithError(err).WithField("product_name", name).Warn("create product failed")
		return domain.Product{}, err
	}

	s.logger.WithFields(log.Fields{
		"product_id": product.ID,
		"stock":      product.Stock,
	}).Info("product created")
	s.publishEvent(product, kafka.EventTypeProductCreated)
	return product, nil
}

// AdjustStock добавляет delta к остатку товара.
func (s *Service) AdjustStock(ctx context.Context, productID, delta int64) (domain.Product, error) {
	product, err := s.products.AdjustStock(ctx, productID, delta)
	if err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"product_id": productID,
			"delta":      delta,
		}).Warn("adjust stock failed")
		return domain.Product{}, err
	}

	s.logger.WithFields(log.Fields{
		"product_id": product.ID,
		"delta":      delta,
		"stock":      product.Stock,
	}).Info("stock adjusted")
	s.publishEvent(product, kafka.EventTypeStockAdjusted)
	return product, nil
}

// publishEvent отправляет событие каталога после успешной записи. Ошибка
// публикации только логируется и на результат операции не влияет.
func (s *Service) publishEvent(product domain.Product, eventType kafka.EventType) {
	if s.kafkaProducer == nil {
		return
	}

	var err error
	switch eventType {
	case kafka.EventTypeProductCreated:
		err = s.kafkaProducer.PublishProductCreated(product.ID, product.Stock)
	case kafka.EventTypeStockAdjusted:
		err = s.kafkaProducer.PublishStockAdjusted(product.ID, product.Stock)
	}
	if err != nil {
		s.logger.WithError(err).WithField("product_id", product.ID).Warn("failed to publish catalog event")
	}
}
