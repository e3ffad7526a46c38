package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/service/catalog"
	"github.com/vladislavdragonenkov/storefront/internal/service/orders"
	"github.com/vladislavdragonenkov/storefront/internal/transport/resthttp"
)

// buildCatalogService собирает сервис каталога, подключая Kafka при наличии
// producer.
func buildCatalogService(deps *Dependencies, producer *kafka.Producer, logger *log.Entry) *catalog.Service {
	serviceLogger := logger.WithField("layer", "catalog")
	if producer != nil {
		return catalog.NewServiceWithKafka(deps.Products, producer, serviceLogger)
	}
	return catalog.NewService(deps.Products, serviceLogger)
}

// buildOrderService собирает сервис заказов с Kafka или без, в зависимости
// от наличия producer, и оборачивает его логирующим декоратором.
func buildOrderService(deps *Dependencies, producer *kafka.Producer, logger *log.Entry) resthttp.OrderService {
	serviceLogger := logger.WithField("layer", "orders")

	var svc *orders.Service
	if producer != nil {
		svc = orders.NewServiceWithKafka(deps.Runner, deps.Orders, producer, serviceLogger)
	} else {
		svc = orders.NewService(deps.Runner, deps.Orders, serviceLogger)
	}

	return orders.NewLoggingService(svc, serviceLogger)
}
