package kafka

import (
	"time"

	"github.com/google/uuid"
)

// EventType определяет тип события
type EventType string

const (
	// Order события
	EventTypeOrderPlaced   EventType = "order.placed"
	EventTypeOrderRejected EventType = "order.rejected"

	// Catalog события
	EventTypeProductCreated EventType = "product.created"
	EventTypeStockAdjusted  EventType = "stock.adjusted"
)

// Topics для Kafka
const (
	TopicOrderEvents   = "storefront.order.events"
	TopicCatalogEvents = "storefront.catalog.events"
)

// OrderEvent представляет событие заказа
type OrderEvent struct {
	EventID      string    `json:"event_id"`
	EventType    EventType `json:"event_type"`
	OrderID      int64     `json:"order_id,omitempty"`
	ProductID    int64     `json:"product_id"`
	CustomerName string    `json:"customer_name"`
	Stock        int64     `json:"stock"`
	Reason       string    `json:"reason,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// CatalogEvent представляет событие каталога
type CatalogEvent struct {
	EventID   string    `json:"event_id"`
	EventType EventType `json:"event_type"`
	ProductID int64     `json:"product_id"`
	Stock     int64     `json:"stock"`
	Timestamp time.Time `json:"timestamp"`
}

// NewOrderEvent создает новое событие заказа
func NewOrderEvent(eventType EventType, orderID, productID int64, customerName string, stock int64) *OrderEvent {
	return &OrderEvent{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		OrderID:      orderID,
		ProductID:    productID,
		CustomerName: customerName,
		Stock:        stock,
		Timestamp:    time.Now(),
	}
}

// NewCatalogEvent создает новое событие каталога
func NewCatalogEvent(eventType EventType, productID, stock int64) *CatalogEvent {
	return &CatalogEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		ProductID: productID,
		Stock:     stock,
		Timestamp: time.Now(),
	}
}
