package kafka

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

// Producer представляет Kafka producer для публикации событий
type Producer struct {
	producer sarama.SyncProducer
	logger   *log.Entry
}

// NewProducer создает новый Kafka producer
func NewProducer(brokers []string) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll // Wait for all in-sync replicas
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true // Включаем идемпотентность
	config.Net.MaxOpenRequests = 1    // Для идемпотентности

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &Producer{
		producer: producer,
		logger:   log.WithField("component", "kafka-producer"),
	}, nil
}

// PublishEvent публикует событие в Kafka
func (p *Producer) PublishEvent(topic string, key string, event interface{}) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.StringEncoder(key),
		Value:     sarama.ByteEncoder(eventData),
		Timestamp: time.Now(),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.WithError(err).WithFields(log.Fields{
			"topic": topic,
			"key":   key,
		}).Error("failed to send message to kafka")
		return fmt.Errorf("failed to send message: %w", err)
	}

	p.logger.WithFields(log.Fields{
		"topic":     topic,
		"key":       key,
		"partition": partition,
		"offset":    offset,
	}).Debug("message sent to kafka")

	return nil
}

// PublishOrderPlaced публикует событие успешного оформления заказа.
// Ключ — ID товара, чтобы события одного товара попадали в одну партицию.
func (p *Producer) PublishOrderPlaced(orderID, productID int64, customerName string, stockLeft int64) error {
	event := NewOrderEvent(EventTypeOrderPlaced, orderID, productID, customerName, stockLeft)
	return p.PublishEvent(TopicOrderEvents, strconv.FormatInt(productID, 10), event)
}

// PublishOrderRejected публикует событие отклонённого заказа с причиной
// отказа. OrderID отсутствует: заказ не был создан.
func (p *Producer) PublishOrderRejected(productID int64, customerName, reason string) error {
	event := NewOrderEvent(EventTypeOrderRejected, 0, productID, customerName, 0)
	event.Reason = reason
	return p.PublishEvent(TopicOrderEvents, strconv.FormatInt(productID, 10), event)
}

// PublishProductCreated публикует событие появления товара в каталоге.
func (p *Producer) PublishProductCreated(productID, stock int64) error {
	event := NewCatalogEvent(EventTypeProductCreated, productID, stock)
	return p.PublishEvent(TopicCatalogEvents, strconv.FormatInt(productID, 10), event)
}

// PublishStockAdjusted публикует событие корректировки остатка.
func (p *Producer) PublishStockAdjusted(productID, stock int64) error {
	event := NewCatalogEvent(EventTypeStockAdjusted, productID, stock)
	return p.PublishEvent(TopicCatalogEvents, strconv.FormatInt(productID, 10), event)
}

// Close закрывает producer
func (p *Producer) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	return nil
}
