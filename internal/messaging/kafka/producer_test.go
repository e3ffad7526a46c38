package kafka

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"
)

func TestProducer_PublishOrderPlaced(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}

	mockProducer.ExpectSendMessageAndSucceed()

	if err := producer.PublishOrderPlaced(42, 7, "alice", 3); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishOrderRejected(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}

	mockProducer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(raw []byte) error {
		var event OrderEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			return err
		}
		if event.EventType != EventTypeOrderRejected {
			return fmt.Errorf("unexpected event type: %s", event.EventType)
		}
		if event.OrderID != 0 {
			return fmt.Errorf("rejected event must not carry an order id, got %d", event.OrderID)
		}
		if event.Reason != "out_of_stock" {
			return fmt.Errorf("unexpected reason: %s", event.Reason)
		}
		return nil
	})

	if err := producer.PublishOrderRejected(7, "alice", "out_of_stock"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishCatalogEvents(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}

	mockProducer.ExpectSendMessageAndSucceed()
	mockProducer.ExpectSendMessageAndSucceed()

	if err := producer.PublishProductCreated(7, 10); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := producer.PublishStockAdjusted(7, 15); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEvent_Error(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	event := NewOrderEvent(EventTypeOrderPlaced, 42, 7, "alice", 3)
	if err := producer.PublishEvent(TopicOrderEvents, "7", event); err == nil {
		t.Fatal("expected publish error")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEvent_UnmarshalableEvent(t *testing.T) {
	producer := &Producer{
		logger: log.WithField("component", "kafka-producer-test"),
	}

	// Каналы не сериализуются в JSON: ошибка до обращения к брокеру.
	if err := producer.PublishEvent(TopicOrderEvents, "7", make(chan int)); err == nil {
		t.Fatal("expected marshal error")
	}
}
