package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func testProducer(t *testing.T) (*Producer, *mocks.SyncProducer) {
	t.Helper()
	mockProducer := mocks.NewSyncProducer(t, nil)
	return NewProducerWithClient(mockProducer, log.WithField("component", "kafka-producer-test")), mockProducer
}

func TestProducer_PublishEvent(t *testing.T) {
	producer, mockProducer := testProducer(t)

	mockProducer.ExpectSendMessageAndSucceed()

	err := producer.PublishEvent(context.Background(), TopicOrderEvents, "order-1", map[string]string{"id": "order-1"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEvent_Error(t *testing.T) {
	producer, mockProducer := testProducer(t)

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := producer.PublishEvent(context.Background(), TopicOrderEvents, "order-1", map[string]string{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEvent_CanceledContext(t *testing.T) {
	producer, mockProducer := testProducer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := producer.PublishEvent(ctx, TopicCartEvents, "cart", map[string]string{}); err == nil {
		t.Fatal("expected error for canceled context")
	}

	// ожиданий нет: сообщение не должно было уйти
	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestPublisher_PublishCartEvent(t *testing.T) {
	producer, mockProducer := testProducer(t)
	publisher := NewPublisher(producer, "storefront_cart")

	mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != TopicCartEvents {
			return fmt.Errorf("unexpected topic %s", msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "storefront_cart" {
			return fmt.Errorf("unexpected key %s", key)
		}
		raw, _ := msg.Value.Encode()
		var event CartEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			return err
		}
		if event.EventType != EventType(domain.CartEventItemAdded) || event.Total != 36000 || event.Items != 2 {
			return fmt.Errorf("unexpected payload %s", raw)
		}
		return nil
	})

	err := publisher.PublishCartEvent(context.Background(), domain.CartEvent{
		Type:   domain.CartEventItemAdded,
		LineID: "line-1",
		Cart: domain.Cart{Items: []domain.CartLineItem{{
			ID: "line-1", ProductID: "p1", Name: "Choco Cookie", Price: 15000, Qty: 2,
			Toppings: []domain.Topping{{ID: "t1", Name: "Keju", Price: 3000}},
		}}},
		Occurred: time.Now(),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestPublisher_PublishOrder(t *testing.T) {
	producer, mockProducer := testProducer(t)
	publisher := NewPublisher(producer, "storefront_cart")

	mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != TopicOrderEvents {
			return fmt.Errorf("unexpected topic %s", msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "order-42" {
			return fmt.Errorf("unexpected key %s", key)
		}
		return nil
	})

	err := publisher.PublishOrder(context.Background(), domain.Order{
		ID:       "order-42",
		Customer: domain.Customer{Name: "Ani", Address: "Jl. Mawar 1"},
		Total:    36000,
		Message:  "Halo",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestPublisher_NotInitialized(t *testing.T) {
	var publisher *Publisher

	if err := publisher.PublishOrder(context.Background(), domain.Order{}); err == nil {
		t.Fatal("expected error for nil publisher")
	}
	if err := NewPublisher(nil, "k").PublishCartEvent(context.Background(), domain.CartEvent{}); err == nil {
		t.Fatal("expected error for nil producer")
	}
}

func TestNewCartEvent(t *testing.T) {
	event := NewCartEvent("storefront_cart", domain.CartEvent{Type: domain.CartEventCleared})

	if event.EventType != EventType(domain.CartEventCleared) {
		t.Errorf("expected event type %s, got %s", domain.CartEventCleared, event.EventType)
	}
	if event.Cart == nil {
		t.Error("cart should be an empty slice, not nil")
	}
	if event.Timestamp.IsZero() {
		t.Error("timestamp should not be zero")
	}
}

func TestNewOrderEvent(t *testing.T) {
	order := domain.Order{
		ID:        "order-123",
		Customer:  domain.Customer{Name: "Ani", Address: "Jl. Mawar 1", PaymentMethod: "COD"},
		Total:     1000,
		Recipient: "6281",
	}

	event := NewOrderEvent(order)

	if event.EventType != EventTypeOrderDispatched {
		t.Errorf("expected event type %s, got %s", EventTypeOrderDispatched, event.EventType)
	}
	if event.OrderID != order.ID {
		t.Errorf("expected order id %s, got %s", order.ID, event.OrderID)
	}
	if event.PaymentMethod != "COD" {
		t.Errorf("expected payment method COD, got %s", event.PaymentMethod)
	}
	if time.Since(event.Timestamp) > time.Second {
		t.Error("timestamp should be close to current time")
	}
}
