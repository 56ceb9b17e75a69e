package kafka

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Publisher публикует события корзины и заказы в топики витрины.
type Publisher struct {
	producer   *Producer
	cartKey    string
	cartTopic  string
	orderTopic string
}

// NewPublisher создаёт паблишер. Ключ корзины служит ключом партиционирования,
// поэтому события одной корзины сохраняют порядок.
func NewPublisher(producer *Producer, cartKey string) *Publisher {
	return &Publisher{
		producer:   producer,
		cartKey:    cartKey,
		cartTopic:  TopicCartEvents,
		orderTopic: TopicOrderEvents,
	}
}

// PublishCartEvent публикует событие корзины.
func (p *Publisher) PublishCartEvent(ctx context.Context, event domain.CartEvent) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka publisher is not initialized")
	}
	return p.producer.PublishEvent(ctx, p.cartTopic, p.cartKey, NewCartEvent(p.cartKey, event))
}

// PublishOrder публикует переданный заказ.
func (p *Publisher) PublishOrder(ctx context.Context, order domain.Order) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka publisher is not initialized")
	}
	return p.producer.PublishEvent(ctx, p.orderTopic, order.ID, NewOrderEvent(order))
}

var (
	_ domain.CartEventPublisher = (*Publisher)(nil)
	_ domain.OrderPublisher     = (*Publisher)(nil)
)
