package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const (
	// DefaultQueue — очередь заказов по умолчанию.
	DefaultQueue = "storefront_orders"

	publishTimeout = 5 * time.Second
)

// Publisher публикует заказы в очередь через default exchange.
type Publisher struct {
	pool      *ChannelPool
	queueName string
	logger    *log.Entry
}

// NewPublisher создаёт паблишер поверх пула каналов.
func NewPublisher(pool *ChannelPool, queueName string) *Publisher {
	if queueName == "" {
		queueName = DefaultQueue
	}
	return &Publisher{
		pool:      pool,
		queueName: queueName,
		logger:    log.WithField("component", "rabbitmq-publisher"),
	}
}

// PublishOrder отправляет заказ как persistent JSON-сообщение.
func (p *Publisher) PublishOrder(ctx context.Context, order domain.Order) error {
	ch, err := p.pool.GetChannel()
	if err != nil {
		return fmt.Errorf("failed to get channel from pool: %w", err)
	}
	defer p.pool.ReturnChannel(ch)

	body, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(ctx,
		"",          // exchange
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    order.ID,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish order: %w", err)
	}

	p.logger.WithFields(log.Fields{
		"order_id": order.ID,
		"queue":    p.queueName,
	}).Debug("order published to queue")
	return nil
}

var _ domain.OrderPublisher = (*Publisher)(nil)
