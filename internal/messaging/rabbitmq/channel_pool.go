// Package rabbitmq отправляет переданные заказы в очередь RabbitMQ.
package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

// ErrNoChannel возвращается, когда все каналы пула заняты.
var ErrNoChannel = errors.New("no channels available in pool")

// channel — подмножество *amqp.Channel, нужное паблишеру.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// ChannelPool держит заранее открытые каналы с объявленной очередью.
type ChannelPool struct {
	conn      *amqp.Connection
	channels  chan channel
	open      func() (channel, error)
	mu        sync.Mutex
	closed    bool
	queueName string
	logger    *log.Entry
}

// NewChannelPool подключается к RabbitMQ и открывает size каналов.
func NewChannelPool(url, queueName string, size int) (*ChannelPool, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	pool, err := newChannelPool(queueName, size, func() (channel, error) {
		return declareChannel(conn, queueName)
	})
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	pool.conn = conn
	return pool, nil
}

func newChannelPool(queueName string, size int, open func() (channel, error)) (*ChannelPool, error) {
	if size <= 0 {
		size = 1
	}
	pool := &ChannelPool{
		channels:  make(chan channel, size),
		open:      open,
		queueName: queueName,
		logger:    log.WithField("component", "rabbitmq-pool"),
	}

	for i := 0; i < size; i++ {
		ch, err := open()
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to create channel %d: %w", i, err)
		}
		pool.channels <- ch
	}

	pool.logger.WithFields(log.Fields{"size": size, "queue": queueName}).Info("rabbitmq channel pool created")
	return pool, nil
}

// declareChannel открывает канал и объявляет durable-очередь (операция идемпотентна).
func declareChannel(conn *amqp.Connection, queueName string) (channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}
	return ch, nil
}

// GetChannel берёт канал из пула, переоткрывая закрытый.
func (p *ChannelPool) GetChannel() (channel, error) {
	select {
	case ch, ok := <-p.channels:
		if !ok {
			return nil, errors.New("channel pool is closed")
		}
		if ch.IsClosed() {
			newCh, err := p.open()
			if err != nil {
				return nil, err
			}
			return newCh, nil
		}
		return ch, nil
	default:
		return nil, ErrNoChannel
	}
}

// ReturnChannel возвращает канал в пул; лишний канал закрывается.
func (p *ChannelPool) ReturnChannel(ch channel) {
	if ch == nil || ch.IsClosed() {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		_ = ch.Close()
		return
	}

	select {
	case p.channels <- ch:
	default:
		_ = ch.Close()
	}
}

// Close закрывает все каналы и соединение.
func (p *ChannelPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true

	close(p.channels)
	for ch := range p.channels {
		_ = ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.logger.Info("rabbitmq channel pool closed")
}
