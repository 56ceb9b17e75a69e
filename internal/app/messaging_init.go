package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/rabbitmq"
)

// initKafkaProducer инициализирует Kafka producer, если brokers не пустой.
// Ошибка подключения не фатальна: витрина работает без зеркала событий.
func initKafkaProducer(brokers []string, logger *log.Entry) *kafka.Producer {
	if len(brokers) == 0 {
		return nil
	}

	producer, err := kafka.NewProducer(brokers)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return nil
	}

	logger.WithField("brokers", brokers).Info("kafka producer initialized")
	return producer
}

// closeKafka закрывает Kafka producer если он не nil.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}

// initRabbitMQ открывает пул каналов, если задан URL. Ошибка не фатальна.
func initRabbitMQ(cfg Config, logger *log.Entry) (*rabbitmq.ChannelPool, *rabbitmq.Publisher) {
	if cfg.RabbitMQURL == "" {
		return nil, nil
	}

	pool, err := rabbitmq.NewChannelPool(cfg.RabbitMQURL, cfg.RabbitMQQueue, cfg.RabbitMQPoolSize)
	if err != nil {
		logger.WithError(err).Warn("failed to connect to rabbitmq, continuing without order queue")
		return nil, nil
	}

	logger.WithField("queue", cfg.RabbitMQQueue).Info("rabbitmq publisher initialized")
	return pool, rabbitmq.NewPublisher(pool, cfg.RabbitMQQueue)
}
