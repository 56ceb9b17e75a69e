// Package relay асинхронно ретранслирует события корзины во внешний брокер,
// не задерживая мутации корзины.
package relay

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const (
	defaultBufferSize     = 256
	defaultMaxAttempts    = 3
	defaultRetryBaseDelay = 50 * time.Millisecond
	defaultPublishTimeout = 5 * time.Second
)

// Результаты ретрансляции для метрик.
const (
	ResultPublished = "published"
	ResultFailed    = "failed"
	ResultDropped   = "dropped"
)

// Metrics фиксирует исход ретрансляции одного события.
type Metrics interface {
	RecordRelay(result string)
}

// WorkerOptions задаёт параметры relay worker.
type WorkerOptions struct {
	Logger         *log.Entry
	Metrics        Metrics
	BufferSize     int
	MaxAttempts    int
	RetryBaseDelay time.Duration
	PublishTimeout time.Duration
}

// Option настраивает Worker.
type Option func(*WorkerOptions)

// WithLogger задаёт logger для воркера.
func WithLogger(logger *log.Entry) Option {
	return func(opts *WorkerOptions) {
		opts.Logger = logger
	}
}

// WithMetrics подключает метрики ретрансляции.
func WithMetrics(m Metrics) Option {
	return func(opts *WorkerOptions) {
		opts.Metrics = m
	}
}

// WithBufferSize задаёт ёмкость очереди событий.
func WithBufferSize(size int) Option {
	return func(opts *WorkerOptions) {
		opts.BufferSize = size
	}
}

// WithMaxAttempts задаёт число попыток публикации одного события.
func WithMaxAttempts(maxAttempts int) Option {
	return func(opts *WorkerOptions) {
		opts.MaxAttempts = maxAttempts
	}
}

// WithRetryBaseDelay задаёт базовый delay для exponential backoff.
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(opts *WorkerOptions) {
		opts.RetryBaseDelay = delay
	}
}

// WithPublishTimeout ограничивает одну попытку публикации.
func WithPublishTimeout(timeout time.Duration) Option {
	return func(opts *WorkerOptions) {
		opts.PublishTimeout = timeout
	}
}

// Worker принимает события через Enqueue и публикует их в фоне.
// При переполнении очереди событие отбрасывается: брокер является зеркалом,
// а не источником истины.
type Worker struct {
	publisher      domain.CartEventPublisher
	queue          chan domain.CartEvent
	logger         *log.Entry
	metrics        Metrics
	maxAttempts    int
	retryBaseDelay time.Duration
	publishTimeout time.Duration
}

// NewWorker создаёт relay worker.
func NewWorker(publisher domain.CartEventPublisher, options ...Option) *Worker {
	opts := WorkerOptions{
		BufferSize:     defaultBufferSize,
		MaxAttempts:    defaultMaxAttempts,
		RetryBaseDelay: defaultRetryBaseDelay,
		PublishTimeout: defaultPublishTimeout,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "cart-relay")
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = defaultBufferSize
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.RetryBaseDelay < 0 {
		opts.RetryBaseDelay = 0
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = defaultPublishTimeout
	}

	return &Worker{
		publisher:      publisher,
		queue:          make(chan domain.CartEvent, opts.BufferSize),
		logger:         logger,
		metrics:        opts.Metrics,
		maxAttempts:    opts.MaxAttempts,
		retryBaseDelay: opts.RetryBaseDelay,
		publishTimeout: opts.PublishTimeout,
	}
}

// Enqueue ставит событие в очередь без блокировки.
// Подходит как подписчик cart.Store: вызывается под блокировкой корзины.
func (w *Worker) Enqueue(event domain.CartEvent) bool {
	select {
	case w.queue <- event:
		return true
	default:
		w.record(ResultDropped)
		w.logger.WithField("event_type", event.Type).Warn("relay queue is full, cart event dropped")
		return false
	}
}

// Pending возвращает число событий в очереди.
func (w *Worker) Pending() int {
	return len(w.queue)
}

// Run публикует события до отмены ctx. Оставшиеся в очереди события
// после отмены не публикуются.
func (w *Worker) Run(ctx context.Context) {
	if w.publisher == nil {
		w.logger.Warn("cart relay is disabled: publisher is nil")
		return
	}

	for {
		select {
		case <-ctx.Done():
			if n := len(w.queue); n > 0 {
				w.logger.WithField("pending", n).Info("cart relay stopped with pending events")
			}
			return
		case event := <-w.queue:
			w.ProcessEvent(ctx, event)
		}
	}
}

// ProcessEvent публикует одно событие с повторами.
func (w *Worker) ProcessEvent(ctx context.Context, event domain.CartEvent) {
	if err := w.publishWithRetry(ctx, event); err != nil {
		w.record(ResultFailed)
		w.logger.WithError(err).WithFields(log.Fields{
			"event_type": event.Type,
			"line_id":    event.LineID,
		}).Error("cart event relay failed after retries")
		return
	}
	w.record(ResultPublished)
}

func (w *Worker) publishWithRetry(ctx context.Context, event domain.CartEvent) error {
	var lastErr error

	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		pctx, cancel := context.WithTimeout(ctx, w.publishTimeout)
		err := w.publisher.PublishCartEvent(pctx, event)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt >= w.maxAttempts {
			break
		}

		delay := w.retryBackoff(attempt)
		if delay <= 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("publish failed after %d attempts: %w", w.maxAttempts, lastErr)
}

func (w *Worker) retryBackoff(attempt int) time.Duration {
	if w.retryBaseDelay <= 0 {
		return 0
	}
	if attempt <= 1 {
		return w.retryBaseDelay
	}

	const maxDuration = time.Duration(1<<63 - 1)
	delay := w.retryBaseDelay
	for i := 1; i < attempt; i++ {
		if delay > maxDuration/2 {
			return maxDuration
		}
		delay *= 2
	}
	return delay
}

func (w *Worker) record(result string) {
	if w.metrics != nil {
		w.metrics.RecordRelay(result)
	}
}
