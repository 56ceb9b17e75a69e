package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/cart"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/pricing"
)

const defaultMirrorTimeout = 5 * time.Second

// Metrics фиксирует исходы оформления и сбои вспомогательных каналов.
type Metrics interface {
	RecordCheckout(state domain.CheckoutState)
	RecordMirrorFailure(sink string)
}

// Result описывает одну попытку оформления.
type Result struct {
	State       domain.CheckoutState
	Transitions []domain.CheckoutState
	Order       domain.Order
	DispatchURL string
}

func (r *Result) move(state domain.CheckoutState) {
	r.State = state
	r.Transitions = append(r.Transitions, state)
}

type mirror struct {
	name      string
	publisher domain.OrderPublisher
}

// Service проводит попытку оформления: Idle -> Validating -> Rejected
// или Formatted -> Dispatched. Повторов нет: пользователь запускает оформление заново.
type Service struct {
	cart       *cart.Store
	formatter  *Formatter
	dispatcher domain.OrderDispatcher
	storeInfo  func() domain.StoreConfig
	mirrors    []mirror
	metrics    Metrics
	logger     *log.Entry

	clearOnDispatch bool
	mirrorTimeout   time.Duration
	newID           func() string
	wg              sync.WaitGroup
}

// Option настраивает Service.
type Option func(*Service)

// WithLogger задаёт logger сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics подключает метрики оформления.
func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithFormatter задаёт форматтер сообщения.
func WithFormatter(f *Formatter) Option {
	return func(s *Service) {
		s.formatter = f
	}
}

// WithDispatcher задаёт основной канал передачи заказа.
func WithDispatcher(d domain.OrderDispatcher) Option {
	return func(s *Service) {
		s.dispatcher = d
	}
}

// WithStoreInfo задаёт источник настроек магазина (номер получателя).
func WithStoreInfo(fn func() domain.StoreConfig) Option {
	return func(s *Service) {
		s.storeInfo = fn
	}
}

// WithMirror добавляет вспомогательный канал; его ошибки только логируются.
func WithMirror(name string, publisher domain.OrderPublisher) Option {
	return func(s *Service) {
		if publisher != nil {
			s.mirrors = append(s.mirrors, mirror{name: name, publisher: publisher})
		}
	}
}

// WithClearOnDispatch очищает корзину после успешной передачи заказа.
func WithClearOnDispatch(clear bool) Option {
	return func(s *Service) {
		s.clearOnDispatch = clear
	}
}

// WithMirrorTimeout ограничивает время публикации во вспомогательный канал.
func WithMirrorTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.mirrorTimeout = timeout
	}
}

// NewService создаёт сервис оформления поверх корзины.
func NewService(store *cart.Store, opts ...Option) *Service {
	s := &Service{
		cart:          store,
		mirrorTimeout: defaultMirrorTimeout,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.formatter == nil {
		s.formatter = NewFormatter(nil)
	}
	if s.dispatcher == nil {
		s.dispatcher = NewLinkDispatcher()
	}
	if s.storeInfo == nil {
		s.storeInfo = func() domain.StoreConfig { return domain.StoreConfig{} }
	}
	if s.logger == nil {
		s.logger = log.WithField("component", "checkout")
	}
	return s
}

// Checkout валидирует корзину и поля покупателя, форматирует заказ и передаёт его.
// При отказе валидации корзина и хранилище не меняются.
func (s *Service) Checkout(ctx context.Context, customer domain.Customer) (Result, error) {
	res := Result{}
	res.move(domain.CheckoutStateIdle)
	res.move(domain.CheckoutStateValidating)

	items := s.cart.Items()
	message, err := s.formatter.Format(items, customer)
	if err != nil {
		res.move(domain.CheckoutStateRejected)
		s.record(domain.CheckoutStateRejected)
		s.logger.WithError(err).Info("checkout rejected")
		return res, err
	}

	order := domain.Order{
		ID: s.newID(),
		Customer: domain.Customer{
			Name:          strings.TrimSpace(customer.Name),
			Address:       strings.TrimSpace(customer.Address),
			PaymentMethod: strings.TrimSpace(customer.PaymentMethod),
		},
		Items:     items,
		Total:     pricing.CartTotal(items),
		Message:   message,
		Recipient: s.storeInfo().WhatsApp,
	}
	res.Order = order
	res.move(domain.CheckoutStateFormatted)

	dispatchURL, err := s.dispatcher.Dispatch(ctx, order)
	if err != nil {
		s.record(domain.CheckoutStateFormatted)
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("order dispatch failed")
		return res, fmt.Errorf("dispatch order: %w", err)
	}
	res.DispatchURL = dispatchURL
	res.move(domain.CheckoutStateDispatched)
	s.record(domain.CheckoutStateDispatched)

	s.logger.WithFields(log.Fields{
		"order_id": order.ID,
		"lines":    len(order.Items),
		"total":    order.Total,
	}).Info("order dispatched")

	s.publishMirrors(ctx, order)

	if s.clearOnDispatch {
		if err := s.cart.Clear(ctx); err != nil {
			s.logger.WithError(err).Warn("failed to clear cart after dispatch")
		}
	}

	return res, nil
}

// Wait дожидается завершения публикаций во вспомогательные каналы.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) publishMirrors(ctx context.Context, order domain.Order) {
	base := context.WithoutCancel(ctx)
	for _, m := range s.mirrors {
		s.wg.Add(1)
		go func(m mirror) {
			defer s.wg.Done()

			mctx, cancel := context.WithTimeout(base, s.mirrorTimeout)
			defer cancel()

			if err := m.publisher.PublishOrder(mctx, order); err != nil {
				if s.metrics != nil {
					s.metrics.RecordMirrorFailure(m.name)
				}
				s.logger.WithError(err).WithFields(log.Fields{
					"order_id": order.ID,
					"sink":     m.name,
				}).Warn("order mirror publish failed")
			}
		}(m)
	}
}

func (s *Service) record(state domain.CheckoutState) {
	if s.metrics != nil {
		s.metrics.RecordCheckout(state)
	}
}
