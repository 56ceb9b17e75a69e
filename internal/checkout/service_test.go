package checkout_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storefront/internal/cart"
	"github.com/vladislavdragonenkov/storefront/internal/checkout"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

type stubMetrics struct {
	mu       sync.Mutex
	states   []domain.CheckoutState
	failures []string
}

func (m *stubMetrics) RecordCheckout(state domain.CheckoutState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = append(m.states, state)
}

func (m *stubMetrics) RecordMirrorFailure(sink string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, sink)
}

type stubPublisher struct {
	mu     sync.Mutex
	orders []domain.Order
	err    error
}

func (p *stubPublisher) PublishOrder(_ context.Context, order domain.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders = append(p.orders, order)
	return p.err
}

type failingDispatcher struct{}

func (failingDispatcher) Dispatch(context.Context, domain.Order) (string, error) {
	return "", errors.New("no browser")
}

func loggerForTests() *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger.WithField("component", "test")
}

func newCartWithItem(t *testing.T) (*cart.Store, *memoryStorage) {
	t.Helper()
	storage := &memoryStorage{CartStorage: memory.NewCartStorage()}
	store := cart.NewStore(storage, cart.WithLogger(loggerForTests()))
	product := domain.Product{ID: "p1", Name: "Choco Cookie", Price: 15000, MaxOrder: 3, Toppings: []string{"t1"}}
	_, err := store.Add(context.Background(), product, 2, []domain.Topping{{ID: "t1", Name: "Keju", Price: 3000}})
	require.NoError(t, err)
	return store, storage
}

// memoryStorage считает записи поверх in-memory хранилища.
type memoryStorage struct {
	domain.CartStorage
	mu   sync.Mutex
	puts int
}

func (s *memoryStorage) Put(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	s.puts++
	s.mu.Unlock()
	return s.CartStorage.Put(ctx, key, data)
}

func (s *memoryStorage) Puts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

func TestCheckout_Dispatched(t *testing.T) {
	store, _ := newCartWithItem(t)
	metrics := &stubMetrics{}
	mirror := &stubPublisher{}

	svc := checkout.NewService(store,
		checkout.WithLogger(loggerForTests()),
		checkout.WithMetrics(metrics),
		checkout.WithStoreInfo(func() domain.StoreConfig { return domain.StoreConfig{WhatsApp: "6281999"} }),
		checkout.WithMirror("stub", mirror),
	)

	res, err := svc.Checkout(context.Background(), sampleCustomer())
	require.NoError(t, err)
	svc.Wait()

	require.Equal(t, domain.CheckoutStateDispatched, res.State)
	require.Equal(t, []domain.CheckoutState{
		domain.CheckoutStateIdle,
		domain.CheckoutStateValidating,
		domain.CheckoutStateFormatted,
		domain.CheckoutStateDispatched,
	}, res.Transitions)
	require.Equal(t, int64(36000), res.Order.Total)
	require.NotEmpty(t, res.Order.ID)
	require.Contains(t, res.DispatchURL, "https://wa.me/6281999?text=Halo%2C%20saya%20ingin%20pesan")
	require.Equal(t, []domain.CheckoutState{domain.CheckoutStateDispatched}, metrics.states)

	require.Len(t, mirror.orders, 1)
	require.Equal(t, res.Order.ID, mirror.orders[0].ID)

	// по умолчанию корзина после передачи сохраняется
	require.Len(t, store.Items(), 1)
}

func TestCheckout_FallbackRecipient(t *testing.T) {
	store, _ := newCartWithItem(t)
	svc := checkout.NewService(store, checkout.WithLogger(loggerForTests()))

	res, err := svc.Checkout(context.Background(), sampleCustomer())
	require.NoError(t, err)
	require.Contains(t, res.DispatchURL, "https://wa.me/"+checkout.FallbackRecipient+"?text=")
}

func TestCheckout_RejectedLeavesCartAndStorage(t *testing.T) {
	store, storage := newCartWithItem(t)
	metrics := &stubMetrics{}
	mirror := &stubPublisher{}
	svc := checkout.NewService(store,
		checkout.WithLogger(loggerForTests()),
		checkout.WithMetrics(metrics),
		checkout.WithMirror("stub", mirror),
		checkout.WithClearOnDispatch(true),
	)

	before := store.Cart()
	puts := storage.Puts()

	res, err := svc.Checkout(context.Background(), domain.Customer{Name: "", Address: "Jl. Mawar 1"})
	svc.Wait()

	require.ErrorIs(t, err, domain.ErrCustomerNameRequired)
	require.True(t, domain.IsValidationFailure(err))
	require.Equal(t, domain.CheckoutStateRejected, res.State)
	require.Equal(t, before, store.Cart())
	require.Equal(t, puts, storage.Puts())
	require.Empty(t, mirror.orders)
	require.Equal(t, []domain.CheckoutState{domain.CheckoutStateRejected}, metrics.states)
}

func TestCheckout_EmptyCartRejected(t *testing.T) {
	store := cart.NewStore(memory.NewCartStorage(), cart.WithLogger(loggerForTests()))
	svc := checkout.NewService(store, checkout.WithLogger(loggerForTests()))

	res, err := svc.Checkout(context.Background(), sampleCustomer())
	require.ErrorIs(t, err, domain.ErrEmptyCart)
	require.Equal(t, domain.CheckoutStateRejected, res.State)
	require.Empty(t, res.DispatchURL)
}

func TestCheckout_ClearOnDispatch(t *testing.T) {
	store, _ := newCartWithItem(t)
	svc := checkout.NewService(store, checkout.WithLogger(loggerForTests()), checkout.WithClearOnDispatch(true))

	_, err := svc.Checkout(context.Background(), sampleCustomer())
	require.NoError(t, err)
	require.Empty(t, store.Items())
}

func TestCheckout_MirrorFailureDoesNotFailCheckout(t *testing.T) {
	store, _ := newCartWithItem(t)
	metrics := &stubMetrics{}
	svc := checkout.NewService(store,
		checkout.WithLogger(loggerForTests()),
		checkout.WithMetrics(metrics),
		checkout.WithMirror("broken", &stubPublisher{err: errors.New("queue down")}),
	)

	res, err := svc.Checkout(context.Background(), sampleCustomer())
	require.NoError(t, err)
	svc.Wait()

	require.Equal(t, domain.CheckoutStateDispatched, res.State)
	require.Equal(t, []string{"broken"}, metrics.failures)
}

func TestCheckout_DispatchFailureSurfaced(t *testing.T) {
	store, _ := newCartWithItem(t)
	svc := checkout.NewService(store,
		checkout.WithLogger(loggerForTests()),
		checkout.WithDispatcher(failingDispatcher{}),
	)

	res, err := svc.Checkout(context.Background(), sampleCustomer())
	require.Error(t, err)
	require.Equal(t, domain.CheckoutStateFormatted, res.State)
	require.NotEmpty(t, res.Order.Message)
}
