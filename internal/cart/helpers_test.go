package cart_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/cart"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

var errStorageDown = errors.New("storage down")

// recordingStorage считает записи и умеет отказывать по требованию.
type recordingStorage struct {
	mu      sync.Mutex
	inner   domain.CartStorage
	puts    int
	failPut bool
	getErr  error
}

func newRecordingStorage() *recordingStorage {
	return &recordingStorage{inner: memory.NewCartStorage()}
}

func (s *recordingStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.inner.Get(ctx, key)
}

func (s *recordingStorage) Put(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPut {
		return errStorageDown
	}
	s.puts++
	return s.inner.Put(ctx, key, data)
}

func (s *recordingStorage) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

func (s *recordingStorage) Puts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

// staticLookup — каталог из фиксированного набора товаров.
type staticLookup map[string]domain.Product

func (l staticLookup) Product(id string) (domain.Product, bool) {
	p, ok := l[id]
	return p, ok
}

func sequentialIDs() func() string {
	var n int
	return func() string {
		n++
		return fmt.Sprintf("line-%d", n)
	}
}

func quietLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger.WithField("component", "test")
}

func cookie() domain.Product {
	return domain.Product{ID: "p1", Name: "Choco Cookie", Price: 15000, Image: "p1.png", MaxOrder: 3, Toppings: []string{"t1", "t2"}}
}

func cheese() domain.Topping {
	return domain.Topping{ID: "t1", Name: "Keju", Price: 3000}
}

func newTestStore(storage domain.CartStorage, opts ...cart.Option) *cart.Store {
	base := []cart.Option{cart.WithIDGenerator(sequentialIDs()), cart.WithLogger(quietLogger())}
	return cart.NewStore(storage, append(base, opts...)...)
}
