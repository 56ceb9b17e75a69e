package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// CartStorage — простая in-memory реализация domain.CartStorage.
type CartStorage struct {
	mu     sync.RWMutex
	values map[string][]byte
	writes int
}

// NewCartStorage возвращает in-memory хранилище для локальной разработки и тестов.
func NewCartStorage() *CartStorage {
	return &CartStorage{values: make(map[string][]byte)}
}

// Get возвращает копию сохранённого значения.
func (s *CartStorage) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.values[key]
	if !ok {
		return nil, domain.ErrStorageKeyNotFound
	}
	return append([]byte(nil), data...), nil
}

// Put сохраняет копию, чтобы избежать мутаций извне.
func (s *CartStorage) Put(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = append([]byte(nil), data...)
	s.writes++
	return nil
}

// Delete удаляет ключ.
func (s *CartStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

// Writes возвращает количество выполненных Put.
func (s *CartStorage) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// Ping всегда успешен.
func (s *CartStorage) Ping(context.Context) error {
	return nil
}

var _ domain.CartStorage = (*CartStorage)(nil)
