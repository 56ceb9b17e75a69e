// Package cart реализует корзину витрины: упорядоченные позиции,
// сохранение после каждого изменения и уведомление подписчиков.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/pricing"
)

// DefaultStorageKey — ключ, под которым корзина лежит в хранилище.
const DefaultStorageKey = "storefront_cart"

// Metrics получает длительность и результат каждой записи корзины.
type Metrics interface {
	ObservePersist(duration time.Duration, err error)
}

// Listener получает событие после успешного сохранения.
// Вызывается синхронно под блокировкой корзины: не должен обращаться к Store.
type Listener func(domain.CartEvent)

// Store — корзина поверх domain.CartStorage.
type Store struct {
	mu      sync.Mutex
	storage domain.CartStorage
	key     string
	lookup  domain.ProductLookup
	items   []domain.CartLineItem

	listeners  map[int]Listener
	listenerID int

	logger  *log.Entry
	metrics Metrics
	newID   func() string
	now     func() time.Time
}

// Option настраивает Store.
type Option func(*Store)

// WithLogger задаёт logger корзины.
func WithLogger(logger *log.Entry) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithStorageKey задаёт ключ хранилища.
func WithStorageKey(key string) Option {
	return func(s *Store) {
		s.key = key
	}
}

// WithProductLookup подключает каталог для актуальных лимитов max_order.
func WithProductLookup(lookup domain.ProductLookup) Option {
	return func(s *Store) {
		s.lookup = lookup
	}
}

// WithMetrics подключает метрики записи.
func WithMetrics(m Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithIDGenerator подменяет генератор идентификаторов позиций.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// WithClock подменяет источник времени для событий.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore создаёт пустую корзину; состояние из хранилища читает Load.
func NewStore(storage domain.CartStorage, opts ...Option) *Store {
	s := &Store{
		storage:   storage,
		key:       DefaultStorageKey,
		items:     []domain.CartLineItem{},
		listeners: make(map[int]Listener),
		newID:     newLineID,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.WithField("component", "cart")
	}
	return s
}

// newLineID генерирует упорядоченный по времени идентификатор позиции.
func newLineID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Load читает корзину из хранилища. Отсутствующие или повреждённые данные
// дают пустую корзину; ошибка наружу не возвращается.
func (s *Store) Load(ctx context.Context) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = []domain.CartLineItem{}

	data, err := s.storage.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, domain.ErrStorageKeyNotFound) {
			s.logger.WithError(err).Warn("failed to read cart, starting empty")
		}
		return domain.Cart{Items: []domain.CartLineItem{}}
	}

	cart, err := Decode(data)
	if err != nil {
		s.logger.WithError(err).Warn("stored cart is malformed, starting empty")
		return domain.Cart{Items: []domain.CartLineItem{}}
	}

	s.items = cart.Items
	s.logger.WithField("lines", len(s.items)).Debug("cart loaded")
	return cart.Clone()
}

// Add добавляет новую позицию в конец корзины и возвращает её.
func (s *Store) Add(ctx context.Context, product domain.Product, qty int, toppings []domain.Topping) (domain.CartLineItem, error) {
	if qty < 1 || (product.HasMaxOrder() && qty > product.MaxOrder) {
		return domain.CartLineItem{}, fmt.Errorf("%w: qty %d for product %s", domain.ErrQuantityOutOfRange, qty, product.ID)
	}
	seen := make(map[string]struct{}, len(toppings))
	for _, t := range toppings {
		if _, dup := seen[t.ID]; dup {
			return domain.CartLineItem{}, fmt.Errorf("%w: %s", domain.ErrDuplicateTopping, t.ID)
		}
		seen[t.ID] = struct{}{}
		if !product.AllowsTopping(t.ID) {
			return domain.CartLineItem{}, fmt.Errorf("%w: %s", domain.ErrToppingNotEligible, t.ID)
		}
	}

	item := domain.CartLineItem{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Image:     product.Image,
		MaxOrder:  product.MaxOrder,
		Qty:       qty,
		Toppings:  append([]domain.Topping(nil), toppings...),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item.ID = s.newID()
	prev := s.snapshotLocked()
	s.items = append(s.items, item)
	if err := s.commitLocked(ctx, prev, domain.CartEventItemAdded, item.ID); err != nil {
		return domain.CartLineItem{}, err
	}
	return item.Clone(), nil
}

// UpdateQuantity меняет количество позиции на delta.
// Отсутствующая позиция игнорируется. Количество ниже 1 удаляет позицию.
// Превышение max_order молча игнорируется: количество не меняется, записи нет.
// Успешное изменение обновляет снимок max_order позиции по текущему каталогу.
func (s *Store) UpdateQuantity(ctx context.Context, lineID string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(lineID)
	if idx < 0 {
		return nil
	}

	item := s.items[idx]
	newQty := item.Qty + delta
	if newQty < 1 {
		return s.removeLocked(ctx, lineID)
	}
	limit := s.maxOrderLocked(item)
	if limit > 0 && newQty > limit {
		s.logger.WithFields(log.Fields{
			"line_id":   lineID,
			"qty":       item.Qty,
			"delta":     delta,
			"max_order": limit,
		}).Debug("quantity update above max_order ignored")
		return nil
	}

	prev := s.snapshotLocked()
	s.items[idx].Qty = newQty
	// снимок лимита следует за каталогом, иначе сохранённая позиция
	// не пройдёт проверку при следующей загрузке
	s.items[idx].MaxOrder = limit
	return s.commitLocked(ctx, prev, domain.CartEventQuantityChanged, lineID)
}

// Remove удаляет позицию, если она есть. Запись выполняется в любом случае.
func (s *Store) Remove(ctx context.Context, lineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(ctx, lineID)
}

// Clear очищает корзину.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.snapshotLocked()
	s.items = []domain.CartLineItem{}
	return s.commitLocked(ctx, prev, domain.CartEventCleared, "")
}

// Persist записывает текущую корзину целиком без уведомления подписчиков.
func (s *Store) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(ctx)
}

// Subscribe регистрирует слушателя и возвращает функцию отписки.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.listenerID
	s.listenerID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Cart возвращает копию корзины.
func (s *Store) Cart() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Cart{Items: s.snapshotLocked()}
}

// Items возвращает копию позиций в порядке добавления.
func (s *Store) Items() []domain.CartLineItem {
	return s.Cart().Items
}

// Item ищет позицию по идентификатору.
func (s *Store) Item(lineID string) (domain.CartLineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(lineID)
	if idx < 0 {
		return domain.CartLineItem{}, false
	}
	return s.items[idx].Clone(), true
}

// Total — сумма стоимостей всех позиций.
func (s *Store) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pricing.CartTotal(s.items)
}

// ItemCount — сумма количеств всех позиций.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pricing.ItemCount(s.items)
}

func (s *Store) removeLocked(ctx context.Context, lineID string) error {
	prev := s.snapshotLocked()
	kept := make([]domain.CartLineItem, 0, len(s.items))
	for _, item := range s.items {
		if item.ID != lineID {
			kept = append(kept, item)
		}
	}
	s.items = kept
	return s.commitLocked(ctx, prev, domain.CartEventItemRemoved, lineID)
}

// commitLocked сохраняет корзину и уведомляет слушателей.
// При ошибке записи состояние откатывается к prev.
func (s *Store) commitLocked(ctx context.Context, prev []domain.CartLineItem, eventType domain.CartEventType, lineID string) error {
	if err := s.persistLocked(ctx); err != nil {
		s.items = prev
		return err
	}

	event := domain.CartEvent{
		Type:     eventType,
		LineID:   lineID,
		Cart:     domain.Cart{Items: s.snapshotLocked()},
		Occurred: s.now().UTC(),
	}
	for _, fn := range s.listeners {
		fn(event)
	}
	return nil
}

func (s *Store) persistLocked(ctx context.Context) error {
	start := time.Now()
	data, err := Encode(domain.Cart{Items: s.items})
	if err == nil {
		err = s.storage.Put(ctx, s.key, data)
	}
	if s.metrics != nil {
		s.metrics.ObservePersist(time.Since(start), err)
	}
	if err != nil {
		s.logger.WithError(err).Error("failed to persist cart")
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}

func (s *Store) maxOrderLocked(item domain.CartLineItem) int {
	if s.lookup != nil {
		if p, ok := s.lookup.Product(item.ProductID); ok {
			return p.MaxOrder
		}
	}
	return item.MaxOrder
}

func (s *Store) indexLocked(lineID string) int {
	for i, item := range s.items {
		if item.ID == lineID {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotLocked() []domain.CartLineItem {
	return domain.Cart{Items: s.items}.Clone().Items
}
