package app

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/cart"
	"github.com/vladislavdragonenkov/storefront/internal/catalog"
	"github.com/vladislavdragonenkov/storefront/internal/checkout"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/httpapi"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
	"github.com/vladislavdragonenkov/storefront/internal/pricing"
	"github.com/vladislavdragonenkov/storefront/internal/service/relay"
)

// Storefront владеет каталогом, корзиной и сервисом оформления.
// Каталог может отсутствовать: тогда витрина работает в деградированном режиме.
type Storefront struct {
	mu         sync.RWMutex
	catalog    *catalog.Catalog
	catalogErr error
	catalogDir string

	Cart     *cart.Store
	Checkout *checkout.Service
	Money    *pricing.Formatter
	Relay    *relay.Worker

	metrics *metrics.StorefrontMetrics
	logger  *log.Entry
}

// Publishers — необязательные внешние каналы.
type Publishers struct {
	CartEvents domain.CartEventPublisher
	Orders     map[string]domain.OrderPublisher
}

// NewStorefront собирает витрину поверх открытого хранилища.
// Ошибка загрузки каталога не фатальна и доступна через CatalogErr.
func NewStorefront(ctx context.Context, cfg Config, storage domain.CartStorage, pubs Publishers, m *metrics.StorefrontMetrics, logger *log.Entry) (*Storefront, error) {
	if logger == nil {
		logger = log.WithField("component", "storefront")
	}

	money, err := pricing.NewFormatter(cfg.Money)
	if err != nil {
		return nil, err
	}

	sf := &Storefront{
		catalogDir: cfg.CatalogDir,
		Money:      money,
		metrics:    m,
		logger:     logger,
	}
	_ = sf.ReloadCatalog(ctx)

	cartOpts := []cart.Option{
		cart.WithLogger(logger.WithField("layer", "cart")),
		cart.WithStorageKey(cfg.CartKey),
		cart.WithProductLookup(sf),
	}
	if m != nil {
		cartOpts = append(cartOpts, cart.WithMetrics(m))
	}
	sf.Cart = cart.NewStore(storage, cartOpts...)
	sf.Cart.Load(ctx)
	if m != nil {
		sf.Cart.Subscribe(m.OnCartEvent)
	}

	if pubs.CartEvents != nil {
		relayOpts := []relay.Option{
			relay.WithLogger(logger.WithField("layer", "relay")),
			relay.WithBufferSize(cfg.RelayBufferSize),
			relay.WithMaxAttempts(cfg.RelayMaxAttempts),
		}
		if m != nil {
			relayOpts = append(relayOpts, relay.WithMetrics(m))
		}
		sf.Relay = relay.NewWorker(pubs.CartEvents, relayOpts...)
		sf.Cart.Subscribe(func(event domain.CartEvent) {
			sf.Relay.Enqueue(event)
		})
	}

	dispatcher := checkout.NewLinkDispatcher()
	if cfg.DispatchBaseURL != "" {
		dispatcher.BaseURL = cfg.DispatchBaseURL
	}
	checkoutOpts := []checkout.Option{
		checkout.WithLogger(logger.WithField("layer", "checkout")),
		checkout.WithFormatter(checkout.NewFormatter(money)),
		checkout.WithDispatcher(dispatcher),
		checkout.WithStoreInfo(sf.StoreInfo),
		checkout.WithClearOnDispatch(cfg.ClearCartOnCheckout),
	}
	if m != nil {
		checkoutOpts = append(checkoutOpts, checkout.WithMetrics(m))
	}
	for name, publisher := range pubs.Orders {
		checkoutOpts = append(checkoutOpts, checkout.WithMirror(name, publisher))
	}
	sf.Checkout = checkout.NewService(sf.Cart, checkoutOpts...)

	return sf, nil
}

// ReloadCatalog перечитывает каталог. При ошибке прежний каталог сохраняется.
func (s *Storefront) ReloadCatalog(ctx context.Context) error {
	cat, err := catalog.LoadDir(ctx, s.catalogDir)
	if s.metrics != nil {
		s.metrics.RecordCatalogLoad(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.catalogErr = err
		s.logger.WithError(err).WithField("dir", s.catalogDir).Warn("catalog load failed, storefront is degraded")
		return err
	}
	s.catalog = cat
	s.catalogErr = nil
	s.logger.WithFields(log.Fields{
		"products": len(cat.Products()),
		"toppings": len(cat.Toppings()),
	}).Info("catalog loaded")
	return nil
}

// Catalog возвращает текущий каталог или nil.
func (s *Storefront) Catalog() *catalog.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// CatalogErr возвращает ошибку последней загрузки каталога.
func (s *Storefront) CatalogErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalogErr
}

// CatalogHealth — проверка для health handler.
func (s *Storefront) CatalogHealth(context.Context) error {
	if s.Catalog() == nil {
		if err := s.CatalogErr(); err != nil {
			return err
		}
		return domain.ErrCatalogUnavailable
	}
	return s.CatalogErr()
}

// Product реализует domain.ProductLookup поверх текущего каталога.
func (s *Storefront) Product(id string) (domain.Product, bool) {
	cat := s.Catalog()
	if cat == nil {
		return domain.Product{}, false
	}
	return cat.Product(id)
}

// StoreInfo возвращает настройки магазина или пустые значения без каталога.
func (s *Storefront) StoreInfo() domain.StoreConfig {
	cat := s.Catalog()
	if cat == nil {
		return domain.StoreConfig{}
	}
	return cat.Store()
}

// Handler создаёт HTTP обработчики витрины.
func (s *Storefront) Handler() *httpapi.Handler {
	return httpapi.NewHandler(s.Catalog, s.Cart, s.Checkout, s.Money, s.logger.WithField("layer", "http"))
}

// RunRelay запускает ретрансляцию событий, если она настроена.
func (s *Storefront) RunRelay(ctx context.Context) {
	if s.Relay == nil {
		return
	}
	s.Relay.Run(ctx)
}

var _ domain.ProductLookup = (*Storefront)(nil)
