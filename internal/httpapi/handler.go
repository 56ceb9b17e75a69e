// Package httpapi — JSON API витрины поверх каталога, корзины и оформления заказа.
package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/cart"
	"github.com/vladislavdragonenkov/storefront/internal/catalog"
	"github.com/vladislavdragonenkov/storefront/internal/checkout"
	"github.com/vladislavdragonenkov/storefront/internal/pricing"
)

// CatalogSource возвращает загруженный каталог или nil, если витрина деградировала.
type CatalogSource func() *catalog.Catalog

// Handler держит явные ссылки на компоненты витрины.
type Handler struct {
	catalog  CatalogSource
	cart     *cart.Store
	checkout *checkout.Service
	money    *pricing.Formatter
	logger   *log.Entry
}

// NewHandler создаёт обработчики API.
func NewHandler(source CatalogSource, store *cart.Store, svc *checkout.Service, money *pricing.Formatter, logger *log.Entry) *Handler {
	if source == nil {
		source = func() *catalog.Catalog { return nil }
	}
	if money == nil {
		money = pricing.MustFormatter(pricing.DefaultFormatterConfig())
	}
	if logger == nil {
		logger = log.WithField("component", "http-api")
	}
	return &Handler{
		catalog:  source,
		cart:     store,
		checkout: svc,
		money:    money,
		logger:   logger,
	}
}

// Register вешает маршруты API на router.
func (h *Handler) Register(r gin.IRouter) {
	api := r.Group("/api")

	api.GET("/store", h.GetStore)
	api.GET("/categories", h.ListCategories)
	api.GET("/products", h.ListProducts)
	api.GET("/products/:id", h.GetProduct)
	api.POST("/products/:id/quote", h.QuoteProduct)
	api.GET("/toppings", h.ListToppings)

	api.GET("/cart", h.GetCart)
	api.DELETE("/cart", h.ClearCart)
	api.POST("/cart/items", h.AddItem)
	api.PATCH("/cart/items/:id", h.UpdateItem)
	api.DELETE("/cart/items/:id", h.RemoveItem)

	api.POST("/checkout", h.Checkout)
}

// NewRouter собирает gin.Engine с recovery и логированием запросов.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(h.logger))
	h.Register(router)
	return router
}

func requestLogger(logger *log.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(log.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		if c.Writer.Status() >= 500 {
			entry.Warn("http request")
			return
		}
		entry.Debug("http request")
	}
}
