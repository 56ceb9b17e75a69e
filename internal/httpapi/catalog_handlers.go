package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/storefront/internal/cart"
	"github.com/vladislavdragonenkov/storefront/internal/catalog"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type quoteRequest struct {
	Qty      int      `json:"qty"`
	Toppings []string `json:"toppings"`
}

// loadedCatalog возвращает каталог или отвечает 503.
func (h *Handler) loadedCatalog(c *gin.Context) (*catalog.Catalog, bool) {
	cat := h.catalog()
	if cat == nil {
		h.fail(c, domain.ErrCatalogUnavailable)
		return nil, false
	}
	return cat, true
}

func (h *Handler) lookupProduct(c *gin.Context, cat *catalog.Catalog, id string) (domain.Product, bool) {
	product, ok := cat.Product(id)
	if !ok {
		h.fail(c, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id))
		return domain.Product{}, false
	}
	return product, true
}

// GetStore handles GET /api/store
func (h *Handler) GetStore(c *gin.Context) {
	cat, ok := h.loadedCatalog(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, cat.Store())
}

// ListCategories handles GET /api/categories
func (h *Handler) ListCategories(c *gin.Context) {
	cat, ok := h.loadedCatalog(c)
	if !ok {
		return
	}
	categories := cat.Categories()
	if categories == nil {
		categories = []string{}
	}
	c.JSON(http.StatusOK, categories)
}

// ListProducts handles GET /api/products?category=
func (h *Handler) ListProducts(c *gin.Context) {
	cat, ok := h.loadedCatalog(c)
	if !ok {
		return
	}

	category := c.Query("category")
	views := make([]productView, 0, len(cat.Products()))
	for _, p := range cat.Products() {
		if category != "" && p.Category != category {
			continue
		}
		views = append(views, h.productView(p))
	}
	c.JSON(http.StatusOK, views)
}

// GetProduct handles GET /api/products/:id
func (h *Handler) GetProduct(c *gin.Context) {
	cat, ok := h.loadedCatalog(c)
	if !ok {
		return
	}
	product, ok := h.lookupProduct(c, cat, c.Param("id"))
	if !ok {
		return
	}

	c.JSON(http.StatusOK, productDetailView{
		Product:  h.productView(product),
		Toppings: h.toppingViews(cat.EligibleToppings(product)),
	})
}

// QuoteProduct handles POST /api/products/:id/quote.
// Считает стоимость черновика позиции; количество ограничивается [1, max_order].
func (h *Handler) QuoteProduct(c *gin.Context) {
	cat, ok := h.loadedCatalog(c)
	if !ok {
		return
	}
	product, ok := h.lookupProduct(c, cat, c.Param("id"))
	if !ok {
		return
	}

	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	if _, err := cat.ResolveToppings(product, req.Toppings); err != nil {
		h.fail(c, err)
		return
	}

	draft := cart.NewDraft(product, cat.EligibleToppings(product))
	if req.Qty != 0 {
		draft.SetQty(req.Qty)
	}
	for _, id := range req.Toppings {
		if _, err := draft.ToggleTopping(id); err != nil {
			h.fail(c, err)
			return
		}
	}

	total := draft.Total()
	c.JSON(http.StatusOK, quoteView{
		ProductID:  product.ID,
		Qty:        draft.Qty(),
		Toppings:   h.toppingViews(draft.Selected()),
		Total:      total,
		TotalLabel: h.money.Format(total),
	})
}

// ListToppings handles GET /api/toppings
func (h *Handler) ListToppings(c *gin.Context) {
	cat, ok := h.loadedCatalog(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.toppingViews(cat.Toppings()))
}
