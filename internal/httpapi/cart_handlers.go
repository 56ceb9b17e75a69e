package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type addItemRequest struct {
	ProductID string   `json:"product_id" binding:"required"`
	Qty       *int     `json:"qty"`
	Toppings  []string `json:"toppings"`
}

type updateItemRequest struct {
	Delta *int `json:"delta" binding:"required"`
}

// GetCart handles GET /api/cart
func (h *Handler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.cartView(h.cart.Items()))
}

// AddItem handles POST /api/cart/items
func (h *Handler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	cat, ok := h.loadedCatalog(c)
	if !ok {
		return
	}
	product, ok := h.lookupProduct(c, cat, req.ProductID)
	if !ok {
		return
	}
	toppings, err := cat.ResolveToppings(product, req.Toppings)
	if err != nil {
		h.fail(c, err)
		return
	}

	qty := 1
	if req.Qty != nil {
		qty = *req.Qty
	}

	item, err := h.cart.Add(c.Request.Context(), product, qty, toppings)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"item": item,
		"cart": h.cartView(h.cart.Items()),
	})
}

// UpdateItem handles PATCH /api/cart/items/:id.
// Выход за max_order молча игнорируется, падение ниже 1 удаляет позицию.
func (h *Handler) UpdateItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	if err := h.cart.UpdateQuantity(c.Request.Context(), c.Param("id"), *req.Delta); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.cartView(h.cart.Items()))
}

// RemoveItem handles DELETE /api/cart/items/:id
func (h *Handler) RemoveItem(c *gin.Context) {
	if err := h.cart.Remove(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.cartView(h.cart.Items()))
}

// ClearCart handles DELETE /api/cart
func (h *Handler) ClearCart(c *gin.Context) {
	if err := h.cart.Clear(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.cartView(h.cart.Items()))
}
