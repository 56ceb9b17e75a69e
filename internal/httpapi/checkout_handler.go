package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Checkout handles POST /api/checkout.
// Возвращает ссылку передачи заказа; открыть её должен клиент.
func (h *Handler) Checkout(c *gin.Context) {
	var req domain.Customer
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	res, err := h.checkout.Checkout(c.Request.Context(), req)
	if err != nil {
		if res.State == domain.CheckoutStateFormatted {
			h.logger.WithError(err).WithField("order_id", res.Order.ID).Warn("order dispatch failed")
			c.JSON(http.StatusBadGateway, ErrorResponse{
				Error:   CodeDispatchFailed,
				Message: "Order could not be dispatched",
				Details: err.Error(),
			})
			return
		}
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, checkoutView{
		OrderID:     res.Order.ID,
		State:       res.State,
		Transitions: res.Transitions,
		Message:     res.Order.Message,
		DispatchURL: res.DispatchURL,
		Total:       res.Order.Total,
		TotalLabel:  h.money.Format(res.Order.Total),
	})
}
