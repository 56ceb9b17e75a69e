package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// ErrorResponse — тело ответа при ошибке.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Коды ошибок API.
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeNotFound           = "NOT_FOUND"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeCatalogUnavailable = "CATALOG_UNAVAILABLE"
	CodeDispatchFailed     = "DISPATCH_FAILED"
	CodeInternal           = "INTERNAL"
)

// classify сопоставляет доменную ошибку с HTTP статусом и кодом.
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrCatalogUnavailable), domain.IsLoadFailure(err):
		return http.StatusServiceUnavailable, CodeCatalogUnavailable, "Catalog is not loaded"
	case domain.IsValidationFailure(err):
		return http.StatusUnprocessableEntity, CodeValidationFailed, "Order cannot be placed"
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, CodeNotFound, "Product not found"
	case domain.IsBoundsRejection(err):
		return http.StatusBadRequest, CodeInvalidInput, "Quantity is out of range"
	case errors.Is(err, domain.ErrToppingNotFound),
		errors.Is(err, domain.ErrToppingNotEligible),
		errors.Is(err, domain.ErrDuplicateTopping):
		return http.StatusBadRequest, CodeInvalidInput, "Invalid topping selection"
	default:
		return http.StatusInternalServerError, CodeInternal, "Internal error"
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	status, code, message := classify(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		h.logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	c.JSON(status, ErrorResponse{
		Error:   code,
		Message: message,
		Details: err.Error(),
	})
}

func badRequest(c *gin.Context, message string, err error) {
	resp := ErrorResponse{Error: CodeInvalidInput, Message: message}
	if err != nil {
		resp.Details = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}
