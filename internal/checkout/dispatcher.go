package checkout

import (
	"context"
	"net/url"
	"strings"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const (
	// DefaultDispatchBaseURL — адрес ссылки-передачи заказа в WhatsApp.
	DefaultDispatchBaseURL = "https://wa.me/"
	// FallbackRecipient используется, если в настройках магазина номер не указан.
	FallbackRecipient = "628123456789"
)

// LinkDispatcher строит URI вида https://wa.me/<номер>?text=<сообщение>.
// Ссылку открывает вызывающий, результат не отслеживается.
type LinkDispatcher struct {
	BaseURL  string
	Fallback string
}

// NewLinkDispatcher создаёт диспетчер со значениями по умолчанию.
func NewLinkDispatcher() *LinkDispatcher {
	return &LinkDispatcher{BaseURL: DefaultDispatchBaseURL, Fallback: FallbackRecipient}
}

// Dispatch возвращает URI передачи заказа.
func (d *LinkDispatcher) Dispatch(_ context.Context, order domain.Order) (string, error) {
	recipient := strings.TrimSpace(order.Recipient)
	if recipient == "" {
		recipient = d.Fallback
	}
	return BuildURL(d.BaseURL, recipient, order.Message), nil
}

// componentUnescaper возвращает символы, которые encodeURIComponent оставляет как есть.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// BuildURL кодирует сообщение так же, как encodeURIComponent: пробел кодируется как %20.
func BuildURL(baseURL, recipient, message string) string {
	if baseURL == "" {
		baseURL = DefaultDispatchBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	text := componentUnescaper.Replace(url.QueryEscape(message))
	return baseURL + url.PathEscape(recipient) + "?text=" + text
}

var _ domain.OrderDispatcher = (*LinkDispatcher)(nil)
