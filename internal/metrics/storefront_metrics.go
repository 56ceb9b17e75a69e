// Package metrics публикует метрики витрины в Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/pricing"
)

// StorefrontMetrics содержит метрики корзины, оформления и каталога.
type StorefrontMetrics struct {
	// Корзина
	cartMutations  *prometheus.CounterVec
	persistLatency prometheus.Histogram
	persistFailed  prometheus.Counter
	cartLines      prometheus.Gauge
	cartItems      prometheus.Gauge
	cartTotal      prometheus.Gauge

	// Оформление
	checkouts      *prometheus.CounterVec
	mirrorFailures *prometheus.CounterVec

	// Каталог и ретрансляция событий
	catalogLoads *prometheus.CounterVec
	relayEvents  *prometheus.CounterVec
}

// NewStorefrontMetrics регистрирует метрики в DefaultRegisterer.
func NewStorefrontMetrics() *StorefrontMetrics {
	return NewStorefrontMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewStorefrontMetricsWithRegisterer регистрирует метрики в переданном registerer.
// Повторная регистрация возвращает уже существующие коллекторы.
func NewStorefrontMetricsWithRegisterer(registerer prometheus.Registerer) *StorefrontMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &StorefrontMetrics{
		cartMutations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_cart_mutations_total",
			Help: "Total number of committed cart mutations by event type",
		}, []string{"type"}),
		persistLatency: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "storefront_cart_persist_duration_seconds",
			Help:    "Duration of cart snapshot writes in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
		persistFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_cart_persist_failures_total",
			Help: "Total number of failed cart snapshot writes",
		}),
		cartLines: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "storefront_cart_lines",
			Help: "Number of line items in the cart",
		}),
		cartItems: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "storefront_cart_items",
			Help: "Sum of quantities across the cart",
		}),
		cartTotal: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "storefront_cart_total",
			Help: "Cart total in minor currency units",
		}),
		checkouts: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_checkouts_total",
			Help: "Total number of checkout attempts by final state",
		}, []string{"state"}),
		mirrorFailures: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_order_mirror_failures_total",
			Help: "Total number of failed order mirror publishes by sink",
		}, []string{"sink"}),
		catalogLoads: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_catalog_loads_total",
			Help: "Total number of catalog loads by result",
		}, []string{"result"}),
		relayEvents: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_relay_events_total",
			Help: "Total number of relayed cart events by result",
		}, []string{"result"}),
	}
}

// ObservePersist фиксирует длительность и исход записи снимка корзины.
func (m *StorefrontMetrics) ObservePersist(duration time.Duration, err error) {
	m.persistLatency.Observe(duration.Seconds())
	if err != nil {
		m.persistFailed.Inc()
	}
}

// OnCartEvent обновляет счётчик мутаций и gauge-и состояния корзины.
func (m *StorefrontMetrics) OnCartEvent(event domain.CartEvent) {
	m.cartMutations.WithLabelValues(string(event.Type)).Inc()
	m.cartLines.Set(float64(len(event.Cart.Items)))
	m.cartItems.Set(float64(pricing.ItemCount(event.Cart.Items)))
	m.cartTotal.Set(float64(pricing.CartTotal(event.Cart.Items)))
}

// RecordCheckout увеличивает счётчик оформлений с итоговым состоянием.
func (m *StorefrontMetrics) RecordCheckout(state domain.CheckoutState) {
	m.checkouts.WithLabelValues(string(state)).Inc()
}

// RecordMirrorFailure увеличивает счётчик сбоев вспомогательного канала.
func (m *StorefrontMetrics) RecordMirrorFailure(sink string) {
	m.mirrorFailures.WithLabelValues(sink).Inc()
}

// RecordCatalogLoad фиксирует исход загрузки каталога.
func (m *StorefrontMetrics) RecordCatalogLoad(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.catalogLoads.WithLabelValues(result).Inc()
}

// RecordRelay фиксирует исход ретрансляции события корзины: published, failed или dropped.
func (m *StorefrontMetrics) RecordRelay(result string) {
	m.relayEvents.WithLabelValues(result).Inc()
}
