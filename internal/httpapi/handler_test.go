package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storefront/internal/cart"
	"github.com/vladislavdragonenkov/storefront/internal/catalog"
	"github.com/vladislavdragonenkov/storefront/internal/checkout"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	router  *gin.Engine
	store   *cart.Store
	storage *memory.CartStorage
}

func quietLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger.WithField("component", "test")
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(
		[]domain.Product{
			{ID: "p1", Name: "Choco Cookie", Price: 15000, Category: "cookies", MaxOrder: 3, Toppings: []string{"t1", "t2"}},
			{ID: "p2", Name: "Brownie", Price: 20000, Category: "cakes"},
		},
		[]domain.Topping{
			{ID: "t1", Name: "Keju", Price: 3000},
			{ID: "t2", Name: "Meses", Price: 2000},
			{ID: "t3", Name: "Oreo", Price: 4000},
		},
		domain.StoreConfig{Name: "BiteBabe", WhatsApp: "6281999"},
	)
	require.NoError(t, err)
	return cat
}

func newFixture(t *testing.T, cat *catalog.Catalog) *fixture {
	t.Helper()
	storage := memory.NewCartStorage()

	opts := []cart.Option{cart.WithLogger(quietLogger())}
	storeInfo := func() domain.StoreConfig { return domain.StoreConfig{} }
	if cat != nil {
		opts = append(opts, cart.WithProductLookup(cat))
		storeInfo = cat.Store
	}
	store := cart.NewStore(storage, opts...)
	svc := checkout.NewService(store, checkout.WithLogger(quietLogger()), checkout.WithStoreInfo(storeInfo))

	source := func() *catalog.Catalog { return cat }
	handler := NewHandler(source, store, svc, nil, quietLogger())

	return &fixture{router: NewRouter(handler), store: store, storage: storage}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestCatalogRoutes(t *testing.T) {
	f := newFixture(t, testCatalog(t))

	w := f.do(t, http.MethodGet, "/api/store", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "BiteBabe", decode[domain.StoreConfig](t, w).Name)

	w = f.do(t, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, w.Code)
	products := decode[[]productView](t, w)
	require.Len(t, products, 2)
	require.Equal(t, "Rp 15.000", products[0].PriceLabel)

	w = f.do(t, http.MethodGet, "/api/products?category=cakes", nil)
	require.Len(t, decode[[]productView](t, w), 1)

	w = f.do(t, http.MethodGet, "/api/products/p1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[productDetailView](t, w)
	require.Len(t, detail.Toppings, 2)
	require.Equal(t, "t1", detail.Toppings[0].ID)

	w = f.do(t, http.MethodGet, "/api/products/missing", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, CodeNotFound, decode[ErrorResponse](t, w).Error)

	w = f.do(t, http.MethodGet, "/api/toppings", nil)
	require.Len(t, decode[[]toppingView](t, w), 3)

	w = f.do(t, http.MethodGet, "/api/categories", nil)
	require.Equal(t, []string{"cookies", "cakes"}, decode[[]string](t, w))
}

func TestCatalogUnavailable(t *testing.T) {
	f := newFixture(t, nil)

	for _, path := range []string{"/api/store", "/api/products", "/api/products/p1", "/api/toppings"} {
		w := f.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusServiceUnavailable, w.Code, path)
		require.Equal(t, CodeCatalogUnavailable, decode[ErrorResponse](t, w).Error)
	}

	w := f.do(t, http.MethodPost, "/api/cart/items", map[string]any{"product_id": "p1"})
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	// корзина доступна и без каталога
	w = f.do(t, http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestQuoteProduct(t *testing.T) {
	f := newFixture(t, testCatalog(t))

	w := f.do(t, http.MethodPost, "/api/products/p1/quote", map[string]any{"qty": 2, "toppings": []string{"t1"}})
	require.Equal(t, http.StatusOK, w.Code)
	quote := decode[quoteView](t, w)
	require.Equal(t, 2, quote.Qty)
	require.Equal(t, int64(36000), quote.Total)
	require.Equal(t, "Rp 36.000", quote.TotalLabel)

	// количество ограничивается max_order
	w = f.do(t, http.MethodPost, "/api/products/p1/quote", map[string]any{"qty": 10})
	require.Equal(t, 3, decode[quoteView](t, w).Qty)

	w = f.do(t, http.MethodPost, "/api/products/p1/quote", map[string]any{"toppings": []string{"t3"}})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/products/p1/quote", map[string]any{"toppings": []string{"t1", "t1"}})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// черновик не трогает корзину
	require.Empty(t, f.store.Items())
}

func TestCartFlow(t *testing.T) {
	f := newFixture(t, testCatalog(t))

	w := f.do(t, http.MethodPost, "/api/cart/items", map[string]any{"product_id": "p1", "qty": 2, "toppings": []string{"t1"}})
	require.Equal(t, http.StatusCreated, w.Code)
	var added struct {
		Item domain.CartLineItem `json:"item"`
		Cart cartView            `json:"cart"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &added))
	require.Equal(t, int64(36000), added.Cart.Total)
	require.Equal(t, "Rp 36.000", added.Cart.TotalLabel)
	lineID := added.Item.ID

	w = f.do(t, http.MethodPost, "/api/cart/items", map[string]any{"product_id": "p2"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodGet, "/api/cart", nil)
	view := decode[cartView](t, w)
	require.Len(t, view.Items, 2)
	require.Equal(t, int64(56000), view.Total)
	require.Equal(t, 3, view.ItemCount)

	// выше max_order — молча игнорируется
	w = f.do(t, http.MethodPatch, "/api/cart/items/"+lineID, map[string]any{"delta": 5})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 2, decode[cartView](t, w).Items[0].Qty)

	w = f.do(t, http.MethodPatch, "/api/cart/items/"+lineID, map[string]any{"delta": 1})
	require.Equal(t, 3, decode[cartView](t, w).Items[0].Qty)

	// ниже 1 — позиция удаляется
	w = f.do(t, http.MethodPatch, "/api/cart/items/"+lineID, map[string]any{"delta": -5})
	view = decode[cartView](t, w)
	require.Len(t, view.Items, 1)
	require.Equal(t, "p2", view.Items[0].ProductID)

	w = f.do(t, http.MethodDelete, "/api/cart/items/"+view.Items[0].ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, decode[cartView](t, w).Items)
}

func TestAddItem_Errors(t *testing.T) {
	f := newFixture(t, testCatalog(t))

	cases := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{name: "missing product id", body: map[string]any{"qty": 1}, status: http.StatusBadRequest},
		{name: "unknown product", body: map[string]any{"product_id": "nope"}, status: http.StatusNotFound},
		{name: "qty above max", body: map[string]any{"product_id": "p1", "qty": 4}, status: http.StatusBadRequest},
		{name: "qty zero", body: map[string]any{"product_id": "p1", "qty": 0}, status: http.StatusBadRequest},
		{name: "ineligible topping", body: map[string]any{"product_id": "p1", "toppings": []string{"t3"}}, status: http.StatusBadRequest},
		{name: "duplicate topping", body: map[string]any{"product_id": "p1", "toppings": []string{"t1", "t1"}}, status: http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, "/api/cart/items", tc.body)
			require.Equal(t, tc.status, w.Code, w.Body.String())
		})
	}
	require.Empty(t, f.store.Items())
	require.Zero(t, f.storage.Writes())
}

func TestUpdateItem_RequiresDelta(t *testing.T) {
	f := newFixture(t, testCatalog(t))

	w := f.do(t, http.MethodPatch, "/api/cart/items/x", map[string]any{})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// неизвестная позиция — no-op
	w = f.do(t, http.MethodPatch, "/api/cart/items/x", map[string]any{"delta": 1})
	require.Equal(t, http.StatusOK, w.Code)
	require.Zero(t, f.storage.Writes())
}

func TestCheckout(t *testing.T) {
	f := newFixture(t, testCatalog(t))

	w := f.do(t, http.MethodPost, "/api/cart/items", map[string]any{"product_id": "p1", "qty": 2, "toppings": []string{"t1"}})
	require.Equal(t, http.StatusCreated, w.Code)

	writes := f.storage.Writes()
	w = f.do(t, http.MethodPost, "/api/checkout", map[string]any{"name": "", "address": "Jl. Mawar 1"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Equal(t, CodeValidationFailed, decode[ErrorResponse](t, w).Error)
	require.Equal(t, writes, f.storage.Writes())
	require.Len(t, f.store.Items(), 1)

	w = f.do(t, http.MethodPost, "/api/checkout", map[string]any{"name": "Ani", "address": "Jl. Mawar 1", "payment_method": "COD"})
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[checkoutView](t, w)
	require.Equal(t, domain.CheckoutStateDispatched, view.State)
	require.Equal(t, int64(36000), view.Total)
	require.True(t, strings.HasPrefix(view.DispatchURL, "https://wa.me/6281999?text="))
	require.Contains(t, view.Message, "🍪 Choco Cookie x2 — Rp 36.000")
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newFixture(t, testCatalog(t))

	w := f.do(t, http.MethodPost, "/api/checkout", map[string]any{"name": "Ani", "address": "Jl. Mawar 1"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
