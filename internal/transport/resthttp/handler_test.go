package resthttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/catalog"
	"github.com/vladislavdragonenkov/storefront/internal/service/orders"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

func newTestHandler(t *testing.T) (*Handler, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	catalogSvc := catalog.NewService(store.Products(), nil)
	orderSvc := orders.NewServiceWithoutMetrics(store, store.Orders(), nil)
	return NewHandler(catalogSvc, orderSvc, nil), store
}

func doRequest(t *testing.T, h *Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestListProducts_Empty(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/products", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())
}

func TestCreateProduct(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/products", productRequest{
		ProductName: "ssd disk",
		Stock:       10,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[productResponse](t, rec)
	require.Equal(t, int64(1), got.ProductID)
	require.Equal(t, "ssd disk", got.ProductName)
	require.Equal(t, int64(10), got.Stock)
}

func TestCreateProduct_InvalidBody(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[errorResponse](t, rec)
	require.Equal(t, http.StatusBadRequest, body.Status)
	require.Equal(t, "Bad Request", body.Error)
	require.Equal(t, "/products", body.Path)
	require.NotEmpty(t, body.Timestamp)
}

func TestPlaceOrder_Success(t *testing.T) {
	h, store := newTestHandler(t)
	seedProduct(t, store, "keyboard", 3)

	rec := doRequest(t, h, http.MethodPost, "/orders", orderRequest{
		ProductID:    1,
		CustomerName: "alice",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[orderResponse](t, rec)
	require.Equal(t, int64(1), got.OrderID)
	require.Equal(t, "alice", got.CustomerName)
	require.Equal(t, int64(1), got.Product.ProductID)
	require.Equal(t, int64(2), got.Product.Stock)
}

func TestPlaceOrder_ProductNotFound(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/orders", orderRequest{
		ProductID:    42,
		CustomerName: "alice",
	})

	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody[errorResponse](t, rec)
	require.Equal(t, http.StatusNotFound, body.Status)
	require.Equal(t, "Not Found", body.Error)
	require.Equal(t, domain.ErrProductNotFound.Error(), body.Message)
	require.Equal(t, "/orders", body.Path)
}

func TestPlaceOrder_OutOfStock(t *testing.T) {
	h, store := newTestHandler(t)
	seedProduct(t, store, "keyboard", 0)

	rec := doRequest(t, h, http.MethodPost, "/orders", orderRequest{
		ProductID:    1,
		CustomerName: "bob",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[errorResponse](t, rec)
	require.Equal(t, domain.ErrOutOfStock.Error(), body.Message)
}

func TestListOrders(t *testing.T) {
	h, store := newTestHandler(t)
	seedProduct(t, store, "keyboard", 5)

	for i := 0; i < 2; i++ {
		rec := doRequest(t, h, http.MethodPost, "/orders", orderRequest{ProductID: 1, CustomerName: "alice"})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doRequest(t, h, http.MethodGet, "/orders", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[[]orderResponse](t, rec)
	require.Len(t, got, 2)
	require.Equal(t, "alice", got[0].CustomerName)
}

func TestListProductOrders(t *testing.T) {
	h, store := newTestHandler(t)
	seedProduct(t, store, "keyboard", 5)
	seedProduct(t, store, "mouse", 5)

	for _, req := range []orderRequest{
		{ProductID: 1, CustomerName: "alice"},
		{ProductID: 2, CustomerName: "bob"},
		{ProductID: 1, CustomerName: "carol"},
	} {
		rec := doRequest(t, h, http.MethodPost, "/orders", req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doRequest(t, h, http.MethodGet, "/products/1/orders", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[[]orderResponse](t, rec)
	require.Len(t, got, 2)
	for _, order := range got {
		require.Equal(t, int64(1), order.Product.ProductID)
	}
}

func TestListProductOrders_EmptyAndInvalid(t *testing.T) {
	h, store := newTestHandler(t)
	seedProduct(t, store, "keyboard", 5)

	rec := doRequest(t, h, http.MethodGet, "/products/1/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())

	rec = doRequest(t, h, http.MethodGet, "/products/abc/orders", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdjustStock(t *testing.T) {
	h, store := newTestHandler(t)
	seedProduct(t, store, "keyboard", 5)

	rec := doRequest(t, h, http.MethodPatch, "/products/1/update?stock=7", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[productResponse](t, rec)
	require.Equal(t, int64(12), got.Stock)
}

func TestAdjustStock_BelowZero(t *testing.T) {
	h, store := newTestHandler(t)
	seedProduct(t, store, "keyboard", 3)

	rec := doRequest(t, h, http.MethodPatch, "/products/1/update?stock=-10", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[errorResponse](t, rec)
	require.Equal(t, domain.ErrStockBelowZero.Error(), body.Message)
}

func TestAdjustStock_UnknownProduct(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPatch, "/products/99/update?stock=1", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdjustStock_InvalidParams(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPatch, "/products/abc/update?stock=1", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodPatch, "/products/1/update?stock=many", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInternalErrorHidesDetails(t *testing.T) {
	store := memory.NewStore()
	catalogSvc := catalog.NewService(store.Products(), nil)
	h := NewHandler(catalogSvc, failingOrderService{}, nil)

	rec := doRequest(t, h, http.MethodGet, "/orders", nil)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody[errorResponse](t, rec)
	require.Equal(t, internalErrorMessage, body.Message)
	require.Equal(t, "Internal Server Error", body.Error)
}

type failingOrderService struct{}

func (failingOrderService) List(context.Context) ([]domain.Order, error) {
	return nil, errFailingService
}

func (failingOrderService) ListByProduct(context.Context, int64) ([]domain.Order, error) {
	return nil, errFailingService
}

func (failingOrderService) PlaceOrder(context.Context, int64, string) (domain.Order, error) {
	return domain.Order{}, errFailingService
}

var errFailingService = errors.New("connection refused")

func seedProduct(t *testing.T, store *memory.Store, name string, stock int64) {
	t.Helper()

	_, err := store.Products().Create(context.Background(), domain.Product{Name: name, Stock: stock})
	require.NoError(t, err)
}
