package resthttp

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/catalog"
)

// OrderService — операции заказов, нужные HTTP-слою. Под интерфейс подходит
// и сам сервис, и его логирующий декоратор.
type OrderService interface {
	List(ctx context.Context) ([]domain.Order, error)
	ListByProduct(ctx context.Context, productID int64) ([]domain.Order, error)
	PlaceOrder(ctx context.Context, productID int64, customerName string) (domain.Order, error)
}

// Handler реализует REST API поверх сервисов каталога и заказов.
type Handler struct {
	catalog *catalog.Service
	orders  OrderService
	logger  *log.Entry
}

// NewHandler конструирует HTTP-обработчик с зависимостями.
func NewHandler(catalogSvc *catalog.Service, orderSvc OrderService, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.New().WithField("component", "resthttp")
	}
	return &Handler{
		catalog: catalogSvc,
		orders:  orderSvc,
		logger:  logger,
	}
}

// Routes собирает таблицу маршрутов сервиса.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger(h.logger))

	r.Get("/orders", h.listOrders)
	r.Post("/orders", h.placeOrder)
	r.Get("/products", h.listProducts)
	r.Post("/products", h.createProduct)
	r.Get("/products/{id}/orders", h.listProductOrders)
	r.Patch("/products/{id}/update", h.adjustStock)

	return r
}

type orderRequest struct {
	ProductID    int64  `json:"productId"`
	CustomerName string `json:"customerName"`
}

type productRequest struct {
	ProductName string `json:"productName"`
	Stock       int64  `json:"stock"`
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	payload := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		payload = append(payload, toOrderResponse(order))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorStatus(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orders.PlaceOrder(r.Context(), req.ProductID, req.CustomerName)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	payload := make([]productResponse, 0, len(products))
	for _, product := range products {
		payload = append(payload, toProductResponse(product))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorStatus(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.catalog.Create(r.Context(), req.ProductName, req.Stock)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *Handler) listProductOrders(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeErrorStatus(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	productOrders, err := h.orders.ListByProduct(r.Context(), productID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	payload := make([]orderResponse, 0, len(productOrders))
	for _, order := range productOrders {
		payload = append(payload, toOrderResponse(order))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeErrorStatus(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	delta, err := strconv.ParseInt(r.URL.Query().Get("stock"), 10, 64)
	if err != nil {
		h.writeErrorStatus(w, r, http.StatusBadRequest, "invalid stock parameter")
		return
	}

	product, err := h.catalog.AdjustStock(r.Context(), productID, delta)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
