package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/storefront/internal/cart/domain"
	"github.com/tair/storefront/internal/cart/usecase/command"
	"github.com/tair/storefront/internal/cart/usecase/query"
	catalogdomain "github.com/tair/storefront/internal/catalog/domain"
	userhttp "github.com/tair/storefront/internal/user/delivery/http"
	"github.com/tair/storefront/pkg/logger"
)

// CartHandler handles HTTP requests for the shopping cart
type CartHandler struct {
	// Command handlers
	addHandler      *command.AddItemHandler
	increaseHandler *command.IncreaseItemHandler
	decreaseHandler *command.DecreaseItemHandler
	removeHandler   *command.RemoveItemHandler

	// Query handlers
	getHandler *query.GetCartHandler

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewCartHandler creates a new cart handler (manual DI)
func NewCartHandler(carts domain.CartRepository, products catalogdomain.ProductRepository) *CartHandler {
	return NewCartHandlerWithDI(
		command.NewAddItemHandler(carts, products),
		command.NewIncreaseItemHandler(carts, products),
		command.NewDecreaseItemHandler(carts),
		command.NewRemoveItemHandler(carts),
		query.NewGetCartHandler(carts, products),
	)
}

// NewCartHandlerWithDI creates a new cart handler using dependency injection
func NewCartHandlerWithDI(
	addHandler *command.AddItemHandler,
	increaseHandler *command.IncreaseItemHandler,
	decreaseHandler *command.DecreaseItemHandler,
	removeHandler *command.RemoveItemHandler,
	getHandler *query.GetCartHandler,
) *CartHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_requests_total",
			Help: "Total number of requests to cart endpoints",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cart_request_duration_seconds",
			Help:    "Duration of cart endpoint requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)

	return &CartHandler{
		addHandler:      addHandler,
		increaseHandler: increaseHandler,
		decreaseHandler: decreaseHandler,
		removeHandler:   removeHandler,
		getHandler:      getHandler,
		requestCounter:  requestCounter,
		requestLatency:  requestLatency,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (h *CartHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
	}
}

// RegisterRoutes mounts the cart routes. All of them require a signed-in user.
func (h *CartHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/cart",
		h.metricsMiddleware("/api/cart", userhttp.AuthMiddleware(h.GetCart))).Methods("GET")
	router.HandleFunc("/api/products/{id}/cart",
		h.metricsMiddleware("/api/products/{id}/cart", userhttp.AuthMiddleware(h.AddItem))).Methods("POST")
	router.HandleFunc("/api/cart/items/{id}/increase",
		h.metricsMiddleware("/api/cart/items/{id}/increase", userhttp.AuthMiddleware(h.IncreaseItem))).Methods("POST")
	router.HandleFunc("/api/cart/items/{id}/decrease",
		h.metricsMiddleware("/api/cart/items/{id}/decrease", userhttp.AuthMiddleware(h.DecreaseItem))).Methods("POST")
	router.HandleFunc("/api/cart/items/{id}",
		h.metricsMiddleware("/api/cart/items/{id}", userhttp.AuthMiddleware(h.RemoveItem))).Methods("DELETE")
}

// GetCart handles GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, _ := userhttp.UserIDFromContext(r.Context())

	view, err := h.getHandler.Handle(query.GetCartQuery{UserID: userID})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to load cart")
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to load cart"})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: view})
}

// AddItem handles POST /api/products/{id}/cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	productID, err := parseID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid product ID"})
		return
	}

	userID, _ := userhttp.UserIDFromContext(r.Context())

	item, err := h.addHandler.Handle(command.AddItemCommand{UserID: userID, ProductID: productID})
	if err != nil {
		h.respondCartError(w, r, err, "Failed to add item to cart")
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Item added to cart",
		Data:    item,
	})
}

// IncreaseItem handles POST /api/cart/items/{id}/increase
func (h *CartHandler) IncreaseItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := parseID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid cart item ID"})
		return
	}

	userID, _ := userhttp.UserIDFromContext(r.Context())

	item, err := h.increaseHandler.Handle(command.IncreaseItemCommand{ItemID: itemID, UserID: userID})
	if err != nil {
		h.respondCartError(w, r, err, "Failed to increase quantity")
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: item})
}

// DecreaseItem handles POST /api/cart/items/{id}/decrease
func (h *CartHandler) DecreaseItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := parseID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid cart item ID"})
		return
	}

	userID, _ := userhttp.UserIDFromContext(r.Context())

	item, err := h.decreaseHandler.Handle(command.DecreaseItemCommand{ItemID: itemID, UserID: userID})
	if err != nil {
		h.respondCartError(w, r, err, "Failed to decrease quantity")
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: item})
}

// RemoveItem handles DELETE /api/cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := parseID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid cart item ID"})
		return
	}

	userID, _ := userhttp.UserIDFromContext(r.Context())

	if err := h.removeHandler.Handle(command.RemoveItemCommand{ItemID: itemID, UserID: userID}); err != nil {
		h.respondCartError(w, r, err, "Failed to remove item")
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Item removed from cart"})
}

func (h *CartHandler) respondCartError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrCartItemNotFound):
		respondJSON(w, http.StatusNotFound, Response{Success: false, Error: "Cart item not found"})
	case errors.Is(err, catalogdomain.ErrProductNotFound):
		respondJSON(w, http.StatusNotFound, Response{Success: false, Error: "Product not found"})
	case errors.Is(err, domain.ErrOutOfStock),
		errors.Is(err, domain.ErrStockExceeded),
		errors.Is(err, domain.ErrInvalidQuantity):
		respondJSON(w, http.StatusConflict, Response{Success: false, Error: err.Error()})
	default:
		logger.Error(r.Context()).Err(err).Msg(fallback)
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: fallback})
	}
}

func parseID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	return uint(id), err
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
