package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	cartdomain "github.com/tair/storefront/internal/cart/domain"
	catalogdomain "github.com/tair/storefront/internal/catalog/domain"
	"github.com/tair/storefront/internal/order/domain"
	"github.com/tair/storefront/internal/order/usecase/command"
	"github.com/tair/storefront/internal/order/usecase/query"
	userhttp "github.com/tair/storefront/internal/user/delivery/http"
	userdomain "github.com/tair/storefront/internal/user/domain"
	"github.com/tair/storefront/kafka"
	"github.com/tair/storefront/pkg/logger"
)

// OrderHandler handles HTTP requests for checkout and orders
type OrderHandler struct {
	// Command handlers
	placeHandler  *command.PlaceOrderHandler
	statusHandler *command.UpdateStatusHandler

	// Query handlers
	listHandler *query.ListOrdersHandler
	getHandler  *query.GetOrderHandler

	// publisher is optional; checkout works without a broker
	publisher *kafka.Publisher

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	ordersPlaced   prometheus.Counter
}

// NewOrderHandler creates a new order handler (manual DI)
func NewOrderHandler(
	carts cartdomain.CartRepository,
	products catalogdomain.ProductRepository,
	ratings catalogdomain.RatingRepository,
	orders domain.OrderRepository,
	store domain.CheckoutStore,
	publisher *kafka.Publisher,
) *OrderHandler {
	return NewOrderHandlerWithDI(
		command.NewPlaceOrderHandler(carts, products, store),
		command.NewUpdateStatusHandler(orders),
		query.NewListOrdersHandler(orders),
		query.NewGetOrderHandler(orders, ratings),
		publisher,
	)
}

// NewOrderHandlerWithDI creates a new order handler using dependency injection
func NewOrderHandlerWithDI(
	placeHandler *command.PlaceOrderHandler,
	statusHandler *command.UpdateStatusHandler,
	listHandler *query.ListOrdersHandler,
	getHandler *query.GetOrderHandler,
	publisher *kafka.Publisher,
) *OrderHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_requests_total",
			Help: "Total number of requests to order endpoints",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "order_request_duration_seconds",
			Help:    "Duration of order endpoint requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	ordersPlaced := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_placed_total",
			Help: "Total number of successfully placed orders",
		},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(ordersPlaced)

	return &OrderHandler{
		placeHandler:   placeHandler,
		statusHandler:  statusHandler,
		listHandler:    listHandler,
		getHandler:     getHandler,
		publisher:      publisher,
		requestCounter: requestCounter,
		requestLatency: requestLatency,
		ordersPlaced:   ordersPlaced,
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

func (h *OrderHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
	}
}

// RegisterRoutes mounts the checkout and order routes
func (h *OrderHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/checkout",
		h.metricsMiddleware("/api/checkout", userhttp.AuthMiddleware(h.Checkout))).Methods("POST")
	router.HandleFunc("/api/orders",
		h.metricsMiddleware("/api/orders", userhttp.AuthMiddleware(h.ListOrders))).Methods("GET")
	router.HandleFunc("/api/orders/{id}",
		h.metricsMiddleware("/api/orders/{id}", userhttp.AuthMiddleware(h.GetOrder))).Methods("GET")

	// Staff routes
	router.HandleFunc("/api/admin/orders",
		h.metricsMiddleware("/api/admin/orders", userhttp.StaffMiddleware(h.AdminListOrders))).Methods("GET")
	router.HandleFunc("/api/admin/orders/{id}/status",
		h.metricsMiddleware("/api/admin/orders/{id}/status", userhttp.StaffMiddleware(h.UpdateStatus))).Methods("PATCH")
}

// Checkout handles POST /api/checkout
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, _ := userhttp.UserIDFromContext(r.Context())

	var req struct {
		AddressID     uint `json:"address_id"`
		SaveAsDefault bool `json:"save_as_default"`
		Address       *struct {
			Line1   string `json:"address_line_1"`
			Line2   string `json:"address_line_2"`
			City    string `json:"city"`
			State   string `json:"state"`
			ZipCode string `json:"zip_code"`
			Country string `json:"country"`
		} `json:"address"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	cmd := command.PlaceOrderCommand{
		UserID:        userID,
		AddressID:     req.AddressID,
		SaveAsDefault: req.SaveAsDefault,
	}
	if req.Address != nil {
		cmd.NewAddress = &command.AddressInput{
			Line1:   req.Address.Line1,
			Line2:   req.Address.Line2,
			City:    req.Address.City,
			State:   req.Address.State,
			ZipCode: req.Address.ZipCode,
			Country: req.Address.Country,
		}
	}

	order, err := h.placeHandler.Handle(r.Context(), cmd)
	if err != nil {
		h.respondCheckoutError(w, r, err)
		return
	}

	h.ordersPlaced.Inc()

	if h.publisher != nil {
		event := kafka.OrderPlacedEvent{
			OrderID:     order.ID,
			UserID:      order.UserID,
			TotalAmount: order.TotalAmount,
		}
		for _, item := range order.Items {
			event.Items = append(event.Items, kafka.OrderPlacedItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			})
		}
		// Delivery failures are logged by the publisher; the order stands
		_ = h.publisher.PublishOrderPlaced(r.Context(), event)
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Order placed successfully",
		Data:    order,
	})
}

// ListOrders handles GET /api/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, _ := userhttp.UserIDFromContext(r.Context())

	q := query.ListOrdersQuery{UserID: userID}
	q.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	q.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))

	orders, err := h.listHandler.Handle(q)
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list orders")
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to list orders"})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: orders})
}

// AdminListOrders handles GET /api/admin/orders
func (h *OrderHandler) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	q := query.ListOrdersQuery{AllUsers: true}
	q.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	q.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))

	orders, err := h.listHandler.Handle(q)
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list orders")
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to list orders"})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: orders})
}

// GetOrder handles GET /api/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid order ID"})
		return
	}

	userID, _ := userhttp.UserIDFromContext(r.Context())

	detail, err := h.getHandler.Handle(query.GetOrderQuery{
		OrderID: id,
		UserID:  userID,
		Staff:   userhttp.IsStaffContext(r.Context()),
	})
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			respondJSON(w, http.StatusNotFound, Response{Success: false, Error: "Order not found"})
			return
		}
		logger.Error(r.Context()).Err(err).Msg("Failed to load order")
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to load order"})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: detail})
}

// UpdateStatus handles PATCH /api/admin/orders/{id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid order ID"})
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	order, err := h.statusHandler.Handle(command.UpdateStatusCommand{OrderID: id, Status: req.Status})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidStatus):
			respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid order status"})
		case errors.Is(err, domain.ErrOrderNotFound):
			respondJSON(w, http.StatusNotFound, Response{Success: false, Error: "Order not found"})
		default:
			logger.Error(r.Context()).Err(err).Msg("Failed to update order status")
			respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to update order status"})
		}
		return
	}

	logger.Audit(r.Context(), "order.status_changed").
		Uint("order_id", order.ID).
		Str("status", order.Status).
		Msg("Order status updated")

	respondJSON(w, http.StatusOK, Response{Success: true, Data: order})
}

func (h *OrderHandler) respondCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	var shortfall *domain.StockShortfallError
	switch {
	case errors.As(err, &shortfall):
		respondJSON(w, http.StatusConflict, Response{
			Success: false,
			Error:   shortfall.Error(),
			Data: map[string]interface{}{
				"product_id": shortfall.ProductID,
				"product":    shortfall.Name,
				"available":  shortfall.Available,
			},
		})
	case errors.Is(err, domain.ErrEmptyCart), errors.Is(err, domain.ErrMissingAddress):
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
	case errors.Is(err, userdomain.ErrAddressNotFound):
		respondJSON(w, http.StatusNotFound, Response{Success: false, Error: "Address not found"})
	default:
		logger.Error(r.Context()).Err(err).Msg("Checkout failed")
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Checkout failed"})
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
