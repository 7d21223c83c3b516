package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	catalogdomain "github.com/tair/storefront/internal/catalog/domain"
	catalogquery "github.com/tair/storefront/internal/catalog/usecase/query"
	orderdomain "github.com/tair/storefront/internal/order/domain"
	orderquery "github.com/tair/storefront/internal/order/usecase/query"
	userhttp "github.com/tair/storefront/internal/user/delivery/http"
	userdomain "github.com/tair/storefront/internal/user/domain"
	userquery "github.com/tair/storefront/internal/user/usecase/query"
	"github.com/tair/storefront/pkg/logger"
)

// AdminHandler serves the staff dashboard, a composition of the per
// module statistics queries.
type AdminHandler struct {
	userStats    *userquery.GetStatsHandler
	catalogStats *catalogquery.GetStatsHandler
	orderStats   *orderquery.GetStatsHandler

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewAdminHandler creates a new admin handler (manual DI)
func NewAdminHandler(
	users userdomain.UserRepository,
	products catalogdomain.ProductRepository,
	orders orderdomain.OrderRepository,
) *AdminHandler {
	return NewAdminHandlerWithDI(
		userquery.NewGetStatsHandler(users),
		catalogquery.NewGetStatsHandler(products),
		orderquery.NewGetStatsHandler(orders),
	)
}

// NewAdminHandlerWithDI creates a new admin handler using dependency injection
func NewAdminHandlerWithDI(
	userStats *userquery.GetStatsHandler,
	catalogStats *catalogquery.GetStatsHandler,
	orderStats *orderquery.GetStatsHandler,
) *AdminHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_requests_total",
			Help: "Total number of requests to admin endpoints",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "admin_request_duration_seconds",
			Help:    "Duration of admin endpoint requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)

	return &AdminHandler{
		userStats:      userStats,
		catalogStats:   catalogStats,
		orderStats:     orderStats,
		requestCounter: requestCounter,
		requestLatency: requestLatency,
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

func (h *AdminHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
	}
}

// RegisterRoutes mounts the admin dashboard routes
func (h *AdminHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/admin/dashboard",
		h.metricsMiddleware("/api/admin/dashboard", userhttp.StaffMiddleware(h.Dashboard))).Methods("GET")
}

// Dashboard handles GET /api/admin/dashboard
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	users, err := h.userStats.Handle(userquery.GetStatsQuery{})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to load user stats")
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to load dashboard"})
		return
	}

	catalog, err := h.catalogStats.Handle(catalogquery.GetStatsQuery{})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to load catalog stats")
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to load dashboard"})
		return
	}

	orders, err := h.orderStats.Handle(orderquery.GetStatsQuery{})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to load order stats")
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to load dashboard"})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"users":   users,
			"catalog": catalog,
			"orders":  orders,
		},
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
