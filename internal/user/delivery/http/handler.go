package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/storefront/internal/user/domain"
	"github.com/tair/storefront/internal/user/usecase/command"
	"github.com/tair/storefront/internal/user/usecase/query"
	"github.com/tair/storefront/pkg/logger"
	"github.com/tair/storefront/pkg/ratelimit"
)

// UserHandler handles HTTP requests for accounts and the address book
type UserHandler struct {
	// Command handlers
	registerHandler *command.RegisterUserHandler
	loginHandler    *command.LoginUserHandler
	refreshHandler  *command.RefreshTokenHandler
	addAddrHandler  *command.AddAddressHandler

	// Query handlers
	getUserHandler   *query.GetUserHandler
	listAddrHandler  *query.ListAddressesHandler
	customersHandler *query.ListCustomersHandler

	limiter *ratelimit.RateLimiter

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewUserHandler creates a new user handler (manual DI)
func NewUserHandler(users domain.UserRepository, addresses domain.AddressRepository, limiter *ratelimit.RateLimiter) *UserHandler {
	return NewUserHandlerWithDI(
		command.NewRegisterUserHandler(users),
		command.NewLoginUserHandler(users),
		command.NewRefreshTokenHandler(users),
		command.NewAddAddressHandler(addresses),
		query.NewGetUserHandler(users),
		query.NewListAddressesHandler(addresses),
		query.NewListCustomersHandler(users),
		limiter,
	)
}

// NewUserHandlerWithDI creates a new user handler using dependency injection
func NewUserHandlerWithDI(
	registerHandler *command.RegisterUserHandler,
	loginHandler *command.LoginUserHandler,
	refreshHandler *command.RefreshTokenHandler,
	addAddrHandler *command.AddAddressHandler,
	getUserHandler *query.GetUserHandler,
	listAddrHandler *query.ListAddressesHandler,
	customersHandler *query.ListCustomersHandler,
	limiter *ratelimit.RateLimiter,
) *UserHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_requests_total",
			Help: "Total number of requests to user endpoints",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "user_request_duration_seconds",
			Help:    "Duration of user endpoint requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)

	return &UserHandler{
		registerHandler:  registerHandler,
		loginHandler:     loginHandler,
		refreshHandler:   refreshHandler,
		addAddrHandler:   addAddrHandler,
		getUserHandler:   getUserHandler,
		listAddrHandler:  listAddrHandler,
		customersHandler: customersHandler,
		limiter:          limiter,
		requestCounter:   requestCounter,
		requestLatency:   requestLatency,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware wraps handlers with Prometheus metrics
func (h *UserHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
	}
}

// RegisterRoutes mounts the account and address book routes
func (h *UserHandler) RegisterRoutes(router *mux.Router) {
	// Public routes (rate limited, no auth)
	router.HandleFunc("/api/users/register",
		h.metricsMiddleware("/api/users/register", h.limiter.Middleware(h.Register))).Methods("POST")
	router.HandleFunc("/api/users/login",
		h.metricsMiddleware("/api/users/login", h.limiter.Middleware(h.Login))).Methods("POST")
	router.HandleFunc("/api/users/token/refresh",
		h.metricsMiddleware("/api/users/token/refresh", h.Refresh)).Methods("POST")

	// Authenticated routes
	router.HandleFunc("/api/users/me",
		h.metricsMiddleware("/api/users/me", AuthMiddleware(h.Me))).Methods("GET")
	router.HandleFunc("/api/addresses",
		h.metricsMiddleware("/api/addresses", AuthMiddleware(h.ListAddresses))).Methods("GET")
	router.HandleFunc("/api/addresses",
		h.metricsMiddleware("/api/addresses", AuthMiddleware(h.AddAddress))).Methods("POST")

	// Staff routes
	router.HandleFunc("/api/admin/customers",
		h.metricsMiddleware("/api/admin/customers", StaffMiddleware(h.ListCustomers))).Methods("GET")
}

// Register handles POST /api/users/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	user, err := h.registerHandler.Handle(command.RegisterUserCommand{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to register user")
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	logger.Audit(r.Context(), "user.registered").Uint("user_id", user.ID).Msg("User registered")

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "User registered successfully",
		Data:    user,
	})
}

// Login handles POST /api/users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	resp, err := h.loginHandler.Handle(command.LoginUserCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: resp})
}

// Refresh handles POST /api/users/token/refresh
func (h *UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	tokens, err := h.refreshHandler.Handle(command.RefreshTokenCommand{RefreshToken: req.RefreshToken})
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: tokens})
}

// Me handles GET /api/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "Unauthorized"})
		return
	}

	user, err := h.getUserHandler.Handle(query.GetUserQuery{ID: userID})
	if err != nil {
		respondJSON(w, http.StatusNotFound, Response{Success: false, Error: "User not found"})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: user})
}

// ListAddresses handles GET /api/addresses
func (h *UserHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	addresses, err := h.listAddrHandler.Handle(query.ListAddressesQuery{UserID: userID})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list addresses")
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to list addresses"})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: addresses})
}

// AddAddress handles POST /api/addresses
func (h *UserHandler) AddAddress(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req struct {
		Line1     string `json:"address_line_1"`
		Line2     string `json:"address_line_2"`
		City      string `json:"city"`
		State     string `json:"state"`
		ZipCode   string `json:"zip_code"`
		Country   string `json:"country"`
		IsDefault bool   `json:"is_default"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	address, err := h.addAddrHandler.Handle(command.AddAddressCommand{
		UserID:    userID,
		Line1:     req.Line1,
		Line2:     req.Line2,
		City:      req.City,
		State:     req.State,
		ZipCode:   req.ZipCode,
		Country:   req.Country,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Address added successfully",
		Data:    address,
	})
}

// ListCustomers handles GET /api/admin/customers
func (h *UserHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	customers, err := h.customersHandler.Handle(query.ListCustomersQuery{Limit: limit, Offset: offset})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list customers")
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to list customers"})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: customers})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
