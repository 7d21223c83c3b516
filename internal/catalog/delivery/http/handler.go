package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/storefront/internal/catalog/domain"
	"github.com/tair/storefront/internal/catalog/usecase/command"
	"github.com/tair/storefront/internal/catalog/usecase/query"
	userhttp "github.com/tair/storefront/internal/user/delivery/http"
	"github.com/tair/storefront/pkg/logger"
)

// CatalogHandler handles HTTP requests for the product catalog
type CatalogHandler struct {
	// Command handlers
	createHandler *command.CreateProductHandler
	updateHandler *command.UpdateProductHandler
	toggleHandler *command.ToggleActiveHandler
	deleteHandler *command.DeleteProductHandler
	rateHandler   *command.RateProductHandler

	// Query handlers
	getHandler      *query.GetProductHandler
	listHandler     *query.ListProductsHandler
	statsHandler    *query.GetStatsHandler
	myRatingHandler *query.GetUserRatingHandler

	repo domain.ProductRepository

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	totalProducts  prometheus.Gauge
}

// NewCatalogHandler creates a new catalog handler (manual DI)
func NewCatalogHandler(products domain.ProductRepository, ratings domain.RatingRepository) *CatalogHandler {
	return NewCatalogHandlerWithDI(
		command.NewCreateProductHandler(products),
		command.NewUpdateProductHandler(products),
		command.NewToggleActiveHandler(products),
		command.NewDeleteProductHandler(products),
		command.NewRateProductHandler(products, ratings),
		query.NewGetProductHandler(products),
		query.NewListProductsHandler(products),
		query.NewGetStatsHandler(products),
		query.NewGetUserRatingHandler(products, ratings),
		products,
	)
}

// NewCatalogHandlerWithDI creates a new catalog handler using dependency injection
func NewCatalogHandlerWithDI(
	createHandler *command.CreateProductHandler,
	updateHandler *command.UpdateProductHandler,
	toggleHandler *command.ToggleActiveHandler,
	deleteHandler *command.DeleteProductHandler,
	rateHandler *command.RateProductHandler,
	getHandler *query.GetProductHandler,
	listHandler *query.ListProductsHandler,
	statsHandler *query.GetStatsHandler,
	myRatingHandler *query.GetUserRatingHandler,
	repo domain.ProductRepository,
) *CatalogHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_requests_total",
			Help: "Total number of requests to catalog endpoints",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_request_duration_seconds",
			Help:    "Duration of catalog endpoint requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	totalProducts := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_total_products",
			Help: "Total number of products in the catalog",
		},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(totalProducts)

	return &CatalogHandler{
		createHandler:   createHandler,
		updateHandler:   updateHandler,
		toggleHandler:   toggleHandler,
		deleteHandler:   deleteHandler,
		rateHandler:     rateHandler,
		getHandler:      getHandler,
		listHandler:     listHandler,
		statsHandler:    statsHandler,
		myRatingHandler: myRatingHandler,
		repo:            repo,
		requestCounter:  requestCounter,
		requestLatency:  requestLatency,
		totalProducts:   totalProducts,
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

func (h *CatalogHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
	}
}

// RegisterRoutes mounts the catalog routes
func (h *CatalogHandler) RegisterRoutes(router *mux.Router) {
	// Public routes
	router.HandleFunc("/api/products",
		h.metricsMiddleware("/api/products", h.ListProducts)).Methods("GET")
	router.HandleFunc("/api/products/{id}",
		h.metricsMiddleware("/api/products/{id}", h.GetProduct)).Methods("GET")

	// Authenticated routes
	router.HandleFunc("/api/products/{id}/rate",
		h.metricsMiddleware("/api/products/{id}/rate", userhttp.AuthMiddleware(h.RateProduct))).Methods("POST")
	router.HandleFunc("/api/products/{id}/rate",
		h.metricsMiddleware("/api/products/{id}/rate", userhttp.AuthMiddleware(h.GetMyRating))).Methods("GET")

	// Staff routes
	router.HandleFunc("/api/admin/products",
		h.metricsMiddleware("/api/admin/products", userhttp.StaffMiddleware(h.AdminListProducts))).Methods("GET")
	router.HandleFunc("/api/admin/products",
		h.metricsMiddleware("/api/admin/products", userhttp.StaffMiddleware(h.CreateProduct))).Methods("POST")
	router.HandleFunc("/api/admin/products/{id}",
		h.metricsMiddleware("/api/admin/products/{id}", userhttp.StaffMiddleware(h.UpdateProduct))).Methods("PUT")
	router.HandleFunc("/api/admin/products/{id}/toggle",
		h.metricsMiddleware("/api/admin/products/{id}/toggle", userhttp.StaffMiddleware(h.ToggleActive))).Methods("PATCH")
	router.HandleFunc("/api/admin/products/{id}",
		h.metricsMiddleware("/api/admin/products/{id}", userhttp.StaffMiddleware(h.DeleteProduct))).Methods("DELETE")
}

func parseListQuery(r *http.Request, includeInactive bool) query.ListProductsQuery {
	q := query.ListProductsQuery{
		Query:           r.URL.Query().Get("q"),
		IncludeInactive: includeInactive,
	}
	q.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	q.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))

	if v := r.URL.Query().Get("min_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			q.MinPrice = &f
		}
	}
	if v := r.URL.Query().Get("max_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			q.MaxPrice = &f
		}
	}
	if v := r.URL.Query().Get("min_rating"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			q.MinRating = &f
		}
	}
	return q
}

// ListProducts handles GET /api/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := parseListQuery(r, false)

	products, err := h.listHandler.Handle(q)
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list products")
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to list products"})
		return
	}

	count, _ := h.repo.Count()

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"products": products,
			"total":    count,
			"limit":    q.Limit,
			"offset":   q.Offset,
		},
	})
}

// AdminListProducts handles GET /api/admin/products. Inactive products
// are included; soft-deleted ones stay hidden.
func (h *CatalogHandler) AdminListProducts(w http.ResponseWriter, r *http.Request) {
	q := parseListQuery(r, true)

	products, err := h.listHandler.Handle(q)
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list products")
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to list products"})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: products})
}

// GetProduct handles GET /api/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid product ID"})
		return
	}

	product, err := h.getHandler.Handle(query.GetProductQuery{ID: id})
	if err != nil {
		respondJSON(w, http.StatusNotFound, Response{Success: false, Error: "Product not found"})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: product})
}

// CreateProduct handles POST /api/admin/products
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		ImageURL    string  `json:"image_url"`
		Stock       int     `json:"stock"`
		IsActive    bool    `json:"is_active"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	product, err := h.createHandler.Handle(command.CreateProductCommand{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
		IsActive:    req.IsActive,
	})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to create product")
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	h.updateProductsMetric()
	logger.Audit(r.Context(), "product.created").Uint("product_id", product.ID).Msg("Product created")

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Product created successfully",
		Data:    product,
	})
}

// UpdateProduct handles PUT /api/admin/products/{id}
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid product ID"})
		return
	}

	var req struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		ImageURL    string  `json:"image_url"`
		Stock       int     `json:"stock"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	product, err := h.updateHandler.Handle(command.UpdateProductCommand{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
	})
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			respondJSON(w, http.StatusNotFound, Response{Success: false, Error: "Product not found"})
			return
		}
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Product updated successfully",
		Data:    product,
	})
}

// ToggleActive handles PATCH /api/admin/products/{id}/toggle
func (h *CatalogHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid product ID"})
		return
	}

	product, err := h.toggleHandler.Handle(command.ToggleActiveCommand{ID: id})
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			respondJSON(w, http.StatusNotFound, Response{Success: false, Error: "Product not found"})
			return
		}
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	logger.Audit(r.Context(), "product.toggled").
		Uint("product_id", product.ID).
		Bool("is_active", product.IsActive).
		Msg("Product active flag toggled")

	respondJSON(w, http.StatusOK, Response{Success: true, Data: product})
}

// DeleteProduct handles DELETE /api/admin/products/{id}
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid product ID"})
		return
	}

	if err := h.deleteHandler.Handle(command.DeleteProductCommand{ID: id}); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			respondJSON(w, http.StatusNotFound, Response{Success: false, Error: "Product not found"})
			return
		}
		logger.Error(r.Context()).Err(err).Msg("Failed to delete product")
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	h.updateProductsMetric()
	logger.Audit(r.Context(), "product.deleted").Uint("product_id", id).Msg("Product soft-deleted")

	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Product deleted successfully"})
}

// RateProduct handles POST /api/products/{id}/rate
func (h *CatalogHandler) RateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid product ID"})
		return
	}

	userID, _ := userhttp.UserIDFromContext(r.Context())

	var req struct {
		Rating int    `json:"rating"`
		Review string `json:"review"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	rating, err := h.rateHandler.Handle(command.RateProductCommand{
		ProductID: id,
		UserID:    userID,
		Rating:    req.Rating,
		Review:    req.Review,
	})
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			respondJSON(w, http.StatusNotFound, Response{Success: false, Error: "Product not found"})
			return
		}
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Rating saved",
		Data:    rating,
	})
}

// GetMyRating handles GET /api/products/{id}/rate. It returns the
// caller's existing rating so a client can prefill the form; data is
// null when the product has not been rated yet.
func (h *CatalogHandler) GetMyRating(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid product ID"})
		return
	}

	userID, _ := userhttp.UserIDFromContext(r.Context())

	rating, err := h.myRatingHandler.Handle(query.GetUserRatingQuery{ProductID: id, UserID: userID})
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			respondJSON(w, http.StatusNotFound, Response{Success: false, Error: "Product not found"})
			return
		}
		logger.Error(r.Context()).Err(err).Msg("Failed to load rating")
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to load rating"})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: rating})
}

func (h *CatalogHandler) updateProductsMetric() {
	count, err := h.repo.Count()
	if err == nil {
		h.totalProducts.Set(float64(count))
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
