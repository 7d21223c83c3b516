package query

import (
	"fmt"

	"github.com/tair/storefront/internal/catalog/domain"
)

// ListProductsQuery represents the catalog listing query
type ListProductsQuery struct {
	Query           string
	MinPrice        *float64
	MaxPrice        *float64
	MinRating       *float64
	IncludeInactive bool
	Limit           int
	Offset          int
}

// ListProductsHandler handles list products query
type ListProductsHandler struct {
	repo domain.ProductRepository
}

// NewListProductsHandler creates a new list products handler
func NewListProductsHandler(repo domain.ProductRepository) *ListProductsHandler {
	return &ListProductsHandler{repo: repo}
}

// Handle executes the list products query
func (h *ListProductsHandler) Handle(query ListProductsQuery) ([]domain.ProductWithRating, error) {
	if query.Limit <= 0 {
		query.Limit = 50
	}

	products, err := h.repo.List(domain.ListFilter{
		Query:           query.Query,
		MinPrice:        query.MinPrice,
		MaxPrice:        query.MaxPrice,
		MinRating:       query.MinRating,
		IncludeInactive: query.IncludeInactive,
		Limit:           query.Limit,
		Offset:          query.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}
