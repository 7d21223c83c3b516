package query

import (
	"github.com/tair/storefront/internal/catalog/domain"
)

// GetProductQuery represents the query to fetch one product
type GetProductQuery struct {
	ID uint
	// Staff sees inactive products; customers do not.
	IncludeInactive bool
}

// GetProductHandler handles get product query
type GetProductHandler struct {
	repo domain.ProductRepository
}

// NewGetProductHandler creates a new get product handler
func NewGetProductHandler(repo domain.ProductRepository) *GetProductHandler {
	return &GetProductHandler{repo: repo}
}

// Handle executes the get product query
func (h *GetProductHandler) Handle(query GetProductQuery) (*domain.Product, error) {
	if query.IncludeInactive {
		return h.repo.FindByID(query.ID)
	}
	return h.repo.FindVisible(query.ID)
}
