package query

import (
	"fmt"

	"github.com/tair/storefront/internal/catalog/domain"
)

// GetStatsQuery represents the query for catalog statistics
type GetStatsQuery struct{}

// CatalogStats holds aggregate catalog numbers for the dashboard
type CatalogStats struct {
	TotalProducts int64 `json:"total_products"`
}

// GetStatsHandler handles catalog stats query
type GetStatsHandler struct {
	repo domain.ProductRepository
}

// NewGetStatsHandler creates a new get stats handler
func NewGetStatsHandler(repo domain.ProductRepository) *GetStatsHandler {
	return &GetStatsHandler{repo: repo}
}

// Handle executes the get stats query
func (h *GetStatsHandler) Handle(query GetStatsQuery) (*CatalogStats, error) {
	count, err := h.repo.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	return &CatalogStats{TotalProducts: count}, nil
}
