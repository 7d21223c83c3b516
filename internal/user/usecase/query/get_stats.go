package query

import (
	"fmt"

	"github.com/tair/storefront/internal/user/domain"
)

// GetStatsQuery represents the query for user statistics
type GetStatsQuery struct{}

// UserStats holds aggregate user numbers for the dashboard
type UserStats struct {
	TotalCustomers int64 `json:"total_customers"`
}

// GetStatsHandler handles user stats query
type GetStatsHandler struct {
	repo domain.UserRepository
}

// NewGetStatsHandler creates a new get stats handler
func NewGetStatsHandler(repo domain.UserRepository) *GetStatsHandler {
	return &GetStatsHandler{repo: repo}
}

// Handle executes the get stats query
func (h *GetStatsHandler) Handle(query GetStatsQuery) (*UserStats, error) {
	customers, err := h.repo.CountCustomers()
	if err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}
	return &UserStats{TotalCustomers: customers}, nil
}
