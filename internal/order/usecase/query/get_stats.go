package query

import (
	"fmt"

	"github.com/tair/storefront/internal/order/domain"
)

// GetStatsQuery represents the query for order statistics
type GetStatsQuery struct{}

// OrderStats holds aggregate order numbers for the dashboard
type OrderStats struct {
	TotalOrders  int64          `json:"total_orders"`
	TotalRevenue float64        `json:"total_revenue"`
	RecentOrders []domain.Order `json:"recent_orders"`
}

// GetStatsHandler handles order stats query
type GetStatsHandler struct {
	orders domain.OrderRepository
}

// NewGetStatsHandler creates a new get stats handler
func NewGetStatsHandler(orders domain.OrderRepository) *GetStatsHandler {
	return &GetStatsHandler{orders: orders}
}

// Handle executes the get stats query
func (h *GetStatsHandler) Handle(query GetStatsQuery) (*OrderStats, error) {
	count, err := h.orders.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	revenue, err := h.orders.Revenue()
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}

	recent, err := h.orders.Recent(5)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent orders: %w", err)
	}

	return &OrderStats{
		TotalOrders:  count,
		TotalRevenue: revenue,
		RecentOrders: recent,
	}, nil
}
