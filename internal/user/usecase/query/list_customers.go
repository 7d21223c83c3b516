package query

import (
	"fmt"

	"github.com/tair/storefront/internal/user/domain"
)

// ListCustomersQuery represents the staff query to list customers
type ListCustomersQuery struct {
	Limit  int
	Offset int
}

// ListCustomersHandler handles list customers query
type ListCustomersHandler struct {
	repo domain.UserRepository
}

// NewListCustomersHandler creates a new list customers handler
func NewListCustomersHandler(repo domain.UserRepository) *ListCustomersHandler {
	return &ListCustomersHandler{repo: repo}
}

// Handle executes the list customers query
func (h *ListCustomersHandler) Handle(query ListCustomersQuery) ([]domain.User, error) {
	if query.Limit <= 0 {
		query.Limit = 50
	}

	customers, err := h.repo.FindCustomers(query.Limit, query.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}
