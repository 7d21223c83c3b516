package query

import (
	"github.com/tair/storefront/internal/order/domain"
)

// ListOrdersQuery fetches a user's order history, newest first. With
// AllUsers set it lists every order instead (staff view).
type ListOrdersQuery struct {
	UserID   uint
	AllUsers bool
	Limit    int
	Offset   int
}

// ListOrdersHandler handles list orders query
type ListOrdersHandler struct {
	orders domain.OrderRepository
}

// NewListOrdersHandler creates a new list orders handler
func NewListOrdersHandler(orders domain.OrderRepository) *ListOrdersHandler {
	return &ListOrdersHandler{orders: orders}
}

// Handle executes the list orders query
func (h *ListOrdersHandler) Handle(query ListOrdersQuery) ([]domain.Order, error) {
	if query.Limit <= 0 || query.Limit > 100 {
		query.Limit = 50
	}
	if query.AllUsers {
		return h.orders.FindAll(query.Limit, query.Offset)
	}
	return h.orders.FindByUser(query.UserID, query.Limit, query.Offset)
}
