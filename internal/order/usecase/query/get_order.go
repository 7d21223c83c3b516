package query

import (
	catalogdomain "github.com/tair/storefront/internal/catalog/domain"
	"github.com/tair/storefront/internal/order/domain"
)

// GetOrderQuery fetches one order. Customers can only see their own
// orders; staff can see any.
type GetOrderQuery struct {
	OrderID uint
	UserID  uint
	Staff   bool
}

// OrderDetail is an order together with the viewer's own ratings for the
// purchased products, keyed by product id, so a client can prefill a
// rating form.
type OrderDetail struct {
	domain.Order
	UserRatings map[uint]int `json:"user_ratings,omitempty"`
}

// GetOrderHandler handles get order query
type GetOrderHandler struct {
	orders  domain.OrderRepository
	ratings catalogdomain.RatingRepository
}

// NewGetOrderHandler creates a new get order handler
func NewGetOrderHandler(orders domain.OrderRepository, ratings catalogdomain.RatingRepository) *GetOrderHandler {
	return &GetOrderHandler{orders: orders, ratings: ratings}
}

// Handle executes the get order query
func (h *GetOrderHandler) Handle(query GetOrderQuery) (*OrderDetail, error) {
	order, err := h.orders.FindByID(query.OrderID)
	if err != nil {
		return nil, err
	}

	// Ownership is hidden as a 404 rather than revealed as a 403
	if !query.Staff && order.UserID != query.UserID {
		return nil, domain.ErrOrderNotFound
	}

	detail := &OrderDetail{Order: *order}

	productIDs := make([]uint, 0, len(order.Items))
	for _, item := range order.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	if len(productIDs) > 0 {
		ratings, err := h.ratings.UserRatings(query.UserID, productIDs)
		if err == nil && len(ratings) > 0 {
			detail.UserRatings = ratings
		}
	}

	return detail, nil
}
