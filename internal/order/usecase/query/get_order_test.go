package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogdomain "github.com/tair/storefront/internal/catalog/domain"
	"github.com/tair/storefront/internal/order/domain"
)

type fakeOrderRepo struct {
	orders map[uint]*domain.Order
}

func (r *fakeOrderRepo) FindByID(id uint) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) FindByUser(userID uint, limit, offset int) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) FindAll(limit, offset int) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (r *fakeOrderRepo) UpdateStatus(orderID uint, status string) (*domain.Order, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	o.Status = status
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) Count() (int64, error) { return int64(len(r.orders)), nil }

func (r *fakeOrderRepo) Revenue() (float64, error) {
	var sum float64
	for _, o := range r.orders {
		if o.Status != domain.StatusCancelled {
			sum += o.TotalAmount
		}
	}
	return sum, nil
}

func (r *fakeOrderRepo) Recent(n int) ([]domain.Order, error) {
	out, _ := r.FindAll(n, 0)
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

type fakeRatingRepo struct {
	ratings map[[2]uint]int
}

func (r *fakeRatingRepo) Upsert(rating *catalogdomain.ProductRating) error {
	r.ratings[[2]uint{rating.ProductID, rating.UserID}] = rating.Rating
	return nil
}

func (r *fakeRatingRepo) FindByProductAndUser(productID, userID uint) (*catalogdomain.ProductRating, error) {
	return nil, catalogdomain.ErrProductNotFound
}

func (r *fakeRatingRepo) UserRatings(userID uint, productIDs []uint) (map[uint]int, error) {
	out := map[uint]int{}
	for _, pid := range productIDs {
		if rating, ok := r.ratings[[2]uint{pid, userID}]; ok {
			out[pid] = rating
		}
	}
	return out, nil
}

func fixtureOrder() *domain.Order {
	return &domain.Order{
		ID:          1,
		UserID:      7,
		Status:      domain.StatusPending,
		TotalAmount: 23.0,
		Items: []domain.OrderItem{
			{ID: 10, OrderID: 1, ProductID: 3, ProductName: "Mug", Quantity: 2, UnitPrice: 9.5},
			{ID: 11, OrderID: 1, ProductID: 4, ProductName: "Plate", Quantity: 1, UnitPrice: 4.0},
		},
	}
}

func TestGetOrderOwner(t *testing.T) {
	orders := &fakeOrderRepo{orders: map[uint]*domain.Order{1: fixtureOrder()}}
	ratings := &fakeRatingRepo{ratings: map[[2]uint]int{{3, 7}: 4}}

	h := NewGetOrderHandler(orders, ratings)

	detail, err := h.Handle(GetOrderQuery{OrderID: 1, UserID: 7})
	require.NoError(t, err)
	assert.Equal(t, uint(1), detail.ID)
	assert.Len(t, detail.Items, 2)

	// The viewer's own rating for a purchased product comes along
	assert.Equal(t, 4, detail.UserRatings[3])
	_, rated := detail.UserRatings[4]
	assert.False(t, rated)
}

func TestGetOrderHiddenFromStrangers(t *testing.T) {
	orders := &fakeOrderRepo{orders: map[uint]*domain.Order{1: fixtureOrder()}}
	ratings := &fakeRatingRepo{ratings: map[[2]uint]int{}}

	h := NewGetOrderHandler(orders, ratings)

	_, err := h.Handle(GetOrderQuery{OrderID: 1, UserID: 99})
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	// Staff may view any order
	detail, err := h.Handle(GetOrderQuery{OrderID: 1, UserID: 99, Staff: true})
	require.NoError(t, err)
	assert.Equal(t, uint(7), detail.UserID)
}

func TestGetStatsAggregates(t *testing.T) {
	cancelled := fixtureOrder()
	cancelled.ID = 2
	cancelled.Status = domain.StatusCancelled
	orders := &fakeOrderRepo{orders: map[uint]*domain.Order{
		1: fixtureOrder(),
		2: cancelled,
	}}

	stats, err := NewGetStatsHandler(orders).Handle(GetStatsQuery{})
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalOrders)
	assert.InDelta(t, 23.0, stats.TotalRevenue, 1e-9, "cancelled orders do not count as revenue")
	assert.Len(t, stats.RecentOrders, 2)
}
