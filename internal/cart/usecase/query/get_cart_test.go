package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/storefront/internal/cart/domain"
	catalogdomain "github.com/tair/storefront/internal/catalog/domain"
)

type fakeCartRepo struct {
	carts      map[uint]*domain.Cart
	items      map[uint]*domain.CartItem
	nextCartID uint
	nextItemID uint
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{
		carts:      map[uint]*domain.Cart{},
		items:      map[uint]*domain.CartItem{},
		nextCartID: 1,
		nextItemID: 1,
	}
}

func (r *fakeCartRepo) GetOrCreate(userID uint) (*domain.Cart, error) {
	for _, c := range r.carts {
		if c.UserID == userID {
			return c, nil
		}
	}
	c := &domain.Cart{ID: r.nextCartID, UserID: userID}
	r.nextCartID++
	r.carts[c.ID] = c
	return c, nil
}

func (r *fakeCartRepo) ItemsByCart(cartID uint) ([]domain.CartItem, error) {
	var out []domain.CartItem
	for id := uint(1); id < r.nextItemID; id++ {
		if it, ok := r.items[id]; ok && it.CartID == cartID {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (r *fakeCartRepo) FindItemByProduct(cartID, productID uint) (*domain.CartItem, error) {
	for _, it := range r.items {
		if it.CartID == cartID && it.ProductID == productID {
			cp := *it
			return &cp, nil
		}
	}
	return nil, domain.ErrCartItemNotFound
}

func (r *fakeCartRepo) FindItemForUser(itemID, userID uint) (*domain.CartItem, error) {
	it, ok := r.items[itemID]
	if !ok {
		return nil, domain.ErrCartItemNotFound
	}
	cart, ok := r.carts[it.CartID]
	if !ok || cart.UserID != userID {
		return nil, domain.ErrCartItemNotFound
	}
	cp := *it
	return &cp, nil
}

func (r *fakeCartRepo) CreateItem(item *domain.CartItem) error {
	item.ID = r.nextItemID
	r.nextItemID++
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *fakeCartRepo) UpdateItem(item *domain.CartItem) error {
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *fakeCartRepo) DeleteItem(itemID uint) error {
	delete(r.items, itemID)
	return nil
}

type fakeProductRepo struct {
	products map[uint]*catalogdomain.Product
}

func (r *fakeProductRepo) Create(p *catalogdomain.Product) error { r.products[p.ID] = p; return nil }

func (r *fakeProductRepo) FindByID(id uint) (*catalogdomain.Product, error) {
	p, ok := r.products[id]
	if !ok || p.IsDeleted {
		return nil, catalogdomain.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) FindVisible(id uint) (*catalogdomain.Product, error) {
	p, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, catalogdomain.ErrProductNotFound
	}
	return p, nil
}

func (r *fakeProductRepo) List(catalogdomain.ListFilter) ([]catalogdomain.ProductWithRating, error) {
	return nil, nil
}

func (r *fakeProductRepo) Update(p *catalogdomain.Product) error {
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) Count() (int64, error) { return int64(len(r.products)), nil }

func addLine(t *testing.T, carts *fakeCartRepo, cartID, productID uint, qty int) *domain.CartItem {
	t.Helper()
	line := &domain.CartItem{CartID: cartID, ProductID: productID, Quantity: qty}
	require.NoError(t, carts.CreateItem(line))
	return line
}

func TestGetCartComputesSubtotal(t *testing.T) {
	carts := newFakeCartRepo()
	products := &fakeProductRepo{products: map[uint]*catalogdomain.Product{
		1: {ID: 1, Name: "Mug", Price: 9.5, Stock: 10, IsActive: true},
		2: {ID: 2, Name: "Plate", Price: 4.0, Stock: 10, IsActive: true},
	}}

	cart, _ := carts.GetOrCreate(7)
	addLine(t, carts, cart.ID, 1, 2)
	addLine(t, carts, cart.ID, 2, 3)

	view, err := NewGetCartHandler(carts, products).Handle(GetCartQuery{UserID: 7})
	require.NoError(t, err)

	assert.Len(t, view.Items, 2)
	assert.InDelta(t, 2*9.5+3*4.0, view.Subtotal, 1e-9)
	assert.Empty(t, view.Warnings)
}

func TestGetCartClampsToShrunkStock(t *testing.T) {
	carts := newFakeCartRepo()
	products := &fakeProductRepo{products: map[uint]*catalogdomain.Product{
		1: {ID: 1, Name: "Mug", Price: 9.5, Stock: 2, IsActive: true},
	}}

	cart, _ := carts.GetOrCreate(7)
	line := addLine(t, carts, cart.ID, 1, 5)

	view, err := NewGetCartHandler(carts, products).Handle(GetCartQuery{UserID: 7})
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.Len(t, view.Warnings, 1)

	// Clamp is persisted, not just rendered
	stored, err := carts.FindItemForUser(line.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Quantity)
}

func TestGetCartDropsUnavailableLines(t *testing.T) {
	carts := newFakeCartRepo()
	products := &fakeProductRepo{products: map[uint]*catalogdomain.Product{
		1: {ID: 1, Name: "Mug", Price: 9.5, Stock: 0, IsActive: true},
		2: {ID: 2, Name: "Plate", Price: 4.0, Stock: 10, IsActive: false},
		3: {ID: 3, Name: "Bowl", Price: 6.0, Stock: 10, IsActive: true, IsDeleted: true},
		4: {ID: 4, Name: "Fork", Price: 1.5, Stock: 10, IsActive: true},
	}}

	cart, _ := carts.GetOrCreate(7)
	soldOut := addLine(t, carts, cart.ID, 1, 2)
	inactive := addLine(t, carts, cart.ID, 2, 1)
	deleted := addLine(t, carts, cart.ID, 3, 1)
	addLine(t, carts, cart.ID, 4, 2)

	view, err := NewGetCartHandler(carts, products).Handle(GetCartQuery{UserID: 7})
	require.NoError(t, err)

	require.Len(t, view.Items, 1, "only the still-available line survives")
	assert.Equal(t, uint(4), view.Items[0].ProductID)
	assert.InDelta(t, 3.0, view.Subtotal, 1e-9)
	assert.Len(t, view.Warnings, 3)

	for _, id := range []uint{soldOut.ID, inactive.ID, deleted.ID} {
		_, err := carts.FindItemForUser(id, 7)
		assert.ErrorIs(t, err, domain.ErrCartItemNotFound)
	}
}

func TestGetCartEmptyForNewUser(t *testing.T) {
	carts := newFakeCartRepo()
	products := &fakeProductRepo{products: map[uint]*catalogdomain.Product{}}

	view, err := NewGetCartHandler(carts, products).Handle(GetCartQuery{UserID: 42})
	require.NoError(t, err)

	assert.NotZero(t, view.CartID)
	assert.Empty(t, view.Items)
	assert.Zero(t, view.Subtotal)
}
