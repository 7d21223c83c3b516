package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdomain "github.com/tair/storefront/internal/cart/domain"
	catalogdomain "github.com/tair/storefront/internal/catalog/domain"
	"github.com/tair/storefront/internal/order/domain"
	userdomain "github.com/tair/storefront/internal/user/domain"
)

// fakeState is the shared in-memory database behind the fakes. The fake
// checkout store snapshots it before running a transaction and restores
// the snapshot on error, mimicking a rollback.
type fakeState struct {
	products   map[uint]*catalogdomain.Product
	addresses  map[uint]*userdomain.Address
	carts      map[uint]*cartdomain.Cart
	cartItems  map[uint]*cartdomain.CartItem
	orders     map[uint]*domain.Order
	orderItems map[uint]*domain.OrderItem
	nextID     uint
}

func newFakeState() *fakeState {
	return &fakeState{
		products:   map[uint]*catalogdomain.Product{},
		addresses:  map[uint]*userdomain.Address{},
		carts:      map[uint]*cartdomain.Cart{},
		cartItems:  map[uint]*cartdomain.CartItem{},
		orders:     map[uint]*domain.Order{},
		orderItems: map[uint]*domain.OrderItem{},
		nextID:     1,
	}
}

func (s *fakeState) id() uint {
	id := s.nextID
	s.nextID++
	return id
}

func (s *fakeState) clone() *fakeState {
	cp := newFakeState()
	cp.nextID = s.nextID
	for k, v := range s.products {
		c := *v
		cp.products[k] = &c
	}
	for k, v := range s.addresses {
		c := *v
		cp.addresses[k] = &c
	}
	for k, v := range s.carts {
		c := *v
		cp.carts[k] = &c
	}
	for k, v := range s.cartItems {
		c := *v
		cp.cartItems[k] = &c
	}
	for k, v := range s.orders {
		c := *v
		cp.orders[k] = &c
	}
	for k, v := range s.orderItems {
		c := *v
		cp.orderItems[k] = &c
	}
	return cp
}

type fakeCartRepo struct{ state *fakeState }

func (r *fakeCartRepo) GetOrCreate(userID uint) (*cartdomain.Cart, error) {
	for _, c := range r.state.carts {
		if c.UserID == userID {
			return c, nil
		}
	}
	c := &cartdomain.Cart{ID: r.state.id(), UserID: userID}
	r.state.carts[c.ID] = c
	return c, nil
}

func (r *fakeCartRepo) ItemsByCart(cartID uint) ([]cartdomain.CartItem, error) {
	var out []cartdomain.CartItem
	for id := uint(1); id < r.state.nextID; id++ {
		if it, ok := r.state.cartItems[id]; ok && it.CartID == cartID {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (r *fakeCartRepo) FindItemByProduct(cartID, productID uint) (*cartdomain.CartItem, error) {
	for _, it := range r.state.cartItems {
		if it.CartID == cartID && it.ProductID == productID {
			cp := *it
			return &cp, nil
		}
	}
	return nil, cartdomain.ErrCartItemNotFound
}

func (r *fakeCartRepo) FindItemForUser(itemID, userID uint) (*cartdomain.CartItem, error) {
	it, ok := r.state.cartItems[itemID]
	if !ok {
		return nil, cartdomain.ErrCartItemNotFound
	}
	cp := *it
	return &cp, nil
}

func (r *fakeCartRepo) CreateItem(item *cartdomain.CartItem) error {
	item.ID = r.state.id()
	cp := *item
	r.state.cartItems[item.ID] = &cp
	return nil
}

func (r *fakeCartRepo) UpdateItem(item *cartdomain.CartItem) error {
	cp := *item
	r.state.cartItems[item.ID] = &cp
	return nil
}

func (r *fakeCartRepo) DeleteItem(itemID uint) error {
	delete(r.state.cartItems, itemID)
	return nil
}

type fakeProductRepo struct{ state *fakeState }

func (r *fakeProductRepo) Create(p *catalogdomain.Product) error {
	p.ID = r.state.id()
	r.state.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) FindByID(id uint) (*catalogdomain.Product, error) {
	p, ok := r.state.products[id]
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
	r.state.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) Count() (int64, error) { return int64(len(r.state.products)), nil }

type fakeCheckoutStore struct{ state *fakeState }

func (s *fakeCheckoutStore) InTransaction(ctx context.Context, fn func(tx domain.CheckoutTx) error) error {
	snapshot := s.state.clone()
	if err := fn(&fakeCheckoutTx{state: s.state}); err != nil {
		*s.state = *snapshot
		return err
	}
	return nil
}

type fakeCheckoutTx struct{ state *fakeState }

func (t *fakeCheckoutTx) FindAddress(addressID, userID uint) (*userdomain.Address, error) {
	addr, ok := t.state.addresses[addressID]
	if !ok || addr.UserID != userID {
		return nil, userdomain.ErrAddressNotFound
	}
	cp := *addr
	return &cp, nil
}

func (t *fakeCheckoutTx) CreateAddress(addr *userdomain.Address) error {
	addr.ID = t.state.id()
	cp := *addr
	t.state.addresses[addr.ID] = &cp
	return nil
}

func (t *fakeCheckoutTx) ClearDefaultAddress(userID uint) error {
	for _, addr := range t.state.addresses {
		if addr.UserID == userID {
			addr.IsDefault = false
		}
	}
	return nil
}

func (t *fakeCheckoutTx) SaveAddress(addr *userdomain.Address) error {
	cp := *addr
	t.state.addresses[addr.ID] = &cp
	return nil
}

func (t *fakeCheckoutTx) LockProduct(productID uint) (*catalogdomain.Product, error) {
	p, ok := t.state.products[productID]
	if !ok {
		return nil, catalogdomain.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (t *fakeCheckoutTx) SaveProduct(product *catalogdomain.Product) error {
	cp := *product
	t.state.products[product.ID] = &cp
	return nil
}

func (t *fakeCheckoutTx) CreateOrder(order *domain.Order) error {
	order.ID = t.state.id()
	cp := *order
	t.state.orders[order.ID] = &cp
	return nil
}

func (t *fakeCheckoutTx) CreateOrderItem(item *domain.OrderItem) error {
	item.ID = t.state.id()
	cp := *item
	t.state.orderItems[item.ID] = &cp
	return nil
}

func (t *fakeCheckoutTx) SaveCartItemQuantity(item *cartdomain.CartItem) error {
	stored, ok := t.state.cartItems[item.ID]
	if !ok {
		return cartdomain.ErrCartItemNotFound
	}
	stored.Quantity = item.Quantity
	return nil
}

func (t *fakeCheckoutTx) DeleteCartItem(itemID uint) error {
	delete(t.state.cartItems, itemID)
	return nil
}

type checkoutFixture struct {
	state    *fakeState
	carts    *fakeCartRepo
	products *fakeProductRepo
	handler  *PlaceOrderHandler
}

func newCheckoutFixture() *checkoutFixture {
	state := newFakeState()
	carts := &fakeCartRepo{state: state}
	products := &fakeProductRepo{state: state}
	store := &fakeCheckoutStore{state: state}
	return &checkoutFixture{
		state:    state,
		carts:    carts,
		products: products,
		handler:  NewPlaceOrderHandler(carts, products, store),
	}
}

func (f *checkoutFixture) seedProduct(name string, price float64, stock int) *catalogdomain.Product {
	p := &catalogdomain.Product{Name: name, Price: price, Stock: stock, IsActive: true}
	f.products.Create(p)
	return p
}

func (f *checkoutFixture) seedAddress(userID uint, isDefault bool) *userdomain.Address {
	addr := &userdomain.Address{
		ID:        f.state.id(),
		UserID:    userID,
		Line1:     "1 Main St",
		City:      "Springfield",
		State:     "IL",
		ZipCode:   "62701",
		Country:   "US",
		IsDefault: isDefault,
	}
	f.state.addresses[addr.ID] = addr
	return addr
}

func (f *checkoutFixture) seedCartLine(t *testing.T, userID, productID uint, qty int) *cartdomain.CartItem {
	t.Helper()
	cart, err := f.carts.GetOrCreate(userID)
	require.NoError(t, err)
	line := &cartdomain.CartItem{CartID: cart.ID, ProductID: productID, Quantity: qty}
	require.NoError(t, f.carts.CreateItem(line))
	return line
}

func TestPlaceOrderHappyPath(t *testing.T) {
	f := newCheckoutFixture()
	mug := f.seedProduct("Mug", 9.5, 5)
	plate := f.seedProduct("Plate", 4.0, 10)
	addr := f.seedAddress(7, false)
	f.seedCartLine(t, 7, mug.ID, 2)
	f.seedCartLine(t, 7, plate.ID, 3)

	order, err := f.handler.Handle(context.Background(), PlaceOrderCommand{
		UserID:    7,
		AddressID: addr.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, order.Status)
	assert.InDelta(t, 2*9.5+3*4.0, order.TotalAmount, 1e-9)
	require.Len(t, order.Items, 2)

	// The order total equals the sum of its item snapshots
	var itemSum float64
	for _, item := range order.Items {
		itemSum += float64(item.Quantity) * item.UnitPrice
	}
	assert.InDelta(t, order.TotalAmount, itemSum, 1e-9)

	// Stock was decremented and the cart drained
	assert.Equal(t, 3, f.state.products[mug.ID].Stock)
	assert.Equal(t, 7, f.state.products[plate.ID].Stock)
	assert.Empty(t, f.state.cartItems)

	// The order and its items persisted
	assert.Len(t, f.state.orders, 1)
	assert.Len(t, f.state.orderItems, 2)
}

func TestPlaceOrderStockShortfallRollsBackEverything(t *testing.T) {
	f := newCheckoutFixture()
	mug := f.seedProduct("Mug", 9.5, 3)
	plate := f.seedProduct("Plate", 4.0, 1)
	addr := f.seedAddress(7, false)
	f.seedCartLine(t, 7, mug.ID, 2)
	plateLine := f.seedCartLine(t, 7, plate.ID, 1)

	// Another checkout drains the plate before ours runs
	f.state.products[plate.ID].Stock = 0

	_, err := f.handler.Handle(context.Background(), PlaceOrderCommand{
		UserID:    7,
		AddressID: addr.ID,
	})

	var shortfall *domain.StockShortfallError
	require.ErrorAs(t, err, &shortfall)
	assert.Equal(t, plate.ID, shortfall.ProductID)
	assert.Equal(t, "Plate", shortfall.Name)
	assert.Equal(t, 0, shortfall.Available)

	// No partial decrement on the line processed first
	assert.Equal(t, 3, f.state.products[mug.ID].Stock)

	// No order or order items are visible
	assert.Empty(t, f.state.orders)
	assert.Empty(t, f.state.orderItems)

	// The clamp written before the abort did not survive the rollback
	assert.Equal(t, 1, f.state.cartItems[plateLine.ID].Quantity)

	// The cart is intact for a retry
	assert.Len(t, f.state.cartItems, 2)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	f := newCheckoutFixture()
	addr := f.seedAddress(7, false)

	_, err := f.handler.Handle(context.Background(), PlaceOrderCommand{
		UserID:    7,
		AddressID: addr.ID,
	})
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestPlaceOrderForeignAddressRejected(t *testing.T) {
	f := newCheckoutFixture()
	mug := f.seedProduct("Mug", 9.5, 5)
	other := f.seedAddress(99, false)
	f.seedCartLine(t, 7, mug.ID, 1)

	_, err := f.handler.Handle(context.Background(), PlaceOrderCommand{
		UserID:    7,
		AddressID: other.ID,
	})
	assert.ErrorIs(t, err, userdomain.ErrAddressNotFound)

	// Nothing was committed
	assert.Empty(t, f.state.orders)
	assert.Equal(t, 5, f.state.products[mug.ID].Stock)
}

func TestPlaceOrderMissingAddressFields(t *testing.T) {
	f := newCheckoutFixture()
	mug := f.seedProduct("Mug", 9.5, 5)
	f.seedCartLine(t, 7, mug.ID, 1)

	_, err := f.handler.Handle(context.Background(), PlaceOrderCommand{
		UserID:     7,
		NewAddress: &AddressInput{Line1: "1 Main St"},
	})
	assert.ErrorIs(t, err, domain.ErrMissingAddress)
}

func TestPlaceOrderNewAddressSavedAsDefault(t *testing.T) {
	f := newCheckoutFixture()
	mug := f.seedProduct("Mug", 9.5, 5)
	old := f.seedAddress(7, true)
	f.seedCartLine(t, 7, mug.ID, 1)

	order, err := f.handler.Handle(context.Background(), PlaceOrderCommand{
		UserID: 7,
		NewAddress: &AddressInput{
			Line1:   "2 Oak Ave",
			City:    "Springfield",
			State:   "IL",
			ZipCode: "62702",
			Country: "US",
		},
		SaveAsDefault: true,
	})
	require.NoError(t, err)

	// Exactly one default address per user, and it is the new one
	defaults := 0
	for _, addr := range f.state.addresses {
		if addr.UserID == 7 && addr.IsDefault {
			defaults++
			assert.Equal(t, order.AddressID, addr.ID)
		}
	}
	assert.Equal(t, 1, defaults)
	assert.False(t, f.state.addresses[old.ID].IsDefault)
}

func TestPlaceOrderLeavesOtherUsersAlone(t *testing.T) {
	f := newCheckoutFixture()
	mug := f.seedProduct("Mug", 9.5, 5)
	addr := f.seedAddress(7, false)
	otherDefault := f.seedAddress(99, true)
	f.seedCartLine(t, 7, mug.ID, 1)
	otherLine := f.seedCartLine(t, 99, mug.ID, 2)

	_, err := f.handler.Handle(context.Background(), PlaceOrderCommand{
		UserID:        7,
		AddressID:     addr.ID,
		SaveAsDefault: true,
	})
	require.NoError(t, err)

	assert.True(t, f.state.addresses[otherDefault.ID].IsDefault, "other users keep their default")
	_, ok := f.state.cartItems[otherLine.ID]
	assert.True(t, ok, "other users keep their cart lines")
}

func TestUpdateStatusValidation(t *testing.T) {
	f := newCheckoutFixture()
	mug := f.seedProduct("Mug", 9.5, 5)
	addr := f.seedAddress(7, false)
	f.seedCartLine(t, 7, mug.ID, 1)

	order, err := f.handler.Handle(context.Background(), PlaceOrderCommand{UserID: 7, AddressID: addr.ID})
	require.NoError(t, err)

	orders := &fakeOrderRepo{state: f.state}
	h := NewUpdateStatusHandler(orders)

	_, err = h.Handle(UpdateStatusCommand{OrderID: order.ID, Status: "teleported"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	// Any valid status may follow any other
	for _, status := range []string{
		domain.StatusShipped, domain.StatusPending, domain.StatusCancelled, domain.StatusDelivered,
	} {
		updated, err := h.Handle(UpdateStatusCommand{OrderID: order.ID, Status: status})
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}

	_, err = h.Handle(UpdateStatusCommand{OrderID: 9999, Status: domain.StatusShipped})
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

type fakeOrderRepo struct{ state *fakeState }

func (r *fakeOrderRepo) FindByID(id uint) (*domain.Order, error) {
	o, ok := r.state.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) FindByUser(userID uint, limit, offset int) ([]domain.Order, error) {
	return nil, nil
}

func (r *fakeOrderRepo) FindAll(limit, offset int) ([]domain.Order, error) { return nil, nil }

func (r *fakeOrderRepo) UpdateStatus(orderID uint, status string) (*domain.Order, error) {
	o, ok := r.state.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	o.Status = status
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) Count() (int64, error) { return int64(len(r.state.orders)), nil }

func (r *fakeOrderRepo) Revenue() (float64, error) { return 0, nil }

func (r *fakeOrderRepo) Recent(n int) ([]domain.Order, error) { return nil, nil }
