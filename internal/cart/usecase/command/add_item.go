package command

import (
	"errors"

	"github.com/tair/storefront/internal/cart/domain"
	catalogdomain "github.com/tair/storefront/internal/catalog/domain"
)

// AddItemCommand puts one unit of a product into the user's cart
type AddItemCommand struct {
	UserID    uint
	ProductID uint
}

// AddItemHandler handles add item command
type AddItemHandler struct {
	carts    domain.CartRepository
	products catalogdomain.ProductRepository
}

// NewAddItemHandler creates a new add item handler
func NewAddItemHandler(carts domain.CartRepository, products catalogdomain.ProductRepository) *AddItemHandler {
	return &AddItemHandler{carts: carts, products: products}
}

// Handle executes the add item command. Incrementing an existing line is
// only allowed while quantity+1 stays strictly below stock, so the last
// unit can never be reserved through this path.
func (h *AddItemHandler) Handle(cmd AddItemCommand) (*domain.CartItem, error) {
	product, err := h.products.FindVisible(cmd.ProductID)
	if err != nil {
		return nil, err
	}
	if product.Stock <= 0 {
		return nil, domain.ErrOutOfStock
	}

	cart, err := h.carts.GetOrCreate(cmd.UserID)
	if err != nil {
		return nil, err
	}

	item, err := h.carts.FindItemByProduct(cart.ID, cmd.ProductID)
	if err != nil {
		if !errors.Is(err, domain.ErrCartItemNotFound) {
			return nil, err
		}
		item = &domain.CartItem{CartID: cart.ID, ProductID: cmd.ProductID, Quantity: 1}
		if err := h.carts.CreateItem(item); err != nil {
			return nil, err
		}
		return item, nil
	}

	if item.Quantity+1 >= product.Stock {
		return nil, domain.ErrStockExceeded
	}
	item.Quantity++
	if err := h.carts.UpdateItem(item); err != nil {
		return nil, err
	}
	return item, nil
}
