package command

import (
	"github.com/tair/storefront/internal/cart/domain"
	catalogdomain "github.com/tair/storefront/internal/catalog/domain"
)

// IncreaseItemCommand bumps a cart line's quantity by one
type IncreaseItemCommand struct {
	ItemID uint
	UserID uint
}

// IncreaseItemHandler handles increase item command
type IncreaseItemHandler struct {
	carts    domain.CartRepository
	products catalogdomain.ProductRepository
}

// NewIncreaseItemHandler creates a new increase item handler
func NewIncreaseItemHandler(carts domain.CartRepository, products catalogdomain.ProductRepository) *IncreaseItemHandler {
	return &IncreaseItemHandler{carts: carts, products: products}
}

// Handle executes the increase item command. Unlike the add path this
// allows the line to reach exactly the available stock.
func (h *IncreaseItemHandler) Handle(cmd IncreaseItemCommand) (*domain.CartItem, error) {
	item, err := h.carts.FindItemForUser(cmd.ItemID, cmd.UserID)
	if err != nil {
		return nil, err
	}

	product, err := h.products.FindByID(item.ProductID)
	if err != nil {
		return nil, err
	}

	if item.Quantity+1 > product.Stock {
		return nil, domain.ErrStockExceeded
	}
	item.Quantity++
	if err := h.carts.UpdateItem(item); err != nil {
		return nil, err
	}
	return item, nil
}
