package command

import (
	"github.com/tair/storefront/internal/cart/domain"
)

// DecreaseItemCommand lowers a cart line's quantity by one
type DecreaseItemCommand struct {
	ItemID uint
	UserID uint
}

// DecreaseItemHandler handles decrease item command
type DecreaseItemHandler struct {
	carts domain.CartRepository
}

// NewDecreaseItemHandler creates a new decrease item handler
func NewDecreaseItemHandler(carts domain.CartRepository) *DecreaseItemHandler {
	return &DecreaseItemHandler{carts: carts}
}

// Handle executes the decrease item command. Dropping to zero is not
// allowed; the caller removes the line instead.
func (h *DecreaseItemHandler) Handle(cmd DecreaseItemCommand) (*domain.CartItem, error) {
	item, err := h.carts.FindItemForUser(cmd.ItemID, cmd.UserID)
	if err != nil {
		return nil, err
	}

	if item.Quantity <= 1 {
		return nil, domain.ErrInvalidQuantity
	}
	item.Quantity--
	if err := h.carts.UpdateItem(item); err != nil {
		return nil, err
	}
	return item, nil
}
