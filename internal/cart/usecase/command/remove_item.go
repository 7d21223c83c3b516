package command

import (
	"github.com/tair/storefront/internal/cart/domain"
)

// RemoveItemCommand deletes a cart line
type RemoveItemCommand struct {
	ItemID uint
	UserID uint
}

// RemoveItemHandler handles remove item command
type RemoveItemHandler struct {
	carts domain.CartRepository
}

// NewRemoveItemHandler creates a new remove item handler
func NewRemoveItemHandler(carts domain.CartRepository) *RemoveItemHandler {
	return &RemoveItemHandler{carts: carts}
}

// Handle executes the remove item command
func (h *RemoveItemHandler) Handle(cmd RemoveItemCommand) error {
	item, err := h.carts.FindItemForUser(cmd.ItemID, cmd.UserID)
	if err != nil {
		return err
	}
	return h.carts.DeleteItem(item.ID)
}
