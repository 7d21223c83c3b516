package command

import (
	"fmt"

	"github.com/tair/storefront/internal/catalog/domain"
)

// DeleteProductCommand represents the command to soft-delete a product
type DeleteProductCommand struct {
	ID uint
}

// DeleteProductHandler handles product soft deletion
type DeleteProductHandler struct {
	repo domain.ProductRepository
}

// NewDeleteProductHandler creates a new delete product handler
func NewDeleteProductHandler(repo domain.ProductRepository) *DeleteProductHandler {
	return &DeleteProductHandler{repo: repo}
}

// Handle executes the delete product command. Deletion is one-way and
// forces the product inactive; the row itself is kept.
func (h *DeleteProductHandler) Handle(cmd DeleteProductCommand) error {
	product, err := h.repo.FindByID(cmd.ID)
	if err != nil {
		return err
	}

	product.IsDeleted = true
	product.IsActive = false

	if err := h.repo.Update(product); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}
