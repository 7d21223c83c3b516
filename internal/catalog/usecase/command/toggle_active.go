package command

import (
	"fmt"

	"github.com/tair/storefront/internal/catalog/domain"
)

// ToggleActiveCommand represents the command to flip a product's
// active flag. There is no target value; the flag is negated.
type ToggleActiveCommand struct {
	ID uint
}

// ToggleActiveHandler handles the active flag toggle
type ToggleActiveHandler struct {
	repo domain.ProductRepository
}

// NewToggleActiveHandler creates a new toggle active handler
func NewToggleActiveHandler(repo domain.ProductRepository) *ToggleActiveHandler {
	return &ToggleActiveHandler{repo: repo}
}

// Handle executes the toggle active command
func (h *ToggleActiveHandler) Handle(cmd ToggleActiveCommand) (*domain.Product, error) {
	product, err := h.repo.FindByID(cmd.ID)
	if err != nil {
		return nil, err
	}
	if product.IsDeleted {
		return nil, domain.ErrProductDeleted
	}

	product.IsActive = !product.IsActive

	if err := h.repo.Update(product); err != nil {
		return nil, fmt.Errorf("failed to toggle product: %w", err)
	}
	return product, nil
}
