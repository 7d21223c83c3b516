package query

import (
	"fmt"

	"github.com/tair/storefront/internal/user/domain"
)

// ListAddressesQuery represents the query to list a user's addresses
type ListAddressesQuery struct {
	UserID uint
}

// ListAddressesHandler handles list addresses query
type ListAddressesHandler struct {
	repo domain.AddressRepository
}

// NewListAddressesHandler creates a new list addresses handler
func NewListAddressesHandler(repo domain.AddressRepository) *ListAddressesHandler {
	return &ListAddressesHandler{repo: repo}
}

// Handle executes the list addresses query
func (h *ListAddressesHandler) Handle(query ListAddressesQuery) ([]domain.Address, error) {
	addresses, err := h.repo.FindByUser(query.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addresses, nil
}
