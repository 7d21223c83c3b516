package command

import (
	"fmt"

	"github.com/tair/storefront/internal/user/domain"
)

// AddAddressCommand represents the command to add an address book entry
type AddAddressCommand struct {
	UserID    uint
	Line1     string
	Line2     string
	City      string
	State     string
	ZipCode   string
	Country   string
	IsDefault bool
}

// AddAddressHandler handles address creation
type AddAddressHandler struct {
	repo domain.AddressRepository
}

// NewAddAddressHandler creates a new add address handler
func NewAddAddressHandler(repo domain.AddressRepository) *AddAddressHandler {
	return &AddAddressHandler{repo: repo}
}

// Handle executes the add address command
func (h *AddAddressHandler) Handle(cmd AddAddressCommand) (*domain.Address, error) {
	if cmd.UserID == 0 {
		return nil, fmt.Errorf("user_id is required")
	}
	if cmd.Line1 == "" || cmd.City == "" || cmd.State == "" || cmd.ZipCode == "" || cmd.Country == "" {
		return nil, fmt.Errorf("address line 1, city, state, zip code and country are required")
	}

	address := &domain.Address{
		UserID:  cmd.UserID,
		Line1:   cmd.Line1,
		Line2:   cmd.Line2,
		City:    cmd.City,
		State:   cmd.State,
		ZipCode: cmd.ZipCode,
		Country: cmd.Country,
	}

	if err := h.repo.Create(address); err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}

	if cmd.IsDefault {
		if err := h.repo.MakeDefault(cmd.UserID, address.ID); err != nil {
			return nil, fmt.Errorf("failed to set default address: %w", err)
		}
		address.IsDefault = true
	}

	return address, nil
}
