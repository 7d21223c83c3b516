package command

import (
	"github.com/tair/storefront/internal/order/domain"
)

// UpdateStatusCommand overwrites an order's status. Any known status may
// follow any other; there is no transition graph to enforce.
type UpdateStatusCommand struct {
	OrderID uint
	Status  string
}

// UpdateStatusHandler handles update status command
type UpdateStatusHandler struct {
	orders domain.OrderRepository
}

// NewUpdateStatusHandler creates a new update status handler
func NewUpdateStatusHandler(orders domain.OrderRepository) *UpdateStatusHandler {
	return &UpdateStatusHandler{orders: orders}
}

// Handle executes the update status command
func (h *UpdateStatusHandler) Handle(cmd UpdateStatusCommand) (*domain.Order, error) {
	if !domain.IsValidStatus(cmd.Status) {
		return nil, domain.ErrInvalidStatus
	}
	return h.orders.UpdateStatus(cmd.OrderID, cmd.Status)
}
