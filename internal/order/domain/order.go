package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	cartdomain "github.com/tair/storefront/internal/cart/domain"
	catalogdomain "github.com/tair/storefront/internal/catalog/domain"
	userdomain "github.com/tair/storefront/internal/user/domain"
)

// Order statuses. Staff may overwrite the status with any of these at
// any time; there is no transition graph.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrInvalidStatus  = errors.New("invalid order status")
	ErrEmptyCart      = errors.New("cart is empty")
	ErrMissingAddress = errors.New("shipping address is required")
)

// IsValidStatus reports whether s is one of the known order statuses
func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// StockShortfallError aborts a checkout when a product cannot cover the
// requested quantity. It names the product and what is actually left.
type StockShortfallError struct {
	ProductID uint
	Name      string
	Available int
}

func (e *StockShortfallError) Error() string {
	return fmt.Sprintf("not enough stock for %s: %d available", e.Name, e.Available)
}

// Order is the ledger record created from a cart at checkout. The total
// is a snapshot taken at creation time and never recomputed.
type Order struct {
	ID          uint                `json:"id" gorm:"primaryKey"`
	UserID      uint                `json:"user_id" gorm:"index;not null"`
	AddressID   uint                `json:"address_id" gorm:"not null"`
	Address     userdomain.Address  `json:"address" gorm:"foreignKey:AddressID"`
	Status      string              `json:"status" gorm:"type:varchar(20);default:'pending';not null"`
	TotalAmount float64             `json:"total_amount" gorm:"not null"`
	Items       []OrderItem         `json:"items" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// OrderItem snapshots one cart line at the moment of purchase. Name and
// unit price are copied so later catalog edits do not rewrite history.
type OrderItem struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	OrderID     uint    `json:"order_id" gorm:"index;not null"`
	ProductID   uint    `json:"product_id" gorm:"not null"`
	ProductName string  `json:"product_name" gorm:"not null"`
	Quantity    int     `json:"quantity" gorm:"not null"`
	UnitPrice   float64 `json:"unit_price" gorm:"not null"`
}

// OrderRepository defines order data access outside the checkout transaction
type OrderRepository interface {
	FindByID(id uint) (*Order, error)
	FindByUser(userID uint, limit, offset int) ([]Order, error)
	FindAll(limit, offset int) ([]Order, error)
	UpdateStatus(orderID uint, status string) (*Order, error)
	Count() (int64, error)
	Revenue() (float64, error)
	Recent(n int) ([]Order, error)
}

// CheckoutStore runs the order placement as one atomic transaction.
// Everything done through the CheckoutTx either commits as a whole or
// rolls back as a whole.
type CheckoutStore interface {
	InTransaction(ctx context.Context, fn func(tx CheckoutTx) error) error
}

// CheckoutTx is the set of writes available inside a checkout
// transaction. LockProduct takes a row lock so concurrent checkouts
// serialize on the products they share.
type CheckoutTx interface {
	FindAddress(addressID, userID uint) (*userdomain.Address, error)
	CreateAddress(addr *userdomain.Address) error
	ClearDefaultAddress(userID uint) error
	SaveAddress(addr *userdomain.Address) error

	LockProduct(productID uint) (*catalogdomain.Product, error)
	SaveProduct(product *catalogdomain.Product) error

	CreateOrder(order *Order) error
	CreateOrderItem(item *OrderItem) error

	SaveCartItemQuantity(item *cartdomain.CartItem) error
	DeleteCartItem(itemID uint) error
}
