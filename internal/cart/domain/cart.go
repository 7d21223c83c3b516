package domain

import (
	"errors"
	"time"
)

var (
	ErrOutOfStock       = errors.New("product is out of stock")
	ErrStockExceeded    = errors.New("requested quantity exceeds available stock")
	ErrInvalidQuantity  = errors.New("quantity cannot go below 1")
	ErrCartItemNotFound = errors.New("cart item not found")
)

// Cart is the single active cart of a user. It is created lazily on the
// first add and never deleted.
type Cart struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	UserID    uint       `json:"user_id" gorm:"uniqueIndex;not null"`
	Items     []CartItem `json:"items" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem is one product line in a cart. Quantity stays >= 1; a line
// that would drop to zero is deleted instead.
type CartItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CartID    uint      `json:"cart_id" gorm:"index;not null"`
	ProductID uint      `json:"product_id" gorm:"index;not null"`
	Quantity  int       `json:"quantity" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CartRepository defines cart data access
type CartRepository interface {
	GetOrCreate(userID uint) (*Cart, error)
	ItemsByCart(cartID uint) ([]CartItem, error)
	FindItemByProduct(cartID, productID uint) (*CartItem, error)
	// FindItemForUser resolves an item by id and verifies it belongs to
	// the given user's cart.
	FindItemForUser(itemID, userID uint) (*CartItem, error)
	CreateItem(item *CartItem) error
	UpdateItem(item *CartItem) error
	DeleteItem(itemID uint) error
}
