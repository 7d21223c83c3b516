package domain

import (
	"errors"
	"time"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrProductDeleted  = errors.New("product is deleted")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
)

// Product represents a catalog entry. Soft delete is an explicit
// one-way flag: once IsDeleted is set the row is hidden from every
// customer-facing query and IsActive is forced to false.
type Product struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Price       float64   `json:"price" gorm:"not null"`
	ImageURL    string    `json:"image_url"`
	Stock       int       `json:"stock" gorm:"not null;default:0"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	IsDeleted   bool      `json:"is_deleted" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (Product) TableName() string {
	return "products"
}

// IsVisible checks if the product appears in customer-facing queries
func (p *Product) IsVisible() bool {
	return p.IsActive && !p.IsDeleted
}

// ProductRating is one customer's rating of a product. The
// (product,user) pair is unique; re-rating overwrites the prior row.
type ProductRating struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProductID uint      `json:"product_id" gorm:"uniqueIndex:idx_product_user;not null"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex:idx_product_user;not null"`
	Rating    int       `json:"rating" gorm:"not null"`
	Review    string    `json:"review"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (ProductRating) TableName() string {
	return "product_ratings"
}

// ProductWithRating is a product row annotated with its average rating
type ProductWithRating struct {
	Product
	AvgRating float64 `json:"avg_rating"`
}

// ListFilter holds the catalog listing filters. Price bounds are
// inclusive; MinRating compares against the mean of all ratings.
type ListFilter struct {
	Query           string
	MinPrice        *float64
	MaxPrice        *float64
	MinRating       *float64
	IncludeInactive bool
	Limit           int
	Offset          int
}

// ProductRepository defines the contract for product data access.
// Every method keeps the soft-delete filter; only List can opt into
// inactive rows for the staff surface.
type ProductRepository interface {
	Create(product *Product) error
	FindByID(id uint) (*Product, error)
	FindVisible(id uint) (*Product, error)
	List(filter ListFilter) ([]ProductWithRating, error)
	Update(product *Product) error
	Count() (int64, error)
}

// RatingRepository defines the contract for product rating access
type RatingRepository interface {
	Upsert(rating *ProductRating) error
	FindByProductAndUser(productID, userID uint) (*ProductRating, error)
	UserRatings(userID uint, productIDs []uint) (map[uint]int, error)
}
