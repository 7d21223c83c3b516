package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tair/storefront/internal/cart/domain"
)

// GormCartRepository implements CartRepository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GORM cart repository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// AutoMigrate runs database migrations
func (r *GormCartRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Cart{}, &domain.CartItem{})
}

// GetOrCreate returns the user's cart, creating it on first use
func (r *GormCartRepository) GetOrCreate(userID uint) (*domain.Cart, error) {
	var cart domain.Cart
	err := r.db.Where(domain.Cart{UserID: userID}).FirstOrCreate(&cart).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return &cart, nil
}

func (r *GormCartRepository) ItemsByCart(cartID uint) ([]domain.CartItem, error) {
	var items []domain.CartItem
	err := r.db.Where("cart_id = ?", cartID).Order("created_at ASC").Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}
	return items, nil
}

func (r *GormCartRepository) FindItemByProduct(cartID, productID uint) (*domain.CartItem, error) {
	var item domain.CartItem
	err := r.db.Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCartItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindItemForUser joins through carts so a user can only touch their own lines
func (r *GormCartRepository) FindItemForUser(itemID, userID uint) (*domain.CartItem, error) {
	var item domain.CartItem
	err := r.db.
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("cart_items.id = ? AND carts.user_id = ?", itemID, userID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCartItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *GormCartRepository) CreateItem(item *domain.CartItem) error {
	if err := r.db.Create(item).Error; err != nil {
		return fmt.Errorf("failed to create cart item: %w", err)
	}
	return nil
}

func (r *GormCartRepository) UpdateItem(item *domain.CartItem) error {
	if err := r.db.Save(item).Error; err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	return nil
}

func (r *GormCartRepository) DeleteItem(itemID uint) error {
	if err := r.db.Delete(&domain.CartItem{}, itemID).Error; err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	return nil
}
