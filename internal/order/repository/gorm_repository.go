package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	cartdomain "github.com/tair/storefront/internal/cart/domain"
	catalogdomain "github.com/tair/storefront/internal/catalog/domain"
	"github.com/tair/storefront/internal/order/domain"
	userdomain "github.com/tair/storefront/internal/user/domain"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GORM order repository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// AutoMigrate runs database migrations
func (r *GormOrderRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Order{}, &domain.OrderItem{})
}

func (r *GormOrderRepository) FindByID(id uint) (*domain.Order, error) {
	var order domain.Order
	err := r.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_name ASC")
		}).
		Preload("Address").
		First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) FindByUser(userID uint, limit, offset int) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.Preload("Items").Preload("Address").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (r *GormOrderRepository) FindAll(limit, offset int) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.Preload("Items").Preload("Address").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (r *GormOrderRepository) UpdateStatus(orderID uint, status string) (*domain.Order, error) {
	order, err := r.FindByID(orderID)
	if err != nil {
		return nil, err
	}
	order.Status = status
	if err := r.db.Model(order).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	return order, nil
}

func (r *GormOrderRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&domain.Order{}).Count(&count).Error
	return count, err
}

// Revenue sums totals over all non-cancelled orders
func (r *GormOrderRepository) Revenue() (float64, error) {
	var revenue float64
	err := r.db.Model(&domain.Order{}).
		Where("status <> ?", domain.StatusCancelled).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&revenue).Error
	return revenue, err
}

func (r *GormOrderRepository) Recent(n int) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.Order("created_at DESC").Limit(n).Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent orders: %w", err)
	}
	return orders, nil
}

// GormCheckoutStore implements CheckoutStore on a GORM transaction
type GormCheckoutStore struct {
	db *gorm.DB
}

// NewGormCheckoutStore creates a new GORM checkout store
func NewGormCheckoutStore(db *gorm.DB) *GormCheckoutStore {
	return &GormCheckoutStore{db: db}
}

// InTransaction runs fn inside a database transaction. Any error from fn
// rolls everything back, including writes fn already made.
func (s *GormCheckoutStore) InTransaction(ctx context.Context, fn func(tx domain.CheckoutTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormCheckoutTx{tx: tx})
	})
}

type gormCheckoutTx struct {
	tx *gorm.DB
}

func (t *gormCheckoutTx) FindAddress(addressID, userID uint) (*userdomain.Address, error) {
	var addr userdomain.Address
	err := t.tx.Where("id = ? AND user_id = ?", addressID, userID).First(&addr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userdomain.ErrAddressNotFound
		}
		return nil, err
	}
	return &addr, nil
}

func (t *gormCheckoutTx) CreateAddress(addr *userdomain.Address) error {
	return t.tx.Create(addr).Error
}

func (t *gormCheckoutTx) ClearDefaultAddress(userID uint) error {
	return t.tx.Model(&userdomain.Address{}).
		Where("user_id = ?", userID).
		Update("is_default", false).Error
}

func (t *gormCheckoutTx) SaveAddress(addr *userdomain.Address) error {
	return t.tx.Save(addr).Error
}

// LockProduct reads the product row under SELECT ... FOR UPDATE so the
// stock check and decrement cannot race with another checkout.
func (t *gormCheckoutTx) LockProduct(productID uint) (*catalogdomain.Product, error) {
	var product catalogdomain.Product
	err := t.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalogdomain.ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (t *gormCheckoutTx) SaveProduct(product *catalogdomain.Product) error {
	return t.tx.Save(product).Error
}

func (t *gormCheckoutTx) CreateOrder(order *domain.Order) error {
	return t.tx.Create(order).Error
}

func (t *gormCheckoutTx) CreateOrderItem(item *domain.OrderItem) error {
	return t.tx.Create(item).Error
}

func (t *gormCheckoutTx) SaveCartItemQuantity(item *cartdomain.CartItem) error {
	return t.tx.Model(item).Update("quantity", item.Quantity).Error
}

func (t *gormCheckoutTx) DeleteCartItem(itemID uint) error {
	return t.tx.Delete(&cartdomain.CartItem{}, itemID).Error
}
