package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/storefront/internal/catalog/domain"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GORM product repository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// AutoMigrate runs database migrations
func (r *GormProductRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Product{}, &domain.ProductRating{})
}

// Create inserts a new product
func (r *GormProductRepository) Create(product *domain.Product) error {
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// FindByID retrieves a product by ID, excluding soft-deleted rows
func (r *GormProductRepository) FindByID(id uint) (*domain.Product, error) {
	var product domain.Product
	if err := r.db.Where("is_deleted = ?", false).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &product, nil
}

// FindVisible retrieves a product by ID in the customer scope
func (r *GormProductRepository) FindVisible(id uint) (*domain.Product, error) {
	var product domain.Product
	err := r.db.Where("is_deleted = ? AND is_active = ?", false, true).First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &product, nil
}

// List retrieves products with filters and their average rating. The
// rating threshold is applied against the mean over product_ratings.
func (r *GormProductRepository) List(filter domain.ListFilter) ([]domain.ProductWithRating, error) {
	query := r.db.Model(&domain.Product{}).
		Select("products.*, COALESCE(AVG(product_ratings.rating), 0) AS avg_rating").
		Joins("LEFT JOIN product_ratings ON product_ratings.product_id = products.id").
		Where("products.is_deleted = ?", false).
		Group("products.id")

	if !filter.IncludeInactive {
		query = query.Where("products.is_active = ?", true)
	}
	if filter.Query != "" {
		query = query.Where("products.name ILIKE ?", "%"+filter.Query+"%")
	}
	if filter.MinPrice != nil {
		query = query.Where("products.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("products.price <= ?", *filter.MaxPrice)
	}
	if filter.MinRating != nil {
		query = query.Having("COALESCE(AVG(product_ratings.rating), 0) >= ?", *filter.MinRating)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []domain.ProductWithRating
	if err := query.Order("products.created_at DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Update updates a product
func (r *GormProductRepository) Update(product *domain.Product) error {
	if err := r.db.Save(product).Error; err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

// Count returns the number of non-deleted products
func (r *GormProductRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&domain.Product{}).Where("is_deleted = ?", false).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// GormRatingRepository implements RatingRepository using GORM
type GormRatingRepository struct {
	db *gorm.DB
}

// NewGormRatingRepository creates a new GORM rating repository
func NewGormRatingRepository(db *gorm.DB) *GormRatingRepository {
	return &GormRatingRepository{db: db}
}

// Upsert writes a rating, overwriting any prior rating by the same
// user for the same product.
func (r *GormRatingRepository) Upsert(rating *domain.ProductRating) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "review", "updated_at"}),
	}).Create(rating).Error
	if err != nil {
		return fmt.Errorf("failed to save rating: %w", err)
	}
	return nil
}

// FindByProductAndUser retrieves a single user's rating of a product
func (r *GormRatingRepository) FindByProductAndUser(productID, userID uint) (*domain.ProductRating, error) {
	var rating domain.ProductRating
	err := r.db.Where("product_id = ? AND user_id = ?", productID, userID).First(&rating).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find rating: %w", err)
	}
	return &rating, nil
}

// UserRatings returns the user's ratings for the given products,
// keyed by product id.
func (r *GormRatingRepository) UserRatings(userID uint, productIDs []uint) (map[uint]int, error) {
	if len(productIDs) == 0 {
		return map[uint]int{}, nil
	}

	var ratings []domain.ProductRating
	err := r.db.Where("user_id = ? AND product_id IN ?", userID, productIDs).Find(&ratings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find user ratings: %w", err)
	}

	out := make(map[uint]int, len(ratings))
	for _, rating := range ratings {
		out[rating.ProductID] = rating.Rating
	}
	return out, nil
}
