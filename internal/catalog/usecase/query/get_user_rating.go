package query

import (
	"errors"

	"gorm.io/gorm"

	"github.com/tair/storefront/internal/catalog/domain"
)

// GetUserRatingQuery fetches the caller's own rating of a product, used
// to prefill the rating form. A missing rating is not an error; the
// result is nil.
type GetUserRatingQuery struct {
	ProductID uint
	UserID    uint
}

// GetUserRatingHandler handles get user rating query
type GetUserRatingHandler struct {
	products domain.ProductRepository
	ratings  domain.RatingRepository
}

// NewGetUserRatingHandler creates a new get user rating handler
func NewGetUserRatingHandler(products domain.ProductRepository, ratings domain.RatingRepository) *GetUserRatingHandler {
	return &GetUserRatingHandler{products: products, ratings: ratings}
}

// Handle executes the get user rating query
func (h *GetUserRatingHandler) Handle(query GetUserRatingQuery) (*domain.ProductRating, error) {
	if _, err := h.products.FindVisible(query.ProductID); err != nil {
		return nil, err
	}

	rating, err := h.ratings.FindByProductAndUser(query.ProductID, query.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rating, nil
}
