package command

import (
	"fmt"

	"github.com/tair/storefront/internal/catalog/domain"
)

// RateProductCommand represents the command to rate a product
type RateProductCommand struct {
	ProductID uint
	UserID    uint
	Rating    int
	Review    string
}

// RateProductHandler handles product rating
type RateProductHandler struct {
	products domain.ProductRepository
	ratings  domain.RatingRepository
}

// NewRateProductHandler creates a new rate product handler
func NewRateProductHandler(products domain.ProductRepository, ratings domain.RatingRepository) *RateProductHandler {
	return &RateProductHandler{products: products, ratings: ratings}
}

// Handle executes the rate product command. A second rating by the
// same user replaces the first.
func (h *RateProductHandler) Handle(cmd RateProductCommand) (*domain.ProductRating, error) {
	if cmd.Rating < 1 || cmd.Rating > 5 {
		return nil, domain.ErrInvalidRating
	}

	if _, err := h.products.FindVisible(cmd.ProductID); err != nil {
		return nil, err
	}

	rating := &domain.ProductRating{
		ProductID: cmd.ProductID,
		UserID:    cmd.UserID,
		Rating:    cmd.Rating,
		Review:    cmd.Review,
	}

	if err := h.ratings.Upsert(rating); err != nil {
		return nil, fmt.Errorf("failed to save rating: %w", err)
	}
	return rating, nil
}
