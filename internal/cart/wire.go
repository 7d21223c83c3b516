//go:build wireinject
// +build wireinject

package cart

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/storefront/internal/cart/delivery/http"
	"github.com/tair/storefront/internal/cart/domain"
	"github.com/tair/storefront/internal/cart/repository"
	"github.com/tair/storefront/internal/cart/usecase/command"
	"github.com/tair/storefront/internal/cart/usecase/query"
	"github.com/tair/storefront/internal/catalog"
)

// ProvideCartRepository provides the cart repository
func ProvideCartRepository(db *gorm.DB) domain.CartRepository {
	return repository.NewGormCartRepository(db)
}

var RepositorySet = wire.NewSet(
	ProvideCartRepository,
	catalog.ProvideProductRepository,
)

var CommandHandlerSet = wire.NewSet(
	command.NewAddItemHandler,
	command.NewIncreaseItemHandler,
	command.NewDecreaseItemHandler,
	command.NewRemoveItemHandler,
)

var QueryHandlerSet = wire.NewSet(
	query.NewGetCartHandler,
)

// InitializeHTTPHandler initializes the HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB) (*http.CartHandler, error) {
	wire.Build(
		RepositorySet,
		CommandHandlerSet,
		QueryHandlerSet,
		http.NewCartHandlerWithDI,
	)
	return nil, nil
}
