//go:build wireinject
// +build wireinject

package order

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/storefront/internal/cart"
	"github.com/tair/storefront/internal/catalog"
	"github.com/tair/storefront/internal/order/delivery/http"
	"github.com/tair/storefront/internal/order/domain"
	"github.com/tair/storefront/internal/order/repository"
	"github.com/tair/storefront/internal/order/usecase/command"
	"github.com/tair/storefront/internal/order/usecase/query"
	"github.com/tair/storefront/kafka"
)

// ProvideOrderRepository provides the order repository
func ProvideOrderRepository(db *gorm.DB) domain.OrderRepository {
	return repository.NewGormOrderRepository(db)
}

// ProvideCheckoutStore provides the transactional checkout store
func ProvideCheckoutStore(db *gorm.DB) domain.CheckoutStore {
	return repository.NewGormCheckoutStore(db)
}

var RepositorySet = wire.NewSet(
	ProvideOrderRepository,
	ProvideCheckoutStore,
	cart.ProvideCartRepository,
	catalog.ProvideProductRepository,
	catalog.ProvideRatingRepository,
)

var CommandHandlerSet = wire.NewSet(
	command.NewPlaceOrderHandler,
	command.NewUpdateStatusHandler,
)

var QueryHandlerSet = wire.NewSet(
	query.NewListOrdersHandler,
	query.NewGetOrderHandler,
)

// InitializeHTTPHandler initializes the HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, publisher *kafka.Publisher) (*http.OrderHandler, error) {
	wire.Build(
		RepositorySet,
		CommandHandlerSet,
		QueryHandlerSet,
		http.NewOrderHandlerWithDI,
	)
	return nil, nil
}
