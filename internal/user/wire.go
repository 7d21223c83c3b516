//go:build wireinject
// +build wireinject

package user

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/storefront/internal/user/delivery/http"
	"github.com/tair/storefront/internal/user/domain"
	"github.com/tair/storefront/internal/user/repository"
	"github.com/tair/storefront/internal/user/usecase/command"
	"github.com/tair/storefront/internal/user/usecase/query"
	"github.com/tair/storefront/pkg/ratelimit"
)

// ProvideUserRepository provides the user repository
func ProvideUserRepository(db *gorm.DB) domain.UserRepository {
	return repository.NewGormUserRepository(db)
}

// ProvideAddressRepository provides the address repository
func ProvideAddressRepository(db *gorm.DB) domain.AddressRepository {
	return repository.NewGormAddressRepository(db)
}

var RepositorySet = wire.NewSet(
	ProvideUserRepository,
	ProvideAddressRepository,
)

var CommandHandlerSet = wire.NewSet(
	command.NewRegisterUserHandler,
	command.NewLoginUserHandler,
	command.NewRefreshTokenHandler,
	command.NewAddAddressHandler,
)

var QueryHandlerSet = wire.NewSet(
	query.NewGetUserHandler,
	query.NewListAddressesHandler,
	query.NewListCustomersHandler,
)

// InitializeHTTPHandler initializes the HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, limiter *ratelimit.RateLimiter) (*http.UserHandler, error) {
	wire.Build(
		RepositorySet,
		CommandHandlerSet,
		QueryHandlerSet,
		http.NewUserHandlerWithDI,
	)
	return nil, nil
}
