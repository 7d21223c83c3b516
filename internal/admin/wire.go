//go:build wireinject
// +build wireinject

package admin

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/storefront/internal/admin/delivery/http"
	"github.com/tair/storefront/internal/catalog"
	catalogquery "github.com/tair/storefront/internal/catalog/usecase/query"
	"github.com/tair/storefront/internal/order"
	orderquery "github.com/tair/storefront/internal/order/usecase/query"
	"github.com/tair/storefront/internal/user"
	userquery "github.com/tair/storefront/internal/user/usecase/query"
)

var QueryHandlerSet = wire.NewSet(
	userquery.NewGetStatsHandler,
	catalogquery.NewGetStatsHandler,
	orderquery.NewGetStatsHandler,
)

// InitializeHTTPHandler initializes the HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB) (*http.AdminHandler, error) {
	wire.Build(
		user.ProvideUserRepository,
		catalog.ProvideProductRepository,
		order.ProvideOrderRepository,
		QueryHandlerSet,
		http.NewAdminHandlerWithDI,
	)
	return nil, nil
}
