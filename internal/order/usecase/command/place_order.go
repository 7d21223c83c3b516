package command

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	cartdomain "github.com/tair/storefront/internal/cart/domain"
	catalogdomain "github.com/tair/storefront/internal/catalog/domain"
	"github.com/tair/storefront/internal/order/domain"
	userdomain "github.com/tair/storefront/internal/user/domain"
	"github.com/tair/storefront/pkg/logger"
)

// AddressInput carries the fields of a shipping address submitted with
// the checkout instead of an existing address id.
type AddressInput struct {
	Line1   string
	Line2   string
	City    string
	State   string
	ZipCode string
	Country string
}

// PlaceOrderCommand converts the user's cart into an order. Either
// AddressID or NewAddress must be set.
type PlaceOrderCommand struct {
	UserID        uint
	AddressID     uint
	NewAddress    *AddressInput
	SaveAsDefault bool
}

// PlaceOrderHandler handles place order command
type PlaceOrderHandler struct {
	carts    cartdomain.CartRepository
	products catalogdomain.ProductRepository
	store    domain.CheckoutStore
}

// NewPlaceOrderHandler creates a new place order handler
func NewPlaceOrderHandler(
	carts cartdomain.CartRepository,
	products catalogdomain.ProductRepository,
	store domain.CheckoutStore,
) *PlaceOrderHandler {
	return &PlaceOrderHandler{carts: carts, products: products, store: store}
}

// Handle executes the place order command as a single transaction. On
// any failure, including a stock shortfall found midway, every write
// made so far rolls back and the cart is left as it was.
func (h *PlaceOrderHandler) Handle(ctx context.Context, cmd PlaceOrderCommand) (*domain.Order, error) {
	tracer := otel.Tracer("checkout")
	ctx, span := tracer.Start(ctx, "checkout.place_order")
	defer span.End()

	cart, err := h.carts.GetOrCreate(cmd.UserID)
	if err != nil {
		return nil, err
	}

	items, err := h.carts.ItemsByCart(cart.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	// Cart subtotal from the snapshot read above. This is what the order
	// records; item rows snapshot their own price inside the transaction.
	var total float64
	for _, item := range items {
		product, err := h.products.FindByID(item.ProductID)
		if err != nil {
			return nil, err
		}
		total += float64(item.Quantity) * product.Price
	}

	var order *domain.Order

	err = h.store.InTransaction(ctx, func(tx domain.CheckoutTx) error {
		addr, err := h.resolveAddress(tx, cmd)
		if err != nil {
			return err
		}

		if cmd.SaveAsDefault {
			if err := tx.ClearDefaultAddress(cmd.UserID); err != nil {
				return err
			}
			addr.IsDefault = true
			if err := tx.SaveAddress(addr); err != nil {
				return err
			}
		}

		order = &domain.Order{
			UserID:      cmd.UserID,
			AddressID:   addr.ID,
			Address:     *addr,
			Status:      domain.StatusPending,
			TotalAmount: total,
		}
		if err := tx.CreateOrder(order); err != nil {
			return err
		}

		for _, item := range items {
			product, err := tx.LockProduct(item.ProductID)
			if err != nil {
				return err
			}

			if product.Stock < item.Quantity {
				// Clamp the line so the cart reflects reality, then abort.
				// The rollback undoes the clamp together with the order.
				item.Quantity = product.Stock
				if err := tx.SaveCartItemQuantity(&item); err != nil {
					return err
				}
				return &domain.StockShortfallError{
					ProductID: product.ID,
					Name:      product.Name,
					Available: product.Stock,
				}
			}

			orderItem := &domain.OrderItem{
				OrderID:     order.ID,
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    item.Quantity,
				UnitPrice:   product.Price,
			}
			if err := tx.CreateOrderItem(orderItem); err != nil {
				return err
			}
			order.Items = append(order.Items, *orderItem)

			product.Stock -= item.Quantity
			if err := tx.SaveProduct(product); err != nil {
				return err
			}

			if err := tx.DeleteCartItem(item.ID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Checkout failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("order.id", int64(order.ID)),
		attribute.Float64("order.total", order.TotalAmount),
		attribute.Int("order.items", len(order.Items)),
	)
	span.SetStatus(codes.Ok, "Order placed")

	logger.Audit(ctx, "order.placed").
		Uint("order_id", order.ID).
		Uint("user_id", cmd.UserID).
		Float64("total", order.TotalAmount).
		Int("items", len(order.Items)).
		Msg("Order placed")

	return order, nil
}

func (h *PlaceOrderHandler) resolveAddress(tx domain.CheckoutTx, cmd PlaceOrderCommand) (*userdomain.Address, error) {
	if cmd.AddressID != 0 {
		return tx.FindAddress(cmd.AddressID, cmd.UserID)
	}

	in := cmd.NewAddress
	if in == nil || in.Line1 == "" || in.City == "" || in.ZipCode == "" || in.Country == "" {
		return nil, domain.ErrMissingAddress
	}

	addr := &userdomain.Address{
		UserID:  cmd.UserID,
		Line1:   in.Line1,
		Line2:   in.Line2,
		City:    in.City,
		State:   in.State,
		ZipCode: in.ZipCode,
		Country: in.Country,
	}
	if err := tx.CreateAddress(addr); err != nil {
		return nil, err
	}
	return addr, nil
}
