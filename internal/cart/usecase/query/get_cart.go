package query

import (
	"errors"
	"fmt"

	"github.com/tair/storefront/internal/cart/domain"
	catalogdomain "github.com/tair/storefront/internal/catalog/domain"
)

// GetCartQuery fetches a user's cart with current product data
type GetCartQuery struct {
	UserID uint
}

// CartLine is one cart item joined with its product snapshot
type CartLine struct {
	ItemID    uint    `json:"item_id"`
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ImageURL  string  `json:"image_url,omitempty"`
	Stock     int     `json:"stock"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"line_total"`
}

// CartView is the cart as shown to the user after reconciliation
type CartView struct {
	CartID   uint       `json:"cart_id"`
	Items    []CartLine `json:"items"`
	Subtotal float64    `json:"subtotal"`
	// Warnings surfaces lines that were clamped or dropped because the
	// catalog changed since the item was added.
	Warnings []string `json:"warnings,omitempty"`
}

// GetCartHandler handles get cart query
type GetCartHandler struct {
	carts    domain.CartRepository
	products catalogdomain.ProductRepository
}

// NewGetCartHandler creates a new get cart handler
func NewGetCartHandler(carts domain.CartRepository, products catalogdomain.ProductRepository) *GetCartHandler {
	return &GetCartHandler{carts: carts, products: products}
}

// Handle executes the get cart query. The cart is not kept in sync with
// catalog changes as they happen; instead every read repairs it: lines
// whose product went inactive or away are dropped, and quantities above
// the remaining stock are clamped down.
func (h *GetCartHandler) Handle(query GetCartQuery) (*CartView, error) {
	cart, err := h.carts.GetOrCreate(query.UserID)
	if err != nil {
		return nil, err
	}

	items, err := h.carts.ItemsByCart(cart.ID)
	if err != nil {
		return nil, err
	}

	view := &CartView{CartID: cart.ID, Items: []CartLine{}}

	for _, item := range items {
		product, err := h.products.FindByID(item.ProductID)
		if err != nil {
			if !errors.Is(err, catalogdomain.ErrProductNotFound) {
				return nil, err
			}
			if err := h.carts.DeleteItem(item.ID); err != nil {
				return nil, err
			}
			view.Warnings = append(view.Warnings, "An item in your cart is no longer available and was removed")
			continue
		}

		if !product.IsVisible() {
			if err := h.carts.DeleteItem(item.ID); err != nil {
				return nil, err
			}
			view.Warnings = append(view.Warnings,
				fmt.Sprintf("%s is no longer available and was removed from your cart", product.Name))
			continue
		}

		if product.Stock < item.Quantity {
			item.Quantity = product.Stock
			if item.Quantity <= 0 {
				if err := h.carts.DeleteItem(item.ID); err != nil {
					return nil, err
				}
				view.Warnings = append(view.Warnings,
					fmt.Sprintf("%s sold out and was removed from your cart", product.Name))
				continue
			}
			if err := h.carts.UpdateItem(&item); err != nil {
				return nil, err
			}
			view.Warnings = append(view.Warnings,
				fmt.Sprintf("Only %d of %s left in stock, your cart was adjusted", product.Stock, product.Name))
		}

		line := CartLine{
			ItemID:    item.ID,
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			ImageURL:  product.ImageURL,
			Stock:     product.Stock,
			Quantity:  item.Quantity,
			LineTotal: float64(item.Quantity) * product.Price,
		}
		view.Items = append(view.Items, line)
		view.Subtotal += line.LineTotal
	}

	return view, nil
}
