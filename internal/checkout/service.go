package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/validation"
)

type cartStore interface {
	Items(ctx context.Context) ([]models.CartItem, error)
	ClearOrdered(ctx context.Context, ordered []models.CartItem) error
}

type orderCreator interface {
	Create(ctx context.Context, customer models.CustomerInfo, items []models.CartItem, total decimal.Decimal) (*models.Order, error)
}

// Service turns the current cart into an order.
type Service interface {
	PlaceOrder(ctx context.Context, customer models.CustomerInfo) (*models.Order, error)
}

type service struct {
	cart   cartStore
	orders orderCreator
	logg   *logger.Logger
}

// NewService constructs a checkout service.
func NewService(cartRepo cartStore, orderRepo orderCreator, logg *logger.Logger) (Service, error) {
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{cart: cartRepo, orders: orderRepo, logg: logg}, nil
}

// PlaceOrder freezes the cart and its subtotal into a Pending order, then
// takes the ordered lines out of the cart. The cart is left untouched when
// the order is not recorded.
func (s *service) PlaceOrder(ctx context.Context, customer models.CustomerInfo) (*models.Order, error) {
	customer = normalizeCustomer(customer)
	if err := validation.Struct(customer); err != nil {
		fields := pkgerrors.New(pkgerrors.CodeValidation, "please fill in all fields")
		if typed := pkgerrors.As(err); typed != nil {
			fields = fields.WithDetails(typed.Details())
		}
		return nil, fields
	}

	items, err := s.cart.Items(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	order, err := s.orders.Create(ctx, customer, items, cart.Subtotal(items))
	if err != nil {
		return nil, err
	}

	if err := s.cart.ClearOrdered(ctx, items); err != nil {
		// the order is recorded at this point; a failed clear is only logged.
		s.logg.Error(s.logg.WithOrderID(ctx, order.ID), "checkout.clear_cart_failed", err)
	}
	return order, nil
}

func normalizeCustomer(c models.CustomerInfo) models.CustomerInfo {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Address = strings.TrimSpace(c.Address)
	c.Phone = strings.TrimSpace(c.Phone)
	return c
}
