package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/events"
	"github.com/angelmondragon/storefront/internal/orders"
	product "github.com/angelmondragon/storefront/internal/products"
	"github.com/angelmondragon/storefront/pkg/db/models"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/storage"
	"github.com/angelmondragon/storefront/pkg/storage/memory"
)

type fixture struct {
	products *product.Repository
	cart     *cart.Repository
	orders   *orders.Repository
	hub      *events.Hub
	svc      Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store, err := storage.New(memory.New(), storage.Options{})
	require.NoError(t, err)
	hub := events.NewHub(nil, nil)

	products, err := product.NewRepository(store, product.Options{Publisher: hub})
	require.NoError(t, err)
	cartRepo, err := cart.NewRepository(store, hub)
	require.NoError(t, err)
	orderRepo, err := orders.NewRepository(store, orders.Options{
		Publisher: hub,
		Clock:     func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	})
	require.NoError(t, err)
	svc, err := NewService(cartRepo, orderRepo, nil)
	require.NoError(t, err)

	return fixture{products: products, cart: cartRepo, orders: orderRepo, hub: hub, svc: svc}
}

func customer() models.CustomerInfo {
	return models.CustomerInfo{
		Name:    "Grace Hopper",
		Email:   "grace@example.com",
		Address: "1 Harbor Way",
		Phone:   "555-0199",
	}
}

func TestPlaceOrderEndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	stock := 5
	p, err := f.products.Create(ctx, product.ProductInput{
		Name:        "Notebook",
		Description: "Dot grid notebook.",
		Price:       decimal.RequireFromString("20.00"),
		ImageURL:    "https://images.unsplash.com/photo-notebook",
		Stock:       &stock,
	})
	require.NoError(t, err)

	var topics []enums.EventTopic
	sub := f.hub.Subscribe(func(_ context.Context, evt events.Event) {
		topics = append(topics, evt.Topic)
	}, enums.EventTopicCartUpdated, enums.EventTopicOrdersUpdated)
	defer sub.Unsubscribe()

	_, err = f.cart.Add(ctx, *p, 2)
	require.NoError(t, err)

	order, err := f.svc.PlaceOrder(ctx, customer())
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("40.00")))
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)

	items, err := f.cart.Items(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	fetched, err := f.orders.Get(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, order.ID, fetched.ID)
	assert.True(t, fetched.Total.Equal(order.Total))
	assert.Equal(t, order.Customer, fetched.Customer)

	assert.Equal(t, []enums.EventTopic{
		enums.EventTopicCartUpdated,
		enums.EventTopicOrdersUpdated,
		enums.EventTopicCartUpdated,
	}, topics)

	stored, err := f.products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Stock)
}

func TestPlaceOrderRejectsEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PlaceOrder(context.Background(), customer())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestPlaceOrderRequiresAllFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.cart.Add(ctx, models.Product{ID: "1", Price: decimal.RequireFromString("1")}, 1)
	require.NoError(t, err)

	c := customer()
	c.Email = "   "
	_, err = f.svc.PlaceOrder(ctx, c)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, "please fill in all fields", typed.Message())
	assert.Equal(t, map[string]string{"email": "is required"}, typed.Details())

	items, err := f.cart.Items(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

type stubCart struct {
	items    []models.CartItem
	clearErr error
	cleared  bool
}

func (s *stubCart) Items(context.Context) ([]models.CartItem, error) { return s.items, nil }
func (s *stubCart) ClearOrdered(context.Context, []models.CartItem) error {
	s.cleared = true
	return s.clearErr
}

type stubOrders struct {
	err   error
	total decimal.Decimal
}

func (s *stubOrders) Create(_ context.Context, c models.CustomerInfo, items []models.CartItem, total decimal.Decimal) (*models.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.total = total
	return &models.Order{ID: "o-1", Customer: c, Items: items, Total: total, Status: enums.OrderStatusPending}, nil
}

func TestPlaceOrderKeepsCartWhenOrderFails(t *testing.T) {
	c := &stubCart{items: []models.CartItem{{Product: models.Product{ID: "1", Price: decimal.RequireFromString("3.50")}, Quantity: 2}}}
	svc, err := NewService(c, &stubOrders{err: errors.New("write failed")}, nil)
	require.NoError(t, err)

	_, err = svc.PlaceOrder(context.Background(), customer())
	require.Error(t, err)
	assert.False(t, c.cleared)
}

func TestPlaceOrderSucceedsWhenClearFails(t *testing.T) {
	c := &stubCart{
		items:    []models.CartItem{{Product: models.Product{ID: "1", Price: decimal.RequireFromString("3.50")}, Quantity: 2}},
		clearErr: errors.New("clear failed"),
	}
	o := &stubOrders{}
	svc, err := NewService(c, o, nil)
	require.NoError(t, err)

	order, err := svc.PlaceOrder(context.Background(), customer())
	require.NoError(t, err)
	assert.Equal(t, "o-1", order.ID)
	assert.True(t, o.total.Equal(decimal.RequireFromString("7")))
}

// lateAddCart adds a line right after the cart is read, as a concurrent
// request would.
type lateAddCart struct {
	*cart.Repository
	late models.Product
}

func (c *lateAddCart) Items(ctx context.Context) ([]models.CartItem, error) {
	items, err := c.Repository.Items(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := c.Repository.Add(ctx, c.late, 1); err != nil {
		return nil, err
	}
	return items, nil
}

func TestPlaceOrderKeepsLinesAddedDuringCheckout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := models.Product{ID: "a", Price: decimal.RequireFromString("10")}
	b := models.Product{ID: "b", Price: decimal.RequireFromString("4")}

	_, err := f.cart.Add(ctx, a, 2)
	require.NoError(t, err)

	svc, err := NewService(&lateAddCart{Repository: f.cart, late: b}, f.orders, nil)
	require.NoError(t, err)

	order, err := svc.PlaceOrder(ctx, customer())
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "a", order.Items[0].Product.ID)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("20")))

	items, err := f.cart.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].Product.ID)
	assert.Equal(t, 1, items[0].Quantity)
}
