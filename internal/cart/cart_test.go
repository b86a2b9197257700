package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront/pkg/db/models"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/storage"
	"github.com/angelmondragon/storefront/pkg/storage/memory"
)

type recordingPublisher struct {
	topics []enums.EventTopic
}

func (p *recordingPublisher) Publish(_ context.Context, topic enums.EventTopic) {
	p.topics = append(p.topics, topic)
}

func newTestCart(t *testing.T) (*Repository, *recordingPublisher) {
	t.Helper()
	store, err := storage.New(memory.New(), storage.Options{})
	require.NoError(t, err)
	pub := &recordingPublisher{}
	repo, err := NewRepository(store, pub)
	require.NoError(t, err)
	return repo, pub
}

func product(id, price string) models.Product {
	return models.Product{
		ID:    id,
		Name:  "Product " + id,
		Price: decimal.RequireFromString(price),
		Stock: 10,
	}
}

func TestAddAccumulatesOnExistingLine(t *testing.T) {
	ctx := context.Background()
	repo, pub := newTestCart(t)

	_, err := repo.Add(ctx, product("1", "249.99"), 1)
	require.NoError(t, err)
	items, err := repo.Add(ctx, product("1", "249.99"), 2)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, []enums.EventTopic{enums.EventTopicCartUpdated, enums.EventTopicCartUpdated}, pub.topics)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestAddKeepsFirstSnapshot(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestCart(t)

	_, err := repo.Add(ctx, product("1", "10.00"), 1)
	require.NoError(t, err)
	items, err := repo.Add(ctx, product("1", "12.00"), 1)
	require.NoError(t, err)

	assert.True(t, items[0].Product.Price.Equal(decimal.RequireFromString("10.00")))
}

func TestAddRejectsNonPositiveQuantity(t *testing.T) {
	repo, pub := newTestCart(t)
	for _, qty := range []int{0, -1} {
		_, err := repo.Add(context.Background(), product("1", "1.00"), qty)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	}
	assert.Empty(t, pub.topics)
}

func TestSetQuantityFloorRemovesLine(t *testing.T) {
	for _, qty := range []int{0, -3} {
		ctx := context.Background()
		repo, _ := newTestCart(t)
		_, err := repo.Add(ctx, product("1", "5.00"), 2)
		require.NoError(t, err)
		_, err = repo.Add(ctx, product("2", "5.00"), 1)
		require.NoError(t, err)

		items, err := repo.SetQuantity(ctx, "1", qty)
		require.NoError(t, err)
		require.Len(t, items, 1, "quantity %d", qty)
		assert.Equal(t, "2", items[0].Product.ID)
	}
}

func TestSetQuantityUpdatesAndIgnoresUnknown(t *testing.T) {
	ctx := context.Background()
	repo, pub := newTestCart(t)
	_, err := repo.Add(ctx, product("1", "5.00"), 2)
	require.NoError(t, err)

	items, err := repo.SetQuantity(ctx, "1", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, items[0].Quantity)

	before := len(pub.topics)
	items, err = repo.SetQuantity(ctx, "missing", 4)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].Quantity)
	assert.Len(t, pub.topics, before)
}

func TestRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestCart(t)
	_, err := repo.Add(ctx, product("1", "5.00"), 1)
	require.NoError(t, err)
	_, err = repo.Add(ctx, product("2", "5.00"), 1)
	require.NoError(t, err)

	items, err := repo.Remove(ctx, "1")
	require.NoError(t, err)
	require.Len(t, items, 1)

	items, err = repo.Remove(ctx, "1")
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, repo.Clear(ctx))
	items, err = repo.Items(ctx)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestClearOrderedKeepsLaterAdditions(t *testing.T) {
	ctx := context.Background()
	repo, pub := newTestCart(t)
	ordered, err := repo.Add(ctx, product("1", "5.00"), 2)
	require.NoError(t, err)

	_, err = repo.Add(ctx, product("1", "5.00"), 1)
	require.NoError(t, err)
	_, err = repo.Add(ctx, product("2", "3.00"), 1)
	require.NoError(t, err)
	pub.topics = nil

	require.NoError(t, repo.ClearOrdered(ctx, ordered))
	items, err := repo.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].Product.ID)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, "2", items[1].Product.ID)
	assert.Len(t, pub.topics, 1)

	require.NoError(t, repo.ClearOrdered(ctx, []models.CartItem{{Product: product("9", "1.00"), Quantity: 1}}))
	assert.Len(t, pub.topics, 1, "unknown lines leave the cart untouched")

	require.NoError(t, repo.ClearOrdered(ctx, items))
	items, err = repo.Items(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestReturnedItemsAreCopies(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestCart(t)
	items, err := repo.Add(ctx, product("1", "5.00"), 1)
	require.NoError(t, err)

	items[0].Quantity = 99
	stored, err := repo.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stored[0].Quantity)
}

func TestSubtotal(t *testing.T) {
	items := []models.CartItem{
		{Product: product("1", "10.00"), Quantity: 2},
		{Product: product("2", "5.50"), Quantity: 1},
	}
	assert.Equal(t, "25.5", Subtotal(items).String())
	assert.True(t, Subtotal(items).Equal(decimal.RequireFromString("25.50")))
	assert.True(t, Subtotal(nil).IsZero())
}

type failingPort struct{ err error }

func (f failingPort) Load(context.Context, storage.Collection) ([]byte, error) { return nil, f.err }
func (f failingPort) Save(context.Context, storage.Collection, []byte) error  { return f.err }

func TestBackendFailureIsReturned(t *testing.T) {
	boom := errors.New("unreachable")
	repo, err := NewRepository(failingPort{err: boom}, nil)
	require.NoError(t, err)

	_, err = repo.Add(context.Background(), product("1", "1.00"), 1)
	require.ErrorIs(t, err, boom)
}
