package storage

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/storage/memory"
)

type item struct {
	ID  string `json:"id"`
	Qty int    `json:"qty"`
}

func newTestStore(t *testing.T, backend Backend, buf *bytes.Buffer) *Store {
	t.Helper()
	opts := Options{}
	if buf != nil {
		opts.Logger = logger.New(logger.Options{ServiceName: "test", Output: buf, Format: "json"})
	}
	store, err := New(backend, opts)
	require.NoError(t, err)
	return store
}

func TestKeyUsesNamespace(t *testing.T) {
	store := newTestStore(t, memory.New(), nil)
	assert.Equal(t, "machzaulmart_products", store.Key(CollectionProducts))
	assert.Equal(t, "machzaulmart_cart", store.Key(CollectionCart))
	assert.Equal(t, "machzaulmart_orders", store.Key(CollectionOrders))

	custom, err := New(memory.New(), Options{Namespace: " shop "})
	require.NoError(t, err)
	assert.Equal(t, "shop_orders", custom.Key(CollectionOrders))
}

func TestNewRequiresBackend(t *testing.T) {
	_, err := New(nil, Options{})
	require.Error(t, err)
}

func TestReadListAbsentIsEmpty(t *testing.T) {
	store := newTestStore(t, memory.New(), nil)

	items, err := ReadList[item](context.Background(), store, CollectionCart)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestWriteThenReadRoundTripsInOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, memory.New(), nil)

	want := []item{{ID: "b", Qty: 2}, {ID: "a", Qty: 1}}
	require.NoError(t, WriteList(ctx, store, CollectionCart, want))

	got, err := ReadList[item](ctx, store, CollectionCart)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWriteNilStoresEmptyArray(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	store := newTestStore(t, backend, nil)

	require.NoError(t, WriteList[item](ctx, store, CollectionCart, nil))

	raw, err := backend.Read(ctx, store.Key(CollectionCart))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestReadListMalformedIsSilentlyEmpty(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	buf := &bytes.Buffer{}
	store := newTestStore(t, backend, buf)

	for _, raw := range []string{"{not json", `{"id":"1"}`, `"text"`} {
		buf.Reset()
		require.NoError(t, backend.Write(ctx, store.Key(CollectionOrders), []byte(raw)))

		items, err := ReadList[item](ctx, store, CollectionOrders)
		require.NoError(t, err, raw)
		assert.Empty(t, items, raw)
		assert.Contains(t, buf.String(), "storage.malformed_collection_reset", raw)
	}
}

func TestReadListNullIsEmpty(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	store := newTestStore(t, backend, nil)
	require.NoError(t, backend.Write(ctx, store.Key(CollectionProducts), []byte("null")))

	items, err := ReadList[item](ctx, store, CollectionProducts)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

type failingBackend struct{ err error }

func (f failingBackend) Read(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingBackend) Write(context.Context, string, []byte) error  { return f.err }
func (f failingBackend) Ping(context.Context) error                   { return f.err }

func TestBackendFailuresSurfaceAsDependencyErrors(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("connection refused")
	store := newTestStore(t, failingBackend{err: cause}, nil)

	_, err := ReadList[item](ctx, store, CollectionCart)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.ErrorIs(t, err, cause)

	err = WriteList(ctx, store, CollectionCart, []item{{ID: "1"}})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))

	assert.ErrorIs(t, store.Ping(ctx), cause)
}

type plainPort struct{ raw []byte }

func (p *plainPort) Load(context.Context, Collection) ([]byte, error) { return p.raw, nil }
func (p *plainPort) Save(_ context.Context, _ Collection, raw []byte) error {
	p.raw = raw
	return nil
}

func TestReadListWorksWithPortsThatDoNotReport(t *testing.T) {
	port := &plainPort{raw: []byte("garbage")}
	items, err := ReadList[item](context.Background(), port, CollectionCart)
	require.NoError(t, err)
	assert.Empty(t, items)
}
