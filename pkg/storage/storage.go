package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
)

// Collection names one of the flat lists the storefront persists.
type Collection string

const (
	CollectionProducts Collection = "products"
	CollectionCart     Collection = "cart"
	CollectionOrders   Collection = "orders"
)

// DefaultNamespace prefixes every collection key.
const DefaultNamespace = "machzaulmart"

// Backend is a raw key-value store. Read returns nil, nil when the key is absent.
type Backend interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
}

// Port is the collection-level surface repositories depend on.
type Port interface {
	Load(ctx context.Context, c Collection) ([]byte, error)
	Save(ctx context.Context, c Collection, raw []byte) error
}

// MalformedReporter is implemented by ports that want to hear about stored
// data that failed to decode.
type MalformedReporter interface {
	ReportMalformed(ctx context.Context, c Collection, err error)
}

// Options configures a Store.
type Options struct {
	Namespace string
	Logger    *logger.Logger
	Metrics   *metrics.StorageMetrics
}

// Store maps collections onto backend keys and instruments every call.
type Store struct {
	backend   Backend
	namespace string
	logg      *logger.Logger
	metrics   *metrics.StorageMetrics
}

// New builds a Store over the provided backend.
func New(backend Backend, opts Options) (*Store, error) {
	if backend == nil {
		return nil, errors.New("storage backend required")
	}
	ns := strings.TrimSpace(opts.Namespace)
	if ns == "" {
		ns = DefaultNamespace
	}
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Store{
		backend:   backend,
		namespace: ns,
		logg:      logg,
		metrics:   opts.Metrics,
	}, nil
}

// Key returns the backend key for a collection, e.g. machzaulmart_products.
func (s *Store) Key(c Collection) string {
	return fmt.Sprintf("%s_%s", s.namespace, c)
}

// Load returns the raw serialized collection, or nil when it was never written.
func (s *Store) Load(ctx context.Context, c Collection) ([]byte, error) {
	start := time.Now()
	raw, err := s.backend.Read(ctx, s.Key(c))
	s.metrics.Observe(string(c), "read", time.Since(start), err)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("storage: read %s", c))
	}
	return raw, nil
}

// Save overwrites the serialized collection.
func (s *Store) Save(ctx context.Context, c Collection, raw []byte) error {
	start := time.Now()
	err := s.backend.Write(ctx, s.Key(c), raw)
	s.metrics.Observe(string(c), "write", time.Since(start), err)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("storage: write %s", c))
	}
	return nil
}

// Ping checks the backend.
func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

func (s *Store) ReportMalformed(ctx context.Context, c Collection, err error) {
	s.metrics.IncMalformed(string(c))
	ctx = s.logg.WithFields(s.logg.WithCollection(ctx, string(c)), map[string]any{
		"key":   s.Key(c),
		"error": err.Error(),
	})
	s.logg.Warn(ctx, "storage.malformed_collection_reset")
}

// ReadList decodes a collection. Absent, empty and malformed data all yield an
// empty, non-nil slice; only backend failures are returned as errors.
func ReadList[T any](ctx context.Context, port Port, c Collection) ([]T, error) {
	raw, err := port.Load(ctx, c)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		if reporter, ok := port.(MalformedReporter); ok {
			reporter.ReportMalformed(ctx, c, err)
		}
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// WriteList serializes items and overwrites the collection.
func WriteList[T any](ctx context.Context, port Port, c Collection, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("storage: encode %s", c))
	}
	return port.Save(ctx, c, raw)
}
