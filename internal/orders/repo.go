package orders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/internal/events"
	"github.com/angelmondragon/storefront/pkg/db/models"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/ids"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/pagination"
	"github.com/angelmondragon/storefront/pkg/storage"
	"github.com/angelmondragon/storefront/pkg/validation"
)

// Repository owns the append-only orders collection.
type Repository struct {
	mu        sync.Mutex
	store     storage.Port
	publisher events.Publisher
	ids       ids.Generator
	now       func() time.Time
	logg      *logger.Logger
}

// Options carries the optional collaborators of a Repository.
type Options struct {
	Publisher events.Publisher
	IDs       ids.Generator
	Clock     func() time.Time
	Logger    *logger.Logger
}

// NewRepository builds an order repository over store.
func NewRepository(store storage.Port, opts Options) (*Repository, error) {
	if store == nil {
		return nil, fmt.Errorf("storage port required")
	}
	r := &Repository{
		store:     store,
		publisher: opts.Publisher,
		ids:       opts.IDs,
		now:       opts.Clock,
		logg:      opts.Logger,
	}
	if r.ids == nil {
		r.ids = ids.UUIDGenerator{}
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.logg == nil {
		r.logg = logger.Nop()
	}
	return r, nil
}

// Create records a new Pending order. total is stored as given and never
// recomputed.
func (r *Repository) Create(ctx context.Context, customer models.CustomerInfo, items []models.CartItem, total decimal.Decimal) (*models.Order, error) {
	if err := validation.Struct(customer); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}
	if total.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order total must not be negative")
	}

	order := models.Order{
		ID:       r.ids.GenerateID(),
		Customer: customer,
		Items:    models.CloneCartItems(items),
		Total:    total,
		Status:   enums.OrderStatusPending,
		Date:     r.now().UTC(),
	}

	r.mu.Lock()
	stored, err := r.load(ctx)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	if err := r.save(ctx, append(stored, order)); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	r.mu.Unlock()

	r.logg.Info(r.logg.WithOrderID(ctx, order.ID), "orders.created")
	r.publish(ctx)
	out := order.Clone()
	return &out, nil
}

// Get returns the order whose id matches exactly, or nil.
func (r *Repository) Get(ctx context.Context, id string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if idx := indexOf(stored, id); idx >= 0 {
		out := stored[idx].Clone()
		return &out, nil
	}
	return nil, nil
}

// List pages through orders in stored order.
func (r *Repository) List(ctx context.Context, params pagination.Params) (*OrderList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	r.mu.Lock()
	stored, err := r.load(ctx)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	start := 0
	if cursor != nil {
		idx := indexOf(stored, cursor.ID)
		if idx < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
		}
		start = idx + 1
	}

	limit := pagination.NormalizeLimit(params.Limit)
	end := start + limit
	if end > len(stored) {
		end = len(stored)
	}
	page := make([]models.Order, 0, end-start)
	for _, o := range stored[start:end] {
		page = append(page, o.Clone())
	}

	list := &OrderList{Orders: page}
	if end < len(stored) && len(page) > 0 {
		last := page[len(page)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.Date, ID: last.ID})
	}
	return list, nil
}

// SetStatus overwrites an order's status. Any valid status may follow any
// other. An unknown id is a no-op and returns nil.
func (r *Repository) SetStatus(ctx context.Context, id string, status enums.OrderStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", status)).
			WithDetails(map[string]string{"status": "must be one of Pending, Processing, Shipped, Delivered"})
	}

	r.mu.Lock()
	stored, err := r.load(ctx)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	idx := indexOf(stored, id)
	if idx < 0 {
		r.mu.Unlock()
		return nil, nil
	}
	stored[idx].Status = status
	if err := r.save(ctx, stored); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	out := stored[idx].Clone()
	r.mu.Unlock()

	logCtx := r.logg.WithField(r.logg.WithOrderID(ctx, id), "status", status)
	r.logg.Info(logCtx, "orders.status_updated")
	r.publish(ctx)
	return &out, nil
}

func (r *Repository) load(ctx context.Context) ([]models.Order, error) {
	return storage.ReadList[models.Order](ctx, r.store, storage.CollectionOrders)
}

func (r *Repository) save(ctx context.Context, orders []models.Order) error {
	return storage.WriteList(ctx, r.store, storage.CollectionOrders, orders)
}

func (r *Repository) publish(ctx context.Context) {
	if r.publisher != nil {
		r.publisher.Publish(ctx, enums.EventTopicOrdersUpdated)
	}
}

func indexOf(orders []models.Order, id string) int {
	for i := range orders {
		if orders[i].ID == id {
			return i
		}
	}
	return -1
}
