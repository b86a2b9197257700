package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/internal/events"
	"github.com/angelmondragon/storefront/pkg/db/models"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/storage"
)

// Repository owns the single shopping cart collection.
type Repository struct {
	mu        sync.Mutex
	store     storage.Port
	publisher events.Publisher
}

// NewRepository builds a cart repository over store. publisher may be nil.
func NewRepository(store storage.Port, publisher events.Publisher) (*Repository, error) {
	if store == nil {
		return nil, fmt.Errorf("storage port required")
	}
	return &Repository{store: store, publisher: publisher}, nil
}

// Items returns the cart lines in insertion order.
func (r *Repository) Items(ctx context.Context) ([]models.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

// Count returns the total number of units in the cart.
func (r *Repository) Count(ctx context.Context) (int, error) {
	items, err := r.Items(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n, nil
}

// Add puts quantity units of product in the cart. An existing line for the
// same product id accumulates; its product snapshot is kept as first added.
func (r *Repository) Add(ctx context.Context, product models.Product, quantity int) ([]models.CartItem, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
			WithDetails(map[string]string{"quantity": "must be at least 1"})
	}
	if product.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	return r.mutate(ctx, func(items []models.CartItem) ([]models.CartItem, bool) {
		if idx := indexOf(items, product.ID); idx >= 0 {
			items[idx].Quantity += quantity
			return items, true
		}
		return append(items, models.CartItem{Product: product, Quantity: quantity}), true
	})
}

// SetQuantity sets a line's quantity. Zero or negative removes the line; an
// unknown product id leaves the cart unchanged.
func (r *Repository) SetQuantity(ctx context.Context, productID string, quantity int) ([]models.CartItem, error) {
	if quantity <= 0 {
		return r.Remove(ctx, productID)
	}
	return r.mutate(ctx, func(items []models.CartItem) ([]models.CartItem, bool) {
		idx := indexOf(items, productID)
		if idx < 0 {
			return items, false
		}
		items[idx].Quantity = quantity
		return items, true
	})
}

// Remove drops the line for productID if present.
func (r *Repository) Remove(ctx context.Context, productID string) ([]models.CartItem, error) {
	return r.mutate(ctx, func(items []models.CartItem) ([]models.CartItem, bool) {
		idx := indexOf(items, productID)
		if idx < 0 {
			return items, false
		}
		return append(items[:idx:idx], items[idx+1:]...), true
	})
}

// Clear empties the cart.
func (r *Repository) Clear(ctx context.Context) error {
	_, err := r.mutate(ctx, func([]models.CartItem) ([]models.CartItem, bool) {
		return []models.CartItem{}, true
	})
	return err
}

// ClearOrdered takes the ordered lines out of the cart in one locked step.
// Each matching line loses the ordered quantity and is dropped once it
// reaches zero; anything added after ordered was read stays in the cart.
func (r *Repository) ClearOrdered(ctx context.Context, ordered []models.CartItem) error {
	if len(ordered) == 0 {
		return nil
	}
	_, err := r.mutate(ctx, func(items []models.CartItem) ([]models.CartItem, bool) {
		changed := false
		for _, line := range ordered {
			idx := indexOf(items, line.Product.ID)
			if idx < 0 {
				continue
			}
			changed = true
			items[idx].Quantity -= line.Quantity
			if items[idx].Quantity <= 0 {
				items = append(items[:idx:idx], items[idx+1:]...)
			}
		}
		return items, changed
	})
	return err
}

// Subtotal returns Σ price × quantity over items.
func Subtotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// mutate runs fn over the stored cart under the lock. When fn reports a
// change the cart is saved and cart-updated is published after unlocking.
func (r *Repository) mutate(ctx context.Context, fn func([]models.CartItem) ([]models.CartItem, bool)) ([]models.CartItem, error) {
	r.mu.Lock()
	items, err := r.load(ctx)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	next, changed := fn(items)
	if !changed {
		r.mu.Unlock()
		return next, nil
	}
	if err := storage.WriteList(ctx, r.store, storage.CollectionCart, next); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	r.mu.Unlock()

	if r.publisher != nil {
		r.publisher.Publish(ctx, enums.EventTopicCartUpdated)
	}
	return models.CloneCartItems(next), nil
}

func (r *Repository) load(ctx context.Context) ([]models.CartItem, error) {
	return storage.ReadList[models.CartItem](ctx, r.store, storage.CollectionCart)
}

func indexOf(items []models.CartItem, productID string) int {
	for i := range items {
		if items[i].Product.ID == productID {
			return i
		}
	}
	return -1
}
