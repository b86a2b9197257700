package product

import (
	"context"
	"fmt"
	"sync"

	"github.com/angelmondragon/storefront/internal/events"
	"github.com/angelmondragon/storefront/pkg/db/models"
	"github.com/angelmondragon/storefront/pkg/enums"
	"github.com/angelmondragon/storefront/pkg/ids"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/storage"
)

// Repository owns the products collection.
type Repository struct {
	mu        sync.Mutex
	store     storage.Port
	publisher events.Publisher
	ids       ids.Generator
	logg      *logger.Logger
}

// Options carries the optional collaborators of a Repository.
type Options struct {
	Publisher events.Publisher
	IDs       ids.Generator
	Logger    *logger.Logger
}

// NewRepository builds a catalog repository over store.
func NewRepository(store storage.Port, opts Options) (*Repository, error) {
	if store == nil {
		return nil, fmt.Errorf("storage port required")
	}
	gen := opts.IDs
	if gen == nil {
		gen = ids.UUIDGenerator{}
	}
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Repository{
		store:     store,
		publisher: opts.Publisher,
		ids:       gen,
		logg:      logg,
	}, nil
}

// SeedIfEmpty writes the demonstration catalog when no products are stored.
// It reports whether seeding happened.
func (r *Repository) SeedIfEmpty(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.load(ctx)
	if err != nil {
		return false, err
	}
	if len(current) > 0 {
		return false, nil
	}
	seed := SeedProducts()
	if err := r.save(ctx, seed); err != nil {
		return false, err
	}
	r.logg.Info(r.logg.WithField(ctx, "count", len(seed)), "products.seeded")
	return true, nil
}

// List returns the catalog in stored order.
func (r *Repository) List(ctx context.Context) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

// Get returns the product with the given id, or nil when absent.
func (r *Repository) Get(ctx context.Context, id string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if idx := indexOf(products, id); idx >= 0 {
		p := products[idx]
		return &p, nil
	}
	return nil, nil
}

// Create validates input, assigns a fresh id and appends the product.
func (r *Repository) Create(ctx context.Context, input ProductInput) (*models.Product, error) {
	input = input.normalize()
	if err := input.validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	products, err := r.load(ctx)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	created := models.Product{ID: r.ids.GenerateID()}
	input.apply(&created)
	if err := r.save(ctx, append(products, created)); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	r.mu.Unlock()

	r.publish(ctx)
	return &created, nil
}

// Update replaces the editable fields of an existing product. An unknown id
// leaves the catalog untouched and returns nil.
func (r *Repository) Update(ctx context.Context, id string, input ProductInput) (*models.Product, error) {
	input = input.normalize()
	if err := input.validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	products, err := r.load(ctx)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	idx := indexOf(products, id)
	if idx < 0 {
		r.mu.Unlock()
		return nil, nil
	}
	input.apply(&products[idx])
	updated := products[idx]
	if err := r.save(ctx, products); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	r.mu.Unlock()

	r.publish(ctx)
	return &updated, nil
}

// Delete removes the product. It reports whether anything was removed.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	products, err := r.load(ctx)
	if err != nil {
		r.mu.Unlock()
		return false, err
	}
	idx := indexOf(products, id)
	if idx < 0 {
		r.mu.Unlock()
		return false, nil
	}
	remaining := append(products[:idx:idx], products[idx+1:]...)
	if err := r.save(ctx, remaining); err != nil {
		r.mu.Unlock()
		return false, err
	}
	r.mu.Unlock()

	r.publish(ctx)
	return true, nil
}

func (r *Repository) load(ctx context.Context) ([]models.Product, error) {
	return storage.ReadList[models.Product](ctx, r.store, storage.CollectionProducts)
}

func (r *Repository) save(ctx context.Context, products []models.Product) error {
	return storage.WriteList(ctx, r.store, storage.CollectionProducts, products)
}

func (r *Repository) publish(ctx context.Context) {
	if r.publisher != nil {
		r.publisher.Publish(ctx, enums.EventTopicProductsUpdated)
	}
}

func indexOf(products []models.Product, id string) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}
