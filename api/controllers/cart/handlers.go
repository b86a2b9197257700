package cart

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	cartdto "github.com/angelmondragon/storefront/api/controllers/cart/dto"
	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

// CartStore is the subset of the cart repository the handlers use.
type CartStore interface {
	Items(ctx context.Context) ([]models.CartItem, error)
	Add(ctx context.Context, product models.Product, quantity int) ([]models.CartItem, error)
	SetQuantity(ctx context.Context, productID string, quantity int) ([]models.CartItem, error)
	Remove(ctx context.Context, productID string) ([]models.CartItem, error)
	Clear(ctx context.Context) error
}

// ProductLookup resolves the catalog snapshot for an added product.
type ProductLookup interface {
	Get(ctx context.Context, id string) (*models.Product, error)
}

// CartFetch returns the cart lines, subtotal and unit count.
func CartFetch(store CartStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart repository unavailable"))
			return
		}

		items, err := store.Items(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(items))
	}
}

// CartAddItem snapshots a catalog product into the cart.
func CartAddItem(store CartStore, catalog ProductLookup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil || catalog == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart repository unavailable"))
			return
		}

		var payload cartdto.AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quantity := 1
		if payload.Quantity != nil {
			quantity = *payload.Quantity
		}

		product, err := catalog.Get(r.Context(), strings.TrimSpace(payload.ProductID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if product == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
			return
		}

		items, err := store.Add(r.Context(), *product, quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(items))
	}
}

// CartSetQuantity updates or removes a cart line.
func CartSetQuantity(store CartStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart repository unavailable"))
			return
		}

		var payload cartdto.SetQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := store.SetQuantity(r.Context(), chi.URLParam(r, "productId"), *payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(items))
	}
}

// CartRemoveItem drops a cart line.
func CartRemoveItem(store CartStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart repository unavailable"))
			return
		}

		items, err := store.Remove(r.Context(), chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(items))
	}
}

// CartClear empties the cart.
func CartClear(store CartStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart repository unavailable"))
			return
		}

		if err := store.Clear(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(nil))
	}
}
