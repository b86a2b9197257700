package orders

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	internalorders "github.com/angelmondragon/storefront/internal/orders"
	"github.com/angelmondragon/storefront/pkg/db/models"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/pagination"
)

// OrderReader looks up a single order.
type OrderReader interface {
	Get(ctx context.Context, id string) (*models.Order, error)
}

// OrderAdmin backs the admin orders page.
type OrderAdmin interface {
	List(ctx context.Context, params pagination.Params) (*internalorders.OrderList, error)
	SetStatus(ctx context.Context, id string, status enums.OrderStatus) (*models.Order, error)
}

// OrderView adds the tracking step (1-4) to an order.
type OrderView struct {
	models.Order
	StatusStep int `json:"status_step"`
}

func newOrderView(o models.Order) OrderView {
	return OrderView{Order: o, StatusStep: o.Status.Position()}
}

type setStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Lookup serves the confirmation and tracking pages. The id must match exactly.
func Lookup(repo OrderReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders repository unavailable"))
			return
		}

		order, err := repo.Get(r.Context(), chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if order == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "order not found"))
			return
		}
		responses.WriteSuccess(w, newOrderView(*order))
	}
}

// AdminList pages through all orders.
func AdminList(repo OrderAdmin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders repository unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))

		list, err := repo.List(r.Context(), pagination.Params{Limit: limit, Cursor: cursor})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminSetStatus overwrites an order's status.
func AdminSetStatus(repo OrderAdmin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders repository unavailable"))
			return
		}

		var payload setStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(strings.TrimSpace(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").
				WithDetails(map[string]string{"status": "must be one of Pending, Processing, Shipped, Delivered"}))
			return
		}

		order, err := repo.SetStatus(r.Context(), chi.URLParam(r, "orderId"), status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if order == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "order not found"))
			return
		}
		responses.WriteSuccess(w, newOrderView(*order))
	}
}
