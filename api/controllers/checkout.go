package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

// OrderPlacer is implemented by the checkout service.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, customer models.CustomerInfo) (*models.Order, error)
}

type checkoutRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// Checkout places an order from the current cart.
func Checkout(svc OrderPlacer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.PlaceOrder(r.Context(), models.CustomerInfo{
			Name:    payload.Name,
			Email:   payload.Email,
			Address: payload.Address,
			Phone:   payload.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithOrderID(r.Context(), order.ID), "checkout.order_placed")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
