package cartdto

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/pkg/db/models"
)

// AddItemRequest adds a catalog product to the cart. Quantity defaults to 1.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  *int   `json:"quantity,omitempty"`
}

// SetQuantityRequest sets a line's quantity; zero or less removes the line.
type SetQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// CartView is the cart page payload.
type CartView struct {
	Items    []CartLine      `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Count    int             `json:"count"`
}

// CartLine is one cart row with its computed line total.
type CartLine struct {
	Product   models.Product  `json:"product"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}
