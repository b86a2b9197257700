package models

import "github.com/shopspring/decimal"

// CartItem pairs a product snapshot, taken when the line was created, with a quantity.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// LineTotal returns price × quantity for the line.
func (c CartItem) LineTotal() decimal.Decimal {
	return c.Product.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}
