package models

import "github.com/shopspring/decimal"

func init() {
	// stored collections carry prices as JSON numbers, e.g. 249.99.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is one catalog entry as stored in the products collection.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl"`
	Stock       int             `json:"stock"`
}
