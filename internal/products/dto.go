package product

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/pkg/db/models"
	"github.com/angelmondragon/storefront/pkg/validation"
)

// ProductInput holds the editable fields of a catalog entry.
type ProductInput struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description" validate:"required"`
	Price       decimal.Decimal `json:"price" validate:"gt=0"`
	ImageURL    string          `json:"imageUrl" validate:"required"`
	Stock       *int            `json:"stock" validate:"required,min=0"`
}

func (in ProductInput) normalize() ProductInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	return in
}

func (in ProductInput) validate() error {
	return validation.Struct(in)
}

func (in ProductInput) apply(p *models.Product) {
	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.ImageURL = in.ImageURL
	p.Stock = *in.Stock
}
