package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/pkg/enums"
)

// CustomerInfo is the contact snapshot captured at checkout.
type CustomerInfo struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required"`
	Address string `json:"address" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
}

// Order is an append-only checkout record. Status is the only field changed
// after creation.
type Order struct {
	ID       string            `json:"id"`
	Customer CustomerInfo      `json:"customer"`
	Items    []CartItem        `json:"items"`
	Total    decimal.Decimal   `json:"total"`
	Status   enums.OrderStatus `json:"status"`
	Date     time.Time         `json:"date"`
}

// Clone returns a copy that shares no slices with the receiver.
func (o Order) Clone() Order {
	out := o
	out.Items = CloneCartItems(o.Items)
	return out
}

// CloneCartItems copies a cart line list.
func CloneCartItems(items []CartItem) []CartItem {
	out := make([]CartItem, len(items))
	copy(out, items)
	return out
}
