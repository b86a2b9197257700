package orders

import "github.com/angelmondragon/storefront/pkg/db/models"

// OrderList is one page of the admin order listing.
type OrderList struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}
