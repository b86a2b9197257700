package cart

import (
	cartdto "github.com/angelmondragon/storefront/api/controllers/cart/dto"
	cartsvc "github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/pkg/db/models"
)

func newCartView(items []models.CartItem) cartdto.CartView {
	lines := make([]cartdto.CartLine, 0, len(items))
	count := 0
	for _, item := range items {
		lines = append(lines, cartdto.CartLine{
			Product:   item.Product,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal(),
		})
		count += item.Quantity
	}
	return cartdto.CartView{
		Items:    lines,
		Subtotal: cartsvc.Subtotal(items),
		Count:    count,
	}
}
