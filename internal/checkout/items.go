package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/shopfolio/storefront/internal/cart"
)

// ShippingLineTitle is the synthetic line item appended for a non-zero
// shipping fee.
const ShippingLineTitle = "Shipping"

// Item is the request-scoped projection of a cart line item sent to the
// session backend.
type Item struct {
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// ShippingFor returns the fee owed for a subtotal: zero above the
// free-shipping threshold, the flat fee otherwise.
func ShippingFor(subtotal, fee, freeAbove decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(freeAbove) {
		return decimal.Zero
	}
	return fee
}

// ItemsFromCart projects cart line items for a session request, appending a
// shipping line only when the fee is non-zero.
func ItemsFromCart(lines []cart.LineItem, shipping decimal.Decimal) []Item {
	items := make([]Item, 0, len(lines)+1)
	for _, line := range lines {
		items = append(items, Item{
			Title:    line.Title,
			Price:    line.Price.InexactFloat64(),
			Quantity: line.Quantity,
		})
	}
	if shipping.IsPositive() {
		items = append(items, Item{
			Title:    ShippingLineTitle,
			Price:    shipping.InexactFloat64(),
			Quantity: 1,
		})
	}
	return items
}
