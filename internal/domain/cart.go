package domain

// CartItem is one line in the cart, uniquely keyed by product ID.
// Attributes carry whatever the catalog attached to the product (name
// variants, images) and are never interpreted by cart logic.
type CartItem struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name,omitempty"`
	PriceCents int64                  `json:"priceCents"`
	Quantity   int                    `json:"quantity"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// TotalCents sums unit price times quantity over all items.
func TotalCents(items []CartItem) int64 {
	var total int64
	for _, it := range items {
		total += it.PriceCents * int64(it.Quantity)
	}
	return total
}

// TotalQuantity sums quantities over all items. This is the display
// aggregate, distinct from the line-item count len(items).
func TotalQuantity(items []CartItem) int {
	var total int
	for _, it := range items {
		total += it.Quantity
	}
	return total
}

// ClampQuantity enforces the minimum line quantity of one.
func ClampQuantity(q int) int {
	if q < 1 {
		return 1
	}
	return q
}
