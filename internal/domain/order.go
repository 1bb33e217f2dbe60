package domain

// OrderItem is the per-line slice of an order payload.
type OrderItem struct {
	ProductID  string
	Quantity   int
	PriceCents int64
}

// OrderPayload is built fresh from the current cart on every checkout
// attempt and never persisted.
type OrderPayload struct {
	CustomerID string
	AddressID  string
	Items      []OrderItem
	TotalCents int64
}

// BuildOrderPayload derives an order payload from a cart snapshot.
func BuildOrderPayload(customerID, addressID string, items []CartItem) OrderPayload {
	out := OrderPayload{
		CustomerID: customerID,
		AddressID:  addressID,
		Items:      make([]OrderItem, 0, len(items)),
		TotalCents: TotalCents(items),
	}
	for _, it := range items {
		out.Items = append(out.Items, OrderItem{
			ProductID:  it.ID,
			Quantity:   it.Quantity,
			PriceCents: it.PriceCents,
		})
	}
	return out
}
