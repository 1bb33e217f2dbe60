package domain

// Address is the canonical delivery address shape produced by the
// address client's normalization. Read-only from the cart's perspective.
type Address struct {
	ID         string `json:"id"`
	IsDefault  bool   `json:"isDefault"`
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	Country    string `json:"country,omitempty"`
	StreetName string `json:"streetName,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	City       string `json:"city,omitempty"`
}
