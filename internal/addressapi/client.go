// Package addressapi reads delivery addresses from the external address
// service and normalizes them into the canonical shape at this boundary,
// so nothing downstream branches on alternative field names.
package addressapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront-cart/internal/domain"
)

type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

func New(baseURL string, logger *log.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

type wireAddress struct {
	ID         string `json:"id"`
	AltID      string `json:"_id"`
	IsDefault  bool   `json:"isDefault"`
	AltDefault bool   `json:"is_default"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Country    string `json:"country"`
	StreetName string `json:"streetName"`
	PostalCode string `json:"postalCode"`
	City       string `json:"city"`
}

type listResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Addresses []wireAddress `json:"addresses"`
	} `json:"data"`
	Message string `json:"message"`
}

// List fetches the customer's delivery addresses.
func (c *Client) List(ctx context.Context, customerID string) ([]domain.Address, error) {
	u := fmt.Sprintf("%s/addresses?customerId=%s", c.baseURL, url.QueryEscape(customerID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch addresses: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Error bodies are not guaranteed to be JSON; take the server
		// message when one decodes, fall back otherwise.
		var parsed listResponse
		_ = json.NewDecoder(resp.Body).Decode(&parsed)
		return nil, fmt.Errorf("fetch addresses: %s", failureMessage(parsed.Message))
	}

	var parsed listResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode addresses: %w", err)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("fetch addresses: %s", failureMessage(parsed.Message))
	}

	out := make([]domain.Address, 0, len(parsed.Data.Addresses))
	for _, w := range parsed.Data.Addresses {
		out = append(out, normalize(w))
	}
	return out, nil
}

func failureMessage(msg string) string {
	if strings.TrimSpace(msg) == "" {
		return "address lookup failed"
	}
	return msg
}

func normalize(w wireAddress) domain.Address {
	id := w.ID
	if id == "" {
		id = w.AltID
	}
	return domain.Address{
		ID:         id,
		IsDefault:  w.IsDefault || w.AltDefault,
		FirstName:  w.FirstName,
		LastName:   w.LastName,
		Country:    w.Country,
		StreetName: w.StreetName,
		PostalCode: w.PostalCode,
		City:       w.City,
	}
}

// Pick selects the requested address when present, otherwise the
// default one.
func Pick(addresses []domain.Address, requestedID string) (domain.Address, error) {
	if requestedID != "" {
		for _, a := range addresses {
			if a.ID == requestedID {
				return a, nil
			}
		}
		return domain.Address{}, domain.ErrNotFound
	}
	for _, a := range addresses {
		if a.IsDefault {
			return a, nil
		}
	}
	return domain.Address{}, domain.ErrNotFound
}
