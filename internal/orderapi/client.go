// Package orderapi is the HTTP client for the external order-placement
// service. The service either accepts the order outright or returns an
// invoice URL pointing at an external payment surface.
package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"storefront-cart/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

func New(baseURL string, logger *log.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// Placement is a successful order placement. InvoiceURL is empty when
// no external payment step is required.
type Placement struct {
	InvoiceURL string
}

// PlacementError carries the human-readable message the order service
// rejected the placement with.
type PlacementError struct {
	Message string
}

func (e *PlacementError) Error() string {
	return e.Message
}

// amount serializes integer cents as a fractional JSON number.
type amount struct {
	decimal.Decimal
}

func (a amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

func fromCents(cents int64) amount {
	return amount{decimal.New(cents, -2)}
}

type orderLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Price     amount `json:"price"`
}

type orderRequest struct {
	CustomerID        string      `json:"customerId"`
	Products          []orderLine `json:"products"`
	CustomerAddressID string      `json:"customerAddressId"`
	TotalAmount       amount      `json:"totalAmount"`
}

type orderResponse struct {
	Success     *bool  `json:"success"`
	Status      string `json:"status"`
	Message     string `json:"message"`
	PaymentInfo *struct {
		InvoiceURL string `json:"invoiceUrl"`
	} `json:"paymentInfo"`
}

func (r orderResponse) ok() bool {
	if r.Success != nil {
		return *r.Success
	}
	return strings.EqualFold(r.Status, "success")
}

func (r orderResponse) failureMessage() string {
	if strings.TrimSpace(r.Message) != "" {
		return r.Message
	}
	return "order placement failed"
}

// Place submits a single order-placement request. It is never retried
// here; a rejection surfaces as *PlacementError with the server message.
func (c *Client) Place(ctx context.Context, payload domain.OrderPayload) (*Placement, error) {
	lines := make([]orderLine, 0, len(payload.Items))
	for _, it := range payload.Items {
		lines = append(lines, orderLine{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     fromCents(it.PriceCents),
		})
	}
	body, err := json.Marshal(orderRequest{
		CustomerID:        payload.CustomerID,
		Products:          lines,
		CustomerAddressID: payload.AddressID,
		TotalAmount:       fromCents(payload.TotalCents),
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read order response: %w", err)
	}

	var parsed orderResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		c.logger.Printf("malformed order response (status %d): %v", resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !parsed.ok() {
		return nil, &PlacementError{Message: parsed.failureMessage()}
	}

	out := &Placement{}
	if parsed.PaymentInfo != nil {
		out.InvoiceURL = parsed.PaymentInfo.InvoiceURL
	}
	return out, nil
}
