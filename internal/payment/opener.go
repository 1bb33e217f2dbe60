// Package payment adapts the provider-hosted payment surface to the
// watchdog's Session interface. The provider exposes the session
// document at the invoice URL: GET reports {"open": bool} (gone
// statuses also mean closed), DELETE force-closes it.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"storefront-cart/internal/watchdog"
)

type Opener struct {
	http   *http.Client
	logger *log.Logger
}

func NewOpener(logger *log.Logger) *Opener {
	return &Opener{
		http:   &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// Open verifies the payment session is reachable and returns a probe
// bound to it.
func (o *Opener) Open(ctx context.Context, url string) (watchdog.Session, error) {
	s := &httpSession{url: url, http: o.http}
	if _, err := s.Closed(ctx); err != nil {
		return nil, fmt.Errorf("open payment session: %w", err)
	}
	return s, nil
}

type httpSession struct {
	url  string
	http *http.Client
}

type sessionDoc struct {
	Open bool `json:"open"`
}

func (s *httpSession) Closed(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return false, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return true, nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return false, fmt.Errorf("payment session probe: status %d", resp.StatusCode)
	}

	var doc sessionDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return false, fmt.Errorf("decode payment session: %w", err)
	}
	return !doc.Open, nil
}

func (s *httpSession) Close(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.url, nil)
	if err != nil {
		return err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound && resp.StatusCode != http.StatusGone {
		return fmt.Errorf("close payment session: status %d", resp.StatusCode)
	}
	return nil
}
