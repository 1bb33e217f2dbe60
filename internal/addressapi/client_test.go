package addressapi

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"storefront-cart/internal/domain"
)

func testLogger() *log.Logger {
	return log.New(os.Stderr, "[test] ", log.LstdFlags)
}

func TestListNormalizesAlternativeFieldNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("customerId"); got != "cust-1" {
			t.Errorf("unexpected customerId %q", got)
		}
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": {"addresses": [
				{"_id": "a1", "is_default": true, "city": "Riga"},
				{"id": "a2", "isDefault": false, "city": "Tallinn"}
			]}
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL, testLogger())
	got, err := c.List(context.Background(), "cust-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 addresses, got %d", len(got))
	}
	if got[0].ID != "a1" || !got[0].IsDefault || got[0].City != "Riga" {
		t.Fatalf("underscore fields not normalized: %+v", got[0])
	}
	if got[1].ID != "a2" || got[1].IsDefault {
		t.Fatalf("camelCase fields not normalized: %+v", got[1])
	}
}

func TestListFailureSurfacesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"success":false,"message":"upstream down"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, testLogger())
	_, err := c.List(context.Background(), "cust-1")
	if err == nil || err.Error() != "fetch addresses: upstream down" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestListNonJSONErrorBodyUsesGenericMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<html>502 Bad Gateway</html>`))
	}))
	defer srv.Close()

	c := New(srv.URL, testLogger())
	_, err := c.List(context.Background(), "cust-1")
	if err == nil || err.Error() != "fetch addresses: address lookup failed" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPickPrefersRequestedID(t *testing.T) {
	addrs := []domain.Address{
		{ID: "a1", IsDefault: true},
		{ID: "a2"},
	}
	got, err := Pick(addrs, "a2")
	if err != nil {
		t.Fatalf("pick: %v", err)
	}
	if got.ID != "a2" {
		t.Fatalf("expected a2, got %s", got.ID)
	}
}

func TestPickFallsBackToDefault(t *testing.T) {
	addrs := []domain.Address{
		{ID: "a1"},
		{ID: "a2", IsDefault: true},
	}
	got, err := Pick(addrs, "")
	if err != nil {
		t.Fatalf("pick: %v", err)
	}
	if got.ID != "a2" {
		t.Fatalf("expected default a2, got %s", got.ID)
	}
}

func TestPickUnknownRequestedID(t *testing.T) {
	_, err := Pick([]domain.Address{{ID: "a1", IsDefault: true}}, "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPickNoDefault(t *testing.T) {
	_, err := Pick([]domain.Address{{ID: "a1"}}, "")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
