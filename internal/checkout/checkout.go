// Package checkout drives a single order-submission attempt from the
// current cart: validate, submit, then either confirm locally or hand
// the external payment surface to the watchdog.
package checkout

import (
	"context"
	"errors"
	"log"
	"sync"

	"storefront-cart/internal/cart"
	"storefront-cart/internal/domain"
	"storefront-cart/internal/orderapi"
	"storefront-cart/internal/watchdog"
)

type State string

const (
	StateIdle        State = "Idle"
	StateValidating  State = "Validating"
	StateSubmitting  State = "Submitting"
	StateRedirecting State = "Redirecting"
	StateSucceeded   State = "Succeeded"
	StateFailed      State = "Failed"
)

type orderPlacer interface {
	Place(ctx context.Context, payload domain.OrderPayload) (*orderapi.Placement, error)
}

// PaymentOpener opens the external payment surface for an invoice URL.
type PaymentOpener interface {
	Open(ctx context.Context, url string) (watchdog.Session, error)
}

type Orchestrator struct {
	orders orderPlacer
	opener PaymentOpener
	dog    *watchdog.Watchdog
	logger *log.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
	watchSeq uint64
	watches  map[string]watchHandle
}

type watchHandle struct {
	id     uint64
	cancel context.CancelFunc
}

func New(orders orderPlacer, opener PaymentOpener, dog *watchdog.Watchdog, logger *log.Logger) *Orchestrator {
	return &Orchestrator{
		orders:   orders,
		opener:   opener,
		dog:      dog,
		logger:   logger,
		inflight: make(map[string]struct{}),
		watches:  make(map[string]watchHandle),
	}
}

type Request struct {
	CustomerID string
	AddressID  string
}

// Result is the terminal outcome of one checkout attempt. Failed
// results carry the user-facing message; Redirecting results carry the
// invoice URL being watched.
type Result struct {
	State      State
	Message    string
	InvoiceURL string
}

// Submit runs one checkout attempt against the cart. A second call for
// the same cart while an attempt is in flight returns
// domain.ErrCheckoutInFlight. Validation failures never reach the
// network; a rejected placement leaves the cart untouched so the user
// can retry.
func (o *Orchestrator) Submit(ctx context.Context, crt *cart.SyncedCart, req Request) (Result, error) {
	slot := crt.Slot()
	o.mu.Lock()
	if _, busy := o.inflight[slot]; busy {
		o.mu.Unlock()
		return Result{}, domain.ErrCheckoutInFlight
	}
	o.inflight[slot] = struct{}{}
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		delete(o.inflight, slot)
		o.mu.Unlock()
	}()

	o.logger.Printf("checkout %s: %s", slot, StateValidating)
	if req.CustomerID == "" {
		return Result{State: StateFailed, Message: "customer session required"}, nil
	}
	items := crt.Items()
	if len(items) == 0 {
		return Result{State: StateFailed, Message: "cart is empty"}, nil
	}
	if req.AddressID == "" {
		return Result{State: StateFailed, Message: "delivery address required"}, nil
	}

	o.logger.Printf("checkout %s: %s", slot, StateSubmitting)
	payload := domain.BuildOrderPayload(req.CustomerID, req.AddressID, items)
	placement, err := o.orders.Place(ctx, payload)
	if err != nil {
		var perr *orderapi.PlacementError
		msg := "order placement failed"
		if errors.As(err, &perr) {
			msg = perr.Message
		} else {
			o.logger.Printf("checkout %s: place order: %v", slot, err)
		}
		return Result{State: StateFailed, Message: msg}, nil
	}

	// The order was accepted; the cart is cleared unconditionally.
	crt.Clear(ctx)

	if placement.InvoiceURL == "" {
		o.logger.Printf("checkout %s: %s", slot, StateSucceeded)
		return Result{State: StateSucceeded}, nil
	}

	sess, err := o.opener.Open(ctx, placement.InvoiceURL)
	if err != nil {
		// The order exists either way; surface the invoice URL so the
		// user can still reach the payment page.
		o.logger.Printf("checkout %s: open payment session: %v", slot, err)
		return Result{State: StateSucceeded, InvoiceURL: placement.InvoiceURL}, nil
	}

	// The watch outlives the request; it is bound to the orchestrator
	// and stoppable through CancelWatch.
	watchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	o.mu.Lock()
	if prev, ok := o.watches[slot]; ok {
		prev.cancel()
	}
	o.watchSeq++
	id := o.watchSeq
	o.watches[slot] = watchHandle{id: id, cancel: cancel}
	o.mu.Unlock()
	go func() {
		defer func() {
			cancel()
			o.mu.Lock()
			if h, ok := o.watches[slot]; ok && h.id == id {
				delete(o.watches, slot)
			}
			o.mu.Unlock()
		}()
		o.dog.Watch(watchCtx, sess)
	}()

	o.logger.Printf("checkout %s: %s", slot, StateRedirecting)
	return Result{State: StateRedirecting, InvoiceURL: placement.InvoiceURL}, nil
}

// CancelWatch stops the payment-session watch for the cart, if any.
// Used when the user abandons the flow; no navigation happens.
func (o *Orchestrator) CancelWatch(slot string) {
	o.mu.Lock()
	h, ok := o.watches[slot]
	if ok {
		delete(o.watches, slot)
	}
	o.mu.Unlock()
	if ok {
		h.cancel()
	}
}
