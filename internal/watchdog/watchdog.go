// Package watchdog observes an externally opened payment session and
// triggers a terminal action when the session closes or a deadline
// passes. The outcome of the payment itself is not observable here;
// the result page resolves it by querying order status.
package watchdog

import (
	"context"
	"log"
	"time"
)

// Session is the externally opened payment surface being observed.
type Session interface {
	Closed(ctx context.Context) (bool, error)
	Close(ctx context.Context) error
}

// Navigator redirects the primary application to a route.
type Navigator interface {
	Navigate(route string)
}

type Watchdog struct {
	nav         Navigator
	resultRoute string
	interval    time.Duration
	deadline    time.Duration
	logger      *log.Logger
}

func New(nav Navigator, resultRoute string, interval, deadline time.Duration, logger *log.Logger) *Watchdog {
	if interval <= 0 {
		interval = time.Second
	}
	if deadline <= 0 {
		deadline = 30 * time.Minute
	}
	return &Watchdog{
		nav:         nav,
		resultRoute: resultRoute,
		interval:    interval,
		deadline:    deadline,
		logger:      logger,
	}
}

// Watch polls the session until one of three events wins: detected
// closure (navigate to the result route), deadline expiry (force-close
// the session, then the same navigation), or ctx cancellation (stop
// with no navigation). Exactly one terminal action runs.
func (w *Watchdog) Watch(ctx context.Context, sess Session) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	expired := time.NewTimer(w.deadline)
	defer expired.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-expired.C:
			w.logger.Printf("payment session still open after %s, forcing close", w.deadline)
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := sess.Close(closeCtx); err != nil {
				w.logger.Printf("force close payment session: %v", err)
			}
			cancel()
			w.nav.Navigate(w.resultRoute)
			return
		case <-ticker.C:
			closed, err := sess.Closed(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				w.logger.Printf("probe payment session: %v", err)
				continue
			}
			if closed {
				w.nav.Navigate(w.resultRoute)
				return
			}
		}
	}
}
