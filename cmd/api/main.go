package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"storefront-cart/internal/addressapi"
	"storefront-cart/internal/cart"
	"storefront-cart/internal/checkout"
	"storefront-cart/internal/config"
	"storefront-cart/internal/db"
	"storefront-cart/internal/httpserver"
	"storefront-cart/internal/orderapi"
	"storefront-cart/internal/payment"
	sessionrepo "storefront-cart/internal/repository/session"
	"storefront-cart/internal/session"
	"storefront-cart/internal/store"
	"storefront-cart/internal/watchdog"
)

// loggingNavigator records the post-payment route. Clients learn the
// outcome through their own polling; the server side only needs the
// terminal action to be observable.
type loggingNavigator struct {
	logger *log.Logger
}

func (n loggingNavigator) Navigate(route string) {
	n.logger.Printf("navigate to %s", route)
}

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	appCtx, stopWatchers := context.WithCancel(ctx)
	defer stopWatchers()

	var (
		dbpool   *pgxpool.Pool
		cartSt   store.Store
		sessions sessionrepo.Repository
	)
	switch cfg.StoreBackend {
	case "postgres":
		pool, err := db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			logger.Fatalf("connect to db: %v", err)
		}
		defer pool.Close()
		dbpool = pool
		cartSt = store.NewPostgres(pool, logger)
		sessions = sessionrepo.NewPostgres(pool)
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatalf("connect to redis: %v", err)
		}
		cartSt = store.NewRedis(client, logger)
		sessions = sessionrepo.NewMemory()
	case "memory":
		cartSt = store.NewMemory(logger)
		sessions = sessionrepo.NewMemory()
	default:
		logger.Fatalf("unknown cart store backend %q", cfg.StoreBackend)
	}

	carts := cart.NewManager(appCtx, cartSt, logger)
	sessionSvc := session.New(sessions)
	orders := orderapi.New(cfg.OrderAPIBaseURL, logger)
	addresses := addressapi.New(cfg.AddressAPIBaseURL, logger)

	dog := watchdog.New(loggingNavigator{logger: logger}, cfg.PaymentResultRoute, cfg.WatchdogInterval, cfg.WatchdogDeadline, logger)
	orch := checkout.New(orders, payment.NewOpener(logger), dog, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Carts:     carts,
		Checkout:  orch,
		Sessions:  sessionSvc,
		Addresses: addresses,
	}, cfg.AllowedOrigins)
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
