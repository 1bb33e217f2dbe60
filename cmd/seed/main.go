package main

import (
	"context"
	"flag"
	"log"
	"os"

	"storefront-cart/internal/config"
	"storefront-cart/internal/db"
	"storefront-cart/internal/seed"
)

func main() {
	token := flag.String("token", "demo-session-token", "session token to seed")
	customer := flag.String("customer", "demo-customer", "customer id the seeded session belongs to")
	flag.Parse()

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := seed.Apply(ctx, pool, seed.Demo{Token: *token, CustomerID: *customer}); err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Printf("seeded session %s with a demo cart", *token)
}
