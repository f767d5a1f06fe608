package main

import (
	"context"
	"fmt"
	"os"

	auction "car-auction/internal/auctionService"
	"car-auction/internal/config"
	"car-auction/internal/repository"
	"car-auction/internal/repository/postgres"
	"car-auction/internal/server"
	"car-auction/internal/sweeper"
	"car-auction/utils"
)

func main() {
	cfg := config.Load()

	store, cleanup, err := buildStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up storage: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	auctionSvc := auction.NewAuctionService(store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sweeper.New(auctionSvc, cfg.SweepInterval).Run(ctx)

	router := server.SetupRouter(auctionSvc, cfg.AdminToken)

	addr := ":" + cfg.Port
	fmt.Printf("Starting auction server on %s...\n", addr)
	if err := router.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

// buildStore picks the storage backend from configuration. The memory
// store is the default; Postgres runs migrations on startup.
func buildStore(cfg config.Config) (repository.AuctionStore, func(), error) {
	switch cfg.StoreDriver {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("STORE_DRIVER=postgres requires DATABASE_URL")
		}
		if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
		pool, err := postgres.Connect(context.Background(), cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		utils.Info("using postgres store", nil)
		return postgres.NewStore(pool), pool.Close, nil
	case "memory":
		utils.Info("using in-memory store", nil)
		return repository.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
