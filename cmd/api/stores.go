package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kurtniculi26/RentAll/internal/config"
	"github.com/kurtniculi26/RentAll/internal/infrastructure/dynamo"
	"github.com/kurtniculi26/RentAll/internal/infrastructure/memory"
	"github.com/kurtniculi26/RentAll/internal/infrastructure/postgres"
	transporthttp "github.com/kurtniculi26/RentAll/internal/transport/http"
)

// stores is the backend selected by STORE_BACKEND.
type stores struct {
	otps     transporthttp.OTPLedger
	users    transporthttp.UserRepository
	listings transporthttp.ListingRepository
	ping     func(ctx context.Context) error
	close    func()
}

func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*stores, error) {
	switch cfg.StoreBackend {
	case config.BackendDynamo:
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("dynamodb: %w", err)
		}
		// creates tables that do not exist yet
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables, log)
		return &stores{
			otps:     dynamo.NewOTPRepo(client, cfg.DynamoTables.OTPVerifications, cfg.OTPRetention),
			users:    dynamo.NewUserRepo(client, cfg.DynamoTables.Users),
			listings: dynamo.NewListingRepo(client, cfg.DynamoTables.Listings),
			ping: func(ctx context.Context) error {
				return dynamo.Ping(ctx, client, cfg.DynamoTables.OTPVerifications)
			},
			close: func() {},
		}, nil

	case config.BackendPostgres:
		pool, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("postgres migrate: %w", err)
		}
		return &stores{
			otps:     postgres.NewOTPRepo(pool, log),
			users:    postgres.NewUserRepo(pool, log),
			listings: postgres.NewListingRepo(pool, log),
			ping:     pool.Ping,
			close:    pool.Close,
		}, nil

	case config.BackendMemory:
		if cfg.IsProduction() {
			return nil, fmt.Errorf("store backend %q is not allowed in production", cfg.StoreBackend)
		}
		log.Warn("using in-memory stores, data is lost on restart")
		return &stores{
			otps:     memory.NewOTPLedger(),
			users:    memory.NewUserStore(),
			listings: memory.NewListingStore(),
			ping:     func(context.Context) error { return nil },
			close:    func() {},
		}, nil

	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
}
