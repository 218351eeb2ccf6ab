package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kurtniculi26/RentAll/internal/config"
	jwtinfra "github.com/kurtniculi26/RentAll/internal/infrastructure/jwt"
	"github.com/kurtniculi26/RentAll/internal/infrastructure/memory"
	redisinfra "github.com/kurtniculi26/RentAll/internal/infrastructure/redis"
	s3infra "github.com/kurtniculi26/RentAll/internal/infrastructure/s3"
	"github.com/kurtniculi26/RentAll/internal/infrastructure/smtp"
	"github.com/kurtniculi26/RentAll/internal/infrastructure/sns"
	"github.com/kurtniculi26/RentAll/internal/pkg/logger"
	transporthttp "github.com/kurtniculi26/RentAll/internal/transport/http"
	"github.com/kurtniculi26/RentAll/internal/transport/http/handler"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	log := logger.New(logger.Options{
		Env:    cfg.AppEnv,
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	defer func() { _ = log.Sync() }()
	if envErr != nil {
		log.Info("no .env file found, reading from environment")
	}

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	deps := &transporthttp.Deps{
		OTPLedger:   st.otps,
		UserRepo:    st.users,
		ListingRepo: st.listings,
		Checks:      map[string]handler.Check{"store": st.ping},
	}

	if cfg.RedisURL != "" {
		rdb, err := redisinfra.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rdb.Close()
		deps.Cooldown = redisinfra.NewCooldown(rdb)
		deps.Checks["cooldown"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else {
		log.Warn("REDIS_URL not set, resend cooldown is per instance")
		deps.Cooldown = memory.NewCooldown(nil)
	}

	tickets, err := jwtinfra.NewProvider(cfg, log)
	if err != nil {
		return fmt.Errorf("jwt: %w", err)
	}
	deps.Tickets = tickets

	mailer, err := smtp.NewMailer(cfg, log)
	if err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	deps.Mailer = mailer

	if cfg.SMSEnabled {
		client, err := sns.NewClient(ctx, cfg)
		if err != nil {
			return fmt.Errorf("sns: %w", err)
		}
		deps.SMSSender = sns.NewSender(client, cfg.SMSCountryCode)
	}

	if cfg.S3BucketName != "" && cfg.StoreBackend != config.BackendMemory {
		client, err := s3infra.NewClient(ctx, cfg)
		if err != nil {
			return fmt.Errorf("s3: %w", err)
		}
		deps.Images = s3infra.NewStore(client, cfg.S3BucketName, cfg.AWSRegion, cfg.AWSEndpointURL)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(ctx, cfg, deps, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting",
			zap.String("port", cfg.AppPort),
			zap.String("env", cfg.AppEnv),
			zap.String("store", cfg.StoreBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
