package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kurtniculi26/RentAll/internal/application/listing"
	"github.com/kurtniculi26/RentAll/internal/application/otp"
	"github.com/kurtniculi26/RentAll/internal/application/registration"
	"github.com/kurtniculi26/RentAll/internal/config"
	"github.com/kurtniculi26/RentAll/internal/transport/http/handler"
	appmiddleware "github.com/kurtniculi26/RentAll/internal/transport/http/middleware"
)

// NewRouter builds and returns the application router. ctx bounds the
// rate limiter's background sweep.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	if cfg.TrustedProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.Logger(log))
	r.Use(appmiddleware.Recover(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Retry-After", "X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	sensitiveRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)

	otpSvc := otp.NewService(otp.ServiceDeps{
		Ledger:         deps.OTPLedger,
		Cooldown:       deps.Cooldown,
		Mailer:         deps.Mailer,
		SMSSender:      deps.SMSSender,
		Tickets:        deps.Tickets,
		ResendCooldown: cfg.OTPResendCooldown,
		LogCodes:       !cfg.IsProduction(),
		Logger:         log,
		Clock:          deps.Clock,
	})
	regSvc := registration.NewService(registration.ServiceDeps{
		UserRepo:  deps.UserRepo,
		OTPLedger: deps.OTPLedger,
		Tickets:   deps.Tickets,
		Images:    deps.Images,
		Logger:    log,
		Clock:     deps.Clock,
	})
	listingSvc := listing.NewService(deps.ListingRepo)

	healthH := handler.NewHealthHandler(deps.Checks, log)
	otpH := handler.NewOTPHandler(otpSvc, cfg.EchoOTP(), log)
	regH := handler.NewRegistrationHandler(regSvc, log)
	listingH := handler.NewListingHandler(listingSvc, log)

	routes := func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		r.With(sensitiveRL.Limit).Post("/otp/send", otpH.Send)
		r.With(sensitiveRL.Limit).Post("/otp/verify", otpH.Verify)
		r.With(sensitiveRL.Limit).Post("/registration/complete", regH.Complete)

		r.Get("/listings", listingH.List)
		r.Get("/listings/categories", listingH.Categories)
	}
	r.Group(routes)
	r.Route("/v1", routes)

	return r
}
