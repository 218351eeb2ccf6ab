package http

import (
	"context"
	"time"

	"github.com/kurtniculi26/RentAll/internal/application/otp"
	"github.com/kurtniculi26/RentAll/internal/application/registration"
	"github.com/kurtniculi26/RentAll/internal/domain"
	"github.com/kurtniculi26/RentAll/internal/transport/http/handler"
)

// OTPLedger is the minimal interface the router requires from an OTP store.
// Consume must be a conditional write: domain.ErrConflict when the record is
// already consumed or expired at now.
type OTPLedger interface {
	Put(ctx context.Context, rec *domain.OTPRecord) error
	Get(ctx context.Context, otpID string) (*domain.OTPRecord, error)
	FindActive(ctx context.Context, email, code string, now time.Time) ([]domain.OTPRecord, error)
	Consume(ctx context.Context, otpID string, now time.Time) error
}

// UserRepository is the minimal interface the router requires from a user store.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
}

// ListingRepository is the minimal interface the router requires from a listing store.
type ListingRepository interface {
	ListBrowsable(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, error)
}

// TicketProvider signs and checks registration tickets.
type TicketProvider interface {
	otp.TicketSigner
	registration.TicketVerifier
}

// Deps holds all infrastructure dependencies for the router.
// Cooldown, SMSSender and Images may be nil.
type Deps struct {
	OTPLedger   OTPLedger
	UserRepo    UserRepository
	ListingRepo ListingRepository
	Cooldown    otp.Cooldown
	Mailer      otp.Mailer
	SMSSender   otp.SMSSender
	Images      registration.ImageStore
	Tickets     TicketProvider
	Checks      map[string]handler.Check
	Clock       func() time.Time
}
