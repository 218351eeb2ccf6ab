package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kurtniculi26/RentAll/internal/domain"
	"github.com/kurtniculi26/RentAll/internal/pkg/id"
	"github.com/kurtniculi26/RentAll/internal/pkg/validate"
)

var codePattern = regexp.MustCompile(`^\d{6}$`)

type SendRequest struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

type VerifyRequest struct {
	Email   string `json:"email"`
	OTPCode string `json:"otpCode"`
}

// Issued is what the caller learns about a freshly written ledger record.
type Issued struct {
	RecordID  string
	Code      string
	ExpiresAt time.Time
}

// CooldownError is returned by Send while the per-email resend window is open.
type CooldownError struct {
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("resend available in %s", e.RetryAfter.Round(time.Second))
}

func (e *CooldownError) Unwrap() error { return domain.ErrTooManyRequests }

type Service interface {
	Issue(ctx context.Context, email string) (Issued, error)
	Send(ctx context.Context, req SendRequest) (Issued, error)
	Verify(ctx context.Context, email, code string) (domain.VerificationResult, error)
}

// ledger is the subset of the OTP store this service needs.
// Consume must return domain.ErrConflict when the record is already consumed
// or expired at now, and must apply that check atomically with the write.
type ledger interface {
	Put(ctx context.Context, rec *domain.OTPRecord) error
	FindActive(ctx context.Context, email, code string, now time.Time) ([]domain.OTPRecord, error)
	Consume(ctx context.Context, otpID string, now time.Time) error
}

// Cooldown reserves a key for ttl. Acquire reports false and the remaining
// wait when the key is already held.
type Cooldown interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, time.Duration, error)
	Release(ctx context.Context, key string) error
}

type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, phone, msg string) error
}

// TicketSigner mints the short-lived proof that an email passed verification.
type TicketSigner interface {
	SignRegistration(email, otpID string) (string, error)
}

// ServiceDeps holds the dependencies for the otp service.
// Cooldown, SMSSender and Tickets are optional.
type ServiceDeps struct {
	Ledger         ledger
	Cooldown       Cooldown
	Mailer         Mailer
	SMSSender      SMSSender
	Tickets        TicketSigner
	ResendCooldown time.Duration
	LogCodes       bool // debug-log issued codes; never set in production
	Logger         *zap.Logger
	Clock          func() time.Time
	Codes          func() (string, error)
}

type service struct {
	ledger         ledger
	cooldown       Cooldown
	mailer         Mailer
	smsSender      SMSSender
	tickets        TicketSigner
	resendCooldown time.Duration
	logCodes       bool
	log            *zap.Logger
	now            func() time.Time
	codes          func() (string, error)
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		ledger:         deps.Ledger,
		cooldown:       deps.Cooldown,
		mailer:         deps.Mailer,
		smsSender:      deps.SMSSender,
		tickets:        deps.Tickets,
		resendCooldown: deps.ResendCooldown,
		logCodes:       deps.LogCodes,
		log:            deps.Logger,
		now:            deps.Clock,
		codes:          deps.Codes,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	s.log = s.log.With(zap.String("service", "otp"))
	if s.now == nil {
		s.now = time.Now
	}
	if s.codes == nil {
		s.codes = GenerateCode
	}
	return s
}

// GenerateCode draws a six-digit code uniformly from [100000, 999999].
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// NormalizeEmail is the identity key used for every ledger read and write.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) Issue(ctx context.Context, email string) (Issued, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return Issued{}, domain.NewValidationError("email", "Email is required")
	}
	if !validate.Email(email) {
		return Issued{}, domain.NewValidationError("email", "must be a valid email address")
	}

	code, err := s.codes()
	if err != nil {
		return Issued{}, fmt.Errorf("generate otp: %w", err)
	}
	now := s.now().UTC()
	rec := &domain.OTPRecord{
		OTPID:     id.NewAt(now),
		Email:     email,
		Code:      code,
		ExpiresAt: now.Add(domain.OTPTTL),
		CreatedAt: now,
	}
	if err := s.ledger.Put(ctx, rec); err != nil {
		return Issued{}, domain.StoreError("put otp", err)
	}

	s.log.Info("otp issued", zap.String("otp_id", rec.OTPID), zap.Time("expires_at", rec.ExpiresAt))
	if s.logCodes {
		s.log.Debug("otp code", zap.String("email", email), zap.String("code", code))
	}
	return Issued{RecordID: rec.OTPID, Code: code, ExpiresAt: rec.ExpiresAt}, nil
}

func (s *service) Send(ctx context.Context, req SendRequest) (Issued, error) {
	email := NormalizeEmail(req.Email)
	if email == "" {
		return Issued{}, domain.NewValidationError("email", "Email is required")
	}

	key := "otp:cooldown:" + email
	held := false
	if s.cooldown != nil && s.resendCooldown > 0 {
		ok, remaining, err := s.cooldown.Acquire(ctx, key, s.resendCooldown)
		switch {
		case err != nil:
			// the cooldown is a convenience throttle; issuance proceeds without it
			s.log.Warn("cooldown check failed", zap.Error(err))
		case !ok:
			return Issued{}, &CooldownError{RetryAfter: remaining}
		default:
			held = true
		}
	}

	issued, err := s.Issue(ctx, email)
	if err != nil {
		s.release(ctx, key, held)
		return Issued{}, err
	}

	body := fmt.Sprintf("Your RentAll verification code is %s. It expires in %d minutes.",
		issued.Code, int(domain.OTPTTL/time.Minute))
	if err := s.mailer.SendEmail(ctx, email, "Your RentAll verification code", body); err != nil {
		s.log.Error("otp email delivery failed", zap.String("otp_id", issued.RecordID), zap.Error(err))
		s.release(ctx, key, held)
		return Issued{}, fmt.Errorf("send otp email: %w: %w", domain.ErrDelivery, err)
	}

	if phone := strings.TrimSpace(req.PhoneNumber); phone != "" && s.smsSender != nil {
		if err := s.smsSender.SendSMS(ctx, phone, body); err != nil {
			s.log.Warn("otp sms delivery failed", zap.String("otp_id", issued.RecordID), zap.Error(err))
		}
	}
	return issued, nil
}

func (s *service) release(ctx context.Context, key string, held bool) {
	if !held {
		return
	}
	if err := s.cooldown.Release(ctx, key); err != nil {
		s.log.Warn("cooldown release failed", zap.Error(err))
	}
}

func (s *service) Verify(ctx context.Context, email, code string) (domain.VerificationResult, error) {
	rejected := domain.VerificationResult{Outcome: domain.Rejected, Reason: domain.ReasonInvalidOrExpired}

	email = NormalizeEmail(email)
	if email == "" || !codePattern.MatchString(code) {
		return rejected, nil
	}

	now := s.now().UTC()
	candidates, err := s.ledger.FindActive(ctx, email, code, now)
	if err != nil {
		return domain.VerificationResult{}, domain.StoreError("find otp", err)
	}

	for _, c := range candidates {
		err := s.ledger.Consume(ctx, c.OTPID, now)
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		if err != nil {
			return domain.VerificationResult{}, domain.StoreError("consume otp", err)
		}

		res := domain.VerificationResult{Outcome: domain.Accepted, RecordID: c.OTPID}
		s.log.Info("otp accepted", zap.String("otp_id", c.OTPID))
		if s.tickets != nil {
			ticket, err := s.tickets.SignRegistration(email, c.OTPID)
			if err != nil {
				return domain.VerificationResult{}, fmt.Errorf("sign registration ticket: %w", err)
			}
			res.Ticket = ticket
		}
		return res, nil
	}
	return rejected, nil
}
