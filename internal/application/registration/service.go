package registration

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/kurtniculi26/RentAll/internal/domain"
	"github.com/kurtniculi26/RentAll/internal/pkg/id"
	"github.com/kurtniculi26/RentAll/internal/pkg/validate"
)

type Service interface {
	Complete(ctx context.Context, req domain.CompleteRegistrationRequest) (*domain.User, error)
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
}

type otpLedger interface {
	Get(ctx context.Context, otpID string) (*domain.OTPRecord, error)
}

// TicketVerifier checks a registration ticket and returns the email and
// ledger record it was minted for.
type TicketVerifier interface {
	VerifyRegistration(token string) (email, otpID string, err error)
}

// ImageStore persists a base64 image under key and returns its URL.
type ImageStore interface {
	UploadImage(ctx context.Context, key, b64 string) (string, error)
}

// LivenessChecker decides whether the face capture belongs to a live person.
type LivenessChecker interface {
	Check(ctx context.Context, email, faceCapture string) error
}

// Geocoder turns coordinates into a display address.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}

// AcceptAll is the default LivenessChecker.
type AcceptAll struct{}

func (AcceptAll) Check(context.Context, string, string) error { return nil }

// CoordinateFormatter is the default Geocoder; it renders "lat, lng".
type CoordinateFormatter struct{}

func (CoordinateFormatter) ReverseGeocode(_ context.Context, lat, lng float64) (string, error) {
	return strconv.FormatFloat(lat, 'f', -1, 64) + ", " + strconv.FormatFloat(lng, 'f', -1, 64), nil
}

// ServiceDeps holds the dependencies for the registration service.
// Images is optional; without it only URL images are accepted.
type ServiceDeps struct {
	UserRepo  userStore
	OTPLedger otpLedger
	Tickets   TicketVerifier
	Images    ImageStore
	Liveness  LivenessChecker
	Geocoder  Geocoder
	HashCost  int
	Logger    *zap.Logger
	Clock     func() time.Time
}

type service struct {
	repo     userStore
	ledger   otpLedger
	tickets  TicketVerifier
	images   ImageStore
	liveness LivenessChecker
	geocoder Geocoder
	hashCost int
	log      *zap.Logger
	now      func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		repo:     deps.UserRepo,
		ledger:   deps.OTPLedger,
		tickets:  deps.Tickets,
		images:   deps.Images,
		liveness: deps.Liveness,
		geocoder: deps.Geocoder,
		hashCost: deps.HashCost,
		log:      deps.Logger,
		now:      deps.Clock,
	}
	if s.liveness == nil {
		s.liveness = AcceptAll{}
	}
	if s.geocoder == nil {
		s.geocoder = CoordinateFormatter{}
	}
	if s.hashCost == 0 {
		s.hashCost = bcrypt.DefaultCost
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	s.log = s.log.With(zap.String("service", "registration"))
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Complete(ctx context.Context, req domain.CompleteRegistrationRequest) (*domain.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateProfile(req); err != nil {
		return nil, err
	}
	birthday, _ := time.Parse("2006-01-02", req.Birthday)

	otpID, err := s.checkVerification(ctx, req.Email, req.VerificationToken)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, domain.StoreError("get user by email", err)
	}

	if err := s.liveness.Check(ctx, req.Email, req.FaceCaptureBase64); err != nil {
		s.log.Info("liveness check failed", zap.String("otp_id", otpID), zap.Error(err))
		return nil, fmt.Errorf("liveness check failed: %w", domain.ErrForbidden)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, domain.NewValidationError("password", "must be 8 to 72 characters with letters and numbers")
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	validID, err := s.image(ctx, "idImage", "ids/"+userID, req.IDImageURL, req.IDImageBase64)
	if err != nil {
		return nil, err
	}
	profilePic, err := s.image(ctx, "profilePic", "profiles/"+userID, req.ProfilePicURL, req.ProfilePicBase64)
	if err != nil {
		return nil, err
	}

	address := strings.TrimSpace(req.Address)
	if address == "" {
		address, err = s.geocoder.ReverseGeocode(ctx, *req.Latitude, *req.Longitude)
		if err != nil {
			return nil, fmt.Errorf("reverse geocode: %w", err)
		}
	}

	now := s.now().UTC()
	u := &domain.User{
		UserID:       userID,
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        req.PhoneNumber,
		Birthday:     birthday,
		Gender:       req.Gender,
		Address:      address,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		IDType:       req.IDType,
		IDNumber:     req.IDNumber,
		ValidIDURL:   validID,
		ProfilePic:   profilePic,
		IsVerified:   true,
		Verified:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
		}
		return nil, domain.StoreError("create user", err)
	}
	s.log.Info("registration completed", zap.String("user_id", u.UserID), zap.String("otp_id", otpID))
	return u, nil
}

// checkVerification resolves the ticket to a consumed ledger record for email.
func (s *service) checkVerification(ctx context.Context, email, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("verification token required: %w", domain.ErrUnauthorized)
	}
	ticketEmail, otpID, err := s.tickets.VerifyRegistration(token)
	if err != nil {
		return "", fmt.Errorf("invalid verification token: %w", domain.ErrUnauthorized)
	}
	if ticketEmail != email {
		return "", fmt.Errorf("verification token issued for another email: %w", domain.ErrUnauthorized)
	}
	rec, err := s.ledger.Get(ctx, otpID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "", fmt.Errorf("verification record not found: %w", domain.ErrUnauthorized)
	case err != nil:
		return "", domain.StoreError("get otp", err)
	}
	if !rec.Consumed || rec.Email != email {
		return "", fmt.Errorf("email not verified: %w", domain.ErrUnauthorized)
	}
	return otpID, nil
}

func (s *service) image(ctx context.Context, field, key, url, b64 string) (*string, error) {
	if url = strings.TrimSpace(url); url != "" {
		return &url, nil
	}
	if b64 == "" {
		return nil, nil
	}
	if s.images == nil {
		return nil, domain.NewValidationError(field, "image uploads are not available; send an image URL")
	}
	stored, err := s.images.UploadImage(ctx, key, b64)
	if errors.Is(err, domain.ErrValidation) {
		return nil, domain.NewValidationError(field, "must be a base64 encoded image")
	}
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}
	return &stored, nil
}

func validateProfile(req domain.CompleteRegistrationRequest) error {
	err := validate.Struct(req)
	var ve *domain.ValidationError
	if err != nil && !errors.As(err, &ve) {
		return err
	}
	if ve == nil {
		ve = &domain.ValidationError{Fields: map[string]string{}}
	}
	if strings.TrimSpace(req.Address) == "" && (req.Latitude == nil || req.Longitude == nil) {
		ve.Fields["location"] = "is required"
	}
	if strings.TrimSpace(req.IDImageURL) == "" && req.IDImageBase64 == "" {
		ve.Fields["idImage"] = "is required"
	}
	if len(ve.Fields) > 0 {
		return ve
	}
	return nil
}
