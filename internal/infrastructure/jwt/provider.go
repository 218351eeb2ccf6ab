package jwtinfra

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/kurtniculi26/RentAll/internal/config"
)

const (
	issuer               = "rentall-api"
	audienceRegistration = "registration"
)

// RegistrationClaims is the payload of a registration ticket: proof that
// Email consumed ledger record OTPID.
type RegistrationClaims struct {
	Email string `json:"email"`
	OTPID string `json:"otp_id"`
	jwt.RegisteredClaims
}

// Provider signs and verifies RS256 registration tickets.
type Provider struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	ttl        time.Duration
	now        func() time.Time
}

// NewProvider loads the PEM key pair from cfg. Outside production a missing
// key pair is replaced by an in-memory key; tickets then do not survive a restart.
func NewProvider(cfg *config.Config, log *zap.Logger) (*Provider, error) {
	privBytes, privErr := os.ReadFile(cfg.JWTPrivateKeyPath)
	pubBytes, pubErr := os.ReadFile(cfg.JWTPublicKeyPath)
	if errors.Is(privErr, os.ErrNotExist) && errors.Is(pubErr, os.ErrNotExist) && !cfg.IsProduction() {
		log.Warn("jwt key pair not found, using an ephemeral key",
			zap.String("private_key_path", cfg.JWTPrivateKeyPath))
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			return nil, fmt.Errorf("generate ephemeral key: %w", err)
		}
		return NewProviderFromKey(key, cfg.RegistrationTicketTTL, nil), nil
	}
	if privErr != nil {
		return nil, fmt.Errorf("read private key: %w", privErr)
	}
	if pubErr != nil {
		return nil, fmt.Errorf("read public key: %w", pubErr)
	}

	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privBytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return &Provider{privateKey: privKey, publicKey: pubKey, ttl: cfg.RegistrationTicketTTL, now: time.Now}, nil
}

func NewProviderFromKey(key *rsa.PrivateKey, ttl time.Duration, clock func() time.Time) *Provider {
	if clock == nil {
		clock = time.Now
	}
	return &Provider{privateKey: key, publicKey: &key.PublicKey, ttl: ttl, now: clock}
}

func (p *Provider) SignRegistration(email, otpID string) (string, error) {
	now := p.now()
	claims := RegistrationClaims{
		Email: email,
		OTPID: otpID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   email,
			Audience:  jwt.ClaimStrings{audienceRegistration},
			ID:        otpID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(p.privateKey)
}

func (p *Provider) VerifyRegistration(tokenStr string) (string, string, error) {
	var claims RegistrationClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (interface{}, error) {
		return p.publicKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audienceRegistration),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return "", "", err
	}
	if !token.Valid || claims.Email == "" || claims.OTPID == "" {
		return "", "", errors.New("invalid registration claims")
	}
	return claims.Email, claims.OTPID, nil
}
