package http

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurtniculi26/RentAll/internal/config"
	"github.com/kurtniculi26/RentAll/internal/domain"
	jwtinfra "github.com/kurtniculi26/RentAll/internal/infrastructure/jwt"
	"github.com/kurtniculi26/RentAll/internal/infrastructure/memory"
)

var codeInBody = regexp.MustCompile(`\b\d{6}\b`)

type captureMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func (m *captureMailer) SendEmail(_ context.Context, to, _, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[to] = codeInBody.FindString(body)
	return nil
}

func (m *captureMailer) last(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[to]
}

type testServer struct {
	h      http.Handler
	mailer *captureMailer
	ledger *memory.OTPLedger
	users  *memory.UserStore
	now    time.Time
}

func newTestServer(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	ts := &testServer{
		mailer: &captureMailer{codes: map[string]string{}},
		ledger: memory.NewOTPLedger(),
		users:  memory.NewUserStore(),
		now:    time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return ts.now }
	listings := memory.NewListingStore(
		domain.Listing{ListingID: "L1", Title: "Cordless Drill", CategoryID: 1, Available: true, IsVerified: true, CreatedAt: ts.now},
		domain.Listing{ListingID: "L2", Title: "Family Sedan", CategoryID: 2, Available: true, IsVerified: true, CreatedAt: ts.now},
		domain.Listing{ListingID: "L3", Title: "Unverified Van", CategoryID: 2, Available: true, CreatedAt: ts.now},
	)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	ts.h = NewRouter(ctx, cfg, &Deps{
		OTPLedger:   ts.ledger,
		UserRepo:    ts.users,
		ListingRepo: listings,
		Cooldown:    memory.NewCooldown(clock),
		Mailer:      ts.mailer,
		Tickets:     jwtinfra.NewProviderFromKey(key, 30*time.Minute, clock),
		Clock:       clock,
	}, nil)
	return ts
}

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:            "development",
		AllowedOrigins:    []string{"*"},
		RateLimitRPS:      1000,
		RateLimitBurst:    1000,
		OTPResendCooldown: time.Minute,
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	return ts.doWith(t, method, path, body, nil)
}

func (ts *testServer) doWith(t *testing.T, method, path string, body interface{}, header http.Header) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	ts.h.ServeHTTP(rec, req)

	var out map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func profile(email, token string) map[string]interface{} {
	return map[string]interface{}{
		"verificationToken": token,
		"email":             email,
		"password":          "secret123",
		"firstName":         "Juan",
		"lastName":          "Dela Cruz",
		"phoneNumber":       "9171234567",
		"birthday":          "1995-04-12",
		"latitude":          14.5995,
		"longitude":         120.9842,
		"idType":            "passport",
		"idNumber":          "P1234567",
		"idImageUrl":        "https://cdn.example.com/ids/p.jpg",
	}
}

func TestSignUpFlow(t *testing.T) {
	ts := newTestServer(t, testConfig())
	const email = "renter@example.com"

	rec, body := ts.do(t, http.MethodPost, "/otp/send", map[string]string{"email": "Renter@Example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.NotContains(t, body, "otp")
	code := ts.mailer.last(email)
	require.Regexp(t, `^\d{6}$`, code)

	rec, body = ts.do(t, http.MethodPost, "/otp/verify", map[string]string{"email": email, "otpCode": code})
	require.Equal(t, http.StatusOK, rec.Code, body)
	token, _ := body["verificationToken"].(string)
	require.NotEmpty(t, token)

	rec, body = ts.do(t, http.MethodPost, "/otp/verify", map[string]string{"email": email, "otpCode": code})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid or expired OTP code", body["error"])

	rec, body = ts.do(t, http.MethodPost, "/v1/registration/complete", profile(email, token))
	require.Equal(t, http.StatusOK, rec.Code, body)
	assert.Equal(t, "Registration completed successfully", body["message"])

	u, err := ts.users.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	assert.True(t, u.IsVerified)
	assert.Equal(t, "14.5995, 120.9842", u.Address)
	assert.NotEqual(t, "secret123", u.PasswordHash)

	rec, _ = ts.do(t, http.MethodPost, "/registration/complete", profile(email, token))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSignUpFlow_ExpiredCode(t *testing.T) {
	ts := newTestServer(t, testConfig())
	const email = "late@example.com"

	rec, _ := ts.do(t, http.MethodPost, "/otp/send", map[string]string{"email": email})
	require.Equal(t, http.StatusOK, rec.Code)

	ts.now = ts.now.Add(domain.OTPTTL)
	rec, _ = ts.do(t, http.MethodPost, "/otp/verify", map[string]string{"email": email, "otpCode": ts.mailer.last(email)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendOTP_CooldownThenReissue(t *testing.T) {
	ts := newTestServer(t, testConfig())
	const email = "again@example.com"

	rec, _ := ts.do(t, http.MethodPost, "/otp/send", map[string]string{"email": email})
	require.Equal(t, http.StatusOK, rec.Code)
	first := ts.mailer.last(email)

	rec, _ = ts.do(t, http.MethodPost, "/otp/send", map[string]string{"email": email})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	ts.now = ts.now.Add(time.Minute)
	rec, _ = ts.do(t, http.MethodPost, "/otp/send", map[string]string{"email": email})
	require.Equal(t, http.StatusOK, rec.Code)

	// the earlier code stays valid after a reissue
	rec, _ = ts.do(t, http.MethodPost, "/otp/verify", map[string]string{"email": email, "otpCode": first})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSendOTP_EchoOutsideProduction(t *testing.T) {
	cfg := testConfig()
	cfg.OTPEchoCode = true
	ts := newTestServer(t, cfg)

	rec, body := ts.do(t, http.MethodPost, "/otp/send", map[string]string{"email": "demo@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ts.mailer.last("demo@example.com"), body["otp"])
}

func TestCompleteRegistration_WithoutVerification(t *testing.T) {
	ts := newTestServer(t, testConfig())
	rec, _ := ts.do(t, http.MethodPost, "/registration/complete", profile("nobody@example.com", ""))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListings(t *testing.T) {
	ts := newTestServer(t, testConfig())

	rec, body := ts.do(t, http.MethodGet, "/listings?category=car", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data, _ := body["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, "L2", data[0].(map[string]interface{})["id"])

	rec, body = ts.do(t, http.MethodGet, "/v1/listings?q=drill", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["data"], 1)

	rec, _ = ts.do(t, http.MethodGet, "/listings?category=boats", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = ts.do(t, http.MethodGet, "/listings/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["data"], len(domain.Categories))
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t, testConfig())
	rec, body := ts.do(t, http.MethodGet, "/v1/health-check/ping", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", body["message"])
}

func TestSensitiveRoutesAreRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 1
	ts := newTestServer(t, cfg)

	rec, _ := ts.do(t, http.MethodPost, "/otp/verify", map[string]string{"email": "a@x.io", "otpCode": "123456"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = ts.do(t, http.MethodPost, "/otp/verify", map[string]string{"email": "a@x.io", "otpCode": "123456"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec, _ = ts.do(t, http.MethodGet, "/listings", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit_SpoofedForwardedFor(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 1
	ts := newTestServer(t, cfg)

	limited := 0
	for i := 0; i < 50; i++ {
		h := http.Header{"X-Forwarded-For": {fmt.Sprintf("10.0.0.%d", i)}}
		rec, _ := ts.doWith(t, http.MethodPost, "/otp/verify", map[string]string{"email": "a@x.io", "otpCode": "123456"}, h)
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.Equal(t, 49, limited)
}

func TestRateLimit_TrustedProxyKeysOnClient(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 1
	cfg.TrustedProxy = true
	ts := newTestServer(t, cfg)

	body := map[string]string{"email": "a@x.io", "otpCode": "123456"}
	rec, _ := ts.doWith(t, http.MethodPost, "/otp/verify", body, http.Header{"X-Real-Ip": {"203.0.113.1"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = ts.doWith(t, http.MethodPost, "/otp/verify", body, http.Header{"X-Real-Ip": {"203.0.113.1"}})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	rec, _ = ts.doWith(t, http.MethodPost, "/otp/verify", body, http.Header{"X-Real-Ip": {"203.0.113.2"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
