package domain

import "time"

// OTPTTL is the fixed lifetime of an issued code.
const OTPTTL = 10 * time.Minute

// OTPRecord is one row of the OTP ledger. Rows are appended on every issue and
// only ever mutated once, when Consumed flips to true.
type OTPRecord struct {
	OTPID      string     `json:"id"`
	Email      string     `json:"email"`
	Code       string     `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	Consumed   bool       `json:"is_used"`
	ConsumedAt *time.Time `json:"used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// IssuedAt is derived from the expiry, never stored separately.
func (r *OTPRecord) IssuedAt() time.Time { return r.ExpiresAt.Add(-OTPTTL) }

// ActiveAt reports whether the record can still be consumed at now.
// A record whose expiry equals now is already expired.
func (r *OTPRecord) ActiveAt(now time.Time) bool {
	return !r.Consumed && r.ExpiresAt.After(now)
}

// Outcome is the result of a verification attempt.
type Outcome string

const (
	Accepted Outcome = "accepted"
	Rejected Outcome = "rejected"
)

// RejectReason deliberately has a single value so callers cannot tell a wrong
// code from an expired one.
type RejectReason string

const ReasonInvalidOrExpired RejectReason = "invalid_or_expired"

// VerificationResult is returned by the verification service. Rejection is a
// normal value, not an error.
type VerificationResult struct {
	Outcome  Outcome
	Reason   RejectReason
	RecordID string // set on Accepted
	Ticket   string // registration ticket, set on Accepted when signing is configured
}

func (r VerificationResult) Accepted() bool { return r.Outcome == Accepted }
