package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kurtniculi26/RentAll/internal/domain"
)

// OTPLedger is a process-local OTP ledger. The mutex makes Consume a true
// compare-and-set, which is what the concurrency tests rely on.
type OTPLedger struct {
	mu   sync.Mutex
	rows map[string]*domain.OTPRecord
}

func NewOTPLedger() *OTPLedger {
	return &OTPLedger{rows: make(map[string]*domain.OTPRecord)}
}

func (l *OTPLedger) Put(ctx context.Context, rec *domain.OTPRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.rows[rec.OTPID]; exists {
		return fmt.Errorf("otp %s: %w", rec.OTPID, domain.ErrConflict)
	}
	cp := *rec
	l.rows[rec.OTPID] = &cp
	return nil
}

func (l *OTPLedger) Get(ctx context.Context, otpID string) (*domain.OTPRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.rows[otpID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

// FindActive returns matching records newest first.
func (l *OTPLedger) FindActive(ctx context.Context, email, code string, now time.Time) ([]domain.OTPRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.OTPRecord
	for _, rec := range l.rows {
		if rec.Email == email && rec.Code == code && rec.ActiveAt(now) {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OTPID > out[j].OTPID })
	return out, nil
}

func (l *OTPLedger) Consume(ctx context.Context, otpID string, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.rows[otpID]
	if !ok || !rec.ActiveAt(now) {
		return fmt.Errorf("consume otp %s: %w", otpID, domain.ErrConflict)
	}
	at := now
	rec.Consumed = true
	rec.ConsumedAt = &at
	return nil
}
