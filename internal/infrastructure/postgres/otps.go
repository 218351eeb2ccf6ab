package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/kurtniculi26/RentAll/internal/domain"
)

type OTPRepo struct {
	db  Querier
	log *zap.Logger
}

func NewOTPRepo(db Querier, log *zap.Logger) *OTPRepo {
	return &OTPRepo{db: db, log: log.With(zap.String("repository", "otp"))}
}

const otpColumns = `id, email, otp_code, expires_at, is_used, used_at, created_at`

func (r *OTPRepo) Put(ctx context.Context, rec *domain.OTPRecord) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO otp_verifications (id, email, otp_code, expires_at, is_used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.OTPID, rec.Email, rec.Code, rec.ExpiresAt, rec.Consumed, rec.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("otp %s: %w", rec.OTPID, domain.ErrConflict)
	}
	if err != nil {
		r.log.Error("insert otp failed", zap.Error(err), zap.String("otp_id", rec.OTPID))
		return fmt.Errorf("insert otp %s: %w", rec.OTPID, err)
	}
	return nil
}

func (r *OTPRepo) Get(ctx context.Context, otpID string) (*domain.OTPRecord, error) {
	row := r.db.QueryRow(ctx, `SELECT `+otpColumns+` FROM otp_verifications WHERE id = $1`, otpID)
	rec, err := scanOTP(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("otp %s: %w", otpID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get otp %s: %w", otpID, err)
	}
	return &rec, nil
}

// FindActive compares expires_at against the caller's clock, not NOW(), so
// the service's notion of time is the only one.
func (r *OTPRepo) FindActive(ctx context.Context, email, code string, now time.Time) ([]domain.OTPRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+otpColumns+`
		FROM otp_verifications
		WHERE email = $1
		  AND otp_code = $2
		  AND is_used = FALSE
		  AND expires_at > $3
		ORDER BY created_at DESC`,
		email, code, now,
	)
	if err != nil {
		r.log.Error("find active otp failed", zap.Error(err))
		return nil, fmt.Errorf("find active otp: %w", err)
	}
	defer rows.Close()

	var out []domain.OTPRecord
	for rows.Next() {
		rec, err := scanOTP(rows)
		if err != nil {
			return nil, fmt.Errorf("scan otp: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Consume is a compare-and-set: zero rows affected means the record was
// already used, expired or missing.
func (r *OTPRepo) Consume(ctx context.Context, otpID string, now time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE otp_verifications
		SET is_used = TRUE, used_at = $3
		WHERE id = $1 AND is_used = FALSE AND expires_at > $2`,
		otpID, now, now,
	)
	if err != nil {
		r.log.Error("consume otp failed", zap.Error(err), zap.String("otp_id", otpID))
		return fmt.Errorf("consume otp %s: %w", otpID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("consume otp %s: %w", otpID, domain.ErrConflict)
	}
	return nil
}

func scanOTP(row pgx.Row) (domain.OTPRecord, error) {
	var rec domain.OTPRecord
	err := row.Scan(&rec.OTPID, &rec.Email, &rec.Code, &rec.ExpiresAt, &rec.Consumed, &rec.ConsumedAt, &rec.CreatedAt)
	return rec, err
}
