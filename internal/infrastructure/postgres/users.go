package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/kurtniculi26/RentAll/internal/domain"
)

type UserRepo struct {
	db  Querier
	log *zap.Logger
}

func NewUserRepo(db Querier, log *zap.Logger) *UserRepo {
	return &UserRepo{db: db, log: log.With(zap.String("repository", "user"))}
}

// Create relies on the UNIQUE(email) constraint for duplicate detection.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, phone, birthday,
		                   gender, address, latitude, longitude, id_type, id_number,
		                   valid_id_url, profile_pic, is_verified, verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		u.UserID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Phone, u.Birthday,
		nullable(u.Gender), u.Address, u.Latitude, u.Longitude, nullable(u.IDType), nullable(u.IDNumber),
		u.ValidIDURL, u.ProfilePic, u.IsVerified, u.Verified, u.CreatedAt, u.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("email %s: %w", u.Email, domain.ErrConflict)
	}
	if err != nil {
		r.log.Error("insert user failed", zap.Error(err), zap.String("user_id", u.UserID))
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var (
		u                     domain.User
		gender, idType, idNum *string
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, email, password_hash, first_name, last_name, phone, birthday,
		       gender, address, latitude, longitude, id_type, id_number,
		       valid_id_url, profile_pic, is_verified, verified, created_at, updated_at
		FROM users WHERE email = $1`, email,
	).Scan(
		&u.UserID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Phone, &u.Birthday,
		&gender, &u.Address, &u.Latitude, &u.Longitude, &idType, &idNum,
		&u.ValidIDURL, &u.ProfilePic, &u.IsVerified, &u.Verified, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	u.Gender, u.IDType, u.IDNumber = deref(gender), deref(idType), deref(idNum)
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
