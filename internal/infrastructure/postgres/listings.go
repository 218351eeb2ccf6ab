package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kurtniculi26/RentAll/internal/domain"
)

type ListingRepo struct {
	db  Querier
	log *zap.Logger
}

func NewListingRepo(db Querier, log *zap.Logger) *ListingRepo {
	return &ListingRepo{db: db, log: log.With(zap.String("repository", "listing"))}
}

func (r *ListingRepo) ListBrowsable(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, error) {
	var (
		where = []string{"available = TRUE", "is_verified = TRUE"}
		args  []any
	)
	if f.CategoryID != 0 {
		args = append(args, f.CategoryID)
		where = append(where, "category_id = $"+strconv.Itoa(len(args)))
	}
	if f.Query != "" {
		args = append(args, "%"+escapeLike(f.Query)+"%")
		where = append(where, "title ILIKE $"+strconv.Itoa(len(args)))
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, owner_id, title, description, category_id, price::float8, location,
		       image_url, available, is_verified, created_at
		FROM items
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY created_at DESC`, args...)
	if err != nil {
		r.log.Error("list listings failed", zap.Error(err))
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	out := []domain.Listing{}
	for rows.Next() {
		var l domain.Listing
		if err := rows.Scan(&l.ListingID, &l.OwnerID, &l.Title, &l.Description, &l.CategoryID, &l.Price,
			&l.Location, &l.ImageURL, &l.Available, &l.IsVerified, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
