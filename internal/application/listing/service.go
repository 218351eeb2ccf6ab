package listing

import (
	"context"
	"strconv"
	"strings"

	"github.com/kurtniculi26/RentAll/internal/domain"
)

type Filter struct {
	Category string // category name or numeric id
	Query    string
}

type Service interface {
	List(ctx context.Context, f Filter) ([]domain.Listing, error)
	Categories() []domain.Category
}

type listingStore interface {
	ListBrowsable(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, error)
}

type service struct {
	repo listingStore
}

func NewService(repo listingStore) Service {
	return &service{repo: repo}
}

func (s *service) Categories() []domain.Category {
	out := make([]domain.Category, len(domain.Categories))
	copy(out, domain.Categories)
	return out
}

// List returns only listings that are both available and verified.
func (s *service) List(ctx context.Context, f Filter) ([]domain.Listing, error) {
	var q domain.ListingFilter
	if c := strings.TrimSpace(f.Category); c != "" && !strings.EqualFold(c, "all") {
		catID, ok := ResolveCategory(c)
		if !ok {
			return nil, domain.NewValidationError("category", "unknown category")
		}
		q.CategoryID = catID
	}
	q.Query = strings.TrimSpace(f.Query)

	items, err := s.repo.ListBrowsable(ctx, q)
	if err != nil {
		return nil, domain.StoreError("list listings", err)
	}
	if items == nil {
		items = []domain.Listing{}
	}
	return items, nil
}

// ResolveCategory accepts either a category id or its name, case-insensitively.
func ResolveCategory(v string) (int, bool) {
	if n, err := strconv.Atoi(v); err == nil {
		for _, c := range domain.Categories {
			if c.ID == n {
				return n, true
			}
		}
		return 0, false
	}
	for _, c := range domain.Categories {
		if strings.EqualFold(c.Name, v) {
			return c.ID, true
		}
	}
	return 0, false
}
