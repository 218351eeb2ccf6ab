package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/kurtniculi26/RentAll/internal/domain"
)

type ListingStore struct {
	mu   sync.RWMutex
	rows map[string]domain.Listing
}

func NewListingStore(seed ...domain.Listing) *ListingStore {
	s := &ListingStore{rows: make(map[string]domain.Listing, len(seed))}
	for _, l := range seed {
		s.rows[l.ListingID] = l
	}
	return s
}

func (s *ListingStore) Put(ctx context.Context, l *domain.Listing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[l.ListingID] = *l
	return nil
}

// ListBrowsable returns available, verified listings matching f, newest first.
func (s *ListingStore) ListBrowsable(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := strings.ToLower(f.Query)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Listing, 0, len(s.rows))
	for _, l := range s.rows {
		if !l.Available || !l.IsVerified {
			continue
		}
		if f.CategoryID != 0 && l.CategoryID != f.CategoryID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(l.Title), q) {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
