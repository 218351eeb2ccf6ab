package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/kurtniculi26/RentAll/internal/domain"
)

type UserStore struct {
	mu      sync.RWMutex
	byEmail map[string]*domain.User
}

func NewUserStore() *UserStore {
	return &UserStore{byEmail: make(map[string]*domain.User)}
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// Create inserts u, failing with domain.ErrConflict if the email is taken.
func (s *UserStore) Create(ctx context.Context, u *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[u.Email]; exists {
		return fmt.Errorf("email %s: %w", u.Email, domain.ErrConflict)
	}
	cp := *u
	s.byEmail[u.Email] = &cp
	return nil
}
