package listing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kurtniculi26/RentAll/internal/domain"
	"github.com/kurtniculi26/RentAll/internal/infrastructure/memory"
)

type mockListingStore struct{ mock.Mock }

func (m *mockListingStore) ListBrowsable(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]domain.Listing)
	return items, args.Error(1)
}

func TestResolveCategory(t *testing.T) {
	id, ok := ResolveCategory("clothing & accessories")
	assert.True(t, ok)
	assert.Equal(t, 3, id)

	id, ok = ResolveCategory("4")
	assert.True(t, ok)
	assert.Equal(t, 4, id)

	_, ok = ResolveCategory("9")
	assert.False(t, ok)
	_, ok = ResolveCategory("Boats")
	assert.False(t, ok)
}

func TestList_PassesFilterToStore(t *testing.T) {
	repo := &mockListingStore{}
	repo.On("ListBrowsable", mock.Anything, domain.ListingFilter{CategoryID: 2, Query: "sedan"}).
		Return([]domain.Listing{{ListingID: "1"}}, nil)

	got, err := NewService(repo).List(context.Background(), Filter{Category: "Car", Query: " sedan "})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	repo.AssertExpectations(t)
}

func TestList_AllMeansNoCategory(t *testing.T) {
	repo := &mockListingStore{}
	repo.On("ListBrowsable", mock.Anything, domain.ListingFilter{}).Return(nil, nil)

	got, err := NewService(repo).List(context.Background(), Filter{Category: "All"})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestList_UnknownCategory(t *testing.T) {
	_, err := NewService(&mockListingStore{}).List(context.Background(), Filter{Category: "Boats"})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestList_StoreFailure(t *testing.T) {
	repo := &mockListingStore{}
	repo.On("ListBrowsable", mock.Anything, mock.Anything).Return(nil, errors.New("down"))

	_, err := NewService(repo).List(context.Background(), Filter{})
	assert.True(t, errors.Is(err, domain.ErrStore))
}

func TestList_OnlyAvailableAndVerified(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := memory.NewListingStore(
		domain.Listing{ListingID: "1", Title: "Drill", CategoryID: 1, Available: true, IsVerified: true, CreatedAt: at},
		domain.Listing{ListingID: "2", Title: "Drill", CategoryID: 1, Available: true, IsVerified: false, CreatedAt: at},
		domain.Listing{ListingID: "3", Title: "Drill", CategoryID: 1, Available: false, IsVerified: true, CreatedAt: at},
	)
	got, err := NewService(store).List(context.Background(), Filter{Category: "tools"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ListingID)
}

func TestCategories_ReturnsCopy(t *testing.T) {
	svc := NewService(&mockListingStore{})
	cats := svc.Categories()
	require.Len(t, cats, 4)
	cats[0].Name = "changed"
	assert.Equal(t, "Tools", svc.Categories()[0].Name)
}
