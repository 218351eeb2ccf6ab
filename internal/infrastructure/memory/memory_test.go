package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurtniculi26/RentAll/internal/domain"
)

var t0 = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func record(id, email, code string) *domain.OTPRecord {
	return &domain.OTPRecord{OTPID: id, Email: email, Code: code, ExpiresAt: t0.Add(domain.OTPTTL), CreatedAt: t0}
}

func TestOTPLedger_FindActiveFiltersExpiredAndConsumed(t *testing.T) {
	ctx := context.Background()
	l := NewOTPLedger()
	require.NoError(t, l.Put(ctx, record("01A", "a@x.io", "123456")))
	require.NoError(t, l.Put(ctx, record("01B", "a@x.io", "123456")))
	require.NoError(t, l.Put(ctx, record("01C", "a@x.io", "654321")))
	require.NoError(t, l.Put(ctx, record("01D", "b@x.io", "123456")))

	got, err := l.FindActive(ctx, "a@x.io", "123456", t0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "01B", got[0].OTPID)

	require.NoError(t, l.Consume(ctx, "01B", t0))
	got, err = l.FindActive(ctx, "a@x.io", "123456", t0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "01A", got[0].OTPID)

	got, err = l.FindActive(ctx, "a@x.io", "123456", t0.Add(domain.OTPTTL))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOTPLedger_ConsumeOnce(t *testing.T) {
	ctx := context.Background()
	l := NewOTPLedger()
	require.NoError(t, l.Put(ctx, record("01A", "a@x.io", "123456")))

	require.NoError(t, l.Consume(ctx, "01A", t0.Add(time.Minute)))
	assert.ErrorIs(t, l.Consume(ctx, "01A", t0.Add(time.Minute)), domain.ErrConflict)

	rec, err := l.Get(ctx, "01A")
	require.NoError(t, err)
	assert.True(t, rec.Consumed)
	require.NotNil(t, rec.ConsumedAt)
	assert.Equal(t, t0.Add(time.Minute), *rec.ConsumedAt)
}

func TestOTPLedger_ConsumeAtExpiryFails(t *testing.T) {
	ctx := context.Background()
	l := NewOTPLedger()
	require.NoError(t, l.Put(ctx, record("01A", "a@x.io", "123456")))
	assert.ErrorIs(t, l.Consume(ctx, "01A", t0.Add(domain.OTPTTL)), domain.ErrConflict)
	assert.ErrorIs(t, l.Consume(ctx, "missing", t0), domain.ErrConflict)
}

func TestOTPLedger_ConcurrentConsume(t *testing.T) {
	ctx := context.Background()
	l := NewOTPLedger()
	require.NoError(t, l.Put(ctx, record("01A", "a@x.io", "123456")))

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Consume(ctx, "01A", t0) == nil {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins)
}

func TestOTPLedger_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	l := NewOTPLedger()
	require.NoError(t, l.Put(ctx, record("01A", "a@x.io", "123456")))
	rec, err := l.Get(ctx, "01A")
	require.NoError(t, err)
	rec.Consumed = true

	again, err := l.Get(ctx, "01A")
	require.NoError(t, err)
	assert.False(t, again.Consumed)

	_, err = l.Get(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserStore_CreateRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()
	require.NoError(t, s.Create(ctx, &domain.User{UserID: "1", Email: "a@x.io"}))
	assert.ErrorIs(t, s.Create(ctx, &domain.User{UserID: "2", Email: "a@x.io"}), domain.ErrConflict)

	u, err := s.GetByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, "1", u.UserID)

	_, err = s.GetByEmail(ctx, "b@x.io")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListingStore_ListBrowsable(t *testing.T) {
	s := NewListingStore(
		domain.Listing{ListingID: "1", Title: "Cordless Drill", CategoryID: 1, Available: true, IsVerified: true, CreatedAt: t0},
		domain.Listing{ListingID: "2", Title: "Hammer drill", CategoryID: 1, Available: true, IsVerified: true, CreatedAt: t0.Add(time.Hour)},
		domain.Listing{ListingID: "3", Title: "Drill press", CategoryID: 1, Available: false, IsVerified: true, CreatedAt: t0},
		domain.Listing{ListingID: "4", Title: "Sedan", CategoryID: 2, Available: true, IsVerified: false, CreatedAt: t0},
		domain.Listing{ListingID: "5", Title: "Camera", CategoryID: 4, Available: true, IsVerified: true, CreatedAt: t0},
	)

	got, err := s.ListBrowsable(context.Background(), domain.ListingFilter{Query: "DRILL"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].ListingID)

	got, err = s.ListBrowsable(context.Background(), domain.ListingFilter{CategoryID: 4})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "5", got[0].ListingID)

	got, err = s.ListBrowsable(context.Background(), domain.ListingFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestCooldown(t *testing.T) {
	now := t0
	c := NewCooldown(func() time.Time { return now })
	ctx := context.Background()

	ok, _, err := c.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(20 * time.Second)
	ok, remaining, err := c.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 40*time.Second, remaining)

	now = now.Add(40 * time.Second)
	ok, _, _ = c.Acquire(ctx, "k", time.Minute)
	assert.True(t, ok)

	require.NoError(t, c.Release(ctx, "k"))
	ok, _, _ = c.Acquire(ctx, "k", time.Minute)
	assert.True(t, ok)
}

func TestCooldown_SweepsExpiredKeys(t *testing.T) {
	now := t0
	c := NewCooldown(func() time.Time { return now })
	ctx := context.Background()

	for _, k := range []string{"a@x.io", "b@x.io"} {
		ok, _, err := c.Acquire(ctx, k, 30*time.Second)
		require.NoError(t, err)
		require.True(t, ok)
	}
	ok, _, _ := c.Acquire(ctx, "c@x.io", 5*time.Minute)
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _, _ = c.Acquire(ctx, "d@x.io", time.Minute)
	require.True(t, ok)

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.NotContains(t, c.until, "a@x.io")
	assert.NotContains(t, c.until, "b@x.io")
	assert.Contains(t, c.until, "c@x.io")
	assert.Contains(t, c.until, "d@x.io")
}
