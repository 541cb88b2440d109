package memstore_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubhamtiwari158/securify/pkg/clock"
	"github.com/shubhamtiwari158/securify/pkg/totp"
	"github.com/shubhamtiwari158/securify/svc/account"
	"github.com/shubhamtiwari158/securify/svc/account/memstore"
	"github.com/shubhamtiwari158/securify/svc/account/storetest"
)

var (
	_ account.Store        = (*memstore.Store)(nil)
	_ account.PendingStore = (*memstore.PendingStore)(nil)
)

func TestStore_CreateAndFind(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := memstore.New()
	acc := &account.Account{ID: uuid.New(), Email: "a@x.com", TOTPSecret: &totp.Secret{Base32: "AAAA"}}

	require.NoError(t, s.Create(ctx, acc))
	assert.Equal(t, 1, s.Len())

	got, err := s.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)

	// Returned values are copies.
	got.TOTPSecret.Base32 = "BBBB"
	again, err := s.FindByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "AAAA", again.TOTPSecret.Base32)

	_, err = s.FindByEmail(ctx, "b@x.com")
	require.ErrorIs(t, err, account.ErrNotFound)
	_, err = s.FindByID(ctx, uuid.New())
	require.ErrorIs(t, err, account.ErrNotFound)

	err = s.Create(ctx, &account.Account{ID: uuid.New(), Username: "other", Email: "a@x.com"})
	require.ErrorIs(t, err, account.ErrDuplicateKey)
	require.ErrorIs(t, err, account.ErrEmailTaken)
	err = s.Create(ctx, &account.Account{ID: acc.ID, Username: "other", Email: "c@x.com"})
	require.ErrorIs(t, err, account.ErrDuplicateKey)
	err = s.Create(ctx, &account.Account{ID: uuid.New(), Email: "d@x.com"})
	require.ErrorIs(t, err, account.ErrDuplicateKey)
	require.ErrorIs(t, err, account.ErrUsernameTaken)
	assert.Equal(t, 1, s.Len())
}

func TestStore_Update(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := memstore.New()
	id := uuid.New()
	require.NoError(t, s.Create(ctx, &account.Account{ID: id, Email: "a@x.com"}))

	enabled := true
	got, err := s.Update(ctx, id, account.Patch{TwoFactorEnabled: &enabled, IfVersion: 1})
	require.NoError(t, err)
	assert.True(t, got.TwoFactorEnabled)
	assert.Equal(t, int64(2), got.Version)

	_, err = s.Update(ctx, id, account.Patch{IfVersion: 1})
	require.ErrorIs(t, err, account.ErrVersionConflict)

	_, err = s.Update(ctx, uuid.New(), account.Patch{IfVersion: 1})
	require.ErrorIs(t, err, account.ErrNotFound)
}

func TestStore_UpdateCompareAndSwap(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := memstore.New()
	id := uuid.New()
	require.NoError(t, s.Create(ctx, &account.Account{ID: id, Email: "a@x.com"}))

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Update(ctx, id, account.Patch{IfVersion: 1}); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestStore_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := memstore.New().FindByID(ctx, uuid.New())
	require.ErrorIs(t, err, context.Canceled)
}

func TestPendingStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := clock.NewManual(time.Unix(1_700_000_000, 0))
	p := memstore.NewPendingStore(clk)
	id := uuid.New()

	require.NoError(t, p.Put(ctx, "tok", id, time.Minute))

	got, err := p.Get(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	clk.Advance(time.Minute)
	_, err = p.Get(ctx, "tok")
	require.ErrorIs(t, err, account.ErrChallengeNotFound)

	ok, err := p.Consume(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, p.Put(ctx, "tok2", id, time.Minute))
	ok, err = p.Consume(ctx, "tok2")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = p.Consume(ctx, "tok2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_Contract(t *testing.T) {
	t.Parallel()
	storetest.RunStore(t, memstore.New())
}

func TestPendingStore_Contract(t *testing.T) {
	t.Parallel()
	storetest.RunPendingStore(t, memstore.NewPendingStore(nil))
}
