package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// NormalizeEmail trims and case-folds an address. Stores receive only
// normalized emails.
func NormalizeEmail(email string) string {
	// A Caser is stateful and must not be shared across goroutines.
	return cases.Fold().String(strings.TrimSpace(email))
}

// boundStore applies the configured timeout to every call and maps
// unexpected failures to ErrStoreUnavailable.
type boundStore struct {
	store   Store
	pending PendingStore
	timeout time.Duration
}

func (b boundStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, b.timeout)
}

func (b boundStore) findByEmail(ctx context.Context, email string) (*Account, error) {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	acc, err := b.store.FindByEmail(ctx, email)
	return acc, storeError(err)
}

func (b boundStore) findByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	acc, err := b.store.FindByID(ctx, id)
	return acc, storeError(err)
}

func (b boundStore) create(ctx context.Context, acc *Account) error {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	return storeError(b.store.Create(ctx, acc))
}

func (b boundStore) update(ctx context.Context, id uuid.UUID, patch Patch) (*Account, error) {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	acc, err := b.store.Update(ctx, id, patch)
	return acc, storeError(err)
}

func (b boundStore) putChallenge(ctx context.Context, token string, id uuid.UUID, ttl time.Duration) error {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	return storeError(b.pending.Put(ctx, token, id, ttl))
}

func (b boundStore) getChallenge(ctx context.Context, token string) (uuid.UUID, error) {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	id, err := b.pending.Get(ctx, token)
	return id, storeError(err)
}

func (b boundStore) consumeChallenge(ctx context.Context, token string) (bool, error) {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	ok, err := b.pending.Consume(ctx, token)
	return ok, storeError(err)
}

// storeError keeps the store contract errors and turns anything else,
// including deadlines, into ErrStoreUnavailable.
func storeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrDuplicateKey),
		errors.Is(err, ErrVersionConflict),
		errors.Is(err, ErrChallengeNotFound),
		errors.Is(err, ErrStoreUnavailable):
		return err
	default:
		return errors.Join(ErrStoreUnavailable, err)
	}
}
