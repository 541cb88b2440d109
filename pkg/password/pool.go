package password

import (
	"context"
	"errors"

	"golang.org/x/sync/semaphore"
)

// Pool runs a Hasher with at most size operations in flight.
type Pool struct {
	hasher Hasher
	sem    *semaphore.Weighted
}

// NewPool wraps hasher in a pool of the given size.
func NewPool(hasher Hasher, size int) (*Pool, error) {
	if size < 1 {
		return nil, ErrInvalidPoolSize
	}
	return &Pool{hasher: hasher, sem: semaphore.NewWeighted(int64(size))}, nil
}

// MustNewPool is like NewPool but panics on an invalid size.
func MustNewPool(hasher Hasher, size int) *Pool {
	p, err := NewPool(hasher, size)
	if err != nil {
		panic(err)
	}
	return p
}

// Hash waits for a free slot and hashes plaintext.
func (p *Pool) Hash(ctx context.Context, plaintext string) (string, string, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return "", "", errors.Join(ErrPoolWaitCanceled, err)
	}
	defer p.sem.Release(1)

	return p.hasher.Hash(plaintext)
}

// Verify waits for a free slot and checks plaintext against hash and salt.
// The error is non-nil only when ctx ends before a slot frees up.
func (p *Pool) Verify(ctx context.Context, plaintext, hash, salt string) (bool, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return false, errors.Join(ErrPoolWaitCanceled, err)
	}
	defer p.sem.Release(1)

	return p.hasher.Verify(plaintext, hash, salt), nil
}
