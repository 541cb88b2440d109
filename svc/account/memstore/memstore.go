// Package memstore is an in-memory account.Store and account.PendingStore
// for tests and single-process deployments.
package memstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shubhamtiwari158/securify/pkg/clock"
	"github.com/shubhamtiwari158/securify/svc/account"
)

// Store keeps accounts in maps guarded by a mutex. Returned accounts are
// copies.
type Store struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]*account.Account
	byEmail    map[string]uuid.UUID
	byUsername map[string]uuid.UUID
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		byID:       make(map[uuid.UUID]*account.Account),
		byEmail:    make(map[string]uuid.UUID),
		byUsername: make(map[string]uuid.UUID),
	}
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, account.ErrNotFound
	}
	return s.byID[id].Clone(), nil
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.byID[id]
	if !ok {
		return nil, account.ErrNotFound
	}
	return acc.Clone(), nil
}

func (s *Store) Create(ctx context.Context, acc *account.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byID[acc.ID]; taken {
		return account.ErrDuplicateKey
	}
	if _, taken := s.byEmail[acc.Email]; taken {
		return errors.Join(account.ErrDuplicateKey, account.ErrEmailTaken)
	}
	if _, taken := s.byUsername[acc.Username]; taken {
		return errors.Join(account.ErrDuplicateKey, account.ErrUsernameTaken)
	}

	stored := acc.Clone()
	if stored.Version == 0 {
		stored.Version = 1
	}
	s.byID[stored.ID] = stored
	s.byEmail[stored.Email] = stored.ID
	s.byUsername[stored.Username] = stored.ID
	return nil
}

func (s *Store) Update(ctx context.Context, id uuid.UUID, patch account.Patch) (*account.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.byID[id]
	if !ok {
		return nil, account.ErrNotFound
	}
	if acc.Version != patch.IfVersion {
		return nil, account.ErrVersionConflict
	}

	patch.Apply(acc)
	return acc.Clone(), nil
}

// Len returns the number of stored accounts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

type challenge struct {
	accountID uuid.UUID
	expiresAt time.Time
}

// PendingStore keeps login challenges in memory. Expired entries are
// dropped lazily on access.
type PendingStore struct {
	mu         sync.Mutex
	clock      clock.Clock
	challenges map[string]challenge
}

// NewPendingStore returns an empty PendingStore. A nil clock uses the
// system clock.
func NewPendingStore(c clock.Clock) *PendingStore {
	if c == nil {
		c = clock.New()
	}
	return &PendingStore{clock: c, challenges: make(map[string]challenge)}
}

func (p *PendingStore) Put(ctx context.Context, token string, accountID uuid.UUID, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.challenges[token] = challenge{accountID: accountID, expiresAt: p.clock.Now().Add(ttl)}
	return nil
}

func (p *PendingStore) Get(ctx context.Context, token string) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	c, ok := p.live(token)
	if !ok {
		return uuid.Nil, account.ErrChallengeNotFound
	}
	return c.accountID, nil
}

func (p *PendingStore) Consume(ctx context.Context, token string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.live(token)
	delete(p.challenges, token)
	return ok, nil
}

// live must be called with p.mu held.
func (p *PendingStore) live(token string) (challenge, bool) {
	c, ok := p.challenges[token]
	if !ok {
		return challenge{}, false
	}
	if !p.clock.Now().Before(c.expiresAt) {
		delete(p.challenges, token)
		return challenge{}, false
	}
	return c, true
}
