package account

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shubhamtiwari158/securify/pkg/totp"
)

// Account is a stored identity record.
type Account struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	PasswordSalt string

	// TOTPSecret is nil until the first enrollment.
	TOTPSecret       *totp.Secret
	TwoFactorEnabled bool
	// TOTPVerified is set once the current secret has been confirmed with a
	// code. It separates PendingVerification from Disabled.
	TOTPVerified bool

	// Version increases on every update.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TwoFactorState derives the enrollment state from the account fields.
func (a *Account) TwoFactorState() State {
	switch {
	case a.TOTPSecret == nil || a.TOTPSecret.IsZero():
		return StateNotEnrolled
	case a.TwoFactorEnabled:
		return StateEnabled
	case a.TOTPVerified:
		return StateDisabled
	default:
		return StatePendingVerification
	}
}

// Clone returns a deep copy.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	if a.TOTPSecret != nil {
		s := *a.TOTPSecret
		c.TOTPSecret = &s
	}
	return &c
}

// Patch lists the fields an Update changes. Nil fields are left alone.
type Patch struct {
	TOTPSecret       *totp.Secret
	TwoFactorEnabled *bool
	TOTPVerified     *bool

	// IfVersion makes the update conditional on the stored version.
	// Stores return ErrVersionConflict when it does not match.
	IfVersion int64
	UpdatedAt time.Time
}

// Apply writes p onto a and bumps its version. Store implementations use it
// so every backend applies patches the same way.
func (p Patch) Apply(a *Account) {
	if p.TOTPSecret != nil {
		s := *p.TOTPSecret
		a.TOTPSecret = &s
	}
	if p.TwoFactorEnabled != nil {
		a.TwoFactorEnabled = *p.TwoFactorEnabled
	}
	if p.TOTPVerified != nil {
		a.TOTPVerified = *p.TOTPVerified
	}
	if !p.UpdatedAt.IsZero() {
		a.UpdatedAt = p.UpdatedAt
	}
	a.Version++
}

// Store persists accounts. Email lookups use the normalized address and
// implementations must enforce email and username uniqueness.
type Store interface {
	// FindByEmail returns ErrNotFound when no account has the email.
	FindByEmail(ctx context.Context, email string) (*Account, error)
	// FindByID returns ErrNotFound when the id is unknown.
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	// Create inserts acc with Version 1. It returns ErrDuplicateKey when the
	// id, email or username is taken, joined with ErrEmailTaken or
	// ErrUsernameTaken when the backend can tell which.
	Create(ctx context.Context, acc *Account) error
	// Update applies patch atomically and returns the updated account.
	Update(ctx context.Context, id uuid.UUID, patch Patch) (*Account, error)
}

// PendingStore holds login challenges between the password step and the
// TOTP step.
type PendingStore interface {
	// Put binds token to accountID for ttl.
	Put(ctx context.Context, token string, accountID uuid.UUID, ttl time.Duration) error
	// Get returns ErrChallengeNotFound for unknown or expired tokens.
	Get(ctx context.Context, token string) (uuid.UUID, error)
	// Consume deletes token and reports whether it was still present.
	Consume(ctx context.Context, token string) (bool, error)
}

func boolPtr(b bool) *bool { return &b }
