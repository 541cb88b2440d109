// Package pgstore implements account.Store on PostgreSQL with pgx. The
// schema ships as embedded goose migrations, see Migrate.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/shubhamtiwari158/securify/pkg/pg"
	"github.com/shubhamtiwari158/securify/pkg/totp"
	"github.com/shubhamtiwari158/securify/svc/account"
)

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const columns = `id, username, email, password_hash, password_salt,
	totp_secret_base32, totp_otpauth_url, two_factor_enabled, totp_verified,
	version, created_at, updated_at`

// Store is a PostgreSQL backed account.Store.
type Store struct {
	db     DB
	cipher *totp.Cipher
}

// Option configures a Store.
type Option func(*Store)

// WithCipher encrypts TOTP secrets before they are written.
func WithCipher(c *totp.Cipher) Option {
	return func(s *Store) {
		s.cipher = c
	}
}

// New returns a Store on db.
func New(db DB, opts ...Option) *Store {
	s := &Store{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	return s.queryOne(ctx, `SELECT `+columns+` FROM accounts WHERE email = $1`, email)
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return s.queryOne(ctx, `SELECT `+columns+` FROM accounts WHERE id = $1`, id)
}

func (s *Store) Create(ctx context.Context, acc *account.Account) error {
	secretB32, secretURL, err := s.sealColumns(acc.TOTPSecret)
	if err != nil {
		return err
	}
	version := acc.Version
	if version == 0 {
		version = 1
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO accounts (`+columns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		acc.ID, acc.Username, acc.Email, acc.PasswordHash, acc.PasswordSalt,
		secretB32, secretURL, acc.TwoFactorEnabled, acc.TOTPVerified,
		version, acc.CreatedAt.UTC(), acc.UpdatedAt.UTC(),
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return duplicateError(err)
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, id uuid.UUID, patch account.Patch) (*account.Account, error) {
	query, args, err := s.buildUpdate(id, patch)
	if err != nil {
		return nil, err
	}

	acc, err := s.queryOne(ctx, query, args...)
	if pg.IsSerializationError(err) {
		return nil, errors.Join(account.ErrVersionConflict, err)
	}
	if !errors.Is(err, account.ErrNotFound) {
		return acc, err
	}

	// No row matched: either the account is gone or the version is stale.
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check account: %w", err)
	}
	if !exists {
		return nil, account.ErrNotFound
	}
	return nil, account.ErrVersionConflict
}

// buildUpdate renders a compare-and-swap UPDATE for patch.
func (s *Store) buildUpdate(id uuid.UUID, patch account.Patch) (string, []any, error) {
	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.TOTPSecret != nil {
		b32, url, err := s.sealColumns(patch.TOTPSecret)
		if err != nil {
			return "", nil, err
		}
		set("totp_secret_base32", b32)
		set("totp_otpauth_url", url)
	}
	if patch.TwoFactorEnabled != nil {
		set("two_factor_enabled", *patch.TwoFactorEnabled)
	}
	if patch.TOTPVerified != nil {
		set("totp_verified", *patch.TOTPVerified)
	}
	if !patch.UpdatedAt.IsZero() {
		set("updated_at", patch.UpdatedAt.UTC())
	}
	sets = append(sets, "version = version + 1")

	args = append(args, id, patch.IfVersion)
	query := fmt.Sprintf(
		`UPDATE accounts SET %s WHERE id = $%d AND version = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args)-1, len(args), columns,
	)
	return query, args, nil
}

func (s *Store) queryOne(ctx context.Context, query string, args ...any) (*account.Account, error) {
	var (
		acc       account.Account
		secretB32 *string
		secretURL *string
		createdAt time.Time
		updatedAt time.Time
	)
	err := s.db.QueryRow(ctx, query, args...).Scan(
		&acc.ID, &acc.Username, &acc.Email, &acc.PasswordHash, &acc.PasswordSalt,
		&secretB32, &secretURL, &acc.TwoFactorEnabled, &acc.TOTPVerified,
		&acc.Version, &createdAt, &updatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, account.ErrNotFound
		}
		return nil, fmt.Errorf("query account: %w", err)
	}
	acc.CreatedAt = createdAt.UTC()
	acc.UpdatedAt = updatedAt.UTC()

	if secretB32 != nil {
		secret := totp.Secret{Base32: *secretB32}
		if secretURL != nil {
			secret.OTPAuthURL = *secretURL
		}
		opened, err := s.cipher.Open(secret)
		if err != nil {
			return nil, err
		}
		acc.TOTPSecret = &opened
	}
	return &acc, nil
}

func (s *Store) sealColumns(secret *totp.Secret) (*string, *string, error) {
	if secret == nil {
		return nil, nil, nil
	}
	sealed, err := s.cipher.Seal(*secret)
	if err != nil {
		return nil, nil, err
	}
	return &sealed.Base32, &sealed.OTPAuthURL, nil
}

// Unique constraints declared by the accounts migration.
const (
	emailConstraint    = "accounts_email_key"
	usernameConstraint = "accounts_username_key"
)

func duplicateError(err error) error {
	switch pg.ConstraintName(err) {
	case emailConstraint:
		return errors.Join(account.ErrDuplicateKey, account.ErrEmailTaken, err)
	case usernameConstraint:
		return errors.Join(account.ErrDuplicateKey, account.ErrUsernameTaken, err)
	default:
		return errors.Join(account.ErrDuplicateKey, err)
	}
}
