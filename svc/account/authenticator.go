package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/shubhamtiwari158/securify/pkg/logger"
	"github.com/shubhamtiwari158/securify/pkg/password"
	"github.com/shubhamtiwari158/securify/pkg/validator"
)

// Decision is the outcome of a successful password check.
type Decision string

const (
	// DecisionAuthenticated means no second factor is required.
	DecisionAuthenticated Decision = "authenticated"
	// DecisionChallengeRequired means the caller must validate a TOTP code
	// before establishing a session.
	DecisionChallengeRequired Decision = "challenge_required"
)

// AuthResult is returned by Authenticate on a correct password.
type AuthResult struct {
	Decision Decision
	Account  *Account

	// ChallengeToken identifies the pending login when a PendingStore is
	// configured and Decision is DecisionChallengeRequired.
	ChallengeToken     string
	ChallengeExpiresAt time.Time
}

// RegisterInput is the registration form.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=64,username"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,bcryptlen,password"`
}

// dummyPassword is hashed once and verified against when the email is
// unknown so both paths cost one hash comparison.
const dummyPassword = "securify-unknown-account"

// Authenticator registers accounts and checks credentials.
type Authenticator struct {
	core

	dummyHash string
	dummySalt string
}

// NewAuthenticator creates an Authenticator over store. It hashes a dummy
// credential up front for unknown-email logins.
func NewAuthenticator(store Store, opts ...Option) *Authenticator {
	a := &Authenticator{core: newCore(store, opts)}

	start := time.Now()
	hash, salt, err := a.pool.Hash(context.Background(), dummyPassword)
	if err != nil {
		a.logger.Warn("failed to prepare dummy credential",
			logger.Component("authenticator"),
			logger.Error(err),
		)
		return a
	}
	a.dummyHash, a.dummySalt = hash, salt
	a.logger.Debug("dummy credential prepared",
		logger.Component("authenticator"),
		logger.Duration(time.Since(start)),
	)
	return a
}

// Register validates in, hashes the password and stores a new account. When
// Config.SecretOnRegister is set the account also gets a TOTP secret and
// starts in StatePendingVerification.
func (a *Authenticator) Register(ctx context.Context, in RegisterInput) (_ *Account, err error) {
	ctx, span := a.tel.start(ctx, "Authenticator.Register")
	defer func() { a.tel.end(span, err) }()

	in.Email = NormalizeEmail(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if err := a.validator.Validate(in); err != nil {
		return nil, err
	}

	hash, salt, err := a.pool.Hash(ctx, in.Password)
	if err != nil {
		if errors.Is(err, password.ErrPoolWaitCanceled) {
			return nil, err
		}
		if errors.Is(err, password.ErrPasswordTooLong) {
			return nil, validator.ValidationErrors{{
				Field:   "password",
				Tag:     "bcryptlen",
				Message: "password must be at most 72 bytes",
			}}
		}
		a.logger.ErrorContext(ctx, "password hashing failed",
			logger.Component("authenticator"),
			logger.Error(err),
		)
		return nil, errors.Join(ErrCryptoFailure, err)
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return nil, errors.Join(ErrCryptoFailure, err)
	}

	now := a.clock.Now().UTC()
	acc := &Account{
		ID:           id,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		PasswordSalt: salt,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if a.cfg.SecretOnRegister {
		secret, err := a.provider.Generate(acc.Email)
		if err != nil {
			a.logger.ErrorContext(ctx, "totp secret generation failed",
				logger.Component("authenticator"),
				logger.Error(err),
			)
			return nil, errors.Join(ErrCryptoFailure, err)
		}
		acc.TOTPSecret = &secret
	}

	if err := a.store.create(ctx, acc); err != nil {
		if !errors.Is(err, ErrDuplicateKey) {
			a.logger.ErrorContext(ctx, "failed to create account",
				logger.Component("authenticator"),
				logger.Error(err),
			)
		}
		return nil, err
	}

	a.logger.InfoContext(ctx, "account registered",
		logger.Component("authenticator"),
		logger.Event("registered"),
		logger.AccountID(acc.ID),
		logger.State(acc.TwoFactorState().String()),
	)
	return acc, nil
}

// Authenticate checks email and password. Unknown emails and wrong
// passwords both return ErrInvalidCredentials after the same amount of
// hashing work.
func (a *Authenticator) Authenticate(ctx context.Context, email, plaintext string) (res AuthResult, err error) {
	ctx, span := a.tel.start(ctx, "Authenticator.Authenticate")
	defer func() { a.tel.end(span, err) }()

	acc, err := a.store.findByEmail(ctx, NormalizeEmail(email))
	switch {
	case errors.Is(err, ErrNotFound):
		a.equalizeTiming(ctx, plaintext)
		return AuthResult{}, a.rejectLogin(ctx, uuid.Nil)
	case err != nil:
		a.logger.ErrorContext(ctx, "account lookup failed",
			logger.Component("authenticator"),
			logger.Error(err),
		)
		return AuthResult{}, err
	}

	ok, err := a.pool.Verify(ctx, plaintext, acc.PasswordHash, acc.PasswordSalt)
	if err != nil {
		return AuthResult{}, err
	}
	if !ok {
		return AuthResult{}, a.rejectLogin(ctx, acc.ID)
	}

	span.SetAttributes(attribute.String("account.id", acc.ID.String()))

	if !acc.TwoFactorEnabled {
		a.tel.decision(ctx, string(DecisionAuthenticated))
		a.logger.InfoContext(ctx, "password accepted",
			logger.Component("authenticator"),
			logger.AccountID(acc.ID),
			logger.Decision(string(DecisionAuthenticated)),
		)
		return AuthResult{Decision: DecisionAuthenticated, Account: acc}, nil
	}

	res = AuthResult{Decision: DecisionChallengeRequired, Account: acc}
	if a.pending != nil {
		token, expiresAt, err := a.issueChallenge(ctx, acc.ID)
		if err != nil {
			a.logger.ErrorContext(ctx, "failed to store login challenge",
				logger.Component("authenticator"),
				logger.AccountID(acc.ID),
				logger.Error(err),
			)
			return AuthResult{}, err
		}
		res.ChallengeToken = token
		res.ChallengeExpiresAt = expiresAt
	}

	a.tel.decision(ctx, string(DecisionChallengeRequired))
	a.logger.InfoContext(ctx, "password accepted, second factor required",
		logger.Component("authenticator"),
		logger.AccountID(acc.ID),
		logger.Decision(string(DecisionChallengeRequired)),
	)
	return res, nil
}

func (a *Authenticator) rejectLogin(ctx context.Context, id uuid.UUID) error {
	a.tel.decision(ctx, "invalid_credentials")
	attrs := []any{logger.Component("authenticator"), logger.Event("login_failed")}
	if id != uuid.Nil {
		attrs = append(attrs, logger.AccountID(id))
	}
	a.logger.WarnContext(ctx, "login rejected", attrs...)
	return ErrInvalidCredentials
}

func (a *Authenticator) issueChallenge(ctx context.Context, id uuid.UUID) (string, time.Time, error) {
	token, err := uuid.NewRandom()
	if err != nil {
		return "", time.Time{}, errors.Join(ErrCryptoFailure, err)
	}
	ttl := a.cfg.ChallengeTTL
	if err := a.store.putChallenge(ctx, token.String(), id, ttl); err != nil {
		return "", time.Time{}, err
	}
	return token.String(), a.clock.Now().Add(ttl), nil
}

// equalizeTiming spends one password verification so unknown emails take
// as long as wrong passwords.
func (a *Authenticator) equalizeTiming(ctx context.Context, plaintext string) {
	if a.dummyHash == "" {
		return
	}
	_, _ = a.pool.Verify(ctx, plaintext, a.dummyHash, a.dummySalt)
}
