package account

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/shubhamtiwari158/securify/pkg/logger"
	"github.com/shubhamtiwari158/securify/pkg/totp"
)

const (
	purposeConfirm = "confirm"
	purposeLogin   = "login"
)

// Enrollment manages the two-factor lifecycle of accounts.
type Enrollment struct {
	core
}

// NewEnrollment creates an Enrollment over store.
func NewEnrollment(store Store, opts ...Option) *Enrollment {
	return &Enrollment{core: newCore(store, opts)}
}

// Status returns the current two-factor state of the account.
func (e *Enrollment) Status(ctx context.Context, id uuid.UUID) (State, error) {
	acc, err := e.store.findByID(ctx, id)
	if err != nil {
		return "", err
	}
	return acc.TwoFactorState(), nil
}

// BeginEnrollment mints a new secret for the account, replacing any existing
// one, and moves it to StatePendingVerification. Re-enrolling an Enabled
// account switches enforcement off until the new secret is confirmed.
func (e *Enrollment) BeginEnrollment(ctx context.Context, id uuid.UUID) (_ totp.Secret, err error) {
	ctx, span := e.tel.start(ctx, "Enrollment.BeginEnrollment", attribute.String("account.id", id.String()))
	defer func() { e.tel.end(span, err) }()

	acc, err := e.store.findByID(ctx, id)
	if err != nil {
		return totp.Secret{}, err
	}

	from := acc.TwoFactorState()
	to, err := from.Next(EventBegin)
	if err != nil {
		return totp.Secret{}, err
	}

	secret, err := e.provider.Generate(acc.Email)
	if err != nil {
		e.logger.ErrorContext(ctx, "totp secret generation failed",
			logger.Component("enrollment"),
			logger.AccountID(id),
			logger.Error(err),
		)
		return totp.Secret{}, errors.Join(ErrCryptoFailure, err)
	}

	_, err = e.store.update(ctx, id, Patch{
		TOTPSecret:       &secret,
		TwoFactorEnabled: boolPtr(false),
		TOTPVerified:     boolPtr(false),
		IfVersion:        acc.Version,
		UpdatedAt:        e.clock.Now().UTC(),
	})
	if err != nil {
		return totp.Secret{}, e.writeError(ctx, id, err)
	}

	if from == StateEnabled {
		e.logger.WarnContext(ctx, "re-enrollment replaced an active secret, two-factor is off until confirmed",
			logger.Component("enrollment"),
			logger.AccountID(id),
		)
	}
	e.logTransition(ctx, id, from, to)
	return secret, nil
}

// ConfirmEnrollment checks code against the stored secret with the wider
// confirmation window and enables two-factor on success. A wrong code
// returns false and changes nothing. It fails with ErrNotEnrolled when the
// account has no secret.
func (e *Enrollment) ConfirmEnrollment(ctx context.Context, id uuid.UUID, code string) (ok bool, err error) {
	ctx, span := e.tel.start(ctx, "Enrollment.ConfirmEnrollment", attribute.String("account.id", id.String()))
	defer func() { e.tel.end(span, err) }()

	acc, err := e.store.findByID(ctx, id)
	if err != nil {
		return false, err
	}

	from := acc.TwoFactorState()
	to, err := from.Next(EventConfirm)
	if err != nil {
		return false, err
	}

	ok, err = e.verify(ctx, acc, code, e.cfg.ConfirmWindow, purposeConfirm)
	if err != nil || !ok {
		return false, err
	}

	if from == StateEnabled {
		return true, nil
	}

	_, err = e.store.update(ctx, id, Patch{
		TwoFactorEnabled: boolPtr(true),
		TOTPVerified:     boolPtr(true),
		IfVersion:        acc.Version,
		UpdatedAt:        e.clock.Now().UTC(),
	})
	if err != nil {
		return false, e.writeError(ctx, id, err)
	}

	e.logTransition(ctx, id, from, to)
	return true, nil
}

// ValidateLogin checks a login-time code with the narrower window. The
// account must be in StateEnabled, otherwise ErrTwoFactorNotEnabled is
// returned. It never changes state.
func (e *Enrollment) ValidateLogin(ctx context.Context, id uuid.UUID, code string) (bool, error) {
	ok, _, err := e.validateLogin(ctx, id, code)
	return ok, err
}

func (e *Enrollment) validateLogin(ctx context.Context, id uuid.UUID, code string) (ok bool, acc *Account, err error) {
	ctx, span := e.tel.start(ctx, "Enrollment.ValidateLogin", attribute.String("account.id", id.String()))
	defer func() { e.tel.end(span, err) }()

	acc, err = e.store.findByID(ctx, id)
	if err != nil {
		return false, nil, err
	}
	if _, err := acc.TwoFactorState().Next(EventValidate); err != nil {
		return false, nil, err
	}

	ok, err = e.verify(ctx, acc, code, e.cfg.LoginWindow, purposeLogin)
	if err != nil {
		return false, nil, err
	}
	return ok, acc, nil
}

// Disable turns two-factor enforcement off and keeps the secret, so a later
// ConfirmEnrollment re-enables it with the same authenticator entry.
// Disabling an already disabled account is a no-op.
func (e *Enrollment) Disable(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := e.tel.start(ctx, "Enrollment.Disable", attribute.String("account.id", id.String()))
	defer func() { e.tel.end(span, err) }()

	acc, err := e.store.findByID(ctx, id)
	if err != nil {
		return err
	}

	from := acc.TwoFactorState()
	to, err := from.Next(EventDisable)
	if err != nil {
		return err
	}
	if from == to {
		return nil
	}

	_, err = e.store.update(ctx, id, Patch{
		TwoFactorEnabled: boolPtr(false),
		IfVersion:        acc.Version,
		UpdatedAt:        e.clock.Now().UTC(),
	})
	if err != nil {
		return e.writeError(ctx, id, err)
	}

	e.logTransition(ctx, id, from, to)
	return nil
}

// CompleteChallenge finishes a login started by Authenticate. The token is
// consumed only when the code is valid, so the user may retry a mistyped
// code until the challenge expires.
func (e *Enrollment) CompleteChallenge(ctx context.Context, token, code string) (_ *Account, err error) {
	if e.pending == nil {
		return nil, ErrChallengesNotSupported
	}

	ctx, span := e.tel.start(ctx, "Enrollment.CompleteChallenge")
	defer func() { e.tel.end(span, err) }()

	id, err := e.store.getChallenge(ctx, token)
	if err != nil {
		return nil, err
	}

	ok, acc, err := e.validateLogin(ctx, id, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	consumed, err := e.store.consumeChallenge(ctx, token)
	if err != nil {
		return nil, err
	}
	if !consumed {
		// Another request completed the same challenge first.
		return nil, ErrChallengeNotFound
	}
	return acc, nil
}

func (e *Enrollment) verify(ctx context.Context, acc *Account, code string, window int, purpose string) (bool, error) {
	ok, err := totp.Verify(acc.TOTPSecret.Base32, code, window, e.clock.Now())
	if err != nil {
		e.tel.verification(ctx, purpose, "invalid_secret")
		e.logger.ErrorContext(ctx, "stored totp secret is invalid",
			logger.Component("enrollment"),
			logger.AccountID(acc.ID),
			logger.Error(err),
		)
		return false, errors.Join(ErrInvalidSecret, err)
	}

	if !ok {
		e.tel.verification(ctx, purpose, "rejected")
		e.logger.WarnContext(ctx, "totp code rejected",
			logger.Component("enrollment"),
			logger.Event(purpose+"_failed"),
			logger.AccountID(acc.ID),
		)
		return false, nil
	}

	e.tel.verification(ctx, purpose, "accepted")
	return true, nil
}

func (e *Enrollment) writeError(ctx context.Context, id uuid.UUID, err error) error {
	if errors.Is(err, ErrVersionConflict) {
		e.logger.WarnContext(ctx, "concurrent two-factor update",
			logger.Component("enrollment"),
			logger.AccountID(id),
		)
		return errors.Join(ErrConcurrentUpdate, err)
	}
	if !errors.Is(err, ErrNotFound) {
		e.logger.ErrorContext(ctx, "failed to update account",
			logger.Component("enrollment"),
			logger.AccountID(id),
			logger.Error(err),
		)
	}
	return err
}

func (e *Enrollment) logTransition(ctx context.Context, id uuid.UUID, from, to State) {
	e.logger.InfoContext(ctx, "two-factor state changed",
		logger.Component("enrollment"),
		logger.AccountID(id),
		slog.String("from", from.String()),
		logger.State(to.String()),
	)
}
