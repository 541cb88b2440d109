package account

import "errors"

// Authentication and input errors.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrCryptoFailure      = errors.New("cryptographic operation failed")
	ErrInvalidSecret      = errors.New("stored TOTP secret is invalid")
	ErrEncodingFailure    = errors.New("failed to render enrollment image")
)

// Store errors.
var (
	ErrNotFound         = errors.New("account not found")
	ErrDuplicateKey     = errors.New("account already exists")
	ErrEmailTaken       = errors.New("email is already registered")
	ErrUsernameTaken    = errors.New("username is already taken")
	ErrStoreUnavailable = errors.New("account store unavailable")
	ErrVersionConflict  = errors.New("account version conflict")
)

// Two-factor state machine errors.
var (
	ErrNotEnrolled         = errors.New("two-factor authentication is not set up")
	ErrTwoFactorNotEnabled = errors.New("two-factor authentication is not enabled")
	ErrConcurrentUpdate    = errors.New("account was modified concurrently")
)

// Challenge errors.
var (
	ErrChallengeNotFound      = errors.New("login challenge not found or expired")
	ErrChallengesNotSupported = errors.New("no pending challenge store configured")
)
