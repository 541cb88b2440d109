package totp

import "errors"

var (
	ErrInvalidSecret              = errors.New("invalid TOTP secret")
	ErrMissingLabel               = errors.New("missing account label")
	ErrMissingIssuer              = errors.New("missing issuer")
	ErrCryptoFailure              = errors.New("failed to generate TOTP secret")
	ErrFailedToGenerateCode       = errors.New("failed to generate TOTP code")
	ErrFailedToEncryptSecret      = errors.New("failed to encrypt TOTP secret")
	ErrFailedToDecryptSecret      = errors.New("failed to decrypt TOTP secret")
	ErrInvalidCipherTooShort      = errors.New("cipher text too short")
	ErrInvalidEncryptionKeyLength = errors.New("invalid encryption key length")
	ErrFailedToLoadEncryptionKey  = errors.New("failed to load encryption key")
)
