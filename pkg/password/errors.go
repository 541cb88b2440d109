package password

import "errors"

var (
	ErrCryptoFailure    = errors.New("password hashing primitive failed")
	ErrPasswordTooLong  = errors.New("password exceeds the maximum length supported by the hasher")
	ErrInvalidPoolSize  = errors.New("hash pool size must be greater than 0")
	ErrPoolWaitCanceled = errors.New("gave up waiting for a free hashing slot")
)
