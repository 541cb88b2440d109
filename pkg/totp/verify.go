package totp

import (
	"encoding/base32"
	"errors"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

var validateOpts = totp.ValidateOpts{
	Period:    Period,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// Verify reports whether code matches the secret for the time step containing
// now, or any step up to windowSteps before or after it. The window is
// inclusive: windowSteps=1 accepts T-1, T and T+1. Negative windows are
// treated as 0.
//
// A malformed or empty code returns false with no error. A secret that is not
// valid base32 returns ErrInvalidSecret.
func Verify(secret, code string, windowSteps int, now time.Time) (bool, error) {
	secret, err := decodableSecret(secret)
	if err != nil {
		return false, err
	}

	code = strings.TrimSpace(code)
	if !isNumericCode(code) {
		return false, nil
	}

	if windowSteps < 0 {
		windowSteps = 0
	}

	opts := validateOpts
	opts.Skew = uint(windowSteps)

	// pquerna/otp compares each candidate with subtle.ConstantTimeCompare.
	ok, err := totp.ValidateCustom(code, secret, now, opts)
	if err != nil {
		if errors.Is(err, otp.ErrValidateSecretInvalidBase32) {
			return false, errors.Join(ErrInvalidSecret, err)
		}
		return false, nil
	}
	return ok, nil
}

// GenerateCode returns the 6-digit code for the time step containing t.
func GenerateCode(secret string, t time.Time) (string, error) {
	secret, err := decodableSecret(secret)
	if err != nil {
		return "", err
	}

	code, err := totp.GenerateCodeCustom(secret, t, validateOpts)
	if err != nil {
		return "", errors.Join(ErrFailedToGenerateCode, err)
	}
	return code, nil
}

// decodableSecret normalizes secret and checks that it decodes to a
// non-empty key.
func decodableSecret(secret string) (string, error) {
	secret, err := normalizeSecret(secret)
	if err != nil {
		return "", err
	}

	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(strings.TrimRight(secret, "="))
	if err != nil || len(key) == 0 {
		return "", ErrInvalidSecret
	}
	return secret, nil
}

func isNumericCode(code string) bool {
	if len(code) != Digits {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
