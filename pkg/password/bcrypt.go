package password

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcryptSaltLen is the length of the "$2a$10$" prefix plus the 22-char encoded salt.
const bcryptSaltLen = 29

// Bcrypt implements Hasher using bcrypt. The cost is the work factor.
type Bcrypt struct {
	cost int
}

// NewBcrypt returns a bcrypt hasher. Costs below bcrypt.MinCost fall back to
// bcrypt.DefaultCost and costs above bcrypt.MaxCost are capped.
func NewBcrypt(cost int) *Bcrypt {
	switch {
	case cost < bcrypt.MinCost:
		cost = bcrypt.DefaultCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &Bcrypt{cost: cost}
}

// Cost returns the configured work factor.
func (b *Bcrypt) Cost() int {
	return b.cost
}

// Hash hashes plaintext. The returned salt is the salt segment bcrypt embedded
// into the hash.
func (b *Bcrypt) Hash(plaintext string) (string, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", "", ErrPasswordTooLong
		}
		return "", "", errors.Join(ErrCryptoFailure, err)
	}
	return string(hash), string(hash[:bcryptSaltLen]), nil
}

// Verify checks plaintext against hash. A non-empty salt must match the salt
// embedded in the hash.
func (b *Bcrypt) Verify(plaintext, hash, salt string) bool {
	if len(hash) < bcryptSaltLen {
		return false
	}
	if salt != "" && subtle.ConstantTimeCompare([]byte(salt), []byte(hash[:bcryptSaltLen])) != 1 {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
