package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2Params are the Argon2id cost parameters.
type Argon2Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Params follows the RFC 9106 second recommended option scaled
// down for interactive logins.
var DefaultArgon2Params = Argon2Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// Upper bounds accepted from a stored hash.
const (
	maxArgon2Memory     = 1 << 20 // KiB, 1 GiB
	maxArgon2Iterations = 64
	maxArgon2KeyLength  = 1024
)

// Argon2id implements Hasher using Argon2id. The salt is returned separately
// and the hash carries the parameters it was derived with:
//
//	$argon2id$v=19$m=65536,t=3,p=2$<base64 key>
type Argon2id struct {
	params Argon2Params
	rand   io.Reader
}

// Argon2Option configures an Argon2id hasher.
type Argon2Option func(*Argon2id)

// WithRandom replaces the salt entropy source.
func WithRandom(r io.Reader) Argon2Option {
	return func(a *Argon2id) {
		if r != nil {
			a.rand = r
		}
	}
}

// NewArgon2id returns an Argon2id hasher. Zero-valued params fall back to
// DefaultArgon2Params field by field.
func NewArgon2id(params Argon2Params, opts ...Argon2Option) *Argon2id {
	if params.Memory == 0 {
		params.Memory = DefaultArgon2Params.Memory
	}
	if params.Iterations == 0 {
		params.Iterations = DefaultArgon2Params.Iterations
	}
	if params.Parallelism == 0 {
		params.Parallelism = DefaultArgon2Params.Parallelism
	}
	if params.SaltLength == 0 {
		params.SaltLength = DefaultArgon2Params.SaltLength
	}
	if params.KeyLength == 0 {
		params.KeyLength = DefaultArgon2Params.KeyLength
	}

	a := &Argon2id{params: params, rand: rand.Reader}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Argon2id) Hash(plaintext string) (string, string, error) {
	salt := make([]byte, a.params.SaltLength)
	if _, err := io.ReadFull(a.rand, salt); err != nil {
		return "", "", errors.Join(ErrCryptoFailure, err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, a.params.Iterations, a.params.Memory, a.params.Parallelism, a.params.KeyLength)

	hash := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s",
		argon2.Version,
		a.params.Memory,
		a.params.Iterations,
		a.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(key),
	)
	return hash, base64.RawStdEncoding.EncodeToString(salt), nil
}

func (a *Argon2id) Verify(plaintext, hash, salt string) bool {
	parts := strings.Split(hash, "$")
	if len(parts) != 5 || parts[1] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return false
	}
	// argon2.IDKey panics on t<1 or p<1; m is bounded so a tampered hash
	// cannot force an unbounded allocation.
	if iterations < 1 || iterations > maxArgon2Iterations ||
		parallelism < 1 ||
		memory < 8*uint32(parallelism) || memory > maxArgon2Memory {
		return false
	}

	expected, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(expected) == 0 || len(expected) > maxArgon2KeyLength {
		return false
	}
	rawSalt, err := base64.RawStdEncoding.DecodeString(salt)
	if err != nil || len(rawSalt) == 0 {
		return false
	}

	computed := argon2.IDKey([]byte(plaintext), rawSalt, iterations, memory, parallelism, uint32(len(expected)))
	return subtle.ConstantTimeCompare(expected, computed) == 1
}
