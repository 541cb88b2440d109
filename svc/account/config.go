package account

import (
	"fmt"
	"strings"
	"time"

	"github.com/shubhamtiwari158/securify/pkg/password"
	"github.com/shubhamtiwari158/securify/pkg/totp"
)

// Password hashing algorithms accepted in Config.PasswordAlgorithm.
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// Config holds the tunables shared by Authenticator and Enrollment.
type Config struct {
	Issuer           string        `env:"TWOFA_ISSUER" envDefault:"Securify"`
	ConfirmWindow    int           `env:"TWOFA_CONFIRM_WINDOW" envDefault:"2"`
	LoginWindow      int           `env:"TWOFA_LOGIN_WINDOW" envDefault:"1"`
	ChallengeTTL     time.Duration `env:"TWOFA_CHALLENGE_TTL" envDefault:"5m"`
	SecretOnRegister bool          `env:"TWOFA_SECRET_ON_REGISTER" envDefault:"true"`
	StoreTimeout     time.Duration `env:"ACCOUNT_STORE_TIMEOUT" envDefault:"5s"`

	PasswordAlgorithm string `env:"PASSWORD_ALGORITHM" envDefault:"bcrypt"`
	BcryptCost        int    `env:"PASSWORD_BCRYPT_COST" envDefault:"10"`
	HashWorkers       int    `env:"PASSWORD_HASH_WORKERS" envDefault:"4"`
}

// DefaultConfig mirrors the envDefault tags.
func DefaultConfig() Config {
	return Config{
		Issuer:            totp.DefaultIssuer,
		ConfirmWindow:     2,
		LoginWindow:       1,
		ChallengeTTL:      5 * time.Minute,
		SecretOnRegister:  true,
		StoreTimeout:      5 * time.Second,
		PasswordAlgorithm: AlgorithmBcrypt,
		BcryptCost:        10,
		HashWorkers:       4,
	}
}

// Hasher builds the password hasher named by PasswordAlgorithm.
func (c Config) Hasher() (password.Hasher, error) {
	switch strings.ToLower(strings.TrimSpace(c.PasswordAlgorithm)) {
	case "", AlgorithmBcrypt:
		return password.NewBcrypt(c.BcryptCost), nil
	case AlgorithmArgon2id:
		return password.NewArgon2id(password.DefaultArgon2Params), nil
	default:
		return nil, fmt.Errorf("unknown password algorithm %q", c.PasswordAlgorithm)
	}
}

// Options turns the config into service options.
func (c Config) Options() ([]Option, error) {
	hasher, err := c.Hasher()
	if err != nil {
		return nil, err
	}
	pool, err := password.NewPool(hasher, max(c.HashWorkers, 1))
	if err != nil {
		return nil, err
	}
	return []Option{
		WithConfig(c),
		WithPasswordPool(pool),
		WithSecretProvider(totp.NewProvider(totp.WithIssuer(c.Issuer))),
	}, nil
}
