package totp

import (
	"crypto/rand"
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	Digits     = 6  // code length
	Period     = 30 // seconds per time step
	SecretSize = 20 // bytes, 160 bits (RFC 4226 section 4 recommendation)

	DefaultIssuer = "Securify"
)

// secretRegex matches base32: uppercase A-Z, digits 2-7, optional padding.
var secretRegex = regexp.MustCompile("^[A-Z2-7]+=*$")

// Secret is a shared TOTP secret and its provisioning URI.
type Secret struct {
	Base32     string `json:"base32"`
	OTPAuthURL string `json:"otpauth_url"`
}

// IsZero reports whether the secret is empty.
func (s Secret) IsZero() bool {
	return s.Base32 == "" && s.OTPAuthURL == ""
}

// Provider mints new secrets.
type Provider struct {
	issuer string
	rand   io.Reader
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithIssuer sets the issuer shown in authenticator apps.
func WithIssuer(issuer string) ProviderOption {
	return func(p *Provider) {
		if issuer = strings.TrimSpace(issuer); issuer != "" {
			p.issuer = issuer
		}
	}
}

// WithRandom replaces the entropy source.
func WithRandom(r io.Reader) ProviderOption {
	return func(p *Provider) {
		if r != nil {
			p.rand = r
		}
	}
}

// NewProvider returns a Provider issuing secrets under DefaultIssuer unless
// WithIssuer says otherwise.
func NewProvider(opts ...ProviderOption) *Provider {
	p := &Provider{issuer: DefaultIssuer, rand: rand.Reader}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Issuer returns the configured issuer.
func (p *Provider) Issuer() string {
	return p.issuer
}

// Generate mints a new random secret for the account identified by label
// (usually the email address). It has no side effects; callers persist the
// result.
func (p *Provider) Generate(label string) (Secret, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return Secret{}, ErrMissingLabel
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      p.issuer,
		AccountName: label,
		Period:      Period,
		SecretSize:  SecretSize,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
		Rand:        p.rand,
	})
	if err != nil {
		switch {
		case errors.Is(err, otp.ErrGenerateMissingIssuer):
			return Secret{}, ErrMissingIssuer
		case errors.Is(err, otp.ErrGenerateMissingAccountName):
			return Secret{}, ErrMissingLabel
		}
		return Secret{}, errors.Join(ErrCryptoFailure, err)
	}

	return Secret{Base32: key.Secret(), OTPAuthURL: key.URL()}, nil
}

// normalizeSecret upper-cases and trims a base32 secret and rejects anything
// that is not base32.
func normalizeSecret(secret string) (string, error) {
	secret = strings.ToUpper(strings.TrimSpace(secret))
	if secret == "" || !secretRegex.MatchString(secret) {
		return "", ErrInvalidSecret
	}
	return secret, nil
}
