// Package totp issues and verifies RFC 6238 time-based one-time passwords.
//
// A Provider mints 160-bit shared secrets and renders them as otpauth://
// provisioning URIs for authenticator apps. Verify checks a submitted 6-digit
// code against a secret inside a caller-chosen window of 30-second steps, so
// first-time enrollment can be more tolerant of clock drift than routine
// logins:
//
//	p := totp.NewProvider(totp.WithIssuer("Acme"))
//	secret, err := p.Generate("alice@example.com")
//	// show secret.OTPAuthURL as a QR code, persist secret
//
//	ok, err := totp.Verify(secret.Base32, "123456", 2, time.Now())
//
// Verify never reports a malformed code as an error; it simply does not match.
// A secret that is not valid base32 fails with ErrInvalidSecret.
//
// Cipher encrypts secrets with AES-256-GCM before they are written to a
// datastore. The key comes from the TOTP_ENCRYPTION_KEY environment variable
// (base64, 32 bytes); the cmd sub-directory prints a fresh one.
//
// Code generation and validation are delegated to github.com/pquerna/otp.
package totp
