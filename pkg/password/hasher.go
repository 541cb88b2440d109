package password

// Hasher derives and checks one-way password hashes.
type Hasher interface {
	// Hash returns the derived hash and the salt used to compute it.
	Hash(plaintext string) (hash, salt string, err error)
	// Verify reports whether plaintext matches hash computed with salt.
	// Malformed inputs simply fail verification.
	Verify(plaintext, hash, salt string) bool
}
