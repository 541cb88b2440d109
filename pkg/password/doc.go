// Package password hashes and verifies user passwords.
//
// Two Hasher implementations are provided. Bcrypt is the default and mirrors
// how accounts were historically stored: the salt is embedded in the hash and
// also returned separately so it can be persisted alongside it. Argon2id keeps
// the salt genuinely separate and encodes its cost parameters into the hash
// string, so the work factor can be raised later without breaking existing
// hashes.
//
// Hashing is deliberately CPU-expensive. Pool bounds how many hash operations
// run at once so a burst of logins cannot starve the rest of the process:
//
//	pool := password.NewPool(password.NewBcrypt(12), 4)
//	hash, salt, err := pool.Hash(ctx, "s3cret!pass")
//	ok, err := pool.Verify(ctx, "s3cret!pass", hash, salt)
//
// All comparisons are constant time. Hash fails with ErrCryptoFailure only when
// the random source or the primitive itself fails.
package password
