package port

// PasswordHasher derives and verifies salted password digests using the
// configured algorithm and iteration count.
type PasswordHasher interface {
	// Hash derives the hex-encoded digest for the password and salt.
	Hash(password string, salt string) (string, error)
	// Verify compares password+salt against the expected digest in constant time.
	Verify(password string, salt string, expected string) bool
	// NewSalt produces a fresh hex-encoded salt from a CSPRNG.
	NewSalt() (string, error)
}

// SessionTokenSource mints opaque session identifiers.
type SessionTokenSource interface {
	NewSessionToken() (string, error)
}
