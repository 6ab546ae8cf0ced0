package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/sha3"
)

const (
	saltLength = 16
	keyLength  = 32

	// MinHashIterations and MaxHashIterations bound the configurable PBKDF2
	// iteration count. The upper bound is exclusive.
	MinHashIterations = 1000
	MaxHashIterations = 1_000_000
)

var (
	// ErrUnsupportedAlgorithm indicates the configured hash algorithm name is unknown.
	ErrUnsupportedAlgorithm = errors.New("security: unsupported hash algorithm")
	// ErrInvalidIterations indicates the iteration count is outside the accepted bounds.
	ErrInvalidIterations = errors.New("security: iteration count out of bounds")
)

// HashingSettings specify the key-derivation algorithm and work factor.
type HashingSettings struct {
	Algorithm  string
	Iterations int
}

// PasswordHasher derives PBKDF2-HMAC digests with per-user salts.
type PasswordHasher struct {
	settings HashingSettings
	newHash  func() hash.Hash
}

// NewPasswordHasher validates the settings and builds a hasher. An unknown
// algorithm name or an out-of-bounds iteration count is a configuration-time
// error; the hasher never fails on these at runtime.
func NewPasswordHasher(settings HashingSettings) (*PasswordHasher, error) {
	newHash, err := hashConstructor(settings.Algorithm)
	if err != nil {
		return nil, err
	}

	if settings.Iterations < MinHashIterations || settings.Iterations >= MaxHashIterations {
		return nil, fmt.Errorf("%w: %d not in [%d, %d)",
			ErrInvalidIterations, settings.Iterations, MinHashIterations, MaxHashIterations)
	}

	return &PasswordHasher{settings: settings, newHash: newHash}, nil
}

// Settings returns the hasher's configured algorithm and iteration count.
func (h *PasswordHasher) Settings() HashingSettings {
	return h.settings
}

// Hash derives the hex-encoded digest for the password and salt.
func (h *PasswordHasher) Hash(password string, salt string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("security: password is required")
	}
	if salt == "" {
		return "", fmt.Errorf("security: salt is required")
	}

	sum := pbkdf2.Key([]byte(password), []byte(salt), h.settings.Iterations, keyLength, h.newHash)
	return hex.EncodeToString(sum), nil
}

// Verify compares the password+salt derivation against the expected digest
// using a constant-time comparison.
func (h *PasswordHasher) Verify(password string, salt string, expected string) bool {
	if password == "" || expected == "" {
		return false
	}

	computed, err := h.Hash(password, salt)
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(computed), []byte(expected)) == 1
}

// NewSalt produces a fresh hex-encoded salt from a CSPRNG. A new salt is
// generated for every password set: registration and every password change.
func (h *PasswordHasher) NewSalt() (string, error) {
	buf := make([]byte, saltLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("security: generate salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func hashConstructor(algorithm string) (func() hash.Hash, error) {
	switch algorithm {
	case "sha256":
		return sha256.New, nil
	case "sha512":
		return sha512.New, nil
	case "sha3-256":
		return sha3.New256, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algorithm)
	}
}
