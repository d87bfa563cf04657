// Package credential generates and hashes account secrets.
package credential

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
)

// Argon2id parameters
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// Credentials are the secrets created for a new account.
// Password is the plaintext that gets mailed to the user; it is never stored.
type Credentials struct {
	Salt            string
	Password        string
	ActivationToken string
}

// Generator produces random credentials.
type Generator interface {
	Generate() (Credentials, error)
}

// Hasher derives and checks stored password digests.
type Hasher interface {
	Hash(password, salt string) string
	Verify(password, salt, digest string) bool
}

type uuidGenerator struct{}

// NewGenerator returns a Generator backed by random (v4) UUIDs.
func NewGenerator() Generator {
	return uuidGenerator{}
}

func (uuidGenerator) Generate() (Credentials, error) {
	salt, err := uuid.NewRandom()
	if err != nil {
		return Credentials{}, fmt.Errorf("generate salt: %w", err)
	}
	password, err := uuid.NewRandom()
	if err != nil {
		return Credentials{}, fmt.Errorf("generate password: %w", err)
	}
	token, err := uuid.NewRandom()
	if err != nil {
		return Credentials{}, fmt.Errorf("generate activation token: %w", err)
	}
	return Credentials{
		Salt:            salt.String(),
		Password:        password.String(),
		ActivationToken: token.String(),
	}, nil
}

// NewID returns a new random account/profile identifier.
func NewID() string {
	return uuid.NewString()
}

type argonHasher struct{}

// NewHasher returns an Argon2id Hasher.
func NewHasher() Hasher {
	return argonHasher{}
}

// Hash is deterministic for equal inputs.
func (argonHasher) Hash(password, salt string) string {
	key := argon2.IDKey([]byte(password), []byte(salt), argonTime, argonMemory, argonThreads, argonKeyLen)
	return hex.EncodeToString(key)
}

func (h argonHasher) Verify(password, salt, digest string) bool {
	return ConstantTimeEqual(h.Hash(password, salt), digest)
}

// ConstantTimeEqual compares two strings in constant time
func ConstantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
