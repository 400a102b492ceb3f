// Package auth hashes and verifies user passwords.
//
// New hashes use the configured scheme (bcrypt or argon2id); verification
// recognizes either encoding, so switching PASSWORD_HASH does not lock out
// existing users. Both schemes embed a random per-hash salt and compare in
// constant time.
package auth

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/matthewhartstonge/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	SchemeBcrypt   = "bcrypt"
	SchemeArgon2id = "argon2id"
)

// ValidateScheme reports whether scheme names a supported hash scheme.
func ValidateScheme(scheme string) error {
	switch scheme {
	case SchemeBcrypt, SchemeArgon2id:
		return nil
	}
	return fmt.Errorf("unknown password hash scheme %q", scheme)
}

var argon2Prefix = []byte("$argon2")

// ErrPasswordTooLong is returned by bcrypt hashing for passwords over 72 bytes.
var ErrPasswordTooLong = errors.New("password too long")

// Hasher hashes passwords and checks candidates against stored hashes.
type Hasher interface {
	Hash(password string) ([]byte, error)
	Verify(hash []byte, password string) (bool, error)
}

// PasswordHasher implements Hasher for the bcrypt and argon2id schemes.
type PasswordHasher struct {
	scheme     string
	bcryptCost int
	argon      argon2.Config
}

// NewHasher returns a hasher producing scheme hashes. An unknown scheme is an error.
func NewHasher(scheme string) (*PasswordHasher, error) {
	if err := ValidateScheme(scheme); err != nil {
		return nil, err
	}
	return &PasswordHasher{
		scheme:     scheme,
		bcryptCost: bcrypt.DefaultCost,
		argon:      argon2.DefaultConfig(),
	}, nil
}

func (h *PasswordHasher) Hash(password string) ([]byte, error) {
	if h.scheme == SchemeArgon2id {
		return h.argon.HashEncoded([]byte(password))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, ErrPasswordTooLong
	}
	return hash, err
}

// Verify reports whether password matches hash. A mismatch is (false, nil);
// an error means the stored hash could not be parsed.
func (h *PasswordHasher) Verify(hash []byte, password string) (bool, error) {
	if bytes.HasPrefix(hash, argon2Prefix) {
		return argon2.VerifyEncoded([]byte(password), hash)
	}

	err := bcrypt.CompareHashAndPassword(hash, []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}
