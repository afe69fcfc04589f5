package utils

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and verifies passwords. Isolated behind an interface
// so the algorithm and cost factor stay swappable.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(password, hash string) bool
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a bcrypt-backed password hasher
func NewBcryptHasher(cost int) PasswordHasher {
	return bcryptHasher{cost: cost}
}

// Hash hashes a password using bcrypt
func (h bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// Compare compares a password with a hash. Timing-safe comparison is
// delegated to bcrypt.
func (h bcryptHasher) Compare(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
