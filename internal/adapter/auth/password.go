package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher hashes passwords with bcrypt.
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher validates cost; 0 selects bcrypt.DefaultCost.
func NewBcryptHasher(cost int) (BcryptHasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > 14 {
		return BcryptHasher{}, fmt.Errorf("op=auth.new_hasher: bcrypt cost out of range: %d", cost)
	}
	return BcryptHasher{Cost: cost}, nil
}

// Hash returns the bcrypt hash of password.
func (h BcryptHasher) Hash(password string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", fmt.Errorf("op=auth.hash: %w", err)
	}
	return string(out), nil
}

// Verify reports whether password matches hash.
func (h BcryptHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
