// Package hash wraps bcrypt for password storage. The work factor is fixed
// at construction time, the salt is random per call.
package hash

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashBytes), nil
}

// CheckPassword verifies password against a stored digest in constant time.
// A mismatch returns (false, nil); a digest that bcrypt cannot parse is a
// hard error so a corrupted column never reads as "wrong password".
func CheckPassword(digest, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("malformed password digest: %w", err)
}
