package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword creates a bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash. An empty hash
// (an account without a local password) never matches.
func CheckPassword(password, hash string) bool {
	if hash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// dummyHash is compared against when a username does not exist, so that
// unknown and known users take similar time to reject.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("yatube-dummy-password"), bcrypt.DefaultCost)

// CheckMissingUser does the work of CheckPassword for a user that does not exist.
func CheckMissingUser(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
