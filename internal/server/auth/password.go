// Package auth provides credential hashing and session-token primitives for
// the server.
package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost follows the cost the stored hashes were produced with.
const bcryptCost = 10

// HashPassword produces a salted one-way bcrypt hash of the password.
// The per-hash salt is embedded in the returned string.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
// Comparison is constant-time inside bcrypt.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
