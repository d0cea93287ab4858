// Package crypto implements server-side password hashing and verification.
package crypto

import "golang.org/x/crypto/bcrypt"

// saltRounds is the bcrypt cost factor. Fixed so stored hashes stay
// comparable across deployments.
const saltRounds = 10

// HashPassword returns a salted bcrypt hash of the password.
func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), saltRounds)
}

// VerifyPassword reports whether password matches the stored hash.
func VerifyPassword(password string, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}
