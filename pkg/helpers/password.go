package helpers

import "golang.org/x/crypto/bcrypt"

// bcryptCost pins the work factor so a library default bump cannot silently
// change hashing behavior between deploys.
const bcryptCost = 10

// HashPassword derives the stored credential from a plaintext password.
// Callers outside the user directory should never need this directly.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword reports whether plain matches the stored hash.
// Malformed hashes simply fail the comparison.
func CompareHashAndPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
