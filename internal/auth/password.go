package auth

import (
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt reads at most 72 bytes of input; anything past that is ignored.
// The truncation is applied explicitly on both the hashing and the
// verification path so two passwords that agree in their first 72 UTF-8
// bytes compare as equal. This mirrors the documented limitation of the
// stored hashes and must not be changed without rehashing every account.
const maxPasswordBytes = 72

// ErrEmptyPassword is returned when an empty plaintext is hashed.
var ErrEmptyPassword = errors.New("password cannot be empty")

func truncatePassword(plain string) []byte {
	b := []byte(plain)
	if len(b) > maxPasswordBytes {
		return b[:maxPasswordBytes]
	}
	return b
}

// HashPassword returns a bcrypt hash using the given cost. The hash string
// embeds algorithm, cost and salt, so verification never needs the original
// cost parameter.
func HashPassword(plain string, cost int) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}
	b, err := bcrypt.GenerateFromPassword(truncatePassword(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares a bcrypt hash and a plain password.
// A malformed hash and a wrong password both come back false; the
// distinction is logged and never surfaced to the caller.
func VerifyPassword(hash, plain string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), truncatePassword(plain))
	if err != nil && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		log.Printf("password verify: %v", err)
	}
	return err == nil
}
