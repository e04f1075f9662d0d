package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Secur3Pass!", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotContains(t, hash, "Secur3Pass!")

	assert.True(t, VerifyPassword(hash, "Secur3Pass!"))
	assert.False(t, VerifyPassword(hash, "wrong-password"))
}

func TestHashPasswordEmptyRejected(t *testing.T) {
	_, err := HashPassword("", bcrypt.MinCost)
	require.ErrorIs(t, err, ErrEmptyPassword)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	// A broken stored hash must read as a plain mismatch, not an error.
	assert.False(t, VerifyPassword("not-a-bcrypt-hash", "whatever"))
	assert.False(t, VerifyPassword("", "whatever"))
}

func TestVerifySelfDescribingCost(t *testing.T) {
	// The stored hash embeds its cost, so verification works without it.
	hash, err := HashPassword("some-password", bcrypt.MinCost+2)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "some-password"))
}

func TestPasswordTruncatedAt72Bytes(t *testing.T) {
	prefix := strings.Repeat("a", 72)
	long := prefix + strings.Repeat("b", 18)           // 90 chars
	alteredTail := prefix + strings.Repeat("c", 18)    // same first 72 bytes
	alteredHead := "x" + strings.Repeat("a", 71) + "b" // differs inside 72

	hash, err := HashPassword(long, bcrypt.MinCost)
	require.NoError(t, err)

	// Documented bcrypt limitation: differences past byte 72 are invisible.
	assert.True(t, VerifyPassword(hash, long))
	assert.True(t, VerifyPassword(hash, alteredTail))
	assert.True(t, VerifyPassword(hash, prefix))

	assert.False(t, VerifyPassword(hash, alteredHead))
}

func TestPasswordsDifferingWithin72Bytes(t *testing.T) {
	hash, err := HashPassword("first-password", bcrypt.MinCost)
	require.NoError(t, err)
	assert.False(t, VerifyPassword(hash, "second-password"))
}
