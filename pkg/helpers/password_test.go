package helpers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, strings.HasPrefix(hash, "$2"))

	assert.True(t, CompareHashAndPassword(hash, "s3cret-pass"))
	assert.False(t, CompareHashAndPassword(hash, "wrong-pass"))
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("same-input")
	require.NoError(t, err)
	h2, err := HashPassword("same-input")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestCompareHashAndPassword_BadHash(t *testing.T) {
	t.Parallel()

	assert.False(t, CompareHashAndPassword("not-a-bcrypt-hash", "anything"))
}
