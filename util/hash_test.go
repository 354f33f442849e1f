package util

import (
	"github.com/stretchr/testify/assert"

	"testing"
)

func TestApiKeyHashTable(t *testing.T) {
	key := "acme:secret:abcdefgh12345678"
	hash, err := HashApiKey(key)
	assert.NoError(t, err)

	tests := []struct {
		name     string
		key      string
		expected bool
	}{
		{"hash matches correct key", key, true},
		{"hash does not match different key", "acme:secret:abcdefgh12345679", false},
		{"hash does not match empty key", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match := VerifyApiKey(tt.key, hash)
			assert.Equal(t, tt.expected, match)
		})
	}
}

func TestApiKeyHashLongKey(t *testing.T) {
	// bcrypt alone rejects inputs over 72 bytes; keys for long tenant ids
	// (a uuid app id pushes the full key past 80 bytes) must still hash.
	key := "123e4567-e89b-12d3-a456-426614174000-and-more:secret:abcdefgh1234567890abcdefgh123456"
	assert.Greater(t, len(key), 72)

	hash, err := HashApiKey(key)
	assert.NoError(t, err)
	assert.True(t, VerifyApiKey(key, hash))
	assert.False(t, VerifyApiKey(key+"x", hash))
}

func TestHashAlias(t *testing.T) {
	first := HashAlias("alice@example.com")
	second := HashAlias("alice@example.com")
	other := HashAlias("bob@example.com")

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
	assert.Len(t, first, 64)
}
