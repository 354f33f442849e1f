package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRemainingLifetime(t *testing.T) {
	ttl := 120 * time.Second

	t.Run("tombstone tracks the session age", func(t *testing.T) {
		issuedAt := time.Now().Add(-90 * time.Second)
		remaining := remainingLifetime(ttl, issuedAt)
		assert.LessOrEqual(t, remaining, 30*time.Second)
		assert.Greater(t, remaining, 25*time.Second)
	})

	t.Run("fresh session keeps close to the full ttl", func(t *testing.T) {
		remaining := remainingLifetime(ttl, time.Now())
		assert.Greater(t, remaining, 115*time.Second)
	})

	t.Run("session consumed at the wire never yields a dead key", func(t *testing.T) {
		issuedAt := time.Now().Add(-2 * ttl)
		assert.Equal(t, time.Second, remainingLifetime(ttl, issuedAt))
	})
}
