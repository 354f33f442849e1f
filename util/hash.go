package util

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// HashApiKey digests the key before bcrypt: bcrypt caps its input at 72
// bytes and the full {tenant}:{type}:{material} string exceeds that for
// long tenant ids.
func HashApiKey(key string) (string, error) {
	sum := sha256.Sum256([]byte(key))
	hash, err := bcrypt.GenerateFromPassword(sum[:], bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func VerifyApiKey(key string, hash string) bool {
	sum := sha256.Sum256([]byte(key))
	err := bcrypt.CompareHashAndPassword([]byte(hash), sum[:])
	if err != nil {
		return false
	}
	return true
}

// HashAlias digests an alias for tenants with alias hashing enabled.
func HashAlias(alias string) string {
	sum := sha256.Sum256([]byte(alias))
	return hex.EncodeToString(sum[:])
}
