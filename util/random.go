package util

import (
	"crypto/rand"
	"encoding/base64"
)

const (
	SessionTokenBytes   = 32
	ApiKeyMaterialBytes = 24
	ChallengeMinBytes   = 16
)

// GenerateSessionToken returns an opaque single-use ceremony session token.
func GenerateSessionToken() (string, error) {
	return randomURLSafe(SessionTokenBytes)
}

// GenerateApiKeyMaterial returns the random material part of a new api key.
func GenerateApiKeyMaterial() (string, error) {
	return randomURLSafe(ApiKeyMaterialBytes)
}

func randomURLSafe(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
