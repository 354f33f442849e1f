package util

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSessionToken(t *testing.T) {
	token, err := GenerateSessionToken()
	assert.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(token)
	assert.NoError(t, err)
	assert.Len(t, raw, SessionTokenBytes)
	assert.GreaterOrEqual(t, len(raw), ChallengeMinBytes)

	other, err := GenerateSessionToken()
	assert.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestGenerateApiKeyMaterial(t *testing.T) {
	material, err := GenerateApiKeyMaterial()
	assert.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(material)
	assert.NoError(t, err)
	assert.Len(t, raw, ApiKeyMaterialBytes)
}
