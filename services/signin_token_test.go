package services

import (
	"testing"
	"time"

	"passkey_api_ms/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenService(features *domain.AppFeature) ISigninTokenService {
	return NewSigninTokenService(
		[]byte("test-secret"),
		"passkey_api_ms",
		2*time.Minute,
		nil,
		&fakeFeatureService{features: features},
		NewNopEventService(),
	)
}

func TestGenerateSigninToken(t *testing.T) {
	svc := newTokenService(&domain.AppFeature{Tenant: "acme", IsGenerateSignInTokenEndpointEnabled: true})

	resp, err := svc.Generate("acme", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.True(t, resp.ExpiresAt.After(time.Now()))

	token, err := jwt.Parse(resp.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "alice", claims["sub"])
	assert.Equal(t, "acme", claims["aud"])
	assert.Equal(t, "sign_in", claims["purpose"])
	assert.NotEmpty(t, claims["jti"])
}

func TestGenerateSigninToken_FeatureGated(t *testing.T) {
	svc := newTokenService(&domain.AppFeature{Tenant: "acme"})

	_, err := svc.Generate("acme", "alice")
	assert.Equal(t, ErrTokenEndpointDisabled, err)
}

func TestVerifySigninToken_Rejections(t *testing.T) {
	features := &domain.AppFeature{Tenant: "acme", IsGenerateSignInTokenEndpointEnabled: true}
	svc := newTokenService(features)

	resp, err := svc.Generate("acme", "alice")
	require.NoError(t, err)

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.Verify("acme", "not.a.jwt")
		assert.Equal(t, ErrInvalidToken, err)
	})

	t.Run("tampered signature", func(t *testing.T) {
		_, err := svc.Verify("acme", resp.Token+"x")
		assert.Equal(t, ErrInvalidToken, err)
	})

	t.Run("wrong tenant audience", func(t *testing.T) {
		_, err := svc.Verify("other", resp.Token)
		assert.Equal(t, ErrInvalidToken, err)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":     "alice",
			"iss":     "passkey_api_ms",
			"aud":     "acme",
			"jti":     "forged",
			"purpose": "sign_in",
			"exp":     time.Now().Add(time.Minute).Unix(),
		})
		signed, err := forged.SignedString([]byte("attacker-secret"))
		require.NoError(t, err)
		_, verr := svc.Verify("acme", signed)
		assert.Equal(t, ErrInvalidToken, verr)
	})

	t.Run("wrong purpose", func(t *testing.T) {
		other := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":     "alice",
			"iss":     "passkey_api_ms",
			"aud":     "acme",
			"jti":     "other-purpose",
			"purpose": "password_reset",
			"exp":     time.Now().Add(time.Minute).Unix(),
		})
		signed, err := other.SignedString([]byte("test-secret"))
		require.NoError(t, err)
		_, verr := svc.Verify("acme", signed)
		assert.Equal(t, ErrInvalidToken, verr)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":     "alice",
			"iss":     "passkey_api_ms",
			"aud":     "acme",
			"jti":     "expired",
			"purpose": "sign_in",
			"exp":     time.Now().Add(-time.Minute).Unix(),
		})
		signed, err := expired.SignedString([]byte("test-secret"))
		require.NoError(t, err)
		_, verr := svc.Verify("acme", signed)
		assert.Equal(t, ErrInvalidToken, verr)
	})
}
