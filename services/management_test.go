package services

import (
	"testing"
	"time"

	"passkey_api_ms/domain"
	"passkey_api_ms/dtos/request"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManagementFixture() (IManagementService, *fakeAppRepo, IFeatureService) {
	repo := newFakeAppRepo()
	features := NewFeatureService(nil, repo)
	svc := NewManagementService(nil, repo, features, NewNopEventService())
	return svc, repo, features
}

func TestCreateApplication(t *testing.T) {
	svc, repo, _ := newManagementFixture()

	resp, err := svc.CreateApplication("acme", &request.CreateApplicationRequest{
		Name:        "Acme Corp",
		AdminEmail:  "admin@acme.example",
		PerformedBy: "console",
	})
	require.NoError(t, err)
	assert.Equal(t, "acme", resp.AppId)

	// The returned key pair must be immediately usable against the resolver.
	tenant, keyType, _, ok := ParseApiKey(resp.ApiKey)
	assert.True(t, ok)
	assert.Equal(t, "acme", tenant)
	assert.Equal(t, domain.ApiKeyTypePublic, keyType)

	_, keyType, _, ok = ParseApiKey(resp.ApiSecret)
	assert.True(t, ok)
	assert.Equal(t, domain.ApiKeyTypeSecret, keyType)

	apiKeys := NewApiKeyService(nil, repo, NewNopEventService())
	_, err = apiKeys.Resolve(resp.ApiKey, domain.ApiKeyTypePublic, domain.ScopeLogin)
	assert.NoError(t, err)
	_, err = apiKeys.Resolve(resp.ApiSecret, domain.ApiKeyTypeSecret, domain.ScopeRegister)
	assert.NoError(t, err)

	// Provisioning is not idempotent.
	_, err = svc.CreateApplication("acme", &request.CreateApplicationRequest{Name: "Acme Corp", PerformedBy: "console"})
	assert.Equal(t, ErrAppExists, err)
}

func TestCreateApplicationLongTenantId(t *testing.T) {
	svc, repo, _ := newManagementFixture()

	// A uuid app id pushes the full api key past bcrypt's 72 byte input
	// limit; provisioning and resolution must still work.
	tenant := "123e4567-e89b-12d3-a456-426614174000"

	resp, err := svc.CreateApplication(tenant, &request.CreateApplicationRequest{Name: "Acme", PerformedBy: "console"})
	require.NoError(t, err)
	assert.Greater(t, len(resp.ApiSecret), 72)

	apiKeys := NewApiKeyService(nil, repo, NewNopEventService())
	keyContext, err := apiKeys.Resolve(resp.ApiSecret, domain.ApiKeyTypeSecret, domain.ScopeRegister)
	require.NoError(t, err)
	assert.Equal(t, tenant, keyContext.Tenant)
}

func TestCreateApiKeyDefaultScopes(t *testing.T) {
	svc, _, _ := newManagementFixture()

	_, err := svc.CreateApplication("acme", &request.CreateApplicationRequest{Name: "Acme", PerformedBy: "console"})
	require.NoError(t, err)

	resp, err := svc.CreateApiKey("acme", domain.ApiKeyTypeSecret, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ApiKey)
	assert.Len(t, resp.KeyId, KeyIdLength)

	keys, err := svc.ListApiKeys("acme")
	require.NoError(t, err)

	var found bool
	for _, key := range keys {
		if key.KeyId == resp.KeyId {
			found = true
			assert.ElementsMatch(t, []string{domain.ScopeRegister, domain.ScopeTokenRegister, domain.ScopeTokenVerify}, key.Scopes)
			assert.NotContains(t, key.MaskedValue, resp.ApiKey)
		}
	}
	assert.True(t, found)

	_, err = svc.CreateApiKey("ghost", domain.ApiKeyTypeSecret, nil)
	assert.Equal(t, ErrAppNotFound, err)
}

func TestSetFeaturesInvalidatesGateCache(t *testing.T) {
	svc, _, features := newManagementFixture()

	_, err := svc.CreateApplication("acme", &request.CreateApplicationRequest{Name: "Acme", PerformedBy: "console"})
	require.NoError(t, err)

	// Warm the gate cache.
	snapshot, err := features.GetFeatures("acme")
	require.NoError(t, err)
	assert.False(t, snapshot.AllowAttestation)

	allow := true
	err = svc.SetFeatures("acme", &request.SetFeaturesRequest{AllowAttestation: &allow, PerformedBy: "console"})
	require.NoError(t, err)

	// The write must be visible immediately, not after cache expiry.
	snapshot, err = features.GetFeatures("acme")
	require.NoError(t, err)
	assert.True(t, snapshot.AllowAttestation)
}

func TestMarkAndCancelDelete(t *testing.T) {
	svc, repo, _ := newManagementFixture()

	_, err := svc.CreateApplication("acme", &request.CreateApplicationRequest{Name: "Acme", PerformedBy: "console"})
	require.NoError(t, err)

	deleteAt, err := svc.MarkDelete("acme", "console")
	require.NoError(t, err)
	assert.True(t, deleteAt.After(time.Now()))

	app, err := repo.GetApplication(nil, "acme")
	require.NoError(t, err)
	assert.True(t, app.IsPendingDeletion())

	require.NoError(t, svc.CancelDelete("acme"))

	app, err = repo.GetApplication(nil, "acme")
	require.NoError(t, err)
	assert.False(t, app.IsPendingDeletion())
}
