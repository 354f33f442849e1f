package services

import (
	"testing"
	"time"

	"passkey_api_ms/domain"
	"passkey_api_ms/repository"
	"passkey_api_ms/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeAppRepo is an in-memory IApplicationRepository for authorization tests.
type fakeAppRepo struct {
	apps     map[string]*domain.Application
	features map[string]*domain.AppFeature
	keys     map[string]*domain.ApiKey
}

func newFakeAppRepo() *fakeAppRepo {
	return &fakeAppRepo{
		apps:     make(map[string]*domain.Application),
		features: make(map[string]*domain.AppFeature),
		keys:     make(map[string]*domain.ApiKey),
	}
}

func (f *fakeAppRepo) CreateApplication(_ *gorm.DB, app *domain.Application) error {
	if _, ok := f.apps[app.Id]; ok {
		return repository.ErrDuplicate
	}
	f.apps[app.Id] = app
	return nil
}

func (f *fakeAppRepo) GetApplication(_ *gorm.DB, tenant string) (*domain.Application, error) {
	app, ok := f.apps[tenant]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return app, nil
}

func (f *fakeAppRepo) GetFeatures(_ *gorm.DB, tenant string) (*domain.AppFeature, error) {
	features, ok := f.features[tenant]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return features, nil
}

func (f *fakeAppRepo) SaveFeatures(_ *gorm.DB, features *domain.AppFeature) error {
	f.features[features.Tenant] = features
	return nil
}

func (f *fakeAppRepo) GetApiKey(_ *gorm.DB, tenant string, keyId string) (*domain.ApiKey, error) {
	key, ok := f.keys[tenant+"/"+keyId]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return key, nil
}

func (f *fakeAppRepo) CreateApiKey(_ *gorm.DB, key *domain.ApiKey) error {
	f.keys[key.Tenant+"/"+key.Id] = key
	return nil
}

func (f *fakeAppRepo) ListApiKeys(_ *gorm.DB, tenant string) ([]domain.ApiKey, error) {
	var out []domain.ApiKey
	for _, key := range f.keys {
		if key.Tenant == tenant {
			out = append(out, *key)
		}
	}
	return out, nil
}

func (f *fakeAppRepo) SetApiKeyLock(_ *gorm.DB, tenant string, keyId string, locked bool) error {
	if key, ok := f.keys[tenant+"/"+keyId]; ok {
		key.IsLocked = locked
	}
	return nil
}

func (f *fakeAppRepo) DeleteApiKey(_ *gorm.DB, tenant string, keyId string) error {
	delete(f.keys, tenant+"/"+keyId)
	return nil
}

func (f *fakeAppRepo) MarkDelete(_ *gorm.DB, tenant string, deleteAt time.Time) error {
	if app, ok := f.apps[tenant]; ok {
		app.DeleteAt = &deleteAt
	}
	return nil
}

func (f *fakeAppRepo) CancelDelete(_ *gorm.DB, tenant string) error {
	if app, ok := f.apps[tenant]; ok {
		app.DeleteAt = nil
	}
	return nil
}

func (f *fakeAppRepo) ListPendingDeletion(_ *gorm.DB) ([]domain.Application, error) {
	var out []domain.Application
	for _, app := range f.apps {
		if app.DeleteAt != nil && app.DeleteAt.Before(time.Now()) {
			out = append(out, *app)
		}
	}
	return out, nil
}

func (f *fakeAppRepo) DeleteCascading(_ *gorm.DB, tenant string) error {
	delete(f.apps, tenant)
	delete(f.features, tenant)
	for key, apiKey := range f.keys {
		if apiKey.Tenant == tenant {
			delete(f.keys, key)
		}
	}
	return nil
}

// seedKey stores a hashed api key and returns the full presentable value.
func seedKey(t *testing.T, repo *fakeAppRepo, tenant, keyType, scopes string) string {
	t.Helper()
	material, err := util.GenerateApiKeyMaterial()
	require.NoError(t, err)
	fullKey := tenant + ":" + keyType + ":" + material
	hash, err := util.HashApiKey(fullKey)
	require.NoError(t, err)
	require.NoError(t, repo.CreateApiKey(nil, &domain.ApiKey{
		Tenant:  tenant,
		Id:      material[:KeyIdLength],
		Type:    keyType,
		KeyHash: hash,
		Scopes:  scopes,
	}))
	return fullKey
}

func TestParseApiKeyTable(t *testing.T) {
	tests := []struct {
		name  string
		value string
		ok    bool
	}{
		{"valid secret key", "acme:secret:abcdefgh12345678", true},
		{"valid public key", "acme:public:abcdefgh12345678", true},
		{"missing parts", "acme:secret", false},
		{"empty tenant", ":secret:abcdefgh12345678", false},
		{"unknown key type", "acme:internal:abcdefgh12345678", false},
		{"material shorter than key id", "acme:secret:short", false},
		{"empty value", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, ok := ParseApiKey(tt.value)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestApiKeyResolve(t *testing.T) {
	repo := newFakeAppRepo()
	now := time.Now().UTC()
	require.NoError(t, repo.CreateApplication(nil, &domain.Application{Id: "acme", Name: "Acme", CreatedAt: &now}))

	secretKey := seedKey(t, repo, "acme", domain.ApiKeyTypeSecret, "register,token_register")
	svc := NewApiKeyService(nil, repo, NewNopEventService())

	t.Run("valid key resolves tenant and scopes", func(t *testing.T) {
		keyContext, err := svc.Resolve(secretKey, domain.ApiKeyTypeSecret, domain.ScopeRegister)
		require.NoError(t, err)
		assert.Equal(t, "acme", keyContext.Tenant)
		assert.Equal(t, domain.ApiKeyTypeSecret, keyContext.Type)
		assert.Contains(t, keyContext.Scopes, domain.ScopeRegister)
	})

	t.Run("malformed key", func(t *testing.T) {
		_, err := svc.Resolve("not-a-key", domain.ApiKeyTypeSecret, domain.ScopeRegister)
		assert.Equal(t, ErrInvalidKey, err)
	})

	t.Run("wrong key type", func(t *testing.T) {
		_, err := svc.Resolve(secretKey, domain.ApiKeyTypePublic, domain.ScopeLogin)
		assert.Equal(t, ErrInvalidKey, err)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		_, err := svc.Resolve("ghost:secret:abcdefgh12345678", domain.ApiKeyTypeSecret, domain.ScopeRegister)
		assert.Equal(t, ErrInvalidKey, err)
	})

	t.Run("tampered material fails bcrypt", func(t *testing.T) {
		tampered := secretKey[:len(secretKey)-1] + "x"
		if tampered == secretKey {
			tampered = secretKey[:len(secretKey)-1] + "y"
		}
		_, err := svc.Resolve(tampered, domain.ApiKeyTypeSecret, domain.ScopeRegister)
		assert.Equal(t, ErrInvalidKey, err)
	})

	t.Run("missing scope", func(t *testing.T) {
		_, err := svc.Resolve(secretKey, domain.ApiKeyTypeSecret, domain.ScopeTokenVerify)
		assert.Equal(t, ErrInsufficientScope, err)
	})

	t.Run("locked key fails before scope check", func(t *testing.T) {
		keyId := keyIdOf(secretKey)
		require.NoError(t, repo.SetApiKeyLock(nil, "acme", keyId, true))
		_, err := svc.Resolve(secretKey, domain.ApiKeyTypeSecret, domain.ScopeRegister)
		assert.Equal(t, ErrKeyLocked, err)
		require.NoError(t, repo.SetApiKeyLock(nil, "acme", keyId, false))
	})

	t.Run("pending deletion tenant is invisible", func(t *testing.T) {
		deleteAt := time.Now().UTC().Add(24 * time.Hour)
		require.NoError(t, repo.MarkDelete(nil, "acme", deleteAt))
		_, err := svc.Resolve(secretKey, domain.ApiKeyTypeSecret, domain.ScopeRegister)
		assert.Equal(t, ErrInvalidKey, err)
		require.NoError(t, repo.CancelDelete(nil, "acme"))
	})
}

func keyIdOf(fullKey string) string {
	_, _, material, _ := ParseApiKey(fullKey)
	return material[:KeyIdLength]
}
