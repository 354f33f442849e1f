package services

import (
	"strings"

	"passkey_api_ms/domain"
	"passkey_api_ms/repository"
	"passkey_api_ms/util"

	"gorm.io/gorm"
)

// KeyIdLength is the number of leading material characters used as the
// stored key identifier; the remainder is only ever compared via bcrypt.
const KeyIdLength = 8

// KeyContext is the resolved tenant identity and capability set of a
// request. It is attached to the request before any cryptographic work.
type KeyContext struct {
	Tenant string
	KeyId  string
	Type   string
	Scopes []string
}

type IApiKeyService interface {
	// Resolve parses a "{tenant}:{public|secret}:{material}" header value,
	// validates it against the stored key and checks the required scope.
	Resolve(header string, wantType string, requiredScope string) (*KeyContext, error)
}

type ApiKeyService struct {
	db      *gorm.DB
	appRepo repository.IApplicationRepository
	events  IEventService
}

func NewApiKeyService(db *gorm.DB, appRepo repository.IApplicationRepository, events IEventService) IApiKeyService {
	return &ApiKeyService{db: db, appRepo: appRepo, events: events}
}

func (s *ApiKeyService) Resolve(header string, wantType string, requiredScope string) (*KeyContext, error) {
	tenant, keyType, material, ok := ParseApiKey(header)
	if !ok || keyType != wantType {
		return nil, ErrInvalidKey
	}

	// Soft deleted tenants are invisible to ceremony operations.
	app, err := s.appRepo.GetApplication(s.db, tenant)
	if err == repository.ErrNotFound {
		return nil, ErrInvalidKey
	}
	if err != nil {
		return nil, ErrInternal
	}
	if app.IsPendingDeletion() {
		return nil, ErrInvalidKey
	}

	key, err := s.appRepo.GetApiKey(s.db, tenant, material[:KeyIdLength])
	if err == repository.ErrNotFound {
		s.events.LogEvent(tenant, EventApiKeyInvalidUsed, "api", header, SeverityWarning, "An invalid api key was presented.")
		return nil, ErrInvalidKey
	}
	if err != nil {
		return nil, ErrInternal
	}

	if !util.VerifyApiKey(header, key.KeyHash) || key.Type != wantType {
		s.events.LogEvent(tenant, EventApiKeyInvalidUsed, "api", key.MaskedValue(), SeverityWarning, "An invalid api key was presented.")
		return nil, ErrInvalidKey
	}

	// A locked key fails every check regardless of scope.
	if key.IsLocked {
		s.events.LogEvent(tenant, EventApiKeyLockedUsed, "api", key.MaskedValue(), SeverityWarning, "A locked api key was presented.")
		return nil, ErrKeyLocked
	}

	if !key.HasScope(requiredScope) {
		return nil, ErrInsufficientScope
	}

	return &KeyContext{
		Tenant: tenant,
		KeyId:  key.Id,
		Type:   key.Type,
		Scopes: key.ScopeList(),
	}, nil
}

// ParseApiKey splits a structured api key into its parts. The material must
// be long enough to carry the key id prefix.
func ParseApiKey(value string) (tenant, keyType, material string, ok bool) {
	parts := strings.SplitN(value, ":", 3)
	if len(parts) != 3 {
		return "", "", "", false
	}
	tenant, keyType, material = parts[0], parts[1], parts[2]
	if tenant == "" || material == "" || len(material) < KeyIdLength {
		return "", "", "", false
	}
	if keyType != domain.ApiKeyTypePublic && keyType != domain.ApiKeyTypeSecret {
		return "", "", "", false
	}
	return tenant, keyType, material, true
}
