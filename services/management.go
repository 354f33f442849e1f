package services

import (
	"fmt"
	"strings"
	"time"

	"passkey_api_ms/domain"
	"passkey_api_ms/dtos/request"
	"passkey_api_ms/dtos/response"
	"passkey_api_ms/repository"
	"passkey_api_ms/util"

	"gorm.io/gorm"
)

// IManagementService implements the administrative operations consumed by
// the (out of process) console: api key lifecycle, feature flags and
// application deletion. Every feature write invalidates the feature gate
// cache so ceremony gating observes the change immediately.
type IManagementService interface {
	CreateApplication(tenant string, req *request.CreateApplicationRequest) (*response.CreateApplicationResponse, error)
	CreateApiKey(tenant string, keyType string, scopes []string) (*response.CreateApiKeyResponse, error)
	ListApiKeys(tenant string) ([]response.ApiKeyDescription, error)
	SetApiKeyLock(tenant string, keyId string, locked bool) error
	DeleteApiKey(tenant string, keyId string) error
	GetFeatures(tenant string) (*domain.AppFeature, error)
	SetFeatures(tenant string, req *request.SetFeaturesRequest) error
	SetSignInTokenEndpoint(tenant string, enabled bool, performedBy string) error
	MarkDelete(tenant string, performedBy string) (time.Time, error)
	CancelDelete(tenant string) error
	ListPendingDeletion() ([]response.PendingDeletionResponse, error)
	DeleteApplication(tenant string) error
}

// deletionGracePeriod is how long a marked application stays recoverable
// before it becomes eligible for cascading deletion.
const deletionGracePeriod = 30 * 24 * time.Hour

type ManagementService struct {
	db       *gorm.DB
	appRepo  repository.IApplicationRepository
	features IFeatureService
	events   IEventService
}

func NewManagementService(db *gorm.DB, appRepo repository.IApplicationRepository, features IFeatureService, events IEventService) IManagementService {
	return &ManagementService{db: db, appRepo: appRepo, features: features, events: events}
}

// CreateApplication provisions a new tenant with restrictive default
// features and an initial public/secret key pair. The keys are returned
// exactly once.
func (s *ManagementService) CreateApplication(tenant string, req *request.CreateApplicationRequest) (*response.CreateApplicationResponse, error) {
	now := time.Now().UTC()
	app := &domain.Application{
		Id:          tenant,
		Name:        req.Name,
		AdminEmails: req.AdminEmail,
		CreatedAt:   &now,
	}
	if err := s.appRepo.CreateApplication(s.db, app); err != nil {
		if err == repository.ErrDuplicate {
			return nil, ErrAppExists
		}
		return nil, ErrInternal
	}
	if err := s.appRepo.SaveFeatures(s.db, &domain.AppFeature{Tenant: tenant, IsGenerateSignInTokenEndpointEnabled: true, AliasHashing: true, EventLoggingRetentionPeriod: 365}); err != nil {
		return nil, ErrInternal
	}

	public, err := s.CreateApiKey(tenant, domain.ApiKeyTypePublic, nil)
	if err != nil {
		return nil, err
	}
	secret, err := s.CreateApiKey(tenant, domain.ApiKeyTypeSecret, nil)
	if err != nil {
		return nil, err
	}

	s.events.LogEvent(tenant, EventAppCreated, req.PerformedBy, tenant, SeverityInformational, "A new application was created.")

	return &response.CreateApplicationResponse{
		AppId:     tenant,
		ApiKey:    public.ApiKey,
		ApiSecret: secret.ApiKey,
	}, nil
}

func (s *ManagementService) CreateApiKey(tenant string, keyType string, scopes []string) (*response.CreateApiKeyResponse, error) {
	if _, err := s.appRepo.GetApplication(s.db, tenant); err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrAppNotFound
		}
		return nil, ErrInternal
	}

	if len(scopes) == 0 {
		if keyType == domain.ApiKeyTypePublic {
			scopes = []string{domain.ScopeLogin}
		} else {
			scopes = []string{domain.ScopeRegister, domain.ScopeTokenRegister, domain.ScopeTokenVerify}
		}
	}

	material, err := util.GenerateApiKeyMaterial()
	if err != nil {
		return nil, ErrInternal
	}
	fullKey := fmt.Sprintf("%s:%s:%s", tenant, keyType, material)
	hash, err := util.HashApiKey(fullKey)
	if err != nil {
		return nil, ErrInternal
	}

	now := time.Now().UTC()
	key := &domain.ApiKey{
		Tenant:    tenant,
		Id:        material[:KeyIdLength],
		Type:      keyType,
		KeyHash:   hash,
		Scopes:    strings.Join(scopes, ","),
		CreatedAt: &now,
	}
	if err := s.appRepo.CreateApiKey(s.db, key); err != nil {
		return nil, ErrInternal
	}

	// The full key is returned exactly once and never stored.
	return &response.CreateApiKeyResponse{ApiKey: fullKey, KeyId: key.Id}, nil
}

func (s *ManagementService) ListApiKeys(tenant string) ([]response.ApiKeyDescription, error) {
	keys, err := s.appRepo.ListApiKeys(s.db, tenant)
	if err != nil {
		return nil, ErrInternal
	}
	descriptions := make([]response.ApiKeyDescription, 0, len(keys))
	for _, key := range keys {
		descriptions = append(descriptions, response.ApiKeyDescription{
			KeyId:          key.Id,
			Type:           key.Type,
			MaskedValue:    key.MaskedValue(),
			Scopes:         key.ScopeList(),
			IsLocked:       key.IsLocked,
			CreatedAt:      key.CreatedAt,
			LastLockedAt:   key.LastLockedAt,
			LastUnlockedAt: key.LastUnlockedAt,
		})
	}
	return descriptions, nil
}

func (s *ManagementService) SetApiKeyLock(tenant string, keyId string, locked bool) error {
	if err := s.appRepo.SetApiKeyLock(s.db, tenant, keyId, locked); err != nil {
		return ErrInternal
	}
	eventType := EventApiKeyUnlocked
	if locked {
		eventType = EventApiKeyLocked
	}
	s.events.LogEvent(tenant, eventType, "admin", keyId, SeverityInformational, "An api key lock state changed.")
	return nil
}

func (s *ManagementService) DeleteApiKey(tenant string, keyId string) error {
	if err := s.appRepo.DeleteApiKey(s.db, tenant, keyId); err != nil {
		return ErrInternal
	}
	s.events.LogEvent(tenant, EventApiKeyDeleted, "admin", keyId, SeverityInformational, "An api key was deleted.")
	return nil
}

func (s *ManagementService) GetFeatures(tenant string) (*domain.AppFeature, error) {
	return s.features.GetFeatures(tenant)
}

func (s *ManagementService) SetFeatures(tenant string, req *request.SetFeaturesRequest) error {
	features, err := s.appRepo.GetFeatures(s.db, tenant)
	if err == repository.ErrNotFound {
		features = &domain.AppFeature{Tenant: tenant}
	} else if err != nil {
		return ErrInternal
	}

	if req.EventLoggingIsEnabled != nil {
		features.EventLoggingIsEnabled = *req.EventLoggingIsEnabled
	}
	if req.EventLoggingRetentionPeriod != nil {
		features.EventLoggingRetentionPeriod = *req.EventLoggingRetentionPeriod
	}
	if req.MaxUsers != nil {
		features.MaxUsers = req.MaxUsers
	}
	if req.AllowAttestation != nil {
		features.AllowAttestation = *req.AllowAttestation
	}

	if err := s.appRepo.SaveFeatures(s.db, features); err != nil {
		return ErrInternal
	}
	s.features.Invalidate(tenant)
	s.events.LogEvent(tenant, EventFeaturesChanged, req.PerformedBy, tenant, SeverityInformational, "Application features were changed.")
	return nil
}

func (s *ManagementService) SetSignInTokenEndpoint(tenant string, enabled bool, performedBy string) error {
	features, err := s.appRepo.GetFeatures(s.db, tenant)
	if err == repository.ErrNotFound {
		features = &domain.AppFeature{Tenant: tenant}
	} else if err != nil {
		return ErrInternal
	}
	features.IsGenerateSignInTokenEndpointEnabled = enabled
	if err := s.appRepo.SaveFeatures(s.db, features); err != nil {
		return ErrInternal
	}
	s.features.Invalidate(tenant)
	s.events.LogEvent(tenant, EventFeaturesChanged, performedBy, tenant, SeverityInformational, "The generate sign-in token endpoint was toggled.")
	return nil
}

func (s *ManagementService) MarkDelete(tenant string, performedBy string) (time.Time, error) {
	deleteAt := time.Now().UTC().Add(deletionGracePeriod)
	if err := s.appRepo.MarkDelete(s.db, tenant, deleteAt); err != nil {
		return time.Time{}, ErrInternal
	}
	s.events.LogEvent(tenant, EventAppMarkedForDeletion, performedBy, tenant, SeverityWarning, "The application was marked for deletion.")
	return deleteAt, nil
}

func (s *ManagementService) CancelDelete(tenant string) error {
	if err := s.appRepo.CancelDelete(s.db, tenant); err != nil {
		return ErrInternal
	}
	s.events.LogEvent(tenant, EventAppDeletionCancelled, "admin", tenant, SeverityInformational, "The pending application deletion was cancelled.")
	return nil
}

func (s *ManagementService) ListPendingDeletion() ([]response.PendingDeletionResponse, error) {
	apps, err := s.appRepo.ListPendingDeletion(s.db)
	if err != nil {
		return nil, ErrInternal
	}
	pending := make([]response.PendingDeletionResponse, 0, len(apps))
	for _, app := range apps {
		pending = append(pending, response.PendingDeletionResponse{AppId: app.Id, DeleteAt: app.DeleteAt})
	}
	return pending, nil
}

// DeleteApplication cascades over every tenant owned row in one transaction
// so a concurrent ceremony can never observe a partially deleted tenant.
func (s *ManagementService) DeleteApplication(tenant string) error {
	if err := s.appRepo.DeleteCascading(s.db, tenant); err != nil {
		return ErrInternal
	}
	s.features.Invalidate(tenant)
	return nil
}
