package services

import (
	"encoding/base64"

	"passkey_api_ms/domain"
	"passkey_api_ms/dtos/request"
	"passkey_api_ms/dtos/response"
	"passkey_api_ms/repository"
	"passkey_api_ms/util"

	"gorm.io/gorm"
)

// ICredentialService exposes tenant scoped credential and alias management
// for the application backend (list, delete, alias assignment).
type ICredentialService interface {
	List(tenant string, userId string) ([]response.CredentialDescription, error)
	Delete(tenant string, credentialId string) error
	ListAliases(tenant string, userId string) ([]response.AliasDescription, error)
	SetAliases(tenant string, req *request.SetAliasRequest) error
}

type CredentialService struct {
	db        *gorm.DB
	credRepo  repository.ICredentialRepository
	aliasRepo repository.IAliasRepository
	features  IFeatureService
	events    IEventService
}

func NewCredentialService(db *gorm.DB, credRepo repository.ICredentialRepository, aliasRepo repository.IAliasRepository, features IFeatureService, events IEventService) ICredentialService {
	return &CredentialService{
		db:        db,
		credRepo:  credRepo,
		aliasRepo: aliasRepo,
		features:  features,
		events:    events,
	}
}

func (s *CredentialService) List(tenant string, userId string) ([]response.CredentialDescription, error) {
	creds, err := s.credRepo.FindByUser(s.db, tenant, userId)
	if err != nil {
		return nil, ErrInternal
	}
	descriptions := make([]response.CredentialDescription, 0, len(creds))
	for _, cred := range creds {
		descriptions = append(descriptions, response.CredentialDescription{
			CredentialId:   base64Id(cred.DescriptorId),
			UserId:         cred.UserId,
			AttestationFmt: cred.AttestationFmt,
			RPID:           cred.RPID,
			Origin:         cred.Origin,
			Nickname:       cred.Nickname,
			Device:         cred.Device,
			BackupState:    cred.BackupState,
			IsDiscoverable: cred.IsDiscoverable,
			CreatedAt:      cred.CreatedAt,
			LastUsedAt:     cred.LastUsedAt,
		})
	}
	return descriptions, nil
}

// Delete is idempotent: removing an unknown credential id succeeds.
func (s *CredentialService) Delete(tenant string, credentialId string) error {
	descriptorId, err := base64.RawURLEncoding.DecodeString(credentialId)
	if err != nil {
		return ErrUnknownCredential
	}
	if err := s.credRepo.Delete(s.db, tenant, descriptorId); err != nil {
		return ErrInternal
	}
	s.events.LogEvent(tenant, EventCredentialDeleted, "api", credentialId, SeverityInformational, "A credential was deleted.")
	return nil
}

func (s *CredentialService) ListAliases(tenant string, userId string) ([]response.AliasDescription, error) {
	pointers, err := s.aliasRepo.ListByUser(s.db, tenant, userId)
	if err != nil {
		return nil, ErrInternal
	}
	descriptions := make([]response.AliasDescription, 0, len(pointers))
	for _, pointer := range pointers {
		descriptions = append(descriptions, response.AliasDescription{
			Alias:     pointer.Alias,
			Plaintext: pointer.Plaintext,
			UserId:    pointer.UserId,
		})
	}
	return descriptions, nil
}

func (s *CredentialService) SetAliases(tenant string, req *request.SetAliasRequest) error {
	features, err := s.features.GetFeatures(tenant)
	if err != nil {
		return err
	}
	hashing := features.AliasHashing
	if req.Hashing != nil {
		hashing = *req.Hashing
	}

	pointers := make([]domain.AliasPointer, 0, len(req.Aliases))
	for _, alias := range req.Aliases {
		pointer := domain.AliasPointer{Tenant: tenant, UserId: req.UserId}
		if hashing {
			pointer.Alias = util.HashAlias(alias)
		} else {
			pointer.Alias = alias
			pointer.Plaintext = alias
		}
		pointers = append(pointers, pointer)
	}
	if err := s.aliasRepo.SetForUser(s.db, tenant, req.UserId, pointers); err != nil {
		return ErrInternal
	}
	return nil
}
