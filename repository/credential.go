package repository

import (
	"errors"
	"time"

	"passkey_api_ms/domain"

	"gorm.io/gorm"
)

// ErrCounterConflict is returned when the optimistic counter update lost a
// race against a concurrent authentication for the same credential.
var ErrCounterConflict = errors.New("signature counter conflict")

// ErrDuplicate is returned when a credential with the same descriptor id
// already exists for the tenant.
var ErrDuplicate = errors.New("duplicate credential")

type ICredentialRepository interface {
	Create(db *gorm.DB, cred *domain.StoredCredential) error
	FindByID(db *gorm.DB, tenant string, descriptorId []byte) (*domain.StoredCredential, error)
	FindByUser(db *gorm.DB, tenant string, userId string) ([]domain.StoredCredential, error)
	FindByUserHandle(db *gorm.DB, tenant string, userHandle []byte) ([]domain.StoredCredential, error)
	UpdateCounterAndUsage(db *gorm.DB, tenant string, descriptorId []byte, oldCounter, newCounter uint32, lastUsedAt time.Time, backupState bool) error
	TouchUsage(db *gorm.DB, tenant string, descriptorId []byte, lastUsedAt time.Time, backupState bool) error
	Delete(db *gorm.DB, tenant string, descriptorId []byte) error
	CountDistinctUsers(db *gorm.DB, tenant string) (int64, error)
}

type CredentialRepository struct {
}

func NewCredentialRepository() ICredentialRepository {
	return &CredentialRepository{}
}

func (r *CredentialRepository) Create(db *gorm.DB, cred *domain.StoredCredential) error {
	err := db.Create(cred).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

func (r *CredentialRepository) FindByID(db *gorm.DB, tenant string, descriptorId []byte) (*domain.StoredCredential, error) {
	var cred domain.StoredCredential
	err := db.Where("tenant = ? AND descriptor_id = ?", tenant, descriptorId).First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *CredentialRepository) FindByUser(db *gorm.DB, tenant string, userId string) ([]domain.StoredCredential, error) {
	var creds []domain.StoredCredential
	err := db.Where("tenant = ? AND user_id = ?", tenant, userId).Find(&creds).Error
	return creds, err
}

func (r *CredentialRepository) FindByUserHandle(db *gorm.DB, tenant string, userHandle []byte) ([]domain.StoredCredential, error) {
	var creds []domain.StoredCredential
	err := db.Where("tenant = ? AND user_handle = ?", tenant, userHandle).Find(&creds).Error
	return creds, err
}

// UpdateCounterAndUsage bumps the signature counter with an optimistic
// compare-and-swap. Zero rows affected means another authentication already
// advanced the counter past oldCounter; the caller must treat that exactly
// like a failed monotonicity check.
func (r *CredentialRepository) UpdateCounterAndUsage(db *gorm.DB, tenant string, descriptorId []byte, oldCounter, newCounter uint32, lastUsedAt time.Time, backupState bool) error {
	res := db.Model(&domain.StoredCredential{}).
		Where("tenant = ? AND descriptor_id = ? AND signature_counter = ?", tenant, descriptorId, oldCounter).
		Updates(map[string]interface{}{
			"signature_counter": newCounter,
			"last_used_at":      lastUsedAt,
			"backup_state":      backupState,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCounterConflict
	}
	return nil
}

// TouchUsage updates usage metadata for counter-less authenticators.
func (r *CredentialRepository) TouchUsage(db *gorm.DB, tenant string, descriptorId []byte, lastUsedAt time.Time, backupState bool) error {
	return db.Model(&domain.StoredCredential{}).
		Where("tenant = ? AND descriptor_id = ?", tenant, descriptorId).
		Updates(map[string]interface{}{
			"last_used_at": lastUsedAt,
			"backup_state": backupState,
		}).Error
}

// Delete is idempotent; removing a credential that does not exist is fine.
func (r *CredentialRepository) Delete(db *gorm.DB, tenant string, descriptorId []byte) error {
	return db.Where("tenant = ? AND descriptor_id = ?", tenant, descriptorId).
		Delete(&domain.StoredCredential{}).Error
}

func (r *CredentialRepository) CountDistinctUsers(db *gorm.DB, tenant string) (int64, error) {
	var count int64
	err := db.Model(&domain.StoredCredential{}).
		Where("tenant = ?", tenant).
		Distinct("user_id").
		Count(&count).Error
	return count, err
}
