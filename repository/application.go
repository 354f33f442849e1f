package repository

import (
	"errors"
	"time"

	"passkey_api_ms/domain"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

type IApplicationRepository interface {
	CreateApplication(db *gorm.DB, app *domain.Application) error
	GetApplication(db *gorm.DB, tenant string) (*domain.Application, error)
	GetFeatures(db *gorm.DB, tenant string) (*domain.AppFeature, error)
	SaveFeatures(db *gorm.DB, features *domain.AppFeature) error
	GetApiKey(db *gorm.DB, tenant string, keyId string) (*domain.ApiKey, error)
	CreateApiKey(db *gorm.DB, key *domain.ApiKey) error
	ListApiKeys(db *gorm.DB, tenant string) ([]domain.ApiKey, error)
	SetApiKeyLock(db *gorm.DB, tenant string, keyId string, locked bool) error
	DeleteApiKey(db *gorm.DB, tenant string, keyId string) error
	MarkDelete(db *gorm.DB, tenant string, deleteAt time.Time) error
	CancelDelete(db *gorm.DB, tenant string) error
	ListPendingDeletion(db *gorm.DB) ([]domain.Application, error)
	DeleteCascading(db *gorm.DB, tenant string) error
}

type ApplicationRepository struct {
}

func NewApplicationRepository() IApplicationRepository {
	return &ApplicationRepository{}
}

func (r *ApplicationRepository) CreateApplication(db *gorm.DB, app *domain.Application) error {
	err := db.Create(app).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

func (r *ApplicationRepository) GetApplication(db *gorm.DB, tenant string) (*domain.Application, error) {
	var app domain.Application
	err := db.Where("id = ?", tenant).First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepository) GetFeatures(db *gorm.DB, tenant string) (*domain.AppFeature, error) {
	var features domain.AppFeature
	err := db.Where("tenant = ?", tenant).First(&features).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &features, nil
}

func (r *ApplicationRepository) SaveFeatures(db *gorm.DB, features *domain.AppFeature) error {
	return db.Save(features).Error
}

func (r *ApplicationRepository) GetApiKey(db *gorm.DB, tenant string, keyId string) (*domain.ApiKey, error) {
	var key domain.ApiKey
	err := db.Where("tenant = ? AND id = ?", tenant, keyId).First(&key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &key, nil
}

func (r *ApplicationRepository) CreateApiKey(db *gorm.DB, key *domain.ApiKey) error {
	return db.Create(key).Error
}

func (r *ApplicationRepository) ListApiKeys(db *gorm.DB, tenant string) ([]domain.ApiKey, error) {
	var keys []domain.ApiKey
	err := db.Where("tenant = ?", tenant).Find(&keys).Error
	return keys, err
}

func (r *ApplicationRepository) SetApiKeyLock(db *gorm.DB, tenant string, keyId string, locked bool) error {
	now := time.Now().UTC()
	updates := map[string]interface{}{"is_locked": locked}
	if locked {
		updates["last_locked_at"] = now
	} else {
		updates["last_unlocked_at"] = now
	}
	return db.Model(&domain.ApiKey{}).
		Where("tenant = ? AND id = ?", tenant, keyId).
		Updates(updates).Error
}

func (r *ApplicationRepository) DeleteApiKey(db *gorm.DB, tenant string, keyId string) error {
	return db.Where("tenant = ? AND id = ?", tenant, keyId).Delete(&domain.ApiKey{}).Error
}

func (r *ApplicationRepository) MarkDelete(db *gorm.DB, tenant string, deleteAt time.Time) error {
	return db.Model(&domain.Application{}).
		Where("id = ?", tenant).
		Update("delete_at", deleteAt).Error
}

func (r *ApplicationRepository) CancelDelete(db *gorm.DB, tenant string) error {
	return db.Model(&domain.Application{}).
		Where("id = ?", tenant).
		Update("delete_at", nil).Error
}

func (r *ApplicationRepository) ListPendingDeletion(db *gorm.DB) ([]domain.Application, error) {
	var apps []domain.Application
	err := db.Where("delete_at IS NOT NULL AND delete_at <= ?", time.Now().UTC()).Find(&apps).Error
	return apps, err
}

// DeleteCascading removes the application and every tenant owned row in one
// transaction so a racing ceremony can never observe a half deleted tenant.
func (r *ApplicationRepository) DeleteCascading(db *gorm.DB, tenant string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant = ?", tenant).Delete(&domain.StoredCredential{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant = ?", tenant).Delete(&domain.AliasPointer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant = ?", tenant).Delete(&domain.ApiKey{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant = ?", tenant).Delete(&domain.AppFeature{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", tenant).Delete(&domain.Application{}).Error
	})
}
