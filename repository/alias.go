package repository

import (
	"errors"

	"passkey_api_ms/domain"

	"gorm.io/gorm"
)

type IAliasRepository interface {
	Resolve(db *gorm.DB, tenant string, alias string) (*domain.AliasPointer, error)
	ListByUser(db *gorm.DB, tenant string, userId string) ([]domain.AliasPointer, error)
	// SetForUser replaces the user's aliases with the given set.
	SetForUser(db *gorm.DB, tenant string, userId string, aliases []domain.AliasPointer) error
}

type AliasRepository struct {
}

func NewAliasRepository() IAliasRepository {
	return &AliasRepository{}
}

func (r *AliasRepository) Resolve(db *gorm.DB, tenant string, alias string) (*domain.AliasPointer, error) {
	var pointer domain.AliasPointer
	err := db.Where("tenant = ? AND alias = ?", tenant, alias).First(&pointer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pointer, nil
}

func (r *AliasRepository) ListByUser(db *gorm.DB, tenant string, userId string) ([]domain.AliasPointer, error) {
	var pointers []domain.AliasPointer
	err := db.Where("tenant = ? AND user_id = ?", tenant, userId).Find(&pointers).Error
	return pointers, err
}

func (r *AliasRepository) SetForUser(db *gorm.DB, tenant string, userId string, aliases []domain.AliasPointer) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant = ? AND user_id = ?", tenant, userId).
			Delete(&domain.AliasPointer{}).Error; err != nil {
			return err
		}
		if len(aliases) == 0 {
			return nil
		}
		return tx.Create(&aliases).Error
	})
}
