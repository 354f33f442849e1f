package domain

import "time"

type Application struct {
	Id               string     `gorm:"primaryKey;size:64" json:"id"`
	Name             string     `gorm:"size:100;not null" json:"name"`
	AdminEmails      string     `gorm:"size:1000" json:"admin_emails"`
	SubscriptionTier string     `gorm:"size:100" json:"subscription_tier"`
	CreatedAt        *time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	DeleteAt         *time.Time `gorm:"default:null" json:"delete_at"`
}

func (Application) TableName() string {
	return "applications"
}

// IsPendingDeletion reports whether the application has been soft deleted.
// Ceremony operations must treat such tenants as nonexistent.
func (a *Application) IsPendingDeletion() bool {
	return a.DeleteAt != nil
}

type AppFeature struct {
	Tenant                               string `gorm:"primaryKey;size:64" json:"tenant"`
	EventLoggingIsEnabled                bool   `gorm:"not null;default:false" json:"event_logging_is_enabled"`
	EventLoggingRetentionPeriod          int    `gorm:"not null;default:365" json:"event_logging_retention_period"`
	MaxUsers                             *int64 `gorm:"default:null" json:"max_users"`
	AllowAttestation                     bool   `gorm:"not null;default:false" json:"allow_attestation"`
	IsGenerateSignInTokenEndpointEnabled bool   `gorm:"not null;default:true" json:"is_generate_sign_in_token_endpoint_enabled"`
	IsMagicLinksEnabled                  bool   `gorm:"not null;default:false" json:"is_magic_links_enabled"`
	AliasHashing                         bool   `gorm:"not null;default:true" json:"alias_hashing"`
}

func (AppFeature) TableName() string {
	return "app_features"
}
