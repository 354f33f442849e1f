package domain

import (
	"strings"
	"time"
)

const (
	ApiKeyTypePublic = "public"
	ApiKeyTypeSecret = "secret"
)

// Ceremony scopes granted to api keys. Public keys carry the login-class
// scopes, secret keys the register/token-class scopes.
const (
	ScopeRegister      = "register"
	ScopeLogin         = "login"
	ScopeTokenRegister = "token_register"
	ScopeTokenVerify   = "token_verify"
)

type ApiKey struct {
	Tenant         string     `gorm:"primaryKey;size:64" json:"tenant"`
	Id             string     `gorm:"primaryKey;size:32" json:"id"`
	Type           string     `gorm:"size:16;not null" json:"type"`
	KeyHash        string     `gorm:"size:100;not null" json:"-"`
	Scopes         string     `gorm:"size:500;not null" json:"scopes"`
	IsLocked       bool       `gorm:"not null;default:false" json:"is_locked"`
	CreatedAt      *time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	LastLockedAt   *time.Time `gorm:"default:null" json:"last_locked_at"`
	LastUnlockedAt *time.Time `gorm:"default:null" json:"last_unlocked_at"`
}

func (ApiKey) TableName() string {
	return "api_keys"
}

// ScopeList splits the stored comma separated scope string.
func (k *ApiKey) ScopeList() []string {
	if k.Scopes == "" {
		return nil
	}
	return strings.Split(k.Scopes, ",")
}

// HasScope reports whether the key grants the required scope.
func (k *ApiKey) HasScope(required string) bool {
	for _, s := range k.ScopeList() {
		if s == required {
			return true
		}
	}
	return false
}

// MaskedValue renders the key for display without its secret material,
// e.g. "t1:secret:ab12****...".
func (k *ApiKey) MaskedValue() string {
	padded := k.Id
	for len(padded) < 32 {
		padded += "*"
	}
	return k.Tenant + ":" + k.Type + ":" + padded
}
