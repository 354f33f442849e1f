package response

import "time"

// CreateApiKeyResponse returns the full key exactly once; only its bcrypt
// hash is stored.
type CreateApiKeyResponse struct {
	ApiKey string `json:"api_key"`
	KeyId  string `json:"key_id"`
}

// CreateApplicationResponse carries the initial key pair issued for a new
// application. Like CreateApiKeyResponse, the keys are shown exactly once.
type CreateApplicationResponse struct {
	AppId     string `json:"app_id"`
	ApiKey    string `json:"api_key"`
	ApiSecret string `json:"api_secret"`
}

type ApiKeyDescription struct {
	KeyId          string     `json:"key_id"`
	Type           string     `json:"type"`
	MaskedValue    string     `json:"masked_value"`
	Scopes         []string   `json:"scopes"`
	IsLocked       bool       `json:"is_locked"`
	CreatedAt      *time.Time `json:"created_at"`
	LastLockedAt   *time.Time `json:"last_locked_at,omitempty"`
	LastUnlockedAt *time.Time `json:"last_unlocked_at,omitempty"`
}

type CredentialDescription struct {
	CredentialId   string     `json:"credential_id"`
	UserId         string     `json:"user_id"`
	AttestationFmt string     `json:"attestation_fmt"`
	RPID           string     `json:"rp_id"`
	Origin         string     `json:"origin"`
	Nickname       string     `json:"nickname,omitempty"`
	Device         string     `json:"device,omitempty"`
	BackupState    bool       `json:"backup_state"`
	IsDiscoverable bool       `json:"is_discoverable"`
	CreatedAt      *time.Time `json:"created_at"`
	LastUsedAt     *time.Time `json:"last_used_at,omitempty"`
}

type AliasDescription struct {
	Alias     string `json:"alias"`
	Plaintext string `json:"plaintext,omitempty"`
	UserId    string `json:"user_id"`
}

type PendingDeletionResponse struct {
	AppId    string     `json:"app_id"`
	DeleteAt *time.Time `json:"delete_at"`
}
