package domain

// AliasPointer maps a human friendly alias to a WebAuthn user id within a
// tenant. Alias holds the sha256 hex digest when the tenant has alias
// hashing enabled, otherwise the plaintext is retained too.
type AliasPointer struct {
	Tenant    string `gorm:"primaryKey;size:64" json:"tenant"`
	Alias     string `gorm:"primaryKey;size:256" json:"alias"`
	UserId    string `gorm:"size:256;not null;index" json:"user_id"`
	Plaintext string `gorm:"size:256" json:"plaintext"`
}

func (AliasPointer) TableName() string {
	return "aliases"
}
