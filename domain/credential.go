package domain

import (
	"strings"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
)

// StoredCredential is one registered WebAuthn credential, keyed by
// (tenant, descriptor id). All lookups are tenant scoped.
type StoredCredential struct {
	Tenant               string     `gorm:"primaryKey;size:64" json:"tenant"`
	DescriptorId         []byte     `gorm:"primaryKey" json:"descriptor_id"`
	PublicKey            []byte     `gorm:"not null" json:"public_key"`
	UserHandle           []byte     `gorm:"not null;index" json:"user_handle"`
	UserId               string     `gorm:"size:256;not null;index" json:"user_id"`
	SignatureCounter     uint32     `gorm:"not null" json:"signature_counter"`
	AttestationFmt       string     `gorm:"size:32" json:"attestation_fmt"`
	CredType             string     `gorm:"size:32" json:"cred_type"`
	AaGuid               []byte     `json:"aa_guid"`
	RPID                 string     `gorm:"size:256" json:"rp_id"`
	Origin               string     `gorm:"size:256" json:"origin"`
	Device               string     `gorm:"size:256" json:"device"`
	Nickname             string     `gorm:"size:256" json:"nickname"`
	DescriptorTransports string     `gorm:"size:256" json:"descriptor_transports"`
	BackupEligible       bool       `gorm:"not null;default:false" json:"backup_eligible"`
	BackupState          bool       `gorm:"not null;default:false" json:"backup_state"`
	IsDiscoverable       bool       `gorm:"not null;default:false" json:"is_discoverable"`
	CreatedAt            *time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	LastUsedAt           *time.Time `gorm:"default:null" json:"last_used_at"`
}

func (StoredCredential) TableName() string {
	return "credentials"
}

// Transports parses the stored comma separated transport hints.
func (c *StoredCredential) Transports() []protocol.AuthenticatorTransport {
	if c.DescriptorTransports == "" {
		return nil
	}
	parts := strings.Split(c.DescriptorTransports, ",")
	transports := make([]protocol.AuthenticatorTransport, 0, len(parts))
	for _, p := range parts {
		transports = append(transports, protocol.AuthenticatorTransport(p))
	}
	return transports
}

// ToWebAuthn converts the stored row into the library credential used
// during assertion verification.
func (c *StoredCredential) ToWebAuthn() webauthn.Credential {
	return webauthn.Credential{
		ID:              c.DescriptorId,
		PublicKey:       c.PublicKey,
		AttestationType: c.AttestationFmt,
		Transport:       c.Transports(),
		Flags: webauthn.CredentialFlags{
			UserPresent:    true,
			BackupEligible: c.BackupEligible,
			BackupState:    c.BackupState,
		},
		Authenticator: webauthn.Authenticator{
			AAGUID:    c.AaGuid,
			SignCount: c.SignatureCounter,
		},
	}
}
