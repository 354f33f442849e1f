package domain

import (
	"testing"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/stretchr/testify/assert"
)

func TestStoredCredentialTransports(t *testing.T) {
	cred := &StoredCredential{DescriptorTransports: "internal,hybrid"}
	assert.Equal(t, []protocol.AuthenticatorTransport{
		protocol.AuthenticatorTransport("internal"),
		protocol.AuthenticatorTransport("hybrid"),
	}, cred.Transports())

	assert.Nil(t, (&StoredCredential{}).Transports())
}

func TestStoredCredentialToWebAuthn(t *testing.T) {
	cred := &StoredCredential{
		DescriptorId:     []byte{1, 2, 3},
		PublicKey:        []byte{4, 5, 6},
		AttestationFmt:   "none",
		SignatureCounter: 7,
		AaGuid:           []byte{8, 9},
		BackupEligible:   true,
		BackupState:      true,
	}

	converted := cred.ToWebAuthn()
	assert.Equal(t, cred.DescriptorId, converted.ID)
	assert.Equal(t, cred.PublicKey, converted.PublicKey)
	assert.Equal(t, uint32(7), converted.Authenticator.SignCount)
	assert.True(t, converted.Flags.BackupEligible)
	assert.True(t, converted.Flags.BackupState)
}

func TestCeremonyUserHandleReuse(t *testing.T) {
	existing := []StoredCredential{{UserHandle: []byte("stable-handle")}}

	user := NewCeremonyUser("alice", "alice", "", existing)
	assert.Equal(t, []byte("stable-handle"), user.WebAuthnID())
	assert.Equal(t, "alice", user.WebAuthnDisplayName())

	fresh := NewCeremonyUser("bob", "bob", "Bob", nil)
	assert.Equal(t, []byte("bob"), fresh.WebAuthnID())
	assert.Equal(t, "Bob", fresh.WebAuthnDisplayName())
}
