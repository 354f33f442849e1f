package domain

import "github.com/go-webauthn/webauthn/webauthn"

// CeremonyUser adapts a tenant user and its stored credentials to the
// webauthn.User interface for the duration of one ceremony.
type CeremonyUser struct {
	Id          string
	Username    string
	DisplayName string
	Handle      []byte
	Credentials []StoredCredential
}

func NewCeremonyUser(userId, username, displayName string, creds []StoredCredential) *CeremonyUser {
	handle := []byte(userId)
	if len(creds) > 0 && len(creds[0].UserHandle) > 0 {
		handle = creds[0].UserHandle
	}
	if displayName == "" {
		displayName = username
	}
	return &CeremonyUser{
		Id:          userId,
		Username:    username,
		DisplayName: displayName,
		Handle:      handle,
		Credentials: creds,
	}
}

func (u *CeremonyUser) WebAuthnID() []byte {
	return u.Handle
}

func (u *CeremonyUser) WebAuthnName() string {
	return u.Username
}

func (u *CeremonyUser) WebAuthnDisplayName() string {
	return u.DisplayName
}

func (u *CeremonyUser) WebAuthnCredentials() []webauthn.Credential {
	creds := make([]webauthn.Credential, 0, len(u.Credentials))
	for _, c := range u.Credentials {
		creds = append(creds, c.ToWebAuthn())
	}
	return creds
}
