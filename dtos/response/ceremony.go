package response

import (
	"time"

	"github.com/go-webauthn/webauthn/protocol"
)

// RegisterBeginResponse carries the creation options for
// navigator.credentials.create plus the opaque single-use session token the
// client must present at finish.
type RegisterBeginResponse struct {
	Options      *protocol.CredentialCreation `json:"options"`
	SessionToken string                       `json:"session_token"`
}

type SigninBeginResponse struct {
	Options      *protocol.CredentialAssertion `json:"options"`
	SessionToken string                        `json:"session_token"`
}

type RegisterFinishResponse struct {
	CredentialId string `json:"credential_id"`
	UserId       string `json:"user_id"`
}

type SigninFinishResponse struct {
	UserId       string     `json:"user_id"`
	CredentialId string     `json:"credential_id"`
	LastUsedAt   *time.Time `json:"last_used_at,omitempty"`
}

type SigninTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type VerifySigninTokenResponse struct {
	UserId string `json:"user_id"`
}
