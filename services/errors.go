package services

import "fmt"

// ApiError is a deterministic protocol level rejection. Every ceremony
// failure maps to one of the values below; anything else surfaced by the
// service layer is an infrastructure fault and must be reported as
// ErrInternal so callers can tell "retry with a new Begin" apart from
// "the service itself is unhealthy".
type ApiError struct {
	Code    string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *ApiError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Authorization layer.
var (
	ErrInvalidKey        = &ApiError{Code: "invalid_key", Message: "A valid api key is required for this operation.", Status: 401}
	ErrKeyLocked         = &ApiError{Code: "key_locked", Message: "The api key has been locked and cannot be used.", Status: 401}
	ErrInsufficientScope = &ApiError{Code: "insufficient_scope", Message: "The api key does not grant the required scope.", Status: 403}
)

// Policy layer.
var (
	ErrAttestationNotAllowed        = &ApiError{Code: "invalid_attestation", Message: "Attestation type not supported on your plan.", Status: 400}
	ErrUnsupportedAttestationFormat = &ApiError{Code: "invalid_attestation", Message: "Attestation type not supported.", Status: 400}
	ErrUserQuotaExceeded            = &ApiError{Code: "max_users_reached", Message: "The maximum number of users for this application has been reached.", Status: 400}
	ErrTokenEndpointDisabled        = &ApiError{Code: "sign_in_token_endpoint_disabled", Message: "The generate sign-in token endpoint is disabled for this application.", Status: 403}
)

// Protocol binding layer.
var (
	ErrChallengeExpired     = &ApiError{Code: "expired_challenge", Message: "The challenge has expired. Begin a new ceremony.", Status: 400}
	ErrChallengeAlreadyUsed = &ApiError{Code: "challenge_already_used", Message: "The challenge has already been consumed.", Status: 400}
	ErrOriginMismatch       = &ApiError{Code: "origin_mismatch", Message: "The response origin does not match the origin the ceremony was bound to.", Status: 400}
	ErrRpIdMismatch         = &ApiError{Code: "rpid_mismatch", Message: "The response RP ID does not match the RP ID the ceremony was bound to.", Status: 400}
	ErrChallengeMismatch    = &ApiError{Code: "challenge_mismatch", Message: "The response challenge does not match the issued challenge.", Status: 400}
)

// Cryptographic / credential layer.
var (
	ErrInvalidSignature         = &ApiError{Code: "invalid_signature", Message: "The authenticator response failed cryptographic verification.", Status: 400}
	ErrUnknownCredential        = &ApiError{Code: "unknown_credential", Message: "The credential is not registered for this application.", Status: 400}
	ErrDuplicateCredential      = &ApiError{Code: "duplicate_credential", Message: "The credential is already registered for this application.", Status: 409}
	ErrCredentialCloning        = &ApiError{Code: "credential_cloning_detected", Message: "The signature counter indicates a possibly cloned authenticator.", Status: 400}
	ErrUserVerificationRequired = &ApiError{Code: "user_verification_required", Message: "User verification was required but not performed by the authenticator.", Status: 400}
	ErrInvalidToken             = &ApiError{Code: "invalid_token", Message: "The sign-in token is invalid, expired or already used.", Status: 400}
)

// Management layer.
var (
	ErrAppExists   = &ApiError{Code: "app_exists", Message: "An application with this id already exists.", Status: 409}
	ErrAppNotFound = &ApiError{Code: "app_not_found", Message: "No application with this id exists.", Status: 404}
)

// ErrInternal hides infrastructure failures from the protocol surface.
var ErrInternal = &ApiError{Code: "internal_error", Message: "An unexpected error occurred. The operation is safe to retry.", Status: 500}
