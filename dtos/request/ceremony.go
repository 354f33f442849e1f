package request

// RegisterBeginRequest starts a registration ceremony. Origin and RPID are
// carried explicitly so server side validation never depends on transport
// headers.
type RegisterBeginRequest struct {
	UserId           string   `json:"user_id" validate:"required,max=256"`
	Username         string   `json:"username" validate:"required,max=256"`
	DisplayName      string   `json:"display_name" validate:"max=256"`
	Origin           string   `json:"origin" validate:"required,url"`
	RPID             string   `json:"rp_id" validate:"required,max=256"`
	Attestation      string   `json:"attestation" validate:"omitempty,oneof=none direct indirect"`
	UserVerification string   `json:"user_verification" validate:"omitempty,oneof=required preferred discouraged"`
	Discoverable     bool     `json:"discoverable"`
	Nickname         string   `json:"nickname" validate:"max=256"`
	Aliases          []string `json:"aliases" validate:"max=10,dive,max=256"`
}

// SigninBeginRequest starts an authentication ceremony. Either UserId or
// Alias selects the account; with neither the ceremony is discoverable.
type SigninBeginRequest struct {
	UserId           string `json:"user_id" validate:"max=256"`
	Alias            string `json:"alias" validate:"max=256"`
	Origin           string `json:"origin" validate:"required,url"`
	RPID             string `json:"rp_id" validate:"required,max=256"`
	UserVerification string `json:"user_verification" validate:"omitempty,oneof=required preferred discouraged"`
	StepUp           bool   `json:"step_up"`
}

type GenerateSigninTokenRequest struct {
	UserId string `json:"user_id" validate:"required,max=256"`
}

type VerifySigninTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type DeleteCredentialRequest struct {
	CredentialId string `json:"credential_id" validate:"required"`
}

type SetAliasRequest struct {
	UserId  string   `json:"user_id" validate:"required,max=256"`
	Aliases []string `json:"aliases" validate:"required,max=10,dive,required,max=256"`
	Hashing *bool    `json:"hashing"`
}
