package request

type CreateApplicationRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	AdminEmail  string `json:"admin_email" validate:"omitempty,email,max=256"`
	PerformedBy string `json:"performed_by" validate:"required"`
}

type CreateApiKeyRequest struct {
	Scopes []string `json:"scopes" validate:"omitempty,dive,oneof=register login token_register token_verify"`
}

type SetFeaturesRequest struct {
	EventLoggingIsEnabled       *bool  `json:"event_logging_is_enabled"`
	EventLoggingRetentionPeriod *int   `json:"event_logging_retention_period" validate:"omitempty,gte=0,lte=3650"`
	MaxUsers                    *int64 `json:"max_users" validate:"omitempty,gt=0"`
	AllowAttestation            *bool  `json:"allow_attestation"`
	PerformedBy                 string `json:"performed_by" validate:"required"`
}

type MarkDeleteApplicationRequest struct {
	PerformedBy string `json:"performed_by" validate:"required"`
}

type ToggleEndpointRequest struct {
	PerformedBy string `json:"performed_by" validate:"required"`
}
