package middleware

import (
	"crypto/subtle"
	"errors"

	"passkey_api_ms/domain"
	"passkey_api_ms/services"

	"github.com/gofiber/fiber/v2"
)

const (
	// HeaderApiKey carries the public key for login-class operations.
	HeaderApiKey = "ApiKey"
	// HeaderApiSecret carries the secret key for register/token operations.
	HeaderApiSecret = "ApiSecret"

	// LocalsKeyContext is where the resolved tenant context is stored.
	LocalsKeyContext = "keyContext"
)

// RequirePublicKey authorizes the request with the ApiKey header and the
// given scope. Authorization always runs before any cryptographic work.
func RequirePublicKey(apiKeys services.IApiKeyService, scope string) fiber.Handler {
	return requireKey(apiKeys, HeaderApiKey, domain.ApiKeyTypePublic, scope)
}

// RequireSecretKey authorizes the request with the ApiSecret header and the
// given scope.
func RequireSecretKey(apiKeys services.IApiKeyService, scope string) fiber.Handler {
	return requireKey(apiKeys, HeaderApiSecret, domain.ApiKeyTypeSecret, scope)
}

func requireKey(apiKeys services.IApiKeyService, header string, keyType string, scope string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		value := c.Get(header)
		if value == "" {
			return writeApiError(c, services.ErrInvalidKey)
		}
		keyContext, err := apiKeys.Resolve(value, keyType, scope)
		if err != nil {
			var apiErr *services.ApiError
			if errors.As(err, &apiErr) {
				return writeApiError(c, apiErr)
			}
			return writeApiError(c, services.ErrInternal)
		}
		c.Locals(LocalsKeyContext, keyContext)
		return c.Next()
	}
}

// RequireManagementKey guards the /admin surface with the configured master
// key presented in the ManagementKey header.
func RequireManagementKey(managementKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		presented := c.Get("ManagementKey")
		if managementKey == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(managementKey)) != 1 {
			return writeApiError(c, services.ErrInvalidKey)
		}
		return c.Next()
	}
}

// TenantFromContext returns the tenant resolved by the auth middleware.
func TenantFromContext(c *fiber.Ctx) string {
	keyContext, ok := c.Locals(LocalsKeyContext).(*services.KeyContext)
	if !ok {
		return ""
	}
	return keyContext.Tenant
}

func writeApiError(c *fiber.Ctx, apiErr *services.ApiError) error {
	return c.Status(apiErr.Status).JSON(apiErr)
}
