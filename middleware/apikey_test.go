package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"passkey_api_ms/domain"
	"passkey_api_ms/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeApiKeyService struct {
	keyContext *services.KeyContext
	err        error
}

func (f *fakeApiKeyService) Resolve(string, string, string) (*services.KeyContext, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.keyContext, nil
}

func newAuthTestApp(apiKeys services.IApiKeyService) *fiber.App {
	app := fiber.New()
	app.Post("/protected",
		RequireSecretKey(apiKeys, domain.ScopeRegister),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"tenant": TenantFromContext(c)})
		})
	return app
}

func TestRequireSecretKey(t *testing.T) {
	t.Run("resolved tenant is attached to the request", func(t *testing.T) {
		app := newAuthTestApp(&fakeApiKeyService{keyContext: &services.KeyContext{Tenant: "acme"}})

		req := httptest.NewRequest(http.MethodPost, "/protected", nil)
		req.Header.Set(HeaderApiSecret, "acme:secret:abcdefgh12345678")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("missing header is unauthorized", func(t *testing.T) {
		app := newAuthTestApp(&fakeApiKeyService{keyContext: &services.KeyContext{Tenant: "acme"}})

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/protected", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("locked key is rejected with its own status", func(t *testing.T) {
		app := newAuthTestApp(&fakeApiKeyService{err: services.ErrKeyLocked})

		req := httptest.NewRequest(http.MethodPost, "/protected", nil)
		req.Header.Set(HeaderApiSecret, "acme:secret:abcdefgh12345678")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("insufficient scope is forbidden", func(t *testing.T) {
		app := newAuthTestApp(&fakeApiKeyService{err: services.ErrInsufficientScope})

		req := httptest.NewRequest(http.MethodPost, "/protected", nil)
		req.Header.Set(HeaderApiSecret, "acme:secret:abcdefgh12345678")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestRequireManagementKey(t *testing.T) {
	app := fiber.New()
	app.Get("/admin", RequireManagementKey("master-key"), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	t.Run("correct key passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("ManagementKey", "master-key")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("wrong key is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("ManagementKey", "guess")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("empty configured key never passes", func(t *testing.T) {
		emptyApp := fiber.New()
		emptyApp.Get("/admin", RequireManagementKey(""), func(c *fiber.Ctx) error {
			return c.SendStatus(http.StatusOK)
		})

		resp, err := emptyApp.Test(httptest.NewRequest(http.MethodGet, "/admin", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
