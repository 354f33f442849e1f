package controller

import (
	"errors"
	"net/http"

	"passkey_api_ms/services"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// SessionTokenHeader carries the opaque ceremony session token on finish
// requests whose body is the raw authenticator response.
const SessionTokenHeader = "Session-Token"

// fail maps a service error to its HTTP representation.
func fail(c *fiber.Ctx, err error) error {
	var apiErr *services.ApiError
	if errors.As(err, &apiErr) {
		return c.Status(apiErr.Status).JSON(apiErr)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(services.ErrInternal)
}

// httpRequest converts the fiber (fasthttp) request into a *http.Request so
// the webauthn protocol parsers can consume the raw body.
func httpRequest(c *fiber.Ctx) (*http.Request, error) {
	req := new(http.Request)
	if err := fasthttpadaptor.ConvertRequest(c.Context(), req, true); err != nil {
		return nil, err
	}
	return req, nil
}
