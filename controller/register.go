package controller

import (
	"passkey_api_ms/dtos/request"
	"passkey_api_ms/middleware"
	"passkey_api_ms/services"

	"github.com/gofiber/fiber/v2"
)

type IRegisterController interface {
	Begin(c *fiber.Ctx) error
	Finish(c *fiber.Ctx) error
}

type RegisterController struct {
	ceremonies services.ICeremonyService
}

func NewRegisterController(ceremonies services.ICeremonyService) IRegisterController {
	return &RegisterController{ceremonies: ceremonies}
}

func (rc *RegisterController) Begin(c *fiber.Ctx) error {
	tenant := middleware.TenantFromContext(c)
	req := c.Locals("body").(*request.RegisterBeginRequest)

	resp, err := rc.ceremonies.RegisterBegin(tenant, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

// Finish takes the raw navigator.credentials.create response as its body;
// the session token from Begin rides in the Session-Token header.
func (rc *RegisterController) Finish(c *fiber.Ctx) error {
	tenant := middleware.TenantFromContext(c)
	token := c.Get(SessionTokenHeader)
	if token == "" {
		return c.Status(400).JSON(fiber.Map{"error": "missing session token"})
	}

	req, err := httpRequest(c)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to convert request"})
	}

	resp, err := rc.ceremonies.RegisterFinish(tenant, token, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}
