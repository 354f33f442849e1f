package controller

import (
	"passkey_api_ms/dtos/request"
	"passkey_api_ms/middleware"
	"passkey_api_ms/services"

	"github.com/gofiber/fiber/v2"
)

type ISigninController interface {
	Begin(c *fiber.Ctx) error
	Finish(c *fiber.Ctx) error
	GenerateToken(c *fiber.Ctx) error
	VerifyToken(c *fiber.Ctx) error
}

type SigninController struct {
	ceremonies services.ICeremonyService
	tokens     services.ISigninTokenService
}

func NewSigninController(ceremonies services.ICeremonyService, tokens services.ISigninTokenService) ISigninController {
	return &SigninController{ceremonies: ceremonies, tokens: tokens}
}

func (sc *SigninController) Begin(c *fiber.Ctx) error {
	tenant := middleware.TenantFromContext(c)
	req := c.Locals("body").(*request.SigninBeginRequest)

	resp, err := sc.ceremonies.SigninBegin(tenant, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

// Finish takes the raw navigator.credentials.get response as its body; the
// session token from Begin rides in the Session-Token header.
func (sc *SigninController) Finish(c *fiber.Ctx) error {
	tenant := middleware.TenantFromContext(c)
	token := c.Get(SessionTokenHeader)
	if token == "" {
		return c.Status(400).JSON(fiber.Map{"error": "missing session token"})
	}

	req, err := httpRequest(c)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to convert request"})
	}

	resp, err := sc.ceremonies.SigninFinish(tenant, token, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (sc *SigninController) GenerateToken(c *fiber.Ctx) error {
	tenant := middleware.TenantFromContext(c)
	req := c.Locals("body").(*request.GenerateSigninTokenRequest)

	resp, err := sc.tokens.Generate(tenant, req.UserId)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (sc *SigninController) VerifyToken(c *fiber.Ctx) error {
	tenant := middleware.TenantFromContext(c)
	req := c.Locals("body").(*request.VerifySigninTokenRequest)

	resp, err := sc.tokens.Verify(tenant, req.Token)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}
