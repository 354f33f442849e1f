package controller

import (
	"passkey_api_ms/dtos/request"
	"passkey_api_ms/middleware"
	"passkey_api_ms/services"

	"github.com/gofiber/fiber/v2"
)

type ICredentialController interface {
	List(c *fiber.Ctx) error
	Delete(c *fiber.Ctx) error
	ListAliases(c *fiber.Ctx) error
	SetAliases(c *fiber.Ctx) error
}

type CredentialController struct {
	credentials services.ICredentialService
}

func NewCredentialController(credentials services.ICredentialService) ICredentialController {
	return &CredentialController{credentials: credentials}
}

func (cc *CredentialController) List(c *fiber.Ctx) error {
	tenant := middleware.TenantFromContext(c)
	userId := c.Query("userId")
	if userId == "" {
		return c.Status(400).JSON(fiber.Map{"error": "userId query parameter is required"})
	}

	resp, err := cc.credentials.List(tenant, userId)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (cc *CredentialController) Delete(c *fiber.Ctx) error {
	tenant := middleware.TenantFromContext(c)
	req := c.Locals("body").(*request.DeleteCredentialRequest)

	if err := cc.credentials.Delete(tenant, req.CredentialId); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (cc *CredentialController) ListAliases(c *fiber.Ctx) error {
	tenant := middleware.TenantFromContext(c)
	userId := c.Query("userId")
	if userId == "" {
		return c.Status(400).JSON(fiber.Map{"error": "userId query parameter is required"})
	}

	resp, err := cc.credentials.ListAliases(tenant, userId)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (cc *CredentialController) SetAliases(c *fiber.Ctx) error {
	tenant := middleware.TenantFromContext(c)
	req := c.Locals("body").(*request.SetAliasRequest)

	if err := cc.credentials.SetAliases(tenant, req); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
