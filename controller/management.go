package controller

import (
	"passkey_api_ms/domain"
	"passkey_api_ms/dtos/request"
	"passkey_api_ms/services"

	"github.com/gofiber/fiber/v2"
)

type IManagementController interface {
	CreateApplication(c *fiber.Ctx) error
	CreatePublicKey(c *fiber.Ctx) error
	CreateSecretKey(c *fiber.Ctx) error
	ListApiKeys(c *fiber.Ctx) error
	LockApiKey(c *fiber.Ctx) error
	UnlockApiKey(c *fiber.Ctx) error
	DeleteApiKey(c *fiber.Ctx) error
	GetFeatures(c *fiber.Ctx) error
	SetFeatures(c *fiber.Ctx) error
	EnableSigninTokenEndpoint(c *fiber.Ctx) error
	DisableSigninTokenEndpoint(c *fiber.Ctx) error
	MarkDelete(c *fiber.Ctx) error
	CancelDelete(c *fiber.Ctx) error
	ListPendingDeletion(c *fiber.Ctx) error
	DeleteApplication(c *fiber.Ctx) error
}

type ManagementController struct {
	management services.IManagementService
}

func NewManagementController(management services.IManagementService) IManagementController {
	return &ManagementController{management: management}
}

func (mc *ManagementController) CreateApplication(c *fiber.Ctx) error {
	req := c.Locals("body").(*request.CreateApplicationRequest)

	resp, err := mc.management.CreateApplication(c.Params("appId"), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (mc *ManagementController) CreatePublicKey(c *fiber.Ctx) error {
	return mc.createKey(c, domain.ApiKeyTypePublic)
}

func (mc *ManagementController) CreateSecretKey(c *fiber.Ctx) error {
	return mc.createKey(c, domain.ApiKeyTypeSecret)
}

func (mc *ManagementController) createKey(c *fiber.Ctx, keyType string) error {
	req := c.Locals("body").(*request.CreateApiKeyRequest)

	resp, err := mc.management.CreateApiKey(c.Params("appId"), keyType, req.Scopes)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (mc *ManagementController) ListApiKeys(c *fiber.Ctx) error {
	resp, err := mc.management.ListApiKeys(c.Params("appId"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (mc *ManagementController) LockApiKey(c *fiber.Ctx) error {
	if err := mc.management.SetApiKeyLock(c.Params("appId"), c.Params("keyId"), true); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (mc *ManagementController) UnlockApiKey(c *fiber.Ctx) error {
	if err := mc.management.SetApiKeyLock(c.Params("appId"), c.Params("keyId"), false); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (mc *ManagementController) DeleteApiKey(c *fiber.Ctx) error {
	if err := mc.management.DeleteApiKey(c.Params("appId"), c.Params("keyId")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (mc *ManagementController) GetFeatures(c *fiber.Ctx) error {
	resp, err := mc.management.GetFeatures(c.Params("appId"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (mc *ManagementController) SetFeatures(c *fiber.Ctx) error {
	req := c.Locals("body").(*request.SetFeaturesRequest)

	if err := mc.management.SetFeatures(c.Params("appId"), req); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (mc *ManagementController) EnableSigninTokenEndpoint(c *fiber.Ctx) error {
	return mc.toggleSigninTokenEndpoint(c, true)
}

func (mc *ManagementController) DisableSigninTokenEndpoint(c *fiber.Ctx) error {
	return mc.toggleSigninTokenEndpoint(c, false)
}

func (mc *ManagementController) toggleSigninTokenEndpoint(c *fiber.Ctx, enabled bool) error {
	req := c.Locals("body").(*request.ToggleEndpointRequest)

	if err := mc.management.SetSignInTokenEndpoint(c.Params("appId"), enabled, req.PerformedBy); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (mc *ManagementController) MarkDelete(c *fiber.Ctx) error {
	req := c.Locals("body").(*request.MarkDeleteApplicationRequest)

	deleteAt, err := mc.management.MarkDelete(c.Params("appId"), req.PerformedBy)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"delete_at": deleteAt})
}

func (mc *ManagementController) CancelDelete(c *fiber.Ctx) error {
	if err := mc.management.CancelDelete(c.Params("appId")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (mc *ManagementController) ListPendingDeletion(c *fiber.Ctx) error {
	resp, err := mc.management.ListPendingDeletion()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (mc *ManagementController) DeleteApplication(c *fiber.Ctx) error {
	if err := mc.management.DeleteApplication(c.Params("appId")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
