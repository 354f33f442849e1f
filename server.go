package main

import (
	"passkey_api_ms/config"
	"passkey_api_ms/controller"
	"passkey_api_ms/domain"
	"passkey_api_ms/dtos/request"
	"passkey_api_ms/middleware"
	"passkey_api_ms/services"

	"github.com/gofiber/fiber/v2"
)

type Server struct {
	RegisterController   controller.IRegisterController
	SigninController     controller.ISigninController
	CredentialController controller.ICredentialController
	ManagementController controller.IManagementController
	ApiKeyService        services.IApiKeyService
}

// NOTE: Server Constructor
func NewServer(
	RegisterController controller.IRegisterController,
	SigninController controller.ISigninController,
	CredentialController controller.ICredentialController,
	ManagementController controller.IManagementController,
	ApiKeyService services.IApiKeyService,
) *Server {
	return &Server{
		RegisterController:   RegisterController,
		SigninController:     SigninController,
		CredentialController: CredentialController,
		ManagementController: ManagementController,
		ApiKeyService:        ApiKeyService,
	}
}

// NOTE: Start Fiber Server
func (s *Server) Start() *fiber.App {
	// NOTE: Initialize Fiber Server
	app := fiber.New()

	app.Use(middleware.RecoveryMiddleware())
	app.Use(middleware.LoggingMiddleware(config.InitLogger()))

	// NOTE: Define API paths (context path and grouping by version)
	contextPath := app.Group(config.Conf.Application.Server.ContextPath)
	apiVersion := contextPath.Group(config.Conf.Application.Server.ApiVersion)

	registerGroup := apiVersion.Group("/register",
		middleware.RequireSecretKey(s.ApiKeyService, domain.ScopeRegister))
	registerGroup.Post("/begin",
		middleware.ValidateBody[request.RegisterBeginRequest](),
		s.RegisterController.Begin)
	registerGroup.Post("/finish", s.RegisterController.Finish)

	signinGroup := apiVersion.Group("/signin")
	signinGroup.Post("/begin",
		middleware.RequirePublicKey(s.ApiKeyService, domain.ScopeLogin),
		middleware.ValidateBody[request.SigninBeginRequest](),
		s.SigninController.Begin)
	signinGroup.Post("/finish",
		middleware.RequirePublicKey(s.ApiKeyService, domain.ScopeLogin),
		s.SigninController.Finish)
	signinGroup.Post("/generate-token",
		middleware.RequireSecretKey(s.ApiKeyService, domain.ScopeTokenRegister),
		middleware.ValidateBody[request.GenerateSigninTokenRequest](),
		s.SigninController.GenerateToken)
	signinGroup.Post("/verify-token",
		middleware.RequireSecretKey(s.ApiKeyService, domain.ScopeTokenVerify),
		middleware.ValidateBody[request.VerifySigninTokenRequest](),
		s.SigninController.VerifyToken)

	credentialGroup := apiVersion.Group("/credentials",
		middleware.RequireSecretKey(s.ApiKeyService, domain.ScopeRegister))
	credentialGroup.Get("/list", s.CredentialController.List)
	credentialGroup.Post("/delete",
		middleware.ValidateBody[request.DeleteCredentialRequest](),
		s.CredentialController.Delete)

	aliasGroup := apiVersion.Group("/alias",
		middleware.RequireSecretKey(s.ApiKeyService, domain.ScopeRegister))
	aliasGroup.Get("/list", s.CredentialController.ListAliases)
	aliasGroup.Post("/set",
		middleware.ValidateBody[request.SetAliasRequest](),
		s.CredentialController.SetAliases)

	adminGroup := app.Group("/admin",
		middleware.GlobalRateLimiter(),
		middleware.RequireManagementKey(config.Conf.Application.Security.ManagementKey))
	adminGroup.Get("/apps/pending-deletion", s.ManagementController.ListPendingDeletion)
	appGroup := adminGroup.Group("/apps/:appId")
	appGroup.Post("/create",
		middleware.ValidateBody[request.CreateApplicationRequest](),
		s.ManagementController.CreateApplication)
	appGroup.Post("/public-keys",
		middleware.ValidateBody[request.CreateApiKeyRequest](),
		s.ManagementController.CreatePublicKey)
	appGroup.Post("/secret-keys",
		middleware.ValidateBody[request.CreateApiKeyRequest](),
		s.ManagementController.CreateSecretKey)
	appGroup.Get("/api-keys", s.ManagementController.ListApiKeys)
	appGroup.Post("/api-keys/:keyId/lock", s.ManagementController.LockApiKey)
	appGroup.Post("/api-keys/:keyId/unlock", s.ManagementController.UnlockApiKey)
	appGroup.Delete("/api-keys/:keyId", s.ManagementController.DeleteApiKey)
	appGroup.Get("/features", s.ManagementController.GetFeatures)
	appGroup.Post("/features",
		middleware.ValidateBody[request.SetFeaturesRequest](),
		s.ManagementController.SetFeatures)
	appGroup.Post("/sign-in-token/enable",
		middleware.ValidateBody[request.ToggleEndpointRequest](),
		s.ManagementController.EnableSigninTokenEndpoint)
	appGroup.Post("/sign-in-token/disable",
		middleware.ValidateBody[request.ToggleEndpointRequest](),
		s.ManagementController.DisableSigninTokenEndpoint)
	appGroup.Post("/mark-delete",
		middleware.ValidateBody[request.MarkDeleteApplicationRequest](),
		s.ManagementController.MarkDelete)
	appGroup.Post("/cancel-delete", s.ManagementController.CancelDelete)
	appGroup.Delete("/", s.ManagementController.DeleteApplication)

	return app
}
