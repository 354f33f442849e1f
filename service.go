package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"passkey_api_ms/config"
	"passkey_api_ms/controller"
	"passkey_api_ms/middleware"
	"passkey_api_ms/repository"
	"passkey_api_ms/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type service struct {
	//DB
	dbConnection *gorm.DB

	//Redis Client
	redisClient *redis.Client

	// Repository
	applicationRepository repository.IApplicationRepository
	credentialRepository  repository.ICredentialRepository
	aliasRepository       repository.IAliasRepository

	// Service
	eventService       services.IEventService
	featureService     services.IFeatureService
	challengeService   services.IChallengeService
	apiKeyService      services.IApiKeyService
	ceremonyService    services.ICeremonyService
	signinTokenService services.ISigninTokenService
	credentialService  services.ICredentialService
	managementService  services.IManagementService

	// Controller
	registerController   controller.IRegisterController
	signinController     controller.ISigninController
	credentialController controller.ICredentialController
	managementController controller.IManagementController
}

// NOTE: Service Start
func (s *service) Start() {
	log.Info("Opening database connection...")
	s.dbConnection = config.OpenDatabaseConnection(config.Conf.Application.Datasource.PrimaryURL)
	config.Migrate(config.Conf.Application.Datasource.PrimaryURL)

	log.Info("Opening redis connection...")
	s.redisClient = config.ConnectToRedis(config.Conf.Application.Redis.Host)

	log.Info("Connecting to kafka...")
	producer, err := config.ConnectToKafka(config.Conf.Application.Kafka.Brokers)
	if err != nil {
		// The audit trail is best effort: a broker outage must never keep
		// ceremonies from running.
		log.Error("Kafka unavailable, audit events disabled: ", err)
		s.eventService = services.NewNopEventService()
	} else {
		s.eventService = services.NewEventService(producer, config.Conf.Application.Kafka.Topic)
	}

	middleware.InitValidator()

	// NOTE: Dependency Injections
	s.DependencyInjection()

	// NOTE: Start Fiber server...
	app := NewServer(
		s.registerController,
		s.signinController,
		s.credentialController,
		s.managementController,
		s.apiKeyService,
	).Start()

	log.Info("Server starting..")
	// NOTE: Server start with goroutine
	go func() {
		if err := app.Listen(config.Conf.Application.Server.Port); err != nil {
			log.Fatal("Server failed to start")
		}
	}()
	// NOTE: Keep OS signals for graceful shutdown
	s.gracefulShutdown(app)
}

// NOTE: Depency Injection Operation
func (s *service) DependencyInjection() {
	// NOTE: Repositories Injections
	s.applicationRepository = repository.NewApplicationRepository()
	s.credentialRepository = repository.NewCredentialRepository()
	s.aliasRepository = repository.NewAliasRepository()

	// NOTE: Services Injections
	s.featureService = services.NewFeatureService(s.dbConnection, s.applicationRepository)
	s.challengeService = services.NewChallengeService(s.redisClient, config.ChallengeTTL())
	s.apiKeyService = services.NewApiKeyService(s.dbConnection, s.applicationRepository, s.eventService)
	s.ceremonyService = services.NewCeremonyService(s.dbConnection, s.credentialRepository, s.aliasRepository, s.featureService, s.challengeService, s.eventService)
	s.signinTokenService = services.NewSigninTokenService(
		[]byte(config.Conf.Application.Security.Secret),
		config.Conf.Application.Security.Issuer,
		time.Duration(config.Conf.Application.Security.SignInTokenValidityInSeconds)*time.Second,
		s.redisClient,
		s.featureService,
		s.eventService,
	)
	s.credentialService = services.NewCredentialService(s.dbConnection, s.credentialRepository, s.aliasRepository, s.featureService, s.eventService)
	s.managementService = services.NewManagementService(s.dbConnection, s.applicationRepository, s.featureService, s.eventService)

	// NOTE: Controllers Injections
	s.registerController = controller.NewRegisterController(s.ceremonyService)
	s.signinController = controller.NewSigninController(s.ceremonyService, s.signinTokenService)
	s.credentialController = controller.NewCredentialController(s.credentialService)
	s.managementController = controller.NewManagementController(s.managementService)
}

// NOTE: Graceful shutdown operation
func (s *service) gracefulShutdown(app *fiber.App) {

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// NOTE:Server Shutdown when keep signal
	<-sigChan
	log.Info("Shutting down server...")
	// NOTE: Creating context with timeout for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// NOTE: Shutdown Fiber server
	if err := app.Shutdown(); err != nil {
		log.Error("error while shutting down app", err)
	}

	// NOTE: Shutdown Database connection
	done := make(chan bool)
	go func() {
		config.CloseDatabaseConnection(s.dbConnection)
		done <- true
	}()

	select {
	case <-ctx.Done():
		log.Error("timeout while shutting down database", ctx.Err())
	case <-done:
		log.Info("database is gracefully shutdown", ctx.Err())
	}
}
