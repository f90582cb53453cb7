package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/urbanwheels/urbanwheels/internal/pkg/config"
	"github.com/urbanwheels/urbanwheels/internal/pkg/database"
	"github.com/urbanwheels/urbanwheels/internal/pkg/health"
	"github.com/urbanwheels/urbanwheels/internal/pkg/logger"
	"github.com/urbanwheels/urbanwheels/internal/pkg/middleware"
	"github.com/urbanwheels/urbanwheels/internal/pkg/nats"
	nrpkg "github.com/urbanwheels/urbanwheels/internal/pkg/newrelic"
	"github.com/urbanwheels/urbanwheels/internal/utils"
	"github.com/urbanwheels/urbanwheels/services/fleet/gateway"
	"github.com/urbanwheels/urbanwheels/services/fleet/handler"
	"github.com/urbanwheels/urbanwheels/services/fleet/repository"
	"github.com/urbanwheels/urbanwheels/services/fleet/usecase"
)

func main() {
	appName := "urbanwheels-fleet"
	configPath := "config/fleet.env"
	configs := config.InitConfig(configPath)

	// Initialize New Relic and Zap logger
	nrApp := nrpkg.InitNewRelic(configs)

	zapLogger, err := logger.InitZapLoggerFromConfig(configs, nrApp)
	if err != nil {
		log.Fatalf("Failed to create Zap logger: %v", err)
	}
	defer zapLogger.Close()

	// Set global logger for application-wide access
	logger.SetGlobalLogger(zapLogger)

	logger.Info("Starting application",
		logger.String("app", appName),
		logger.String("version", configs.App.Version),
		logger.String("environment", configs.App.Environment),
	)

	// Initialize PostgreSQL database connection
	postgresClient, err := database.NewPostgresClient(configs.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to PostgreSQL", logger.Err(err))
	}
	defer postgresClient.Close()

	// Initialize Redis client
	redisClient, err := database.NewRedisClient(configs.Redis)
	if err != nil {
		zapLogger.Fatal("Failed to connect to Redis", logger.Err(err))
	}
	defer redisClient.Close()

	// Initialize NATS client
	natsClient, err := nats.NewClient(configs.NATS.URL)
	if err != nil {
		zapLogger.Fatal("Failed to connect to NATS", logger.Err(err))
	}
	defer natsClient.Close()

	if !natsClient.IsConnected() {
		zapLogger.Fatal("NATS client not connected")
	}

	// Initialize repositories
	vehicleRepo := repository.NewVehicleRepository(configs, postgresClient.GetDB(), redisClient)
	tripRepo := repository.NewTripRepository(configs, postgresClient.GetDB())
	userRepo := repository.NewUserRepository(configs, postgresClient.GetDB())

	// Initialize gateway
	fleetGW := gateway.NewFleetGW(natsClient)

	// Initialize usecases
	catalogUC, err := usecase.NewCatalogUC(configs, vehicleRepo)
	if err != nil {
		zapLogger.Fatal("Failed to initialize catalog use case", logger.Err(err))
	}

	tripUC, err := usecase.NewTripUC(configs, vehicleRepo, tripRepo, userRepo, fleetGW)
	if err != nil {
		zapLogger.Fatal("Failed to initialize trip use case", logger.Err(err))
	}

	// Initialize handlers
	fleetHandler := handler.NewHandler(catalogUC, tripUC, configs)

	// Initialize Echo server
	e := echo.New()
	e.Validator = utils.NewRequestValidator()

	// Add middlewares (panic recovery should be first)
	e.Use(middleware.PanicRecoveryMiddleware(zapLogger))
	e.Use(middleware.RequestIDMiddleware())
	e.Use(nrpkg.Middleware(nrApp))
	e.Use(logger.ZapEchoMiddleware(zapLogger))

	// Initialize API key middleware
	apiKeyMiddleware := middleware.NewAPIKeyMiddleware(&configs.APIKey)

	// Initialize health service
	healthService := health.NewHealthService(zapLogger)
	healthService.AddChecker("postgres", postgresClient.Ping)
	healthService.AddChecker("redis", redisClient.Ping)
	healthService.AddChecker("nats", func(ctx context.Context) error {
		if !natsClient.IsConnected() {
			return fmt.Errorf("nats connection lost")
		}
		return nil
	})

	// Register health endpoints
	health.RegisterEndpoints(e, appName, configs.App.Version, healthService)

	// Register service routes
	fleetHandler.RegisterRoutes(e, apiKeyMiddleware)

	// Start server in goroutine
	go func() {
		addr := fmt.Sprintf(":%d", configs.Server.Port)
		zapLogger.Info("Starting HTTP server",
			logger.String("address", addr),
			logger.String("app", appName))

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", logger.Err(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	zapLogger.Info("Received shutdown signal", logger.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	zapLogger.Info("Shutting down HTTP server...")
	if err := e.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", logger.Err(err))
	}

	zapLogger.Info("Closing PostgreSQL connection...")
	postgresClient.Close()

	zapLogger.Info("Closing Redis connection...")
	if err := redisClient.Close(); err != nil {
		zapLogger.Error("Error closing Redis connection", logger.Err(err))
	}

	zapLogger.Info("Closing NATS connection...")
	natsClient.Close()

	if nrApp != nil {
		zapLogger.Info("Shutting down New Relic...")
		nrApp.Shutdown(10 * time.Second)
	}

	zapLogger.Info("Server exiting gracefully")
	_ = zapLogger.Sync()
}
