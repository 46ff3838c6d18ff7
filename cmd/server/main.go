package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/joho/godotenv"
	"github.com/mockforge/mockforge/internal/config"
	"github.com/mockforge/mockforge/internal/database"
	"github.com/mockforge/mockforge/internal/faker"
	"github.com/mockforge/mockforge/internal/handlers"
	"github.com/mockforge/mockforge/internal/middleware"
	"github.com/mockforge/mockforge/internal/utils"
	"github.com/rs/zerolog/log"

	_ "github.com/mockforge/mockforge/docs/api" // Swagger docs
)

// @title MockForge API
// @version 1.0.0
// @description Template-driven mock REST API service
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/mockforge/mockforge

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:3000
// @BasePath /api
// @schemes http https

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	registry := faker.Default()

	app := fiber.New(fiber.Config{
		ErrorHandler:          utils.ErrorHandler,
		DisableStartupMessage: false,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("mockforge")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API routes under /api
	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())

	healthHandler := &handlers.HealthHandler{DB: db, Config: cfg}
	projectHandler := &handlers.ProjectHandler{DB: db}
	resourceHandler := &handlers.ResourceHandler{DB: db, Registry: registry, Config: cfg}
	mockHandler := &handlers.MockAPIHandler{DB: db, Registry: registry}

	api.Get("/health", healthHandler.Check)

	// Project management
	api.Post("/projects", projectHandler.CreateProject)
	api.Get("/projects", projectHandler.ListProjects)
	api.Get("/projects/:projectId", projectHandler.GetProject)
	api.Delete("/projects/:projectId", projectHandler.DeleteProject)

	// Resource management
	api.Post("/projects/:projectId/resources", resourceHandler.CreateResource)
	api.Get("/projects/:projectId/resources", resourceHandler.ListResources)
	api.Get("/resources/:resourceId", resourceHandler.GetResource)
	api.Delete("/resources/:resourceId", resourceHandler.DeleteResource)
	api.Put("/resources/:resourceId/methods", resourceHandler.UpdateMethods)
	api.Put("/resources/:resourceId/endpoint-template", resourceHandler.UpdateEndpointTemplate)
	api.Put("/resources/:resourceId/template", resourceHandler.UpdateTemplate)
	api.Put("/resources/:resourceId/id-type", resourceHandler.UpdateIDType)
	api.Post("/resources/:resourceId/generate", resourceHandler.GenerateRecords)
	api.Get("/resources/:resourceId/code", resourceHandler.GetCode)
	api.Get("/resources/:resourceId/curl", resourceHandler.GetCurl)

	// Dynamic mock endpoints; registered last so management routes win on
	// literal prefixes
	api.Get("/:projectId/:version/:resource", mockHandler.ListRecords)
	api.Post("/:projectId/:version/:resource", mockHandler.CreateRecord)
	api.Get("/:projectId/:version/:resource/:id", mockHandler.GetRecord)
	api.Put("/:projectId/:version/:resource/:id", mockHandler.UpdateRecord)
	api.Delete("/:projectId/:version/:resource/:id", mockHandler.DeleteRecord)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Not found")
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info().Msg("gracefully shutting down")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	log.Info().Str("port", cfg.Port).Msg("starting server")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}

	log.Info().Msg("server stopped")
}
