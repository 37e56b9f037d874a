package server

import (
	"context"
	"log"

	"haley-companion-be/internal/bootstrap"
	"haley-companion-be/internal/config"
	"haley-companion-be/internal/pkg/metrics"
	"haley-companion-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024, // 1MB
		ErrorHandler: serverutils.ErrorHandler(container.Logger),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Content-Disposition",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())
	app.Use(serverutils.MetricsMiddleware(container.Metrics))
	app.Use(serverutils.ErrorHandlerMiddleware(container.Logger))

	app.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"status":           "ok",
			"realtime_clients": container.WebSocketHub.ClientCount(),
		})
	})
	app.Get("/metrics", metrics.Handler())

	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	api := app.Group("/api", c.Requester.JwtMiddleware)

	c.UserController.RegisterRoutes(api)
	c.ChatSessionController.RegisterRoutes(api)
	c.MessageController.RegisterRoutes(api)
	c.ChatController.RegisterRoutes(api)
	c.ChatLimitController.RegisterRoutes(api)
	c.ThumbnailController.RegisterRoutes(api)
	c.ExportController.RegisterRoutes(api)

	c.RealtimeHandler.RegisterRoutes(api)
}
