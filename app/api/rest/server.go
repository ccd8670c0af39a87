package rest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"campusbot/app/config"
	"campusbot/app/service/catalog"
	"campusbot/app/service/chat"
	"campusbot/app/service/metrics"
	"campusbot/app/service/upload"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/samber/do"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg        *config.Config
	app        *fiber.App
	validate   *validator.Validate
	chatSvc    *chat.Service
	catalogSvc *catalog.Service
	uploadSvc  *upload.Service
	metricsSvc *metrics.Service

	shutdownOnce sync.Once
	shutdownErr  error
}

func New(di *do.Injector) (*Server, error) {
	return NewServer(
		do.MustInvoke[*config.Config](di),
		do.MustInvoke[*chat.Service](di),
		do.MustInvoke[*catalog.Service](di),
		do.MustInvoke[*upload.Service](di),
		do.MustInvoke[*metrics.Service](di),
	), nil
}

func NewServer(
	cfg *config.Config,
	chatSvc *chat.Service,
	catalogSvc *catalog.Service,
	uploadSvc *upload.Service,
	metricsSvc *metrics.Service,
) *Server {
	s := &Server{
		cfg:        cfg,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		chatSvc:    chatSvc,
		catalogSvc: catalogSvc,
		uploadSvc:  uploadSvc,
		metricsSvc: metricsSvc,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "campusbot",
		DisableStartupMessage: true,
		BodyLimit:             cfg.HTTP.BodyLimit,
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		ErrorHandler:          errorHandler,
	})

	s.app.Use(recover.New())
	s.app.Use(requestLogger)
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.HTTP.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	s.routes()

	return s
}

func (s *Server) routes() {
	s.app.Post("/chat-message", s.handleChatMessage)
	s.app.Get("/chat-history", s.handleChatHistory)
	s.app.Post("/chat-clear", s.handleChatClear)

	registerResource(s.app, "/courses", &resource[catalog.Course]{
		repo:     s.catalogSvc.Courses,
		validate: s.validate,
	})
	registerResource(s.app, "/faculty", &resource[catalog.Faculty]{
		repo:     s.catalogSvc.Faculty,
		validate: s.validate,
		remove:   s.catalogSvc.DeleteFaculty,
	})
	registerResource(s.app, "/research-areas", &resource[catalog.ResearchArea]{
		repo:     s.catalogSvc.ResearchAreas,
		validate: s.validate,
	})
	registerResource(s.app, "/graduate-programs", &resource[catalog.GraduateProgram]{
		repo:     s.catalogSvc.GraduatePrograms,
		validate: s.validate,
	})

	s.app.Post("/uploads", s.handleUpload)
	s.app.Get("/uploads", s.handleListUploads)
	s.app.Get("/uploads/:id", s.handleGetUpload)
	s.app.Get("/uploads/:id/download", s.handleDownloadUpload)

	s.app.Get("/health", s.handleHealth)
	s.app.Get("/metrics", adaptor.HTTPHandler(s.metricsSvc.Handler()))
}

// App exposes the underlying fiber app, mostly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen blocks serving HTTP until Shutdown is called.
func (s *Server) Listen() error {
	slog.Info("HTTP server listening", "addr", s.cfg.HTTP.Addr)

	if err := s.app.Listen(s.cfg.HTTP.Addr); err != nil {
		return fmt.Errorf("app.Listen: %w", err)
	}

	return nil
}

// Shutdown stops the server gracefully. Safe to call more than once.
func (s *Server) Shutdown() error {
	s.shutdownOnce.Do(func() {
		if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			s.shutdownErr = fmt.Errorf("app.ShutdownWithTimeout: %w", err)
		}
	})

	return s.shutdownErr
}

type healthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	if err := s.catalogSvc.Ping(ctx); err != nil {
		slog.Warn("Health check failed", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(healthResponse{Status: "unavailable"})
	}

	return c.JSON(healthResponse{Status: "ok"})
}
