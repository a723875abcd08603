package api

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Server is the coursewise API server.
type Server struct {
	config   Config
	services Services
	logger   *zap.Logger
	app      *fiber.App
}

// NewServer creates a new API server over the given services.
func NewServer(config Config, services Services, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:   config,
		services: services,
		logger:   logger,
		app:      app,
	}

	app.Get("/ping", s.handlePing)

	v1 := app.Group("/v1")
	v1.Post("/tutor", s.handleTutor)
	v1.Post("/assessment", s.handleAssessment)
	v1.Post("/content/questions", s.handleQuestions)
	v1.Post("/content/flashcards", s.handleFlashcards)
	v1.Post("/content/narrative", s.handleNarrative)
	v1.Post("/documents", s.handleIngestDocument)
	v1.Delete("/documents/:id", s.handleDeleteDocument)
	v1.Get("/index/stats", s.handleIndexStats)

	if config.MCPHandler != nil {
		app.All("/mcp", adaptor.HTTPHandler(config.MCPHandler))
	}

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
