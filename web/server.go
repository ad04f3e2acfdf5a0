// Package web is the presentation router: it serves one view per mode,
// dispatches form submissions to the model client adapter and writes chat
// exchanges back to the session store.
package web

import (
	"context"
	"fmt"
	"html/template"
	"image"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/papercomputeco/geminiweb/pkg/llm"
	"github.com/papercomputeco/geminiweb/pkg/session"
)

// Model is the model client adapter as seen by the views.
type Model interface {
	session.Chatter
	CaptionImage(ctx context.Context, prompt string, img image.Image) (string, error)
	EmbedText(ctx context.Context, text string) (llm.EmbeddingResult, error)
	AnswerQuestion(ctx context.Context, text string) (string, error)
}

// modeHandler serves the view of one mode (show) and its form action (submit).
type modeHandler struct {
	show   fiber.Handler
	submit fiber.Handler
}

// Server serves the four mode views.
type Server struct {
	config   Config
	model    Model
	store    *session.Store
	logger   *zap.Logger
	server   *fiber.App
	views    map[llm.Mode]*template.Template
	markdown *markdown
	validate *validator.Validate
}

// New creates a new Server. store must have been built over the same model.
func New(config Config, model Model, store *session.Store, logger *zap.Logger) (*Server, error) {
	config = config.withDefaults()

	views, err := parseViews()
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		BodyLimit:             config.BodyLimit,
		ReadTimeout:           30 * time.Second,
	})

	s := &Server{
		config:   config,
		model:    model,
		store:    store,
		logger:   logger,
		server:   app,
		views:    views,
		markdown: newMarkdown(),
		validate: validator.New(),
	}

	app.Use(recover.New())
	app.Use(s.logRequests)

	// Health check and metrics
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/", s.withSession, s.handleIndex)
	app.Get("/chat/history", s.withSession, s.handleChatHistory)

	handlers := map[llm.Mode]modeHandler{
		llm.ModeChatBot:         {show: s.handleChat, submit: s.handleChatSubmit},
		llm.ModeImageCaptioning: {show: s.handleCaption, submit: s.handleCaptionSubmit},
		llm.ModeEmbedText:       {show: s.handleEmbed, submit: s.handleEmbedSubmit},
		llm.ModeAskAnything:     {show: s.handleAsk, submit: s.handleAskSubmit},
	}
	for _, mode := range llm.Modes() {
		h, ok := handlers[mode]
		if !ok {
			return nil, fmt.Errorf("no handler for mode %s", mode)
		}
		app.Get("/"+mode.Slug(), s.withSession, s.rememberMode(mode), h.show)
		app.Post("/"+mode.Slug(), s.withSession, s.rememberMode(mode), h.submit)
	}

	return s, nil
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.server
}

// Run starts the server on the configured listening address
func (s *Server) Run() error {
	s.logger.Info("starting web server", zap.String("listen", s.config.ListenAddr))

	return s.server.Listen(s.config.ListenAddr)
}

// Close shuts the server down, waiting for in-flight requests.
func (s *Server) Close() error {
	return s.server.Shutdown()
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	startTime := time.Now()
	err := c.Next()

	s.logger.Debug("handled request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("duration", time.Since(startTime)),
		zap.Error(err),
	)
	return err
}
