// Package server wires the services into a fiber application mounted under
// the configured prefix.
package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/bun"

	auth "github.com/goliatone/go-todo-auth"
	"github.com/goliatone/go-todo-auth/activitymap"
	"github.com/goliatone/go-todo-auth/config"
	"github.com/goliatone/go-todo-auth/logger"
	"github.com/goliatone/go-todo-auth/middleware/correlation"
	"github.com/goliatone/go-todo-auth/todo"
)

// Server owns the fiber app and the services behind it
type Server struct {
	cfg    *config.Config
	logger *logger.Logger
	app    *fiber.App

	repo   auth.RepositoryManager
	hasher *auth.BcryptHasher
	tokens *auth.TokenServiceImpl
	guard  *auth.Guard
	users  *auth.UserService
	auther *auth.Auther
	todos  *todo.Service
	todoDB todo.Repository
}

// New builds the application on an open, migrated database
func New(db *bun.DB, cfg *config.Config, log *logger.Logger) (*Server, error) {
	if db == nil {
		return nil, fmt.Errorf("server: database is required")
	}
	if log == nil {
		log = logger.New(nil, cfg.Logger.Level, cfg.Logger.Format)
	}

	s := &Server{cfg: cfg, logger: log}

	tokens, err := auth.NewTokenServiceFromConfig(cfg.Auth, log.Named("tokens"))
	if err != nil {
		return nil, fmt.Errorf("server: token service: %w", err)
	}
	s.tokens = tokens

	activity := activitymap.LogSink(log.Named("activity"))

	s.repo = auth.NewRepositoryManager(db)
	s.repo.MustValidate()

	s.hasher = auth.NewBcryptHasher(cfg.Auth.GetPasswordCost())

	register := auth.NewRegisterUserHandler(s.repo, s.hasher).
		WithLogger(log.Named("register")).
		WithActivitySink(activity)

	s.users = auth.NewUserService(s.repo, register).
		WithLogger(log.Named("users")).
		WithActivitySink(activity)

	validator := auth.NewCredentialValidator(s.repo.Users(), s.hasher).
		WithLogger(log.Named("credentials"))

	s.auther = auth.NewAuthenticator(validator, tokens).
		WithLogger(log.Named("auth")).
		WithActivitySink(activity)

	s.guard = auth.NewGuard(tokens, s.repo.Users()).
		WithConfig(cfg.Auth).
		WithLogger(log.Named("guard")).
		WithActivitySink(activity)

	s.todoDB = todo.NewRepository(db)
	s.todos = todo.NewService(s.todoDB).WithLogger(log.Named("todo"))

	s.app = s.buildApp()
	return s, nil
}

func (s *Server) buildApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "go-todo-auth",
		ErrorHandler:          auth.NewErrorHandler(s.logger.Named("http")),
		ReadTimeout:           s.cfg.Server.ReadTimeout,
		WriteTimeout:          s.cfg.Server.WriteTimeout,
		BodyLimit:             s.cfg.Server.BodyLimit,
		DisableStartupMessage: true,
	})

	app.Use(correlation.New(correlation.Config{Logger: s.logger.Named("http")}))

	api := app.Group(prefix(s.cfg.Server.Prefix))

	api.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	key := s.guard.ContextKey()
	protected := s.guard.Middleware()

	auth.NewAuthController(s.auther, s.users).
		WithContextKey(key).
		RegisterRoutes(api.Group("/auth"), protected)

	auth.NewUserController(s.users).
		WithContextKey(key).
		RegisterRoutes(api.Group("/user", protected))

	todo.NewController(s.todos).
		WithContextKey(key).
		RegisterRoutes(api.Group("/todo", protected))

	return app
}

func prefix(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

// App exposes the fiber app, mostly for tests
func (s *Server) App() *fiber.App {
	return s.app
}

// Seed creates the default users and todos on an empty database
func (s *Server) Seed(ctx context.Context) error {
	if err := auth.SeedUsers(ctx, s.repo, s.hasher, s.logger.Named("seed")); err != nil {
		return err
	}
	return todo.Seed(ctx, s.todoDB, s.repo.Users(), s.logger.Named("seed"))
}

// Listen blocks serving on addr
func (s *Server) Listen(addr string) error {
	s.logger.Info("server listening", "addr", addr, "prefix", prefix(s.cfg.Server.Prefix))
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	if deadline, ok := ctx.Deadline(); ok {
		return s.app.ShutdownWithTimeout(time.Until(deadline))
	}
	return s.app.Shutdown()
}
