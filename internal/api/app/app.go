package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taskdeck/taskdeck/internal/api/domain"
	httpapi "github.com/taskdeck/taskdeck/internal/api/http"
	"github.com/taskdeck/taskdeck/internal/api/service"
	"github.com/taskdeck/taskdeck/internal/api/store"
	"github.com/taskdeck/taskdeck/internal/api/store/drivers/sqlite"
	"github.com/taskdeck/taskdeck/pkg/cryptox"
	"github.com/taskdeck/taskdeck/pkg/idx"
	"github.com/taskdeck/taskdeck/pkg/jwtx"
	"github.com/taskdeck/taskdeck/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the API server with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	tokens *jwtx.HS256

	authService    *service.AuthService
	inviteService  *service.InviteService
	userService    *service.UserService
	projectService *service.ProjectService
	taskService    *service.TaskService
	commentService *service.CommentService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "taskdeck-api",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepper(cfg.Pepper)

	if err := app.initTokens(); err != nil {
		return nil, err
	}
	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	app.initServices()

	if err := app.seedAdmin(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("api server starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down api server...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("api server stopped")
	return nil
}

// initTokens sets up the HS256 signer. A missing secret is fatal outside
// dev; in dev a random one is generated so each restart invalidates old
// sessions.
func (app *Application) initTokens() error {
	secret := app.cfg.JWTSecret
	if secret == "" {
		if app.cfg.Env != "dev" {
			return errors.New("TASKDECK_JWT_SECRET is required outside dev")
		}
		generated, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return fmt.Errorf("failed to generate session secret: %w", err)
		}
		secret = generated
		app.logger.Warn("TASKDECK_JWT_SECRET not set, generated ephemeral secret; sessions will not survive restarts")
	}

	app.tokens = jwtx.NewHS256([]byte(secret), app.cfg.Issuer)
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:      app.db,
		Tokens:     app.tokens,
		Issuer:     app.cfg.Issuer,
		SessionTTL: app.cfg.SessionTTL,
	}
	app.inviteService = &service.InviteService{Store: app.db}
	app.userService = &service.UserService{Store: app.db}
	app.projectService = &service.ProjectService{Store: app.db}
	app.taskService = &service.TaskService{Store: app.db}
	app.commentService = &service.CommentService{Store: app.db}
}

// seedAdmin creates the initial admin account when the user table is empty
// and credentials were provided. Registration is invite-gated, so a fresh
// deployment has no other way to mint its first admin.
func (app *Application) seedAdmin(ctx context.Context) error {
	if app.cfg.AdminEmail == "" || app.cfg.AdminPassword == "" {
		return nil
	}

	users, err := app.db.Users().List(ctx)
	if err != nil {
		return fmt.Errorf("failed to check for existing users: %w", err)
	}
	if len(users) > 0 {
		return nil
	}

	passwordHash, err := cryptox.HashPassword(app.cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	now := time.Now().UTC()
	admin := domain.User{
		ID:           idx.New().String(),
		Name:         "Administrator",
		Email:        service.NormalizeEmail(app.cfg.AdminEmail),
		PasswordHash: passwordHash,
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := app.db.Users().Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	app.logger.Info("seeded initial admin account", "email", admin.Email)
	return nil
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.tokens,
		BuildVersion,
		app.db,
		app.logger,
		app.cfg.Env != "dev",
	)

	router.AuthService = app.authService
	router.InviteService = app.inviteService
	router.UserService = app.userService
	router.ProjectService = app.projectService
	router.TaskService = app.taskService
	router.CommentService = app.commentService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
