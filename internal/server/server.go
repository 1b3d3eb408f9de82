// Package server provides the HTTP server of the moderation backend.
// It handles routing, middleware configuration, and server lifecycle management.
//
// Components are wired in dependency order: database, auth providers,
// repositories, moderation infrastructure (notifier, lockout store, event
// bus), services and finally handlers. Shutdown releases them in reverse.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/collapse-backend/internal/auth"
	"github.com/yasinhessnawi1/collapse-backend/internal/cache"
	"github.com/yasinhessnawi1/collapse-backend/internal/config"
	"github.com/yasinhessnawi1/collapse-backend/internal/constants"
	"github.com/yasinhessnawi1/collapse-backend/internal/database"
	"github.com/yasinhessnawi1/collapse-backend/internal/events"
	"github.com/yasinhessnawi1/collapse-backend/internal/handlers"
	"github.com/yasinhessnawi1/collapse-backend/internal/repository"
	"github.com/yasinhessnawi1/collapse-backend/internal/service"
	"github.com/yasinhessnawi1/collapse-backend/migrations"
	"github.com/yasinhessnawi1/collapse-backend/scripts"
)

// Handlers contains all HTTP handlers for the application.
type Handlers struct {
	// AuthHandler manages sign-up, login, token and logout endpoints
	AuthHandler *handlers.AuthHandler

	// UserHandler manages the profile endpoints
	UserHandler *handlers.UserHandler

	// ReportHandler manages report submission by users
	ReportHandler *handlers.ReportHandler

	// AdminHandler manages the moderation console endpoints
	AdminHandler *handlers.AdminHandler
}

// AuthProviders contains all authentication providers for the application.
type AuthProviders struct {
	// JWTService handles JWT token generation and validation
	JWTService *auth.JWTService

	// PasswordCfg contains password hashing configuration
	PasswordCfg *auth.PasswordConfig

	// Identity verifies Google ID tokens
	Identity auth.IdentityProvider
}

// repositories holds the data access layer used by the services.
type repositories struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	adminRepo   repository.AdminUserRepository
	banLogRepo  repository.BanLogRepository
	reportRepo  repository.ReportRepository
	statsRepo   repository.StatsRepository
}

// services holds the business logic used by the handlers.
type services struct {
	authService   *service.AuthService
	userService   *service.UserService
	banService    *service.BanService
	reportService *service.ReportService
	adminService  *service.AdminService
	evaluator     *service.AutoBanEvaluator
}

// Server represents the API server.
type Server struct {
	// Config contains application configuration
	Config *config.AppConfig

	// Db provides database access
	Db *database.Pool

	// router handles HTTP routing
	router chi.Router

	// Handlers contains all HTTP request handlers
	Handlers *Handlers

	authProviders *AuthProviders
	repos         repositories
	services      services

	notifier      service.Notifier
	lockout       cache.LockoutStore
	memoryLockout *cache.MemoryLockoutStore
	redisClient   *redis.Client
	bus           events.Bus
	systemActorID int64

	// httpServer is the underlying HTTP server
	httpServer *http.Server

	stopMaintenance chan struct{}
}

// NewServer creates a new server instance with all required components.
//
// Parameters:
//   - cfg: Application configuration including database, server, and auth settings
//
// Returns:
//   - A fully initialized Server instance ready to start
//   - An error if initialization of any component fails
func NewServer(cfg *config.AppConfig) (*Server, error) {
	s := &Server{
		Config:          cfg,
		stopMaintenance: make(chan struct{}),
	}

	if err := s.setupDatabase(); err != nil {
		return nil, fmt.Errorf("failed to set up database: %w", err)
	}

	if err := s.setupAuthProviders(); err != nil {
		return nil, fmt.Errorf("failed to set up auth providers: %w", err)
	}

	s.setupRepositories()

	if err := s.setupModeration(); err != nil {
		s.release(context.Background())
		return nil, fmt.Errorf("failed to set up moderation: %w", err)
	}

	if err := s.setupServices(); err != nil {
		s.release(context.Background())
		return nil, fmt.Errorf("failed to set up services: %w", err)
	}

	if err := s.setupHandlers(); err != nil {
		s.release(context.Background())
		return nil, fmt.Errorf("failed to set up handlers: %w", err)
	}

	s.SetupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Server.ServerAddress(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  constants.DefaultIdleTimeout,
	}

	return s, nil
}

// setupDatabase connects to PostgreSQL, runs migrations and seeds the
// initial administrator.
func (s *Server) setupDatabase() error {
	db, err := database.Connect(s.Config)
	if err != nil {
		return err
	}

	s.Db = db

	migrator := migrations.NewMigrator(db)
	if err := migrator.RunMigrations(context.Background()); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	seeder := scripts.NewSeeder(db, auth.ConfigFromAppConfig(s.Config), s.Config.Seed)
	if err := seeder.SeedDatabase(context.Background()); err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}

	return nil
}

// setupAuthProviders initializes token, password and identity providers.
func (s *Server) setupAuthProviders() error {
	jwtService := auth.NewJWTService(&s.Config.JWT)
	if jwtService == nil {
		return fmt.Errorf("JWT service not initialized")
	}

	s.authProviders = &AuthProviders{
		JWTService:  jwtService,
		PasswordCfg: auth.ConfigFromAppConfig(s.Config),
		Identity:    auth.NewGoogleIdentityProvider(s.Config.Google.ClientID, s.Config.Google.TokenInfoURL),
	}

	return nil
}

// setupRepositories initializes all data repositories.
func (s *Server) setupRepositories() {
	s.repos = repositories{
		userRepo:    repository.NewUserRepository(s.Db),
		sessionRepo: repository.NewSessionRepository(s.Db),
		adminRepo:   repository.NewAdminUserRepository(s.Db),
		banLogRepo:  repository.NewBanLogRepository(s.Db),
		reportRepo:  repository.NewReportRepository(s.Db),
		statsRepo:   repository.NewStatsRepository(s.Db),
	}
}

// setupModeration resolves the system actor and builds the notifier, the
// login lockout store and the report event bus.
func (s *Server) setupModeration() error {
	ctx, cancel := context.WithTimeout(context.Background(), constants.DBQueryTimeout)
	defer cancel()

	actorID, err := s.repos.adminRepo.UpsertSystemActor(ctx, s.Config.Moderation.SystemActorEmail)
	if err != nil {
		return fmt.Errorf("failed to resolve system actor: %w", err)
	}
	s.systemActorID = actorID

	switch s.Config.Notifier.Driver {
	case "sendgrid":
		notifier, err := service.NewEmailNotifier(&s.Config.Notifier)
		if err != nil {
			return err
		}
		s.notifier = notifier
	default:
		s.notifier = service.NoopNotifier{}
	}

	if s.Config.Redis.Enabled {
		client, err := cache.Connect(ctx, s.Config.Redis.URL)
		if err != nil {
			return err
		}
		s.redisClient = client
		s.lockout = cache.NewRedisLockoutStore(client)
	} else {
		s.memoryLockout = cache.NewMemoryLockoutStore(constants.LockoutCleanupInterval)
		s.lockout = s.memoryLockout
	}

	bus, err := events.NewBus(s.Config)
	if err != nil {
		return err
	}
	s.bus = bus

	log.Info().
		Int64("system_actor_id", actorID).
		Str("notifier", s.Config.Notifier.Driver).
		Bool("redis", s.Config.Redis.Enabled).
		Str("events", s.Config.Events.Driver).
		Msg("Moderation infrastructure ready")

	return nil
}

// setupServices initializes the business services and starts delivering
// report events to the auto-ban evaluator.
func (s *Server) setupServices() error {
	if s.authProviders == nil || s.authProviders.JWTService == nil {
		return fmt.Errorf("JWT service not initialized")
	}
	if s.bus == nil || s.lockout == nil {
		return fmt.Errorf("moderation infrastructure not initialized")
	}

	banService := service.NewBanService(
		s.Db,
		s.repos.userRepo,
		s.repos.banLogRepo,
		s.notifier,
		s.systemActorID,
	)

	reportService := service.NewReportService(s.repos.reportRepo, s.repos.userRepo, s.bus)

	evaluator := service.NewAutoBanEvaluator(
		s.repos.userRepo,
		reportService,
		banService,
		service.DefaultAutoBanRules(s.Config.Moderation),
	)

	s.services = services{
		banService:    banService,
		evaluator:     evaluator,
		reportService: reportService,
		authService: service.NewAuthService(
			s.repos.userRepo,
			s.repos.sessionRepo,
			s.repos.adminRepo,
			s.authProviders.JWTService,
			s.authProviders.PasswordCfg,
			s.authProviders.Identity,
			s.lockout,
			s.Config.Lockout,
			banService,
		),
		userService:  service.NewUserService(s.repos.userRepo),
		adminService: service.NewAdminService(s.repos.userRepo, s.repos.banLogRepo, s.repos.statsRepo),
	}

	s.bus.Start(evaluator.HandleReportSubmitted)

	return nil
}

// setupHandlers initializes all HTTP request handlers.
func (s *Server) setupHandlers() error {
	if s.services.authService == nil {
		return fmt.Errorf("auth service not initialized")
	}

	s.Handlers = &Handlers{
		AuthHandler:   handlers.NewAuthHandler(s.services.authService, s.authProviders.JWTService),
		UserHandler:   handlers.NewUserHandler(s.services.userService),
		ReportHandler: handlers.NewReportHandler(s.services.reportService),
		AdminHandler: handlers.NewAdminHandler(
			s.services.adminService,
			s.services.banService,
			s.services.reportService,
		),
	}

	return nil
}

// Start starts the HTTP server and blocks until it fails or a shutdown
// signal arrives, then shuts down gracefully.
func (s *Server) Start() error {
	serverErrors := make(chan error, 1)

	go func() {
		log.Info().
			Str("address", s.Config.Server.ServerAddress()).
			Msg("Starting server")

		serverErrors <- s.httpServer.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	s.SetupMaintenanceTasks()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info().
			Str("signal", sig.String()).
			Msg("Shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), s.Config.Server.ShutdownTimeout)
		defer cancel()

		if err := s.Shutdown(ctx); err != nil {
			if closeErr := s.httpServer.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

// Shutdown stops accepting requests, drains in-flight requests and
// evaluations, and releases every backing connection.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	log.Info().Msg("Server stopped gracefully")

	s.release(ctx)
	return nil
}

// release closes the moderation infrastructure and the database. The event
// bus is drained before ban notifications are awaited, since evaluations
// may still issue bans.
func (s *Server) release(ctx context.Context) {
	if s.stopMaintenance != nil {
		select {
		case <-s.stopMaintenance:
		default:
			close(s.stopMaintenance)
		}
	}

	if s.bus != nil {
		if err := s.bus.Close(ctx); err != nil {
			log.Warn().Err(err).Msg("Event bus did not drain before shutdown")
		}
	}

	if s.services.banService != nil {
		s.services.banService.Wait()
	}

	if s.memoryLockout != nil {
		s.memoryLockout.Close()
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis client")
		}
	}

	if s.Db != nil {
		s.Db.Close()
		log.Info().Msg("Database connection closed")
	}
}

// SetupMaintenanceTasks starts the hourly cleanup of expired sessions.
func (s *Server) SetupMaintenanceTasks() {
	if s.services.authService == nil {
		log.Warn().Msg("Auth service not initialized, maintenance tasks disabled")
		return
	}

	ticker := time.NewTicker(constants.DBMaintenanceInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-s.stopMaintenance:
				return
			case <-ticker.C:
				s.runMaintenance()
			}
		}
	}()
}

func (s *Server) runMaintenance() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if count, err := s.services.authService.CleanupExpiredSessions(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to cleanup expired sessions")
	} else if count > 0 {
		log.Info().Int64("count", count).Msg("Cleaned up expired sessions")
	}
}
