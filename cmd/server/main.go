package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tristar/fitness-hub/internal/api"
	"tristar/fitness-hub/internal/config"
	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/logger"
	"tristar/fitness-hub/internal/metrics"
	"tristar/fitness-hub/internal/repository"
	"tristar/fitness-hub/internal/repository/gormrepo"
	"tristar/fitness-hub/internal/repository/mongo"
	"tristar/fitness-hub/internal/service"
	"tristar/fitness-hub/internal/storage"
)

// @title TriStar Fitness Record Store API
// @version 1.0
// @description Members, invoices, trainers, visitors, follow-ups and the activity log of a gym.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		// The logger is configured from cfg, so this one goes to a default logger.
		zap.NewExample().Fatal("Could not load config", zap.Error(err))
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		zap.NewExample().Fatal("Could not build logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()
	log.Info("Starting TriStar Fitness Record Store...", zap.String("driver", cfg.Database.Driver))

	// --- Database Connection ---
	repos, closeDB, err := openRepositories(cfg.Database, log)
	if err != nil {
		log.Fatal("Could not open database", zap.Error(err))
	}
	defer closeDB()
	log.Info("Database connection established.")

	// --- Initialize Storage ---
	var backupStore storage.ObjectStorage
	if cfg.S3.Enabled() {
		backupStore, err = storage.NewS3Storage(context.Background(), cfg.S3, log)
		if err != nil {
			log.Fatal("Failed to initialize S3 storage", zap.Error(err))
		}
	} else {
		log.Info("S3 bucket not configured, backups disabled")
	}

	// --- Initialize Services ---
	m := metrics.New()
	env := service.Env{Logger: log, Metrics: m}

	authService := service.NewAuthService(repos.Users, cfg.JWT.Secret, cfg.JWT.Expiration, env)
	seedAccounts(authService, cfg.Auth, log)

	invoiceService := service.NewInvoiceService(repos, env)
	memberService := service.NewMemberService(repos, invoiceService, cfg.Pricing.Pricing(), env)
	syncService := service.NewSyncService(repos)
	services := api.Services{
		Auth:       authService,
		Members:    memberService,
		Invoices:   invoiceService,
		Trainers:   service.NewTrainerService(repos, env),
		Visitors:   service.NewVisitorService(repos, env),
		FollowUps:  service.NewFollowUpService(repos, env),
		Sessions:   service.NewSessionService(repos, env),
		Activities: service.NewActivityService(repos, env),
		CheckIns:   service.NewCheckInService(repos),
		Sync:       syncService,
		Backups:    service.NewBackupService(syncService, repos, backupStore, env),
	}

	// --- Initialize Gin Engine ---
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())

	// --- Setup Routes ---
	api.SetupRoutes(router, api.RouterOptions{
		JWTSecret:       cfg.JWT.Secret,
		AllowDemoTokens: cfg.Auth.AllowDemoTokens,
		RateLimit:       cfg.RateLimit.Requests,
		RateWindow:      cfg.RateLimit.Window,
		Logger:          log,
		Metrics:         m,
	}, services)
	if cfg.Auth.AllowDemoTokens {
		log.Warn("Demo tokens are enabled; any 'demo-token-' bearer authenticates as owner")
	}

	// --- Background expiry sweep ---
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go service.RunExpirySweep(sweepCtx, memberService, cfg.Sweep.Interval, log)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Info("Server starting", zap.String("address", cfg.Server.Address))

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("ListenAndServe error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")
	stopSweep()

	// The context is used to inform the server it has 5 seconds to finish
	// the requests it is currently handling
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exiting.")
}

// openRepositories connects the configured backend and returns its repositories
// with a function that releases the connection.
func openRepositories(cfg config.DatabaseConfig, log *zap.Logger) (repository.Repositories, func(), error) {
	if cfg.Driver == "mongo" {
		client, err := mongo.ConnectDB(cfg.URI)
		if err != nil {
			return repository.Repositories{}, nil, err
		}
		db := client.Database(cfg.Name)

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		mongo.EnsureIndexes(ctx, db, log)
		cancel()

		closeFn := func() {
			log.Info("Disconnecting MongoDB...")
			if err := mongo.DisconnectDB(client); err != nil {
				log.Error("Failed to disconnect MongoDB", zap.Error(err))
			}
		}
		return mongo.NewRepositories(db), closeFn, nil
	}

	db, err := gormrepo.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return repository.Repositories{}, nil, err
	}
	if err := gormrepo.Migrate(db); err != nil {
		_ = gormrepo.Close(db)
		return repository.Repositories{}, nil, err
	}
	closeFn := func() {
		if err := gormrepo.Close(db); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}
	return gormrepo.NewRepositories(db), closeFn, nil
}

func seedAccounts(auth service.AuthService, cfg config.AuthConfig, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	accounts := []struct {
		username, name, password string
		role                     domain.Role
	}{
		{cfg.OwnerUsername, "Gym Owner", cfg.OwnerPassword, domain.RoleOwner},
		{cfg.ManagerUsername, "Gym Manager", cfg.ManagerPassword, domain.RoleManager},
	}
	for _, a := range accounts {
		created, err := auth.EnsureUser(ctx, a.username, a.name, a.password, a.role)
		if err != nil {
			log.Fatal("Failed to seed account", zap.String("username", a.username), zap.Error(err))
		}
		if created {
			log.Info("Seeded account", zap.String("username", a.username), zap.String("role", string(a.role)))
		}
	}
}
