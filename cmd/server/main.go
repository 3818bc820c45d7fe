package main

import (
	"context"
	"errors"
	"f2fit/gym-manager/internal/api"
	"f2fit/gym-manager/internal/config"
	"f2fit/gym-manager/internal/domain"
	"f2fit/gym-manager/internal/logger"
	"f2fit/gym-manager/internal/notify"
	"f2fit/gym-manager/internal/repository"
	"f2fit/gym-manager/internal/repository/kvrepo"
	"f2fit/gym-manager/internal/repository/memory"
	"f2fit/gym-manager/internal/repository/mongo"
	"f2fit/gym-manager/internal/repository/postgres"
	"f2fit/gym-manager/internal/repository/redis"
	"f2fit/gym-manager/internal/service"
	"f2fit/gym-manager/internal/storage"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @title F2Fit Gym Manager API
// @version 1.0
// @description Multi-tenant gym management: platform administration, gym back office and member area.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("FATAL: Could not build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()
	zlog.Info("Starting F2Fit server", zap.String("storage", cfg.Storage.Driver), zap.String("timezone", cfg.App.Timezone))

	// --- Storage backend ---
	store, closeStore, err := openStore(cfg, zlog)
	if err != nil {
		zlog.Fatal("Could not open storage", zap.Error(err))
	}
	defer closeStore()

	clock := domain.SystemClock{Location: cfg.Location()}
	repos := kvrepo.New(store, clock)

	// --- Collaborators ---
	adminHash := cfg.Auth.AdminPasswordHash
	if adminHash == "" {
		if adminHash, err = service.HashPassword(cfg.Auth.AdminPassword); err != nil {
			zlog.Fatal("Could not hash admin password", zap.Error(err))
		}
	}

	var notifier notify.Notifier = notify.NewLogNotifier(zlog)
	if cfg.Notify.ResendAPIKey != "" {
		notifier = notify.NewResendNotifier(cfg.Notify.ResendAPIKey, cfg.Notify.From, zlog)
	}

	var fileStorage storage.FileStorage
	if cfg.S3.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		fileStorage, err = storage.NewS3Storage(ctx, cfg.S3, zlog)
		cancel()
		if err != nil {
			zlog.Fatal("Failed to initialize S3 storage", zap.Error(err))
		}
	} else {
		zlog.Info("S3 bucket not configured, exports are download-only")
	}

	// --- Services ---
	s := api.Services{}
	s.Tariffs = service.NewTariffService(repos.Tariffs, clock)
	s.Gyms = service.NewGymService(repos, s.Tariffs, fileStorage, clock, zlog)
	s.Auth = service.NewAuthService(repos, s.Gyms,
		service.AdminCredentials{Email: cfg.Auth.AdminEmail, PasswordHash: adminHash},
		cfg.JWT.Secret, cfg.JWT.Expiration, clock, zlog)
	s.Plans = service.NewPlanService(repos.Plans)
	s.Subscriptions = service.NewSubscriptionService(repos.Subscriptions, repos.Members, repos.Plans, clock, zlog)
	s.Members = service.NewMemberService(repos, s.Subscriptions, notifier, cfg.Auth.DefaultMemberPassword, clock, zlog)
	s.Coaches = service.NewCoachService(repos.Coaches, repos.Messages)
	s.Classes = service.NewClassService(repos.Classes, repos.Coaches, clock, zlog)
	s.Equipment = service.NewEquipmentService(repos.Equipment)
	s.Messages = service.NewMessageService(repos.Messages, repos.Members, repos.Coaches)
	s.Reports = service.NewReportService(repos, s.Tariffs, clock)
	s.Exports = service.NewExportService(service.ExportSources{
		Members:       s.Members,
		Coaches:       s.Coaches,
		Classes:       s.Classes,
		Equipment:     s.Equipment,
		Subscriptions: s.Subscriptions,
		Plans:         s.Plans,
		Gyms:          s.Gyms,
		Reports:       s.Reports,
	}, fileStorage, clock, zlog)

	// --- HTTP ---
	if cfg.Server.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	done := make(chan struct{})
	limiter := api.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, 10*time.Minute)
	go limiter.RunCleanup(time.Minute, done)

	router := api.NewRouter(s, api.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AuthLimiter:    limiter,
	}, zlog)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		zlog.Info("Server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("ListenAndServe error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("Shutting down server...")
	close(done)

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		zlog.Error("Server forced to shutdown", zap.Error(err))
	}
	zlog.Info("Server exiting.")
}

// openStore connects the configured backend and returns its close function.
func openStore(cfg config.Config, zlog *zap.Logger) (repository.KVStore, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverRedis:
		client, err := redis.Connect(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return redis.NewKVStore(client), func() { _ = client.Close() }, nil

	case config.DriverMongo:
		client, db, err := mongo.ConnectDB(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := mongo.EnsureKVIndexes(ctx, db); err != nil {
			zlog.Warn("Could not ensure MongoDB indexes", zap.Error(err))
		}
		return mongo.NewMongoKVStore(db), func() {
			if err := mongo.DisconnectDB(client); err != nil {
				zlog.Error("Failed to disconnect MongoDB", zap.Error(err))
			}
		}, nil

	case config.DriverPostgres:
		db, err := postgres.Connect(cfg.Postgres.URL)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.RunMigrations(db, cfg.Postgres.MigrationsPath); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return postgres.NewKVStore(db), func() { _ = db.Close() }, nil

	case config.DriverMemory:
		zlog.Warn("Using in-memory storage, data is lost on restart")
		return memory.NewStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
