package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/habitdesk/habitdesk-api/internal/api"
	mongodb "github.com/habitdesk/habitdesk-api/internal/infrastructure/db/mongo"
	redisdb "github.com/habitdesk/habitdesk-api/internal/infrastructure/db/redis"
	"github.com/habitdesk/habitdesk-api/internal/infrastructure/queue"
	"github.com/habitdesk/habitdesk-api/internal/pkg/config"
	"github.com/habitdesk/habitdesk-api/pkg/logger"
)

// @title        HabitDesk API
// @version      1.0
// @description  Therapy program management backend: role-based auth, therapist invites, task and program templates, patient assignments.
// @BasePath     /
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	if err := ensureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	auditRepo := mongodb.NewAuditRepository(db)
	dispatcher := queue.NewDispatcher(0, auditRepo, log)
	dispatcher.Start(ctx)

	e := api.NewRouter(db, rdb, cfg, dispatcher, log)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func ensureIndexes(ctx context.Context, db *mongodriver.Database) error {
	indexed := []interface{ EnsureIndexes(context.Context) error }{
		mongodb.NewUserRepository(db),
		mongodb.NewInviteRepository(db),
		mongodb.NewTherapistTypeRepository(db),
		mongodb.NewTaskTemplateRepository(db),
		mongodb.NewProgramTemplateRepository(db),
		mongodb.NewPatientRepository(db),
		mongodb.NewProgramRepository(db),
		mongodb.NewAssignmentRepository(db),
		mongodb.NewAuditRepository(db),
	}
	for _, r := range indexed {
		if err := r.EnsureIndexes(ctx); err != nil {
			return err
		}
	}
	return nil
}
