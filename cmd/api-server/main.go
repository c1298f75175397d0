package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/chronocare/chronocare-api/internal/api"
	"github.com/chronocare/chronocare-api/internal/appointment"
	"github.com/chronocare/chronocare-api/internal/chatbot"
	"github.com/chronocare/chronocare-api/internal/config"
	"github.com/chronocare/chronocare-api/internal/consultation"
	"github.com/chronocare/chronocare-api/internal/db"
	"github.com/chronocare/chronocare-api/internal/document"
	"github.com/chronocare/chronocare-api/internal/dossier"
	"github.com/chronocare/chronocare-api/internal/identity"
	"github.com/chronocare/chronocare-api/internal/notification"
	redisclient "github.com/chronocare/chronocare-api/internal/redis"
)

const version = "1.0.0"

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "api-server").Logger()
	logger.Info().Msg("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config load error")
	}

	logger.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Msg("configuration loaded")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	logger.Info().Msg("connected to Postgres")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Warn().Err(err).Msg("error closing redis")
		}
	}()
	logger.Info().Msg("connected to Redis")

	docs, err := document.NewDiskStore(cfg.UploadDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("document store init error")
	}

	directory := identity.NewDirectory(identity.NewPgRepository(pgPool))
	locker := redisclient.NewRedisSlotLocker(rdb, cfg.LockTTL)

	appointments := appointment.NewService(appointment.NewPgLedger(pgPool), directory, locker, logger)
	dossierRepo := dossier.NewPgRepository(pgPool)
	dossiers := dossier.NewService(dossierRepo, directory, docs, logger)
	consultations := consultation.NewService(consultation.NewPgLog(pgPool), dossierRepo, directory, docs, logger)

	router := api.NewRouter(api.RouterConfig{
		Appointments:  appointments,
		Dossiers:      dossiers,
		Consultations: consultations,
		Directory:     directory,
		Documents:     docs,
		Notifications: notification.NewPgCounter(pgPool),
		Chatbot:       chatbot.NewDefaultResponder(),
		PgPool:        pgPool,
		Redis:         rdb,
		Logger:        logger,
		Env:           cfg.Env,
		Version:       version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-rootCtx.Done()

	logger.Info().Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown error")
	}
}
