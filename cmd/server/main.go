package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"arkom-be/internal/commission"
	"arkom-be/internal/config"
	"arkom-be/internal/db"
	"arkom-be/internal/listing"
	"arkom-be/internal/logger"
	"arkom-be/internal/middleware"
	"arkom-be/internal/notification"
	"arkom-be/internal/profile"
	"arkom-be/internal/rest"
	"arkom-be/internal/taxonomy"
	"arkom-be/internal/theme"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	initDBFunc      = db.InitDB
	startServerFunc = startServer
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := initDBFunc(cfg)
	defer database.Close()

	handler := newServer(cfg, database, newCache(cfg))

	logger.L().Info("HTTP server starting", zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv))
	return startServerFunc(":"+cfg.AppPort, handler)
}

// newCache connects the taxonomy read cache. Without REDIS_URL reads go
// straight to Postgres.
func newCache(cfg *config.Config) taxonomy.Cache {
	if cfg.RedisURL == "" {
		return taxonomy.NewNopCache()
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.L().Warn("invalid REDIS_URL, taxonomy cache disabled", zap.Error(err))
		return taxonomy.NewNopCache()
	}
	return taxonomy.NewRedisCache(redis.NewClient(opts))
}

func newServer(cfg *config.Config, database *sql.DB, cache taxonomy.Cache) http.Handler {
	taxonomySvc := taxonomy.NewService(taxonomy.NewRepository(database), cache)
	listingSvc := listing.NewService(listing.NewRepository(database), taxonomySvc)
	profileSvc := profile.NewService(profile.NewRepository(database))
	notificationSvc := notification.NewService(
		notification.NewRepository(database),
		profileSvc,
		notification.NewMailer(cfg.ResendAPIKey, cfg.ResendFromEmail),
	)
	commissionSvc := commission.NewService(commission.NewRepository(database), listingSvc, notificationSvc)
	themeSvc := theme.NewService(theme.NewRepository(database))

	router := rest.NewRouter(rest.Services{
		Taxonomy:      taxonomySvc,
		Listings:      listingSvc,
		Commissions:   commissionSvc,
		Notifications: notificationSvc,
		Profiles:      profileSvc,
		Themes:        themeSvc,
	}, cfg.CORSOrigins)

	auth := middleware.NewAuthMiddleware([]byte(cfg.JWTSecret))

	return logger.RequestIDMiddleware(
		auth(
			middleware.LoggingMiddleware(
				middleware.RateLimitMiddleware(router),
			),
		),
	)
}

func startServer(addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.L().Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
