package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/njprem/TourBook_APP_BackEnd/internal/config"
	"github.com/njprem/TourBook_APP_BackEnd/internal/logging"
	"github.com/njprem/TourBook_APP_BackEnd/internal/media"
	miniostore "github.com/njprem/TourBook_APP_BackEnd/internal/repository/minio"
	"github.com/njprem/TourBook_APP_BackEnd/internal/repository/ports"
	"github.com/njprem/TourBook_APP_BackEnd/internal/repository/postgres"
	redisstore "github.com/njprem/TourBook_APP_BackEnd/internal/repository/redis"
	"github.com/njprem/TourBook_APP_BackEnd/internal/service"
	transporthttp "github.com/njprem/TourBook_APP_BackEnd/internal/transport/http"
	"github.com/njprem/TourBook_APP_BackEnd/internal/transport/mail"
	"github.com/njprem/TourBook_APP_BackEnd/internal/util"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(logging.Options{
		Production:   cfg.IsProduction(),
		LogstashAddr: cfg.LogstashTCPAddr,
	})
	if err != nil {
		logging.Fallback().Fatal("init logger", zap.Error(err))
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := postgres.Migrate(ctx, db.DB); err != nil {
			logger.Fatal("run migrations", zap.Error(err))
		}
	}

	userRepo := postgres.NewUserRepo(db)
	tourRepo := postgres.NewTourRepo(db)
	reviewRepo := postgres.NewReviewRepo(db)

	var rateStore *redisstore.RateLimitStore
	if cfg.RedisAddr != "" {
		client := redisstore.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, rate limiting will fail open", zap.Error(err))
		}
		rateStore = redisstore.NewRateLimitStore(client, cfg.RateLimitMax, cfg.RateLimitWindow, logger)
	}

	var storage ports.ObjectStorage
	if cfg.MinIOEndpoint != "" {
		client, err := miniostore.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
		if err != nil {
			logger.Fatal("init minio", zap.Error(err))
		}
		store := miniostore.NewStorage(client, cfg.MinIOPublicURL)
		if err := store.EnsureBuckets(ctx, cfg.MinIOBucketUsers, cfg.MinIOBucketTours); err != nil {
			logger.Fatal("ensure buckets", zap.Error(err))
		}
		storage = store
	} else {
		logger.Warn("MINIO_ENDPOINT not set, image uploads are disabled")
	}

	mailer := mail.NewSMTPMailer(mail.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		Timeout:  cfg.SMTPTimeout,
	})
	if !mailer.Configured() {
		logger.Warn("SMTP not configured, password reset mail will fail")
	}

	processor := media.NewJPEGProcessor()
	tokens := util.NewTokenService(util.TokenConfig{Secret: cfg.JWTSecret, ExpiresIn: cfg.JWTExpiresIn})

	authSvc := service.NewAuthService(userRepo, tokens, mailer, service.AuthConfig{
		BcryptCost:    cfg.BcryptCost,
		ResetTTL:      cfg.PasswordResetTTL,
		PublicBaseURL: cfg.PublicBaseURL,
		Logger:        logger,
	})
	userSvc := service.NewUserService(userRepo, reviewRepo, storage, service.UserServiceConfig{
		PhotoBucket: cfg.MinIOBucketUsers,
		Processor:   processor,
	})
	tourSvc := service.NewTourService(tourRepo, userRepo, reviewRepo, storage, service.TourServiceConfig{
		CoverBucket: cfg.MinIOBucketTours,
		Processor:   processor,
	})
	reviewSvc := service.NewReviewService(reviewRepo, tourRepo)

	routerCfg := transporthttp.RouterConfig{
		AllowOrigins:    cfg.AllowOrigins,
		Production:      cfg.IsProduction(),
		BodyLimit:       cfg.BodyLimit,
		RateLimitMax:    cfg.RateLimitMax,
		RateLimitWindow: cfg.RateLimitWindow,
		Logger:          logger,
	}
	if rateStore != nil {
		routerCfg.RateLimitStore = rateStore
	}
	e := transporthttp.NewRouter(routerCfg)

	transporthttp.RegisterAuth(e, authSvc, transporthttp.AuthHandlerConfig{
		CookieTTL:  cfg.JWTCookieExpiresIn,
		Production: cfg.IsProduction(),
	})
	transporthttp.RegisterUsers(e, authSvc, userSvc)
	transporthttp.RegisterTours(e, authSvc, tourSvc)
	transporthttp.RegisterReviews(e, authSvc, reviewSvc)
	if err := transporthttp.RegisterPages(e, authSvc, tourSvc, userSvc); err != nil {
		logger.Fatal("load page templates", zap.Error(err))
	}
	transporthttp.RegisterSwagger(e, "docs/swagger.yaml", logger)

	go func() {
		logger.Info("listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", zap.Error(err))
	}
}
