package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"ghostauth/internal/cipherbox"
	"ghostauth/internal/config"
	"ghostauth/internal/db"
	"ghostauth/internal/email"
	apihttp "ghostauth/internal/http"
	"ghostauth/internal/repository"
	"ghostauth/internal/service"
	"ghostauth/internal/token"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	cipherKey, err := cipherbox.KeyFromSecret(cfg.CipherSecret)
	if err != nil {
		logger.Fatal("cipher secret", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(pool)
	ghostRepo := repository.NewPgGhostRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var usedStore service.ConsumeOnceStore
	if cfg.TokenSingleUse {
		usedStore = service.NewMemoryConsumeOnceStore()
		if cfg.RedisAddr != "" {
			redisClient := redis.NewClient(&redis.Options{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			})
			ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
			if err := redisClient.Ping(ctxPing).Err(); err != nil {
				logger.Warn("redis ping failed, using in-memory single-use store", zap.Error(err))
			} else {
				usedStore = service.NewRedisConsumeOnceStore(redisClient)
			}
			cancel()
		}
	}

	codec := token.NewCodec(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
	)

	registrationSvc := service.NewRegistrationService(logger, userRepo, ghostRepo, codec, cipherKey, emailSender, usedStore)
	sessionSvc := service.NewSessionService(logger, userRepo, codec)
	passwordResetSvc := service.NewPasswordResetService(logger, userRepo, codec, cipherKey, emailSender, usedStore)
	emailVerifySvc := service.NewEmailVerificationService(logger, userRepo, codec)

	reaper := service.NewGhostReaper(
		logger,
		ghostRepo,
		time.Duration(cfg.GhostMaxAgeHours)*time.Hour,
		time.Duration(cfg.GhostReapMinutes)*time.Minute,
	)
	go reaper.Run(ctx)

	authHandler := apihttp.NewAuthHandler(logger, registrationSvc, sessionSvc, passwordResetSvc, emailVerifySvc)
	router := apihttp.NewRouter(logger, authHandler, codec)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
