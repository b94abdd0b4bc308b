package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"dealdesk-llm/internal/config"
	"dealdesk-llm/internal/db"
	"dealdesk-llm/internal/email"
	apihttp "dealdesk-llm/internal/http"
	"dealdesk-llm/internal/llm"
	"dealdesk-llm/internal/repository"
	"dealdesk-llm/internal/service"

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

	companyRepo := repository.NewPgCompanyRepository(pool)
	documentRepo := repository.NewPgDocumentRepository(pool)
	assessmentRepo := repository.NewPgAssessmentRepository(pool)
	votingRepo := repository.NewPgVotingRepository(pool)
	usageRepo := repository.NewPgUsageRepository(pool)

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMFastModel, cfg.LLMEmbeddingModel, logger)
	promptBuilder := service.AssessmentPromptBuilder{}
	responseParser := service.ResponseParser{}

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var tokenStore service.RefreshTokenStore
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		}
		cancel()
	}
	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	assessmentSvc := service.NewAssessmentService(llmClient, assessmentRepo, companyRepo, documentRepo, usageRepo, promptBuilder, responseParser, logger)
	chatSvc := service.NewChatService(llmClient, companyRepo, documentRepo, assessmentRepo, promptBuilder, logger)
	votingSvc := service.NewVotingService(votingRepo, assessmentRepo, emailSender, logger)

	authHandler := apihttp.NewAuthHandler(logger, jwtSvc)
	assessmentHandler := apihttp.NewAssessmentHandler(logger, assessmentSvc)
	votingHandler := apihttp.NewVotingHandler(logger, votingSvc)
	chatHandler := apihttp.NewChatHandler(logger, chatSvc)
	router := apihttp.NewRouter(logger, jwtSvc, authHandler, assessmentHandler, votingHandler, chatHandler)

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
