package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"referral-miniapp-backend/internal/bot"
	"referral-miniapp-backend/internal/config"
	"referral-miniapp-backend/internal/handlers"
	"referral-miniapp-backend/internal/logging"
	"referral-miniapp-backend/internal/middleware"
	"referral-miniapp-backend/internal/services"
	"referral-miniapp-backend/internal/telegram"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisService, err := services.NewRedisService(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer redisService.Close()

	ledger := services.NewLedger(redisService)
	registry := services.NewConnectionRegistry(
		services.WithCapacity(cfg.ConnectionCapacity),
		services.WithWindow(cfg.ConnectionWindow),
	)
	jwtService := services.NewJWTService(cfg)

	var tgClient *telegram.Client
	if cfg.BotConfigured() {
		tgClient, err = telegram.NewClient(cfg.BotToken, cfg.TelegramTimeout, logger)
		if err != nil {
			logger.Fatal("failed to start telegram bot", zap.Error(err))
		}
	} else {
		logger.Warn("BOT_TOKEN not set, running without the telegram bot")
	}

	var prober *services.MembershipProber
	if tgClient != nil {
		prober = services.NewMembershipProber(tgClient, logger)
	} else {
		prober = services.NewMembershipProber(nil, logger)
	}

	wsHandler := handlers.NewWebSocketHandler(registry, logger)
	defer wsHandler.Close()

	systemHandler := handlers.NewSystemHandler(registry, redisService, cfg.BotConfigured())
	connectionHandler := handlers.NewConnectionHandler(registry, wsHandler)
	membershipHandler := handlers.NewMembershipHandler(prober, registry)
	userHandler := handlers.NewUserHandler(ledger)
	adminHandler := handlers.NewAdminHandler(ledger, logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.SetupCORS(cfg))

	router.GET("/", systemHandler.Root)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/test", systemHandler.Test)
		api.GET("/health", systemHandler.Health)
		api.GET("/connections", systemHandler.Connections)
		api.GET("/connections/live", wsHandler.HandleWebSocket)

		api.POST("/frontend/connect", connectionHandler.Connect)
		api.POST("/telegram/check-membership",
			middleware.RateLimitMiddleware(redisService, "check_membership", cfg.MembershipRateLimit, cfg.RateLimitWindow, logger),
			membershipHandler.CheckMembership)

		api.GET("/users/:id", userHandler.GetUser)
		api.GET("/referrals/:id", userHandler.GetReferrals)

		admin := api.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware(jwtService, cfg.AdminUserIDs))
		{
			admin.POST("/referrals/credit", adminHandler.CreditReferral)
		}
	}

	botDone := make(chan struct{})
	if tgClient != nil {
		referralBot := bot.New(tgClient, ledger, cfg.AdminUserIDs, logger)
		go func() {
			defer close(botDone)
			referralBot.Run(ctx, tgClient.Updates(int(config.LongPollTimeout.Seconds())))
		}()
	} else {
		close(botDone)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	if tgClient != nil {
		tgClient.StopUpdates()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	select {
	case <-botDone:
	case <-shutdownCtx.Done():
		logger.Warn("bot handlers did not finish before shutdown timeout")
	}
}
