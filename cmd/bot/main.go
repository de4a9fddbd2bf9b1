package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"referral_rewards_bot/internal/api"
	"referral_rewards_bot/internal/bot"
	"referral_rewards_bot/internal/repository"
	"referral_rewards_bot/internal/service"
	"referral_rewards_bot/pkg/auth"
	"referral_rewards_bot/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	membership, err := bot.NewChannelMembership(cfg.Telegram.BotToken, cfg.Telegram.ChannelID)
	if err != nil {
		zapLogger.Fatal("Failed to initialize membership client", zap.Error(err))
	}

	notifier := service.NewRollupNotifier()
	referralService := service.NewReferralService(repo, membership)
	weeklyService := service.NewWeeklyService(repo, referralService, notifier, cfg.MinReferrals)
	monthlyService := service.NewMonthlyService(repo, notifier)
	svc := service.NewService(referralService, weeklyService, monthlyService)

	telegramAuth := auth.NewTelegramAuth(cfg.Telegram.BotToken, cfg.Telegram.Debug)

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{http.MethodHead, http.MethodGet}
	corsConfig.AllowHeaders = []string{"*"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	a := router.Group("/api/v1")
	api.NewStandingsRoutes(a, svc, telegramAuth, notifier)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	go func() {
		zapLogger.Info("Starting standings API", zap.String("addr", addr))
		if err := router.Run(addr); err != nil {
			zapLogger.Fatal("Failed to start standings API", zap.Error(err))
		}
	}()

	b, err := bot.New(bot.Config{
		Token:         cfg.Telegram.BotToken,
		ChannelID:     cfg.Telegram.ChannelID,
		ChannelInvite: cfg.Telegram.ChannelInvite,
		AdminID:       cfg.Telegram.AdminID,
		Debug:         cfg.Telegram.Debug,
	}, svc)
	if err != nil {
		zapLogger.Fatal("Failed to initialize bot", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zapLogger.Info("Starting bot update loop")
	b.Start(ctx)
}
