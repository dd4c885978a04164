package main

import (
	"AI-Content-Creator-Backend/internal/api"
	"AI-Content-Creator-Backend/internal/auth"
	"AI-Content-Creator-Backend/internal/config"
	"AI-Content-Creator-Backend/internal/logging"
	"AI-Content-Creator-Backend/internal/repository"
	"AI-Content-Creator-Backend/internal/router"
	"AI-Content-Creator-Backend/internal/service"
	"AI-Content-Creator-Backend/internal/telegram"
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to read config: %s", err)
	}
	if err := logging.InitLogger(cfg.Log.Production); err != nil {
		log.Fatalf("failed to init logger: %s", err)
	}
	defer logging.Sync()
	logger := logging.Logger
	gin.SetMode(cfg.Server.Mode)

	if err := api.RegisterValidations(); err != nil {
		logger.Fatal("failed to register validations", zap.Error(err))
	}

	stores := repository.OpenStores(context.Background(), cfg.Redis.URL, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
	defer stores.Close()

	aiService := service.NewAIService(
		cfg.AIService.BaseURL,
		cfg.AIService.APIKey,
		cfg.AIService.Model,
		cfg.AIService.TimeoutSeconds,
		cfg.AIService.Temperature,
		cfg.AIService.MaxTokens,
	)

	pdfService, err := service.NewPDFService(cfg.PDF.TemplatePath, cfg.PDF.FontPath)
	if err != nil {
		logger.Fatal("failed to init pdf service", zap.Error(err))
	}

	var (
		messenger      service.Messenger
		webhookHandler *api.WebhookHandler
		initData       *auth.InitDataValidator
	)
	if cfg.Telegram.BotToken != "" {
		bot, err := telegram.NewBot(cfg.Telegram.BotToken, telegram.Options{
			WebAppURL:      cfg.Telegram.WebAppURL,
			ProviderToken:  cfg.Telegram.ProviderToken,
			InvoicePayload: cfg.Payments.Payload,
		})
		if err != nil {
			logger.Fatal("failed to init telegram bot", zap.Error(err))
		}
		if cfg.Telegram.WebAppURL != "" {
			if err := bot.SetWebhook(); err != nil {
				logger.Error("failed to set telegram webhook", zap.Error(err))
			}
		}
		messenger = bot
		webhookHandler = api.NewWebhookHandler(bot)
		if cfg.Telegram.VerifyInitData {
			initData = auth.NewInitDataValidator(cfg.Telegram.BotToken)
		}
	} else {
		logger.Warn("telegram bot token not set, documents will not be delivered")
		if cfg.Telegram.VerifyInitData {
			logger.Fatal("telegram.verify_init_data requires telegram.bot_token")
		}
	}

	contentService := service.NewContentService(stores.Usage, stores.Cache, aiService, pdfService, messenger, service.ContentOptions{
		FreePerDay:      cfg.Quota.FreePerDay,
		PaymentsEnabled: cfg.Telegram.ProviderToken != "",
		InvoiceTitle:    cfg.Payments.Title,
		InvoicePayload:  cfg.Payments.Payload,
		Currency:        cfg.Payments.Currency,
		Price:           cfg.Payments.Price,
	})

	contentHandler := api.NewContentHandler(contentService)

	r := router.SetupRouter(contentHandler, webhookHandler, router.Options{
		AllowedOrigins: cfg.Cors.AllowedOrigins,
		StaticDir:      cfg.Server.StaticDir,
		InitData:       initData,
	})

	logger.Info("server starting", zap.String("addr", "http://localhost"+cfg.Server.Port))
	if err := r.Run(cfg.Server.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
