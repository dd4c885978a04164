package router

import (
	"AI-Content-Creator-Backend/internal/api"
	"AI-Content-Creator-Backend/internal/auth"
	"os"
	"path/filepath"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	AllowedOrigins []string
	StaticDir      string

	// InitData enables X-Telegram-Init-Data checks on /generate-content.
	InitData *auth.InitDataValidator
}

// SetupRouter registers the API. webhookHandler may be nil when no bot is
// configured.
func SetupRouter(contentHandler *api.ContentHandler, webhookHandler *api.WebhookHandler, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())

	config := cors.DefaultConfig()
	if len(opts.AllowedOrigins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = opts.AllowedOrigins
	}
	config.AllowHeaders = append(config.AllowHeaders, auth.InitDataHeader, "Content-Type")
	r.Use(cors.New(config))

	generate := []gin.HandlerFunc{contentHandler.GenerateContentHandler}
	if opts.InitData != nil {
		generate = append([]gin.HandlerFunc{auth.RequireInitData(opts.InitData)}, generate...)
	}
	r.POST("/generate-content", generate...)
	r.GET("/options", api.OptionsHandler)
	r.GET("/health", api.HealthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if webhookHandler != nil {
		r.POST("/telegram-webhook", webhookHandler.TelegramWebhookHandler)
	}

	if info, err := os.Stat(opts.StaticDir); err == nil && info.IsDir() {
		r.Static("/static", opts.StaticDir)
		r.GET("/", func(c *gin.Context) {
			c.File(filepath.Join(opts.StaticDir, "index.html"))
		})
	}

	return r
}
