package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    Server    `mapstructure:"server"`
	Cors      Cors      `mapstructure:"cors"`
	Log       Log       `mapstructure:"log"`
	AIService AIService `mapstructure:"ai_service"`
	Redis     Redis     `mapstructure:"redis"`
	Telegram  Telegram  `mapstructure:"telegram"`
	Payments  Payments  `mapstructure:"payments"`
	Quota     Quota     `mapstructure:"quota"`
	Cache     Cache     `mapstructure:"cache"`
	PDF       PDF       `mapstructure:"pdf"`
	Client    Client    `mapstructure:"client"`
}

type Server struct {
	Port      string `mapstructure:"port"`
	Mode      string `mapstructure:"mode"`
	StaticDir string `mapstructure:"static_dir"`
}

type Cors struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Log struct {
	Production bool `mapstructure:"production"`
}

type AIService struct {
	BaseURL        string  `mapstructure:"base_url"`
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	Temperature    float64 `mapstructure:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens"`
}

type Redis struct {
	URL string `mapstructure:"url"`
}

type Telegram struct {
	BotToken       string `mapstructure:"bot_token"`
	WebAppURL      string `mapstructure:"web_app_url"`
	ProviderToken  string `mapstructure:"provider_token"`
	VerifyInitData bool   `mapstructure:"verify_init_data"`
}

// Payments describes the invoice sent when the free quota is used up.
// Price is in the smallest currency unit.
type Payments struct {
	Price    int    `mapstructure:"price"`
	Currency string `mapstructure:"currency"`
	Payload  string `mapstructure:"payload"`
	Title    string `mapstructure:"title"`
}

type Quota struct {
	FreePerDay int `mapstructure:"free_per_day"`
}

type Cache struct {
	TTLSeconds int `mapstructure:"ttl_seconds"`
}

type PDF struct {
	TemplatePath string `mapstructure:"template_path"`
	FontPath     string `mapstructure:"font_path"`
}

// Client configures cmd/form-cli.
type Client struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	CloseDelayMs   int    `mapstructure:"close_delay_ms"`
}

// setDefaults registers every key so AutomaticEnv can override it during
// Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8000")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.static_dir", "./static")
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("log.production", false)
	v.SetDefault("ai_service.base_url", "https://api.openai.com/v1")
	v.SetDefault("ai_service.api_key", "")
	v.SetDefault("ai_service.model", "gpt-3.5-turbo")
	v.SetDefault("ai_service.timeout_seconds", 60)
	v.SetDefault("ai_service.temperature", 0.7)
	v.SetDefault("ai_service.max_tokens", 1000)
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.web_app_url", "")
	v.SetDefault("telegram.provider_token", "")
	v.SetDefault("telegram.verify_init_data", false)
	v.SetDefault("payments.price", 100)
	v.SetDefault("payments.currency", "XTR")
	v.SetDefault("payments.payload", "brochure_premium_content")
	v.SetDefault("payments.title", "محتوى مميز")
	v.SetDefault("quota.free_per_day", 1)
	v.SetDefault("cache.ttl_seconds", 3600)
	v.SetDefault("pdf.template_path", "./static/pdf_template.html")
	v.SetDefault("pdf.font_path", "./static/fonts/Amiri-Regular.ttf")
	v.SetDefault("client.base_url", "http://localhost:8000")
	v.SetDefault("client.timeout_seconds", 60)
	v.SetDefault("client.close_delay_ms", 2000)
}

// Load reads config.yaml from ./config or the working directory, overlaid by
// CONTENT_APP_* environment variables. A .env file in the working directory
// is loaded into the environment first. Missing files are not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded environment from .env")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	v.SetEnvPrefix("CONTENT_APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("warning: config.yaml not found, relying on environment variables only")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
