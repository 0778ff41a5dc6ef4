package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// TempoBook scheduling API.
	TempoBookAPIBase       string `mapstructure:"TEMPOBOOK_API_BASE"`
	TempoBookAPIToken      string `mapstructure:"TEMPOBOOK_API_TOKEN"`
	TempoBookAPITimeoutSec int    `mapstructure:"TEMPOBOOK_API_TIMEOUT_SECONDS"`

	// Mongo (booking audit records).
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Redis configuration.
	RedisAddr           string `mapstructure:"REDIS_ADDR"`
	RedisPassword       string `mapstructure:"REDIS_PASSWORD"`
	RedisConversationDB int    `mapstructure:"REDIS_CONVERSATION_DB"`

	// Session cache bounds.
	SessionCapacity      int `mapstructure:"SESSION_CAPACITY"`
	SessionIdleMinutes   int `mapstructure:"SESSION_IDLE_MINUTES"`
	ServiceCatalogTTLMin int `mapstructure:"SERVICE_CATALOG_TTL_MINUTES"`

	// Conversation log bounds.
	ConversationWindow    int `mapstructure:"CONVERSATION_WINDOW"`
	ConversationTTLMin    int `mapstructure:"CONVERSATION_TTL_MINUTES"`
	ConversationLogLength int `mapstructure:"CONVERSATION_LOG_LENGTH"`

	// Gemini API key for the dialogue layer.
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("TEMPOBOOK_API_BASE", "https://tempobook.virtusproject.com/api")
	viper.SetDefault("TEMPOBOOK_API_TOKEN", "")
	viper.SetDefault("TEMPOBOOK_API_TIMEOUT_SECONDS", 10)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CONVERSATION_DB", 1)
	viper.SetDefault("SESSION_CAPACITY", 500)
	viper.SetDefault("SESSION_IDLE_MINUTES", 30)
	viper.SetDefault("SERVICE_CATALOG_TTL_MINUTES", 10)
	viper.SetDefault("CONVERSATION_WINDOW", 20)
	viper.SetDefault("CONVERSATION_TTL_MINUTES", 1440)
	viper.SetDefault("CONVERSATION_LOG_LENGTH", 200)
	viper.SetDefault("GEMINI_API_KEY", "")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
