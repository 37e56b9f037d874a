package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Quota     QuotaConfig
	Export    ExportConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	SMTP      SMTPConfig
	Storage   StorageConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	WsLogFilePath      string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Driver     string // "postgres" or "sqlite"
	Connection string
}

type AuthConfig struct {
	JwtSecret string
	// When true every owner-scoped route requires a bearer token and the
	// requester id is taken from its claims instead of the query string.
	Required bool
}

// QuotaConfig holds the free-tier message cap and the length of a counting window.
type QuotaConfig struct {
	FreeDailyLimit int
	Window         time.Duration
}

type ExportConfig struct {
	MaxMessages int
}

type RateLimitConfig struct {
	ViewsPerMinute int
	ViewsBurst     int
}

type CacheConfig struct {
	PublicFeedTTL time.Duration
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type StorageConfig struct {
	AwsRegion       string
	AwsAccessKey    string
	AwsSecretKey    string
	ThumbnailBucket string
	PresignTTL      time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			WsLogFilePath:      getEnv("WS_LOG_FILE_PATH", "logs/realtime.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Auth: AuthConfig{
			JwtSecret: getEnv("JWT_SECRET", ""),
			Required:  getEnvAsBool("AUTH_REQUIRED", false),
		},
		Quota: QuotaConfig{
			FreeDailyLimit: getEnvAsInt("QUOTA_FREE_DAILY_LIMIT", 5),
			Window:         time.Duration(getEnvAsInt("QUOTA_WINDOW_HOURS", 24)) * time.Hour,
		},
		Export: ExportConfig{
			MaxMessages: getEnvAsInt("EXPORT_MAX_MESSAGES", 10000),
		},
		RateLimit: RateLimitConfig{
			ViewsPerMinute: getEnvAsInt("VIEW_RATE_PER_MINUTE", 60),
			ViewsBurst:     getEnvAsInt("VIEW_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			PublicFeedTTL: time.Duration(getEnvAsInt("PUBLIC_FEED_CACHE_SECONDS", 30)) * time.Second,
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Haley"),
		},
		Storage: StorageConfig{
			AwsRegion:       getEnv("AWS_REGION", ""),
			AwsAccessKey:    getEnv("AWS_ACCESS_KEY_ID", ""),
			AwsSecretKey:    getEnv("AWS_SECRET_ACCESS_KEY", ""),
			ThumbnailBucket: getEnv("THUMBNAIL_BUCKET", "haley-thumbnails"),
			PresignTTL:      time.Duration(getEnvAsInt("THUMBNAIL_PRESIGN_MINUTES", 15)) * time.Minute,
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
