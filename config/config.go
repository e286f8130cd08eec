package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Telegram TelegramConfig
	JWT      JWTConfig
	Scoring  ScoringConfig
	Backup   BackupConfig
	Admin    AdminConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is; otherwise built from components
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	PoolSize int // max pgx pool connections
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// TelegramConfig holds Bot API settings.
type TelegramConfig struct {
	BotToken      string
	APIBaseURL    string // override for tests; default https://api.telegram.org
	WebhookURL    string // public URL registered with setWebhook
	WebhookSecret string // X-Telegram-Bot-Api-Secret-Token value
	DefaultChatID int64  // group chat for scheduled dispatch
	DispatchEvery int    // minutes between scheduled polls; 0 disables
}

// JWTConfig holds admin JWT signing settings.
type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// ScoringConfig holds the reward policy knobs.
type ScoringConfig struct {
	RewardPoints      int // points per correct answer
	WelcomeBonus      int // points granted on first group join
	PersistTimeoutSec int // bound on reconciliation DB calls per webhook event
}

// BackupConfig holds table backup settings (S3).
type BackupConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

// AdminConfig holds the bootstrap admin account created at startup if missing.
type AdminConfig struct {
	Email    string
	Password string
}

// DSN returns the PostgreSQL connection string, with pool size applied.
// If DatabaseConfig.URL is set (DATABASE_URL env), it is used as-is plus pool size.
func (c DatabaseConfig) DSN() string {
	base := c.URL
	if base == "" {
		base = fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=%s",
			c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
		)
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%spool_max_conns=%d", base, sep, c.PoolSize)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "quizrally"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			PoolSize: getEnvInt("DB_POOL_SIZE", 10),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Telegram: TelegramConfig{
			BotToken:      getEnv("TELEGRAM_BOT_TOKEN", ""),
			APIBaseURL:    getEnv("TELEGRAM_API_BASE_URL", "https://api.telegram.org"),
			WebhookURL:    getEnv("TELEGRAM_WEBHOOK_URL", ""),
			WebhookSecret: getEnv("TELEGRAM_WEBHOOK_SECRET", ""),
			DefaultChatID: getEnvInt64("TELEGRAM_DEFAULT_CHAT_ID", 0),
			DispatchEvery: getEnvInt("TELEGRAM_DISPATCH_EVERY_MIN", 0),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24),
		},
		Scoring: ScoringConfig{
			RewardPoints:      getEnvInt("SCORE_REWARD_POINTS", 50),
			WelcomeBonus:      getEnvInt("SCORE_WELCOME_BONUS", 25),
			PersistTimeoutSec: getEnvInt("SCORE_PERSIST_TIMEOUT_SEC", 5),
		},
		Backup: BackupConfig{
			Region:          getEnv("AWS_REGION", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Bucket:          getEnv("AWS_S3_BACKUPS_BUCKET", "quizrally-backups"),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
	}

	if cfg.Telegram.BotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
