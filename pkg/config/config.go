package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Directory     DirectoryConfig
	Notifications NotificationsConfig
	Email         EmailConfig
	Transfers     TransfersConfig
	Evidence      EvidenceConfig
	Reports       ReportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DirectoryConfig points at the external identity directory.
type DirectoryConfig struct {
	BaseURL         string
	APIKey          string
	RequestTimeout  time.Duration
	ProfileCacheTTL time.Duration
}

// NotificationsConfig tunes the in-app notification dispatcher.
type NotificationsConfig struct {
	Enabled           bool
	WorkerConcurrency int
	QueueSize         int
	UnreadCountTTL    time.Duration
}

// EmailConfig tunes the outbound email dispatcher.
type EmailConfig struct {
	Enabled           bool
	SenderAddress     string
	WorkerConcurrency int
	QueueSize         int
	BaseWebURL        string
}

// TransfersConfig governs innovation ownership transfers.
type TransfersConfig struct {
	ExpiryWindow    time.Duration
	CleanupInterval time.Duration
}

// EvidenceConfig controls evidence file storage & validation.
type EvidenceConfig struct {
	StorageDir       string
	SignedURLSecret  string
	SignedURLTTL     time.Duration
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
}

// ReportsConfig configures assessment report exports.
type ReportsConfig struct {
	Enabled    bool
	StorageDir string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Directory = DirectoryConfig{
		BaseURL:         v.GetString("DIRECTORY_BASE_URL"),
		APIKey:          v.GetString("DIRECTORY_API_KEY"),
		RequestTimeout:  parseDuration(v.GetString("DIRECTORY_REQUEST_TIMEOUT"), 10*time.Second),
		ProfileCacheTTL: parseDuration(v.GetString("DIRECTORY_PROFILE_CACHE_TTL"), 15*time.Minute),
	}

	cfg.Notifications = NotificationsConfig{
		Enabled:           v.GetBool("ENABLE_NOTIFICATIONS"),
		WorkerConcurrency: v.GetInt("NOTIFICATIONS_WORKER_CONCURRENCY"),
		QueueSize:         v.GetInt("NOTIFICATIONS_QUEUE_SIZE"),
		UnreadCountTTL:    parseDuration(v.GetString("NOTIFICATIONS_UNREAD_COUNT_TTL"), 5*time.Minute),
	}

	cfg.Email = EmailConfig{
		Enabled:           v.GetBool("ENABLE_EMAIL"),
		SenderAddress:     v.GetString("EMAIL_SENDER_ADDRESS"),
		WorkerConcurrency: v.GetInt("EMAIL_WORKER_CONCURRENCY"),
		QueueSize:         v.GetInt("EMAIL_QUEUE_SIZE"),
		BaseWebURL:        v.GetString("EMAIL_BASE_WEB_URL"),
	}

	cfg.Transfers = TransfersConfig{
		ExpiryWindow:    parseDuration(v.GetString("TRANSFERS_EXPIRY_WINDOW"), 31*24*time.Hour),
		CleanupInterval: parseDuration(v.GetString("TRANSFERS_CLEANUP_INTERVAL"), time.Hour),
	}

	maxEvidenceSize := v.GetInt64("EVIDENCE_MAX_FILE_SIZE")
	if maxEvidenceSize <= 0 {
		maxEvidenceSize = 20 * 1024 * 1024
	}
	cfg.Evidence = EvidenceConfig{
		StorageDir:       v.GetString("EVIDENCE_STORAGE_DIR"),
		SignedURLSecret:  v.GetString("EVIDENCE_SIGNED_URL_SECRET"),
		SignedURLTTL:     parseDuration(v.GetString("EVIDENCE_SIGNED_URL_TTL"), 30*time.Minute),
		MaxFileSizeBytes: maxEvidenceSize,
		AllowedMIMEs:     splitAndTrim(v.GetString("EVIDENCE_ALLOWED_MIME_TYPES")),
	}

	cfg.Reports = ReportsConfig{
		Enabled:    v.GetBool("ENABLE_REPORTS"),
		StorageDir: v.GetString("REPORTS_STORAGE_DIR"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "innovation_hub")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("DIRECTORY_BASE_URL", "http://localhost:7071/api")
	v.SetDefault("DIRECTORY_API_KEY", "")
	v.SetDefault("DIRECTORY_REQUEST_TIMEOUT", "10s")
	v.SetDefault("DIRECTORY_PROFILE_CACHE_TTL", "15m")

	v.SetDefault("ENABLE_NOTIFICATIONS", true)
	v.SetDefault("NOTIFICATIONS_WORKER_CONCURRENCY", 2)
	v.SetDefault("NOTIFICATIONS_QUEUE_SIZE", 256)
	v.SetDefault("NOTIFICATIONS_UNREAD_COUNT_TTL", "5m")

	v.SetDefault("ENABLE_EMAIL", false)
	v.SetDefault("EMAIL_SENDER_ADDRESS", "noreply@innovation-hub.local")
	v.SetDefault("EMAIL_WORKER_CONCURRENCY", 1)
	v.SetDefault("EMAIL_QUEUE_SIZE", 256)
	v.SetDefault("EMAIL_BASE_WEB_URL", "http://localhost:4200")

	v.SetDefault("TRANSFERS_EXPIRY_WINDOW", "744h")
	v.SetDefault("TRANSFERS_CLEANUP_INTERVAL", "1h")

	v.SetDefault("EVIDENCE_STORAGE_DIR", "./evidence")
	v.SetDefault("EVIDENCE_SIGNED_URL_SECRET", "dev_evidence_secret")
	v.SetDefault("EVIDENCE_SIGNED_URL_TTL", "30m")
	v.SetDefault("EVIDENCE_MAX_FILE_SIZE", 20*1024*1024)
	v.SetDefault("EVIDENCE_ALLOWED_MIME_TYPES", "application/pdf,image/png,image/jpeg,application/vnd.openxmlformats-officedocument.wordprocessingml.document")

	v.SetDefault("ENABLE_REPORTS", true)
	v.SetDefault("REPORTS_STORAGE_DIR", "./exports")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
