package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Env        string
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	NewRelic   NewRelicConfig
	Paystack   PaystackConfig
	Auth       AuthConfig
	Mail       MailConfig
	Rollbar    RollbarConfig
	Settlement SettlementConfig
	Reconcile  ReconcileConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// PaystackConfig holds payment provider configuration.
type PaystackConfig struct {
	BaseURL       string
	PublicKey     string
	SecretKey     string
	Currency      string
	VerifyTimeout time.Duration
	CallbackURL   string
}

// AuthConfig holds token signing configuration.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	Issuer    string
}

// MailConfig holds outgoing mail configuration. Mail is logged instead of
// sent when SendGridKey is empty.
type MailConfig struct {
	SendGridKey string
	FromName    string
	FromAddress string
}

// RollbarConfig holds operator alerting configuration.
type RollbarConfig struct {
	Token string
}

// SettlementConfig holds settlement writer configuration.
type SettlementConfig struct {
	LockTTL time.Duration
}

// ReconcileConfig holds reconciliation job configuration.
type ReconcileConfig struct {
	Interval     time.Duration
	Grace        time.Duration
	AbandonAfter time.Duration
	BatchSize    int
}

// Load loads configuration from environment variables, reading a .env file
// first when one is present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: ignoring .env: %v", err)
	}

	return &Config{
		Env: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "school_fees"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "school-fees-service"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Paystack: PaystackConfig{
			BaseURL:       getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
			PublicKey:     getEnv("PAYSTACK_PUBLIC_KEY", ""),
			SecretKey:     getEnv("PAYSTACK_SECRET_KEY", ""),
			Currency:      getEnv("PAYMENT_CURRENCY", "NGN"),
			VerifyTimeout: getDurationEnv("PAYSTACK_VERIFY_TIMEOUT", 15*time.Second),
			CallbackURL:   getEnv("PAYSTACK_CALLBACK_URL", ""),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getDurationEnv("JWT_TTL", 24*time.Hour),
			Issuer:    getEnv("JWT_ISSUER", "school-fees"),
		},
		Mail: MailConfig{
			SendGridKey: getEnv("SENDGRID_API_KEY", ""),
			FromName:    getEnv("MAIL_FROM_NAME", "School Bursary"),
			FromAddress: getEnv("MAIL_FROM", "bursary@example.com"),
		},
		Rollbar: RollbarConfig{
			Token: getEnv("ROLLBAR_TOKEN", ""),
		},
		Settlement: SettlementConfig{
			LockTTL: getDurationEnv("SETTLEMENT_LOCK_TTL", 30*time.Second),
		},
		Reconcile: ReconcileConfig{
			Interval:     getDurationEnv("RECONCILE_INTERVAL", 5*time.Minute),
			Grace:        getDurationEnv("RECONCILE_GRACE", 2*time.Minute),
			AbandonAfter: getDurationEnv("RECONCILE_ABANDON_AFTER", 24*time.Hour),
			BatchSize:    getIntEnv("RECONCILE_BATCH_SIZE", 100),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
