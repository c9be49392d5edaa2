package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/Zachkp/portfolio/internal/contact"
)

type Config struct {
	Port    string `validate:"required,numeric"`
	GinMode string `validate:"oneof=debug release test"`
	Env     string `validate:"oneof=development production"`
	LogFile string

	DatabasePath string `validate:"required"`
	ContentFile  string

	// Contact form
	ContactEmail      string `validate:"required,email"`
	RelayEndpoint     string `validate:"required,url"`
	RelayAutoresponse string
	MinMessageLength  int           `validate:"gte=1"`
	SuccessDelay      time.Duration `validate:"gt=0"`
	TypingIdle        time.Duration `validate:"gt=0"`
	FormIdleTimeout   time.Duration `validate:"gt=0"`

	// Sessions and admin
	SessionSecret string `validate:"required,min=16"`
	AdminUsername string `validate:"required"`
	AdminPassword string `validate:"required"`

	// Rate limiting
	RedisURL               string
	ContactRateLimit       int `validate:"gte=1"`
	RateLimitWindowSeconds int `validate:"gte=1"`

	// Observability
	MetricsEnabled   bool
	OTLPEndpoint     string
	VisitorRetention time.Duration `validate:"gt=0"`
}

// Load reads the environment, after applying a .env file when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	contactEmail := getEnv("CONTACT_EMAIL", "hello@zach.dev")

	cfg := &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),
		Env:     getEnv("APP_ENV", "development"),
		LogFile: getEnv("LOG_FILE", ""),

		DatabasePath: getEnv("DATABASE_PATH", "portfolio.db"),
		ContentFile:  getEnv("CONTENT_FILE", ""),

		ContactEmail:      contactEmail,
		RelayEndpoint:     strings.TrimRight(getEnv("RELAY_ENDPOINT", contact.FormSubmitEndpoint(contactEmail)), "/"),
		RelayAutoresponse: getEnv("RELAY_AUTORESPONSE", contact.DefaultAutoresponse),
		MinMessageLength:  getEnvInt("MIN_MESSAGE_LENGTH", contact.DefaultMinMessageLength),
		SuccessDelay:      getEnvDuration("SUCCESS_DELAY", contact.DefaultSuccessDelay),
		TypingIdle:        getEnvDuration("TYPING_IDLE", contact.DefaultTypingIdle),
		FormIdleTimeout:   getEnvDuration("FORM_IDLE_TIMEOUT", 30*time.Minute),

		SessionSecret: getEnv("SESSION_SECRET", ""),
		AdminUsername: getEnv("ADMIN_USERNAME", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		RedisURL:               getEnv("REDIS_URL", ""),
		ContactRateLimit:       getEnvInt("CONTACT_RATE_LIMIT", 5),
		RateLimitWindowSeconds: getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),

		MetricsEnabled:   getEnvBool("METRICS_ENABLED", true),
		OTLPEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		VisitorRetention: getEnvDuration("VISITOR_RETENTION", 365*24*time.Hour),
	}

	// Development defaults; production must set these explicitly.
	if cfg.Env == "development" {
		if cfg.SessionSecret == "" {
			cfg.SessionSecret = "dev-session-secret-change-me"
			log.Println("WARNING: Using default session secret. Set SESSION_SECRET environment variable.")
		}
		if cfg.AdminUsername == "" {
			cfg.AdminUsername = "admin"
			log.Println("WARNING: Using default admin username. Set ADMIN_USERNAME environment variable.")
		}
		if cfg.AdminPassword == "" {
			cfg.AdminPassword = "admin123"
			log.Println("WARNING: Using default admin password. Set ADMIN_PASSWORD environment variable.")
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Production reports whether the app runs with production settings.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// RateLimitWindow returns the contact rate limit window.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("5s") or whole seconds ("5").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
