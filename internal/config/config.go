package config

import (
	"os"
	"strconv"
	"time"
)

// DefaultJWTSecret is only acceptable outside production
const DefaultJWTSecret = "change-me-in-production-please"

type Config struct {
	// Server
	Port           string
	AllowedOrigins string
	MaxUploadMB    int
	StaticDir      string

	// Environment
	Environment string

	// Text-generation provider
	LLMProvider           string
	OpenRouterAPIKey      string
	OpenRouterURL         string
	OpenRouterModel       string
	SiteURL               string
	SiteName              string
	GeminiAPIKey          string
	GeminiModel           string
	ProviderTimeout       time.Duration
	ProviderMaxRetries    int
	ProviderBackoff       time.Duration
	ProviderRatePerMinute int

	// OCR
	OCRLanguage string

	// Database (optional analysis audit log)
	DatabaseURL     string
	AuditSQLitePath string

	// JWT
	JWTSecret string
	JWTExpiry time.Duration

	// Admin
	AdminPassword string

	// S3/Garage Storage (optional label archive)
	S3Enabled          bool
	S3Endpoint         string
	S3AccessKey        string
	S3SecretKey        string
	S3Bucket           string
	S3UseSSL           bool
	S3Region           string
	ImageRetentionDays int
}

func Load() *Config {
	return &Config{
		Port:                  getEnv("PORT", "8080"),
		AllowedOrigins:        getEnv("ALLOWED_ORIGINS", "http://localhost:5000, http://0.0.0.0:5000"),
		MaxUploadMB:           getIntEnv("MAX_UPLOAD_MB", 10),
		StaticDir:             getEnv("STATIC_DIR", "./web"),
		Environment:           getEnv("ENVIRONMENT", "development"),
		LLMProvider:           getEnv("LLM_PROVIDER", "openrouter"),
		OpenRouterAPIKey:      getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterURL:         getEnv("OPENROUTER_URL", "https://openrouter.ai/api/v1/chat/completions"),
		OpenRouterModel:       getEnv("OPENROUTER_MODEL", "qwen/qwen2.5-vl-32b-instruct:free"),
		SiteURL:               getEnv("SITE_URL", "https://example.com"),
		SiteName:              getEnv("SITE_NAME", "NutriScan"),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiModel:           getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		ProviderTimeout:       getDurationEnv("PROVIDER_TIMEOUT_SECONDS", 60) * time.Second,
		ProviderMaxRetries:    getIntEnv("PROVIDER_MAX_RETRIES", 2),
		ProviderBackoff:       getDurationEnv("PROVIDER_BACKOFF_SECONDS", 2) * time.Second,
		ProviderRatePerMinute: getIntEnv("PROVIDER_RATE_PER_MINUTE", 20),
		OCRLanguage:           getEnv("OCR_LANGUAGE", "eng"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		AuditSQLitePath:       getEnv("AUDIT_SQLITE_PATH", ""),
		JWTSecret:             getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTExpiry:             getDurationEnv("JWT_EXPIRY_HOURS", 24) * time.Hour,
		AdminPassword:         getEnv("ADMIN_PASSWORD", ""),
		S3Enabled:             getBoolEnv("S3_ENABLED", false),
		S3Endpoint:            getEnv("S3_ENDPOINT", "localhost:3900"),
		S3AccessKey:           getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:           getEnv("S3_SECRET_KEY", ""),
		S3Bucket:              getEnv("S3_BUCKET", "labels"),
		S3UseSSL:              getBoolEnv("S3_USE_SSL", false),
		S3Region:              getEnv("S3_REGION", "garage"),
		ImageRetentionDays:    getIntEnv("IMAGE_RETENTION_DAYS", 7),
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

func getDurationEnv(key string, defaultValue int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return time.Duration(intVal)
		}
	}
	return time.Duration(defaultValue)
}

// ImageRetention is how long analyses and archived images are kept
func (c *Config) ImageRetention() time.Duration {
	return time.Duration(c.ImageRetentionDays) * 24 * time.Hour
}

// MaxUploadBytes is the largest accepted label image
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
