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
	Port        string
	DBUrl       string
	SupabaseUrl string
	SupabaseKey string
	// HS256 secret for Supabase-issued tokens; RS256 tokens are
	// verified against the JWKS endpoint instead.
	SupabaseJWTSecret string
	FrontendURL       string
	// SMTP Configuration
	SMTPHost           string
	SMTPPort           string
	SMTPUsername       string
	SMTPPassword       string
	SMTPFromEmail      string
	SMTPTimeoutSeconds int
	// Object Storage (S3-compatible)
	S3AccessKeyID        string
	S3SecretAccessKey    string
	S3Region             string
	S3Endpoint           string // empty = AWS, otherwise Wasabi/MinIO style
	ProfilePictureBucket string
	SourceCodeBucket     string
	MaxArchiveSizeMB     int
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitLoginThreshold  int
	RateLimitGlobalThreshold int
	// Notification dispatch
	NotifyTimeoutSeconds int
}

func LoadConfig() (*Config, error) {
	// .env is only present in local development; ignored elsewhere
	_ = godotenv.Load()

	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		DBUrl: getEnv("DATABASE_URL", ""),
		// Trim trailing slash to prevent double slashes in derived URLs
		SupabaseUrl:       strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseKey:       getEnv("SUPABASE_KEY", getEnv("SUPABASE_ANON_KEY", "")),
		SupabaseJWTSecret: getEnv("SUPABASE_JWT_SECRET", getEnv("SUPABASE_JWT_KEY", "")),
		FrontendURL:       strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		// SMTP Configuration
		SMTPHost:           getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:           getEnv("SMTP_PORT", "587"),
		SMTPUsername:       getEnv("SMTP_USERNAME", getEnv("EMAIL_USER", "")),
		SMTPPassword:       getEnv("SMTP_PASSWORD", getEnv("EMAIL_PASSWORD", "")),
		SMTPFromEmail:      getEnv("SMTP_FROM_EMAIL", "noreply@moondev.team"),
		SMTPTimeoutSeconds: getEnvInt("SMTP_TIMEOUT_SECONDS", 10),
		// Object Storage
		S3AccessKeyID:        getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey:    getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Region:             getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:           getEnv("S3_ENDPOINT", ""),
		ProfilePictureBucket: getEnv("PROFILE_PICTURE_BUCKET", "profile-pictures"),
		SourceCodeBucket:     getEnv("SOURCE_CODE_BUCKET", "source-code"),
		MaxArchiveSizeMB:     getEnvInt("MAX_ARCHIVE_SIZE_MB", 50),
		// Redis/Upstash Configuration
		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
		// Rate Limiting Configuration (with sensible defaults)
		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitLoginThreshold:  getEnvInt("RATE_LIMIT_LOGIN_THRESHOLD", 10),
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
		// Notification dispatch
		NotifyTimeoutSeconds: getEnvInt("NOTIFY_TIMEOUT_SECONDS", 15),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.S3AccessKeyID == "" {
		log.Println("WARNING: S3_ACCESS_KEY_ID not configured. Artifact uploads will fail.")
	}
	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

// MaxArchiveSize returns the source archive ceiling in bytes
func (c *Config) MaxArchiveSize() int64 {
	return int64(c.MaxArchiveSizeMB) << 20
}

// NotifyTimeout bounds the asynchronous decision email dispatch
func (c *Config) NotifyTimeout() time.Duration {
	return time.Duration(c.NotifyTimeoutSeconds) * time.Second
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
