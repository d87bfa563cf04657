package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Mail failure policies for HR activation emails
const (
	MailFailurePolicyLog  = "log"  // log the failure, registration succeeds
	MailFailurePolicyFail = "fail" // roll the registration back
)

type Config struct {
	Port          string
	DBUrl         string
	RunMigrations bool
	FrontendURL   string
	LogLevel      string
	// SMTP Configuration (Brevo)
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromEmail string
	// Registration / activation
	MailFailurePolicy           string
	SendStudentActivationEmails bool
	ActivationTokenTTL          time.Duration // 0 disables expiry
	ReservationPeriod           time.Duration
	// Auth
	JWTSecret          string
	JWTExpiry          time.Duration
	AdminToken         string
	LoginMaxAttempts   int
	LoginBlockDuration time.Duration
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds     int
	RateLimitRegisterThreshold int
	RateLimitGlobalThreshold   int
	// Import archive (S3 / Wasabi)
	S3Provider          string
	S3Region            string
	S3AccessKeyID       string
	S3SecretAccessKey   string
	ImportArchiveBucket string
	ImportMaxUploadMB   int
}

func LoadConfig() (*Config, error) {
	// Only effective locally; missing .env is fine in production
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DBUrl:         getEnv("DATABASE_URL", ""),
		RunMigrations: getEnvBool("RUN_MIGRATIONS", false),
		// Strip trailing slash so generated links never contain "//"
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		// SMTP Configuration
		SMTPHost:      getEnv("SMTP_HOST", "smtp-relay.brevo.com"),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail: getEnv("SMTP_FROM_EMAIL", "noreply@headhunter.local"),
		// Registration
		MailFailurePolicy:           strings.ToLower(getEnv("MAIL_FAILURE_POLICY", MailFailurePolicyLog)),
		SendStudentActivationEmails: getEnvBool("SEND_STUDENT_ACTIVATION_EMAILS", false),
		ActivationTokenTTL:          time.Duration(getEnvInt("ACTIVATION_TOKEN_TTL_HOURS", 72)) * time.Hour,
		ReservationPeriod:           time.Duration(getEnvInt("RESERVATION_DAYS", 10)) * 24 * time.Hour,
		// Auth
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTExpiry:          time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
		AdminToken:         getEnv("ADMIN_TOKEN", ""),
		LoginMaxAttempts:   getEnvInt("LOGIN_MAX_ATTEMPTS", 5),
		LoginBlockDuration: time.Duration(getEnvInt("LOGIN_BLOCK_MINUTES", 15)) * time.Minute,
		// Redis/Upstash Configuration
		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
		// Rate Limiting Configuration
		RateLimitWindowSeconds:     getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitRegisterThreshold: getEnvInt("RATE_LIMIT_REGISTER_THRESHOLD", 10),
		RateLimitGlobalThreshold:   getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
		// Import archive
		S3Provider:          getEnv("S3_PROVIDER", "aws"),
		S3Region:            getEnv("S3_REGION", ""),
		S3AccessKeyID:       getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey:   getEnv("S3_SECRET_ACCESS_KEY", ""),
		ImportArchiveBucket: getEnv("IMPORT_ARCHIVE_BUCKET", ""),
		ImportMaxUploadMB:   getEnvInt("IMPORT_MAX_UPLOAD_MB", 5),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}
	if cfg.JWTSecret == "" {
		log.Println("WARNING: JWT_SECRET not configured. Login and HR endpoints will reject every request.")
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.MailFailurePolicy {
	case MailFailurePolicyLog, MailFailurePolicyFail:
	default:
		return fmt.Errorf("invalid MAIL_FAILURE_POLICY %q: must be %q or %q", c.MailFailurePolicy, MailFailurePolicyLog, MailFailurePolicyFail)
	}
	if c.ActivationTokenTTL < 0 {
		return fmt.Errorf("ACTIVATION_TOKEN_TTL_HOURS must not be negative")
	}
	if c.ReservationPeriod <= 0 {
		return fmt.Errorf("RESERVATION_DAYS must be positive")
	}
	return nil
}

// ImportArchiveEnabled reports whether uploaded student lists should be archived.
func (c *Config) ImportArchiveEnabled() bool {
	return c.ImportArchiveBucket != "" && c.S3AccessKeyID != "" && c.S3SecretAccessKey != ""
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
