package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port            string
	Env             string
	LogLevel        string
	DefaultLanguage string
	SessionTTL      time.Duration

	// Booking pipeline
	BookingRevertDelay    time.Duration
	BookingSubmitTimeout  time.Duration
	BookingWebhookURL     string
	BookingSheetID        string
	BookingSheetRange     string
	GoogleCredentialsFile string
	BookingSimulatedDelay time.Duration
	BookingNotifyEmail    string
	BookingGuardTTL       time.Duration

	// Chat collaborator
	ChatProvider   string
	GeminiAPIKey   string
	GeminiModelID  string
	BedrockModelID string
	ChatTimeout    time.Duration

	// AWS (Bedrock, SES)
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	// Email
	EmailProvider     string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string

	// Redis (optional duplicate-submission guard)
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// HTTP
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DefaultLanguage: strings.ToLower(strings.TrimSpace(getEnv("DEFAULT_LANGUAGE", "ko"))),
		SessionTTL:      getEnvAsDuration("SESSION_TTL", 30*time.Minute),

		BookingRevertDelay:    getEnvAsDuration("BOOKING_REVERT_DELAY", 3*time.Second),
		BookingSubmitTimeout:  getEnvAsDuration("BOOKING_SUBMIT_TIMEOUT", 15*time.Second),
		BookingWebhookURL:     getEnv("BOOKING_WEBHOOK_URL", ""),
		BookingSheetID:        getEnv("BOOKING_SHEET_ID", ""),
		BookingSheetRange:     getEnv("BOOKING_SHEET_RANGE", "Bookings!A:F"),
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),
		BookingSimulatedDelay: getEnvAsDuration("BOOKING_SIMULATED_DELAY", 1500*time.Millisecond),
		BookingNotifyEmail:    getEnv("BOOKING_NOTIFY_EMAIL", ""),
		BookingGuardTTL:       getEnvAsDuration("BOOKING_GUARD_TTL", 30*time.Second),

		ChatProvider:   strings.ToLower(strings.TrimSpace(getEnv("CHAT_PROVIDER", "gemini"))),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:  getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		BedrockModelID: getEnv("BEDROCK_MODEL_ID", ""),
		ChatTimeout:    getEnvAsDuration("CHAT_TIMEOUT", 30*time.Second),

		AWSRegion:          getEnv("AWS_REGION", "ap-northeast-2"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "sendgrid"))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "MediBook"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),
	}
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping blank entries.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
