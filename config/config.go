package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string

	// Storage configuration
	SQLitePath string
	UploadDir  string
	MaxUpload  int64

	// Redis configuration
	RedisURL string

	// Auth configuration
	JWTSecret string
	TokenTTL  time.Duration
	OTPExpiry time.Duration

	// Test account override for OTP delivery. Disabled when empty and
	// always refused in production.
	OTPTestPhone  string
	OTPTestCode   string
	OTPTestExpiry time.Duration

	// Rate limiting
	OTPRequestsPerMinute int

	// Payment gateway configuration
	GatewayProvider string
	GatewayBaseURL  string
	GatewayKeyID    string
	GatewaySecret   string
	GatewayTimeout  time.Duration
	Currency        string

	// Extraction configuration
	TesseractPath  string
	GeminiAPIKey   string
	GeminiModel    string
	ExtractTimeout time.Duration

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string

	// Monitoring
	EnableMetrics bool
	MetricsPort   string
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "5000"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Storage
		SQLitePath: getEnv("SQLITE_PATH", "data/tickets.db"),
		UploadDir:  getEnv("UPLOAD_DIR", "uploads"),
		MaxUpload:  int64(getEnvAsInt("MAX_UPLOAD_BYTES", 5*1024*1024)),

		// Redis
		RedisURL: getEnv("REDIS_URL", "localhost:6379"),

		// Auth
		JWTSecret: getEnv("JWT_SECRET", ""),
		TokenTTL:  getEnvAsDuration("TOKEN_TTL", "24h"),
		OTPExpiry: getEnvAsDuration("OTP_EXPIRY", "5m"),

		OTPTestPhone:  getEnv("OTP_TEST_PHONE", ""),
		OTPTestCode:   getEnv("OTP_TEST_CODE", ""),
		OTPTestExpiry: getEnvAsDuration("OTP_TEST_EXPIRY", "10m"),

		OTPRequestsPerMinute: getEnvAsInt("OTP_REQUESTS_PER_MINUTE", 5),

		// Payment gateway
		GatewayProvider: getEnv("GATEWAY_PROVIDER", "razorpay"),
		GatewayBaseURL:  getEnv("GATEWAY_BASE_URL", "https://api.razorpay.com"),
		GatewayKeyID:    getEnv("GATEWAY_KEY_ID", ""),
		GatewaySecret:   getEnv("GATEWAY_KEY_SECRET", ""),
		GatewayTimeout:  getEnvAsDuration("GATEWAY_TIMEOUT", "10s"),
		Currency:        getEnv("CURRENCY", "INR"),

		// Extraction
		TesseractPath:  getEnv("TESSERACT_PATH", "tesseract"),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		ExtractTimeout: getEnvAsDuration("EXTRACT_TIMEOUT", "30s"),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
