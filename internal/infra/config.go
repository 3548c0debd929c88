package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv              string
	Port                string
	DatabaseURL         string
	RunMigrations       bool
	JWTSecret           string
	GoogleClientID      string
	GoogleIssuer        string
	RazorpayKeyID       string
	RazorpayKeySecret   string
	RazorpayBaseURL     string
	PollinationsBaseURL string
	EnhanceAPIKey       string
	EnhanceModel        string
	EnhanceBaseURL      string
	GenerateTimeout     time.Duration
	HTTPReadTimeout     time.Duration
	HTTPWriteTimeout    time.Duration
	HTTPIdleTimeout     time.Duration
	RateLimitPerMin     int
	AllowedOrigins      []string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:              getEnv("APP_ENV", "development"),
		Port:                getEnv("PORT", "8080"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		RunMigrations:       getEnv("RUN_MIGRATIONS", "true") == "true",
		JWTSecret:           os.Getenv("JWT_SECRET"),
		GoogleClientID:      os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleIssuer:        getEnv("GOOGLE_ISSUER", "https://accounts.google.com"),
		RazorpayKeyID:       os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:   os.Getenv("RAZORPAY_KEY_SECRET"),
		RazorpayBaseURL:     getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com/v1"),
		PollinationsBaseURL: getEnv("POLLINATIONS_BASE_URL", "https://image.pollinations.ai"),
		EnhanceAPIKey:       os.Getenv("ENHANCE_API_KEY"),
		EnhanceModel:        getEnv("ENHANCE_MODEL", "google/gemini-2.5-flash-image-preview"),
		EnhanceBaseURL:      getEnv("ENHANCE_BASE_URL", "https://ai.gateway.lovable.dev/v1"),
		GenerateTimeout:     time.Second * time.Duration(getEnvInt("GENERATE_TIMEOUT_SECONDS", 60)),
		HTTPReadTimeout:     time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:    time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 90)),
		HTTPIdleTimeout:     time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:     getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		AllowedOrigins:      splitOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.RazorpayKeyID == "" || cfg.RazorpayKeySecret == "" {
		return nil, fmt.Errorf("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET are required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitOrigins(v string) []string {
	var origins []string
	for _, part := range strings.Split(v, ",") {
		if origin := strings.TrimSpace(part); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
