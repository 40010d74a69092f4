package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	DataDir          string
	JWTSecret        string
	JWTIssuer        string
	SessionTTL       time.Duration
	LoginDelayMin    time.Duration
	LoginDelayMax    time.Duration
	HoneypotDelay    time.Duration
	LockoutThreshold int
	LockoutWindow    time.Duration
	CorsOrigins      []string
	SMTPHost         string
	SMTPPort         string
	SMTPUsername     string
	SMTPPassword     string
	SMTPFromName     string
	SuggestAPIURL    string
	SuggestAPIKey    string
}

func Load() Config {
	return Config{
		DataDir:          envOr("DATA_DIR", "storage/data"),
		JWTSecret:        mustEnv("JWT_SECRET"),
		JWTIssuer:        envOr("JWT_ISSUER", "esgishoma"),
		SessionTTL:       time.Duration(envOrInt("SESSION_TTL_SECONDS", 3600)) * time.Second,
		LoginDelayMin:    time.Duration(envOrInt("LOGIN_DELAY_MIN_MS", 1000)) * time.Millisecond,
		LoginDelayMax:    time.Duration(envOrInt("LOGIN_DELAY_MAX_MS", 2000)) * time.Millisecond,
		HoneypotDelay:    time.Duration(envOrInt("HONEYPOT_DELAY_MS", 4000)) * time.Millisecond,
		LockoutThreshold: envOrInt("LOCKOUT_THRESHOLD", 5),
		LockoutWindow:    time.Duration(envOrInt("LOCKOUT_MINUTES", 15)) * time.Minute,
		CorsOrigins:      parseCSV(envOr("CORS_ORIGINS", "")),
		SMTPHost:         envOr("SMTP_HOST", ""),
		SMTPPort:         envOr("SMTP_PORT", ""),
		SMTPUsername:     envOr("SMTP_USERNAME", ""),
		SMTPPassword:     envOr("SMTP_PASSWORD", ""),
		SMTPFromName:     envOr("SMTP_FROM_NAME", "ES GISHOMA"),
		SuggestAPIURL:    envOr("SUGGEST_API_URL", ""),
		SuggestAPIKey:    envOr("SUGGEST_API_KEY", ""),
	}
}

func mustEnv(key string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		panic("missing env var: " + key)
	}
	return value
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if value != "" {
			items = append(items, value)
		}
	}
	return items
}
