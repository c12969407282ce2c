package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Fixed agent identities used by the platform.
const (
	DefaultMedicineScannerAgentID = "6985a5fb5eb49186d63e5df4"
	DefaultHealthAssistantAgentID = "6985a61fe2c0086a4fc43bf1"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	AgentBaseURL           string
	AgentAPIKey            string
	AgentTimeout           time.Duration
	MedicineScannerAgentID string
	HealthAssistantAgentID string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	SessionTTL    time.Duration

	ScanNavigateDelay  time.Duration
	TipInterval        time.Duration
	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AgentBaseURL:           getEnv("AGENT_BASE_URL", ""),
		AgentAPIKey:            getEnv("AGENT_API_KEY", ""),
		AgentTimeout:           getEnvAsDuration("AGENT_TIMEOUT", 30*time.Second),
		MedicineScannerAgentID: getEnv("MEDICINE_SCANNER_AGENT_ID", DefaultMedicineScannerAgentID),
		HealthAssistantAgentID: getEnv("HEALTH_ASSISTANT_AGENT_ID", DefaultHealthAssistantAgentID),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		SessionTTL:    getEnvAsDuration("SESSION_TTL", 0),

		ScanNavigateDelay:  getEnvAsDuration("SCAN_NAVIGATE_DELAY", time.Second),
		TipInterval:        getEnvAsDuration("TIP_INTERVAL", 5*time.Second),
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil),
	}
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvAsDuration retrieves an environment variable as a duration
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvAsSlice retrieves a comma-separated environment variable
func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
