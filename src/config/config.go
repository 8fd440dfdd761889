package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	DataBackend    string
	DatabaseURL    string
	JWTSecret      string
	TokenTTL       time.Duration
	AllowedOrigins []string

	LogLevel  string
	LogFormat string

	AIProvider      string
	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIBaseURL   string
	OllamaURL       string
	OllamaModel     string
	InsightWindow   int
	InsightCacheTTL time.Duration

	CurrencySymbol string
	Locale         string
}

func Load() Config {
	// Load .env file if present
	_ = godotenv.Load()

	return Config{
		Port:           getEnv("PORT", "8000"),
		DataBackend:    getEnv("DATA_BACKEND", "memory"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		TokenTTL:       getEnvDuration("TOKEN_TTL", 168*time.Hour),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		AIProvider:      getEnv("AI_PROVIDER", "none"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
		OllamaURL:       getEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:     getEnv("OLLAMA_MODEL", "llama3"),
		InsightWindow:   getEnvInt("INSIGHT_WINDOW", 30),
		InsightCacheTTL: getEnvDuration("INSIGHT_CACHE_TTL", 10*time.Minute),

		CurrencySymbol: getEnv("CURRENCY_SYMBOL", "₹"),
		Locale:         getEnv("LOCALE", "en-IN"),
	}
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var errs []error

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Errorf("invalid port %q: must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid data backend %q: must be memory or postgres", c.DataBackend))
	}

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}

	switch c.AIProvider {
	case "none", "ollama":
	case "openai":
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required when AI_PROVIDER is openai"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid AI provider %q: must be none, openai or ollama", c.AIProvider))
	}
	if c.InsightWindow < 1 {
		errs = append(errs, errors.New("INSIGHT_WINDOW must be at least 1"))
	}

	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if n, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return n
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return d
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
