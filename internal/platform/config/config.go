package config

import (
	"log"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL        string
	Port               string
	IsProduction       bool
	EnableDBCheck      bool
	LogLevel           slog.Level
	JWTSecret          string
	JWTIssuer          string
	RateLimit          string
	CORSAllowedOrigins []string
	MigrationsPath     string
	DefaultPageSize    int
	MaxPageSize        int
}

// LoadConfig loads configuration from environment variables and .env file if present.
// Environment variables override values from .env, which override the defaults.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	v.SetDefault("JWT_ISSUER", "split-ledger")
	v.SetDefault("RATE_LIMIT", "100-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("DEFAULT_PAGE_SIZE", 20)
	v.SetDefault("MAX_PAGE_SIZE", 100)
	v.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:     v.GetString("PGSQL_URL"),
		Port:            v.GetString("PORT"),
		IsProduction:    v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:   v.GetBool("ENABLE_DB_CHECK"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		JWTIssuer:       v.GetString("JWT_ISSUER"),
		RateLimit:       v.GetString("RATE_LIMIT"),
		MigrationsPath:  v.GetString("MIGRATIONS_PATH"),
		DefaultPageSize: v.GetInt("DEFAULT_PAGE_SIZE"),
		MaxPageSize:     v.GetInt("MAX_PAGE_SIZE"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("LOG_LEVEL"))); err != nil {
		log.Printf("Warning: Invalid value for LOG_LEVEL ('%s'). Defaulting to info.\n", v.GetString("LOG_LEVEL"))
		cfg.LogLevel = slog.LevelInfo
	}

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		log.Printf("Warning: MAX_PAGE_SIZE (%d) is below DEFAULT_PAGE_SIZE. Using %d.\n", cfg.MaxPageSize, cfg.DefaultPageSize)
		cfg.MaxPageSize = cfg.DefaultPageSize
	}

	return cfg, nil
}
