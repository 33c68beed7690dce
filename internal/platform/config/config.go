package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/SscSPs/closing_engine/internal/core/services"
	"github.com/SscSPs/closing_engine/internal/utils/accounting"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	Port           string `validate:"required,numeric"`
	IsProduction   bool
	EnableDBCheck  bool
	RunMigrations  bool
	MigrationsPath string `validate:"required"`
	JWTSecret      string `validate:"required,min=16"`
	RateLimit      string `validate:"required"` // ulule/limiter format, e.g. "30-M"
	RedisURL       string
	EventsChannel  string `validate:"required"`

	Closing ClosingSettings
}

// ClosingSettings are the chart-of-accounts conventions and write policy of the closing engine.
type ClosingSettings struct {
	RetainedEarningsCode string        `validate:"required"`
	IncomeSummaryCode    string        `validate:"required,nefield=RetainedEarningsCode"`
	Epsilon              string        `validate:"required,numeric"`
	Mode                 string        `validate:"oneof=transfer full"`
	WriteTimeout         time.Duration `validate:"gt=0"`
	FiscalYearStartMonth int           `validate:"min=1,max=12"`
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("RATE_LIMIT", "30-M")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("EVENTS_CHANNEL", "period.closed")
	v.SetDefault("RETAINED_EARNINGS_CODE", "3200")
	v.SetDefault("INCOME_SUMMARY_CODE", "3300")
	v.SetDefault("CLOSING_EPSILON", "0.01")
	v.SetDefault("CLOSING_MODE", string(accounting.ModeTransfer))
	v.SetDefault("CLOSING_WRITE_TIMEOUT", "30s")
	v.SetDefault("FISCAL_YEAR_START_MONTH", 1)
	v.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:    v.GetString("PGSQL_URL"),
		Port:           v.GetString("PORT"),
		IsProduction:   v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:  v.GetBool("ENABLE_DB_CHECK"),
		RunMigrations:  v.GetBool("RUN_MIGRATIONS"),
		MigrationsPath: v.GetString("MIGRATIONS_PATH"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		RateLimit:      v.GetString("RATE_LIMIT"),
		RedisURL:       v.GetString("REDIS_URL"),
		EventsChannel:  v.GetString("EVENTS_CHANNEL"),
		Closing: ClosingSettings{
			RetainedEarningsCode: strings.TrimSpace(v.GetString("RETAINED_EARNINGS_CODE")),
			IncomeSummaryCode:    strings.TrimSpace(v.GetString("INCOME_SUMMARY_CODE")),
			Epsilon:              v.GetString("CLOSING_EPSILON"),
			Mode:                 strings.ToLower(v.GetString("CLOSING_MODE")),
			WriteTimeout:         v.GetDuration("CLOSING_WRITE_TIMEOUT"),
			FiscalYearStartMonth: v.GetInt("FISCAL_YEAR_START_MONTH"),
		},
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	if cfg.JWTSecret == defaultJWTSecret {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set. Closing events will not be published.")
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if eps := decimal.RequireFromString(cfg.Closing.Epsilon); !eps.IsPositive() {
		return nil, fmt.Errorf("invalid configuration: CLOSING_EPSILON must be positive, got %s", cfg.Closing.Epsilon)
	}
	return cfg, nil
}

// ClosingConfig converts the closing settings into the engine's policy.
func (c *Config) ClosingConfig() services.ClosingConfig {
	return services.ClosingConfig{
		RetainedEarningsCode: c.Closing.RetainedEarningsCode,
		IncomeSummaryCode:    c.Closing.IncomeSummaryCode,
		Epsilon:              decimal.RequireFromString(c.Closing.Epsilon),
		Mode:                 accounting.ClosingMode(c.Closing.Mode),
		WriteTimeout:         c.Closing.WriteTimeout,
		FiscalYearStartMonth: time.Month(c.Closing.FiscalYearStartMonth),
	}
}
