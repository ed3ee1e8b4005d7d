package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// FunctionalCurrency is the ledger's home currency. Every journal entry is
	// expressed in it; any transaction in another currency needs an FX rate.
	FunctionalCurrency string

	// AccountCatalogPath optionally points to a YAML file overriding the
	// built-in category -> account code catalog.
	AccountCatalogPath string

	// EntryNumberPrefix is the journal entry number prefix (JE-<year>-<seq>).
	EntryNumberPrefix string

	// RateLimit is a ulule/limiter formatted rate, e.g. "120-M".
	RateLimit string

	// SentryDSN enables error reporting when set.
	SentryDSN string

	// RabbitMQURI enables the AMQP ledger-event publisher when set.
	RabbitMQURI      string
	RabbitMQExchange string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("FUNCTIONAL_CURRENCY", "BDT")
	viper.SetDefault("ACCOUNT_CATALOG_PATH", "")
	viper.SetDefault("ENTRY_NUMBER_PREFIX", "JE")
	viper.SetDefault("RATE_LIMIT", "120-M")
	viper.SetDefault("SENTRY_DSN", "")
	viper.SetDefault("RABBITMQ_URI", "")
	viper.SetDefault("RABBITMQ_EXCHANGE", "ledger.events")

	// Environment variables override defaults and .env values.
	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080" // Default port
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.FunctionalCurrency = strings.ToUpper(strings.TrimSpace(viper.GetString("FUNCTIONAL_CURRENCY")))
	if len(cfg.FunctionalCurrency) != 3 {
		log.Printf("Warning: FUNCTIONAL_CURRENCY ('%s') is not a 3-letter code. Defaulting to BDT.\n", cfg.FunctionalCurrency)
		cfg.FunctionalCurrency = "BDT"
	}

	cfg.AccountCatalogPath = viper.GetString("ACCOUNT_CATALOG_PATH")

	cfg.EntryNumberPrefix = viper.GetString("ENTRY_NUMBER_PREFIX")
	if cfg.EntryNumberPrefix == "" {
		cfg.EntryNumberPrefix = "JE"
	}

	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	cfg.SentryDSN = viper.GetString("SENTRY_DSN")

	cfg.RabbitMQURI = viper.GetString("RABBITMQ_URI")
	cfg.RabbitMQExchange = viper.GetString("RABBITMQ_EXCHANGE")

	return cfg, nil
}
