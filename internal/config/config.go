// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"papertrade/pkg/db" // Import db package for its Config struct
)

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort   string
	DB           db.Config
	AutoMigrate  bool
	LogLevel     string
	StartingCash decimal.Decimal
	BcryptCost   int
	Session      SessionConfig
	Quote        QuoteConfig
	Kafka        KafkaConfig
}

// SessionConfig configures session token signing.
type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

// QuoteConfig selects and tunes the quote source. When StaticPrices is set the
// fixed table is used and BaseURL is ignored.
type QuoteConfig struct {
	BaseURL      string
	Timeout      time.Duration
	CacheTTL     time.Duration
	StaticPrices string
}

// KafkaConfig enables event publishing when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

var defaults = map[string]interface{}{
	"SERVER_PORT":         "8080",
	"DB_HOST":             "localhost",
	"DB_PORT":             "5432",
	"DB_USER":             "user",
	"DB_PASSWORD":         "password",
	"DB_NAME":             "papertrade",
	"DB_SSLMODE":          "disable",
	"DB_MAX_OPEN_CONNS":   "25",
	"DB_AUTO_MIGRATE":     "false",
	"LOG_LEVEL":           "info",
	"STARTING_CASH":       "10000.00",
	"BCRYPT_COST":         "10",
	"SESSION_TTL":         "24h",
	"QUOTE_BASE_URL":      "", // quote.DefaultYahooBaseURL
	"QUOTE_TIMEOUT":       "5s",
	"QUOTE_CACHE_TTL":     "15s",
	"QUOTE_STATIC_PRICES": "",
	"KAFKA_BROKERS":       "",
	"KAFKA_TOPIC":         "ledger-events",
	"SESSION_SECRET":      "",
}

// LoadConfig loads configuration from an optional .env file, an optional
// CONFIG_FILE and environment variables, in increasing order of precedence.
// It returns an AppConfig instance or an error if any required variable is missing or invalid.
func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	dbPort, err := cast.ToIntE(v.GetString("DB_PORT"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxOpen, err := cast.ToIntE(v.GetString("DB_MAX_OPEN_CONNS"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_OPEN_CONNS: %w", err)
	}
	autoMigrate, err := cast.ToBoolE(v.GetString("DB_AUTO_MIGRATE"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_AUTO_MIGRATE: %w", err)
	}

	startingCash, err := decimal.NewFromString(v.GetString("STARTING_CASH"))
	if err != nil || startingCash.IsNegative() {
		return nil, fmt.Errorf("invalid STARTING_CASH %q: must be a non-negative amount", v.GetString("STARTING_CASH"))
	}
	bcryptCost, err := cast.ToIntE(v.GetString("BCRYPT_COST"))
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	sessionTTL, err := parseDuration(v, "SESSION_TTL")
	if err != nil {
		return nil, err
	}
	quoteTimeout, err := parseDuration(v, "QUOTE_TIMEOUT")
	if err != nil {
		return nil, err
	}
	quoteCacheTTL, err := parseDuration(v, "QUOTE_CACHE_TTL")
	if err != nil {
		return nil, err
	}

	return &AppConfig{
		ServerPort: v.GetString("SERVER_PORT"),
		DB: db.Config{
			Host:         v.GetString("DB_HOST"),
			Port:         dbPort,
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			DBName:       v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			MaxOpenConns: maxOpen,
		},
		AutoMigrate:  autoMigrate,
		LogLevel:     v.GetString("LOG_LEVEL"),
		StartingCash: startingCash,
		BcryptCost:   bcryptCost,
		Session: SessionConfig{
			Secret: v.GetString("SESSION_SECRET"), // length is checked by session.NewManager
			TTL:    sessionTTL,
		},
		Quote: QuoteConfig{
			BaseURL:      v.GetString("QUOTE_BASE_URL"),
			Timeout:      quoteTimeout,
			CacheTTL:     quoteCacheTTL,
			StaticPrices: v.GetString("QUOTE_STATIC_PRICES"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
	}, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := cast.ToDurationE(v.GetString(key))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v.GetString(key))
	}
	return d, nil
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
