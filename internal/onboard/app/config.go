package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/onboard/internal/onboard/delivery"
	"github.com/aussiebroadwan/onboard/internal/onboard/service"
	"github.com/aussiebroadwan/onboard/pkg/cryptox"
	"github.com/aussiebroadwan/onboard/pkg/jwtx"
	"github.com/aussiebroadwan/onboard/pkg/otpx"
	"github.com/joho/godotenv"
)

// Database drivers selectable with ONBOARD_DATABASE_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Issuer string // Optional: issuer claim for reset tickets (default: onboard)

	DatabaseDriver string // Optional: sqlite or postgres (default: sqlite)
	DatabaseFile   string // Optional: path to SQLite database file (default: ./onboard.db)
	DatabaseURL    string // Required for postgres: connection string

	PepperFile            string                    // Optional: path to file containing pepper for password hashing (default: ./pepper)
	PasswordHashAlgorithm cryptox.PasswordAlgorithm // Optional: argon2id or bcrypt (default: argon2id)
	TicketKeyFile         string                    // Optional: PKCS8 Ed25519 key for reset tickets, created if missing (default: ephemeral)

	OTPDigits      int           // Optional: digits per code (default: 4)
	OTPTTL         time.Duration // Optional: how long a code stays valid (default: 5m)
	OTPMaxAttempts int           // Optional: guesses allowed per code (default: 5)
	ResetTicketTTL time.Duration // Optional: how long a reset ticket stays valid (default: 10m)

	Delivery delivery.Config

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	OTPRetention         time.Duration // How long expired codes linger before housekeeping clears them (default: 24h)
}

// LoadConfig reads the configuration from the environment. A .env file in
// the working directory, when present, is loaded first without overriding
// variables that are already set.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		Issuer: getEnvOrDefault("ONBOARD_ISSUER", "onboard"),

		DatabaseDriver: strings.ToLower(getEnvOrDefault("ONBOARD_DATABASE_DRIVER", DriverSQLite)),
		DatabaseFile:   getEnvOrDefault("ONBOARD_DATABASE_FILE", "onboard.db"),
		DatabaseURL:    os.Getenv("ONBOARD_DATABASE_URL"),

		PepperFile:            getEnvOrDefault("ONBOARD_PEPPER_FILE", "pepper"),
		PasswordHashAlgorithm: cryptox.ParsePasswordAlgorithm(os.Getenv("PASSWORD_HASH_ALGORITHM")),
		TicketKeyFile:         os.Getenv("ONBOARD_TICKET_KEY_FILE"),

		OTPDigits:      getEnvIntOrDefault("ONBOARD_OTP_DIGITS", otpx.DefaultDigits),
		OTPTTL:         getEnvDurationOrDefault("ONBOARD_OTP_TTL", otpx.DefaultTTL),
		OTPMaxAttempts: getEnvIntOrDefault("ONBOARD_OTP_MAX_ATTEMPTS", service.DefaultOTPMaxAttempts),
		ResetTicketTTL: getEnvDurationOrDefault("ONBOARD_RESET_TICKET_TTL", jwtx.DefaultTicketTTL),

		Delivery: delivery.Config{
			Driver: getEnvOrDefault("DELIVERY_DRIVER", delivery.DriverLog),
			SMTP: delivery.SMTPConfig{
				Host:     os.Getenv("SMTP_HOST"),
				Port:     getEnvIntOrDefault("SMTP_PORT", 587),
				Username: os.Getenv("SMTP_USERNAME"),
				Password: os.Getenv("SMTP_PASSWORD"),
				From:     os.Getenv("SMTP_FROM"),
				Subject:  os.Getenv("SMTP_SUBJECT"),
			},
			AMQP: delivery.AMQPConfig{
				URL:        os.Getenv("AMQP_URL"),
				Exchange:   os.Getenv("AMQP_EXCHANGE"),
				RoutingKey: os.Getenv("AMQP_ROUTING_KEY"),
			},
		},

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		OTPRetention:         getEnvDurationOrDefault("OTP_RETENTION", 24*time.Hour),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: ONBOARD_DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("config: unknown ONBOARD_DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	if c.OTPDigits < otpx.MinDigits || c.OTPDigits > otpx.MaxDigits {
		return fmt.Errorf("config: ONBOARD_OTP_DIGITS must be between %d and %d", otpx.MinDigits, otpx.MaxDigits)
	}
	if c.OTPTTL <= 0 {
		return errors.New("config: ONBOARD_OTP_TTL must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
