package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go-pos-ledger/pkg/logger"
)

type MissingAccountPolicy string

const (
	// MissingAccountStrict fails the whole event when an account code is not in the chart.
	MissingAccountStrict MissingAccountPolicy = "strict"
	// MissingAccountSkip drops the line and lets the balance check decide.
	MissingAccountSkip MissingAccountPolicy = "skip"
)

type Config struct {
	Port string

	// Database
	DBDriver   string // sqlite, postgres
	DBPath     string
	DBURL      string
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBDebug    bool

	JWTSecret  string
	AppVersion string

	// License
	LicensePath          string
	LicensePublicKeyPath string
	LicenseCheckInterval time.Duration

	// Ledger behaviour
	MissingAccountPolicy MissingAccountPolicy
	CreditLimitPolicy    string // advisory, enforce
	Accounts             AccountMap

	// Logging
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// AccountMap binds each posting role to a chart-of-accounts code.
type AccountMap struct {
	Cash           string
	Bank           string
	Receivables    string
	Stock          string
	Payables       string
	VATPayable     string
	VATInput       string
	Sales          string
	DefaultExpense string
}

// DefaultAccounts matches the seeded chart of accounts.
func DefaultAccounts() AccountMap {
	return AccountMap{
		Cash:           "1000",
		Bank:           "1100",
		Receivables:    "1200",
		Stock:          "1300",
		Payables:       "2000",
		VATPayable:     "2100",
		VATInput:       "1400",
		Sales:          "4000",
		DefaultExpense: "6000",
	}
}

func Load() (*Config, error) {
	interval, err := time.ParseDuration(getEnv("LICENSE_CHECK_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid LICENSE_CHECK_INTERVAL: %w", err)
	}

	accounts := DefaultAccounts()
	accounts.Cash = getEnv("ACCOUNT_CASH", accounts.Cash)
	accounts.Bank = getEnv("ACCOUNT_BANK", accounts.Bank)
	accounts.Receivables = getEnv("ACCOUNT_RECEIVABLES", accounts.Receivables)
	accounts.Stock = getEnv("ACCOUNT_STOCK", accounts.Stock)
	accounts.Payables = getEnv("ACCOUNT_PAYABLES", accounts.Payables)
	accounts.VATPayable = getEnv("ACCOUNT_VAT_PAYABLE", accounts.VATPayable)
	accounts.VATInput = getEnv("ACCOUNT_VAT_INPUT", accounts.VATInput)
	accounts.Sales = getEnv("ACCOUNT_SALES", accounts.Sales)
	accounts.DefaultExpense = getEnv("ACCOUNT_DEFAULT_EXPENSE", accounts.DefaultExpense)

	config := &Config{
		Port:                 getEnv("PORT", "3000"),
		DBDriver:             strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBPath:               getEnv("DB_PATH", "pos-ledger.db"),
		DBURL:                getEnv("DATABASE_URL", ""),
		DBHost:               getEnv("DB_HOST", "localhost"),
		DBUser:               getEnv("DB_USER", ""),
		DBPassword:           getEnv("DB_PASSWORD", ""),
		DBName:               getEnv("DB_NAME", ""),
		DBPort:               getEnv("DB_PORT", "5432"),
		DBDebug:              getEnv("DB_DEBUG", "") == "1",
		JWTSecret:            getEnv("JWT_SECRET", ""),
		AppVersion:           getEnv("APP_VERSION", "1.0.0"),
		LicensePath:          getEnv("LICENSE_PATH", "license.json"),
		LicensePublicKeyPath: getEnv("LICENSE_PUBLIC_KEY_PATH", "public-key.pem"),
		LicenseCheckInterval: interval,
		MissingAccountPolicy: MissingAccountPolicy(strings.ToLower(getEnv("LEDGER_MISSING_ACCOUNT_POLICY", string(MissingAccountStrict)))),
		CreditLimitPolicy:    strings.ToLower(getEnv("CREDIT_LIMIT_POLICY", "advisory")),
		Accounts:             accounts,
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:        getEnv("LOG_TIME_FORMAT", time.RFC3339),
		LogOutput:            getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "sqlite":
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH is required for sqlite")
		}
	case "postgres":
		if c.DBURL == "" && c.DBName == "" {
			return fmt.Errorf("DATABASE_URL or DB_NAME is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch c.MissingAccountPolicy {
	case MissingAccountStrict, MissingAccountSkip:
	default:
		return fmt.Errorf("unsupported LEDGER_MISSING_ACCOUNT_POLICY %q", c.MissingAccountPolicy)
	}

	switch c.CreditLimitPolicy {
	case "advisory", "enforce":
	default:
		return fmt.Errorf("unsupported CREDIT_LIMIT_POLICY %q", c.CreditLimitPolicy)
	}

	if c.LicenseCheckInterval <= 0 {
		return fmt.Errorf("LICENSE_CHECK_INTERVAL must be positive")
	}
	return nil
}

// PostgresDSN builds the key=value DSN when DATABASE_URL is not set.
func (c *Config) PostgresDSN() string {
	if c.DBURL != "" {
		return c.DBURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
