package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("LEDGER_MISSING_ACCOUNT_POLICY", "")
	t.Setenv("CREDIT_LIMIT_POLICY", "")
	t.Setenv("LICENSE_CHECK_INTERVAL", "")
	t.Setenv("ACCOUNT_CASH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBDriver != "sqlite" || cfg.MissingAccountPolicy != MissingAccountStrict || cfg.CreditLimitPolicy != "advisory" {
		t.Fatalf("defaults %+v", cfg)
	}
	if cfg.LicenseCheckInterval != time.Hour {
		t.Fatalf("interval %s", cfg.LicenseCheckInterval)
	}
	if cfg.Accounts != DefaultAccounts() {
		t.Fatalf("accounts %+v", cfg.Accounts)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LEDGER_MISSING_ACCOUNT_POLICY", "SKIP")
	t.Setenv("ACCOUNT_CASH", "5300")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://pos@localhost/pos")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MissingAccountPolicy != MissingAccountSkip || cfg.Accounts.Cash != "5300" {
		t.Fatalf("overrides not applied %+v", cfg)
	}
	if cfg.PostgresDSN() != "postgres://pos@localhost/pos" {
		t.Fatalf("dsn %s", cfg.PostgresDSN())
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	for key, value := range map[string]string{
		"DB_DRIVER":                     "mysql",
		"LEDGER_MISSING_ACCOUNT_POLICY": "ignore",
		"CREDIT_LIMIT_POLICY":           "strict",
		"LICENSE_CHECK_INTERVAL":        "soon",
	} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("%s=%s accepted", key, value)
			}
		})
	}
}
