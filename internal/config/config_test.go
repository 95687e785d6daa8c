package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default("Test Biz", "llc_single_member")
	cfg.Fiscal.YearStart = "07-01"
	cfg.BankAccounts = []BankAccount{
		{Name: "Chase Checking", Type: "checking", Format: "chase", LastFour: "1234", AccountID: 1010},
	}
	cfg.Reports.CashKeywords = []string{"Cash", "Till"}

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default("My Company", "llc_single_member")

	assert.Equal(t, "My Company", cfg.Business.Name)
	assert.Equal(t, "01-01", cfg.Fiscal.YearStart)
	assert.Equal(t, "ledger.db", cfg.Database.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Empty(t, cfg.BankAccounts)
	assert.NoError(t, cfg.Validate())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("business:\n  name: Sparse\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Sparse", cfg.Business.Name)
	assert.Equal(t, "llc_single_member", cfg.Business.EntityType)
	assert.Equal(t, "01-01", cfg.Fiscal.YearStart)
	assert.Equal(t, "ledger.db", cfg.Database.Path)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default("Env Biz", "llc_single_member")))
	t.Setenv("LEDGERBOOK_DATABASE_PATH", "elsewhere.db")
	t.Setenv("LEDGERBOOK_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "elsewhere.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
	}{
		{"bad fiscal start", func(c *Config) { c.Fiscal.YearStart = "13-01" }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
		{"bank account without id", func(c *Config) { c.BankAccounts = []BankAccount{{Name: "Checking"}} }},
		{"bad last four", func(c *Config) {
			c.BankAccounts = []BankAccount{{Name: "Checking", AccountID: 1010, LastFour: "12a"}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("Biz", "llc_single_member")
			tt.edit(cfg)
			path := filepath.Join(t.TempDir(), FileName)
			require.NoError(t, Save(path, cfg))

			_, err := Load(path)
			assert.ErrorContains(t, err, "invalid config")
		})
	}
}

func TestFiscalMonthDay(t *testing.T) {
	tests := []struct {
		in    string
		month time.Month
		day   int
		err   bool
	}{
		{"", time.January, 1, false},
		{"01-01", time.January, 1, false},
		{"07-01", time.July, 1, false},
		{"02-28", time.February, 28, false},
		{"02-29", 0, 0, true},
		{"7-1", 0, 0, true},
		{"04-31", 0, 0, true},
	}
	for _, tt := range tests {
		m, d, err := FiscalConfig{YearStart: tt.in}.MonthDay()
		if tt.err {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.month, m, tt.in)
		assert.Equal(t, tt.day, d, tt.in)
	}
}

func TestValidateRejectsLeapDayYearStart(t *testing.T) {
	cfg := Default("Biz", "llc_single_member")
	cfg.Fiscal.YearStart = "02-29"
	err := cfg.Validate()
	assert.ErrorContains(t, err, "invalid config")
	assert.ErrorContains(t, err, "February 29")
}

func TestReportOptionsAndBankAccount(t *testing.T) {
	cfg := Default("Biz", "llc_single_member")
	cfg.BankAccounts = []BankAccount{{Name: "Checking", AccountID: 1010, Format: "chase"}}

	opts, err := cfg.ReportOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 2)

	b, ok := cfg.BankAccount(1010)
	assert.True(t, ok)
	assert.Equal(t, "chase", b.Format)
	_, ok = cfg.BankAccount(1020)
	assert.False(t, ok)

	cfg.Fiscal.YearStart = "nope"
	_, err = cfg.ReportOptions()
	assert.Error(t, err)
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default("Test Biz", "llc_single_member")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "name: Test Biz")
	assert.Contains(t, contents, "entity_type: llc_single_member")
	assert.Contains(t, contents, "year_start: 01-01")
	assert.Contains(t, contents, "log_level: silent")
	assert.NotContains(t, contents, "bank_accounts")
}
