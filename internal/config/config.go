// Package config reads and writes ledgerbook.yaml.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/ledgerbook/internal/logger"
	"github.com/cleared-dev/ledgerbook/internal/report"
)

// FileName is the config file at the root of a ledgerbook repo.
const FileName = "ledgerbook.yaml"

// EnvPrefix prefixes environment overrides, e.g. LEDGERBOOK_DATABASE_PATH.
const EnvPrefix = "LEDGERBOOK"

// Config represents the top-level ledgerbook.yaml configuration.
type Config struct {
	Business     BusinessConfig `yaml:"business" mapstructure:"business"`
	Fiscal       FiscalConfig   `yaml:"fiscal" mapstructure:"fiscal"`
	BankAccounts []BankAccount  `yaml:"bank_accounts,omitempty" mapstructure:"bank_accounts" validate:"dive"`
	Database     DatabaseConfig `yaml:"database" mapstructure:"database"`
	Log          LogConfig      `yaml:"log" mapstructure:"log"`
	Reports      ReportsConfig  `yaml:"reports" mapstructure:"reports"`
}

// BusinessConfig identifies the business entity.
type BusinessConfig struct {
	Name       string `yaml:"name" mapstructure:"name"`
	EntityType string `yaml:"entity_type" mapstructure:"entity_type" validate:"required"`
}

// FiscalConfig defines the fiscal year boundaries.
type FiscalConfig struct {
	YearStart string `yaml:"year_start" mapstructure:"year_start"` // "MM-DD", e.g. "01-01"
}

// MonthDay parses YearStart. An empty value means January 1.
func (f FiscalConfig) MonthDay() (time.Month, int, error) {
	if f.YearStart == "" {
		return time.January, 1, nil
	}
	// 2024 is a leap year, so 02-29 parses and is then refused: the start
	// has to exist in every year.
	t, err := time.Parse("2006-01-02", "2024-"+f.YearStart)
	if err != nil {
		return 0, 0, fmt.Errorf("fiscal year_start %q: want MM-DD", f.YearStart)
	}
	if t.Month() == time.February && t.Day() == 29 {
		return 0, 0, fmt.Errorf("fiscal year_start %q: February 29 does not occur every year", f.YearStart)
	}
	return t.Month(), t.Day(), nil
}

// BankAccount maps a bank statement feed to a chart-of-accounts entry.
type BankAccount struct {
	Name      string `yaml:"name" mapstructure:"name" validate:"required"`
	Type      string `yaml:"type" mapstructure:"type"`
	Format    string `yaml:"format,omitempty" mapstructure:"format"` // statement parser, e.g. "chase"
	LastFour  string `yaml:"last_four" mapstructure:"last_four" validate:"omitempty,len=4,numeric"`
	AccountID int    `yaml:"account_id" mapstructure:"account_id" validate:"gt=0"`
}

// DatabaseConfig locates the SQLite ledger.
type DatabaseConfig struct {
	Path     string `yaml:"path" mapstructure:"path" validate:"required"` // relative to the repo root
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=silent error warn info"`
}

// LogConfig controls application logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" mapstructure:"format" validate:"omitempty,oneof=console json"`
	Output string `yaml:"output" mapstructure:"output"`
}

// Logger converts to the logger package's config.
func (l LogConfig) Logger() logger.Config {
	return logger.Config{Level: l.Level, Format: l.Format, Output: l.Output}
}

// ReportsConfig overrides the account-name keywords the cash flow statement
// classifies accounts by. Empty lists keep the built-in keywords.
type ReportsConfig struct {
	CashKeywords         []string `yaml:"cash_keywords,omitempty" mapstructure:"cash_keywords"`
	ReceivableKeywords   []string `yaml:"receivable_keywords,omitempty" mapstructure:"receivable_keywords"`
	InventoryKeywords    []string `yaml:"inventory_keywords,omitempty" mapstructure:"inventory_keywords"`
	PayableKeywords      []string `yaml:"payable_keywords,omitempty" mapstructure:"payable_keywords"`
	DepreciationKeywords []string `yaml:"depreciation_keywords,omitempty" mapstructure:"depreciation_keywords"`
}

// Keywords converts to report.Keywords.
func (r ReportsConfig) Keywords() report.Keywords {
	return report.Keywords{
		Cash:         r.CashKeywords,
		Receivable:   r.ReceivableKeywords,
		Inventory:    r.InventoryKeywords,
		Payable:      r.PayableKeywords,
		Depreciation: r.DepreciationKeywords,
	}
}

// ReportOptions returns the generator options the config implies.
func (c *Config) ReportOptions() ([]report.Option, error) {
	month, day, err := c.Fiscal.MonthDay()
	if err != nil {
		return nil, err
	}
	return []report.Option{
		report.WithFiscalYearStart(month, day),
		report.WithKeywords(c.Reports.Keywords()),
	}, nil
}

// BankAccount returns the bank account mapped to accountID.
func (c *Config) BankAccount(accountID int) (BankAccount, bool) {
	for _, b := range c.BankAccounts {
		if b.AccountID == accountID {
			return b, true
		}
	}
	return BankAccount{}, false
}

// Validate checks field constraints and the fiscal year start.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, _, err := c.Fiscal.MonthDay(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("business.name", "")
	v.SetDefault("business.entity_type", "llc_single_member")
	v.SetDefault("fiscal.year_start", "01-01")
	v.SetDefault("database.path", "ledger.db")
	v.SetDefault("database.log_level", "silent")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")
}

// Load reads a ledgerbook.yaml file. Environment variables prefixed with
// LEDGERBOOK_ override scalar settings.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(businessName, entityType string) *Config {
	lc := logger.DefaultConfig()
	return &Config{
		Business: BusinessConfig{
			Name:       businessName,
			EntityType: entityType,
		},
		Fiscal: FiscalConfig{
			YearStart: "01-01",
		},
		Database: DatabaseConfig{
			Path:     "ledger.db",
			LogLevel: "silent",
		},
		Log: LogConfig{
			Level:  lc.Level,
			Format: lc.Format,
			Output: lc.Output,
		},
	}
}
