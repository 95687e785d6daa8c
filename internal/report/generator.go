// Package report derives the trial balance, balance sheet, income statement
// and cash flow statement from a ledger snapshot.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/ledgerbook/internal/ledger"
	"github.com/cleared-dev/ledgerbook/internal/model"
)

// Keywords are the case-insensitive account-name fragments the cash flow
// statement classifies on.
type Keywords struct {
	Cash         []string
	Receivable   []string
	Inventory    []string
	Payable      []string
	Depreciation []string
}

// DefaultKeywords returns the stock classification keywords.
func DefaultKeywords() Keywords {
	return Keywords{
		Cash:         []string{"Cash", "Bank"},
		Receivable:   []string{"Accounts Receivable"},
		Inventory:    []string{"Inventory"},
		Payable:      []string{"Accounts Payable"},
		Depreciation: []string{"Depreciation", "Amortization"},
	}
}

// Generator produces financial statements.
type Generator struct {
	src      ledger.Source
	fyMonth  time.Month
	fyDay    int
	keywords Keywords
	log      *zap.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithFiscalYearStart sets the first day of the fiscal year. The default is
// January 1.
func WithFiscalYearStart(month time.Month, day int) Option {
	return func(g *Generator) {
		g.fyMonth = month
		g.fyDay = day
	}
}

// WithKeywords replaces the cash flow classification keywords. Empty lists
// keep their defaults.
func WithKeywords(k Keywords) Option {
	return func(g *Generator) {
		if len(k.Cash) > 0 {
			g.keywords.Cash = k.Cash
		}
		if len(k.Receivable) > 0 {
			g.keywords.Receivable = k.Receivable
		}
		if len(k.Inventory) > 0 {
			g.keywords.Inventory = k.Inventory
		}
		if len(k.Payable) > 0 {
			g.keywords.Payable = k.Payable
		}
		if len(k.Depreciation) > 0 {
			g.keywords.Depreciation = k.Depreciation
		}
	}
}

// WithLogger sets the generator logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) { g.log = l }
}

// NewGenerator creates a Generator reading from src.
func NewGenerator(src ledger.Source, opts ...Option) *Generator {
	g := &Generator{
		src:      src,
		fyMonth:  time.January,
		fyDay:    1,
		keywords: DefaultKeywords(),
		log:      zap.NewNop(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// FiscalYearStart returns the start of the fiscal year containing asOf. A
// start day past the end of its month (February 29 in a common year) falls
// on the month's last day.
func (g *Generator) FiscalYearStart(asOf time.Time) time.Time {
	asOf = model.DateOnly(asOf)
	start := g.fiscalStartIn(asOf.Year())
	if start.After(asOf) {
		start = g.fiscalStartIn(asOf.Year() - 1)
	}
	return start
}

func (g *Generator) fiscalStartIn(year int) time.Time {
	last := time.Date(year, g.fyMonth+1, 0, 0, 0, 0, 0, time.UTC).Day()
	return time.Date(year, g.fyMonth, min(g.fyDay, last), 0, 0, 0, 0, time.UTC)
}

// GenerateTrialBalance builds the trial balance as of asOf.
func (g *Generator) GenerateTrialBalance(ctx context.Context, asOf time.Time) (*model.TrialBalanceData, error) {
	snap, err := g.snapshot(ctx, asOf)
	if err != nil {
		return nil, err
	}
	return g.trialBalance(snap, asOf), nil
}

// GenerateBalanceSheet builds the balance sheet as of asOf.
func (g *Generator) GenerateBalanceSheet(ctx context.Context, asOf time.Time) (*model.BalanceSheetData, error) {
	snap, err := g.snapshot(ctx, asOf)
	if err != nil {
		return nil, err
	}
	return g.balanceSheet(snap, asOf), nil
}

// GenerateIncomeStatement builds the income statement for start..end.
func (g *Generator) GenerateIncomeStatement(ctx context.Context, start, end time.Time) (*model.IncomeStatementData, error) {
	snap, err := g.snapshot(ctx, end)
	if err != nil {
		return nil, err
	}
	return g.incomeStatement(snap, start, end), nil
}

// GenerateCashFlow builds the cash flow statement for the params' range.
func (g *Generator) GenerateCashFlow(ctx context.Context, params CashFlowParams) (*model.CashFlowData, error) {
	snap, err := g.snapshot(ctx, params.End)
	if err != nil {
		return nil, err
	}
	return g.cashFlow(snap, params), nil
}

func (g *Generator) snapshot(ctx context.Context, through time.Time) (*ledger.Snapshot, error) {
	snap, err := g.src.Snapshot(ctx, through)
	if err != nil {
		return nil, fmt.Errorf("loading ledger snapshot: %w", err)
	}
	if snap.IsEmpty() {
		g.log.Debug("ledger has no accounts", zap.Time("through", through))
	}
	return snap, nil
}

// movement is the raw activity in start..end plus any opening balance dated
// inside the range.
func movement(snap *ledger.Snapshot, a model.Account, start, end time.Time) decimal.Decimal {
	m := snap.Activity(a.ID, start, end)
	if !a.OpeningBalanceDate.IsZero() && model.InRange(a.OpeningBalanceDate, start, end) {
		m = m.Add(a.RawOpeningBalance())
	}
	return m
}

func lineItem(section model.Section, a model.Account, amount decimal.Decimal) model.LineItem {
	return model.LineItem{
		Section:       section,
		AccountID:     a.ID,
		AccountNumber: a.Number,
		Name:          a.Name,
		Amount:        amount,
	}
}

// appendMaterial appends item unless its amount rounds to zero.
func appendMaterial(items []model.LineItem, item model.LineItem) []model.LineItem {
	if !model.IsMaterial(item.Amount) {
		return items
	}
	return append(items, item)
}

func nameMatches(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, k := range keywords {
		if k != "" && strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

func sum(items []model.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Amount)
	}
	return total
}
