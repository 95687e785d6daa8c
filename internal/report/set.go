package report

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

// Set is the four statements computed from one snapshot.
type Set struct {
	TrialBalance    *model.TrialBalanceData
	BalanceSheet    *model.BalanceSheetData
	IncomeStatement *model.IncomeStatementData
	CashFlow        *model.CashFlowData
}

// GenerateSet loads a single snapshot through params.End and derives every
// statement from it concurrently. The trial balance and balance sheet are
// as of params.End; the income and cash flow statements cover
// params.Start..params.End.
func (g *Generator) GenerateSet(ctx context.Context, params CashFlowParams) (*Set, error) {
	snap, err := g.snapshot(ctx, params.End)
	if err != nil {
		return nil, err
	}

	var set Set
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		set.TrialBalance = g.trialBalance(snap, params.End)
		return nil
	})
	eg.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		set.BalanceSheet = g.balanceSheet(snap, params.End)
		return nil
	})
	eg.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		set.IncomeStatement = g.incomeStatement(snap, params.Start, params.End)
		return nil
	})
	eg.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		set.CashFlow = g.cashFlow(snap, params)
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	g.log.Debug("generated statement set",
		zap.Time("start", model.DateOnly(params.Start)),
		zap.Time("end", model.DateOnly(params.End)),
		zap.Bool("trial_balance_ok", set.TrialBalance.IsBalanced),
		zap.Bool("balance_sheet_ok", set.BalanceSheet.IsBalanced))
	return &set, nil
}

// PeriodToDate returns the fiscal-year-to-date range ending at asOf.
func (g *Generator) PeriodToDate(asOf time.Time) (start, end time.Time) {
	return g.FiscalYearStart(asOf), model.DateOnly(asOf)
}
