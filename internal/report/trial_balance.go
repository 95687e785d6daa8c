package report

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/ledgerbook/internal/ledger"
	"github.com/cleared-dev/ledgerbook/internal/model"
)

func (g *Generator) trialBalance(snap *ledger.Snapshot, asOf time.Time) *model.TrialBalanceData {
	tb := &model.TrialBalanceData{
		AsOf:              model.DateOnly(asOf),
		TotalDebits:       decimal.Zero,
		TotalCredits:      decimal.Zero,
		UnbalancedEntries: snap.UnbalancedEntries(),
		MalformedLines:    snap.MalformedLines(),
	}

	for _, a := range snap.ReportAccounts() {
		debit, credit := snap.Totals(a.ID, asOf)
		if a.OpeningAppliesOn(asOf) {
			debit, credit = foldOpening(a, debit, credit)
		}

		net := debit.Sub(credit)
		item := lineItem(model.SectionTrialBalance, a, model.DisplayAmount(a.Type, net))
		if net.IsNegative() {
			item.Credit = net.Neg()
			item.Debit = decimal.Zero
		} else {
			item.Debit = net
			item.Credit = decimal.Zero
		}
		tb.TotalDebits = tb.TotalDebits.Add(item.Debit)
		tb.TotalCredits = tb.TotalCredits.Add(item.Credit)

		if model.IsMaterial(item.Debit) || model.IsMaterial(item.Credit) {
			tb.Lines = append(tb.Lines, item)
		}
	}

	tb.Difference = tb.TotalDebits.Sub(tb.TotalCredits)
	tb.IsBalanced = model.NearlyEqual(tb.TotalDebits, tb.TotalCredits) && len(tb.UnbalancedEntries) == 0

	if !tb.IsBalanced {
		g.log.Warn("trial balance out of balance",
			zap.Time("as_of", tb.AsOf),
			zap.String("difference", tb.Difference.StringFixed(2)),
			zap.Ints("unbalanced_entries", tb.UnbalancedEntries))
	}
	if len(tb.MalformedLines) > 0 {
		g.log.Warn("malformed journal lines in ledger", zap.Ints("line_ids", tb.MalformedLines))
	}
	return tb
}

// foldOpening adds the opening balance to the account's normal side. A
// negative opening balance lands on the opposite side.
func foldOpening(a model.Account, debit, credit decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	ob := a.OpeningBalance
	onNormal := !ob.IsNegative()
	amount := ob.Abs()

	debitSide := a.NormalBalance == model.NormalBalanceDebit
	if !onNormal {
		debitSide = !debitSide
	}
	if debitSide {
		return debit.Add(amount), credit
	}
	return debit, credit.Add(amount)
}
