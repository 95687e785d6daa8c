package report

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/ledgerbook/internal/ledger"
	"github.com/cleared-dev/ledgerbook/internal/model"
)

// CashFlowParams selects the period and carries the investing and financing
// items, which are not derived from the ledger.
type CashFlowParams struct {
	Start          time.Time
	End            time.Time
	InvestingItems []model.LineItem
	FinancingItems []model.LineItem
}

func (g *Generator) isCash(a model.Account) bool {
	return a.Type == model.AccountTypeAsset && nameMatches(a.Name, g.keywords.Cash)
}

// isWorkingCapital matches receivable and inventory assets and payable
// liabilities by name.
func (g *Generator) isWorkingCapital(a model.Account) bool {
	switch a.Type {
	case model.AccountTypeAsset:
		return nameMatches(a.Name, g.keywords.Receivable) || nameMatches(a.Name, g.keywords.Inventory)
	case model.AccountTypeLiability:
		return nameMatches(a.Name, g.keywords.Payable)
	}
	return false
}

func (g *Generator) isDepreciation(a model.Account) bool {
	return a.Type == model.AccountTypeExpense &&
		(a.Subtype == model.SubtypeDepreciation || nameMatches(a.Name, g.keywords.Depreciation))
}

func (g *Generator) cashFlow(snap *ledger.Snapshot, params CashFlowParams) *model.CashFlowData {
	start, end := model.DateOnly(params.Start), model.DateOnly(params.End)
	opening := model.DayBefore(start)

	cf := &model.CashFlowData{
		StartDate:     start,
		EndDate:       end,
		NetIncome:     g.incomeStatement(snap, start, end).NetIncome,
		BeginningCash: decimal.Zero,
		EndingCash:    decimal.Zero,
	}

	adjustments := decimal.Zero
	for _, a := range snap.ReportAccounts() {
		switch {
		case g.isCash(a):
			cf.BeginningCash = cf.BeginningCash.Add(snap.Balance(a.ID, opening))
			cf.EndingCash = cf.EndingCash.Add(snap.Balance(a.ID, end))

		case g.isDepreciation(a):
			addBack := movement(snap, a, start, end)
			adjustments = adjustments.Add(addBack)
			cf.OperatingActivities = appendMaterial(cf.OperatingActivities, lineItem(model.SectionOperatingActivities, a, addBack))

		case g.isWorkingCapital(a):
			// A rise in a debit balance (receivables, inventory) consumes
			// cash; a rise in a credit balance (payables) provides it.
			change := snap.Balance(a.ID, end).Sub(snap.Balance(a.ID, opening))
			adj := change.Neg()
			adjustments = adjustments.Add(adj)
			cf.OperatingActivities = appendMaterial(cf.OperatingActivities, lineItem(model.SectionOperatingActivities, a, adj))
		}
	}

	cf.InvestingActivities = tagItems(params.InvestingItems, model.SectionInvestingActivities)
	cf.FinancingActivities = tagItems(params.FinancingItems, model.SectionFinancingActivities)

	cf.NetOperatingCashFlow = cf.NetIncome.Add(adjustments)
	cf.NetInvestingCashFlow = sum(cf.InvestingActivities)
	cf.NetFinancingCashFlow = sum(cf.FinancingActivities)
	cf.NetChangeInCash = cf.NetOperatingCashFlow.Add(cf.NetInvestingCashFlow).Add(cf.NetFinancingCashFlow)
	cf.Discrepancy = cf.EndingCash.Sub(cf.BeginningCash).Sub(cf.NetChangeInCash)

	if model.IsMaterial(cf.Discrepancy) {
		g.log.Debug("cash flow does not reconcile to cash balances",
			zap.Time("start", start),
			zap.Time("end", end),
			zap.String("discrepancy", cf.Discrepancy.StringFixed(2)))
	}
	return cf
}

func tagItems(items []model.LineItem, section model.Section) []model.LineItem {
	out := make([]model.LineItem, 0, len(items))
	for _, it := range items {
		it.Section = section
		it.Synthetic = it.AccountID == 0
		out = append(out, it)
	}
	return out
}
