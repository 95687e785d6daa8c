package report

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/ledgerbook/internal/ledger"
	"github.com/cleared-dev/ledgerbook/internal/model"
)

const (
	historicalEarningsName = "Retained Earnings (prior years)"
	currentEarningsName    = "Net Income (Current Period)"
)

func equitySection(subtype string) model.Section {
	switch subtype {
	case model.SubtypeRetainedEarnings:
		return model.SectionRetainedEarnings
	case model.SubtypeNetIncome:
		return model.SectionNetIncome
	case model.SubtypeDividends:
		return model.SectionDividends
	case model.SubtypeTreasuryStock:
		return model.SectionTreasuryStock
	default:
		return model.SectionCapital
	}
}

// netIncomeThrough is net income over every revenue and expense balance
// on or before date, opening balances included.
func netIncomeThrough(snap *ledger.Snapshot, date time.Time) decimal.Decimal {
	raw := decimal.Zero
	for _, a := range snap.ReportAccounts() {
		if a.Type == model.AccountTypeRevenue || a.Type == model.AccountTypeExpense {
			raw = raw.Add(snap.Balance(a.ID, date))
		}
	}
	return raw.Neg()
}

func (g *Generator) balanceSheet(snap *ledger.Snapshot, asOf time.Time) *model.BalanceSheetData {
	fyStart := g.FiscalYearStart(asOf)
	bs := &model.BalanceSheetData{
		AsOf:                     model.DateOnly(asOf),
		FiscalYearStart:          fyStart,
		TotalCurrentAssets:       decimal.Zero,
		TotalFixedAssets:         decimal.Zero,
		TotalCurrentLiabilities:  decimal.Zero,
		TotalLongTermLiabilities: decimal.Zero,
		TotalEquity:              decimal.Zero,
	}

	bs.HistoricalNetIncome = netIncomeThrough(snap, model.DayBefore(fyStart))
	bs.CurrentNetIncome = g.incomeStatement(snap, fyStart, asOf).NetIncome

	historicalPlaced := false
	for _, a := range snap.ReportAccounts() {
		if !a.Type.IsBalanceSheet() {
			continue
		}
		amount := model.DisplayAmount(a.Type, snap.Balance(a.ID, asOf))

		switch a.Type {
		case model.AccountTypeAsset:
			if a.Subtype == model.SubtypeCurrentAsset {
				bs.TotalCurrentAssets = bs.TotalCurrentAssets.Add(amount)
				bs.CurrentAssets = appendMaterial(bs.CurrentAssets, lineItem(model.SectionCurrentAssets, a, amount))
			} else {
				bs.TotalFixedAssets = bs.TotalFixedAssets.Add(amount)
				bs.FixedAssets = appendMaterial(bs.FixedAssets, lineItem(model.SectionFixedAssets, a, amount))
			}

		case model.AccountTypeLiability:
			if a.Subtype == model.SubtypeCurrentLiability {
				bs.TotalCurrentLiabilities = bs.TotalCurrentLiabilities.Add(amount)
				bs.CurrentLiabilities = appendMaterial(bs.CurrentLiabilities, lineItem(model.SectionCurrentLiabilities, a, amount))
			} else {
				bs.TotalLongTermLiabilities = bs.TotalLongTermLiabilities.Add(amount)
				bs.LongTermLiabilities = appendMaterial(bs.LongTermLiabilities, lineItem(model.SectionLongTermLiabilities, a, amount))
			}

		case model.AccountTypeEquity:
			bs.TotalEquity = bs.TotalEquity.Add(amount)
			section := equitySection(a.Subtype)
			item := lineItem(section, a, amount)
			if section == model.SectionRetainedEarnings && !historicalPlaced && model.IsMaterial(amount) {
				item.Amount = item.Amount.Add(bs.HistoricalNetIncome)
				historicalPlaced = true
			}
			bs.Equity = appendMaterial(bs.Equity, item)
		}
	}

	if !historicalPlaced {
		bs.Equity = append(bs.Equity, model.LineItem{
			Section:   model.SectionRetainedEarnings,
			Name:      historicalEarningsName,
			Amount:    bs.HistoricalNetIncome,
			Synthetic: true,
		})
	}
	bs.Equity = append(bs.Equity, model.LineItem{
		Section:   model.SectionNetIncome,
		Name:      currentEarningsName,
		Amount:    bs.CurrentNetIncome,
		Synthetic: true,
	})

	bs.TotalEquity = bs.TotalEquity.Add(bs.HistoricalNetIncome).Add(bs.CurrentNetIncome)
	bs.TotalAssets = bs.TotalCurrentAssets.Add(bs.TotalFixedAssets)
	bs.TotalLiabilities = bs.TotalCurrentLiabilities.Add(bs.TotalLongTermLiabilities)
	bs.TotalLiabilitiesAndEquity = bs.TotalLiabilities.Add(bs.TotalEquity)
	bs.Difference = bs.TotalAssets.Sub(bs.TotalLiabilitiesAndEquity)
	bs.IsBalanced = model.NearlyEqual(bs.TotalAssets, bs.TotalLiabilitiesAndEquity)

	if !bs.IsBalanced {
		g.log.Warn("balance sheet out of balance",
			zap.Time("as_of", bs.AsOf),
			zap.String("difference", bs.Difference.StringFixed(2)))
	}
	return bs
}
