package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerbook/internal/ledger"
	"github.com/cleared-dev/ledgerbook/internal/model"
)

func (g *Generator) incomeStatement(snap *ledger.Snapshot, start, end time.Time) *model.IncomeStatementData {
	is := &model.IncomeStatementData{
		StartDate:              model.DateOnly(start),
		EndDate:                model.DateOnly(end),
		GrossRevenue:           decimal.Zero,
		TotalContraRevenue:     decimal.Zero,
		TotalCOGS:              decimal.Zero,
		TotalOperatingExpenses: decimal.Zero,
		TotalOtherIncome:       decimal.Zero,
		TotalOtherExpenses:     decimal.Zero,
	}

	for _, a := range snap.ReportAccounts() {
		switch a.Type {
		case model.AccountTypeRevenue:
			raw := movement(snap, a, start, end)
			switch a.Subtype {
			case model.SubtypeContraRevenue:
				// Contra revenue is shown as a positive deduction.
				is.TotalContraRevenue = is.TotalContraRevenue.Add(raw)
				is.ContraRevenue = appendMaterial(is.ContraRevenue, lineItem(model.SectionContraRevenue, a, raw))
			case model.SubtypeOtherIncome:
				amount := raw.Neg()
				is.TotalOtherIncome = is.TotalOtherIncome.Add(amount)
				is.OtherIncome = appendMaterial(is.OtherIncome, lineItem(model.SectionOtherIncome, a, amount))
			default:
				amount := raw.Neg()
				is.GrossRevenue = is.GrossRevenue.Add(amount)
				is.Revenue = appendMaterial(is.Revenue, lineItem(model.SectionRevenue, a, amount))
			}

		case model.AccountTypeExpense:
			amount := movement(snap, a, start, end)
			switch a.Subtype {
			case model.SubtypeCOGS:
				is.TotalCOGS = is.TotalCOGS.Add(amount)
				is.COGS = appendMaterial(is.COGS, lineItem(model.SectionCOGS, a, amount))
			case model.SubtypeOtherExpense, model.SubtypeFinancialExpense, model.SubtypeTaxExpense:
				is.TotalOtherExpenses = is.TotalOtherExpenses.Add(amount)
				is.OtherExpenses = appendMaterial(is.OtherExpenses, lineItem(model.SectionOtherExpenses, a, amount))
			default:
				is.TotalOperatingExpenses = is.TotalOperatingExpenses.Add(amount)
				is.OperatingExpenses = appendMaterial(is.OperatingExpenses, lineItem(model.SectionOperatingExpenses, a, amount))
			}
		}
	}

	is.NetRevenue = is.GrossRevenue.Sub(is.TotalContraRevenue)
	is.GrossProfit = is.NetRevenue.Sub(is.TotalCOGS)
	is.OperatingIncome = is.GrossProfit.Sub(is.TotalOperatingExpenses)
	is.NetIncome = is.OperatingIncome.Add(is.TotalOtherIncome).Sub(is.TotalOtherExpenses)
	return is
}
