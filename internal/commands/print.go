package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// sheet accumulates sections and totals of one report for tabular output.
type sheet struct {
	tw *tabwriter.Writer
}

func newSheet(out io.Writer, title string) *sheet {
	fmt.Fprintln(out, title)
	return &sheet{tw: newTable(out)}
}

func (s *sheet) section(name string, items []model.LineItem) {
	fmt.Fprintf(s.tw, "%s\t\t\n", name)
	for _, it := range items {
		fmt.Fprintf(s.tw, "  %s\t%s\t%s\n", it.AccountNumber, it.Name, money(it.Amount))
	}
}

func (s *sheet) total(name string, amount decimal.Decimal) {
	fmt.Fprintf(s.tw, "%s\t\t%s\n", name, money(amount))
}

func (s *sheet) blank() {
	fmt.Fprintln(s.tw, "\t\t")
}

func (s *sheet) flush() error {
	return s.tw.Flush()
}

func printTrialBalance(out io.Writer, tb *model.TrialBalanceData) error {
	fmt.Fprintf(out, "Trial Balance as of %s\n", tb.AsOf.Format(dateLayout))
	tw := newTable(out)
	fmt.Fprintln(tw, "NUMBER\tACCOUNT\tDEBIT\tCREDIT")
	for _, l := range tb.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.AccountNumber, l.Name, money(l.Debit), money(l.Credit))
	}
	fmt.Fprintf(tw, "\tTotal\t%s\t%s\n", money(tb.TotalDebits), money(tb.TotalCredits))
	if err := tw.Flush(); err != nil {
		return err
	}
	if !tb.IsBalanced {
		fmt.Fprintf(out, "OUT OF BALANCE by %s\n", money(tb.Difference))
	}
	if len(tb.UnbalancedEntries) > 0 {
		fmt.Fprintf(out, "Unbalanced entries: %v\n", tb.UnbalancedEntries)
	}
	if len(tb.MalformedLines) > 0 {
		fmt.Fprintf(out, "Malformed lines: %v\n", tb.MalformedLines)
	}
	return nil
}

func printBalanceSheet(out io.Writer, bs *model.BalanceSheetData) error {
	s := newSheet(out, "Balance Sheet as of "+bs.AsOf.Format(dateLayout))
	s.section("Current Assets", bs.CurrentAssets)
	s.total("Total Current Assets", bs.TotalCurrentAssets)
	s.section("Fixed Assets", bs.FixedAssets)
	s.total("Total Fixed Assets", bs.TotalFixedAssets)
	s.total("TOTAL ASSETS", bs.TotalAssets)
	s.blank()
	s.section("Current Liabilities", bs.CurrentLiabilities)
	s.total("Total Current Liabilities", bs.TotalCurrentLiabilities)
	s.section("Long-Term Liabilities", bs.LongTermLiabilities)
	s.total("Total Long-Term Liabilities", bs.TotalLongTermLiabilities)
	s.total("TOTAL LIABILITIES", bs.TotalLiabilities)
	s.blank()
	s.section("Equity", bs.Equity)
	s.total("TOTAL EQUITY", bs.TotalEquity)
	s.total("TOTAL LIABILITIES AND EQUITY", bs.TotalLiabilitiesAndEquity)
	if err := s.flush(); err != nil {
		return err
	}
	if !bs.IsBalanced {
		fmt.Fprintf(out, "OUT OF BALANCE by %s\n", money(bs.Difference))
	}
	return nil
}

func printIncomeStatement(out io.Writer, is *model.IncomeStatementData) error {
	s := newSheet(out, fmt.Sprintf("Income Statement %s to %s",
		is.StartDate.Format(dateLayout), is.EndDate.Format(dateLayout)))
	s.section("Revenue", is.Revenue)
	s.total("Gross Revenue", is.GrossRevenue)
	if len(is.ContraRevenue) > 0 {
		s.section("Less: Returns and Discounts", is.ContraRevenue)
	}
	s.total("Net Revenue", is.NetRevenue)
	s.section("Cost of Goods Sold", is.COGS)
	s.total("Gross Profit", is.GrossProfit)
	s.section("Operating Expenses", is.OperatingExpenses)
	s.total("Operating Income", is.OperatingIncome)
	s.section("Other Income", is.OtherIncome)
	s.section("Other Expenses", is.OtherExpenses)
	s.total("NET INCOME", is.NetIncome)
	return s.flush()
}

func printCashFlow(out io.Writer, cf *model.CashFlowData) error {
	s := newSheet(out, fmt.Sprintf("Cash Flow Statement %s to %s",
		cf.StartDate.Format(dateLayout), cf.EndDate.Format(dateLayout)))
	s.total("Net Income", cf.NetIncome)
	s.section("Operating Activities", cf.OperatingActivities)
	s.total("Net Cash from Operating Activities", cf.NetOperatingCashFlow)
	s.section("Investing Activities", cf.InvestingActivities)
	s.total("Net Cash from Investing Activities", cf.NetInvestingCashFlow)
	s.section("Financing Activities", cf.FinancingActivities)
	s.total("Net Cash from Financing Activities", cf.NetFinancingCashFlow)
	s.blank()
	s.total("Net Change in Cash", cf.NetChangeInCash)
	s.total("Beginning Cash", cf.BeginningCash)
	s.total("Ending Cash", cf.EndingCash)
	if err := s.flush(); err != nil {
		return err
	}
	if model.IsMaterial(cf.Discrepancy) {
		fmt.Fprintf(out, "Unexplained change in cash: %s (investing and financing are not derived from the ledger)\n", money(cf.Discrepancy))
	}
	return nil
}

func printLines(out io.Writer, lines []model.JournalLine) error {
	tw := newTable(out)
	fmt.Fprintln(tw, "LINE\tDATE\tDESCRIPTION\tREFERENCE\tDEBIT\tCREDIT\tCLEARED")
	for _, l := range lines {
		cleared := ""
		if l.IsCleared {
			cleared = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.ID, l.Date.Format(dateLayout), l.Description, l.Reference, money(l.Debit), money(l.Credit), cleared)
	}
	return tw.Flush()
}
