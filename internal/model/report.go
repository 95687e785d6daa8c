package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Section tags a report line item with the statement section it belongs to.
type Section string

const (
	SectionTrialBalance Section = "TRIAL_BALANCE"

	SectionCurrentAssets       Section = "CURRENT_ASSETS"
	SectionFixedAssets         Section = "FIXED_ASSETS"
	SectionCurrentLiabilities  Section = "CURRENT_LIABILITIES"
	SectionLongTermLiabilities Section = "LONG_TERM_LIABILITIES"
	SectionCapital             Section = "CAPITAL"
	SectionRetainedEarnings    Section = "RETAINED_EARNINGS"
	SectionNetIncome           Section = "NET_INCOME"
	SectionDividends           Section = "DIVIDENDS"
	SectionTreasuryStock       Section = "TREASURY_STOCK"
	SectionRevenue             Section = "REVENUE"
	SectionContraRevenue       Section = "CONTRA_REVENUE"
	SectionCOGS                Section = "COGS"
	SectionOperatingExpenses   Section = "OPERATING_EXPENSES"
	SectionOtherIncome         Section = "OTHER_INCOME"
	SectionOtherExpenses       Section = "OTHER_EXPENSES"
	SectionOperatingActivities Section = "OPERATING_ACTIVITIES"
	SectionInvestingActivities Section = "INVESTING_ACTIVITIES"
	SectionFinancingActivities Section = "FINANCING_ACTIVITIES"
)

// LineItem is the one record type shared by every statement. Synthetic items
// (computed adjustments such as current-period net income) have AccountID 0.
type LineItem struct {
	Section       Section
	AccountID     int
	AccountNumber string
	Name          string
	Amount        decimal.Decimal
	Debit         decimal.Decimal // trial balance only
	Credit        decimal.Decimal // trial balance only
	Synthetic     bool
}

// TrialBalanceData is the trial balance as of a date.
type TrialBalanceData struct {
	AsOf              time.Time
	Lines             []LineItem
	TotalDebits       decimal.Decimal
	TotalCredits      decimal.Decimal
	Difference        decimal.Decimal // TotalDebits - TotalCredits
	IsBalanced        bool
	UnbalancedEntries []int // posted journal ids whose lines do not balance
	MalformedLines    []int
}

// BalanceSheetData is the statement of financial position as of a date.
type BalanceSheetData struct {
	AsOf            time.Time
	FiscalYearStart time.Time

	CurrentAssets       []LineItem
	FixedAssets         []LineItem
	CurrentLiabilities  []LineItem
	LongTermLiabilities []LineItem
	Equity              []LineItem

	TotalCurrentAssets        decimal.Decimal
	TotalFixedAssets          decimal.Decimal
	TotalAssets               decimal.Decimal
	TotalCurrentLiabilities   decimal.Decimal
	TotalLongTermLiabilities  decimal.Decimal
	TotalLiabilities          decimal.Decimal
	TotalEquity               decimal.Decimal
	TotalLiabilitiesAndEquity decimal.Decimal

	HistoricalNetIncome decimal.Decimal
	CurrentNetIncome    decimal.Decimal
	Difference          decimal.Decimal // TotalAssets - TotalLiabilitiesAndEquity
	IsBalanced          bool
}

// IncomeStatementData is profit and loss over a date range.
type IncomeStatementData struct {
	StartDate time.Time
	EndDate   time.Time

	Revenue           []LineItem
	ContraRevenue     []LineItem
	COGS              []LineItem
	OperatingExpenses []LineItem
	OtherIncome       []LineItem
	OtherExpenses     []LineItem

	GrossRevenue           decimal.Decimal
	TotalContraRevenue     decimal.Decimal
	NetRevenue             decimal.Decimal
	TotalCOGS              decimal.Decimal
	GrossProfit            decimal.Decimal
	TotalOperatingExpenses decimal.Decimal
	OperatingIncome        decimal.Decimal
	TotalOtherIncome       decimal.Decimal
	TotalOtherExpenses     decimal.Decimal
	NetIncome              decimal.Decimal
}

// CashFlowData is the indirect-method cash flow statement over a date range.
type CashFlowData struct {
	StartDate time.Time
	EndDate   time.Time

	NetIncome            decimal.Decimal
	OperatingActivities  []LineItem
	InvestingActivities  []LineItem
	FinancingActivities  []LineItem
	NetOperatingCashFlow decimal.Decimal
	NetInvestingCashFlow decimal.Decimal
	NetFinancingCashFlow decimal.Decimal
	NetChangeInCash      decimal.Decimal

	BeginningCash decimal.Decimal
	EndingCash    decimal.Decimal
	// Discrepancy is (EndingCash - BeginningCash) - NetChangeInCash. Investing
	// and financing are not derived from the ledger, so it is often non-zero.
	Discrepancy decimal.Decimal
}
