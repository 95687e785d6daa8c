package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// IsValid reports whether t is one of the five account types.
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// IsBalanceSheet reports whether accounts of this type appear on the balance sheet.
func (t AccountType) IsBalanceSheet() bool {
	return t == AccountTypeAsset || t == AccountTypeLiability || t == AccountTypeEquity
}

// IsCreditNormal reports whether the type naturally accumulates credits.
func (t AccountType) IsCreditNormal() bool {
	return t == AccountTypeLiability || t == AccountTypeEquity || t == AccountTypeRevenue
}

// DefaultNormalBalance returns the usual polarity for the type.
func (t AccountType) DefaultNormalBalance() NormalBalance {
	if t.IsCreditNormal() {
		return NormalBalanceCredit
	}
	return NormalBalanceDebit
}

// NormalBalance is the side on which an account's balance naturally sits.
type NormalBalance string

const (
	NormalBalanceDebit  NormalBalance = "DEBIT"
	NormalBalanceCredit NormalBalance = "CREDIT"
)

// IsValid reports whether n is DEBIT or CREDIT.
func (n NormalBalance) IsValid() bool {
	return n == NormalBalanceDebit || n == NormalBalanceCredit
}

// Subtypes the statements bucket on. Subtype is free-form; these are the
// values with meaning to the report generators.
const (
	SubtypeCurrentAsset      = "CURRENT_ASSET"
	SubtypeFixedAsset        = "FIXED_ASSET"
	SubtypeIntangibleAsset   = "INTANGIBLE_ASSET"
	SubtypeCurrentLiability  = "CURRENT_LIABILITY"
	SubtypeLongTermLiability = "LONG_TERM_LIABILITY"
	SubtypeCapital           = "CAPITAL"
	SubtypeRetainedEarnings  = "RETAINED_EARNINGS"
	SubtypeNetIncome         = "NET_INCOME"
	SubtypeDividends         = "DIVIDENDS"
	SubtypeTreasuryStock     = "TREASURY_STOCK"
	SubtypeOperatingRevenue  = "OPERATING_REVENUE"
	SubtypeContraRevenue     = "CONTRA_REVENUE"
	SubtypeOtherIncome       = "OTHER_INCOME"
	SubtypeCOGS              = "COGS"
	SubtypeOperatingExpense  = "OPERATING_EXPENSE"
	SubtypeDepreciation      = "DEPRECIATION"
	SubtypeOtherExpense      = "OTHER_EXPENSE"
	SubtypeFinancialExpense  = "FINANCIAL_EXPENSE"
	SubtypeTaxExpense        = "TAX_EXPENSE"
)

// Account is a node in the chart of accounts. ParentID is a plain foreign key
// into the same arena; 0 means top-level.
type Account struct {
	ID                 int
	Number             string
	Name               string
	Type               AccountType
	Subtype            string
	NormalBalance      NormalBalance
	OpeningBalance     decimal.Decimal // in the account's own polarity
	OpeningBalanceDate time.Time       // zero = applies to every date
	ParentID           int
	IsActive           bool
	Description        string
}

// RawOpeningBalance returns the opening balance in debit-minus-credit polarity.
func (a Account) RawOpeningBalance() decimal.Decimal {
	if a.NormalBalance == NormalBalanceCredit {
		return a.OpeningBalance.Neg()
	}
	return a.OpeningBalance
}

// OpeningAppliesOn reports whether the opening balance is part of the balance on asOf.
func (a Account) OpeningAppliesOn(asOf time.Time) bool {
	return a.OpeningBalanceDate.IsZero() || OnOrBefore(a.OpeningBalanceDate, asOf)
}

// DisplayAmount converts a raw debit-minus-credit amount to the natural
// positive presentation for the account type.
func DisplayAmount(t AccountType, raw decimal.Decimal) decimal.Decimal {
	if t.IsCreditNormal() {
		return raw.Neg()
	}
	return raw
}
