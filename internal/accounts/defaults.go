package accounts

import (
	"strconv"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

// DefaultChart returns the default chart of accounts for an entity type.
func DefaultChart(entityType string) []model.Account {
	switch entityType {
	case "llc_single_member":
		return smallBusinessChart()
	default:
		return smallBusinessChart()
	}
}

func acct(id int, name string, t model.AccountType, subtype string, parent int) model.Account {
	return model.Account{
		ID:            id,
		Number:        strconv.Itoa(id),
		Name:          name,
		Type:          t,
		Subtype:       subtype,
		NormalBalance: t.DefaultNormalBalance(),
		ParentID:      parent,
		IsActive:      true,
	}
}

func smallBusinessChart() []model.Account {
	accumulated := acct(1510, "Accumulated Depreciation", model.AccountTypeAsset, model.SubtypeFixedAsset, 1500)
	accumulated.NormalBalance = model.NormalBalanceCredit
	returns := acct(4090, "Sales Returns & Allowances", model.AccountTypeRevenue, model.SubtypeContraRevenue, 0)
	returns.NormalBalance = model.NormalBalanceDebit
	drawings := acct(3300, "Owner's Drawings", model.AccountTypeEquity, model.SubtypeDividends, 0)
	drawings.NormalBalance = model.NormalBalanceDebit

	return []model.Account{
		acct(1000, "Cash and Bank", model.AccountTypeAsset, model.SubtypeCurrentAsset, 0),
		acct(1010, "Business Checking Bank", model.AccountTypeAsset, model.SubtypeCurrentAsset, 1000),
		acct(1020, "Business Savings Bank", model.AccountTypeAsset, model.SubtypeCurrentAsset, 1000),
		acct(1030, "Petty Cash", model.AccountTypeAsset, model.SubtypeCurrentAsset, 1000),
		acct(1100, "Accounts Receivable", model.AccountTypeAsset, model.SubtypeCurrentAsset, 0),
		acct(1200, "Inventory", model.AccountTypeAsset, model.SubtypeCurrentAsset, 0),
		acct(1500, "Equipment", model.AccountTypeAsset, model.SubtypeFixedAsset, 0),
		accumulated,
		acct(1600, "Software Licenses", model.AccountTypeAsset, model.SubtypeIntangibleAsset, 0),
		acct(2010, "Credit Card", model.AccountTypeLiability, model.SubtypeCurrentLiability, 0),
		acct(2100, "Accounts Payable", model.AccountTypeLiability, model.SubtypeCurrentLiability, 0),
		acct(2200, "Sales Tax Payable", model.AccountTypeLiability, model.SubtypeCurrentLiability, 0),
		acct(2500, "Equipment Loan", model.AccountTypeLiability, model.SubtypeLongTermLiability, 0),
		acct(3010, "Owner's Capital", model.AccountTypeEquity, model.SubtypeCapital, 0),
		acct(3200, "Retained Earnings", model.AccountTypeEquity, model.SubtypeRetainedEarnings, 0),
		drawings,
		acct(4010, "Service Revenue", model.AccountTypeRevenue, model.SubtypeOperatingRevenue, 0),
		acct(4020, "Product Revenue", model.AccountTypeRevenue, model.SubtypeOperatingRevenue, 0),
		returns,
		acct(4500, "Interest Income", model.AccountTypeRevenue, model.SubtypeOtherIncome, 0),
		acct(5000, "Cost of Goods Sold", model.AccountTypeExpense, model.SubtypeCOGS, 0),
		acct(5010, "Advertising & Marketing", model.AccountTypeExpense, model.SubtypeOperatingExpense, 0),
		acct(5020, "Software & SaaS", model.AccountTypeExpense, model.SubtypeOperatingExpense, 0),
		acct(5030, "Office Supplies", model.AccountTypeExpense, model.SubtypeOperatingExpense, 0),
		acct(5040, "Professional Services", model.AccountTypeExpense, model.SubtypeOperatingExpense, 0),
		acct(5050, "Shipping & Postage", model.AccountTypeExpense, model.SubtypeOperatingExpense, 0),
		acct(5060, "Depreciation Expense", model.AccountTypeExpense, model.SubtypeDepreciation, 0),
		acct(5800, "Bank Fees", model.AccountTypeExpense, model.SubtypeFinancialExpense, 0),
		acct(5810, "Interest Expense", model.AccountTypeExpense, model.SubtypeFinancialExpense, 0),
		acct(5900, "Income Tax Expense", model.AccountTypeExpense, model.SubtypeTaxExpense, 0),
	}
}
