package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestEntryTotals(t *testing.T) {
	e := JournalEntry{Lines: []JournalLine{
		{AccountID: 1010, Debit: dec("500.00")},
		{AccountID: 4010, Credit: dec("300.00")},
		{AccountID: 4020, Credit: dec("200.00")},
	}}
	d, c := e.Totals()
	assert.True(t, d.Equal(dec("500")))
	assert.True(t, c.Equal(dec("500")))
	assert.True(t, e.IsBalanced())

	e.Lines[2].Credit = dec("199.00")
	assert.False(t, e.IsBalanced())
}

func TestEntryTotals_Empty(t *testing.T) {
	d, c := JournalEntry{}.Totals()
	assert.True(t, d.IsZero())
	assert.True(t, c.IsZero())
	assert.True(t, JournalEntry{}.IsBalanced())
}

func TestLineIsMalformed(t *testing.T) {
	tests := []struct {
		name   string
		line   JournalLine
		broken bool
	}{
		{"debit only", JournalLine{Debit: dec("1")}, false},
		{"credit only", JournalLine{Credit: dec("1")}, false},
		{"both sides", JournalLine{Debit: dec("1"), Credit: dec("1")}, true},
		{"negative debit", JournalLine{Debit: dec("-1")}, true},
		{"empty", JournalLine{}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.broken, tt.line.IsMalformed(), tt.name)
	}
}

func TestLineNet(t *testing.T) {
	assert.True(t, JournalLine{Debit: dec("10")}.Net().Equal(dec("10")))
	assert.True(t, JournalLine{Credit: dec("10")}.Net().Equal(dec("-10")))
}

func TestRawOpeningBalance(t *testing.T) {
	cash := Account{NormalBalance: NormalBalanceDebit, OpeningBalance: dec("1000")}
	equity := Account{NormalBalance: NormalBalanceCredit, OpeningBalance: dec("1000")}
	assert.True(t, cash.RawOpeningBalance().Equal(dec("1000")))
	assert.True(t, equity.RawOpeningBalance().Equal(dec("-1000")))
}

func TestOpeningAppliesOn(t *testing.T) {
	a := Account{}
	assert.True(t, a.OpeningAppliesOn(time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)))

	a.OpeningBalanceDate = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, a.OpeningAppliesOn(time.Date(2025, 1, 1, 18, 0, 0, 0, time.UTC)))
	assert.False(t, a.OpeningAppliesOn(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)))
}

func TestDisplayAmount(t *testing.T) {
	raw := dec("-500")
	assert.True(t, DisplayAmount(AccountTypeRevenue, raw).Equal(dec("500")))
	assert.True(t, DisplayAmount(AccountTypeLiability, raw).Equal(dec("500")))
	assert.True(t, DisplayAmount(AccountTypeEquity, raw).Equal(dec("500")))
	assert.True(t, DisplayAmount(AccountTypeAsset, raw).Equal(dec("-500")))
	assert.True(t, DisplayAmount(AccountTypeExpense, raw).Equal(dec("-500")))
}

func TestAccountTypeHelpers(t *testing.T) {
	assert.True(t, AccountTypeAsset.IsValid())
	assert.False(t, AccountType("asset").IsValid())
	assert.Equal(t, NormalBalanceDebit, AccountTypeExpense.DefaultNormalBalance())
	assert.Equal(t, NormalBalanceCredit, AccountTypeRevenue.DefaultNormalBalance())
	assert.True(t, AccountTypeLiability.IsBalanceSheet())
	assert.False(t, AccountTypeRevenue.IsBalanceSheet())
}
