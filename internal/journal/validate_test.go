package journal

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

// mockAccounts implements AccountChecker for testing.
type mockAccounts struct {
	ids map[int]bool
}

func (m *mockAccounts) Exists(id int) bool {
	return m.ids[id]
}

func newMockAccounts(ids ...int) *mockAccounts {
	m := &mockAccounts{ids: make(map[int]bool)}
	for _, id := range ids {
		m.ids[id] = true
	}
	return m
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func balancedEntry(debitAcct, creditAcct int, amount string) model.JournalEntry {
	return model.JournalEntry{
		JournalNumber: "JE-2025-01-001",
		Date:          date(2025, 1, 15),
		Amount:        dec(amount),
		Lines: []model.JournalLine{
			{AccountID: debitAcct, Date: date(2025, 1, 15), Debit: dec(amount)},
			{AccountID: creditAcct, Date: date(2025, 1, 15), Credit: dec(amount)},
		},
	}
}

var defaultAccounts = newMockAccounts(1010, 1020, 2010, 3010, 4010, 5020)

func TestValidate_Balanced(t *testing.T) {
	errs := ValidateEntry(balancedEntry(5020, 1010, "100.00"), defaultAccounts)
	assert.Empty(t, errs)
}

func TestValidate_Unbalanced(t *testing.T) {
	e := balancedEntry(5020, 1010, "100.00")
	e.Lines[1].Credit = dec("90.00")

	errs := ValidateEntry(e, defaultAccounts)
	require.Len(t, errs, 1)
	assert.Equal(t, RuleUnbalanced, errs[0].Rule)
	assert.True(t, errs[0].Difference.Equal(dec("10")), "difference is debit minus credit")
	assert.Contains(t, errs[0].Error(), "JE-2025-01-001")
}

func TestValidate_WithinMateriality(t *testing.T) {
	e := balancedEntry(5020, 1010, "100.00")
	e.Lines = append(e.Lines, model.JournalLine{AccountID: 1010, Credit: dec("0.005")})

	errs := ValidateEntry(e, defaultAccounts)
	assert.False(t, errs.Has(RuleUnbalanced), "a half-cent gap is immaterial")
	assert.True(t, errs.Has(RulePrecision))
}

func TestValidate_LineRules(t *testing.T) {
	tests := []struct {
		name string
		line model.JournalLine
		rule Rule
	}{
		{"both sides", model.JournalLine{AccountID: 1010, Debit: dec("5"), Credit: dec("5")}, RuleBothSides},
		{"no side", model.JournalLine{AccountID: 1010}, RuleNoSide},
		{"negative", model.JournalLine{AccountID: 1010, Debit: dec("-5")}, RuleNegativeAmount},
		{"unknown account", model.JournalLine{AccountID: 9999, Debit: dec("5")}, RuleUnknownAccount},
		{"three decimals", model.JournalLine{AccountID: 1010, Debit: dec("5.001")}, RulePrecision},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := model.JournalEntry{JournalNumber: "JE-2025-01-002", Lines: []model.JournalLine{tt.line}}
			errs := ValidateEntry(e, defaultAccounts)
			require.True(t, errs.Has(tt.rule), "got %v", errs)
			for _, ve := range errs {
				if ve.Rule == tt.rule {
					assert.Equal(t, 1, ve.Line)
				}
			}
		})
	}
}

func TestValidate_EmptyEntry(t *testing.T) {
	errs := ValidateEntry(model.JournalEntry{JournalNumber: "JE-2025-01-003"}, defaultAccounts)
	require.Len(t, errs, 1)
	assert.Equal(t, RuleNoLines, errs[0].Rule)
}

func TestValidate_NegativeEntryAmount(t *testing.T) {
	e := balancedEntry(5020, 1010, "10.00")
	e.Amount = dec("-10")
	errs := ValidateEntry(e, defaultAccounts)
	assert.True(t, errs.Has(RuleNegativeAmount))
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Rule: RuleNoSide, JournalNumber: "JE-1", Line: 2, Description: "x"},
		{Rule: RuleUnbalanced, JournalNumber: "JE-1", Description: "y"},
	}
	assert.Equal(t, "validation failed: no_side [JE-1 line 2]: x; unbalanced [JE-1]: y", errs.Error())
	assert.Len(t, errs.withoutRule(RuleUnbalanced), 1)
}
