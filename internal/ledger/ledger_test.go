package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

// staticSource serves snapshots over a fixed data set.
type staticSource struct {
	accounts []model.Account
	lines    []model.JournalLine
	err      error
	calls    int
}

func (s *staticSource) Snapshot(_ context.Context, through time.Time) (*Snapshot, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return NewSnapshot(through, s.accounts, s.lines), nil
}

const (
	cashID    = 1010
	revenueID = 4010
)

func scenarioA() *staticSource {
	return &staticSource{
		accounts: []model.Account{
			{ID: cashID, Number: "1010", Name: "Cash", Type: model.AccountTypeAsset, NormalBalance: model.NormalBalanceDebit, OpeningBalance: dec("1000"), IsActive: true},
			{ID: revenueID, Number: "4010", Name: "Sales Revenue", Type: model.AccountTypeRevenue, NormalBalance: model.NormalBalanceCredit, IsActive: true},
		},
		lines: []model.JournalLine{
			{ID: 1, JournalID: 1, AccountID: cashID, Date: date(2025, 1, 10), Debit: dec("500")},
			{ID: 2, JournalID: 1, AccountID: revenueID, Date: date(2025, 1, 10), Credit: dec("500")},
		},
	}
}

func TestScenarioA(t *testing.T) {
	calc := NewCalculator(scenarioA(), nil)
	ctx := context.Background()
	today := date(2025, 6, 30)

	cash, err := calc.GetAccountBalance(ctx, cashID, today)
	require.NoError(t, err)
	assert.True(t, cash.Equal(dec("1500")), "got %s", cash)

	rev, err := calc.GetAccountBalance(ctx, revenueID, today)
	require.NoError(t, err)
	assert.True(t, rev.Equal(dec("-500")), "raw revenue is a net credit")
	assert.True(t, model.DisplayAmount(model.AccountTypeRevenue, rev).Equal(dec("500")))
}

func TestBalance_Idempotent(t *testing.T) {
	calc := NewCalculator(scenarioA(), nil)
	ctx := context.Background()

	first, err := calc.GetAccountBalance(ctx, cashID, date(2025, 6, 30))
	require.NoError(t, err)
	second, err := calc.GetAccountBalance(ctx, cashID, date(2025, 6, 30))
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
}

func TestBalance_AsOfCutoff(t *testing.T) {
	calc := NewCalculator(scenarioA(), nil)
	ctx := context.Background()

	before, err := calc.GetAccountBalance(ctx, cashID, date(2025, 1, 9))
	require.NoError(t, err)
	assert.True(t, before.Equal(dec("1000")), "only the opening balance")

	sameDay, err := calc.GetAccountBalance(ctx, cashID, time.Date(2025, 1, 10, 0, 0, 1, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, sameDay.Equal(dec("1500")), "line date compares by calendar day")
}

func TestBalance_OpeningDate(t *testing.T) {
	src := scenarioA()
	src.accounts[0].OpeningBalanceDate = date(2025, 1, 1)
	calc := NewCalculator(src, nil)

	bal, err := calc.GetAccountBalance(context.Background(), cashID, date(2024, 12, 31))
	require.NoError(t, err)
	assert.True(t, bal.IsZero(), "opening balance dated after asOf is excluded")
}

func TestBalance_CreditNormalOpening(t *testing.T) {
	src := &staticSource{accounts: []model.Account{
		{ID: 3010, Number: "3010", Type: model.AccountTypeEquity, NormalBalance: model.NormalBalanceCredit, OpeningBalance: dec("1000")},
	}}
	bal, err := NewCalculator(src, nil).GetAccountBalance(context.Background(), 3010, date(2025, 1, 1))
	require.NoError(t, err)
	assert.True(t, bal.Equal(dec("-1000")))
}

func TestBalance_UnknownAndInvalid(t *testing.T) {
	calc := NewCalculator(scenarioA(), nil)
	ctx := context.Background()

	bal, err := calc.GetAccountBalance(ctx, 9999, date(2025, 6, 30))
	require.NoError(t, err)
	assert.True(t, bal.IsZero())

	_, err = calc.GetAccountBalance(ctx, 0, date(2025, 6, 30))
	assert.ErrorIs(t, err, ErrInvalidAccountID)
	_, err = calc.GetAccountActivity(ctx, -1, date(2025, 1, 1), date(2025, 6, 30))
	assert.ErrorIs(t, err, ErrInvalidAccountID)
}

func TestActivity(t *testing.T) {
	calc := NewCalculator(scenarioA(), nil)
	ctx := context.Background()

	act, err := calc.GetAccountActivity(ctx, cashID, date(2025, 1, 1), date(2025, 1, 31))
	require.NoError(t, err)
	assert.True(t, act.Equal(dec("500")), "no opening balance in activity")

	act, err = calc.GetAccountActivity(ctx, cashID, date(2025, 2, 1), date(2025, 2, 28))
	require.NoError(t, err)
	assert.True(t, act.IsZero())

	act, err = calc.GetAccountActivity(ctx, cashID, date(2025, 1, 10), date(2025, 1, 10))
	require.NoError(t, err)
	assert.True(t, act.Equal(dec("500")), "range is inclusive on both ends")
}

func TestRollup_OneSnapshot(t *testing.T) {
	src := scenarioA()
	src.accounts = append(src.accounts,
		model.Account{ID: 1020, Number: "1020", Type: model.AccountTypeAsset, NormalBalance: model.NormalBalanceDebit, OpeningBalance: dec("250")})
	src.lines = append(src.lines,
		model.JournalLine{ID: 3, JournalID: 2, AccountID: 1020, Date: date(2025, 2, 1), Credit: dec("40")},
		model.JournalLine{ID: 4, JournalID: 2, AccountID: cashID, Date: date(2025, 2, 1), Debit: dec("40")})
	calc := NewCalculator(src, nil)
	ctx := context.Background()

	bal, err := calc.GetRollupBalance(ctx, []int{cashID, 1020}, date(2025, 6, 30))
	require.NoError(t, err)
	assert.True(t, bal.Equal(dec("1750")), "got %s", bal)
	assert.Equal(t, 1, src.calls)

	act, err := calc.GetRollupActivity(ctx, []int{cashID, 1020}, date(2025, 2, 1), date(2025, 2, 28))
	require.NoError(t, err)
	assert.True(t, act.IsZero(), "transfer between the two nets out")
	assert.Equal(t, 2, src.calls)

	_, err = calc.GetRollupBalance(ctx, []int{cashID, 0}, date(2025, 6, 30))
	assert.ErrorIs(t, err, ErrInvalidAccountID)
	assert.Equal(t, 2, src.calls, "ids are checked before loading")
}

func TestSourceError(t *testing.T) {
	boom := errors.New("db down")
	calc := NewCalculator(&staticSource{err: boom}, nil)
	_, err := calc.GetAccountBalance(context.Background(), cashID, date(2025, 1, 1))
	assert.ErrorIs(t, err, boom)
}

func TestSnapshot(t *testing.T) {
	src := scenarioA()
	src.lines = append(src.lines,
		model.JournalLine{ID: 3, JournalID: 2, AccountID: cashID, Date: date(2025, 2, 1), Debit: dec("10")},
		model.JournalLine{ID: 4, JournalID: 3, AccountID: cashID, Date: date(2025, 2, 1), Debit: dec("5"), Credit: dec("5")},
		model.JournalLine{ID: 5, JournalID: 4, AccountID: cashID, Date: date(2025, 9, 1), Debit: dec("99")},
	)
	snap := NewSnapshot(date(2025, 6, 30), src.accounts, src.lines)

	assert.Equal(t, []int{2}, snap.UnbalancedEntries(), "entry 3 nets to zero, entry 4 is after the cutoff")
	assert.Equal(t, []int{4}, snap.MalformedLines())

	d, c := snap.Totals(cashID, date(2025, 6, 30))
	assert.True(t, d.Equal(dec("515")))
	assert.True(t, c.Equal(dec("5")))

	assert.True(t, snap.Balance(cashID, date(2025, 12, 31)).Equal(dec("1510")), "lines after through are not in the snapshot")

	a, ok := snap.Account(revenueID)
	require.True(t, ok)
	assert.Equal(t, "Sales Revenue", a.Name)
	assert.False(t, snap.IsEmpty())
}

func TestSnapshot_ReportAccounts(t *testing.T) {
	accounts := []model.Account{
		{ID: 1, Number: "2", IsActive: true},
		{ID: 2, Number: "1"},
		{ID: 3, Number: "3"},
	}
	lines := []model.JournalLine{{ID: 1, JournalID: 1, AccountID: 3, Date: date(2025, 1, 1), Debit: dec("1")}}
	snap := NewSnapshot(time.Time{}, accounts, lines)

	got := snap.ReportAccounts()
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID, "ordered by number")
	assert.Equal(t, 3, got[1].ID, "inactive accounts with activity are kept")

	assert.Equal(t, "1", snap.Accounts()[0].Number)
}

func TestSnapshot_Empty(t *testing.T) {
	snap := NewSnapshot(date(2025, 1, 1), nil, nil)
	assert.True(t, snap.IsEmpty())
	assert.Empty(t, snap.UnbalancedEntries())
	assert.True(t, snap.Balance(1, date(2025, 1, 1)).IsZero())
}
