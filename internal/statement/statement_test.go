package statement

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

const chaseHeader = "Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #\n"

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(d int) time.Time {
	return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
}

func parseTestdata(t *testing.T) []model.StatementTransaction {
	t.Helper()
	txns, err := DefaultRegistry().ParseFile("chase", "../../testdata/chase_checking.csv")
	require.NoError(t, err)
	return txns
}

func TestChaseParser_Parse(t *testing.T) {
	txns := parseTestdata(t)
	require.Len(t, txns, 6)

	assert.Equal(t, "GITHUB *PRO SUBSCRIPTION", txns[0].Description)
	assert.Equal(t, "-4.00", txns[0].Amount.StringFixed(2))
	assert.Equal(t, "ACH_DEBIT", txns[0].Type)
	assert.Equal(t, day(3), txns[0].Date)
	assert.Equal(t, "chase_20250103_GITHUBPROS", txns[0].Reference)

	assert.Equal(t, "ACME CONSULTING INVOICE 1042", txns[3].Description)
	assert.Equal(t, "3500.00", txns[3].Amount.StringFixed(2))

	assert.Equal(t, day(22), txns[5].Date)
	assert.Equal(t, "1001", txns[5].Reference, "check number is the reference")
	require.True(t, txns[5].Balance.Valid)
	assert.Equal(t, "3182.24", txns[5].Balance.Decimal.StringFixed(2))
}

func TestChaseParser_HeaderOrderAndNewestFirst(t *testing.T) {
	csv := "Amount,Description,Posting Date\n" +
		"-50.00,SAAS VENDOR,01/21/2025\n" +
		"200.00,CLIENT PAYMENT,01/11/2025\n"
	txns, err := (&ChaseParser{}).Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, day(11), txns[0].Date, "rows come back oldest first")
	assert.Equal(t, "CLIENT PAYMENT", txns[0].Description)
	assert.Equal(t, "-50.00", txns[1].Amount.StringFixed(2))
	assert.False(t, txns[0].Balance.Valid)
	assert.Empty(t, txns[0].Type)
	assert.Equal(t, "chase_20250111_CLIENTPAYM", txns[0].Reference)

	_, _, ok := ReportedBalances(txns)
	assert.False(t, ok, "no balance column")
}

func TestChaseParser_MissingColumn(t *testing.T) {
	_, err := (&ChaseParser{}).Parse(strings.NewReader("Details,Posting Date,Description\n"))
	assert.ErrorContains(t, err, `missing column "amount"`)
}

func TestReportedBalances(t *testing.T) {
	opening, closing, ok := ReportedBalances(parseTestdata(t))
	require.True(t, ok)
	assert.Equal(t, "1000.00", opening.StringFixed(2))
	assert.Equal(t, "3182.24", closing.StringFixed(2))

	_, _, ok = ReportedBalances(nil)
	assert.False(t, ok)
}

func TestChaseParser_Errors(t *testing.T) {
	tests := []struct {
		name string
		row  string
		want string
	}{
		{"bad date", "DEBIT,NOTADATE,desc,-4.00,ACH_DEBIT,100.00,\n", "parsing date"},
		{"bad amount", "DEBIT,01/03/2025,desc,NOTANUMBER,ACH_DEBIT,100.00,\n", "parsing amount"},
		{"short row", "DEBIT,01/03/2025,desc\n", "reading chase CSV"},
		{"bad balance", "DEBIT,01/03/2025,desc,-4.00,ACH_DEBIT,lots,\n", "parsing balance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&ChaseParser{}).Parse(strings.NewReader(chaseHeader + tt.row))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestChaseParser_EmptyFile(t *testing.T) {
	txns, err := (&ChaseParser{}).Parse(strings.NewReader(chaseHeader))
	require.NoError(t, err)
	assert.Nil(t, txns)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get("chase"))
	r.Register(&ChaseParser{})
	assert.NotNil(t, r.Get("CHASE"))
	assert.Panics(t, func() { r.Register(&ChaseParser{}) })

	_, err := r.ParseFile("ofx", "whatever.ofx")
	assert.ErrorContains(t, err, "unknown statement format")
	_, err = r.ParseFile("chase", filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEndingBalance(t *testing.T) {
	txns := parseTestdata(t)
	assert.Equal(t, "3182.24", EndingBalance(dec("1000"), txns).StringFixed(2))
	assert.True(t, EndingBalance(dec("12.5"), nil).Equal(dec("12.5")))
}

func TestSuggest(t *testing.T) {
	txns := []model.StatementTransaction{
		{Date: day(15), Amount: dec("3500")},
		{Date: day(3), Amount: dec("-4")},
		{Date: day(6), Amount: dec("-4")},
		{Date: day(20), Amount: dec("-99")},
	}
	lines := []model.JournalLine{
		{ID: 1, Date: day(2), Credit: dec("4")},
		{ID: 2, Date: day(7), Credit: dec("4")},
		{ID: 3, Date: day(14), Debit: dec("3500")},
		{ID: 4, Date: day(1), Debit: dec("3500")},
		{ID: 5, Date: day(28), Credit: dec("99")},
	}

	s := Suggest(lines, txns)
	require.Len(t, s.Matches, 3)
	assert.Equal(t, 1, s.Matches[0].Line.ID)
	assert.Equal(t, 1, s.Matches[0].DaysApart)
	assert.Equal(t, 2, s.Matches[1].Line.ID, "each line is used once")
	assert.Equal(t, 3, s.Matches[2].Line.ID, "closest date wins")
	assert.Equal(t, []int{1, 2, 3}, s.LineIDs())

	require.Len(t, s.Unmatched, 1)
	assert.True(t, s.Unmatched[0].Amount.Equal(dec("-99")), "outside the date window")
	require.Len(t, s.Unused, 2)
	assert.Equal(t, 4, s.Unused[0].ID)
	assert.Equal(t, 5, s.Unused[1].ID)
}

func TestSuggest_Empty(t *testing.T) {
	s := Suggest(nil, nil)
	assert.Empty(t, s.Matches)
	assert.Empty(t, s.LineIDs())
}

func TestScanAndMarkProcessed(t *testing.T) {
	dir := t.TempDir()
	files, err := Scan(dir)
	require.NoError(t, err)
	assert.Nil(t, files)

	in := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(filepath.Join(in, "processed"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(in, "jan.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(in, "notes.txt"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(in, "processed", "dec.csv"), []byte("data"), 0o644))

	files, err = Scan(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "jan.csv", files[0].Name)
	assert.Equal(t, int64(4), files[0].Size)

	require.NoError(t, MarkProcessed(dir, "jan.csv"))
	_, err = os.Stat(filepath.Join(in, "jan.csv"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(in, "processed", "jan.csv"))
	assert.NoError(t, err)

	assert.Error(t, MarkProcessed(dir, "jan.csv"))
}
