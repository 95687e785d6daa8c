package journal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

func TestEntriesRoundTrip(t *testing.T) {
	entries := []model.JournalEntry{
		balancedEntry(5020, 1010, "4.00"),
		{
			JournalNumber: "JE-2025-01-002",
			Date:          date(2025, 1, 20),
			Description:   "Invoice 17",
			Lines: []model.JournalLine{
				{AccountID: 1100, Date: date(2025, 1, 20), Debit: dec("1200.50"), Description: "Invoice 17", Reference: "INV-17", ProjectID: 3},
				{AccountID: 4010, Date: date(2025, 1, 20), Credit: dec("1200.50"), Description: "Invoice 17", CostCenterID: 2},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteEntries(&buf, entries))

	got, err := ReadEntries(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "JE-2025-01-002", got[1].JournalNumber)
	assert.Equal(t, "Invoice 17", got[1].Description)
	require.Len(t, got[1].Lines, 2)
	assert.True(t, got[1].Lines[0].Debit.Equal(dec("1200.50")))
	assert.Equal(t, "INV-17", got[1].Lines[0].Reference)
	assert.Equal(t, 3, got[1].Lines[0].ProjectID)
	assert.Equal(t, 2, got[1].Lines[1].CostCenterID)
	assert.True(t, got[1].Lines[1].Debit.IsZero())
}

func TestReadEntries_GroupsInterleavedRows(t *testing.T) {
	input := strings.Join([]string{
		strings.Join(Header, ","),
		"A,2025-01-02,1010,Sale,100.00,,,,",
		"B,2025-01-03,5020,SaaS,9.00,,,,",
		"A,2025-01-02,4010,Sale,,100.00,,,",
		"B,2025-01-03,1010,SaaS,,9.00,,,",
	}, "\n")

	got, err := ReadEntries(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].JournalNumber)
	assert.Len(t, got[0].Lines, 2)
	assert.True(t, got[0].IsBalanced())
	assert.Equal(t, date(2025, 1, 3), got[1].Date)
}

func TestReadEntries_Errors(t *testing.T) {
	header := strings.Join(Header, ",")
	tests := []struct {
		name string
		row  string
	}{
		{"bad date", "A,01/02/2025,1010,x,1.00,,,,"},
		{"bad account", "A,2025-01-02,cash,x,1.00,,,,"},
		{"bad debit", "A,2025-01-02,1010,x,abc,,,,"},
		{"bad project", "A,2025-01-02,1010,x,1.00,,,,p"},
		{"missing number", ",2025-01-02,1010,x,1.00,,,,"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadEntries(strings.NewReader(header + "\n" + tt.row))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "row 2")
		})
	}
}

func TestReadEntries_Empty(t *testing.T) {
	got, err := ReadEntries(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, got)
}
