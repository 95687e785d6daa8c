package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

// Header is the CSV header for journal line import and export. Rows that share
// a journal_number form one entry.
var Header = []string{
	"journal_number", "date", "account_id", "description", "debit", "credit",
	"reference", "cost_center_id", "project_id",
}

const (
	numFields     = 9
	dateFormat    = "2006-01-02"
	colNumber     = 0
	colDate       = 1
	colAcctID     = 2
	colDesc       = 3
	colDebit      = 4
	colCredit     = 5
	colRef        = 6
	colCostCenter = 7
	colProject    = 8
)

// ReadEntries reads journal lines and groups them into entries in the order
// their journal numbers first appear. Each entry takes its date and
// description from its first line.
func ReadEntries(r io.Reader) ([]model.JournalEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading journal CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var entries []model.JournalEntry
	index := make(map[string]int)
	for i, rec := range records[1:] {
		number, line, err := UnmarshalLine(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if number == "" {
			return nil, fmt.Errorf("row %d: journal_number is required", i+2)
		}

		pos, ok := index[number]
		if !ok {
			pos = len(entries)
			index[number] = pos
			entries = append(entries, model.JournalEntry{
				JournalNumber: number,
				Date:          line.Date,
				Description:   line.Description,
			})
		}
		entries[pos].Lines = append(entries[pos].Lines, line)
	}
	return entries, nil
}

// WriteEntries writes the lines of every entry (including header).
func WriteEntries(w io.Writer, entries []model.JournalEntry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	row := 2
	for _, e := range entries {
		for _, line := range e.Lines {
			if err := cw.Write(MarshalLine(e.JournalNumber, line)); err != nil {
				return fmt.Errorf("writing row %d: %w", row, err)
			}
			row++
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalLine converts a line to a CSV row.
func MarshalLine(journalNumber string, line model.JournalLine) []string {
	row := make([]string, numFields)
	row[colNumber] = journalNumber
	row[colDate] = line.Date.Format(dateFormat)
	row[colAcctID] = strconv.Itoa(line.AccountID)
	row[colDesc] = line.Description

	if !line.Debit.IsZero() {
		row[colDebit] = line.Debit.StringFixed(2)
	}
	if !line.Credit.IsZero() {
		row[colCredit] = line.Credit.StringFixed(2)
	}

	row[colRef] = line.Reference
	if line.CostCenterID != 0 {
		row[colCostCenter] = strconv.Itoa(line.CostCenterID)
	}
	if line.ProjectID != 0 {
		row[colProject] = strconv.Itoa(line.ProjectID)
	}
	return row
}

// UnmarshalLine converts a CSV row to a journal number and line.
func UnmarshalLine(record []string) (string, model.JournalLine, error) {
	if len(record) != numFields {
		return "", model.JournalLine{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return "", model.JournalLine{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	accountID, err := strconv.Atoi(record[colAcctID])
	if err != nil {
		return "", model.JournalLine{}, fmt.Errorf("parsing account_id %q: %w", record[colAcctID], err)
	}

	var debit, credit decimal.Decimal

	if record[colDebit] != "" {
		debit, err = decimal.NewFromString(record[colDebit])
		if err != nil {
			return "", model.JournalLine{}, fmt.Errorf("parsing debit %q: %w", record[colDebit], err)
		}
	}

	if record[colCredit] != "" {
		credit, err = decimal.NewFromString(record[colCredit])
		if err != nil {
			return "", model.JournalLine{}, fmt.Errorf("parsing credit %q: %w", record[colCredit], err)
		}
	}

	costCenter, err := optionalInt(record[colCostCenter])
	if err != nil {
		return "", model.JournalLine{}, fmt.Errorf("parsing cost_center_id %q: %w", record[colCostCenter], err)
	}
	project, err := optionalInt(record[colProject])
	if err != nil {
		return "", model.JournalLine{}, fmt.Errorf("parsing project_id %q: %w", record[colProject], err)
	}

	return record[colNumber], model.JournalLine{
		AccountID:    accountID,
		Date:         date,
		Debit:        debit,
		Credit:       credit,
		Description:  record[colDesc],
		Reference:    record[colRef],
		CostCenterID: costCenter,
		ProjectID:    project,
	}, nil
}

func optionalInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
