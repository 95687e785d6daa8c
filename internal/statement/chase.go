package statement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

const chaseDateFormat = "01/02/2006"

// Columns are located by header name, so their order in the export does not
// matter. Type, Balance and Check or Slip # may be absent.
var chaseRequired = []string{"posting date", "description", "amount"}

// ChaseParser parses Chase checking CSV exports. Rows come back oldest first
// whichever order the export used.
type ChaseParser struct{}

// Format returns the parser name.
func (p *ChaseParser) Format() string { return "chase" }

// Parse reads a Chase CSV with a header row.
func (p *ChaseParser) Parse(r io.Reader) ([]model.StatementTransaction, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading chase CSV header: %w", err)
	}
	cols, err := chaseColumnIndex(header)
	if err != nil {
		return nil, err
	}

	var txns []model.StatementTransaction
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading chase CSV: %w", err)
		}
		txn, err := cols.transaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		txns = append(txns, txn)
	}

	if n := len(txns); n > 1 && txns[0].Date.After(txns[n-1].Date) {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			txns[i], txns[j] = txns[j], txns[i]
		}
	}
	return txns, nil
}

type chaseIndex map[string]int

func chaseColumnIndex(header []string) (chaseIndex, error) {
	idx := make(chaseIndex, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range chaseRequired {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("chase CSV header: missing column %q", name)
		}
	}
	return idx, nil
}

// field returns the trimmed value of a named column, or "" when the export
// has no such column.
func (c chaseIndex) field(rec []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func (c chaseIndex) transaction(rec []string) (model.StatementTransaction, error) {
	raw := c.field(rec, "posting date")
	date, err := time.Parse(chaseDateFormat, raw)
	if err != nil {
		return model.StatementTransaction{}, fmt.Errorf("parsing date %q: %w", raw, err)
	}

	raw = c.field(rec, "amount")
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return model.StatementTransaction{}, fmt.Errorf("parsing amount %q: %w", raw, err)
	}

	txn := model.StatementTransaction{
		Date:        date,
		Description: c.field(rec, "description"),
		Amount:      amount,
		Type:        c.field(rec, "type"),
		Reference:   c.field(rec, "check or slip #"),
	}
	if txn.Reference == "" {
		txn.Reference = chaseRef(date, txn.Description)
	}
	if raw = c.field(rec, "balance"); raw != "" {
		bal, err := decimal.NewFromString(raw)
		if err != nil {
			return model.StatementTransaction{}, fmt.Errorf("parsing balance %q: %w", raw, err)
		}
		txn.Balance = decimal.NewNullDecimal(bal)
	}
	return txn, nil
}

// chaseRef builds a reference like chase_20250103_GITHUBPROS for rows
// without a check number.
func chaseRef(date time.Time, desc string) string {
	var b strings.Builder
	for _, r := range desc {
		if b.Len() == 10 {
			break
		}
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return "chase_" + date.Format("20060102") + "_" + b.String()
}
