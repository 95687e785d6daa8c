package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

// Header is the CSV header for chart-of-accounts.csv.
var Header = []string{
	"account_id", "number", "name", "type", "subtype", "normal_balance",
	"opening_balance", "opening_balance_date", "parent_id", "is_active", "description",
}

const (
	numFields      = 11
	dateFormat     = "2006-01-02"
	colID          = 0
	colNumber      = 1
	colName        = 2
	colType        = 3
	colSubtype     = 4
	colNormal      = 5
	colOpening     = 6
	colOpeningDate = 7
	colParent      = 8
	colActive      = 9
	colDesc        = 10
)

// ReadAccounts reads chart-of-accounts.csv.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes chart-of-accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colID] = strconv.Itoa(acct.ID)
	row[colNumber] = acct.Number
	row[colName] = acct.Name
	row[colType] = string(acct.Type)
	row[colSubtype] = acct.Subtype
	row[colNormal] = string(acct.NormalBalance)
	if !acct.OpeningBalance.IsZero() {
		row[colOpening] = acct.OpeningBalance.StringFixed(2)
	}
	if !acct.OpeningBalanceDate.IsZero() {
		row[colOpeningDate] = acct.OpeningBalanceDate.Format(dateFormat)
	}
	if acct.ParentID != 0 {
		row[colParent] = strconv.Itoa(acct.ParentID)
	}
	row[colActive] = strconv.FormatBool(acct.IsActive)
	row[colDesc] = acct.Description
	return row
}

// UnmarshalAccount converts a CSV row to an Account. An empty normal_balance
// falls back to the type's default; an empty is_active means active.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	id, err := strconv.Atoi(record[colID])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing account_id %q: %w", record[colID], err)
	}

	acctType := model.AccountType(record[colType])
	normal := model.NormalBalance(record[colNormal])
	if normal == "" {
		normal = acctType.DefaultNormalBalance()
	}

	var opening decimal.Decimal
	if record[colOpening] != "" {
		opening, err = decimal.NewFromString(record[colOpening])
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing opening_balance %q: %w", record[colOpening], err)
		}
	}

	var openingDate time.Time
	if record[colOpeningDate] != "" {
		openingDate, err = time.Parse(dateFormat, record[colOpeningDate])
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing opening_balance_date %q: %w", record[colOpeningDate], err)
		}
	}

	var parentID int
	if record[colParent] != "" {
		parentID, err = strconv.Atoi(record[colParent])
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing parent_id %q: %w", record[colParent], err)
		}
	}

	active := true
	if record[colActive] != "" {
		active, err = strconv.ParseBool(record[colActive])
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing is_active %q: %w", record[colActive], err)
		}
	}

	return model.Account{
		ID:                 id,
		Number:             record[colNumber],
		Name:               record[colName],
		Type:               acctType,
		Subtype:            record[colSubtype],
		NormalBalance:      normal,
		OpeningBalance:     opening,
		OpeningBalanceDate: openingDate,
		ParentID:           parentID,
		IsActive:           active,
		Description:        record[colDesc],
	}, nil
}
