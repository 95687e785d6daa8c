package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReconciliationStatus is DRAFT until the statement balances, then COMPLETED.
type ReconciliationStatus string

const (
	ReconciliationDraft     ReconciliationStatus = "DRAFT"
	ReconciliationCompleted ReconciliationStatus = "COMPLETED"
)

// BankReconciliation records one statement period for a bank account. The
// cleared lines point back at it through JournalLine.ReconciliationID.
type BankReconciliation struct {
	ID                       uuid.UUID
	AccountID                int
	StatementDate            time.Time
	StatementStartingBalance decimal.Decimal
	StatementEndingBalance   decimal.Decimal
	ClearedDifference        decimal.Decimal
	Status                   ReconciliationStatus
	CreatedBy                string
	CreatedAt                time.Time
	CompletedAt              *time.Time
}

// IsCompleted reports whether the reconciliation is closed.
func (r BankReconciliation) IsCompleted() bool {
	return r.Status == ReconciliationCompleted
}

// StatementTransaction is one row parsed from a bank statement export.
type StatementTransaction struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal     // negative = money out, positive = money in
	Balance     decimal.NullDecimal // running balance after the row, when the bank reports one
	Reference   string
	Type        string // bank transaction type (ACH_DEBIT, etc.)
}
