package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryStatus represents the lifecycle state of a journal entry.
type EntryStatus string

const (
	StatusDraft  EntryStatus = "DRAFT"
	StatusPosted EntryStatus = "POSTED"
	StatusVoid   EntryStatus = "VOID"
)

// JournalEntry is the double-entry transaction unit.
type JournalEntry struct {
	ID            int
	JournalNumber string // "JE-YYYY-MM-NNN"
	Date          time.Time
	PeriodID      int
	Description   string
	JournalType   string
	Amount        decimal.Decimal
	Status        EntryStatus
	CreatedBy     string
	PostedBy      string
	PostedAt      *time.Time
	Lines         []JournalLine
}

// Totals sums debits and credits over the entry's lines.
func (e JournalEntry) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// IsBalanced reports whether the entry's debits equal its credits within 0.01.
func (e JournalEntry) IsBalanced() bool {
	d, c := e.Totals()
	return NearlyEqual(d, c)
}

// JournalLine is one side of a double entry.
type JournalLine struct {
	ID           int
	JournalID    int
	AccountID    int
	Date         time.Time
	PeriodID     int
	Debit        decimal.Decimal // zero if credit side
	Credit       decimal.Decimal // zero if debit side
	Description  string
	Reference    string
	CostCenterID int
	ProjectID    int

	// Multi-currency lines keep the foreign amounts next to the base amounts.
	CurrencyID    string
	ExchangeRate  decimal.Decimal
	ForeignDebit  decimal.Decimal
	ForeignCredit decimal.Decimal

	IsCleared        bool
	ReconciliationID *uuid.UUID
}

// Net returns debit minus credit.
func (l JournalLine) Net() decimal.Decimal {
	return l.Debit.Sub(l.Credit)
}

// IsMalformed reports lines that carry both sides, or a negative amount.
func (l JournalLine) IsMalformed() bool {
	if l.Debit.IsNegative() || l.Credit.IsNegative() {
		return true
	}
	return !l.Debit.IsZero() && !l.Credit.IsZero()
}
