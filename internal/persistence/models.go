package persistence

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

// Money columns are text so SQLite keeps decimals exact.

type accountRow struct {
	ID                 int    `gorm:"primaryKey;autoIncrement:false"`
	Number             string `gorm:"uniqueIndex;not null"`
	Name               string `gorm:"not null"`
	Type               string `gorm:"index;not null"`
	Subtype            string
	NormalBalance      string          `gorm:"not null"`
	OpeningBalance     decimal.Decimal `gorm:"type:text;not null"`
	OpeningBalanceDate *time.Time
	ParentID           *int
	IsActive           bool
	Description        string
}

func (accountRow) TableName() string { return "accounts" }

type journalEntryRow struct {
	ID            int       `gorm:"primaryKey"`
	JournalNumber string    `gorm:"uniqueIndex;not null"`
	Date          time.Time `gorm:"index;not null"`
	PeriodID      *int
	Description   string
	JournalType   string
	Amount        decimal.Decimal `gorm:"type:text;not null"`
	Status        string          `gorm:"index;not null"`
	CreatedBy     string
	PostedBy      string
	PostedAt      *time.Time
	Lines         []journalLineRow `gorm:"foreignKey:JournalID;constraint:OnDelete:CASCADE"`
}

func (journalEntryRow) TableName() string { return "journal_entries" }

type journalLineRow struct {
	ID               int       `gorm:"primaryKey"`
	JournalID        int       `gorm:"index;not null"`
	AccountID        int       `gorm:"index;not null"`
	Date             time.Time `gorm:"index;not null"`
	PeriodID         *int
	Debit            decimal.Decimal `gorm:"type:text;not null"`
	Credit           decimal.Decimal `gorm:"type:text;not null"`
	Description      string
	Reference        string
	CostCenterID     *int
	ProjectID        *int
	CurrencyID       string
	ExchangeRate     decimal.Decimal `gorm:"type:text"`
	ForeignDebit     decimal.Decimal `gorm:"type:text"`
	ForeignCredit    decimal.Decimal `gorm:"type:text"`
	IsCleared        bool
	ReconciliationID *uuid.UUID `gorm:"type:text;index"`
}

func (journalLineRow) TableName() string { return "journal_lines" }

type reconciliationRow struct {
	ID                       uuid.UUID       `gorm:"type:text;primaryKey"`
	AccountID                int             `gorm:"index;not null"`
	StatementDate            time.Time       `gorm:"not null"`
	StatementStartingBalance decimal.Decimal `gorm:"type:text;not null"`
	StatementEndingBalance   decimal.Decimal `gorm:"type:text;not null"`
	ClearedDifference        decimal.Decimal `gorm:"type:text;not null"`
	Status                   string          `gorm:"index;not null"`
	CreatedBy                string
	CreatedAt                time.Time
	CompletedAt              *time.Time
}

func (reconciliationRow) TableName() string { return "bank_reconciliations" }

// lineStateRow is a line joined with its entry status and owner status.
type lineStateRow struct {
	journalLineRow `gorm:"embedded"`
	EntryStatus    string
	OwnerStatus    *string
}

func optInt(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func optTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func toAccountRow(a model.Account) accountRow {
	return accountRow{
		ID:                 a.ID,
		Number:             a.Number,
		Name:               a.Name,
		Type:               string(a.Type),
		Subtype:            a.Subtype,
		NormalBalance:      string(a.NormalBalance),
		OpeningBalance:     a.OpeningBalance,
		OpeningBalanceDate: optTime(a.OpeningBalanceDate),
		ParentID:           optInt(a.ParentID),
		IsActive:           a.IsActive,
		Description:        a.Description,
	}
}

func (r accountRow) toModel() model.Account {
	a := model.Account{
		ID:             r.ID,
		Number:         r.Number,
		Name:           r.Name,
		Type:           model.AccountType(r.Type),
		Subtype:        r.Subtype,
		NormalBalance:  model.NormalBalance(r.NormalBalance),
		OpeningBalance: r.OpeningBalance,
		ParentID:       derefInt(r.ParentID),
		IsActive:       r.IsActive,
		Description:    r.Description,
	}
	if r.OpeningBalanceDate != nil {
		a.OpeningBalanceDate = model.DateOnly(*r.OpeningBalanceDate)
	}
	return a
}

func toEntryRow(e model.JournalEntry) journalEntryRow {
	row := journalEntryRow{
		ID:            e.ID,
		JournalNumber: e.JournalNumber,
		Date:          model.DateOnly(e.Date),
		PeriodID:      optInt(e.PeriodID),
		Description:   e.Description,
		JournalType:   e.JournalType,
		Amount:        e.Amount,
		Status:        string(e.Status),
		CreatedBy:     e.CreatedBy,
		PostedBy:      e.PostedBy,
		PostedAt:      e.PostedAt,
		Lines:         make([]journalLineRow, len(e.Lines)),
	}
	for i, l := range e.Lines {
		row.Lines[i] = toLineRow(l)
	}
	return row
}

func (r journalEntryRow) toModel() model.JournalEntry {
	e := model.JournalEntry{
		ID:            r.ID,
		JournalNumber: r.JournalNumber,
		Date:          model.DateOnly(r.Date),
		PeriodID:      derefInt(r.PeriodID),
		Description:   r.Description,
		JournalType:   r.JournalType,
		Amount:        r.Amount,
		Status:        model.EntryStatus(r.Status),
		CreatedBy:     r.CreatedBy,
		PostedBy:      r.PostedBy,
		PostedAt:      r.PostedAt,
		Lines:         make([]model.JournalLine, len(r.Lines)),
	}
	for i, l := range r.Lines {
		e.Lines[i] = l.toModel()
	}
	return e
}

func toLineRow(l model.JournalLine) journalLineRow {
	return journalLineRow{
		ID:               l.ID,
		JournalID:        l.JournalID,
		AccountID:        l.AccountID,
		Date:             model.DateOnly(l.Date),
		PeriodID:         optInt(l.PeriodID),
		Debit:            l.Debit,
		Credit:           l.Credit,
		Description:      l.Description,
		Reference:        l.Reference,
		CostCenterID:     optInt(l.CostCenterID),
		ProjectID:        optInt(l.ProjectID),
		CurrencyID:       l.CurrencyID,
		ExchangeRate:     l.ExchangeRate,
		ForeignDebit:     l.ForeignDebit,
		ForeignCredit:    l.ForeignCredit,
		IsCleared:        l.IsCleared,
		ReconciliationID: l.ReconciliationID,
	}
}

func (r journalLineRow) toModel() model.JournalLine {
	return model.JournalLine{
		ID:               r.ID,
		JournalID:        r.JournalID,
		AccountID:        r.AccountID,
		Date:             model.DateOnly(r.Date),
		PeriodID:         derefInt(r.PeriodID),
		Debit:            r.Debit,
		Credit:           r.Credit,
		Description:      r.Description,
		Reference:        r.Reference,
		CostCenterID:     derefInt(r.CostCenterID),
		ProjectID:        derefInt(r.ProjectID),
		CurrencyID:       r.CurrencyID,
		ExchangeRate:     r.ExchangeRate,
		ForeignDebit:     r.ForeignDebit,
		ForeignCredit:    r.ForeignCredit,
		IsCleared:        r.IsCleared,
		ReconciliationID: r.ReconciliationID,
	}
}

func toReconciliationRow(r model.BankReconciliation) reconciliationRow {
	return reconciliationRow{
		ID:                       r.ID,
		AccountID:                r.AccountID,
		StatementDate:            model.DateOnly(r.StatementDate),
		StatementStartingBalance: r.StatementStartingBalance,
		StatementEndingBalance:   r.StatementEndingBalance,
		ClearedDifference:        r.ClearedDifference,
		Status:                   string(r.Status),
		CreatedBy:                r.CreatedBy,
		CreatedAt:                r.CreatedAt,
		CompletedAt:              r.CompletedAt,
	}
}

func (r reconciliationRow) toModel() model.BankReconciliation {
	return model.BankReconciliation{
		ID:                       r.ID,
		AccountID:                r.AccountID,
		StatementDate:            model.DateOnly(r.StatementDate),
		StatementStartingBalance: r.StatementStartingBalance,
		StatementEndingBalance:   r.StatementEndingBalance,
		ClearedDifference:        r.ClearedDifference,
		Status:                   model.ReconciliationStatus(r.Status),
		CreatedBy:                r.CreatedBy,
		CreatedAt:                r.CreatedAt,
		CompletedAt:              r.CompletedAt,
	}
}
