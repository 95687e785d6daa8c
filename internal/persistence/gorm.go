package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cleared-dev/ledgerbook/internal/id"
	"github.com/cleared-dev/ledgerbook/internal/journal"
	"github.com/cleared-dev/ledgerbook/internal/ledger"
	"github.com/cleared-dev/ledgerbook/internal/logger"
	"github.com/cleared-dev/ledgerbook/internal/model"
	"github.com/cleared-dev/ledgerbook/internal/reconcile"
)

// GormStore persists the ledger through gorm.
type GormStore struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) the SQLite database at path and migrates it.
// Use ":memory:" for a throwaway database.
func OpenSQLite(path string, log *zap.Logger, logLevel string) (*GormStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.NewGormLogger(log, logger.GormLevel(logLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting database handle: %w", err)
	}
	// One connection: SQLite has a single writer and every ":memory:"
	// connection would otherwise be a separate database.
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	return NewGormStore(db)
}

// NewGormStore wraps db and migrates the schema.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&accountRow{}, &journalEntryRow{}, &journalLineRow{}, &reconciliationRow{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Close releases the database handle.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SeedAccounts inserts accounts, replacing any with the same id.
func (s *GormStore) SeedAccounts(ctx context.Context, accounts []model.Account) error {
	if len(accounts) == 0 {
		return nil
	}
	rows := make([]accountRow, len(accounts))
	for i, a := range accounts {
		rows[i] = toAccountRow(a)
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("seeding accounts: %w", err)
	}
	return nil
}

// Accounts returns every account ordered by number.
func (s *GormStore) Accounts(ctx context.Context) ([]model.Account, error) {
	return loadAccounts(s.db.WithContext(ctx))
}

func loadAccounts(tx *gorm.DB) ([]model.Account, error) {
	var rows []accountRow
	if err := tx.Order("number").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}
	out := make([]model.Account, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// GetAccount returns one account.
func (s *GormStore) GetAccount(ctx context.Context, accountID int) (model.Account, error) {
	var row accountRow
	err := s.db.WithContext(ctx).First(&row, accountID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Account{}, fmt.Errorf("account %d: %w", accountID, model.ErrNotFound)
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("loading account %d: %w", accountID, err)
	}
	return row.toModel(), nil
}

// Snapshot implements ledger.Source. Accounts and posted lines are read in
// one transaction.
func (s *GormStore) Snapshot(ctx context.Context, through time.Time) (*ledger.Snapshot, error) {
	var (
		accounts []model.Account
		lines    []model.JournalLine
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		accounts, err = loadAccounts(tx)
		if err != nil {
			return err
		}

		q := postedLines(tx)
		if !through.IsZero() {
			q = q.Where("journal_lines.date < ?", model.DateOnly(through).AddDate(0, 0, 1))
		}
		var rows []journalLineRow
		if err := q.Find(&rows).Error; err != nil {
			return fmt.Errorf("loading posted lines: %w", err)
		}
		lines = make([]model.JournalLine, len(rows))
		for i, r := range rows {
			lines[i] = r.toModel()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ledger.NewSnapshot(through, accounts, lines), nil
}

func postedLines(tx *gorm.DB) *gorm.DB {
	return tx.Model(&journalLineRow{}).
		Select("journal_lines.*").
		Joins("JOIN journal_entries ON journal_entries.id = journal_lines.journal_id").
		Where("journal_entries.status = ?", string(model.StatusPosted))
}

// CreateEntry implements journal.Store. The entry and its lines are inserted
// in one transaction.
func (s *GormStore) CreateEntry(ctx context.Context, entry *model.JournalEntry) error {
	row := toEntryRow(*entry)
	row.ID = 0
	for i := range row.Lines {
		row.Lines[i].ID = 0
		row.Lines[i].JournalID = 0
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&row).Error
	})
	if err != nil {
		return fmt.Errorf("inserting entry %s: %w", entry.JournalNumber, err)
	}

	entry.ID = row.ID
	for i := range entry.Lines {
		entry.Lines[i].ID = row.Lines[i].ID
		entry.Lines[i].JournalID = row.ID
	}
	return nil
}

// GetEntry implements journal.Store.
func (s *GormStore) GetEntry(ctx context.Context, entryID int) (model.JournalEntry, error) {
	var row journalEntryRow
	err := s.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&row, entryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.JournalEntry{}, fmt.Errorf("entry %d: %w", entryID, model.ErrNotFound)
	}
	if err != nil {
		return model.JournalEntry{}, fmt.Errorf("loading entry %d: %w", entryID, err)
	}
	return row.toModel(), nil
}

// UpdateEntry implements journal.Store. The status guard is part of the
// UPDATE, so a concurrent transition makes it match no row.
func (s *GormStore) UpdateEntry(ctx context.Context, entry model.JournalEntry, from model.EntryStatus) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&journalEntryRow{}).Where("id = ? AND status = ?", entry.ID, string(from))
		if entry.Status == model.StatusVoid {
			q = q.Where("NOT EXISTS (SELECT 1 FROM journal_lines WHERE journal_lines.journal_id = journal_entries.id AND journal_lines.reconciliation_id IS NOT NULL)")
		}
		res := q.Select("status", "amount", "posted_by", "posted_at").
			Updates(journalEntryRow{
				Status:   string(entry.Status),
				Amount:   entry.Amount,
				PostedBy: entry.PostedBy,
				PostedAt: entry.PostedAt,
			})
		if res.Error != nil {
			return fmt.Errorf("updating entry %d: %w", entry.ID, res.Error)
		}
		if res.RowsAffected == 1 {
			return nil
		}

		var current journalEntryRow
		err := tx.Select("id", "status").First(&current, entry.ID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("entry %d: %w", entry.ID, model.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("loading entry %d: %w", entry.ID, err)
		}
		if current.Status != string(from) {
			return fmt.Errorf("entry %d is %s, not %s: %w", entry.ID, current.Status, from, journal.ErrInvalidTransition)
		}
		return fmt.Errorf("entry %d has reconciled lines: %w", entry.ID, journal.ErrInvalidTransition)
	})
}

// JournalNumbers implements journal.Store.
func (s *GormStore) JournalNumbers(ctx context.Context, year, month int) ([]string, error) {
	var numbers []string
	err := s.db.WithContext(ctx).
		Model(&journalEntryRow{}).
		Where("journal_number LIKE ?", id.MonthPrefix(year, month)+"%").
		Pluck("journal_number", &numbers).Error
	if err != nil {
		return nil, fmt.Errorf("listing journal numbers: %w", err)
	}
	return numbers, nil
}

// ListEntries returns every entry ordered by date, then id.
func (s *GormStore) ListEntries(ctx context.Context) ([]model.JournalEntry, error) {
	var rows []journalEntryRow
	err := s.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("date, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	out := make([]model.JournalEntry, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// UnclearedLines implements reconcile.Store.
func (s *GormStore) UnclearedLines(ctx context.Context, accountID int, through time.Time) ([]model.JournalLine, error) {
	completed := s.db.Model(&reconciliationRow{}).
		Select("id").
		Where("status = ?", string(model.ReconciliationCompleted))

	var rows []journalLineRow
	err := postedLines(s.db.WithContext(ctx)).
		Where("journal_lines.account_id = ?", accountID).
		Where("journal_lines.date < ?", model.DateOnly(through).AddDate(0, 0, 1)).
		Where("(journal_lines.reconciliation_id IS NULL OR journal_lines.reconciliation_id NOT IN (?))", completed).
		Order("journal_lines.date, journal_lines.id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("loading uncleared lines: %w", err)
	}
	return lineModels(rows), nil
}

// LinesByID implements reconcile.Store. Unknown ids are skipped.
func (s *GormStore) LinesByID(ctx context.Context, ids []int) ([]reconcile.Line, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []lineStateRow
	err := s.db.WithContext(ctx).
		Table("journal_lines").
		Select("journal_lines.*, journal_entries.status AS entry_status, bank_reconciliations.status AS owner_status").
		Joins("JOIN journal_entries ON journal_entries.id = journal_lines.journal_id").
		Joins("LEFT JOIN bank_reconciliations ON bank_reconciliations.id = journal_lines.reconciliation_id").
		Where("journal_lines.id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("loading lines: %w", err)
	}

	out := make([]reconcile.Line, len(rows))
	for i, r := range rows {
		out[i] = reconcile.Line{
			JournalLine: r.journalLineRow.toModel(),
			EntryStatus: model.EntryStatus(r.EntryStatus),
		}
		if r.OwnerStatus != nil {
			out[i].OwnerStatus = model.ReconciliationStatus(*r.OwnerStatus)
		}
	}
	return out, nil
}

// LinesForReconciliation implements reconcile.Store.
func (s *GormStore) LinesForReconciliation(ctx context.Context, recID uuid.UUID) ([]model.JournalLine, error) {
	var rows []journalLineRow
	err := s.db.WithContext(ctx).
		Where("reconciliation_id = ?", recID).
		Order("date, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("loading reconciled lines: %w", err)
	}
	return lineModels(rows), nil
}

// GetReconciliation implements reconcile.Store.
func (s *GormStore) GetReconciliation(ctx context.Context, recID uuid.UUID) (model.BankReconciliation, error) {
	return getReconciliation(s.db.WithContext(ctx), recID)
}

func getReconciliation(tx *gorm.DB, recID uuid.UUID) (model.BankReconciliation, error) {
	var row reconciliationRow
	err := tx.Where("id = ?", recID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.BankReconciliation{}, fmt.Errorf("reconciliation %s: %w", recID, model.ErrNotFound)
	}
	if err != nil {
		return model.BankReconciliation{}, fmt.Errorf("loading reconciliation %s: %w", recID, err)
	}
	return row.toModel(), nil
}

// ListReconciliations returns the account's reconciliations, newest
// statement first.
func (s *GormStore) ListReconciliations(ctx context.Context, accountID int) ([]model.BankReconciliation, error) {
	var rows []reconciliationRow
	err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("statement_date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing reconciliations: %w", err)
	}
	out := make([]model.BankReconciliation, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// SaveReconciliation implements reconcile.Store. The record upsert, the
// release of previously linked lines, and the linking of lineIDs commit or
// roll back together. A line is linked only while its entry is posted and no
// other reconciliation holds it.
func (s *GormStore) SaveReconciliation(ctx context.Context, rec model.BankReconciliation, lineIDs []int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := getReconciliation(tx, rec.ID)
		switch {
		case err == nil && existing.IsCompleted():
			return fmt.Errorf("reconciliation %s: %w", rec.ID, reconcile.ErrAlreadyCompleted)
		case err != nil && !errors.Is(err, model.ErrNotFound):
			return err
		}

		row := toReconciliationRow(rec)
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
			return fmt.Errorf("writing reconciliation: %w", err)
		}

		if err := releaseLines(tx, rec.ID); err != nil {
			return err
		}

		if len(lineIDs) == 0 {
			return nil
		}
		var found int64
		if err := tx.Model(&journalLineRow{}).Where("id IN ?", lineIDs).Count(&found).Error; err != nil {
			return fmt.Errorf("counting lines: %w", err)
		}
		if found != int64(len(lineIDs)) {
			return fmt.Errorf("found %d of %d lines: %w", found, len(lineIDs), model.ErrNotFound)
		}

		posted := tx.Model(&journalEntryRow{}).
			Select("id").
			Where("status = ?", string(model.StatusPosted))
		res := tx.Model(&journalLineRow{}).
			Where("id IN ?", lineIDs).
			Where("reconciliation_id IS NULL").
			Where("journal_id IN (?)", posted).
			Updates(map[string]any{"is_cleared": true, "reconciliation_id": rec.ID})
		if res.Error != nil {
			return fmt.Errorf("marking lines cleared: %w", res.Error)
		}
		if res.RowsAffected != int64(len(lineIDs)) {
			return fmt.Errorf("%d of %d lines are held elsewhere or unposted: %w",
				int64(len(lineIDs))-res.RowsAffected, len(lineIDs), reconcile.ErrLineNotEligible)
		}
		return nil
	})
}

// DeleteReconciliation implements reconcile.Store. Linked lines are released.
func (s *GormStore) DeleteReconciliation(ctx context.Context, recID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := getReconciliation(tx, recID)
		if err != nil {
			return err
		}
		if existing.IsCompleted() {
			return fmt.Errorf("reconciliation %s: %w", recID, reconcile.ErrAlreadyCompleted)
		}
		if err := releaseLines(tx, recID); err != nil {
			return err
		}
		if err := tx.Where("id = ?", recID).Delete(&reconciliationRow{}).Error; err != nil {
			return fmt.Errorf("deleting reconciliation: %w", err)
		}
		return nil
	})
}

func releaseLines(tx *gorm.DB, recID uuid.UUID) error {
	err := tx.Model(&journalLineRow{}).
		Where("reconciliation_id = ?", recID).
		Updates(map[string]any{"is_cleared": false, "reconciliation_id": nil}).Error
	if err != nil {
		return fmt.Errorf("releasing cleared lines: %w", err)
	}
	return nil
}

func lineModels(rows []journalLineRow) []model.JournalLine {
	out := make([]model.JournalLine, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out
}
