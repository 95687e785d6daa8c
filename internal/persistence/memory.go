// Package persistence implements the stores the engine reads from and writes
// to: an in-memory store and a gorm store over SQLite.
package persistence

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cleared-dev/ledgerbook/internal/id"
	"github.com/cleared-dev/ledgerbook/internal/journal"
	"github.com/cleared-dev/ledgerbook/internal/ledger"
	"github.com/cleared-dev/ledgerbook/internal/model"
	"github.com/cleared-dev/ledgerbook/internal/reconcile"
)

// MemoryStore keeps the ledger in memory behind a single RWMutex, so each
// read sees whole entries and each write lands as one unit.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[int]model.Account
	entries  map[int]*model.JournalEntry
	lineRefs map[int]lineRef
	recs     map[uuid.UUID]model.BankReconciliation
	nextID   int
	nextLine int
}

type lineRef struct {
	entryID int
	index   int
}

// NewMemoryStore creates a store seeded with accounts.
func NewMemoryStore(accounts []model.Account) *MemoryStore {
	s := &MemoryStore{
		accounts: make(map[int]model.Account, len(accounts)),
		entries:  make(map[int]*model.JournalEntry),
		lineRefs: make(map[int]lineRef),
		recs:     make(map[uuid.UUID]model.BankReconciliation),
	}
	for _, a := range accounts {
		s.accounts[a.ID] = a
	}
	return s
}

// SeedAccounts inserts or replaces accounts.
func (s *MemoryStore) SeedAccounts(_ context.Context, accounts []model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range accounts {
		s.accounts[a.ID] = a
	}
	return nil
}

// Accounts returns every account ordered by number.
func (s *MemoryStore) Accounts(_ context.Context) ([]model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedAccounts(), nil
}

func (s *MemoryStore) sortedAccounts() []model.Account {
	out := make([]model.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// GetAccount returns one account.
func (s *MemoryStore) GetAccount(_ context.Context, accountID int) (model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return model.Account{}, fmt.Errorf("account %d: %w", accountID, model.ErrNotFound)
	}
	return a, nil
}

// Snapshot implements ledger.Source.
func (s *MemoryStore) Snapshot(_ context.Context, through time.Time) (*ledger.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var lines []model.JournalLine
	for _, e := range s.entries {
		if e.Status != model.StatusPosted {
			continue
		}
		lines = append(lines, e.Lines...)
	}
	return ledger.NewSnapshot(through, s.sortedAccounts(), lines), nil
}

// CreateEntry implements journal.Store.
func (s *MemoryStore) CreateEntry(_ context.Context, entry *model.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.JournalNumber == entry.JournalNumber {
			return fmt.Errorf("journal number %s already exists", entry.JournalNumber)
		}
	}

	s.nextID++
	entry.ID = s.nextID
	for i := range entry.Lines {
		s.nextLine++
		entry.Lines[i].ID = s.nextLine
		entry.Lines[i].JournalID = entry.ID
		s.lineRefs[entry.Lines[i].ID] = lineRef{entryID: entry.ID, index: i}
	}
	stored := cloneEntry(*entry)
	s.entries[entry.ID] = &stored
	return nil
}

// GetEntry implements journal.Store.
func (s *MemoryStore) GetEntry(_ context.Context, entryID int) (model.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[entryID]
	if !ok {
		return model.JournalEntry{}, fmt.Errorf("entry %d: %w", entryID, model.ErrNotFound)
	}
	return cloneEntry(*e), nil
}

// UpdateEntry implements journal.Store. Only header fields change.
func (s *MemoryStore) UpdateEntry(_ context.Context, entry model.JournalEntry, from model.EntryStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[entry.ID]
	if !ok {
		return fmt.Errorf("entry %d: %w", entry.ID, model.ErrNotFound)
	}
	if e.Status != from {
		return fmt.Errorf("entry %d is %s, not %s: %w", entry.ID, e.Status, from, journal.ErrInvalidTransition)
	}
	if entry.Status == model.StatusVoid {
		for _, l := range e.Lines {
			if l.ReconciliationID != nil {
				return fmt.Errorf("entry %d line %d is reconciled: %w", entry.ID, l.ID, journal.ErrInvalidTransition)
			}
		}
	}
	e.Status = entry.Status
	e.Amount = entry.Amount
	e.PostedBy = entry.PostedBy
	e.PostedAt = entry.PostedAt
	return nil
}

// JournalNumbers implements journal.Store.
func (s *MemoryStore) JournalNumbers(_ context.Context, year, month int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prefix := id.MonthPrefix(year, month)
	var out []string
	for _, e := range s.entries {
		if strings.HasPrefix(e.JournalNumber, prefix) {
			out = append(out, e.JournalNumber)
		}
	}
	return out, nil
}

// ListEntries returns every entry ordered by date, then id.
func (s *MemoryStore) ListEntries(_ context.Context) ([]model.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.JournalEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, cloneEntry(*e))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// UnclearedLines implements reconcile.Store.
func (s *MemoryStore) UnclearedLines(_ context.Context, accountID int, through time.Time) ([]model.JournalLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.JournalLine
	for _, e := range s.entries {
		if e.Status != model.StatusPosted {
			continue
		}
		for _, l := range e.Lines {
			if l.AccountID != accountID || !model.OnOrBefore(l.Date, through) {
				continue
			}
			if l.ReconciliationID != nil && s.recs[*l.ReconciliationID].IsCompleted() {
				continue
			}
			out = append(out, cloneLine(l))
		}
	}
	sortLines(out)
	return out, nil
}

// LinesByID implements reconcile.Store. Unknown ids are skipped.
func (s *MemoryStore) LinesByID(_ context.Context, ids []int) ([]reconcile.Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]reconcile.Line, 0, len(ids))
	for _, lineID := range ids {
		ref, ok := s.lineRefs[lineID]
		if !ok {
			continue
		}
		e := s.entries[ref.entryID]
		l := reconcile.Line{JournalLine: cloneLine(e.Lines[ref.index]), EntryStatus: e.Status}
		if l.ReconciliationID != nil {
			l.OwnerStatus = s.recs[*l.ReconciliationID].Status
		}
		out = append(out, l)
	}
	return out, nil
}

// LinesForReconciliation implements reconcile.Store.
func (s *MemoryStore) LinesForReconciliation(_ context.Context, recID uuid.UUID) ([]model.JournalLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.JournalLine
	for _, e := range s.entries {
		for _, l := range e.Lines {
			if l.ReconciliationID != nil && *l.ReconciliationID == recID {
				out = append(out, cloneLine(l))
			}
		}
	}
	sortLines(out)
	return out, nil
}

// GetReconciliation implements reconcile.Store.
func (s *MemoryStore) GetReconciliation(_ context.Context, recID uuid.UUID) (model.BankReconciliation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.recs[recID]
	if !ok {
		return model.BankReconciliation{}, fmt.Errorf("reconciliation %s: %w", recID, model.ErrNotFound)
	}
	return r, nil
}

// ListReconciliations returns the account's reconciliations, newest
// statement first.
func (s *MemoryStore) ListReconciliations(_ context.Context, accountID int) ([]model.BankReconciliation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.BankReconciliation
	for _, r := range s.recs {
		if r.AccountID == accountID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StatementDate.After(out[j].StatementDate) })
	return out, nil
}

// SaveReconciliation implements reconcile.Store. Every line id is checked
// before anything changes: it must exist, belong to a posted entry, and be
// free or already linked to rec.
func (s *MemoryStore) SaveReconciliation(_ context.Context, rec model.BankReconciliation, lineIDs []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.recs[rec.ID]; ok && old.IsCompleted() {
		return fmt.Errorf("reconciliation %s: %w", rec.ID, reconcile.ErrAlreadyCompleted)
	}
	for _, lineID := range lineIDs {
		ref, ok := s.lineRefs[lineID]
		if !ok {
			return fmt.Errorf("line %d: %w", lineID, model.ErrNotFound)
		}
		e := s.entries[ref.entryID]
		if e.Status != model.StatusPosted {
			return fmt.Errorf("line %d entry is %s: %w", lineID, e.Status, reconcile.ErrLineNotEligible)
		}
		if owner := e.Lines[ref.index].ReconciliationID; owner != nil && *owner != rec.ID {
			return fmt.Errorf("line %d held by reconciliation %s: %w", lineID, *owner, reconcile.ErrLineNotEligible)
		}
	}

	s.releaseLines(rec.ID)
	recID := rec.ID
	for _, lineID := range lineIDs {
		ref := s.lineRefs[lineID]
		l := &s.entries[ref.entryID].Lines[ref.index]
		l.IsCleared = true
		l.ReconciliationID = &recID
	}
	s.recs[rec.ID] = rec
	return nil
}

// DeleteReconciliation implements reconcile.Store.
func (s *MemoryStore) DeleteReconciliation(_ context.Context, recID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recs[recID]
	if !ok {
		return fmt.Errorf("reconciliation %s: %w", recID, model.ErrNotFound)
	}
	if r.IsCompleted() {
		return fmt.Errorf("reconciliation %s: %w", recID, reconcile.ErrAlreadyCompleted)
	}
	s.releaseLines(recID)
	delete(s.recs, recID)
	return nil
}

func (s *MemoryStore) releaseLines(recID uuid.UUID) {
	for _, e := range s.entries {
		for i := range e.Lines {
			l := &e.Lines[i]
			if l.ReconciliationID != nil && *l.ReconciliationID == recID {
				l.IsCleared = false
				l.ReconciliationID = nil
			}
		}
	}
}

func cloneEntry(e model.JournalEntry) model.JournalEntry {
	if e.PostedAt != nil {
		t := *e.PostedAt
		e.PostedAt = &t
	}
	lines := make([]model.JournalLine, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = cloneLine(l)
	}
	e.Lines = lines
	return e
}

func cloneLine(l model.JournalLine) model.JournalLine {
	if l.ReconciliationID != nil {
		rid := *l.ReconciliationID
		l.ReconciliationID = &rid
	}
	return l
}

func sortLines(lines []model.JournalLine) {
	sort.Slice(lines, func(i, j int) bool {
		if !lines[i].Date.Equal(lines[j].Date) {
			return lines[i].Date.Before(lines[j].Date)
		}
		return lines[i].ID < lines[j].ID
	})
}
