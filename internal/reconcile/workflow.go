// Package reconcile matches posted journal lines against a bank statement and
// records the result. A reconciliation is saved as a DRAFT at any difference
// and may be COMPLETED only once the difference is zero; completed
// reconciliations never change again.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

// Line is a journal line with the state needed to decide whether it may be
// cleared. OwnerStatus is empty when the line is not linked.
type Line struct {
	model.JournalLine
	EntryStatus model.EntryStatus
	OwnerStatus model.ReconciliationStatus
}

// Store is the persistence the workflow needs. SaveReconciliation must apply
// the record and every line link in one atomic unit: lines previously linked
// to the record are released, then lineIDs are linked and marked cleared.
// Within that unit it refuses, with ErrLineNotEligible, any line whose entry
// is not posted or that another reconciliation holds.
type Store interface {
	GetAccount(ctx context.Context, id int) (model.Account, error)
	UnclearedLines(ctx context.Context, accountID int, through time.Time) ([]model.JournalLine, error)
	LinesByID(ctx context.Context, ids []int) ([]Line, error)
	LinesForReconciliation(ctx context.Context, id uuid.UUID) ([]model.JournalLine, error)
	GetReconciliation(ctx context.Context, id uuid.UUID) (model.BankReconciliation, error)
	SaveReconciliation(ctx context.Context, rec model.BankReconciliation, lineIDs []int) error
	DeleteReconciliation(ctx context.Context, id uuid.UUID) error
}

// Request describes one statement period and the lines the user marked cleared.
// A zero ID starts a new reconciliation.
type Request struct {
	ID                       uuid.UUID
	AccountID                int       `validate:"gt=0"`
	StatementDate            time.Time `validate:"required"`
	StatementStartingBalance decimal.Decimal
	StatementEndingBalance   decimal.Decimal
	LineIDs                  []int  `validate:"dive,gt=0"`
	CreatedBy                string `validate:"max=100"`
}

// ClearedBalance is the outcome of applying the selected lines to the
// statement's starting balance.
type ClearedBalance struct {
	ClearedDebits  decimal.Decimal
	ClearedCredits decimal.Decimal
	ClearedBalance decimal.Decimal
	Difference     decimal.Decimal
}

// IsBalanced reports whether the difference is below materiality.
func (c ClearedBalance) IsBalanced() bool {
	return !model.IsMaterial(c.Difference)
}

// ComputeClearedBalance returns starting + Σdebit - Σcredit over lines, and
// the difference from the statement's ending balance.
func ComputeClearedBalance(starting, ending decimal.Decimal, lines []model.JournalLine) ClearedBalance {
	cb := ClearedBalance{ClearedDebits: decimal.Zero, ClearedCredits: decimal.Zero}
	for _, l := range lines {
		cb.ClearedDebits = cb.ClearedDebits.Add(l.Debit)
		cb.ClearedCredits = cb.ClearedCredits.Add(l.Credit)
	}
	cb.ClearedBalance = starting.Add(cb.ClearedDebits).Sub(cb.ClearedCredits)
	cb.Difference = ending.Sub(cb.ClearedBalance)
	return cb
}

// Workflow drives bank reconciliation.
type Workflow struct {
	store    Store
	validate *validator.Validate
	log      *zap.Logger
	now      func() time.Time
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithLogger sets the workflow logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Workflow) { w.log = l }
}

// WithClock overrides the clock used for createdAt and completedAt.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

// NewWorkflow creates a Workflow.
func NewWorkflow(store Store, opts ...Option) *Workflow {
	w := &Workflow{
		store:    store,
		validate: validator.New(),
		log:      zap.NewNop(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// LoadUnclearedLines returns the account's posted lines dated on or before
// statementDate that no completed reconciliation owns.
func (w *Workflow) LoadUnclearedLines(ctx context.Context, accountID int, statementDate time.Time) ([]model.JournalLine, error) {
	if _, err := w.bankAccount(ctx, accountID); err != nil {
		return nil, err
	}
	lines, err := w.store.UnclearedLines(ctx, accountID, statementDate)
	if err != nil {
		return nil, fmt.Errorf("loading uncleared lines for account %d: %w", accountID, err)
	}
	return lines, nil
}

// SaveDraft stores the reconciliation as DRAFT and links the selected lines,
// whatever the difference.
func (w *Workflow) SaveDraft(ctx context.Context, req Request) (model.BankReconciliation, ClearedBalance, error) {
	return w.save(ctx, req, model.ReconciliationDraft)
}

// Complete stores the reconciliation as COMPLETED. It fails with an
// *UnbalancedError, and changes nothing, unless the difference is zero.
func (w *Workflow) Complete(ctx context.Context, req Request) (model.BankReconciliation, ClearedBalance, error) {
	return w.save(ctx, req, model.ReconciliationCompleted)
}

func (w *Workflow) save(ctx context.Context, req Request, status model.ReconciliationStatus) (model.BankReconciliation, ClearedBalance, error) {
	if err := w.validate.Struct(req); err != nil {
		return model.BankReconciliation{}, ClearedBalance{}, fmt.Errorf("invalid reconciliation: %w", err)
	}
	if _, err := w.bankAccount(ctx, req.AccountID); err != nil {
		return model.BankReconciliation{}, ClearedBalance{}, err
	}

	rec := model.BankReconciliation{
		ID:        req.ID,
		AccountID: req.AccountID,
		CreatedBy: req.CreatedBy,
		CreatedAt: w.now(),
	}
	if req.ID != uuid.Nil {
		existing, err := w.store.GetReconciliation(ctx, req.ID)
		switch {
		case err == nil:
			if existing.IsCompleted() {
				return model.BankReconciliation{}, ClearedBalance{}, fmt.Errorf("saving %s: %w", req.ID, ErrAlreadyCompleted)
			}
			if existing.AccountID != req.AccountID {
				return model.BankReconciliation{}, ClearedBalance{}, fmt.Errorf("reconciliation %s belongs to account %d, not %d", req.ID, existing.AccountID, req.AccountID)
			}
			rec.CreatedAt = existing.CreatedAt
			if existing.CreatedBy != "" {
				rec.CreatedBy = existing.CreatedBy
			}
		case errors.Is(err, model.ErrNotFound):
		default:
			return model.BankReconciliation{}, ClearedBalance{}, fmt.Errorf("loading reconciliation %s: %w", req.ID, err)
		}
	} else {
		rec.ID = uuid.New()
	}

	ids := uniqueIDs(req.LineIDs)
	lines, err := w.eligibleLines(ctx, rec.ID, req, ids)
	if err != nil {
		return model.BankReconciliation{}, ClearedBalance{}, err
	}

	cb := ComputeClearedBalance(req.StatementStartingBalance, req.StatementEndingBalance, lines)
	if status == model.ReconciliationCompleted && !cb.IsBalanced() {
		w.log.Warn("reconciliation not balanced",
			zap.String("id", rec.ID.String()),
			zap.Int("account_id", req.AccountID),
			zap.String("difference", cb.Difference.StringFixed(2)))
		return model.BankReconciliation{}, cb, &UnbalancedError{Difference: cb.Difference}
	}

	rec.StatementDate = model.DateOnly(req.StatementDate)
	rec.StatementStartingBalance = req.StatementStartingBalance
	rec.StatementEndingBalance = req.StatementEndingBalance
	rec.ClearedDifference = cb.Difference
	rec.Status = status
	if status == model.ReconciliationCompleted {
		completed := w.now()
		rec.CompletedAt = &completed
	}

	if err := w.store.SaveReconciliation(ctx, rec, ids); err != nil {
		return model.BankReconciliation{}, ClearedBalance{}, fmt.Errorf("saving reconciliation %s: %w", rec.ID, err)
	}
	w.log.Info("reconciliation saved",
		zap.String("id", rec.ID.String()),
		zap.String("status", string(rec.Status)),
		zap.Int("lines", len(ids)),
		zap.String("difference", cb.Difference.StringFixed(2)))
	return rec, cb, nil
}

// Get returns a reconciliation and the lines it has cleared.
func (w *Workflow) Get(ctx context.Context, id uuid.UUID) (model.BankReconciliation, []model.JournalLine, error) {
	rec, err := w.store.GetReconciliation(ctx, id)
	if err != nil {
		return model.BankReconciliation{}, nil, fmt.Errorf("loading reconciliation %s: %w", id, err)
	}
	lines, err := w.store.LinesForReconciliation(ctx, id)
	if err != nil {
		return model.BankReconciliation{}, nil, fmt.Errorf("loading lines for reconciliation %s: %w", id, err)
	}
	return rec, lines, nil
}

// Delete removes a DRAFT reconciliation and releases its lines.
func (w *Workflow) Delete(ctx context.Context, id uuid.UUID) error {
	rec, err := w.store.GetReconciliation(ctx, id)
	if err != nil {
		return fmt.Errorf("loading reconciliation %s: %w", id, err)
	}
	if rec.IsCompleted() {
		return fmt.Errorf("deleting %s: %w", id, ErrAlreadyCompleted)
	}
	if err := w.store.DeleteReconciliation(ctx, id); err != nil {
		return fmt.Errorf("deleting reconciliation %s: %w", id, err)
	}
	w.log.Info("reconciliation deleted", zap.String("id", id.String()))
	return nil
}

func (w *Workflow) bankAccount(ctx context.Context, accountID int) (model.Account, error) {
	acct, err := w.store.GetAccount(ctx, accountID)
	if err != nil {
		return model.Account{}, fmt.Errorf("loading account %d: %w", accountID, err)
	}
	if acct.Type != model.AccountTypeAsset && acct.Type != model.AccountTypeLiability {
		return model.Account{}, fmt.Errorf("account %d (%s): %w", accountID, acct.Type, ErrNotBankAccount)
	}
	return acct, nil
}

// eligibleLines loads the selected lines and checks each one may be cleared
// by reconciliation recID.
func (w *Workflow) eligibleLines(ctx context.Context, recID uuid.UUID, req Request, ids []int) ([]model.JournalLine, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := w.store.LinesByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading selected lines: %w", err)
	}

	byID := make(map[int]Line, len(found))
	for _, l := range found {
		byID[l.ID] = l
	}

	lines := make([]model.JournalLine, 0, len(ids))
	for _, lineID := range ids {
		l, ok := byID[lineID]
		switch {
		case !ok:
			return nil, fmt.Errorf("line %d does not exist: %w", lineID, ErrLineNotEligible)
		case l.AccountID != req.AccountID:
			return nil, fmt.Errorf("line %d is on account %d: %w", lineID, l.AccountID, ErrLineNotEligible)
		case l.EntryStatus != model.StatusPosted:
			return nil, fmt.Errorf("line %d entry is %s: %w", lineID, l.EntryStatus, ErrLineNotEligible)
		case !model.OnOrBefore(l.Date, req.StatementDate):
			return nil, fmt.Errorf("line %d dated after the statement: %w", lineID, ErrLineNotEligible)
		case l.ReconciliationID != nil && *l.ReconciliationID != recID && l.OwnerStatus == model.ReconciliationCompleted:
			return nil, fmt.Errorf("line %d already reconciled by %s: %w", lineID, *l.ReconciliationID, ErrLineNotEligible)
		case l.ReconciliationID != nil && *l.ReconciliationID != recID:
			return nil, fmt.Errorf("line %d held by draft %s: %w", lineID, *l.ReconciliationID, ErrLineNotEligible)
		}
		lines = append(lines, l.JournalLine)
	}
	return lines, nil
}

func uniqueIDs(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}
