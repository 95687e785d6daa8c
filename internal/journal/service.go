package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/ledgerbook/internal/id"
	"github.com/cleared-dev/ledgerbook/internal/model"
)

// ErrInvalidTransition is returned when an entry's status does not allow the
// requested change.
var ErrInvalidTransition = errors.New("invalid status transition")

// Store persists journal entries. CreateEntry assigns ids to the entry and
// its lines. UpdateEntry writes the header fields only, and only while the
// stored status is still from; otherwise it fails with ErrInvalidTransition.
// A move to VOID also fails while any line is linked to a reconciliation.
type Store interface {
	CreateEntry(ctx context.Context, entry *model.JournalEntry) error
	GetEntry(ctx context.Context, id int) (model.JournalEntry, error)
	UpdateEntry(ctx context.Context, entry model.JournalEntry, from model.EntryStatus) error
	JournalNumbers(ctx context.Context, year, month int) ([]string, error)
}

// Service provides business logic for journal entries.
type Service struct {
	store    Store
	accounts AccountChecker
	validate *validator.Validate
	log      *zap.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock overrides the clock used for postedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a journal Service.
func NewService(store Store, accounts AccountChecker, opts ...Option) *Service {
	s := &Service{
		store:    store,
		accounts: accounts,
		validate: validator.New(),
		log:      zap.NewNop(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CreateParams holds parameters for a new draft entry.
type CreateParams struct {
	Date        time.Time `validate:"required"`
	Description string    `validate:"max=500"`
	JournalType string
	PeriodID    int
	CreatedBy   string
	Lines       []model.JournalLine
}

// Create stores a DRAFT entry under the next journal number for its month.
// Drafts may be out of balance; every other rule is enforced.
func (s *Service) Create(ctx context.Context, params CreateParams) (model.JournalEntry, error) {
	if err := s.validate.Struct(params); err != nil {
		return model.JournalEntry{}, fmt.Errorf("invalid entry: %w", err)
	}

	year, month := params.Date.Year(), int(params.Date.Month())
	numbers, err := s.store.JournalNumbers(ctx, year, month)
	if err != nil {
		return model.JournalEntry{}, fmt.Errorf("listing journal numbers: %w", err)
	}

	entry := model.JournalEntry{
		JournalNumber: id.FormatJournalNumber(year, month, id.NextSeq(numbers, year, month)),
		Date:          model.DateOnly(params.Date),
		PeriodID:      params.PeriodID,
		Description:   params.Description,
		JournalType:   params.JournalType,
		Status:        model.StatusDraft,
		CreatedBy:     params.CreatedBy,
		Lines:         make([]model.JournalLine, len(params.Lines)),
	}
	for i, line := range params.Lines {
		if line.Date.IsZero() {
			line.Date = entry.Date
		}
		if line.PeriodID == 0 {
			line.PeriodID = entry.PeriodID
		}
		line.IsCleared = false
		line.ReconciliationID = nil
		entry.Lines[i] = line
	}
	entry.Amount, _ = entry.Totals()

	if verrs := ValidateEntry(entry, s.accounts).withoutRule(RuleUnbalanced); len(verrs) > 0 {
		return model.JournalEntry{}, verrs
	}

	if err := s.store.CreateEntry(ctx, &entry); err != nil {
		return model.JournalEntry{}, fmt.Errorf("creating entry %s: %w", entry.JournalNumber, err)
	}
	s.log.Debug("journal entry created",
		zap.String("journal_number", entry.JournalNumber),
		zap.Int("lines", len(entry.Lines)))
	return entry, nil
}

// Post moves a DRAFT entry to POSTED after re-validating it in full.
func (s *Service) Post(ctx context.Context, entryID int, postedBy string) (model.JournalEntry, error) {
	entry, err := s.store.GetEntry(ctx, entryID)
	if err != nil {
		return model.JournalEntry{}, fmt.Errorf("loading entry %d: %w", entryID, err)
	}
	if entry.Status != model.StatusDraft {
		return model.JournalEntry{}, fmt.Errorf("posting %s (status %s): %w", entry.JournalNumber, entry.Status, ErrInvalidTransition)
	}

	debit, _ := entry.Totals()
	entry.Amount = debit
	if verrs := ValidateEntry(entry, s.accounts); len(verrs) > 0 {
		s.log.Warn("journal entry rejected",
			zap.String("journal_number", entry.JournalNumber),
			zap.Error(verrs))
		return model.JournalEntry{}, verrs
	}

	now := s.now()
	entry.Status = model.StatusPosted
	entry.PostedBy = postedBy
	entry.PostedAt = &now
	if err := s.store.UpdateEntry(ctx, entry, model.StatusDraft); err != nil {
		return model.JournalEntry{}, fmt.Errorf("posting %s: %w", entry.JournalNumber, err)
	}
	s.log.Info("journal entry posted",
		zap.String("journal_number", entry.JournalNumber),
		zap.String("amount", entry.Amount.StringFixed(2)))
	return entry, nil
}

// Void retires an entry. Voided entries drop out of every balance.
func (s *Service) Void(ctx context.Context, entryID int) (model.JournalEntry, error) {
	entry, err := s.store.GetEntry(ctx, entryID)
	if err != nil {
		return model.JournalEntry{}, fmt.Errorf("loading entry %d: %w", entryID, err)
	}
	if entry.Status == model.StatusVoid {
		return model.JournalEntry{}, fmt.Errorf("voiding %s: %w", entry.JournalNumber, ErrInvalidTransition)
	}
	for _, line := range entry.Lines {
		if line.ReconciliationID != nil {
			return model.JournalEntry{}, fmt.Errorf("voiding %s: line %d is reconciled: %w", entry.JournalNumber, line.ID, ErrInvalidTransition)
		}
	}

	from := entry.Status
	entry.Status = model.StatusVoid
	if err := s.store.UpdateEntry(ctx, entry, from); err != nil {
		return model.JournalEntry{}, fmt.Errorf("voiding %s: %w", entry.JournalNumber, err)
	}
	s.log.Info("journal entry voided", zap.String("journal_number", entry.JournalNumber))
	return entry, nil
}

// AddDoubleParams holds parameters for creating a double-entry journal entry.
type AddDoubleParams struct {
	Date          time.Time
	Description   string
	DebitAccount  int
	CreditAccount int
	Amount        decimal.Decimal
	Reference     string
	CreatedBy     string
}

// AddDouble creates and posts a two-line entry (debit + credit).
func (s *Service) AddDouble(ctx context.Context, params AddDoubleParams) (model.JournalEntry, error) {
	if !params.Amount.IsPositive() {
		return model.JournalEntry{}, fmt.Errorf("amount %s must be positive", params.Amount)
	}

	draft, err := s.Create(ctx, CreateParams{
		Date:        params.Date,
		Description: params.Description,
		JournalType: "GENERAL",
		CreatedBy:   params.CreatedBy,
		Lines: []model.JournalLine{
			{AccountID: params.DebitAccount, Debit: params.Amount, Description: params.Description, Reference: params.Reference},
			{AccountID: params.CreditAccount, Credit: params.Amount, Description: params.Description, Reference: params.Reference},
		},
	})
	if err != nil {
		return model.JournalEntry{}, err
	}
	return s.Post(ctx, draft.ID, params.CreatedBy)
}

// Import creates every entry as a draft and, when post is set, posts it.
// It stops at the first failure and returns the entries stored so far.
func (s *Service) Import(ctx context.Context, entries []model.JournalEntry, user string, post bool) ([]model.JournalEntry, error) {
	var done []model.JournalEntry
	for _, e := range entries {
		created, err := s.Create(ctx, CreateParams{
			Date:        e.Date,
			Description: e.Description,
			JournalType: e.JournalType,
			PeriodID:    e.PeriodID,
			CreatedBy:   user,
			Lines:       e.Lines,
		})
		if err != nil {
			return done, fmt.Errorf("importing %s: %w", e.JournalNumber, err)
		}
		if post {
			created, err = s.Post(ctx, created.ID, user)
			if err != nil {
				return done, fmt.Errorf("importing %s: %w", e.JournalNumber, err)
			}
		}
		done = append(done, created)
	}
	return done, nil
}
