package journal

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

// fakeStore is a minimal in-memory Store.
type fakeStore struct {
	mu      sync.Mutex
	entries map[int]model.JournalEntry
	nextID  int
	nextLn  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[int]model.JournalEntry)}
}

func (f *fakeStore) CreateEntry(_ context.Context, e *model.JournalEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	e.ID = f.nextID
	for i := range e.Lines {
		f.nextLn++
		e.Lines[i].ID = f.nextLn
		e.Lines[i].JournalID = e.ID
	}
	f.entries[e.ID] = *e
	return nil
}

func (f *fakeStore) GetEntry(_ context.Context, id int) (model.JournalEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok {
		return model.JournalEntry{}, fmt.Errorf("entry %d: %w", id, model.ErrNotFound)
	}
	return e, nil
}

func (f *fakeStore) UpdateEntry(_ context.Context, e model.JournalEntry, from model.EntryStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, ok := f.entries[e.ID]
	if !ok {
		return model.ErrNotFound
	}
	if old.Status != from {
		return fmt.Errorf("entry %d is %s: %w", e.ID, old.Status, ErrInvalidTransition)
	}
	e.Lines = old.Lines
	f.entries[e.ID] = e
	return nil
}

func (f *fakeStore) JournalNumbers(_ context.Context, year, month int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := fmt.Sprintf("JE-%04d-%02d-", year, month)
	var out []string
	for _, e := range f.entries {
		if strings.HasPrefix(e.JournalNumber, prefix) {
			out = append(out, e.JournalNumber)
		}
	}
	return out, nil
}

var fixedNow = time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC)

func newTestService() (*Service, *fakeStore) {
	store := newFakeStore()
	return NewService(store, defaultAccounts, WithClock(func() time.Time { return fixedNow })), store
}

func TestAddDouble(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	entry, err := svc.AddDouble(ctx, AddDoubleParams{
		Date:          date(2025, 1, 15),
		Description:   "GitHub subscription",
		DebitAccount:  5020,
		CreditAccount: 1010,
		Amount:        dec("4.00"),
		CreatedBy:     "owner",
	})
	require.NoError(t, err)
	assert.Equal(t, "JE-2025-01-001", entry.JournalNumber)
	assert.Equal(t, model.StatusPosted, entry.Status)
	assert.Equal(t, "owner", entry.PostedBy)
	require.NotNil(t, entry.PostedAt)
	assert.Equal(t, fixedNow, *entry.PostedAt)
	assert.True(t, entry.Amount.Equal(dec("4")))
	require.Len(t, entry.Lines, 2)
	assert.True(t, entry.Lines[0].Debit.Equal(dec("4.00")))
	assert.True(t, entry.Lines[1].Credit.Equal(dec("4.00")))
	assert.Equal(t, date(2025, 1, 15), entry.Lines[0].Date, "lines inherit the entry date")

	second, err := svc.AddDouble(ctx, AddDoubleParams{
		Date:          date(2025, 1, 20),
		DebitAccount:  5020,
		CreditAccount: 1010,
		Amount:        dec("20.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "JE-2025-01-002", second.JournalNumber)

	feb, err := svc.AddDouble(ctx, AddDoubleParams{
		Date:          date(2025, 2, 1),
		DebitAccount:  5020,
		CreditAccount: 1010,
		Amount:        dec("1.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "JE-2025-02-001", feb.JournalNumber, "sequence restarts each month")
}

func TestAddDouble_Rejects(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	_, err := svc.AddDouble(ctx, AddDoubleParams{
		Date: date(2025, 1, 15), DebitAccount: 9999, CreditAccount: 1010, Amount: dec("4.00"),
	})
	require.Error(t, err)
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.Has(RuleUnknownAccount))

	_, err = svc.AddDouble(ctx, AddDoubleParams{
		Date: date(2025, 1, 15), DebitAccount: 5020, CreditAccount: 1010, Amount: dec("0"),
	})
	require.Error(t, err)

	_, err = svc.AddDouble(ctx, AddDoubleParams{
		DebitAccount: 5020, CreditAccount: 1010, Amount: dec("1"),
	})
	require.Error(t, err, "date is required")

	assert.Empty(t, store.entries, "nothing stored on rejection")
}

func TestCreateDraftThenPost(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	draft, err := svc.Create(ctx, CreateParams{
		Date:        date(2025, 3, 5),
		Description: "Split sale",
		Lines: []model.JournalLine{
			{AccountID: 1010, Debit: dec("500.00")},
			{AccountID: 4010, Credit: dec("300.00")},
			{AccountID: 4010, Credit: dec("150.00")},
		},
	})
	require.NoError(t, err, "drafts may be out of balance")
	assert.Equal(t, model.StatusDraft, draft.Status)
	assert.Nil(t, draft.PostedAt)

	_, err = svc.Post(ctx, draft.ID, "owner")
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.True(t, verrs.Has(RuleUnbalanced))
	for _, ve := range verrs {
		if ve.Rule == RuleUnbalanced {
			assert.True(t, ve.Difference.Equal(dec("50")))
		}
	}
}

func TestCreate_RejectsStructuralErrors(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Create(context.Background(), CreateParams{
		Date:  date(2025, 3, 5),
		Lines: []model.JournalLine{{AccountID: 1010, Debit: dec("5"), Credit: dec("5")}},
	})
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.Has(RuleBothSides))
}

func TestPost_InvalidTransition(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	entry, err := svc.AddDouble(ctx, AddDoubleParams{
		Date: date(2025, 1, 15), DebitAccount: 5020, CreditAccount: 1010, Amount: dec("4.00"),
	})
	require.NoError(t, err)

	_, err = svc.Post(ctx, entry.ID, "owner")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.Post(ctx, 999, "owner")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestVoid(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	entry, err := svc.AddDouble(ctx, AddDoubleParams{
		Date: date(2025, 1, 15), DebitAccount: 5020, CreditAccount: 1010, Amount: dec("4.00"),
	})
	require.NoError(t, err)

	voided, err := svc.Void(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusVoid, voided.Status)
	assert.Equal(t, model.StatusVoid, store.entries[entry.ID].Status)

	_, err = svc.Void(ctx, entry.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

// interleavedStore runs afterGet once, right after the next GetEntry, to
// stand in for a writer that lands between the read and the update.
type interleavedStore struct {
	*fakeStore
	afterGet func()
}

func (s *interleavedStore) GetEntry(ctx context.Context, id int) (model.JournalEntry, error) {
	e, err := s.fakeStore.GetEntry(ctx, id)
	if hook := s.afterGet; hook != nil {
		s.afterGet = nil
		hook()
	}
	return e, err
}

func (f *fakeStore) setStatus(id int, status model.EntryStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := f.entries[id]
	e.Status = status
	f.entries[id] = e
}

func TestPost_LosesToConcurrentVoid(t *testing.T) {
	base := newFakeStore()
	store := &interleavedStore{fakeStore: base}
	svc := NewService(store, defaultAccounts, WithClock(func() time.Time { return fixedNow }))
	ctx := context.Background()

	draft, err := svc.Create(ctx, CreateParams{
		Date: date(2025, 3, 5),
		Lines: []model.JournalLine{
			{AccountID: 1010, Debit: dec("20")},
			{AccountID: 4010, Credit: dec("20")},
		},
	})
	require.NoError(t, err)

	store.afterGet = func() { base.setStatus(draft.ID, model.StatusVoid) }
	_, err = svc.Post(ctx, draft.ID, "owner")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, model.StatusVoid, base.entries[draft.ID].Status, "the void stands")
	assert.Nil(t, base.entries[draft.ID].PostedAt)
}

func TestVoid_LosesToConcurrentPost(t *testing.T) {
	base := newFakeStore()
	store := &interleavedStore{fakeStore: base}
	svc := NewService(store, defaultAccounts)
	ctx := context.Background()

	draft, err := svc.Create(ctx, CreateParams{
		Date: date(2025, 3, 5),
		Lines: []model.JournalLine{
			{AccountID: 1010, Debit: dec("20")},
			{AccountID: 4010, Credit: dec("20")},
		},
	})
	require.NoError(t, err)

	store.afterGet = func() { base.setStatus(draft.ID, model.StatusPosted) }
	_, err = svc.Void(ctx, draft.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, model.StatusPosted, base.entries[draft.ID].Status)
}

func TestImport(t *testing.T) {
	svc, _ := newTestService()
	entries := []model.JournalEntry{
		balancedEntry(5020, 1010, "10.00"),
		balancedEntry(1010, 4010, "25.00"),
	}

	done, err := svc.Import(context.Background(), entries, "import", true)
	require.NoError(t, err)
	require.Len(t, done, 2)
	assert.Equal(t, "JE-2025-01-001", done[0].JournalNumber)
	assert.Equal(t, "JE-2025-01-002", done[1].JournalNumber)
	assert.Equal(t, model.StatusPosted, done[1].Status)
}
