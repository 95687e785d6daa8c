package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

// Snapshot is an immutable view of the chart of accounts and every POSTED
// journal line dated on or before Through. All reads against one snapshot
// observe the same ledger state.
type Snapshot struct {
	Through time.Time

	accounts []model.Account
	byID     map[int]int
	lines    map[int][]model.JournalLine
	entries  map[int][2]decimal.Decimal
	malform  []int
}

// NewSnapshot indexes accounts and posted lines. Lines dated after through
// are dropped; a zero through keeps every line. The caller must pass only
// lines whose entry is POSTED.
func NewSnapshot(through time.Time, accounts []model.Account, lines []model.JournalLine) *Snapshot {
	s := &Snapshot{
		Through:  through,
		accounts: make([]model.Account, len(accounts)),
		byID:     make(map[int]int, len(accounts)),
		lines:    make(map[int][]model.JournalLine),
		entries:  make(map[int][2]decimal.Decimal),
	}
	copy(s.accounts, accounts)
	sort.SliceStable(s.accounts, func(i, j int) bool {
		return s.accounts[i].Number < s.accounts[j].Number
	})
	for i, a := range s.accounts {
		s.byID[a.ID] = i
	}

	for _, l := range lines {
		if !through.IsZero() && !model.OnOrBefore(l.Date, through) {
			continue
		}
		s.lines[l.AccountID] = append(s.lines[l.AccountID], l)

		t := s.entries[l.JournalID]
		t[0] = t[0].Add(l.Debit)
		t[1] = t[1].Add(l.Credit)
		s.entries[l.JournalID] = t

		if l.IsMalformed() {
			s.malform = append(s.malform, l.ID)
		}
	}
	sort.Ints(s.malform)
	return s
}

// Account looks up an account by id.
func (s *Snapshot) Account(id int) (model.Account, bool) {
	i, ok := s.byID[id]
	if !ok {
		return model.Account{}, false
	}
	return s.accounts[i], true
}

// Accounts returns every account ordered by number.
func (s *Snapshot) Accounts() []model.Account {
	out := make([]model.Account, len(s.accounts))
	copy(out, s.accounts)
	return out
}

// ReportAccounts returns the accounts statements iterate over: every active
// account, plus inactive accounts that still carry lines or an opening
// balance so their amounts are not lost from the totals.
func (s *Snapshot) ReportAccounts() []model.Account {
	var out []model.Account
	for _, a := range s.accounts {
		if a.IsActive || len(s.lines[a.ID]) > 0 || !a.OpeningBalance.IsZero() {
			out = append(out, a)
		}
	}
	return out
}

// Balance returns the opening balance plus debits minus credits for lines
// dated on or before asOf, in raw debit-minus-credit polarity.
func (s *Snapshot) Balance(accountID int, asOf time.Time) decimal.Decimal {
	total := decimal.Zero
	if a, ok := s.Account(accountID); ok && a.OpeningAppliesOn(asOf) {
		total = a.RawOpeningBalance()
	}
	for _, l := range s.lines[accountID] {
		if model.OnOrBefore(l.Date, asOf) {
			total = total.Add(l.Net())
		}
	}
	return total
}

// Activity returns debits minus credits for lines dated start..end inclusive,
// without any opening balance.
func (s *Snapshot) Activity(accountID int, start, end time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.lines[accountID] {
		if model.InRange(l.Date, start, end) {
			total = total.Add(l.Net())
		}
	}
	return total
}

// Totals returns gross debit and credit line sums on or before asOf.
func (s *Snapshot) Totals(accountID int, asOf time.Time) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range s.lines[accountID] {
		if model.OnOrBefore(l.Date, asOf) {
			debit = debit.Add(l.Debit)
			credit = credit.Add(l.Credit)
		}
	}
	return debit, credit
}

// UnbalancedEntries returns the ids of posted entries whose lines in the
// snapshot do not balance within materiality.
func (s *Snapshot) UnbalancedEntries() []int {
	var out []int
	for id, t := range s.entries {
		if !model.NearlyEqual(t[0], t[1]) {
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}

// MalformedLines returns the ids of lines carrying both sides or a negative amount.
func (s *Snapshot) MalformedLines() []int {
	out := make([]int, len(s.malform))
	copy(out, s.malform)
	return out
}

// IsEmpty reports whether the snapshot has no accounts.
func (s *Snapshot) IsEmpty() bool {
	return len(s.accounts) == 0
}
