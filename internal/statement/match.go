package statement

import (
	"sort"
	"time"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

// MatchWindowDays is how far apart a statement row and a ledger line may be
// dated and still be suggested as the same movement.
const MatchWindowDays = 3

// Match pairs a statement row with the ledger line it most likely clears.
type Match struct {
	Transaction model.StatementTransaction
	Line        model.JournalLine
	DaysApart   int
}

// Suggestion is the result of matching a statement against uncleared lines.
type Suggestion struct {
	Matches   []Match
	Unmatched []model.StatementTransaction
	// Unused holds ledger lines no statement row claimed.
	Unused []model.JournalLine
}

// LineIDs returns the ids of the matched lines, ready to be saved on a
// reconciliation.
func (s Suggestion) LineIDs() []int {
	ids := make([]int, len(s.Matches))
	for i, m := range s.Matches {
		ids[i] = m.Line.ID
	}
	return ids
}

// Suggest matches statement rows to uncleared lines of a bank account. A line
// matches a row when its debit-minus-credit equals the row amount and the two
// dates are within MatchWindowDays; the closest date wins and each line is
// used at most once. Rows are considered in date order.
func Suggest(lines []model.JournalLine, txns []model.StatementTransaction) Suggestion {
	rows := make([]model.StatementTransaction, len(txns))
	copy(rows, txns)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

	used := make([]bool, len(lines))
	var out Suggestion
	for _, t := range rows {
		best, bestDays := -1, 0
		for i, l := range lines {
			if used[i] || !model.NearlyEqual(l.Net(), t.Amount) {
				continue
			}
			days := daysApart(l.Date, t.Date)
			if days > MatchWindowDays {
				continue
			}
			if best < 0 || days < bestDays || days == bestDays && l.ID < lines[best].ID {
				best, bestDays = i, days
			}
		}
		if best < 0 {
			out.Unmatched = append(out.Unmatched, t)
			continue
		}
		used[best] = true
		out.Matches = append(out.Matches, Match{Transaction: t, Line: lines[best], DaysApart: bestDays})
	}
	for i, l := range lines {
		if !used[i] {
			out.Unused = append(out.Unused, l)
		}
	}
	return out
}

func daysApart(a, b time.Time) int {
	d := int(model.DateOnly(a).Sub(model.DateOnly(b)).Hours() / 24)
	if d < 0 {
		return -d
	}
	return d
}
