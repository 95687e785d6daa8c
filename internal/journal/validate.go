package journal

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

// Rule names the check a ValidationError failed.
type Rule string

const (
	RuleNoLines        Rule = "no_lines"
	RuleNegativeAmount Rule = "negative_amount"
	RuleBothSides      Rule = "both_sides"
	RuleNoSide         Rule = "no_side"
	RuleUnknownAccount Rule = "unknown_account"
	RulePrecision      Rule = "precision"
	RuleUnbalanced     Rule = "unbalanced"
)

// ValidationError describes a single violation. Line is 1-based; 0 means the
// violation is about the entry as a whole.
type ValidationError struct {
	Rule          Rule
	JournalNumber string
	Line          int
	Description   string
	Difference    decimal.Decimal
}

func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s [%s line %d]: %s", e.Rule, e.JournalNumber, e.Line, e.Description)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Rule, e.JournalNumber, e.Description)
}

// ValidationErrors is every violation found in one entry.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, ve := range errs {
		msgs[i] = ve.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Has reports whether any violation matches rule.
func (errs ValidationErrors) Has(rule Rule) bool {
	for _, ve := range errs {
		if ve.Rule == rule {
			return true
		}
	}
	return false
}

// AccountChecker tests whether an account ID exists in the chart of accounts.
type AccountChecker interface {
	Exists(id int) bool
}

// ValidateEntry checks an entry against the double-entry rules and returns
// every violation found.
func ValidateEntry(entry model.JournalEntry, accounts AccountChecker) ValidationErrors {
	var errs ValidationErrors
	num := entry.JournalNumber

	if len(entry.Lines) == 0 {
		errs = append(errs, ValidationError{
			Rule:          RuleNoLines,
			JournalNumber: num,
			Description:   "entry has no lines",
		})
	}

	if entry.Amount.IsNegative() {
		errs = append(errs, ValidationError{
			Rule:          RuleNegativeAmount,
			JournalNumber: num,
			Description:   fmt.Sprintf("entry amount %s is negative", entry.Amount.StringFixed(2)),
		})
	}

	for i, line := range entry.Lines {
		n := i + 1
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			errs = append(errs, ValidationError{
				Rule:          RuleNegativeAmount,
				JournalNumber: num,
				Line:          n,
				Description:   fmt.Sprintf("debit %s / credit %s must not be negative", line.Debit.StringFixed(2), line.Credit.StringFixed(2)),
			})
		}

		hasDebit := !line.Debit.IsZero()
		hasCredit := !line.Credit.IsZero()
		switch {
		case hasDebit && hasCredit:
			errs = append(errs, ValidationError{
				Rule:          RuleBothSides,
				JournalNumber: num,
				Line:          n,
				Description:   "line must not carry both a debit and a credit",
			})
		case !hasDebit && !hasCredit:
			errs = append(errs, ValidationError{
				Rule:          RuleNoSide,
				JournalNumber: num,
				Line:          n,
				Description:   "line must carry a debit or a credit",
			})
		}

		if accounts != nil && !accounts.Exists(line.AccountID) {
			errs = append(errs, ValidationError{
				Rule:          RuleUnknownAccount,
				JournalNumber: num,
				Line:          n,
				Description:   fmt.Sprintf("unknown account %d", line.AccountID),
			})
		}

		if !line.Debit.Equal(line.Debit.Round(2)) || !line.Credit.Equal(line.Credit.Round(2)) {
			errs = append(errs, ValidationError{
				Rule:          RulePrecision,
				JournalNumber: num,
				Line:          n,
				Description:   fmt.Sprintf("amount %s/%s has more than 2 decimal places", line.Debit, line.Credit),
			})
		}
	}

	debit, credit := entry.Totals()
	if !model.NearlyEqual(debit, credit) {
		errs = append(errs, ValidationError{
			Rule:          RuleUnbalanced,
			JournalNumber: num,
			Description:   fmt.Sprintf("debits (%s) != credits (%s)", debit.StringFixed(2), credit.StringFixed(2)),
			Difference:    debit.Sub(credit),
		})
	}

	return errs
}

// withoutRule drops violations of one rule.
func (errs ValidationErrors) withoutRule(rule Rule) ValidationErrors {
	var out ValidationErrors
	for _, ve := range errs {
		if ve.Rule != rule {
			out = append(out, ve)
		}
	}
	return out
}
