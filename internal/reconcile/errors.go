package reconcile

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnbalanced is wrapped by UnbalancedError.
	ErrUnbalanced = errors.New("reconciliation does not balance")
	// ErrAlreadyCompleted is returned for any change to a COMPLETED reconciliation.
	ErrAlreadyCompleted = errors.New("reconciliation already completed")
	// ErrNotBankAccount is returned when the account cannot hold a bank balance.
	ErrNotBankAccount = errors.New("account is not an asset or liability account")
	// ErrLineNotEligible is returned when a selected line cannot be cleared
	// by this reconciliation.
	ErrLineNotEligible = errors.New("line not eligible for reconciliation")
)

// UnbalancedError reports a completion attempt whose cleared balance does not
// reach the statement ending balance.
type UnbalancedError struct {
	Difference decimal.Decimal
}

func (e *UnbalancedError) Error() string {
	return fmt.Sprintf("reconciliation does not balance: difference %s", e.Difference.StringFixed(2))
}

func (e *UnbalancedError) Unwrap() error {
	return ErrUnbalanced
}
