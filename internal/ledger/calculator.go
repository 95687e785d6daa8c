package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrInvalidAccountID is returned for account ids that can never exist.
var ErrInvalidAccountID = errors.New("invalid account id")

// Source produces consistent snapshots of posted ledger data.
type Source interface {
	Snapshot(ctx context.Context, through time.Time) (*Snapshot, error)
}

// Calculator answers single-account balance questions.
type Calculator struct {
	src Source
	log *zap.Logger
}

// NewCalculator creates a Calculator. A nil logger disables logging.
func NewCalculator(src Source, log *zap.Logger) *Calculator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Calculator{src: src, log: log}
}

// GetAccountBalance returns the raw debit-minus-credit balance as of asOf,
// opening balance included. Unknown accounts have a zero balance.
func (c *Calculator) GetAccountBalance(ctx context.Context, accountID int, asOf time.Time) (decimal.Decimal, error) {
	if accountID <= 0 {
		return decimal.Zero, fmt.Errorf("account %d: %w", accountID, ErrInvalidAccountID)
	}
	snap, err := c.src.Snapshot(ctx, asOf)
	if err != nil {
		return decimal.Zero, fmt.Errorf("loading ledger snapshot: %w", err)
	}
	bal := snap.Balance(accountID, asOf)
	c.log.Debug("account balance",
		zap.Int("account_id", accountID),
		zap.Time("as_of", asOf),
		zap.String("balance", bal.StringFixed(2)))
	return bal, nil
}

// GetAccountActivity returns debits minus credits dated start..end inclusive.
func (c *Calculator) GetAccountActivity(ctx context.Context, accountID int, start, end time.Time) (decimal.Decimal, error) {
	if accountID <= 0 {
		return decimal.Zero, fmt.Errorf("account %d: %w", accountID, ErrInvalidAccountID)
	}
	snap, err := c.src.Snapshot(ctx, end)
	if err != nil {
		return decimal.Zero, fmt.Errorf("loading ledger snapshot: %w", err)
	}
	return snap.Activity(accountID, start, end), nil
}

// GetRollupBalance returns the summed raw balance of accountIDs as of asOf,
// all read from one snapshot.
func (c *Calculator) GetRollupBalance(ctx context.Context, accountIDs []int, asOf time.Time) (decimal.Decimal, error) {
	return c.rollup(ctx, accountIDs, asOf, func(snap *Snapshot, id int) decimal.Decimal {
		return snap.Balance(id, asOf)
	})
}

// GetRollupActivity returns the summed activity of accountIDs dated
// start..end inclusive, all read from one snapshot.
func (c *Calculator) GetRollupActivity(ctx context.Context, accountIDs []int, start, end time.Time) (decimal.Decimal, error) {
	return c.rollup(ctx, accountIDs, end, func(snap *Snapshot, id int) decimal.Decimal {
		return snap.Activity(id, start, end)
	})
}

func (c *Calculator) rollup(ctx context.Context, accountIDs []int, through time.Time, amount func(*Snapshot, int) decimal.Decimal) (decimal.Decimal, error) {
	for _, id := range accountIDs {
		if id <= 0 {
			return decimal.Zero, fmt.Errorf("account %d: %w", id, ErrInvalidAccountID)
		}
	}
	snap, err := c.src.Snapshot(ctx, through)
	if err != nil {
		return decimal.Zero, fmt.Errorf("loading ledger snapshot: %w", err)
	}
	total := decimal.Zero
	for _, id := range accountIDs {
		total = total.Add(amount(snap, id))
	}
	return total, nil
}
