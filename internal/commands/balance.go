package commands

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

func newBalanceCommand(opts *globalOptions) *cobra.Command {
	var asOf, from string
	var rollup bool

	cmd := &cobra.Command{
		Use:   "balance <account-id>",
		Short: "Show an account balance, or its activity over a range with --from",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid account id %q", args[0])
			}
			end, err := parseDate(asOf)
			if err != nil {
				return err
			}
			return withRepo(cmd.Context(), opts.repoDir, func(r *repo) error {
				acct, ok := r.chart.Get(accountID)
				if !ok {
					return fmt.Errorf("account %d: %w", accountID, model.ErrNotFound)
				}

				// A rollup only sums sub-accounts of the parent's type.
				ids := []int{accountID}
				var skipped []int
				if rollup {
					for _, id := range r.chart.Descendants(accountID) {
						if child, _ := r.chart.Get(id); child.Type == acct.Type {
							ids = append(ids, id)
						} else {
							skipped = append(skipped, id)
						}
					}
				}

				calc := r.calculator()
				var raw decimal.Decimal
				label := "Balance as of " + end.Format(dateLayout)
				if from == "" {
					raw, err = calc.GetRollupBalance(cmd.Context(), ids, end)
				} else {
					start, perr := parseDate(from)
					if perr != nil {
						return perr
					}
					label = fmt.Sprintf("Activity %s to %s", start.Format(dateLayout), end.Format(dateLayout))
					raw, err = calc.GetRollupActivity(cmd.Context(), ids, start, end)
				}
				if err != nil {
					return err
				}

				display := model.DisplayAmount(acct.Type, raw)
				out := cmd.OutOrStdout()
				if opts.json {
					return writeJSON(out, map[string]any{
						"account_id": accountID,
						"rollup":     rollup,
						"number":     acct.Number,
						"name":       acct.Name,
						"raw":        raw,
						"display":    display,
						"skipped":    skipped,
					})
				}
				fmt.Fprintf(out, "%s %s\n%s: %s\n", acct.Number, acct.Name, label, money(display))
				if len(skipped) > 0 {
					fmt.Fprintf(out, "Skipped %d sub-accounts of another type: %v\n", len(skipped), skipped)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "balance or range end date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&from, "from", "", "range start date; prints activity instead of balance")
	cmd.Flags().BoolVar(&rollup, "rollup", false, "include every sub-account")
	return cmd
}
