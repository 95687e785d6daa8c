package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerbook/internal/accounts"
	"github.com/cleared-dev/ledgerbook/internal/model"
)

func newAccountsCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Chart of accounts",
	}
	cmd.AddCommand(newAccountsListCommand(opts))
	return cmd
}

func newAccountsListCommand(opts *globalOptions) *cobra.Command {
	var all bool
	var asOf string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts as a tree with balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			date, err := parseDate(asOf)
			if err != nil {
				return err
			}
			return withRepo(cmd.Context(), opts.repoDir, func(r *repo) error {
				snap, err := r.store.Snapshot(cmd.Context(), date)
				if err != nil {
					return err
				}

				type row struct {
					model.Account
					Depth   int
					Balance string
				}
				var rows []row
				accounts.Walk(r.chart.Tree(), func(n *accounts.Node) {
					if !all && !n.Account.IsActive {
						return
					}
					bal := model.DisplayAmount(n.Account.Type, snap.Balance(n.Account.ID, date))
					rows = append(rows, row{Account: n.Account, Depth: n.Depth, Balance: money(bal)})
				})

				out := cmd.OutOrStdout()
				if opts.json {
					return writeJSON(out, rows)
				}
				tw := newTable(out)
				fmt.Fprintln(tw, "ID\tNUMBER\tNAME\tTYPE\tSUBTYPE\tBALANCE")
				for _, a := range rows {
					name := strings.Repeat("  ", a.Depth) + a.Name
					if !a.IsActive {
						name += " (inactive)"
					}
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", a.ID, a.Number, name, a.Type, a.Subtype, a.Balance)
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include inactive accounts")
	cmd.Flags().StringVar(&asOf, "as-of", "", "balance date (YYYY-MM-DD, default today)")
	return cmd
}
