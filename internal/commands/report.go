package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerbook/internal/model"
	"github.com/cleared-dev/ledgerbook/internal/report"
)

func newReportCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate financial statements",
	}
	cmd.AddCommand(
		newTrialBalanceCommand(opts),
		newBalanceSheetCommand(opts),
		newIncomeStatementCommand(opts),
		newCashFlowCommand(opts),
		newReportAllCommand(opts),
	)
	return cmd
}

func newTrialBalanceCommand(opts *globalOptions) *cobra.Command {
	var asOf string
	cmd := &cobra.Command{
		Use:   "trial-balance",
		Short: "Trial balance as of a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			date, err := parseDate(asOf)
			if err != nil {
				return err
			}
			return withGenerator(cmd, opts, func(g *report.Generator) error {
				tb, err := g.GenerateTrialBalance(cmd.Context(), date)
				if err != nil {
					return err
				}
				if opts.json {
					return writeJSON(cmd.OutOrStdout(), tb)
				}
				return printTrialBalance(cmd.OutOrStdout(), tb)
			})
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "report date (YYYY-MM-DD, default today)")
	return cmd
}

func newBalanceSheetCommand(opts *globalOptions) *cobra.Command {
	var asOf string
	cmd := &cobra.Command{
		Use:   "balance-sheet",
		Short: "Balance sheet as of a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			date, err := parseDate(asOf)
			if err != nil {
				return err
			}
			return withGenerator(cmd, opts, func(g *report.Generator) error {
				bs, err := g.GenerateBalanceSheet(cmd.Context(), date)
				if err != nil {
					return err
				}
				if opts.json {
					return writeJSON(cmd.OutOrStdout(), bs)
				}
				return printBalanceSheet(cmd.OutOrStdout(), bs)
			})
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "report date (YYYY-MM-DD, default today)")
	return cmd
}

// periodFlags is the --from/--to pair shared by the period statements.
type periodFlags struct {
	from, to string
}

func (p *periodFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.from, "from", "", "period start (YYYY-MM-DD, default fiscal year start)")
	cmd.Flags().StringVar(&p.to, "to", "", "period end (YYYY-MM-DD, default today)")
}

func (p *periodFlags) resolve(g *report.Generator) (start, end time.Time, err error) {
	end, err = parseDate(p.to)
	if err != nil {
		return
	}
	if p.from == "" {
		start, end = g.PeriodToDate(end)
		return
	}
	start, err = parseDate(p.from)
	if err == nil && start.After(end) {
		err = fmt.Errorf("--from %s is after --to %s", p.from, end.Format(dateLayout))
	}
	return
}

func newIncomeStatementCommand(opts *globalOptions) *cobra.Command {
	var period periodFlags
	cmd := &cobra.Command{
		Use:   "income-statement",
		Short: "Income statement over a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withGenerator(cmd, opts, func(g *report.Generator) error {
				start, end, err := period.resolve(g)
				if err != nil {
					return err
				}
				is, err := g.GenerateIncomeStatement(cmd.Context(), start, end)
				if err != nil {
					return err
				}
				if opts.json {
					return writeJSON(cmd.OutOrStdout(), is)
				}
				return printIncomeStatement(cmd.OutOrStdout(), is)
			})
		},
	}
	period.register(cmd)
	return cmd
}

// cashFlowFlags adds the caller-supplied investing and financing items.
type cashFlowFlags struct {
	periodFlags
	investing []string
	financing []string
}

func (c *cashFlowFlags) register(cmd *cobra.Command) {
	c.periodFlags.register(cmd)
	cmd.Flags().StringArrayVar(&c.investing, "investing", nil, `investing item "name=amount" (repeatable)`)
	cmd.Flags().StringArrayVar(&c.financing, "financing", nil, `financing item "name=amount" (repeatable)`)
}

func (c *cashFlowFlags) params(g *report.Generator) (report.CashFlowParams, error) {
	start, end, err := c.resolve(g)
	if err != nil {
		return report.CashFlowParams{}, err
	}
	investing, err := parseItems(c.investing)
	if err != nil {
		return report.CashFlowParams{}, err
	}
	financing, err := parseItems(c.financing)
	if err != nil {
		return report.CashFlowParams{}, err
	}
	return report.CashFlowParams{Start: start, End: end, InvestingItems: investing, FinancingItems: financing}, nil
}

// parseItems parses "name=amount" pairs into synthetic line items.
func parseItems(values []string) ([]model.LineItem, error) {
	items := make([]model.LineItem, 0, len(values))
	for _, v := range values {
		name, amount, ok := strings.Cut(v, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid item %q: want name=amount", v)
		}
		d, err := decimal.NewFromString(strings.TrimSpace(amount))
		if err != nil {
			return nil, fmt.Errorf("invalid item %q: %w", v, err)
		}
		items = append(items, model.LineItem{Name: strings.TrimSpace(name), Amount: d, Synthetic: true})
	}
	return items, nil
}

func newCashFlowCommand(opts *globalOptions) *cobra.Command {
	var flags cashFlowFlags
	cmd := &cobra.Command{
		Use:   "cash-flow",
		Short: "Cash flow statement (indirect method) over a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withGenerator(cmd, opts, func(g *report.Generator) error {
				params, err := flags.params(g)
				if err != nil {
					return err
				}
				cf, err := g.GenerateCashFlow(cmd.Context(), params)
				if err != nil {
					return err
				}
				if opts.json {
					return writeJSON(cmd.OutOrStdout(), cf)
				}
				return printCashFlow(cmd.OutOrStdout(), cf)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newReportAllCommand(opts *globalOptions) *cobra.Command {
	var flags cashFlowFlags
	cmd := &cobra.Command{
		Use:   "all",
		Short: "All four statements from one consistent read of the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withGenerator(cmd, opts, func(g *report.Generator) error {
				params, err := flags.params(g)
				if err != nil {
					return err
				}
				set, err := g.GenerateSet(cmd.Context(), params)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if opts.json {
					return writeJSON(out, set)
				}
				printers := []func() error{
					func() error { return printTrialBalance(out, set.TrialBalance) },
					func() error { return printBalanceSheet(out, set.BalanceSheet) },
					func() error { return printIncomeStatement(out, set.IncomeStatement) },
					func() error { return printCashFlow(out, set.CashFlow) },
				}
				for i, p := range printers {
					if i > 0 {
						fmt.Fprintln(out)
					}
					if err := p(); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func withGenerator(cmd *cobra.Command, opts *globalOptions, fn func(*report.Generator) error) error {
	return withRepo(cmd.Context(), opts.repoDir, func(r *repo) error {
		g, err := r.reports()
		if err != nil {
			return err
		}
		return fn(g)
	})
}
