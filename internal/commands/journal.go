package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerbook/internal/journal"
	"github.com/cleared-dev/ledgerbook/internal/model"
)

func newJournalCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Record and exchange journal entries",
	}
	cmd.AddCommand(
		newJournalAddCommand(opts),
		newJournalImportCommand(opts),
		newJournalExportCommand(opts),
		newJournalPostCommand(opts),
		newJournalVoidCommand(opts),
	)
	return cmd
}

func newJournalAddCommand(opts *globalOptions) *cobra.Command {
	var date, amount, description, reference, user string
	var debit, credit int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Post a two-line entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := parseDate(date)
			if err != nil {
				return err
			}
			amt, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}
			return withRepo(cmd.Context(), opts.repoDir, func(r *repo) error {
				entry, err := r.journal().AddDouble(cmd.Context(), journal.AddDoubleParams{
					Date:          d,
					Description:   description,
					DebitAccount:  debit,
					CreditAccount: credit,
					Amount:        amt,
					Reference:     reference,
					CreatedBy:     user,
				})
				if err != nil {
					return err
				}
				return printEntry(cmd.OutOrStdout(), opts, entry)
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "entry date (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&debit, "debit", 0, "account id to debit (required)")
	cmd.Flags().IntVar(&credit, "credit", 0, "account id to credit (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "amount (required)")
	cmd.Flags().StringVar(&description, "description", "", "entry description")
	cmd.Flags().StringVar(&reference, "reference", "", "external reference")
	cmd.Flags().StringVar(&user, "by", "", "user recording the entry")
	for _, f := range []string{"debit", "credit", "amount"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newJournalImportCommand(opts *globalOptions) *cobra.Command {
	var post bool
	var user string

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import journal entries from CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			entries, err := journal.ReadEntries(f)
			if err != nil {
				return err
			}
			return withRepo(cmd.Context(), opts.repoDir, func(r *repo) error {
				done, err := r.journal().Import(cmd.Context(), entries, user, post)
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d entries\n", len(done), len(entries))
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&post, "post", false, "post entries after import")
	cmd.Flags().StringVar(&user, "by", "", "user recording the entries")
	return cmd
}

func newJournalExportCommand(opts *globalOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every journal entry as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRepo(cmd.Context(), opts.repoDir, func(r *repo) error {
				entries, err := r.store.ListEntries(cmd.Context())
				if err != nil {
					return err
				}
				var w io.Writer = cmd.OutOrStdout()
				if output != "" {
					f, err := os.Create(output)
					if err != nil {
						return fmt.Errorf("creating %s: %w", output, err)
					}
					defer f.Close()
					w = f
				}
				return journal.WriteEntries(w, entries)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func newJournalPostCommand(opts *globalOptions) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "post <entry-id>",
		Short: "Post a draft entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entryID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid entry id %q", args[0])
			}
			return withRepo(cmd.Context(), opts.repoDir, func(r *repo) error {
				entry, err := r.journal().Post(cmd.Context(), entryID, user)
				if err != nil {
					return err
				}
				return printEntry(cmd.OutOrStdout(), opts, entry)
			})
		},
	}

	cmd.Flags().StringVar(&user, "by", "", "user posting the entry")
	return cmd
}

func newJournalVoidCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "void <entry-id>",
		Short: "Void an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entryID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid entry id %q", args[0])
			}
			return withRepo(cmd.Context(), opts.repoDir, func(r *repo) error {
				entry, err := r.journal().Void(cmd.Context(), entryID)
				if err != nil {
					return err
				}
				return printEntry(cmd.OutOrStdout(), opts, entry)
			})
		},
	}
}

func printEntry(out io.Writer, opts *globalOptions, e model.JournalEntry) error {
	if opts.json {
		return writeJSON(out, e)
	}
	fmt.Fprintf(out, "%s (id %d) %s %s amount %s\n",
		e.JournalNumber, e.ID, e.Status, e.Date.Format(dateLayout), money(e.Amount))
	tw := newTable(out)
	for _, l := range e.Lines {
		fmt.Fprintf(tw, "  %d\t%s\t%s\n", l.AccountID, money(l.Debit), money(l.Credit))
	}
	return tw.Flush()
}
