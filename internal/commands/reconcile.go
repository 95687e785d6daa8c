package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerbook/internal/model"
	"github.com/cleared-dev/ledgerbook/internal/reconcile"
	"github.com/cleared-dev/ledgerbook/internal/statement"
)

func newReconcileCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile bank accounts against statements",
	}
	cmd.AddCommand(
		newReconcileUnclearedCommand(opts),
		newReconcileSuggestCommand(opts),
		newReconcileSaveCommand(opts),
		newReconcileShowCommand(opts),
		newReconcileListCommand(opts),
		newReconcileDeleteCommand(opts),
	)
	return cmd
}

func newReconcileUnclearedCommand(opts *globalOptions) *cobra.Command {
	var accountID int
	var statementDate string

	cmd := &cobra.Command{
		Use:   "uncleared",
		Short: "List posted lines not yet cleared by a completed reconciliation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			date, err := parseDate(statementDate)
			if err != nil {
				return err
			}
			return withRepo(cmd.Context(), opts.repoDir, func(r *repo) error {
				lines, err := r.reconciler().LoadUnclearedLines(cmd.Context(), accountID, date)
				if err != nil {
					return err
				}
				if opts.json {
					return writeJSON(cmd.OutOrStdout(), lines)
				}
				return printLines(cmd.OutOrStdout(), lines)
			})
		},
	}

	cmd.Flags().IntVar(&accountID, "account", 0, "bank account id (required)")
	cmd.Flags().StringVar(&statementDate, "statement-date", "", "statement date (YYYY-MM-DD, default today)")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}

func newReconcileSuggestCommand(opts *globalOptions) *cobra.Command {
	var accountID int
	var statementDate, file, format string

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Match bank statement rows to uncleared lines",
		Long: "Parses a bank statement export and proposes the uncleared lines it clears.\n" +
			"Without --file every CSV waiting in <repo>/import/ is read.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			date, err := parseDate(statementDate)
			if err != nil {
				return err
			}
			return withRepo(cmd.Context(), opts.repoDir, func(r *repo) error {
				lines, err := r.reconciler().LoadUnclearedLines(cmd.Context(), accountID, date)
				if err != nil {
					return err
				}
				txns, err := readStatements(r, accountID, file, format)
				if err != nil {
					return err
				}

				s := statement.Suggest(lines, txns)
				out := cmd.OutOrStdout()
				if opts.json {
					return writeJSON(out, s)
				}
				return printSuggestion(out, s)
			})
		},
	}

	cmd.Flags().IntVar(&accountID, "account", 0, "bank account id (required)")
	cmd.Flags().StringVar(&statementDate, "statement-date", "", "statement date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&file, "file", "", "statement CSV (default: every CSV in import/)")
	cmd.Flags().StringVar(&format, "format", "", "statement format (default from bank_accounts, else chase)")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}

// readStatements parses file, or every pending import when file is empty.
func readStatements(r *repo, accountID int, file, format string) ([]model.StatementTransaction, error) {
	if format == "" {
		format = "chase"
		if b, ok := r.cfg.BankAccount(accountID); ok && b.Format != "" {
			format = b.Format
		}
	}

	paths := []string{file}
	if file == "" {
		files, err := statement.Scan(r.root)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no statement files in %s", filepath.Join(r.root, "import"))
		}
		paths = paths[:0]
		for _, f := range files {
			paths = append(paths, f.Path)
		}
	}

	reg := statement.DefaultRegistry()
	var txns []model.StatementTransaction
	for _, p := range paths {
		t, err := reg.ParseFile(format, p)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t...)
	}
	return txns, nil
}

func printSuggestion(out io.Writer, s statement.Suggestion) error {
	tw := newTable(out)
	fmt.Fprintln(tw, "STATEMENT DATE\tDESCRIPTION\tAMOUNT\tLINE\tLINE DATE")
	for _, m := range s.Matches {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			m.Transaction.Date.Format(dateLayout), m.Transaction.Description, money(m.Transaction.Amount),
			m.Line.ID, m.Line.Date.Format(dateLayout))
	}
	for _, t := range s.Unmatched {
		fmt.Fprintf(tw, "%s\t%s\t%s\t-\t\n", t.Date.Format(dateLayout), t.Description, money(t.Amount))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	ids := make([]string, 0, len(s.Matches))
	for _, id := range s.LineIDs() {
		ids = append(ids, fmt.Sprint(id))
	}
	fmt.Fprintf(out, "%d matched, %d unmatched statement rows, %d ledger lines without a row\n",
		len(s.Matches), len(s.Unmatched), len(s.Unused))
	if len(ids) > 0 {
		fmt.Fprintf(out, "--lines %s\n", strings.Join(ids, ","))
	}
	return nil
}

func newReconcileSaveCommand(opts *globalOptions) *cobra.Command {
	var id, statementDate, start, end, user, stmtFile, format string
	var accountID int
	var lineIDs []int
	var complete bool

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a reconciliation as draft, or complete it with --complete",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := reconcile.Request{AccountID: accountID, LineIDs: lineIDs, CreatedBy: user}
			var err error
			if id != "" {
				if req.ID, err = uuid.Parse(id); err != nil {
					return fmt.Errorf("invalid reconciliation id %q: %w", id, err)
				}
			}
			if req.StatementDate, err = parseDate(statementDate); err != nil {
				return err
			}
			if req.StatementStartingBalance, err = decimal.NewFromString(start); err != nil {
				return fmt.Errorf("invalid --start %q: %w", start, err)
			}

			return withRepo(cmd.Context(), opts.repoDir, func(r *repo) error {
				switch {
				case end != "":
					if req.StatementEndingBalance, err = decimal.NewFromString(end); err != nil {
						return fmt.Errorf("invalid --end %q: %w", end, err)
					}
				case stmtFile != "":
					txns, err := readStatements(r, accountID, stmtFile, format)
					if err != nil {
						return err
					}
					if opening, closing, ok := statement.ReportedBalances(txns); ok {
						if !cmd.Flags().Changed("start") {
							req.StatementStartingBalance = opening
						}
						req.StatementEndingBalance = closing
					} else {
						req.StatementEndingBalance = statement.EndingBalance(req.StatementStartingBalance, txns)
					}
				default:
					return errors.New("one of --end or --statement is required")
				}

				wf := r.reconciler()
				save := wf.SaveDraft
				if complete {
					save = wf.Complete
				}
				rec, cb, err := save(cmd.Context(), req)
				out := cmd.OutOrStdout()
				var ue *reconcile.UnbalancedError
				if errors.As(err, &ue) {
					printClearedBalance(out, cb)
				}
				if err != nil {
					return err
				}

				if rec.IsCompleted() && stmtFile != "" && isPendingImport(r.root, stmtFile) {
					if err := statement.MarkProcessed(r.root, filepath.Base(stmtFile)); err != nil {
						return err
					}
				}
				if opts.json {
					return writeJSON(out, map[string]any{"reconciliation": rec, "cleared": cb})
				}
				fmt.Fprintf(out, "Reconciliation %s saved as %s\n", rec.ID, rec.Status)
				printClearedBalance(out, cb)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "existing draft to update")
	cmd.Flags().IntVar(&accountID, "account", 0, "bank account id (required)")
	cmd.Flags().StringVar(&statementDate, "statement-date", "", "statement date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&start, "start", "0", "statement starting balance (default from --statement balances, else 0)")
	cmd.Flags().StringVar(&end, "end", "", "statement ending balance")
	cmd.Flags().StringVar(&stmtFile, "statement", "", "statement CSV to take the balances from")
	cmd.Flags().StringVar(&format, "format", "", "statement format (default from bank_accounts, else chase)")
	cmd.Flags().IntSliceVar(&lineIDs, "lines", nil, "cleared line ids, comma separated")
	cmd.Flags().BoolVar(&complete, "complete", false, "complete the reconciliation (difference must be zero)")
	cmd.Flags().StringVar(&user, "by", "", "user saving the reconciliation")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}

// isPendingImport reports whether path is a file directly in <root>/import.
func isPendingImport(root, path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return filepath.Dir(abs) == filepath.Join(root, "import")
}

func printClearedBalance(out io.Writer, cb reconcile.ClearedBalance) {
	tw := newTable(out)
	fmt.Fprintf(tw, "Cleared debits\t%s\n", money(cb.ClearedDebits))
	fmt.Fprintf(tw, "Cleared credits\t%s\n", money(cb.ClearedCredits))
	fmt.Fprintf(tw, "Cleared balance\t%s\n", money(cb.ClearedBalance))
	fmt.Fprintf(tw, "Difference\t%s\n", money(cb.Difference))
	_ = tw.Flush()
}

func newReconcileShowCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a reconciliation and its cleared lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid reconciliation id %q: %w", args[0], err)
			}
			return withRepo(cmd.Context(), opts.repoDir, func(r *repo) error {
				rec, lines, err := r.reconciler().Get(cmd.Context(), recID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if opts.json {
					return writeJSON(out, map[string]any{"reconciliation": rec, "lines": lines})
				}
				fmt.Fprintf(out, "%s account %d statement %s %s\n", rec.ID, rec.AccountID, rec.StatementDate.Format(dateLayout), rec.Status)
				fmt.Fprintf(out, "starting %s ending %s difference %s\n",
					money(rec.StatementStartingBalance), money(rec.StatementEndingBalance), money(rec.ClearedDifference))
				return printLines(out, lines)
			})
		},
	}
}

func newReconcileListCommand(opts *globalOptions) *cobra.Command {
	var accountID int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reconciliations for an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRepo(cmd.Context(), opts.repoDir, func(r *repo) error {
				recs, err := r.store.ListReconciliations(cmd.Context(), accountID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if opts.json {
					return writeJSON(out, recs)
				}
				tw := newTable(out)
				fmt.Fprintln(tw, "ID\tSTATEMENT DATE\tENDING\tDIFFERENCE\tSTATUS")
				for _, rec := range recs {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", rec.ID, rec.StatementDate.Format(dateLayout),
						money(rec.StatementEndingBalance), money(rec.ClearedDifference), rec.Status)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&accountID, "account", 0, "bank account id (required)")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}

func newReconcileDeleteCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a draft reconciliation and release its lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid reconciliation id %q: %w", args[0], err)
			}
			return withRepo(cmd.Context(), opts.repoDir, func(r *repo) error {
				if err := r.reconciler().Delete(cmd.Context(), recID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted reconciliation %s\n", recID)
				return nil
			})
		},
	}
}
