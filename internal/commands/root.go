// Package commands implements the ledgerbook command line.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerbook/internal/buildinfo"
)

// globalOptions are flags shared by every command that works on a repo.
type globalOptions struct {
	repoDir string
	json    bool
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "ledgerbook",
		Short:   "Double-entry ledger, financial statements and bank reconciliation",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.repoDir, "repo", ".", "repository directory")
	rootCmd.PersistentFlags().BoolVar(&opts.json, "json", false, "print JSON instead of tables")

	rootCmd.AddCommand(
		newInitCommand(),
		newAccountsCommand(opts),
		newJournalCommand(opts),
		newBalanceCommand(opts),
		newReportCommand(opts),
		newReconcileCommand(opts),
		newVersionCommand(),
	)

	return rootCmd
}
