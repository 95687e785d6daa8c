package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerbook/internal/accounts"
	"github.com/cleared-dev/ledgerbook/internal/config"
)

func newInitCommand() *cobra.Command {
	var name string
	var entityType string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ledgerbook repo",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.Context(), cmd.OutOrStdout(), absDir, name, entityType)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&entityType, "entity-type", "llc_single_member", "entity type")

	return cmd
}

// scaffoldDirs are created in every new repo.
var scaffoldDirs = []string{"accounts", "exports", filepath.Join("import", "processed")}

func runInit(ctx context.Context, out io.Writer, dir, name, entityType string) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	for _, d := range scaffoldDirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(name, entityType)
	files := []struct{ path, content string }{
		{".gitignore", cfg.Database.Path + "\nexports/\nimport/processed/\n"},
		{filepath.Join("import", ".gitkeep"), ""},
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f.path), []byte(f.content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", f.path, err)
		}
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	chart := accounts.DefaultChart(entityType)
	if err := accounts.Validate(chart); err != nil {
		return err
	}
	if err := accounts.NewService(chart).Save(dir); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}

	// Opening the repo creates the database and seeds the chart.
	if err := withRepo(ctx, dir, func(*repo) error { return nil }); err != nil {
		return fmt.Errorf("creating database: %w", err)
	}

	fmt.Fprintf(out, "Initialized ledgerbook repo at %s (%d accounts, fiscal year from %s)\n",
		dir, len(chart), cfg.Fiscal.YearStart)
	return nil
}
