package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/cleared-dev/ledgerbook/internal/accounts"
	"github.com/cleared-dev/ledgerbook/internal/config"
	"github.com/cleared-dev/ledgerbook/internal/journal"
	"github.com/cleared-dev/ledgerbook/internal/ledger"
	"github.com/cleared-dev/ledgerbook/internal/logger"
	"github.com/cleared-dev/ledgerbook/internal/model"
	"github.com/cleared-dev/ledgerbook/internal/persistence"
	"github.com/cleared-dev/ledgerbook/internal/reconcile"
	"github.com/cleared-dev/ledgerbook/internal/report"
)

// repo is an opened ledgerbook directory: its config, chart of accounts and
// database, plus the services built over them.
type repo struct {
	root     string
	cfg      *config.Config
	log      *zap.Logger
	logClose io.Closer
	chart    *accounts.Service
	store    *persistence.GormStore
}

// openRepo loads the config and chart under root and opens the database.
// The chart CSV is the source of truth; it is upserted into the database on
// every open.
func openRepo(ctx context.Context, root string) (*repo, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg, err := config.Load(filepath.Join(abs, config.FileName))
	if err != nil {
		return nil, err
	}
	log, logClose, err := logger.New(cfg.Log.Logger())
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	r := &repo{root: abs, cfg: cfg, log: log, logClose: logClose}
	if err := r.open(ctx); err != nil {
		_ = r.Close()
		return nil, err
	}
	return r, nil
}

func (r *repo) open(ctx context.Context) error {
	chart, err := accounts.Load(r.root)
	if err != nil {
		return err
	}
	r.chart = chart

	store, err := persistence.OpenSQLite(r.dbPath(), r.log, r.cfg.Database.LogLevel)
	if err != nil {
		return err
	}
	r.store = store
	if err := store.SeedAccounts(ctx, chart.All()); err != nil {
		return fmt.Errorf("syncing chart of accounts: %w", err)
	}
	r.log.Debug("repo opened", zap.String("root", r.root), zap.Int("accounts", len(chart.All())))
	return nil
}

func (r *repo) dbPath() string {
	if filepath.IsAbs(r.cfg.Database.Path) {
		return r.cfg.Database.Path
	}
	return filepath.Join(r.root, r.cfg.Database.Path)
}

// Close releases the database and log file.
func (r *repo) Close() error {
	var errs []error
	if r.store != nil {
		errs = append(errs, r.store.Close())
	}
	_ = r.log.Sync()
	if r.logClose != nil {
		errs = append(errs, r.logClose.Close())
	}
	return errors.Join(errs...)
}

func (r *repo) journal() *journal.Service {
	return journal.NewService(r.store, r.chart, journal.WithLogger(r.log.Named("journal")))
}

func (r *repo) calculator() *ledger.Calculator {
	return ledger.NewCalculator(r.store, r.log.Named("ledger"))
}

func (r *repo) reports() (*report.Generator, error) {
	opts, err := r.cfg.ReportOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts, report.WithLogger(r.log.Named("report")))
	return report.NewGenerator(r.store, opts...), nil
}

func (r *repo) reconciler() *reconcile.Workflow {
	return reconcile.NewWorkflow(r.store, reconcile.WithLogger(r.log.Named("reconcile")))
}

// withRepo opens the repo at dir, runs fn and closes the repo.
func withRepo(ctx context.Context, dir string, fn func(*repo) error) (err error) {
	r, err := openRepo(ctx, dir)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := r.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing repo: %w", cerr)
		}
	}()
	return fn(r)
}

const dateLayout = "2006-01-02"

// parseDate parses a YYYY-MM-DD flag value. Empty means today.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return model.DateOnly(time.Now()), nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}
