package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/stepr/internal/config"
	"github.com/sadopc/stepr/internal/health"
	"github.com/sadopc/stepr/internal/poller"
	"github.com/sadopc/stepr/internal/store"
	"github.com/sadopc/stepr/internal/tui"
	"github.com/sadopc/stepr/internal/worker"
)

// retryExitCode tells an external scheduler to run `stepr sync` again later.
// Same value as EX_TEMPFAIL.
const retryExitCode = 75

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "stepr",
		Short:        "Step counter dashboard over a local health record store",
		SilenceUsage: true,
		RunE:         runTUI,
	}
	root.PersistentFlags().String("config", "", "path to config file (default: XDG config dir)")

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one background aggregation pass and exit",
		Long:  "Intended for cron or a systemd timer. Exits 75 when the pass should be retried.",
		RunE:  runSync,
	}

	importCmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import step records from a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}

	root.AddCommand(syncCmd, importCmd)
	return root
}

// setupLogging routes everything, including the worker's own messages,
// through one stderr handler.
func setupLogging() *slog.Logger {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)
	return log
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.DefaultConfigPath()
	}
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		return config.Config{}, err
	}
	return config.Load(path, dbPath)
}

func openStore(cfg config.Config) (*store.Store, error) {
	return store.New(cfg.DBPath, store.Options{
		PreferredSource: cfg.PreferredSource,
		InstallURI:      cfg.InstallURI,
	})
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	s, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	ctrl := poller.New(s, poller.Config{
		PreferredSource: cfg.PreferredSource,
		Location:        cfg.Location,
		RefreshInterval: cfg.RefreshInterval,
		BackoffBase:     cfg.BackoffBase,
		BackoffMax:      cfg.BackoffMax,
	})
	ctrl.Start(ctx)
	defer ctrl.Pause()

	app := tui.NewApp(ctx, ctrl, s, cfg)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithReportFocus())

	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func runSync(cmd *cobra.Command, _ []string) error {
	log := setupLogging()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	s, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()

	outcome := worker.Run(cmd.Context(), s, worker.Config{Location: cfg.Location})
	if outcome == worker.Retry {
		log.Warn("sync pass failed, scheduler should retry")
		s.Close()
		os.Exit(retryExitCode)
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	log := setupLogging()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	s, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	records, err := health.DecodeRecords(f)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", args[0], err)
	}

	inserted, err := s.InsertRecords(records)
	if err != nil {
		return fmt.Errorf("importing records: %w", err)
	}

	log.Info("import complete",
		"file", args[0],
		"records", len(records),
		"inserted", inserted,
		"skipped", len(records)-inserted,
	)
	return nil
}
