package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/punchclock/internal/config"
	"github.com/Tiliavir/punchclock/internal/logging"
	"github.com/Tiliavir/punchclock/internal/model"
	"github.com/Tiliavir/punchclock/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "punchclock",
	Short: "Punch Clock – a daily clock-in/out timesheet",
	Long: `punchclock records four punches per day (in, break start, break end, out),
serves them through a small web UI and exports the history to Excel.
All data is stored in a single JSON file in ~/.punchclock/.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called from main. Storage failures exit with
// status 2, everything else with 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if storage.IsIOError(err) {
		return 2
	}
	return 1
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(punchCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(onedriveCmd)
}

// env bundles what every command needs; Close releases it.
type env struct {
	cfg    config.Config
	logger *slog.Logger
	store  *storage.Store
	closer io.Closer
}

func loadEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	st, err := storage.Open(cfg.Storage.Path, storage.WithLogger(logger))
	if err != nil {
		closer.Close()
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, store: st, closer: closer}, nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.logger.Warn("closing store", slog.Any("error", err))
	}
	_ = e.closer.Close()
}

// findEntry returns the entry for date without creating it.
func findEntry(entries []model.DailyEntry, date string) (model.DailyEntry, bool) {
	for _, e := range entries {
		if e.Date == date {
			return e, true
		}
	}
	return model.NewDailyEntry(date), false
}
