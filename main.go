package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"rooydad/src-app/model"
	"rooydad/src-app/tui"
	"rooydad/src-app/utils"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Info(err.Error())
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.RFC1123Z,
		}),
	))
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rooydad",
		Short: "Jalali calendar and event scheduler",
		Long: `rooydad keeps one-off and weekly recurring events in a local sqlite
database and shows them on the Jalali (Persian) calendar.

Without a subcommand it opens the terminal interface.`,
		SilenceUsage: true,
		RunE:         runTUI,
	}

	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newEditCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newWeekCmd())
	rootCmd.AddCommand(newNearestCmd())
	rootCmd.AddCommand(newExportICSCmd())
	rootCmd.AddCommand(newImportICSCmd())
	rootCmd.AddCommand(newBackupCmd())
	rootCmd.AddCommand(newRestoreCmd())
	rootCmd.AddCommand(newServeCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// openAppState reads the environment and opens the database at DB_PATH with
// its schema in place. Callers own the returned state and shut it down.
func openAppState(ctx context.Context) (*utils.AppState, error) {
	config, err := utils.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("openAppState: %w", err)
	}
	as, err := utils.NewAppState(config, config.GetDBPath())
	if err != nil {
		return nil, fmt.Errorf("openAppState: %w", err)
	}
	if err := model.CreateSchema(ctx, as.BunDB); err != nil {
		as.GracefulShutdown()
		return nil, fmt.Errorf("openAppState: %w", err)
	}
	return as, nil
}

func runTUI(cmd *cobra.Command, _ []string) error {
	as, err := openAppState(cmd.Context())
	if err != nil {
		return err
	}
	defer as.GracefulShutdown()

	// the alternate screen owns the terminal, logs go to LOG_FILE instead
	logFile, err := os.OpenFile(as.Config.GetLogFile(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("runTUI: can't open log file: %w", err)
	}
	defer logFile.Close()
	previous := slog.Default()
	slog.SetDefault(slog.New(
		tint.NewHandler(logFile, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.RFC1123Z,
			NoColor:    true,
		}),
	))
	defer slog.SetDefault(previous)

	return tui.Run(as)
}
