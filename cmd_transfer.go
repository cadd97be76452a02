package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"rooydad/src-app/backup"
	"rooydad/src-app/ics"
	"rooydad/src-app/model"

	"github.com/spf13/cobra"
)

// output is the named file, or stdout for "" and "-".
func output(cmd *cobra.Command, args []string) (io.Writer, func() error, error) {
	if len(args) == 0 || args[0] == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(args[0])
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func newExportICSCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-ics [file]",
		Short: "Write every event as an iCalendar feed",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			as, err := openAppState(cmd.Context())
			if err != nil {
				return err
			}
			defer as.GracefulShutdown()

			events, err := model.ListEvents(cmd.Context(), as.BunDB)
			if err != nil {
				return err
			}
			w, closeFn, err := output(cmd, args)
			if err != nil {
				return err
			}
			if err := ics.Export(w, events, as.Config.GetLocation(), as.Now()); err != nil {
				closeFn()
				return err
			}
			slog.Info("calendar exported", "events", len(events))
			return closeFn()
		},
	}
}

func newImportICSCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-ics <file>",
		Short: "Add or update events from an iCalendar file",
		Long: `Reads the VEVENTs of an iCalendar file. Events whose UID already exists are
updated in place. Weekly rules with a single weekday become recurring events;
other rules are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			as, err := openAppState(cmd.Context())
			if err != nil {
				return err
			}
			defer as.GracefulShutdown()

			events, skipped, err := ics.Parse(f, as.Config.GetLocation(), as.Config.GetDefaultEventType())
			if err != nil {
				return err
			}
			created, updated, err := ics.Save(cmd.Context(), as.BunDB, events)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d created, %d updated, %d skipped\n", created, updated, skipped)
			return nil
		},
	}
}

func newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup [file]",
		Short: "Dump every event as YAML with Jalali dates",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			as, err := openAppState(cmd.Context())
			if err != nil {
				return err
			}
			defer as.GracefulShutdown()

			w, closeFn, err := output(cmd, args)
			if err != nil {
				return err
			}
			n, err := backup.Export(cmd.Context(), as.BunDB, w, as.Now())
			if err != nil {
				closeFn()
				return err
			}
			slog.Info("backup written", "events", n)
			return closeFn()
		},
	}
}

func newRestoreCmd() *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Load events from a YAML backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			as, err := openAppState(cmd.Context())
			if err != nil {
				return err
			}
			defer as.GracefulShutdown()

			res, err := backup.Restore(cmd.Context(), as.BunDB, f, replace)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d removed, %d created, %d updated\n", res.Removed, res.Created, res.Updated)
			return nil
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "delete every stored event first")
	return cmd
}
