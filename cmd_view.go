package main

import (
	"fmt"
	"io"
	"strings"

	"rooydad/src-app/agenda"
	"rooydad/src-app/handler"
	"rooydad/src-app/jalali"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func printEvents(w io.Writer, rows []agenda.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "هیچ رویدادی یافت نشد!")
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(agenda.RowHeaders...)
	for _, r := range rows {
		t.Row(r.Cells()...)
	}
	fmt.Fprintln(w, t.Render())
}

func newListCmd() *cobra.Command {
	var modeName string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, err := handler.ParseMode(modeName)
			if err != nil || mode == handler.ModeWeekly {
				return fmt.Errorf("invalid mode %q, use nearest, upcoming, all or tasks (or the week command)", modeName)
			}
			as, err := openAppState(cmd.Context())
			if err != nil {
				return err
			}
			defer as.GracefulShutdown()

			events, err := handler.List(cmd.Context(), as, mode)
			if err != nil {
				return fmt.Errorf("%s", handler.UserMessage(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), mode.Title())
			printEvents(cmd.OutOrStdout(), agenda.PresentAll(events))
			return nil
		},
	}
	cmd.Flags().StringVarP(&modeName, "mode", "m", "upcoming", "nearest, upcoming, all or tasks")
	return cmd
}

func newWeekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "week",
		Short: "Print the current Jalali week, Saturday to Friday",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			as, err := openAppState(cmd.Context())
			if err != nil {
				return err
			}
			defer as.GracefulShutdown()

			week, err := handler.Week(cmd.Context(), as)
			if err != nil {
				return fmt.Errorf("%s", handler.UserMessage(err))
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, handler.ModeWeekly.Title())
			for _, day := range week.Days {
				fmt.Fprintf(out, "%s %s\n", day.Name, jalali.Format(day.Date))
				if day.Empty() {
					fmt.Fprintf(out, "  %s\n", agenda.NoEventsLabel)
					continue
				}
				for _, entry := range day.Entries {
					marker := " "
					if entry.Recurring {
						marker = "↻"
					}
					fmt.Fprintf(out, "  %s %s\n", marker, entry.Text)
				}
			}
			return nil
		},
	}
}

func newNearestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nearest [date]",
		Short: "Print the nearest event, from now or from a Jalali date or phrase",
		Example: `  rooydad nearest
  rooydad nearest 1403-02-01
  rooydad nearest "next friday"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			as, err := openAppState(cmd.Context())
			if err != nil {
				return err
			}
			defer as.GracefulShutdown()

			var occ *agenda.Occurrence
			if len(args) == 0 {
				occ, err = handler.Nearest(cmd.Context(), as)
			} else {
				occ, err = handler.FindNearestFrom(cmd.Context(), as, strings.Join(args, " "))
			}
			if err != nil {
				return fmt.Errorf("%s", handler.UserMessage(err))
			}
			if occ == nil && len(args) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "هیچ رویدادی یافت نشد!")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), agenda.Describe(occ))
			return nil
		},
	}
}
