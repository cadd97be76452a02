package main

import (
	"fmt"
	"strconv"

	"rooydad/src-app/agenda"
	"rooydad/src-app/handler"

	"github.com/spf13/cobra"
)

// eventFlags binds the fields of handler.Input to command flags.
type eventFlags struct {
	in handler.Input
}

func (f *eventFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.in.Title, "title", "", "event title")
	cmd.Flags().StringVar(&f.in.EventType, "type", "", "event type (default: last of EVENT_TYPES)")
	cmd.Flags().StringVar(&f.in.Date, "date", "", "Jalali date YYYY-MM-DD of a one-off event")
	cmd.Flags().StringVar(&f.in.Time, "time", "", "time HH:MM, empty for an untimed event")
	cmd.Flags().StringVar(&f.in.Description, "description", "", "free text")
	cmd.Flags().BoolVar(&f.in.IsRecurring, "recurring", false, "repeat every week")
	cmd.Flags().StringVar(&f.in.Weekday, "weekday", "", "weekday of a recurring event (شنبه, saturday, 0..6)")
	cmd.Flags().StringVar(&f.in.EndDate, "end-date", "", "Jalali date the recurring event ends on")
}

// overlay copies the flags the user set onto base.
func (f *eventFlags) overlay(cmd *cobra.Command, base handler.Input) handler.Input {
	changed := cmd.Flags().Changed
	if changed("title") {
		base.Title = f.in.Title
	}
	if changed("type") {
		base.EventType = f.in.EventType
	}
	if changed("date") {
		base.Date = f.in.Date
	}
	if changed("time") {
		base.Time = f.in.Time
	}
	if changed("description") {
		base.Description = f.in.Description
	}
	if changed("recurring") {
		base.IsRecurring = f.in.IsRecurring
	}
	if changed("weekday") {
		base.Weekday = f.in.Weekday
	}
	if changed("end-date") {
		base.EndDate = f.in.EndDate
	}
	return base
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid event id %q", arg)
	}
	return id, nil
}

func newAddCmd() *cobra.Command {
	flags := &eventFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an event",
		Example: `  rooydad add --title "امتحان ریاضی" --type امتحان --date 1403-01-15 --time 09:00
  rooydad add --title "کلاس فیزیک" --type کلاس --recurring --weekday دوشنبه --end-date 1403-03-31`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			as, err := openAppState(cmd.Context())
			if err != nil {
				return err
			}
			defer as.GracefulShutdown()

			in := flags.in
			if in.EventType == "" {
				in.EventType = as.Config.GetDefaultEventType()
			}
			e, err := handler.CreateEvent(cmd.Context(), as, in)
			if err != nil {
				return fmt.Errorf("%s", handler.UserMessage(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "رویداد با موفقیت اضافه شد! (#%d)\n", e.ID)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newEditCmd() *cobra.Command {
	flags := &eventFlags{}
	cmd := &cobra.Command{
		Use:     "edit <id>",
		Short:   "Change the fields of an event given by flags",
		Example: `  rooydad edit 3 --time 10:30`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			as, err := openAppState(cmd.Context())
			if err != nil {
				return err
			}
			defer as.GracefulShutdown()

			old, err := handler.GetEvent(cmd.Context(), as, id)
			if err != nil {
				return fmt.Errorf("%s", handler.UserMessage(err))
			}
			in := flags.overlay(cmd, handler.InputFromEvent(old))
			if _, err := handler.ModifyEvent(cmd.Context(), as, id, in); err != nil {
				return fmt.Errorf("%s", handler.UserMessage(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "رویداد با موفقیت ویرایش شد!")
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			as, err := openAppState(cmd.Context())
			if err != nil {
				return err
			}
			defer as.GracefulShutdown()

			if err := handler.DeleteEvent(cmd.Context(), as, id); err != nil {
				return fmt.Errorf("%s", handler.UserMessage(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "رویداد با موفقیت حذف شد!")
			return nil
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			as, err := openAppState(cmd.Context())
			if err != nil {
				return err
			}
			defer as.GracefulShutdown()

			e, err := handler.GetEvent(cmd.Context(), as, id)
			if err != nil {
				return fmt.Errorf("%s", handler.UserMessage(err))
			}
			row := agenda.Present(e)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID: %d\n", row.ID)
			fmt.Fprintf(out, "Title: %s\n", row.Title)
			fmt.Fprintf(out, "Type: %s\n", row.Type)
			fmt.Fprintf(out, "Date: %s\n", row.Date)
			if endDate := agenda.EndDateText(e); endDate != "" {
				fmt.Fprintf(out, "End date: %s\n", endDate)
			}
			fmt.Fprintf(out, "Time: %s\n", row.Time)
			description := row.Description
			if description == "" {
				description = agenda.NoDescriptionLabel
			}
			fmt.Fprintf(out, "Description: %s\n", description)
			fmt.Fprintf(out, "UID: %s\n", e.UID)
			return nil
		},
	}
}
