package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rooydad/src-app/metric"
	"rooydad/src-app/route"
	"rooydad/src-app/scheduler"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the calendar feed, JSON views and metrics on PORT, sending reminders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			as, err := openAppState(cmd.Context())
			if err != nil {
				return err
			}

			go metric.Init(as)

			reminder := scheduler.NewReminder(as, scheduler.NotifiersFromConfig(as.Config)...)
			if err := reminder.Start(); err != nil {
				as.GracefulShutdown()
				return err
			}

			srv := &http.Server{
				Addr:              ":" + as.Config.GetPort(),
				Handler:           route.NewRouter(as),
				ReadHeaderTimeout: 10 * time.Second,
			}
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					slog.Error("cannot start HTTP server", "error", err)
					as.AppCloseSignalChan <- syscall.SIGTERM
				}
			}()
			slog.Info("app is now running, press Ctrl+C to exit", "port", as.Config.GetPort())

			signal.Notify(as.AppCloseSignalChan, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
			<-as.AppCloseSignalChan

			slog.Info("Gracefully shutting down...")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				slog.Warn("can't shut down HTTP server", "error", err)
			}
			as.GracefulShutdown()
			return nil
		},
	}
}
