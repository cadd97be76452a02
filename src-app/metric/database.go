package metric

import (
	"context"
	"log/slog"
	"time"

	"rooydad/src-app/model"
	"rooydad/src-app/utils"

	"github.com/prometheus/client_golang/prometheus"
)

// probe times a query that matches nothing.
func probe(ctx context.Context, as *utils.AppState) (time.Duration, error) {
	start := time.Now()
	if _, err := as.BunDB.NewSelect().
		Model((*model.Event)(nil)).
		Where("id = ?", -1).
		Exists(ctx); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

func databaseEmptyRead(as *utils.AppState, tickerInterval time.Duration) {
	name := "database_empty_read_microsec"
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      "The latency of an empty database read in microseconds",
	})
	gauge = register(gauge, name)
	gauge.Set(0)

	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	go func() {
		ticker := time.NewTicker(tickerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gracefulShutdownCh:
				unregister(gauge, name)
				return
			case <-ticker.C:
				latency, err := probe(context.Background(), as)
				if err != nil {
					slog.Error("can't get database latency", "error", err)
					continue
				}
				gauge.Set(float64(latency.Microseconds()))
			}
		}
	}()
}

func eventsTotal(as *utils.AppState, tickerInterval time.Duration) {
	name := "events"
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      "The number of stored events",
	})
	gauge = register(gauge, name)

	update := func() {
		n, err := model.CountEvents(context.Background(), as.BunDB)
		if err != nil {
			slog.Error("can't count events", "error", err)
			return
		}
		gauge.Set(float64(n))
	}
	update()

	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	go func() {
		ticker := time.NewTicker(tickerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gracefulShutdownCh:
				unregister(gauge, name)
				return
			case <-ticker.C:
				update()
			}
		}
	}()
}
