package metric

import (
	"errors"
	"log/slog"
	"time"

	"rooydad/src-app/utils"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rooydad"

// register returns the collector to write to: c, or the one already
// registered under the same descriptor.
func register[T prometheus.Collector](c T, name string) T {
	if err := prometheus.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				slog.Debug("metric already registered", "metric", name)
				return existing
			}
		}
		slog.Error("can't register metric", "metric", name, "error", err)
		return c
	}
	slog.Debug("metric registered", "metric", name)
	return c
}

func unregister(c prometheus.Collector, name string) {
	switch prometheus.Unregister(c) {
	case true:
		slog.Debug("metric unregistered", "metric", name)
	case false:
		slog.Warn("metric not registered", "metric", name)
	}
}

// latencyFromChan mirrors samples from ch into a gauge, falling back to 0
// when no sample arrived for clearInterval.
func latencyFromChan(as *utils.AppState, name, help string, ch <-chan float64, clearInterval time.Duration) {
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	})
	gauge = register(gauge, name)
	gauge.Set(0)

	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	go func() {
		clearTicker := time.NewTicker(clearInterval)
		defer clearTicker.Stop()
		for {
			select {
			case <-gracefulShutdownCh:
				unregister(gauge, name)
				return
			case latency := <-ch:
				gauge.Set(latency)
				clearTicker.Reset(clearInterval)
			case <-clearTicker.C:
				gauge.Set(0)
			}
		}
	}()
}

func databaseRead(as *utils.AppState, clearInterval time.Duration) {
	latencyFromChan(as, "database_read_microsec",
		"The latency of the last database read in microseconds",
		as.MetricChans.DatabaseRead, clearInterval)
}

func databaseWrite(as *utils.AppState, clearInterval time.Duration) {
	latencyFromChan(as, "database_write_microsec",
		"The latency of the last database write in microseconds",
		as.MetricChans.DatabaseWrite, clearInterval)
}

func remindersSent(as *utils.AppState) {
	name := "reminders_sent_total"
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      "The number of event reminders delivered",
	})
	counter = register(counter, name)

	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	go func() {
		for {
			select {
			case <-gracefulShutdownCh:
				unregister(counter, name)
				return
			case n := <-as.MetricChans.ReminderSent:
				counter.Add(n)
			}
		}
	}()
}

// Init starts the collectors; they stop on graceful shutdown.
func Init(as *utils.AppState) {
	tickerInterval := as.Config.GetMetricCollectionInterval()
	clearTickerInterval := tickerInterval * 2

	databaseEmptyRead(as, tickerInterval)
	databaseRead(as, clearTickerInterval)
	databaseWrite(as, clearTickerInterval)
	eventsTotal(as, tickerInterval)
	remindersSent(as)
}
