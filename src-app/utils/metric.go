package utils

import "time"

type Metric struct {
	DatabaseRead  chan float64
	DatabaseWrite chan float64
	ReminderSent  chan float64
}

func NewMetric() *Metric {
	return &Metric{
		DatabaseRead:  make(chan float64, 64),
		DatabaseWrite: make(chan float64, 64),
		ReminderSent:  make(chan float64, 64),
	}
}

// report never blocks: without a collector running (TUI, CLI) samples are dropped.
func report(ch chan float64, v float64) {
	select {
	case ch <- v:
	default:
	}
}

func (m *Metric) ObserveRead(start time.Time) {
	report(m.DatabaseRead, float64(time.Since(start).Microseconds()))
}

func (m *Metric) ObserveWrite(start time.Time) {
	report(m.DatabaseWrite, float64(time.Since(start).Microseconds()))
}

func (m *Metric) ObserveReminders(n int) {
	report(m.ReminderSent, float64(n))
}
