package bench

import (
	"encoding/csv"
	"fmt"
	"os"
)

type AggregateStats struct {
	Producers        int     // The number of producers that took part.
	TotalSent        int     // The total number of messages accepted for delivery to the sink.
	TotalReceived    int     // The total number of messages processed by the sink.
	TotalDropped     int     // Messages refused because the sink's mailbox was full.
	OrderViolations  int     // Messages that arrived out of order for their sender.
	TotalTimeSeconds float64 // The total time taken to deliver `TotalReceived` messages.

	// Computed statistics
	AvgMsgRate float64 // The rate at which messages were processed (msg/sec).
}

func (s *AggregateStats) String() string {
	return fmt.Sprintf(
		"AggregateStats{TotalTimeSeconds: %.3f, Producers: %d, TotalSent: %d, TotalReceived: %d, TotalDropped: %d, OrderViolations: %d, AvgMsgRate: %.6f}",
		s.TotalTimeSeconds,
		s.Producers,
		s.TotalSent,
		s.TotalReceived,
		s.TotalDropped,
		s.OrderViolations,
		s.AvgMsgRate,
	)
}

func (s *AggregateStats) Compute() {
	s.AvgMsgRate = 0
	if s.TotalTimeSeconds > 0.0 {
		s.AvgMsgRate = float64(s.TotalReceived) / s.TotalTimeSeconds
	}
}

// SanityCheck makes sure that every accepted message was delivered exactly
// once and in order.
func (s *AggregateStats) SanityCheck() error {
	if s.TotalSent != s.TotalReceived {
		return NewError(
			ErrStatsSanityCheckFailed,
			nil,
			fmt.Sprintf("sink received %d messages, but %d were sent", s.TotalReceived, s.TotalSent),
		)
	}
	if s.OrderViolations > 0 {
		return NewError(
			ErrStatsSanityCheckFailed,
			nil,
			fmt.Sprintf("%d messages were delivered out of order", s.OrderViolations),
		)
	}
	return nil
}

func writeAggregateStats(filename string, stats AggregateStats) error {
	stats.Compute()
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	records := [][]string{
		{"Parameter", "Value", "Units"},
		{"total_time", fmt.Sprintf("%.3f", stats.TotalTimeSeconds), "seconds"},
		{"producers", fmt.Sprintf("%d", stats.Producers), "count"},
		{"total_sent", fmt.Sprintf("%d", stats.TotalSent), "count"},
		{"total_received", fmt.Sprintf("%d", stats.TotalReceived), "count"},
		{"total_dropped", fmt.Sprintf("%d", stats.TotalDropped), "count"},
		{"order_violations", fmt.Sprintf("%d", stats.OrderViolations), "count"},
		{"avg_msg_rate", fmt.Sprintf("%.6f", stats.AvgMsgRate), "messages per second"},
	}
	return w.WriteAll(records)
}
