// Package bench measures the throughput of the actor runtime: a number of
// producer actors each send a sequence of messages to a single sink actor,
// which checks that every producer's messages arrive in order.
package bench

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/informalsystems/go-actor/internal/logging"
	"github.com/informalsystems/go-actor/internal/monitor"
	"github.com/informalsystems/go-actor/pkg/actor"
	"github.com/informalsystems/go-actor/pkg/mailbox"
	uuid "github.com/satori/go.uuid"
)

// The rate at which the benchmark logs its progress while waiting.
const progressUpdateInterval = 5 * time.Second

// Run executes a single benchmark in a blocking manner. It returns the
// aggregate statistics of the run along with any error that caused it to
// fail. Cancelling ctx aborts the run with an ErrKilled error.
func Run(ctx context.Context, cfg Config) (*AggregateStats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, NewError(ErrInvalidConfig, err)
	}
	runID := newRunID()
	logger := logging.NewLogrusLogger("bench", "run", runID)
	logger.Debug(fmt.Sprintf("Configuration: %s", cfg.ToJSON()))

	opts := []actor.SystemOption{actor.WithName("bench-" + runID[:8])}
	if cfg.MailboxCapacity > 0 {
		strategy := mailbox.OverflowStrategyBlock
		if cfg.OverflowStrategy == OverflowFail {
			strategy = mailbox.OverflowStrategyFail
		}
		opts = append(opts, actor.WithMailboxFactory(actor.BoundedMailboxes(cfg.MailboxCapacity, strategy)))
	}
	var events *mailbox.Queue[actor.LifecycleEvent]
	if cfg.MonitorEnabled {
		events = mailbox.New[actor.LifecycleEvent]()
		opts = append(opts, actor.WithLifecycleEvents(events))
	}
	sys := actor.NewSystem(opts...)
	defer sys.StopAll()

	if cfg.MonitorEnabled {
		srv := monitor.NewServer(sys, cfg.Monitor, monitor.WithEvents(events))
		srv.Start()
		defer func() {
			waitForMonitor(ctx, cfg.MonitorWait.Duration(), logger)
			if err := srv.Stop(context.Background()); err != nil {
				logger.Error("Failed to stop monitor", "err", err)
			}
		}()
	}

	snk := newSink(cfg.Producers)
	sinkRef, err := sys.ActorOf(func(string) (actor.Actor, error) { return snk, nil })
	if err != nil {
		return nil, NewError(ErrFailedToCreateActor, err, "sink")
	}
	producers := make([]*actor.Ref, 0, cfg.Producers)
	for i := 0; i < cfg.Producers; i++ {
		ref, err := sys.ActorOf(func(string) (actor.Actor, error) {
			return &producer{sink: sinkRef, messages: cfg.Messages}, nil
		})
		if err != nil {
			return nil, NewError(ErrFailedToCreateActor, err, fmt.Sprintf("producer %d", i))
		}
		producers = append(producers, ref)
	}

	logger.Info("Starting benchmark", "producers", cfg.Producers, "messages", cfg.Messages)
	startTime := time.Now()
	for _, ref := range producers {
		if err := sys.Send(startMsg{}, ref, actor.NoSender); err != nil {
			return nil, NewError(ErrFailedToSend, err)
		}
	}
	if err := waitForSink(ctx, snk, cfg.Timeout.Duration(), sys, logger); err != nil {
		logger.Error("Benchmark failed", "err", err)
		return nil, err
	}
	elapsed := time.Since(startTime)

	// stopping the sink guarantees that its counters are no longer written to
	if err := sys.Stop(sinkRef); err != nil {
		logger.Error("Failed to stop sink", "err", err)
	}

	stats := &AggregateStats{
		Producers:        cfg.Producers,
		TotalSent:        snk.sent,
		TotalReceived:    snk.received,
		TotalDropped:     snk.dropped,
		OrderViolations:  snk.violations,
		TotalTimeSeconds: elapsed.Seconds(),
	}
	stats.Compute()
	logger.Info("Benchmark complete", "stats", stats.String())

	if len(cfg.StatsOutputFile) > 0 {
		if err := writeAggregateStats(cfg.StatsOutputFile, *stats); err != nil {
			logger.Error("Failed to write aggregate statistics", "err", err)
			return stats, NewError(ErrFailedToWriteStats, err, cfg.StatsOutputFile)
		}
	}
	if snk.err != nil {
		return stats, NewError(ErrFailedToSend, snk.err)
	}
	if err := stats.SanityCheck(); err != nil {
		return stats, err
	}
	return stats, nil
}

func waitForSink(ctx context.Context, snk *sink, timeout time.Duration, sys *actor.System, logger logging.Logger) error {
	timeoutTimer := time.NewTimer(timeout)
	defer timeoutTimer.Stop()
	progressTicker := time.NewTicker(progressUpdateInterval)
	defer progressTicker.Stop()

	for {
		select {
		case <-snk.done:
			return nil

		case <-progressTicker.C:
			logger.Info("Benchmark in progress", "actors", sys.Len())

		case <-timeoutTimer.C:
			return NewError(ErrTimedOut, nil, timeout.String())

		case <-ctx.Done():
			return NewError(ErrKilled, ctx.Err())
		}
	}
}

func waitForMonitor(ctx context.Context, wait time.Duration, logger logging.Logger) {
	if wait <= 0 {
		return
	}
	logger.Info("Keeping monitor up", "wait", wait.String())
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}

func newRunID() string {
	return strings.ReplaceAll(uuid.NewV4().String(), "-", "")
}
