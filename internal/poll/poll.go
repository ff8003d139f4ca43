// Package poll implements the fixed-interval, wall-clock bounded status loop
// used while waiting on hosting-service resources.
package poll

import (
	"context"
	"fmt"
	"time"

	"github.com/danmuck/fleetctl/internal/cliargs"
	"github.com/danmuck/fleetctl/internal/observability"
	"github.com/rs/zerolog"
)

// Status is the aggregated state observed on one tick.
type Status int

const (
	Pending Status = iota
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "pending"
	}
}

// Check queries the resource once. Returning Failed or an error aborts the
// loop immediately.
type Check func(ctx context.Context) (Status, error)

// Loop polls at a fixed Interval until success, failure or Timeout.
// A non-positive Timeout never expires.
type Loop struct {
	Stage    string
	Interval time.Duration
	Timeout  time.Duration
	Clock    Clock
	Logger   zerolog.Logger
	Metrics  *observability.Recorder
}

// Run blocks until check reports a terminal status or the timeout elapses.
// Elapsed time is accumulated from the sleeps, so the loop sleeps once per
// pending tick and gives up on the first sleep that reaches Timeout.
func (l Loop) Run(ctx context.Context, check Check) error {
	if l.Interval <= 0 {
		return fmt.Errorf("%w: %s poll interval must be positive", cliargs.ErrArgument, l.Stage)
	}
	clock := l.Clock
	if clock == nil {
		clock = RealClock{}
	}

	var elapsed time.Duration
	for {
		status, err := check(ctx)
		if err != nil {
			l.Metrics.RecordPollTick(l.Stage, "error")
			return err
		}
		l.Metrics.RecordPollTick(l.Stage, status.String())
		switch status {
		case Succeeded:
			return nil
		case Failed:
			return fmt.Errorf("%w: %s reported an error status", cliargs.ErrResourceStatus, l.Stage)
		}

		l.Logger.Info().Msgf("Sleeping for %d seconds", int(l.Interval/time.Second))
		if err := clock.Sleep(ctx, l.Interval); err != nil {
			return err
		}
		elapsed += l.Interval

		if l.Timeout > 0 {
			if elapsed >= l.Timeout {
				return fmt.Errorf("%w: %s status monitoring exceeded %s", cliargs.ErrTimeout, l.Stage, l.Timeout)
			}
			l.Logger.Info().Msgf("%d seconds until timeout", int((l.Timeout-elapsed)/time.Second))
		}
	}
}

// Aggregate folds per-resource statuses. Any failure wins, even while others
// are still pending. An empty set has nothing left to wait for and succeeds.
func Aggregate(statuses []string, success, failure string) Status {
	done := 0
	for _, s := range statuses {
		switch s {
		case failure:
			return Failed
		case success:
			done++
		}
	}
	if done == len(statuses) {
		return Succeeded
	}
	return Pending
}
