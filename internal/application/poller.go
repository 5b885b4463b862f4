package application

import (
	"context"
	"fmt"
	"time"
)

// RemoteOperation is a long-running call on a remote service: submitted once,
// polled until it reports completion, result fetched once afterwards.
type RemoteOperation interface {
	Submit(ctx context.Context) (string, error)
	Poll(ctx context.Context, runID string) (bool, error)
	Result(ctx context.Context) (string, error)
}

// PollResult is the outcome of a bounded poll. Completed is false when the
// deadline elapsed first; the remote operation is not cancelled and may still
// finish on its own.
type PollResult struct {
	Completed bool
	Text      string
}

// Poller waits on a RemoteOperation by polling at a fixed interval until it
// completes or Deadline elapses. The wait is synchronous from the caller's
// point of view.
type Poller struct {
	Interval time.Duration
	Deadline time.Duration
}

func (p Poller) Run(ctx context.Context, op RemoteOperation) (PollResult, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = time.Second
	}
	deadline := p.Deadline
	if deadline <= 0 {
		deadline = 10 * time.Second
	}

	runID, err := op.Submit(ctx)
	if err != nil {
		return PollResult{}, fmt.Errorf("submitting operation: %w", err)
	}

	expired := time.NewTimer(deadline)
	defer expired.Stop()
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		done, err := op.Poll(ctx, runID)
		if err != nil {
			return PollResult{}, fmt.Errorf("polling run %s: %w", runID, err)
		}
		if done {
			text, err := op.Result(ctx)
			if err != nil {
				return PollResult{}, fmt.Errorf("fetching result of run %s: %w", runID, err)
			}
			return PollResult{Completed: true, Text: text}, nil
		}

		select {
		case <-ctx.Done():
			return PollResult{}, ctx.Err()
		case <-expired.C:
			return PollResult{}, nil
		case <-tick.C:
		}
	}
}
