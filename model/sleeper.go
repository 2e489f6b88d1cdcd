package model

import (
	"context"
	"time"
)

// Sleeper waits for d or until ctx is done. Lifecycle tasks take it as a
// dependency so tests can run the full state machine without real delays.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the real Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
