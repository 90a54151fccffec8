package assignment

import (
	"context"
	"time"
)

const DefaultPaceInterval = time.Second

// Pacer spaces calls to the record store, which rate limits its clients.
// The engine calls Wait before every workload lookup except the first of a
// resource and before every assignment mutation.
type Pacer interface {
	Wait(ctx context.Context) error
}

// FixedDelay pauses for Interval on every Wait.
type FixedDelay struct {
	Interval time.Duration
}

func (p FixedDelay) Wait(ctx context.Context) error {
	if p.Interval <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.Interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
