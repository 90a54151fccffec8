package schedule

import (
	"context"
	"log/slog"
	"time"

	"autoassign/internal/config"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled unit of work. It runs on the scheduler goroutine, so
// a slow job delays the next fire instead of overlapping with it.
type Job func(ctx context.Context)

type Scheduler struct {
	spec     string
	schedule cron.Schedule
	location *time.Location
	logger   *slog.Logger
	now      func() time.Time
}

// New parses spec (5 fields, or 6 with leading seconds) and returns a
// scheduler that evaluates it in loc.
func New(spec string, loc *time.Location, logger *slog.Logger) (*Scheduler, error) {
	sched, err := config.ParseSchedule(spec)
	if err != nil {
		return nil, err
	}
	return NewWithSchedule(spec, sched, loc, logger), nil
}

func NewWithSchedule(spec string, sched cron.Schedule, loc *time.Location, logger *slog.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{spec: spec, schedule: sched, location: loc, logger: logger, now: time.Now}
}

// Next returns the first fire time strictly after now.
func (s *Scheduler) Next(now time.Time) time.Time {
	return s.schedule.Next(now.In(s.location))
}

// Run fires job on schedule until ctx is done. Fire times that pass while
// job is still running are skipped.
func (s *Scheduler) Run(ctx context.Context, job Job) error {
	s.logger.Info("assignment scheduled", "cron", s.spec, "timezone", s.location.String())
	for {
		now := s.now()
		next := s.Next(now)
		wait := next.Sub(now)
		s.logger.Info("next assignment run", "at", next.Format("Mon Jan 2 15:04:05"), "in", wait.Round(time.Second))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-timer.C:
		}

		job(ctx)
	}
}
