// Package worker performs one isolated background refresh cycle, meant to be
// invoked by an external scheduler (cron, systemd timer) roughly every 15
// minutes. It owns its own data source handle and shares no mutable state
// with the foreground poller.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/sadopc/stepr/internal/health"
	"github.com/sadopc/stepr/internal/timeutil"
)

// Outcome is what the external scheduler acts on. Retry asks it to
// reschedule with its own backoff; transient data errors never become a
// permanent failure signal.
type Outcome int

const (
	Success Outcome = iota
	Retry
)

func (o Outcome) String() string {
	if o == Retry {
		return "retry"
	}
	return "success"
}

// Config for one sync cycle.
type Config struct {
	Location *time.Location

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Run executes one refresh: current-hour and current-day totals via the
// aggregate fast path. Missing capability is a skip, not an error.
func Run(ctx context.Context, src health.Source, cfg Config) Outcome {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	now := cfg.Now()

	avail := src.Availability(ctx)
	if !avail.Available {
		slog.Warn("data source not available, skipping sync",
			"needs_update", avail.NeedsUpdate)
		return Success
	}

	granted, err := src.HasPermissions(ctx)
	if err != nil {
		slog.Error("permission check failed", "error", err)
		return Retry
	}
	if !granted {
		slog.Warn("permissions not granted, skipping sync")
		return Success
	}

	hourly, err := src.AggregateTotal(ctx, timeutil.HourWindow(now, cfg.Location))
	if err != nil {
		slog.Error("hourly total fetch failed", "error", err)
		return Retry
	}
	daily, err := src.AggregateTotal(ctx, timeutil.DayWindow(now, cfg.Location))
	if err != nil {
		slog.Error("daily total fetch failed", "error", err)
		return Retry
	}

	slog.Info("background sync complete", "hourly_steps", hourly, "daily_steps", daily)
	return Success
}
