// Package poller owns the foreground update loop: a 1-second clock tick and
// a 5-second data refresh with exponential backoff on repeated failures. All
// mutable presentation state funnels through the controller; readers only
// ever see complete snapshots.
package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sadopc/stepr/internal/health"
	"github.com/sadopc/stepr/internal/history"
	"github.com/sadopc/stepr/internal/reconcile"
	"github.com/sadopc/stepr/internal/timeutil"
)

const timeLayout = "2006-01-02 15:04:05"

// Config holds the controller's tunables. Zero values fall back to the
// defaults the original cadence uses.
type Config struct {
	PreferredSource string
	Location        *time.Location

	ClockInterval   time.Duration // default 1s
	RefreshInterval time.Duration // default 5s
	BackoffBase     time.Duration // default 1s
	BackoffMax      time.Duration // default 60s

	// Now overrides the clock in tests.
	Now func() time.Time
}

func (c *Config) applyDefaults() {
	if c.Location == nil {
		c.Location = time.Local
	}
	if c.ClockInterval <= 0 {
		c.ClockInterval = time.Second
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = 5 * time.Second
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = time.Second
	}
	if c.BackoffMax <= 0 {
		c.BackoffMax = 60 * time.Second
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// Snapshot is the externally observable state the UI binds to. Readers must
// treat it as immutable.
type Snapshot struct {
	CurrentDateTime string
	HourlySteps     int64
	DailySteps      int64

	DataSourceAvailable   bool
	DataSourceNeedsUpdate bool
	InstallActionURI      string
	PermissionsGranted    bool

	StepHistory []history.HourlyRecord

	// Diagnostics.
	BySource          map[string]int64
	Duplicates        int
	ConsecutiveErrors int
	LastError         string
}

// Controller drives the refresh cycle against one data source. Create with
// New, then Start; Pause and Resume follow app visibility.
type Controller struct {
	src  health.Source
	cfg  Config
	hist *history.Store

	snap atomic.Pointer[Snapshot]

	refreshCh chan struct{}

	mu      sync.Mutex
	epoch   int
	cancel  context.CancelFunc
	running bool
	errs    int
	lastErr string
}

func New(src health.Source, cfg Config) *Controller {
	cfg.applyDefaults()
	c := &Controller{
		src:       src,
		cfg:       cfg,
		hist:      history.New(),
		refreshCh: make(chan struct{}, 1),
	}
	now := cfg.Now()
	c.snap.Store(&Snapshot{CurrentDateTime: now.In(cfg.Location).Format(timeLayout)})
	return c
}

// Snapshot returns the latest complete presentation state.
func (c *Controller) Snapshot() Snapshot {
	return *c.snap.Load()
}

// Running reports whether the polling loops are active.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Start launches the clock and data loops. No-op when already running.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.epoch++
	epoch := c.epoch
	sctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.running = true

	go c.clockLoop(sctx, epoch)
	go c.dataLoop(sctx, epoch)
}

// Pause cancels both loops and any in-flight refresh. A refresh already
// running cannot commit after this returns: the epoch has moved on. No-op
// when already paused.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.epoch++
	c.cancel()
	c.cancel = nil
	c.running = false
}

// Resume restarts the loops from scratch. Backgrounding is a new session:
// the consecutive error count resets so backoff starts over.
func (c *Controller) Resume(ctx context.Context) {
	c.mu.Lock()
	c.errs = 0
	c.lastErr = ""
	c.mu.Unlock()
	c.Start(ctx)
}

// RefreshNow requests one out-of-band data refresh, e.g. after a permission
// grant. Non-blocking; coalesces with a pending request.
func (c *Controller) RefreshNow() {
	select {
	case c.refreshCh <- struct{}{}:
	default:
	}
}

// clockLoop updates the displayed wall clock every tick and watches for day
// rollover. It never fails and is not subject to backoff.
func (c *Controller) clockLoop(ctx context.Context, epoch int) {
	ticker := time.NewTicker(c.cfg.ClockInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick(epoch)
		}
	}
}

func (c *Controller) tick(epoch int) {
	now := c.cfg.Now()
	day := timeutil.DayIndex(now, c.cfg.Location)
	c.hist.Observe(day)

	clock := now.In(c.cfg.Location).Format(timeLayout)
	hist := c.hist.Rebuild(timeutil.HourIndex(now, c.cfg.Location))
	c.mutate(epoch, func(s *Snapshot) {
		s.CurrentDateTime = clock
		s.StepHistory = hist
	})
}

// dataLoop runs the periodic refresh. After a soft failure the next attempt
// is pushed out by the backoff delay instead of the normal interval.
func (c *Controller) dataLoop(ctx context.Context, epoch int) {
	timer := time.NewTimer(0) // first refresh immediately
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		case <-c.refreshCh:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}

		ok := c.refreshOnce(ctx, epoch)

		delay := c.cfg.RefreshInterval
		if !ok {
			c.mu.Lock()
			delay = backoffDelay(c.errs, c.cfg.BackoffBase, c.cfg.BackoffMax)
			c.mu.Unlock()
		}
		timer.Reset(delay)
	}
}

// refreshOnce performs one full refresh cycle and reports success. On a soft
// failure the previous snapshot stays visible; only the error diagnostics
// change.
func (c *Controller) refreshOnce(ctx context.Context, epoch int) bool {
	now := c.cfg.Now()
	loc := c.cfg.Location

	avail := c.src.Availability(ctx)
	granted, err := c.src.HasPermissions(ctx)
	if err != nil {
		return c.softFailure(epoch, err)
	}

	if !avail.Available || !granted {
		// Capability absent is a steady state, not an error. Surface the
		// flags and keep whatever data we last had.
		c.mutate(epoch, func(s *Snapshot) {
			c.errs = 0
			c.lastErr = ""
			s.DataSourceAvailable = avail.Available
			s.DataSourceNeedsUpdate = avail.NeedsUpdate
			s.InstallActionURI = avail.InstallURI
			s.PermissionsGranted = granted
			s.ConsecutiveErrors = 0
			s.LastError = ""
		})
		return true
	}

	rec := reconcile.New(c.cfg.PreferredSource, loc)
	if err := health.ReadAll(ctx, c.src, timeutil.DayWindow(now, loc), rec.Add); err != nil {
		return c.softFailure(epoch, err)
	}
	agg := rec.Result()

	if c.stale(epoch) {
		// Paused while the fetch was in flight; nothing may mutate state now.
		return false
	}
	day := timeutil.DayIndex(now, loc)
	c.hist.Observe(day)
	c.hist.Replace(day, agg.ByHour)
	hour := timeutil.HourIndex(now, loc)

	snap := Snapshot{
		CurrentDateTime:       now.In(loc).Format(timeLayout),
		HourlySteps:           agg.ByHour[hour],
		DailySteps:            agg.Total,
		DataSourceAvailable:   true,
		PermissionsGranted:    true,
		InstallActionURI:      avail.InstallURI,
		DataSourceNeedsUpdate: avail.NeedsUpdate,
		StepHistory:           c.hist.Rebuild(hour),
		BySource:              agg.BySource,
		Duplicates:            agg.Duplicates,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		return false
	}
	c.errs = 0
	c.lastErr = ""
	c.snap.Store(&snap)
	return true
}

func (c *Controller) stale(epoch int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return epoch != c.epoch
}

func (c *Controller) softFailure(epoch int, err error) bool {
	// Stale-but-valid data stays; only diagnostics move.
	c.mutate(epoch, func(s *Snapshot) {
		c.errs++
		c.lastErr = err.Error()
		s.ConsecutiveErrors = c.errs
		s.LastError = c.lastErr
	})
	return false
}

// mutate applies fn to a copy of the published snapshot and republishes it.
// The lock is held across the whole read-modify-write, so a partial update
// from one task can never overwrite a full snapshot stored by another, and
// nothing lands after the session's epoch has moved on. fn runs with c.mu
// held and may touch the guarded counters.
func (c *Controller) mutate(epoch int, fn func(*Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		return
	}
	snap := *c.snap.Load()
	fn(&snap)
	c.snap.Store(&snap)
}
