package poll

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// ErrCycleRunning rejects a trigger while a sweep is in flight. The
// running cycle is never interrupted and triggers are never queued.
var ErrCycleRunning = errors.New("cycle already running")

type Options struct {
	Interval time.Duration
	TestMode bool
}

// Poller owns the periodic loop. Manual triggers and ticks share
// RunCycle, so both run the identical pipeline.
type Poller struct {
	cycle *Cycle
	opts  Options
	log   zerolog.Logger

	startedAt  time.Time
	running    atomic.Bool
	lastReport atomic.Value // Report
}

func NewPoller(c *Cycle, opts Options, log zerolog.Logger) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = 30 * time.Minute
	}
	return &Poller{cycle: c, opts: opts, log: log, startedAt: time.Now()}
}

// RunCycle runs one sweep unless one is already in flight.
func (p *Poller) RunCycle(ctx context.Context, trigger string) (Report, error) {
	if !p.running.CompareAndSwap(false, true) {
		return Report{}, ErrCycleRunning
	}
	defer p.running.Store(false)

	rep := p.cycle.Run(ctx, trigger)
	p.lastReport.Store(rep)
	return rep, nil
}

// Start launches the loop: one immediate sweep, then one per interval.
func (p *Poller) Start(ctx context.Context) {
	go p.loop(ctx)
}

func (p *Poller) loop(ctx context.Context) {
	if _, err := p.RunCycle(ctx, TriggerStartup); err != nil {
		p.log.Warn().Err(err).Msg("startup cycle skipped")
	}

	t := time.NewTicker(p.opts.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := p.RunCycle(ctx, TriggerInterval); err != nil {
				// a long sweep simply absorbs this tick
				p.log.Warn().Msg("previous cycle still running, tick skipped")
			}
		}
	}
}

// Status is the control-surface summary.
type Status struct {
	Running         bool     `json:"running"`
	UptimeSeconds   int64    `json:"uptime_seconds"`
	TrackedListings int64    `json:"tracked_listings"`
	IntervalMinutes int      `json:"interval_minutes"`
	TestMode        bool     `json:"test_mode"`
	Sources         []string `json:"sources"`
	LastReport      *Report  `json:"last_report,omitempty"`
}

func (p *Poller) Status(ctx context.Context) Status {
	st := Status{
		Running:         p.running.Load(),
		UptimeSeconds:   int64(time.Since(p.startedAt).Seconds()),
		IntervalMinutes: int(p.opts.Interval / time.Minute),
		TestMode:        p.opts.TestMode,
	}
	for _, s := range p.cycle.Sources {
		st.Sources = append(st.Sources, s.Name())
	}
	if n, err := p.cycle.Store.Count(ctx); err == nil {
		st.TrackedListings = n
	} else {
		p.log.Warn().Err(err).Msg("status count failed")
	}
	if rep, ok := p.lastReport.Load().(Report); ok {
		st.LastReport = &rep
	}
	return st
}
