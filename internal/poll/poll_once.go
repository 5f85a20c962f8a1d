package poll

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"yardwatch/internal/domain"
	"yardwatch/internal/events"
	"yardwatch/internal/filter"
	"yardwatch/internal/metrics"
	"yardwatch/internal/notify"
	"yardwatch/internal/scrape"
)

// Store is the slice of the dedup store a cycle needs.
type Store interface {
	Record(ctx context.Context, l domain.Listing, now time.Time) (added bool, err error)
	Count(ctx context.Context) (int64, error)
}

// Cycle holds everything one polling sweep needs. The source set and
// criteria are fixed at construction; a sweep never sees a half-applied
// config change.
type Cycle struct {
	Sources  []scrape.Source
	Store    Store
	Notifier notify.Notifier
	Criteria domain.Criteria
	Timeout  time.Duration // per source fetch
	Hub      *events.Hub
	Metrics  metrics.Recorder
	Log      zerolog.Logger
	Now      func() time.Time
}

// result carries one adapter's fetch across the fan-out boundary.
type result struct {
	source   string
	listings []domain.Listing
	err      error
}

// Run executes one full sweep: fetch all sources concurrently, then
// filter, dedup and notify sequentially. Every failure inside the cycle
// is contained; Run never returns an error and never panics the caller.
func (c *Cycle) Run(ctx context.Context, trigger string) Report {
	if c.Metrics == nil {
		c.Metrics = metrics.NewNop()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Timeout <= 0 {
		c.Timeout = 2 * time.Minute
	}

	start := c.Now()
	rep := Report{Trigger: trigger, StartedAt: start.UTC()}

	c.publish("", events.TypeCycleStarted, map[string]string{"trigger": trigger})

	// Fan out. One slot per source keeps the merge in registry order no
	// matter which fetch finishes first.
	res := make([]result, len(c.Sources))
	var g errgroup.Group

	for i, s := range c.Sources {
		i, s := i, s
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(ctx, c.Timeout)
			defer cancel()

			c.Log.Debug().Str("source", s.Name()).Msg("fetch started")
			ls, err := s.Fetch(fctx)
			res[i] = result{
				source:   s.Name(),
				listings: ls,
				err:      scrape.WrapSource(s.Name(), err),
			}
			return nil // a failed source must not cancel its siblings
		})
	}
	_ = g.Wait()

	// Merge phase: strictly sequential, one listing at a time, so
	// notification order is stable and only this goroutine touches the
	// store.
	for _, r := range res {
		rep.Sources = append(rep.Sources, c.processSource(ctx, r, &rep))
	}

	rep.DurationMS = time.Since(start).Milliseconds()
	c.Metrics.CycleFinished(time.Since(start).Seconds())
	c.publish("", events.TypeCycleFinished, rep)

	c.Log.Info().
		Str("trigger", trigger).
		Int("fetched", rep.TotalFetched).
		Int("new", rep.TotalNew).
		Int64("duration_ms", rep.DurationMS).
		Msg("cycle finished")

	return rep
}

func (c *Cycle) processSource(ctx context.Context, r result, rep *Report) SourceReport {
	sr := SourceReport{Source: r.source}

	if r.err != nil {
		sr.Error = r.err.Error()
		c.Metrics.Failure(r.source, metrics.KindSource)
		c.Log.Warn().Err(r.err).Str("source", r.source).Msg("source failed, others unaffected")
		return sr
	}

	sr.Fetched = len(r.listings)
	rep.TotalFetched += len(r.listings)
	c.Metrics.Fetched(r.source, len(r.listings))

	for _, l := range r.listings {
		keep, why := filter.Reason(l, c.Criteria)
		if !keep {
			c.Log.Debug().
				Str("source", r.source).
				Str("title", l.Title).
				Str("reason", why).
				Msg("listing filtered")
			continue
		}
		sr.Matched++

		added, err := c.Store.Record(ctx, l, c.Now())
		if err != nil {
			// Deferred, not lost: nothing was recorded, so the next
			// cycle retries this listing from scratch.
			sr.StoreErrors++
			c.Metrics.Failure(r.source, metrics.KindStore)
			c.Log.Error().Err(err).Str("key", l.IdentityKey()).Msg("store failed, listing deferred")
			continue
		}
		if !added {
			continue // seen in an earlier cycle
		}
		sr.New++
		rep.TotalNew++

		c.publish("", events.TypeListingNew, map[string]string{
			"key":      l.IdentityKey(),
			"title":    l.Title,
			"location": l.Location,
		})

		if err := c.Notifier.Send(ctx, l); err != nil {
			// Recorded but unsent is the accepted gap: no retry, no
			// rollback of the dedup record.
			sr.SinkErrors++
			c.Metrics.Failure(r.source, metrics.KindSink)
			c.Log.Error().Err(err).Str("key", l.IdentityKey()).Msg("notify failed")
		}
	}

	c.Metrics.Added(r.source, sr.New)
	return sr
}

func (c *Cycle) publish(reqID, typ string, data any) {
	if c.Hub == nil {
		return
	}
	c.Hub.Publish(events.MakeEvent(reqID, typ, 1, data))
}
