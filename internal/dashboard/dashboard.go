// Package dashboard loads the status counters and the most recent issues
// together, retrying failed loads with exponential backoff.
package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ALT-F4-LLC/tracker/internal/db"
	"github.com/ALT-F4-LLC/tracker/internal/model"
	"github.com/ALT-F4-LLC/tracker/internal/paginate"
	"github.com/ALT-F4-LLC/tracker/internal/stats"
)

const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = time.Second
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Options tune the retry policy. Zero values select the defaults; use a
// negative MaxRetries to disable automatic retries.
type Options struct {
	PageSize   int
	MaxRetries int
	BaseDelay  time.Duration
	Sleep      SleepFunc
}

// Dashboard is the landing view: counters plus a paginated list of the
// newest issues.
type Dashboard struct {
	agg   *stats.Aggregator
	pages *paginate.Paginator
	log   zerolog.Logger
	opts  Options

	mu       sync.Mutex
	stats    model.Stats
	loaded   bool
	attempts int
	lastErr  error
}

// New returns a Dashboard reading from store.
func New(store db.Store, log zerolog.Logger, opts Options) *Dashboard {
	if opts.MaxRetries == 0 {
		opts.MaxRetries = DefaultMaxRetries
	} else if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = DefaultBaseDelay
	}
	if opts.Sleep == nil {
		opts.Sleep = sleep
	}
	return &Dashboard{
		agg:   stats.New(store),
		pages: paginate.New(store, opts.PageSize),
		log:   log,
		opts:  opts,
	}
}

// Load fetches the counters and the first page concurrently and publishes
// both only if both succeed. A failed attempt is retried up to MaxRetries
// times, waiting BaseDelay, 2*BaseDelay, 4*BaseDelay and so on between
// attempts. After that Retry must be called explicitly.
func (d *Dashboard) Load(ctx context.Context) error {
	var err error
	for retry := 0; ; retry++ {
		if err = d.attempt(ctx); err == nil {
			return nil
		}
		if retry >= d.opts.MaxRetries {
			break
		}

		delay := d.opts.BaseDelay << retry
		d.log.Warn().Err(err).
			Int("retry", retry+1).
			Dur("backoff", delay).
			Msg("dashboard load failed, retrying")
		if serr := d.opts.Sleep(ctx, delay); serr != nil {
			return fmt.Errorf("loading dashboard: %w", serr)
		}
	}

	d.log.Error().Err(err).Int("attempts", d.Attempts()).Msg("dashboard load failed, giving up")
	return fmt.Errorf("loading dashboard: %w", err)
}

// Retry makes a single manual load attempt.
func (d *Dashboard) Retry(ctx context.Context) error {
	if err := d.attempt(ctx); err != nil {
		d.log.Error().Err(err).Msg("dashboard retry failed")
		return fmt.Errorf("loading dashboard: %w", err)
	}
	return nil
}

// LoadMore appends the next page of recent issues.
func (d *Dashboard) LoadMore(ctx context.Context) error {
	if err := d.pages.LoadMore(ctx); err != nil {
		d.log.Error().Err(err).Msg("loading more issues")
		return err
	}
	return nil
}

// Stats returns the counters of the last successful load.
func (d *Dashboard) Stats() model.Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// Recent returns every recent issue loaded so far, newest first.
func (d *Dashboard) Recent() []model.Issue {
	return d.pages.Items()
}

// HasMore reports whether LoadMore would fetch another page.
func (d *Dashboard) HasMore() bool {
	return d.pages.HasMore()
}

// Cursor returns the position after the last loaded issue.
func (d *Dashboard) Cursor() *db.Cursor {
	return d.pages.Cursor()
}

// Loaded reports whether any load has succeeded.
func (d *Dashboard) Loaded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loaded
}

// Attempts returns how many load attempts have been made in total.
func (d *Dashboard) Attempts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.attempts
}

// Err returns the error of the last attempt, or nil if it succeeded.
func (d *Dashboard) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

func (d *Dashboard) attempt(ctx context.Context) error {
	d.mu.Lock()
	d.attempts++
	d.mu.Unlock()

	var (
		s     model.Stats
		first paginate.Page
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		s, err = d.agg.Aggregate(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		first, err = d.pages.FetchPage(gctx, nil)
		return err
	})
	err := g.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastErr = err
	if err != nil {
		return err
	}
	d.stats = s
	d.loaded = true
	d.pages.Commit(first)
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
