// Package ingest feeds the tank. A Scheduler polls the asset source off the
// render goroutine, fetches what the ledger has not seen, preprocesses the
// images and queues the resulting sprites into the pool.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/phanxgames/aquarium/internal/ledger"
	"github.com/phanxgames/aquarium/internal/source"
	"github.com/phanxgames/aquarium/internal/sprite"
	"github.com/phanxgames/aquarium/internal/tank"
)

// DefaultInterval is the number of ticks between background polls.
const DefaultInterval = 1000

// Result summarizes one ingestion run.
type Result struct {
	Listed  int
	New     int
	Fetched int
	Added   int
	Skipped int
}

// Scheduler runs ingestion and purge tasks. At most one task is in flight at
// any time; a trigger that arrives while one is running is dropped.
type Scheduler struct {
	src      source.Source
	ledger   *ledger.Ledger
	pre      *sprite.Preprocessor
	pool     *tank.Pool
	cacheDir string
	interval uint64
	workers  int

	ctx    context.Context
	cancel context.CancelFunc

	runMu    sync.Mutex
	inFlight atomic.Bool
	wg       sync.WaitGroup
	last     atomic.Pointer[Result]
}

// New creates a Scheduler. An interval of 0 selects DefaultInterval.
func New(src source.Source, l *ledger.Ledger, pre *sprite.Preprocessor, pool *tank.Pool, cacheDir string, interval uint64) *Scheduler {
	if interval == 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		src:      src,
		ledger:   l,
		pre:      pre,
		pool:     pool,
		cacheDir: cacheDir,
		interval: interval,
		workers:  max(runtime.NumCPU()/2, 1),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Interval returns the number of ticks between polls.
func (s *Scheduler) Interval() uint64 {
	return s.interval
}

// InFlight reports whether a background task is running.
func (s *Scheduler) InFlight() bool {
	return s.inFlight.Load()
}

// LastResult returns the summary of the most recent completed run, or nil.
func (s *Scheduler) LastResult() *Result {
	return s.last.Load()
}

// MaybeTrigger starts a background poll when tick falls on the polling
// interval. It reports whether a poll was started.
func (s *Scheduler) MaybeTrigger(tick uint64) bool {
	if tick%s.interval != 0 {
		return false
	}
	return s.Trigger()
}

// Trigger starts a background poll unless a task is already in flight. It
// never blocks.
func (s *Scheduler) Trigger() bool {
	return s.spawn("poll", func(ctx context.Context) error {
		_, err := s.RunOnce(ctx)
		return err
	})
}

// PurgeAsync starts a background purge. Unlike Trigger it waits for any
// in-flight task to finish first instead of being dropped.
func (s *Scheduler) PurgeAsync() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.Purge(s.ctx); err != nil {
			logf("purge: %v", err)
		}
	}()
}

func (s *Scheduler) spawn(name string, task func(ctx context.Context) error) bool {
	if !s.inFlight.CompareAndSwap(false, true) {
		return false
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.inFlight.Store(false)
		if err := task(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
			logf("%s: %v", name, err)
		}
	}()
	return true
}

// Wait blocks until every background task has returned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Close cancels running tasks and waits for them.
func (s *Scheduler) Close() {
	s.cancel()
	s.wg.Wait()
}

// RunOnce polls the source, fetches new assets, preprocesses each PNG and
// queues the sprites into the pool with the ingest separation factor.
func (s *Scheduler) RunOnce(ctx context.Context) (Result, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	res, fetched, err := s.poll(ctx)
	if err != nil {
		return res, err
	}
	sprites := s.process(ctx, pngs(fetched), &res)
	s.pool.Enqueue(tank.IngestSeparation, sprites...)
	res.Added = len(sprites)
	s.last.Store(&res)

	if res.New > 0 {
		logf("%d new of %d listed, %d fetched, %d swimming in, %d skipped",
			res.New, res.Listed, res.Fetched, res.Added, res.Skipped)
	}
	return res, nil
}

// Bootstrap performs the startup load: one poll to pull new assets into the
// cache, then every PNG already in the cache joins the pool with the wide
// initial separation. A failed poll is logged and the cache is still loaded.
func (s *Scheduler) Bootstrap(ctx context.Context) (Result, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	res, _, err := s.poll(ctx)
	if err != nil {
		logf("bootstrap poll: %v", err)
	}

	entries, err := os.ReadDir(s.cacheDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return res, fmt.Errorf("ingest: read cache %s: %w", s.cacheDir, err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sprites := s.process(ctx, pngs(names), &res)
	s.pool.Enqueue(tank.InitialSeparation, sprites...)
	res.Added = len(sprites)
	s.last.Store(&res)
	if known, err := s.ledger.Known(); err == nil {
		logf("bootstrap: %d fish in the tank, %d names known", res.Added, len(known))
	} else {
		logf("bootstrap: %d fish in the tank: %v", res.Added, err)
	}
	return res, nil
}

// Reset empties the cache folder and removes the ledger, so the next poll
// sees every asset as new.
func (s *Scheduler) Reset() error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.resetLocked()
}

func (s *Scheduler) resetLocked() error {
	return errors.Join(source.ClearDir(s.cacheDir), s.ledger.Remove())
}

// Purge clears the cache folder, the ledger, everything the source still
// holds and every live or queued fish. A poll that was running when Purge
// was called finishes first; its fish are dropped with the rest.
func (s *Scheduler) Purge(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.pool.Clear()
	err := errors.Join(s.resetLocked(), s.src.Purge(ctx))
	if err == nil {
		logf("purged cache, ledger and %s source", s.src.Kind())
	}
	return err
}

// poll lists the source, records the listing in the ledger and fetches the
// new names. Names that fail to fetch are forgotten so the next poll retries
// them.
func (s *Scheduler) poll(ctx context.Context) (Result, []string, error) {
	var res Result

	listing, err := s.src.List(ctx)
	if err != nil {
		return res, nil, err
	}
	res.Listed = len(listing)

	fresh, err := s.ledger.DiffAndUpdate(listing)
	if err != nil {
		return res, nil, err
	}
	res.New = len(fresh)
	if len(fresh) == 0 {
		return res, nil, nil
	}

	fetched, err := s.src.Fetch(ctx, fresh, s.cacheDir)
	res.Fetched = len(fetched)
	if err != nil {
		logf("fetch: %v", err)
		failed := slices.DeleteFunc(slices.Clone(fresh), func(name string) bool {
			return slices.Contains(fetched, name)
		})
		if ferr := s.ledger.Forget(failed...); ferr != nil {
			logf("ledger forget: %v", ferr)
		}
	}
	return res, fetched, nil
}

// process preprocesses the named cache files concurrently. Undecodable
// assets are logged and skipped. The returned sprites keep the input order.
func (s *Scheduler) process(ctx context.Context, names []string, res *Result) []*sprite.Sprite {
	out := make([]*sprite.Sprite, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	var skipped atomic.Int32
	for i, name := range names {
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			sp, err := s.pre.Process(filepath.Join(s.cacheDir, filepath.Base(name)))
			if err != nil {
				logf("skip %s: %v", name, err)
				skipped.Add(1)
				return nil
			}
			out[i] = sp
			return nil
		})
	}
	_ = g.Wait()

	res.Skipped += int(skipped.Load())
	return slices.DeleteFunc(out, func(sp *sprite.Sprite) bool { return sp == nil })
}

// pngs keeps the names with a .png extension.
func pngs(names []string) []string {
	var out []string
	for _, name := range names {
		if strings.EqualFold(filepath.Ext(name), ".png") {
			out = append(out, name)
		}
	}
	return out
}

func logf(format string, args ...any) {
	log.Printf("[ingest] "+format, args...)
}
