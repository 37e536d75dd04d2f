package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/smartexpense/smartexpense/internal/model"
)

// DefaultDebounce is the pause after a selection change before fetching.
const DefaultDebounce = 300 * time.Millisecond

// ErrSuperseded is returned by a refresh that a newer selection replaced.
var ErrSuperseded = errors.New("dashboard: refresh superseded")

// Fetcher loads the two aggregate payloads.
type Fetcher interface {
	Charts(ctx context.Context, userID, month, year int) (model.Charts, error)
	Summary(ctx context.Context, userID, month, year int) (model.Summary, error)
}

// Selection is the month and year being viewed.
type Selection struct {
	Month int
	Year  int
}

// SelectionOf returns the selection containing t.
func SelectionOf(t time.Time) Selection {
	return Selection{Month: int(t.Month()), Year: t.Year()}
}

// Refresher loads dashboard views with replace-on-change semantics: each
// call cancels the one before it, so only the latest selection of a rapid
// sequence produces a view.
type Refresher struct {
	fetch    Fetcher
	userID   int
	debounce time.Duration
	log      *zap.Logger

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// NewRefresher returns a Refresher for userID. A non-positive debounce
// uses DefaultDebounce.
func NewRefresher(f Fetcher, userID int, debounce time.Duration, log *zap.Logger) *Refresher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Refresher{fetch: f, userID: userID, debounce: debounce, log: log}
}

// Refresh waits out the debounce, then fetches charts and summary
// concurrently. Either failure fails the refresh. A refresh replaced by a
// newer call returns ErrSuperseded.
func (r *Refresher) Refresh(ctx context.Context, sel Selection) (View, error) {
	ctx, cancel := context.WithCancel(ctx)
	gen := r.begin(cancel)
	defer r.end(gen, cancel)

	timer := time.NewTimer(r.debounce)
	select {
	case <-ctx.Done():
		timer.Stop()
		return View{}, r.stopped(ctx, gen)
	case <-timer.C:
	}

	v, err := Load(ctx, r.fetch, r.userID, sel)
	if err != nil {
		if r.superseded(gen) {
			return View{}, ErrSuperseded
		}
		r.log.Warn("dashboard refresh failed",
			zap.Int("month", sel.Month), zap.Int("year", sel.Year), zap.Error(err))
		return View{}, err
	}
	if r.superseded(gen) {
		return View{}, ErrSuperseded
	}
	return v, nil
}

// Load fetches charts and summary for sel concurrently and adapts them.
// Either failure cancels the other and fails the load.
func Load(ctx context.Context, f Fetcher, userID int, sel Selection) (View, error) {
	var (
		charts  model.Charts
		summary model.Summary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		charts, err = f.Charts(gctx, userID, sel.Month, sel.Year)
		return err
	})
	g.Go(func() error {
		var err error
		summary, err = f.Summary(gctx, userID, sel.Month, sel.Year)
		return err
	})
	if err := g.Wait(); err != nil {
		return View{}, err
	}
	return Adapt(charts, summary), nil
}

// Cancel stops any refresh in flight.
func (r *Refresher) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.gen++
}

func (r *Refresher) begin(cancel context.CancelFunc) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
	r.gen++
	r.cancel = cancel
	return r.gen
}

func (r *Refresher) end(gen uint64, cancel context.CancelFunc) {
	cancel()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen == gen {
		r.cancel = nil
	}
}

func (r *Refresher) superseded(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen != gen
}

func (r *Refresher) stopped(ctx context.Context, gen uint64) error {
	if r.superseded(gen) {
		return ErrSuperseded
	}
	return ctx.Err()
}
