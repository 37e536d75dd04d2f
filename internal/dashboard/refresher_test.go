package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smartexpense/smartexpense/internal/model"
)

type fakeFetcher struct {
	mu         sync.Mutex
	calls      []Selection
	chartsErr  error
	summaryErr error
	delay      time.Duration
	inflight   atomic.Int32
}

func (f *fakeFetcher) wait(ctx context.Context) error {
	if f.delay == 0 {
		return nil
	}
	select {
	case <-time.After(f.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeFetcher) Charts(ctx context.Context, _, month, year int) (model.Charts, error) {
	f.inflight.Add(1)
	defer f.inflight.Add(-1)
	f.mu.Lock()
	f.calls = append(f.calls, Selection{Month: month, Year: year})
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return model.Charts{}, err
	}
	if f.chartsErr != nil {
		return model.Charts{}, f.chartsErr
	}
	return model.Charts{CategoryTotals: model.Series{X: []string{"food"}, Y: []float64{float64(month)}}}, nil
}

func (f *fakeFetcher) Summary(ctx context.Context, _, _, _ int) (model.Summary, error) {
	if err := f.wait(ctx); err != nil {
		return model.Summary{}, err
	}
	if f.summaryErr != nil {
		return model.Summary{}, f.summaryErr
	}
	return model.Summary{TotalEarning: 100, TotalExpense: 40}, nil
}

func (f *fakeFetcher) chartCalls() []Selection {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Selection(nil), f.calls...)
}

func TestRefresh(t *testing.T) {
	r := NewRefresher(&fakeFetcher{}, 1, time.Millisecond, nil)
	v, err := r.Refresh(context.Background(), Selection{Month: 3, Year: 2024})
	if err != nil {
		t.Fatal(err)
	}
	if v.TotalEarning != 100 || len(v.CategoryBars) != 1 || v.CategoryBars[0].Value != 3 {
		t.Errorf("view = %+v", v)
	}
}

func TestRefreshEitherFailureFails(t *testing.T) {
	boom := errors.New("boom")
	for _, f := range []*fakeFetcher{{chartsErr: boom}, {summaryErr: boom}} {
		r := NewRefresher(f, 1, time.Millisecond, nil)
		v, err := r.Refresh(context.Background(), Selection{Month: 3, Year: 2024})
		if !errors.Is(err, boom) {
			t.Errorf("err = %v, want boom", err)
		}
		if !v.Empty() {
			t.Errorf("failed refresh returned data: %+v", v)
		}
	}
}

func TestRapidChangesOnlyDeliverLast(t *testing.T) {
	f := &fakeFetcher{}
	r := NewRefresher(f, 1, 50*time.Millisecond, nil)

	type result struct {
		v   View
		err error
	}
	first := make(chan result, 1)
	go func() {
		v, err := r.Refresh(context.Background(), Selection{Month: 1, Year: 2024})
		first <- result{v, err}
	}()

	time.Sleep(10 * time.Millisecond)
	v, err := r.Refresh(context.Background(), Selection{Month: 2, Year: 2024})
	if err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	if v.CategoryBars[0].Value != 2 {
		t.Errorf("view is for month %v, want 2", v.CategoryBars[0].Value)
	}

	got := <-first
	if !errors.Is(got.err, ErrSuperseded) {
		t.Errorf("first refresh err = %v, want ErrSuperseded", got.err)
	}

	calls := f.chartCalls()
	if len(calls) != 1 || calls[0].Month != 2 {
		t.Errorf("fetches = %+v, want only month 2 (debounce)", calls)
	}
}

func TestNewSelectionCancelsInflightFetch(t *testing.T) {
	f := &fakeFetcher{delay: time.Second}
	r := NewRefresher(f, 1, time.Millisecond, nil)

	first := make(chan error, 1)
	go func() {
		_, err := r.Refresh(context.Background(), Selection{Month: 1, Year: 2024})
		first <- err
	}()

	deadline := time.Now().Add(time.Second)
	for f.inflight.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first fetch never started")
		}
		time.Sleep(time.Millisecond)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = r.Refresh(context.Background(), Selection{Month: 2, Year: 2024})
	}()

	select {
	case err := <-first:
		if !errors.Is(err, ErrSuperseded) {
			t.Errorf("err = %v, want ErrSuperseded", err)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("in-flight fetch was not canceled")
	}
	<-done
}

func TestCancel(t *testing.T) {
	r := NewRefresher(&fakeFetcher{}, 1, time.Second, nil)
	errc := make(chan error, 1)
	go func() {
		_, err := r.Refresh(context.Background(), Selection{Month: 1, Year: 2024})
		errc <- err
	}()
	time.Sleep(10 * time.Millisecond)
	r.Cancel()

	select {
	case err := <-errc:
		if err == nil {
			t.Error("canceled refresh returned a view")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Cancel did not stop the refresh")
	}
}

func TestLoadReportsFailure(t *testing.T) {
	boom := errors.New("boom")
	f := &fakeFetcher{summaryErr: boom}
	_, err := Load(context.Background(), f, 1, Selection{Month: 1, Year: 2024})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if got := f.chartCalls(); len(got) != 1 || got[0] != (Selection{Month: 1, Year: 2024}) {
		t.Errorf("chart calls = %+v", got)
	}
}
