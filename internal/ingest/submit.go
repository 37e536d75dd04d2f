package ingest

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/smartexpense/smartexpense/internal/model"
)

var (
	// ErrEmptyBatch is returned when there is nothing to submit.
	ErrEmptyBatch = errors.New("no expenses to submit")
	// ErrSubmitting is returned while a submission is already running.
	ErrSubmitting = errors.New("submission already in progress")
)

// SubmitState is the submission lifecycle.
type SubmitState int

const (
	Idle SubmitState = iota
	Submitting
	Success
	Failed
)

func (s SubmitState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// ExpenseAdder posts a batch of expenses for a user.
type ExpenseAdder interface {
	AddExpenses(ctx context.Context, userID int, rows []model.ExpenseRow) (int, error)
}

// Submitter sends a Batch in one call.
type Submitter struct {
	api    ExpenseAdder
	batch  *Batch
	userID int
	delay  time.Duration
	log    *zap.Logger

	mu    sync.Mutex
	state SubmitState
	err   error
}

// NewSubmitter returns a Submitter for userID. delay is the pause between a
// successful call and reporting Success, giving the user a moment to see
// the confirmation before the review step.
func NewSubmitter(api ExpenseAdder, batch *Batch, userID int, delay time.Duration, log *zap.Logger) *Submitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Submitter{api: api, batch: batch, userID: userID, delay: delay, log: log}
}

// State returns the current state and the error of the last failure.
func (s *Submitter) State() (SubmitState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.err
}

// Submit sends every pending row. On failure the batch is left exactly as
// it was and the submission may be retried. Once the request is sent it
// runs to completion.
func (s *Submitter) Submit(ctx context.Context) (int, error) {
	s.mu.Lock()
	if s.state == Submitting {
		s.mu.Unlock()
		return 0, ErrSubmitting
	}
	rows := s.batch.Rows()
	if len(rows) == 0 {
		s.mu.Unlock()
		return 0, ErrEmptyBatch
	}
	s.state, s.err = Submitting, nil
	s.mu.Unlock()

	n, err := s.api.AddExpenses(context.WithoutCancel(ctx), s.userID, rows)
	if err != nil {
		s.log.Warn("expense batch rejected", zap.Int("rows", len(rows)), zap.Error(err))
		s.finish(Failed, err)
		return 0, err
	}

	s.batch.dropFront(len(rows))
	s.log.Info("expense batch submitted", zap.Int("rows", len(rows)), zap.Int("inserted", n))

	if s.delay > 0 {
		t := time.NewTimer(s.delay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
		}
	}
	s.finish(Success, nil)
	return n, nil
}

func (s *Submitter) finish(state SubmitState, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state, s.err = state, err
}
