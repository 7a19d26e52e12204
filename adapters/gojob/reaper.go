package gojob

import (
	"context"
	"fmt"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-gateway/core"
)

// ReapFunc deletes expired tokens and reports how many rows went away.
type ReapFunc func(ctx context.Context) (int, error)

// TokenReaper consumes reap jobs from a queue and runs the expiry sweep.
// Unexpected jobs are dead-lettered, transient failures are requeued with
// a backoff delay.
type TokenReaper struct {
	dequeuer   core.JobDequeuer
	reap       ReapFunc
	logger     core.Logger
	retryDelay time.Duration
}

type ReaperOption func(*TokenReaper)

func WithReaperLogger(logger core.Logger) ReaperOption {
	return func(r *TokenReaper) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithReaperRetryDelay(delay time.Duration) ReaperOption {
	return func(r *TokenReaper) {
		if delay > 0 {
			r.retryDelay = delay
		}
	}
}

func NewTokenReaper(dequeuer core.JobDequeuer, reap ReapFunc, opts ...ReaperOption) *TokenReaper {
	reaper := &TokenReaper{
		dequeuer:   dequeuer,
		reap:       reap,
		logger:     glog.Nop(),
		retryDelay: 30 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(reaper)
		}
	}
	return reaper
}

// RunOnce pulls a single delivery and processes it. The returned count is
// the number of reaped tokens for an acked reap job, zero otherwise.
func (r *TokenReaper) RunOnce(ctx context.Context) (int, error) {
	if r == nil || r.dequeuer == nil || r.reap == nil {
		return 0, fmt.Errorf("gojob: token reaper is not configured")
	}

	delivery, err := r.dequeuer.Dequeue(ctx)
	if err != nil {
		return 0, fmt.Errorf("gojob: dequeue reap job: %w", err)
	}

	msg := delivery.Message()
	if msg == nil || msg.JobID != JobIDTokenReap {
		jobID := ""
		if msg != nil {
			jobID = msg.JobID
		}
		r.logger.Warn("discarding unexpected job", "job_id", jobID)
		if nackErr := delivery.Nack(ctx, core.JobNackOptions{
			DeadLetter: true,
			Reason:     "unexpected job id",
		}); nackErr != nil {
			return 0, fmt.Errorf("gojob: dead-letter unexpected job: %w", nackErr)
		}
		return 0, nil
	}

	reaped, err := r.reap(ctx)
	if err != nil {
		r.logger.Error("token reap failed", "error", err)
		if nackErr := delivery.Nack(ctx, core.JobNackOptions{
			Delay:   r.retryDelay,
			Requeue: true,
			Reason:  err.Error(),
		}); nackErr != nil {
			return 0, fmt.Errorf("gojob: requeue reap job: %w", nackErr)
		}
		return 0, err
	}

	if err := delivery.Ack(ctx); err != nil {
		return reaped, fmt.Errorf("gojob: ack reap job: %w", err)
	}
	r.logger.Info("token reap complete", "reaped", reaped)
	return reaped, nil
}
