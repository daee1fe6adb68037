// Package retry wraps remote store calls with bounded retries. Transient
// failures (timeouts, rate limits, 5xx) are retried with escalating backoff;
// permanent failures (auth, malformed request, not-found) surface at once.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/log"
)

var (
	// ErrRemoteUnavailable marks a transient failure that survived every
	// attempt. Distinguishable from ErrRemoteRejected via errors.Is.
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	// ErrRemoteRejected marks a permanent failure surfaced without
	// consuming the remaining attempts.
	ErrRemoteRejected = errors.New("remote store rejected request")
)

// state of one retry sequence.
type state int

const (
	stateAttempting state = iota
	stateSucceeded
	stateFailedTransient
	stateFailedPermanent
)

// SleepFunc waits for d or returns early with the context's error.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Retrier executes operations with a fixed attempt budget and exponential
// backoff. The zero value is not usable; call New.
type Retrier struct {
	attempts  int
	baseDelay time.Duration
	sleep     SleepFunc
	logger    *log.Logger
}

type Option func(*Retrier)

// WithSleep replaces the real sleep, letting tests run retries instantly.
func WithSleep(s SleepFunc) Option {
	return func(r *Retrier) { r.sleep = s }
}

func WithLogger(l *log.Logger) Option {
	return func(r *Retrier) { r.logger = l }
}

// New builds a Retrier with the given attempt budget and base delay.
// Attempts below 1 are coerced to 1.
func New(attempts int, baseDelay time.Duration, opts ...Option) *Retrier {
	if attempts < 1 {
		attempts = 1
	}
	r := &Retrier{
		attempts:  attempts,
		baseDelay: baseDelay,
		sleep:     defaultSleep,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Do runs op until it succeeds, fails permanently, or the attempt budget is
// spent. The backoff delay doubles each attempt, so it is monotonically
// non-decreasing. Cancelling ctx abandons the remaining attempts; a call
// already in flight is not aborted beyond what the transport enforces.
//
// Note for write operations: the backing store has no transactional append,
// so an attempt that errs after the row landed will be retried and may
// duplicate the row. Callers that cannot tolerate duplicates should
// reconcile afterwards.
func (r *Retrier) Do(ctx context.Context, name string, op func(ctx context.Context) error) error {
	var lastErr error
	st := stateAttempting

	for attempt := 1; st == stateAttempting; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := op(ctx)
		if err == nil {
			st = stateSucceeded
			break
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		lastErr = err
		switch {
		case Classify(err) == Permanent:
			st = stateFailedPermanent
		case attempt >= r.attempts:
			st = stateFailedTransient
		default:
			delay := r.backoff(attempt)
			if r.logger != nil {
				r.logger.WarnContext(ctx, "Transient failure, retrying",
					"op", name, "attempt", attempt, "delay", delay, "error", err)
			}
			if err := r.sleep(ctx, delay); err != nil {
				return err
			}
		}
	}

	switch st {
	case stateSucceeded:
		return nil
	case stateFailedPermanent:
		return fmt.Errorf("%s: %w: %w", name, ErrRemoteRejected, lastErr)
	default:
		return fmt.Errorf("%s: %w after %d attempts: %w", name, ErrRemoteUnavailable, r.attempts, lastErr)
	}
}

// backoff doubles the base delay per completed attempt.
func (r *Retrier) backoff(attempt int) time.Duration {
	return r.baseDelay << (attempt - 1)
}

func defaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
