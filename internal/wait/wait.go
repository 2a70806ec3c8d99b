// Package wait synchronizes test steps with asynchronous page loads by polling
// a condition until it holds or a timeout elapses.
package wait

import (
	"context"
	"fmt"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
	"go.uber.org/zap"

	"github.com/padaiyal/webdriver-exercises/internal/browser"
)

const DefaultInterval = 500 * time.Millisecond

// Observation is the result of evaluating a condition once.
type Observation[T any] struct {
	Value T
	Met   bool
	// State describes what was seen, e.g. the current title. It ends up in
	// TimeoutError.LastObserved.
	State string
}

// Condition is a predicate over the current page state.
type Condition[T any] struct {
	// Description reads like "title to be \"Google\"".
	Description string
	// Want is the value the condition is waiting for, if it has one.
	Want string
	Eval func(ctx context.Context, d browser.Driver) (Observation[T], error)
}

type TimeoutError struct {
	Condition    string
	Want         string
	Timeout      time.Duration
	LastObserved string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for %s (last observed: %q)", e.Timeout, e.Condition, e.LastObserved)
}

// Diff renders the difference between the awaited and the last observed value.
// It is empty when the condition has no single wanted value.
func (e *TimeoutError) Diff() string {
	if e.Want == "" {
		return ""
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(e.Want, e.LastObserved, false)
	return dmp.DiffPrettyText(dmp.DiffCleanupSemantic(diffs))
}

type Waiter struct {
	Driver   browser.Driver
	Timeout  time.Duration
	Interval time.Duration
	Logger   *zap.Logger
}

type Option func(*Waiter)

func WithInterval(interval time.Duration) Option {
	return func(w *Waiter) {
		w.Interval = interval
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(w *Waiter) {
		w.Logger = logger
	}
}

func New(d browser.Driver, timeout time.Duration, opts ...Option) *Waiter {
	w := &Waiter{Driver: d, Timeout: timeout, Interval: DefaultInterval, Logger: zap.NewNop()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Until polls cond every w.Interval and returns its value as soon as it holds.
// The condition gets one last evaluation at the deadline, so Until never
// returns later than the timeout plus one evaluation. A missing or stale
// element counts as "not yet"; any other driver error ends the wait.
func Until[T any](ctx context.Context, w *Waiter, cond Condition[T]) (T, error) {
	var zero T
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	logger := w.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	deadline := time.Now().Add(w.Timeout)
	var last string
	for attempt := 1; ; attempt++ {
		obs, err := cond.Eval(ctx, w.Driver)
		switch {
		case err == nil && obs.Met:
			logger.Debug("condition met", zap.String("condition", cond.Description), zap.Int("attempts", attempt))
			return obs.Value, nil
		case err == nil:
			last = obs.State
		case browser.IsNotFound(err), browser.IsStale(err):
			last = err.Error()
		default:
			return zero, fmt.Errorf("error waiting for %s: %w", cond.Description, err)
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			timeoutErr := &TimeoutError{Condition: cond.Description, Want: cond.Want, Timeout: w.Timeout, LastObserved: last}
			logger.Warn("wait timed out",
				zap.String("condition", cond.Description),
				zap.Duration("timeout", w.Timeout),
				zap.String("last_observed", last),
				zap.String("diff", timeoutErr.Diff()))
			return zero, timeoutErr
		}

		if err := Sleep(ctx, min(interval, remaining)); err != nil {
			return zero, err
		}
	}
}

// Sleep blocks for d or until ctx is done. Tests should wait on a Condition
// instead; the open/close exercise is the only fixed delay.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
