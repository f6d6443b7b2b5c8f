package decision

import (
	"context"
	"errors"
	"time"
)

// Fallback bounds a primary provider with a deadline and substitutes the
// backup's decision when the primary errors or runs out of time.
type Fallback struct {
	primary Provider
	backup  Provider
	timeout time.Duration
}

// WithFallback wraps primary. A zero timeout leaves only the caller's
// context as the bound.
func WithFallback(primary, backup Provider, timeout time.Duration) *Fallback {
	return &Fallback{primary: primary, backup: backup, timeout: timeout}
}

func (f *Fallback) Name() string {
	return f.primary.Name()
}

// The backup keeps 1/backupShare of the caller's remaining time.
const backupShare = 5

// budget is the primary's time limit: the configured timeout, cut short so
// the backup can still answer before the caller's own deadline.
func (f *Fallback) budget(ctx context.Context) (time.Duration, bool) {
	budget, ok := f.timeout, f.timeout > 0
	if deadline, has := ctx.Deadline(); has {
		left := time.Until(deadline)
		if left -= left / backupShare; !ok || left < budget {
			budget, ok = left, true
		}
	}
	return budget, ok
}

type result struct {
	action Action
	err    error
}

// Decide returns the primary's action if it answers in time. Cancellation of
// ctx itself is not recovered and is returned to the caller.
func (f *Fallback) Decide(ctx context.Context, state State, cfg Config) (Action, error) {
	pctx := ctx
	cancel := context.CancelFunc(func() {})
	if budget, ok := f.budget(ctx); ok {
		pctx, cancel = context.WithTimeout(ctx, budget)
	}
	defer cancel()

	done := make(chan result, 1)
	go func() {
		a, err := f.primary.Decide(pctx, state, cfg)
		done <- result{a, err}
	}()

	var cause error
	select {
	case r := <-done:
		if r.err == nil {
			if r.action.Source == "" {
				r.action.Source = f.primary.Name()
			}
			return r.action, nil
		}
		cause = r.err
	case <-pctx.Done():
		cause = pctx.Err()
	}

	if ctx.Err() != nil {
		return Action{}, ctx.Err()
	}
	if errors.Is(cause, context.DeadlineExceeded) {
		cause = ErrProviderTimeout
	}

	a, err := f.backup.Decide(ctx, state, cfg)
	if err != nil {
		return Action{}, errors.Join(cause, err)
	}
	a.Source = f.backup.Name()
	a.FallbackReason = cause.Error()
	return a, nil
}
