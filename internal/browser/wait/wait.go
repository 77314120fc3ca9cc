// Package wait holds the bounded polling helpers that guard every page interaction.
// Polling runs at a constant interval bounded by the wait's deadline.
package wait

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/xkilldash9x/emojicheck/internal/browser"
)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultInterval = 100 * time.Millisecond
)

type options struct {
	timeout  time.Duration
	interval time.Duration
}

// Option tunes a single wait.
type Option func(*options)

// WithTimeout bounds the wait. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithInterval sets the fixed polling interval. Non-positive values keep the default.
func WithInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.interval = d
		}
	}
}

// UntilPresent blocks until loc matches at least one element.
func UntilPresent(ctx context.Context, p browser.Prober, loc browser.Locator, opts ...Option) (browser.ElementState, error) {
	return poll(ctx, p, loc, func(s browser.ElementState) bool { return s.Present }, opts)
}

// UntilInteractable blocks until the first element matched by loc is visible,
// enabled and has a non-empty box.
func UntilInteractable(ctx context.Context, p browser.Prober, loc browser.Locator, opts ...Option) (browser.ElementState, error) {
	return poll(ctx, p, loc, browser.ElementState.Interactable, opts)
}

// errConditionUnmet marks a probe that succeeded but did not satisfy the wait.
var errConditionUnmet = errors.New("condition not met")

// deadlineBackOff keeps the constant interval but shortens the last pause so
// the final probe lands on the deadline, then stops.
type deadlineBackOff struct {
	backoff.BackOff
	deadline time.Time
	last     bool
}

func (b *deadlineBackOff) Reset() {
	b.BackOff.Reset()
	b.last = false
}

func (b *deadlineBackOff) NextBackOff() time.Duration {
	remaining := time.Until(b.deadline)
	if b.last || remaining <= 0 {
		return backoff.Stop
	}
	next := b.BackOff.NextBackOff()
	if next == backoff.Stop {
		return backoff.Stop
	}
	if remaining <= next {
		b.last = true
		return remaining
	}
	return next
}

// poll probes immediately, then every interval, with the final probe taken at
// the deadline. Each probe is bounded by the deadline, or by one interval for
// the final probe, so a hung probe cannot stretch the wait. A timeout yields
// *browser.ElementNotReadyError; cancellation of ctx is returned unchanged.
func poll(ctx context.Context, p browser.Prober, loc browser.Locator, cond func(browser.ElementState) bool, opts []Option) (browser.ElementState, error) {
	o := options{timeout: DefaultTimeout, interval: DefaultInterval}
	for _, opt := range opts {
		opt(&o)
	}

	deadline := time.Now().Add(o.timeout)
	var (
		last    browser.ElementState
		lastErr error
		seen    bool
	)

	probe := func() error {
		probeDeadline := deadline
		if floor := time.Now().Add(o.interval); floor.After(probeDeadline) {
			probeDeadline = floor
		}
		pctx, cancel := context.WithDeadline(ctx, probeDeadline)
		defer cancel()

		state, err := p.Probe(pctx, loc)
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if err != nil {
			lastErr = err
			return err
		}
		last, lastErr = state, nil
		seen = seen || state.Present
		if cond(state) {
			return nil
		}
		return errConditionUnmet
	}

	b := &deadlineBackOff{BackOff: backoff.NewConstantBackOff(o.interval), deadline: deadline}
	err := backoff.Retry(probe, backoff.WithContext(b, ctx))
	switch {
	case err == nil:
		return last, nil
	case ctx.Err() != nil:
		return last, ctx.Err()
	}
	return last, &browser.ElementNotReadyError{
		Locator: loc,
		Timeout: o.timeout,
		Present: seen,
		Last:    last,
		Err:     lastErr,
	}
}

// Settle pauses for d to let UI transitions finish. It returns early with the
// context error if ctx is cancelled.
func Settle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
