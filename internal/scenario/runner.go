// Package scenario runs the encode/decode round trip against the encoder page
// and reports a summary of the run.
package scenario

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/emojicheck/internal/browser"
	"github.com/xkilldash9x/emojicheck/internal/evidence"
	"github.com/xkilldash9x/emojicheck/internal/page"
)

// Step names owned by the runner rather than the page.
const (
	StepAcquireSession = "acquire_session"
	StepAssert         = "assert_round_trip"
	// SnapshotRunEnd names the screenshot of the page taken before release.
	SnapshotRunEnd = "run_end"
)

// ErrUnexpectedMode is returned when a switch lands in the wrong mode.
var ErrUnexpectedMode = page.ErrUnexpectedMode

// SessionProvider hands out browser sessions. Release is called exactly once
// for every session Acquire returned.
type SessionProvider interface {
	Acquire(ctx context.Context) (browser.Driver, error)
	Release(d browser.Driver) error
}

// PageBuilder constructs the page object over an acquired session.
type PageBuilder func(d browser.Driver, recorder *evidence.Recorder) *page.EncoderPage

// Runner performs one round trip per Run call.
type Runner struct {
	provider SessionProvider
	recorder *evidence.Recorder
	build    PageBuilder
	secret   string
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	state   State
	failed  bool
	history []State
	tally   tally
}

// NewRunner wires a runner. The recorder is required; the runner registers
// itself to count step outcomes.
func NewRunner(provider SessionProvider, recorder *evidence.Recorder, build PageBuilder, secret string, logger *zap.Logger) *Runner {
	r := &Runner{
		provider: provider,
		recorder: recorder,
		build:    build,
		secret:   secret,
		logger:   logger,
		now:      time.Now,
	}
	recorder.Register(&r.tally)
	return r
}

// State returns the last state reached.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Failed reports whether the last run stopped on an error.
func (r *Runner) Failed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failed
}

// History lists the states reached by the last run, in order.
func (r *Runner) History() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.history...)
}

func (r *Runner) advance(s State) {
	r.mu.Lock()
	r.state = s
	r.history = append(r.history, s)
	r.mu.Unlock()
	r.logger.Debug("State reached.", zap.Stringer("state", s))
}

func (r *Runner) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = Idle
	r.failed = false
	r.history = []State{Idle}
	r.tally.reset()
}

func (r *Runner) markFailed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = true
}

type stage struct {
	state       State
	name        string
	description string
	run         func(ctx context.Context) error
}

// Run executes the round trip and returns the first error. The session is
// released on every path, and observers receive exactly one RunSummary.
func (r *Runner) Run(ctx context.Context) (err error) {
	r.reset()
	summary := evidence.RunSummary{
		RunID:    uuid.NewString(),
		Started:  r.now(),
		Expected: r.secret,
	}
	log := r.logger.With(zap.String("run_id", summary.RunID))
	log.Info("Round trip started.", zap.String("secret_preview", page.Preview(r.secret)))

	// pending and next track the stages not yet run, so a panic still leaves
	// one row per stage.
	pending, next := r.stages(nil, nil, nil), 0

	defer func() {
		rec := recover()
		if rec != nil {
			err = fmt.Errorf("panic during round trip: %v", rec)
			r.skipFrom(pending, next)
		}
		summary.Finished = r.now()
		summary.Passed, summary.Failed, summary.Skipped = r.tally.counts()
		if err != nil {
			r.markFailed()
			summary.Err = err.Error()
			log.Error("Round trip failed.", zap.Error(err), zap.Stringer("state", r.State()))
		} else {
			log.Info("Round trip passed.", zap.Duration("duration", summary.Finished.Sub(summary.Started)))
		}
		r.recorder.Finish(summary)
		if rec != nil {
			panic(rec)
		}
	}()

	var drv browser.Driver
	err = r.recorder.Step(ctx, nil, StepAcquireSession, "Launch the browser session", func(ctx context.Context) error {
		d, aerr := r.provider.Acquire(ctx)
		drv = d
		return aerr
	})
	if err != nil {
		r.skipFrom(pending, 0)
		next = len(pending)
		return fmt.Errorf("acquire session: %w", err)
	}
	r.advance(SessionAcquired)

	defer func() {
		summary.FinalScreenshot = r.recorder.Snapshot(ctx, drv, SnapshotRunEnd).Path
		if rerr := r.provider.Release(drv); rerr != nil {
			log.Warn("Session release failed.", zap.Error(rerr))
		}
		r.advance(SessionReleased)
	}()

	pending = r.stages(r.build(drv, r.recorder), drv, &summary)
	for i, st := range pending {
		next = i + 1
		if err = st.run(ctx); err != nil {
			r.skipFrom(pending, next)
			next = len(pending)
			return fmt.Errorf("%s: %w", st.name, err)
		}
		r.advance(st.state)
	}
	next = len(pending)
	return nil
}

// skipFrom records every stage from index i on as skipped.
func (r *Runner) skipFrom(stages []stage, i int) {
	for _, st := range stages[i:] {
		r.recorder.Skip(st.name, st.description)
	}
}

// stages lays out the round trip. With a nil page only names and
// descriptions are usable.
func (r *Runner) stages(p *page.EncoderPage, src browser.Screenshotter, summary *evidence.RunSummary) []stage {
	var encoded, decoded string
	switchTo := func(want page.Mode) func(context.Context) error {
		return func(ctx context.Context) error {
			return p.SwitchTo(ctx, want)
		}
	}

	return []stage{
		{PageOpened, page.StepOpen, "Open the Emoji Encoder page", func(ctx context.Context) error {
			return p.Open(ctx)
		}},
		{ModeSwitchedEncode, page.StepToggleMode, "Switch to encode mode", switchTo(page.ModeEncode)},
		{TextEntered, page.StepEnterSecretText, "Type the secret text into the input", func(ctx context.Context) error {
			return p.EnterSecretText(ctx, r.secret)
		}},
		{SuggestionSelected, page.StepSelectSuggestion, "Pick the first emoji as carrier", func(ctx context.Context) error {
			return p.SelectFirstSuggestion(ctx)
		}},
		{OutputCopied, page.StepCopyOutput, "Copy the encoded output", func(ctx context.Context) (err error) {
			encoded, err = p.CopyOutput(ctx)
			return err
		}},
		{ModeSwitchedDecode, page.StepToggleMode, "Switch to decode mode", switchTo(page.ModeDecode)},
		{TextPasted, page.StepEnterText, "Enter the encoded text for decoding", func(ctx context.Context) error {
			return p.EnterTextSupportingWideCharacters(ctx, encoded)
		}},
		{OutputRead, page.StepReadOutput, "Read the decoded output", func(ctx context.Context) (err error) {
			decoded, err = p.ReadOutput(ctx)
			summary.Actual = decoded
			return err
		}},
		{Asserted, StepAssert, "Compare decoded text with the original", func(ctx context.Context) error {
			return r.recorder.Step(ctx, src, StepAssert, "Compare decoded text with the original", func(context.Context) error {
				return AssertRoundTrip(r.secret, decoded)
			})
		}},
	}
}

// tally counts step outcomes for the run summary.
type tally struct {
	mu                      sync.Mutex
	passed, failed, skipped int
}

func (t *tally) StepCompleted(o evidence.StepOutcome) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch o.Status {
	case evidence.StatusPassed:
		t.passed++
	case evidence.StatusFailed:
		t.failed++
	case evidence.StatusSkipped:
		t.skipped++
	}
}

func (t *tally) RunFinished(evidence.RunSummary) {}

func (t *tally) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.passed, t.failed, t.skipped = 0, 0, 0
}

func (t *tally) counts() (passed, failed, skipped int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.passed, t.failed, t.skipped
}
