package evidence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/emojicheck/internal/browser"
)

// captureTimeout bounds a screenshot taken after a step, including steps that
// ended because their context was cancelled.
const captureTimeout = 5 * time.Second

// Recorder wraps page actions as named steps: it runs the action, attempts a
// screenshot whatever the result, and reports a StepOutcome to every observer.
type Recorder struct {
	capturer *Capturer
	logger   *zap.Logger
	now      func() time.Time

	mu        sync.Mutex
	observers []Observer
}

// NewRecorder returns a Recorder that captures through c.
func NewRecorder(c *Capturer, logger *zap.Logger, observers ...Observer) *Recorder {
	return &Recorder{
		capturer:  c,
		logger:    logger,
		now:       time.Now,
		observers: observers,
	}
}

// Register adds an observer. Observers are notified in registration order.
func (r *Recorder) Register(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, o)
}

func (r *Recorder) snapshotObservers() []Observer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Observer(nil), r.observers...)
}

// Step runs fn as the step called name. The error from fn is returned
// unchanged; capture problems are logged and never returned. A panic in fn is
// recorded as a failed step and then re-raised.
func (r *Recorder) Step(ctx context.Context, src browser.Screenshotter, name, description string, fn func(context.Context) error) (err error) {
	started := r.now()
	r.logger.Info("Step started.", zap.String("step", name))

	// completed is set once the outcome has been built, so a panicking
	// observer does not produce a second outcome for the same step.
	var completed bool
	defer func() {
		if p := recover(); p != nil {
			if !completed {
				r.complete(ctx, src, name, description, started, fmt.Errorf("panic: %v", p), &completed)
			}
			panic(p)
		}
	}()

	err = fn(ctx)
	r.complete(ctx, src, name, description, started, err, &completed)
	return err
}

func (r *Recorder) complete(ctx context.Context, src browser.Screenshotter, name, description string, started time.Time, stepErr error, completed *bool) {
	outcome := StepOutcome{
		Name:        name,
		Description: description,
		Status:      StatusPassed,
		Started:     started,
	}
	if stepErr != nil {
		outcome.Status = StatusFailed
		outcome.Err = stepErr.Error()
	}

	if src != nil && r.capturer != nil {
		// Evidence is still wanted when the run context is already cancelled.
		capCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), captureTimeout)
		shot, err := r.capturer.Capture(capCtx, src, name, string(outcome.Status))
		cancel()
		if err != nil {
			r.logger.Warn("Evidence capture failed.", zap.String("step", name), zap.Error(err))
		}
		outcome.Screenshot, outcome.Thumbnail = shot.Path, shot.Thumbnail
	}
	outcome.Finished = r.now()

	if stepErr != nil {
		r.logger.Error("Step failed.", zap.String("step", name), zap.Duration("duration", outcome.Duration()), zap.Error(stepErr))
	} else {
		r.logger.Info("Step passed.", zap.String("step", name), zap.Duration("duration", outcome.Duration()))
	}
	*completed = true
	r.notify(outcome)
}

// Snapshot stores a standalone screenshot that belongs to no step, such as
// the page state at the end of a run. Failures are logged and yield an empty Shot.
func (r *Recorder) Snapshot(ctx context.Context, src browser.Screenshotter, name string) Shot {
	if src == nil || r.capturer == nil {
		return Shot{}
	}
	capCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), captureTimeout)
	defer cancel()
	shot, err := r.capturer.Snapshot(capCtx, src, name)
	if err != nil {
		r.logger.Warn("Snapshot failed.", zap.String("name", name), zap.Error(err))
	}
	return shot
}

// Skip reports a step that never ran because an earlier step failed.
func (r *Recorder) Skip(name, description string) {
	now := r.now()
	r.logger.Debug("Step skipped.", zap.String("step", name))
	r.notify(StepOutcome{
		Name:        name,
		Description: description,
		Status:      StatusSkipped,
		Started:     now,
		Finished:    now,
	})
}

func (r *Recorder) notify(o StepOutcome) {
	for _, obs := range r.snapshotObservers() {
		obs.StepCompleted(o)
	}
}

// Finish delivers the run summary to every observer.
func (r *Recorder) Finish(summary RunSummary) {
	for _, obs := range r.snapshotObservers() {
		obs.RunFinished(summary)
	}
}
