package evidence

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// collector records every callback it receives.
type collector struct {
	mu       sync.Mutex
	steps    []StepOutcome
	finished []RunSummary
}

func (c *collector) StepCompleted(o StepOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps = append(c.steps, o)
}

func (c *collector) RunFinished(s RunSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finished = append(c.finished, s)
}

// ctxScreen fails if it is handed an already cancelled context.
type ctxScreen struct{ data []byte }

func (s ctxScreen) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.data, nil
}

// panickyObserver fails on every step it is told about.
type panickyObserver struct{}

func (panickyObserver) StepCompleted(StepOutcome) { panic("observer exploded") }
func (panickyObserver) RunFinished(RunSummary)    {}

func newTestRecorder(t *testing.T, opts ...CapturerOption) (*Recorder, *collector, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)
	col := &collector{}
	rec := NewRecorder(NewCapturer(t.TempDir(), logger, opts...), logger, col)
	return rec, col, logs
}

func TestRecorderStep(t *testing.T) {
	t.Run("passing step is captured and reported", func(t *testing.T) {
		rec, col, _ := newTestRecorder(t)

		err := rec.Step(context.Background(), ctxScreen{data: []byte("png")}, "open", "Open the encoder page", func(context.Context) error {
			return nil
		})
		require.NoError(t, err)

		require.Len(t, col.steps, 1)
		got := col.steps[0]
		assert.Equal(t, "open", got.Name)
		assert.Equal(t, "Open the encoder page", got.Description)
		assert.Equal(t, StatusPassed, got.Status)
		assert.Contains(t, got.Screenshot, "open_passed_")
		assert.False(t, got.Finished.Before(got.Started))
	})

	t.Run("failing step propagates its own error after capture", func(t *testing.T) {
		rec, col, logs := newTestRecorder(t)
		actionErr := errors.New("element not ready")

		screen := &fakeScreen{data: []byte("png")}
		err := rec.Step(context.Background(), screen, "toggle mode", "", func(context.Context) error {
			return actionErr
		})

		assert.Same(t, actionErr, err)
		assert.Equal(t, 1, screen.calls)
		require.Len(t, col.steps, 1)
		assert.Equal(t, StatusFailed, col.steps[0].Status)
		assert.Equal(t, "element not ready", col.steps[0].Err)
		assert.Contains(t, col.steps[0].Screenshot, "toggle_mode_failed_")
		assert.Equal(t, 1, logs.FilterMessage("Step failed.").Len())
	})

	t.Run("capture failure never fails a passing step", func(t *testing.T) {
		rec, col, logs := newTestRecorder(t, WithFileWriter(func(string, []byte, os.FileMode) error {
			return errors.New("read-only file system")
		}))

		err := rec.Step(context.Background(), &fakeScreen{data: []byte("png")}, "read output", "", func(context.Context) error {
			return nil
		})
		require.NoError(t, err)
		require.Len(t, col.steps, 1)
		assert.Equal(t, StatusPassed, col.steps[0].Status)
		assert.Empty(t, col.steps[0].Screenshot)

		warnings := logs.FilterMessage("Evidence capture failed.").FilterLevelExact(zapcore.WarnLevel)
		assert.Equal(t, 1, warnings.Len())
	})

	t.Run("capture failure does not replace the action error", func(t *testing.T) {
		rec, _, _ := newTestRecorder(t)
		actionErr := errors.New("navigation failed")
		err := rec.Step(context.Background(), &fakeScreen{err: errors.New("no target")}, "open", "", func(context.Context) error {
			return actionErr
		})
		assert.Same(t, actionErr, err)
	})

	t.Run("cancelled run context still gets evidence", func(t *testing.T) {
		rec, col, _ := newTestRecorder(t)
		ctx, cancel := context.WithCancel(context.Background())

		err := rec.Step(ctx, ctxScreen{data: []byte("png")}, "paste", "", func(ctx context.Context) error {
			cancel()
			return ctx.Err()
		})
		assert.ErrorIs(t, err, context.Canceled)
		require.Len(t, col.steps, 1)
		assert.NotEmpty(t, col.steps[0].Screenshot)
	})

	t.Run("panic is recorded then re-raised", func(t *testing.T) {
		rec, col, _ := newTestRecorder(t)
		assert.PanicsWithValue(t, "boom", func() {
			_ = rec.Step(context.Background(), &fakeScreen{data: []byte("png")}, "select", "", func(context.Context) error {
				panic("boom")
			})
		})
		require.Len(t, col.steps, 1)
		assert.Equal(t, StatusFailed, col.steps[0].Status)
		assert.Equal(t, "panic: boom", col.steps[0].Err)
	})

	t.Run("panicking observer does not duplicate the outcome", func(t *testing.T) {
		rec, col, _ := newTestRecorder(t)
		rec.Register(panickyObserver{})
		assert.PanicsWithValue(t, "observer exploded", func() {
			_ = rec.Step(context.Background(), nil, "copy", "", func(context.Context) error { return nil })
		})
		require.Len(t, col.steps, 1)
		assert.Equal(t, StatusPassed, col.steps[0].Status)
	})

	t.Run("nil source skips capture", func(t *testing.T) {
		rec, col, _ := newTestRecorder(t)
		require.NoError(t, rec.Step(context.Background(), nil, "acquire", "", func(context.Context) error { return nil }))
		require.Len(t, col.steps, 1)
		assert.Empty(t, col.steps[0].Screenshot)
	})
}

func TestRecorderSkipAndFinish(t *testing.T) {
	rec, col, _ := newTestRecorder(t)
	second := &collector{}
	rec.Register(second)

	rec.Skip("read output", "Read the decoded text")
	rec.Finish(RunSummary{RunID: "run-1", Failed: 1, Err: "assertion failed"})

	for _, c := range []*collector{col, second} {
		require.Len(t, c.steps, 1)
		assert.Equal(t, StatusSkipped, c.steps[0].Status)
		assert.Zero(t, c.steps[0].Duration())
		require.Len(t, c.finished, 1)
		assert.Equal(t, "run-1", c.finished[0].RunID)
		assert.False(t, c.finished[0].Succeeded())
	}
}
