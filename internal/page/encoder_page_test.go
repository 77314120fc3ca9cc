package page

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/emojicheck/internal/browser"
	"github.com/xkilldash9x/emojicheck/internal/config"
	"github.com/xkilldash9x/emojicheck/internal/evidence"
)

type stepLog struct{ steps []evidence.StepOutcome }

func (s *stepLog) StepCompleted(o evidence.StepOutcome) { s.steps = append(s.steps, o) }
func (s *stepLog) RunFinished(evidence.RunSummary)       {}

var fastSettings = Settings{
	URL:          "http://encoder.test/",
	Timeout:      100 * time.Millisecond,
	PollInterval: 5 * time.Millisecond,
}

func newTestPage(t *testing.T, d *fakeDriver) (*EncoderPage, *observer.ObservedLogs, *stepLog) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)
	steps := &stepLog{}
	rec := evidence.NewRecorder(evidence.NewCapturer(t.TempDir(), logger), logger, steps)
	return NewEncoderPage(d, rec, fastSettings, logger), logs, steps
}

func TestSettingsFromConfig(t *testing.T) {
	s := SettingsFromConfig(config.NewDefaultConfig())
	assert.Equal(t, config.DefaultTargetURL, s.URL)
	assert.Equal(t, 10*time.Second, s.Timeout)
	assert.Equal(t, time.Second, s.ToggleSettle)
	assert.Equal(t, 500*time.Millisecond, s.PickSettle)
}

func TestOpen(t *testing.T) {
	t.Run("navigates to the configured address", func(t *testing.T) {
		d := newFakeDriver()
		p, _, steps := newTestPage(t, d)
		require.NoError(t, p.Open(context.Background()))
		assert.Equal(t, 1, d.called("Navigate http://encoder.test/"))
		require.Len(t, steps.steps, 1)
		assert.Equal(t, StepOpen, steps.steps[0].Name)
	})

	t.Run("driver failure surfaces as a navigation error", func(t *testing.T) {
		d := newFakeDriver()
		d.navErr = errors.New("net::ERR_CONNECTION_REFUSED")
		p, _, steps := newTestPage(t, d)

		err := p.Open(context.Background())
		assert.ErrorIs(t, err, browser.ErrNavigation)
		assert.ErrorIs(t, err, d.navErr)
		assert.Equal(t, evidence.StatusFailed, steps.steps[0].Status)
		assert.NotEmpty(t, steps.steps[0].Screenshot)
	})
}

func TestToggleMode(t *testing.T) {
	t.Run("direct click", func(t *testing.T) {
		d := newFakeDriver()
		p, logs, _ := newTestPage(t, d)

		require.NoError(t, p.ToggleMode(context.Background()))
		mode, err := p.Mode(context.Background())
		require.NoError(t, err)
		assert.Equal(t, ModeEncode, mode)
		assert.Zero(t, d.called("ForceClick"))
		assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	})

	t.Run("intercepted click falls back to a synthetic click with a warning", func(t *testing.T) {
		d := newFakeDriver()
		d.clickErr = &browser.ClickInterceptedError{Locator: ModeSwitch, Obscurer: "label.form-check-label"}
		p, logs, steps := newTestPage(t, d)

		require.NoError(t, p.ToggleMode(context.Background()))
		assert.Equal(t, 1, d.called("ForceClick "+ModeSwitch.Expr))
		assert.True(t, d.checked)

		warnings := logs.FilterLevelExact(zapcore.WarnLevel).FilterMessageSnippet("synthetic click")
		assert.Equal(t, 1, warnings.Len())
		assert.Equal(t, evidence.StatusPassed, steps.steps[0].Status)
	})

	t.Run("other click errors are not swallowed", func(t *testing.T) {
		d := newFakeDriver()
		d.clickErr = errors.New("node is detached from document")
		p, _, _ := newTestPage(t, d)

		err := p.ToggleMode(context.Background())
		assert.Same(t, d.clickErr, err)
		assert.Zero(t, d.called("ForceClick"))
	})

	t.Run("failed fallback reports both errors", func(t *testing.T) {
		d := newFakeDriver()
		d.clickErr = &browser.ClickInterceptedError{Locator: ModeSwitch, Obscurer: "div.modal"}
		d.forceErr = errors.New("element detached")
		p, _, _ := newTestPage(t, d)

		err := p.ToggleMode(context.Background())
		assert.ErrorIs(t, err, d.forceErr)
		assert.ErrorIs(t, err, browser.ErrClickIntercepted)
	})

	t.Run("a click without effect fails", func(t *testing.T) {
		d := newFakeDriver()
		d.clickNoop = true
		p, _, _ := newTestPage(t, d)
		assert.ErrorIs(t, p.ToggleMode(context.Background()), ErrModeUnchanged)
	})

	t.Run("switch that never becomes clickable", func(t *testing.T) {
		d := newFakeDriver()
		d.states[ModeSwitch] = browser.ElementState{Present: true, Count: 1}
		p, _, steps := newTestPage(t, d)

		err := p.ToggleMode(context.Background())
		assert.ErrorIs(t, err, browser.ErrElementNotReady)
		assert.ErrorIs(t, err, browser.ErrNotInteractable)
		assert.Zero(t, d.called("Click"))
		require.Len(t, steps.steps, 1)
		assert.Equal(t, evidence.StatusFailed, steps.steps[0].Status)
		assert.Equal(t, 1, d.called("Screenshot"), "failed steps still capture evidence")
	})
}

func TestSwitchTo(t *testing.T) {
	t.Run("lands in the wanted mode", func(t *testing.T) {
		d := newFakeDriver()
		p, _, steps := newTestPage(t, d)

		require.NoError(t, p.SwitchTo(context.Background(), ModeEncode))
		require.Len(t, steps.steps, 1)
		assert.Equal(t, StepToggleMode, steps.steps[0].Name)
		assert.Equal(t, evidence.StatusPassed, steps.steps[0].Status)
		assert.Equal(t, "Switch to encode mode", steps.steps[0].Description)
	})

	t.Run("wrong mode fails the recorded step", func(t *testing.T) {
		d := newFakeDriver()
		p, _, steps := newTestPage(t, d)

		err := p.SwitchTo(context.Background(), ModeDecode)
		assert.ErrorIs(t, err, ErrUnexpectedMode)
		assert.True(t, d.checked, "the click itself still happened")
		require.Len(t, steps.steps, 1)
		assert.Equal(t, evidence.StatusFailed, steps.steps[0].Status)
		assert.Contains(t, steps.steps[0].Err, "want decode, have encode")
		assert.NotEmpty(t, steps.steps[0].Screenshot)
	})
}

func TestEnterSecretText(t *testing.T) {
	d := newFakeDriver()
	d.values[TextInput] = "leftover"
	p, _, _ := newTestPage(t, d)

	require.NoError(t, p.EnterSecretText(context.Background(), "This is my secret text."))
	assert.Equal(t, "This is my secret text.", d.values[TextInput])
	assert.Equal(t, 1, d.called("Clear"))
}

func TestSelectFirstSuggestion(t *testing.T) {
	d := newFakeDriver()
	p, _, _ := newTestPage(t, d)

	require.NoError(t, p.SelectFirstSuggestion(context.Background()))
	require.Equal(t, []string{
		"ScrollIntoView " + FirstSuggestion.Expr,
		"Click " + FirstSuggestion.Expr,
	}, filterCalls(d, "ScrollIntoView", "Click"))
}

func filterCalls(d *fakeDriver, prefixes ...string) []string {
	var out []string
	for _, c := range d.calls {
		for _, p := range prefixes {
			if strings.HasPrefix(c, p) {
				out = append(out, c)
			}
		}
	}
	return out
}

func TestCopyAndReadReturnFullValues(t *testing.T) {
	d := newFakeDriver()
	long := "😀" + strings.Repeat("\u200b\u200c", 100)
	d.values[Output] = long
	p, logs, _ := newTestPage(t, d)

	copied, err := p.CopyOutput(context.Background())
	require.NoError(t, err)
	assert.Equal(t, long, copied)
	assert.Equal(t, long, d.clipboard)

	read, err := p.ReadOutput(context.Background())
	require.NoError(t, err)
	assert.Equal(t, long, read)

	for _, entry := range logs.FilterField(zap.String("preview", Preview(long))).All() {
		assert.Len(t, []rune(entry.ContextMap()["preview"].(string)), previewLimit+3)
	}
	assert.Equal(t, 2, logs.FilterField(zap.String("preview", Preview(long))).Len())
}

func TestEnterTextSupportingWideCharacters(t *testing.T) {
	t.Run("basic plane text is typed", func(t *testing.T) {
		for _, text := range []string{"This is my secret text.", "café ★ 中文", "\u200b\u200c\u200d"} {
			d := newFakeDriver()
			p, _, _ := newTestPage(t, d)

			require.NoError(t, p.EnterTextSupportingWideCharacters(context.Background(), text))
			assert.Equal(t, 1, d.called("SendKeys"), text)
			assert.Zero(t, d.called("SetClipboard"), text)
			assert.Zero(t, d.called("Paste"), text)
			assert.Equal(t, text, d.values[TextInput])
		}
	})

	t.Run("wide characters go through the clipboard", func(t *testing.T) {
		for _, text := range []string{"😀\u200b\u200c\u200d", "plain then 𝔸", "🚀"} {
			d := newFakeDriver()
			p, _, _ := newTestPage(t, d)

			require.NoError(t, p.EnterTextSupportingWideCharacters(context.Background(), text))
			assert.Zero(t, d.called("SendKeys"), text)
			assert.Equal(t, 1, d.called("SetClipboard"), text)
			assert.Equal(t, 1, d.called("Paste "+TextInput.Expr), text)
			assert.Equal(t, text, d.values[TextInput])
		}
	})

	t.Run("paste that delivers nothing is an error", func(t *testing.T) {
		d := newFakeDriver()
		d.pasteDrops = true
		p, _, _ := newTestPage(t, d)
		assert.ErrorIs(t, p.EnterTextSupportingWideCharacters(context.Background(), "😀"), ErrClipboardPaste)
	})
}

func TestPasteIntoInput(t *testing.T) {
	d := newFakeDriver()
	d.values[TextInput] = "old"
	p, _, _ := newTestPage(t, d)
	require.NoError(t, p.PasteIntoInput(context.Background(), "new"))
	assert.Equal(t, "new", d.values[TextInput])
}

func TestWithoutRecorder(t *testing.T) {
	d := newFakeDriver()
	p := NewEncoderPage(d, nil, fastSettings, zap.NewNop())
	require.NoError(t, p.Open(context.Background()))
	assert.Zero(t, d.called("Screenshot"))
}
