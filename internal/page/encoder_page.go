// Package page holds the page object for the emoji encoder. Each exported
// action is recorded as one evidence step and guarded by a bounded wait.
package page

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/xkilldash9x/emojicheck/internal/browser"
	"github.com/xkilldash9x/emojicheck/internal/browser/wait"
	"github.com/xkilldash9x/emojicheck/internal/config"
	"github.com/xkilldash9x/emojicheck/internal/evidence"
)

// Element locators of the encoder page.
var (
	ModeSwitch      = browser.XPath("//input[@id='mode-switch']")
	TextInput       = browser.XPath("//textarea[@id='text-input']")
	FirstSuggestion = browser.XPath("(//div[@id='emoji-picker']/*)[1]")
	Output          = browser.XPath("//textarea[@id='output']")
)

var (
	ErrClipboardPaste = errors.New("clipboard paste did not deliver the text")
	ErrModeUnchanged  = errors.New("mode switch did not change state")
	ErrUnexpectedMode = errors.New("encoder is in the wrong mode")
)

// Step names, also used as screenshot file name prefixes.
const (
	StepOpen             = "open_page"
	StepToggleMode       = "toggle_mode"
	StepEnterSecretText  = "enter_secret_text"
	StepSelectSuggestion = "select_first_suggestion"
	StepCopyOutput       = "copy_output"
	StepPasteIntoInput   = "paste_into_input"
	StepEnterText        = "enter_text"
	StepReadOutput       = "read_output"
)

// Mode is the encoder's current direction. The switch is checked in encode mode.
type Mode int

const (
	ModeDecode Mode = iota
	ModeEncode
)

func (m Mode) String() string {
	if m == ModeEncode {
		return "encode"
	}
	return "decode"
}

// Settings are the page's address and timing.
type Settings struct {
	URL          string
	Timeout      time.Duration
	PollInterval time.Duration
	ToggleSettle time.Duration
	PickSettle   time.Duration
}

// SettingsFromConfig collects the page settings from the application config.
func SettingsFromConfig(cfg config.Interface) Settings {
	return Settings{
		URL:          cfg.Target().URL,
		Timeout:      cfg.Wait().Timeout,
		PollInterval: cfg.Wait().PollInterval,
		ToggleSettle: cfg.Scenario().ToggleSettle,
		PickSettle:   cfg.Scenario().PickSettle,
	}
}

// EncoderPage drives the emoji encoder through a browser.Driver.
type EncoderPage struct {
	driver   browser.Driver
	recorder *evidence.Recorder
	settings Settings
	logger   *zap.Logger
}

// NewEncoderPage returns the page object. recorder may be nil, in which case
// actions run without evidence capture.
func NewEncoderPage(d browser.Driver, recorder *evidence.Recorder, settings Settings, logger *zap.Logger) *EncoderPage {
	return &EncoderPage{
		driver:   d,
		recorder: recorder,
		settings: settings,
		logger:   logger,
	}
}

func (p *EncoderPage) step(ctx context.Context, name, description string, fn func(context.Context) error) error {
	if p.recorder == nil {
		return fn(ctx)
	}
	return p.recorder.Step(ctx, p.driver, name, description, fn)
}

func (p *EncoderPage) waitOpts() []wait.Option {
	return []wait.Option{wait.WithTimeout(p.settings.Timeout), wait.WithInterval(p.settings.PollInterval)}
}

func (p *EncoderPage) interactable(ctx context.Context, loc browser.Locator) error {
	_, err := wait.UntilInteractable(ctx, p.driver, loc, p.waitOpts()...)
	return err
}

// Open navigates to the encoder.
func (p *EncoderPage) Open(ctx context.Context) error {
	return p.step(ctx, StepOpen, "Open the Emoji Encoder page", func(ctx context.Context) error {
		p.logger.Info("Opening page.", zap.String("url", p.settings.URL))
		if err := p.driver.Navigate(ctx, p.settings.URL); err != nil {
			var navErr *browser.NavigationError
			if !errors.As(err, &navErr) {
				err = &browser.NavigationError{URL: p.settings.URL, Err: err}
			}
			return err
		}
		return nil
	})
}

// ToggleMode flips the encode/decode switch and waits for the UI to settle.
// It fails with ErrModeUnchanged if the switch state did not flip.
func (p *EncoderPage) ToggleMode(ctx context.Context) error {
	return p.step(ctx, StepToggleMode, "Flip the encode/decode switch", func(ctx context.Context) error {
		_, err := p.toggle(ctx)
		return err
	})
}

// SwitchTo flips the switch like ToggleMode and, within the same step, checks
// that the page landed in want. A wrong mode fails with ErrUnexpectedMode.
func (p *EncoderPage) SwitchTo(ctx context.Context, want Mode) error {
	description := fmt.Sprintf("Switch to %s mode", want)
	return p.step(ctx, StepToggleMode, description, func(ctx context.Context) error {
		got, err := p.toggle(ctx)
		if err != nil {
			return err
		}
		if got != want {
			return fmt.Errorf("%w: want %s, have %s", ErrUnexpectedMode, want, got)
		}
		return nil
	})
}

func (p *EncoderPage) toggle(ctx context.Context) (Mode, error) {
	if err := p.interactable(ctx, ModeSwitch); err != nil {
		return ModeDecode, err
	}
	before, err := p.Mode(ctx)
	if err != nil {
		return before, err
	}
	if err := p.click(ctx, ModeSwitch); err != nil {
		return before, err
	}
	if err := wait.Settle(ctx, p.settings.ToggleSettle); err != nil {
		return before, err
	}
	after, err := p.Mode(ctx)
	if err != nil {
		return before, err
	}
	if after == before {
		return after, fmt.Errorf("%w: still in %s mode", ErrModeUnchanged, after)
	}
	p.logger.Info("Mode switched.", zap.Stringer("from", before), zap.Stringer("to", after))
	return after, nil
}

// click tries a real click and falls back to a synthetic one only when the
// real click was intercepted by another element.
func (p *EncoderPage) click(ctx context.Context, loc browser.Locator) error {
	err := p.driver.Click(ctx, loc)
	if err == nil || !errors.Is(err, browser.ErrClickIntercepted) {
		return err
	}
	p.logger.Warn("Direct click intercepted; falling back to synthetic click.",
		zap.Stringer("locator", loc), zap.Error(err))
	if ferr := p.driver.ForceClick(ctx, loc); ferr != nil {
		return fmt.Errorf("synthetic click after interception failed: %w", errors.Join(ferr, err))
	}
	return nil
}

var modeScript = fmt.Sprintf(`(() => { const el = %s; return !!(el && el.checked); })()`, ModeSwitch.JSFirst())

// Mode reads the switch state.
func (p *EncoderPage) Mode(ctx context.Context) (Mode, error) {
	var checked bool
	if err := p.driver.Evaluate(ctx, modeScript, &checked); err != nil {
		return ModeDecode, fmt.Errorf("reading mode switch: %w", err)
	}
	if checked {
		return ModeEncode, nil
	}
	return ModeDecode, nil
}

// EnterSecretText replaces the input's content with text, typed as key events.
func (p *EncoderPage) EnterSecretText(ctx context.Context, text string) error {
	return p.step(ctx, StepEnterSecretText, "Type the secret text into the input", func(ctx context.Context) error {
		if err := p.clearInput(ctx); err != nil {
			return err
		}
		p.logger.Info("Entering secret text.", zap.String("preview", Preview(text)), zap.Int("runes", utf8.RuneCountInString(text)))
		return p.driver.SendKeys(ctx, TextInput, text)
	})
}

// SelectFirstSuggestion picks the first emoji in the picker as the carrier.
func (p *EncoderPage) SelectFirstSuggestion(ctx context.Context) error {
	return p.step(ctx, StepSelectSuggestion, "Pick the first emoji as carrier", func(ctx context.Context) error {
		if err := p.interactable(ctx, FirstSuggestion); err != nil {
			return err
		}
		if err := p.driver.ScrollIntoView(ctx, FirstSuggestion); err != nil {
			return err
		}
		if err := p.click(ctx, FirstSuggestion); err != nil {
			return err
		}
		return wait.Settle(ctx, p.settings.PickSettle)
	})
}

// CopyOutput selects and copies the output field, returning its full value.
func (p *EncoderPage) CopyOutput(ctx context.Context) (string, error) {
	var value string
	err := p.step(ctx, StepCopyOutput, "Copy the encoded output", func(ctx context.Context) error {
		if err := p.interactable(ctx, Output); err != nil {
			return err
		}
		if err := p.driver.CopySelection(ctx, Output); err != nil {
			return err
		}
		v, err := p.driver.Value(ctx, Output)
		if err != nil {
			return err
		}
		value = v
		p.logger.Info("Copied output.", zap.String("preview", Preview(v)), zap.Int("runes", utf8.RuneCountInString(v)))
		return nil
	})
	return value, err
}

// PasteIntoInput replaces the input's content with text, typed as key events.
func (p *EncoderPage) PasteIntoInput(ctx context.Context, text string) error {
	return p.step(ctx, StepPasteIntoInput, "Put text into the input", func(ctx context.Context) error {
		if err := p.clearInput(ctx); err != nil {
			return err
		}
		p.logger.Info("Pasting into input.", zap.String("preview", Preview(text)))
		return p.driver.SendKeys(ctx, TextInput, text)
	})
}

// EnterTextSupportingWideCharacters replaces the input's content with text.
// Text with characters outside the basic multilingual plane goes through the
// clipboard, because synthetic key events cannot produce them reliably.
func (p *EncoderPage) EnterTextSupportingWideCharacters(ctx context.Context, text string) error {
	return p.step(ctx, StepEnterText, "Enter the encoded text for decoding", func(ctx context.Context) error {
		if err := p.clearInput(ctx); err != nil {
			return err
		}
		if !NeedsClipboard(text) {
			p.logger.Info("Typing text.", zap.String("preview", Preview(text)))
			return p.driver.SendKeys(ctx, TextInput, text)
		}

		p.logger.Info("Text has wide characters; pasting through the clipboard.", zap.String("preview", Preview(text)))
		if err := p.driver.SetClipboard(ctx, text); err != nil {
			return err
		}
		if err := p.driver.Paste(ctx, TextInput); err != nil {
			return err
		}
		got, err := p.driver.Value(ctx, TextInput)
		if err != nil {
			return err
		}
		if got != text {
			return fmt.Errorf("%w: input holds %q", ErrClipboardPaste, Preview(got))
		}
		return nil
	})
}

// ReadOutput returns the output field's full value.
func (p *EncoderPage) ReadOutput(ctx context.Context) (string, error) {
	var value string
	err := p.step(ctx, StepReadOutput, "Read the decoded output", func(ctx context.Context) error {
		if _, err := wait.UntilPresent(ctx, p.driver, Output, p.waitOpts()...); err != nil {
			return err
		}
		v, err := p.driver.Value(ctx, Output)
		if err != nil {
			return err
		}
		value = v
		p.logger.Info("Read output.", zap.String("preview", Preview(v)), zap.Int("runes", utf8.RuneCountInString(v)))
		return nil
	})
	return value, err
}

func (p *EncoderPage) clearInput(ctx context.Context) error {
	if err := p.interactable(ctx, TextInput); err != nil {
		return err
	}
	return p.driver.Clear(ctx, TextInput)
}
