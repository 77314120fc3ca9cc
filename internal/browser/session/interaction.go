// internal/browser/session/interaction.go
// Primitive page interactions for a Session. Element lookups go through small
// JavaScript snippets built from the locator, so XPath and CSS locators share
// one code path. None of these methods wait for an element to appear; the wait
// package guards them.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/emojicheck/internal/browser"
)

const defaultNavigationTimeout = 30 * time.Second

// Navigate loads url and waits for the document to be ready.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.Info("Navigating session.", zap.String("url", url))

	navTimeout := s.navigationTimeout
	if navTimeout <= 0 {
		navTimeout = defaultNavigationTimeout
	}
	navCtx, navCancel := context.WithTimeout(ctx, navTimeout)
	defer navCancel()

	err := s.RunActions(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		if errors.Is(navCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("timed out after %v: %w", navTimeout, navCtx.Err())
		}
		return &browser.NavigationError{URL: url, Err: err}
	}
	s.logger.Debug("Navigation complete.", zap.String("url", url))
	return nil
}

const probeScript = `(() => {
	const el = %s;
	const count = %s;
	if (!el) return {count: count, present: false};
	const r = el.getBoundingClientRect();
	const st = window.getComputedStyle(el);
	const visible = st.display !== 'none' && st.visibility !== 'hidden' && r.width > 0 && r.height > 0;
	const enabled = !el.disabled && !el.closest('fieldset[disabled]');
	return {count: count, present: true, visible: visible, enabled: enabled, tag: el.tagName,
		x: r.left, y: r.top, width: r.width, height: r.height};
})()`

// Probe reports the state of the first element matched by loc.
func (s *Session) Probe(ctx context.Context, loc browser.Locator) (browser.ElementState, error) {
	var state browser.ElementState
	err := s.RunActions(ctx, chromedp.Evaluate(fmt.Sprintf(probeScript, loc.JSFirst(), loc.JSCount()), &state))
	if err != nil {
		return browser.ElementState{}, fmt.Errorf("probe %s: %w", loc, err)
	}
	return state, nil
}

// hitTestScript checks whether a click at the element's centre would land on it.
const hitTestScript = `(() => {
	const el = %s;
	if (!el) return {found: false};
	const r = el.getBoundingClientRect();
	const x = r.left + r.width / 2, y = r.top + r.height / 2;
	const top = document.elementFromPoint(x, y);
	const describe = (n) => n ? n.tagName.toLowerCase() + (n.id ? '#' + n.id : '') +
		(typeof n.className === 'string' && n.className ? '.' + n.className.trim().split(/\s+/).join('.') : '') : 'nothing';
	return {found: true, hit: top === el || (top !== null && el.contains(top)), x: x, y: y, obscurer: describe(top)};
})()`

type hitTest struct {
	Found    bool    `json:"found"`
	Hit      bool    `json:"hit"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Obscurer string  `json:"obscurer"`
}

// Click performs a real mouse click at the centre of the element. If another
// element sits on top at that point the click is not sent and a
// *browser.ClickInterceptedError is returned.
func (s *Session) Click(ctx context.Context, loc browser.Locator) error {
	s.logger.Debug("Attempting to click element", zap.Stringer("locator", loc))

	var ht hitTest
	if err := s.RunActions(ctx, chromedp.Evaluate(fmt.Sprintf(hitTestScript, loc.JSFirst()), &ht)); err != nil {
		return fmt.Errorf("click action failed for %s: %w", loc, err)
	}
	if !ht.Found {
		return fmt.Errorf("click action failed for %s: %w", loc, browser.ErrNoSuchElement)
	}
	if !ht.Hit {
		return &browser.ClickInterceptedError{Locator: loc, Obscurer: ht.Obscurer}
	}
	if err := s.RunActions(ctx, chromedp.MouseClickXY(ht.X, ht.Y)); err != nil {
		return fmt.Errorf("click action failed for %s: %w", loc, err)
	}
	s.logger.Debug("Click successful.", zap.Stringer("locator", loc))
	return nil
}

// elementScript runs body with el bound to the first match and returns true,
// or returns false when nothing matches.
func elementScript(loc browser.Locator, body string) string {
	return fmt.Sprintf(`(() => { const el = %s; if (!el) return false; %s; return true; })()`, loc.JSFirst(), body)
}

// runOnElement evaluates body against the element and maps a missing element to ErrNoSuchElement.
func (s *Session) runOnElement(ctx context.Context, op string, loc browser.Locator, body string, opts ...chromedp.EvaluateOption) error {
	var found bool
	if err := s.RunActions(ctx, chromedp.Evaluate(elementScript(loc, body), &found, opts...)); err != nil {
		return fmt.Errorf("%s failed for %s: %w", op, loc, err)
	}
	if !found {
		return fmt.Errorf("%s failed for %s: %w", op, loc, browser.ErrNoSuchElement)
	}
	return nil
}

// ForceClick dispatches a synthetic click directly on the element, bypassing hit testing.
func (s *Session) ForceClick(ctx context.Context, loc browser.Locator) error {
	s.logger.Debug("Forcing synthetic click", zap.Stringer("locator", loc))
	return s.runOnElement(ctx, "forced click", loc, "el.click()")
}

// ScrollIntoView centres the element in the viewport.
func (s *Session) ScrollIntoView(ctx context.Context, loc browser.Locator) error {
	return s.runOnElement(ctx, "scroll into view", loc, "el.scrollIntoView({block: 'center', inline: 'center'})")
}

// Clear empties a text control the way a user would see it: value reset plus
// the input and change events the page listens for.
func (s *Session) Clear(ctx context.Context, loc browser.Locator) error {
	return s.runOnElement(ctx, "clear", loc, `el.focus(); el.value = '';
		el.dispatchEvent(new Event('input', {bubbles: true}));
		el.dispatchEvent(new Event('change', {bubbles: true}))`)
}

func (s *Session) focus(ctx context.Context, loc browser.Locator) error {
	return s.runOnElement(ctx, "focus", loc, "el.focus()")
}

// SendKeys focuses the element and types text as individual key events.
func (s *Session) SendKeys(ctx context.Context, loc browser.Locator, text string) error {
	s.logger.Debug("Attempting to type into element", zap.Stringer("locator", loc), zap.Int("text_length", len(text)))
	if err := s.focus(ctx, loc); err != nil {
		return err
	}
	if err := s.RunActions(ctx, chromedp.KeyEvent(text)); err != nil {
		return fmt.Errorf("typing into %s failed: %w", loc, err)
	}
	return nil
}

// Value returns the element's value property, or its text for non form elements.
func (s *Session) Value(ctx context.Context, loc browser.Locator) (string, error) {
	var v *string
	script := fmt.Sprintf(`(() => { const el = %s; if (!el) return null; return 'value' in el ? el.value : el.textContent; })()`, loc.JSFirst())
	if err := s.RunActions(ctx, chromedp.Evaluate(script, &v)); err != nil {
		return "", fmt.Errorf("reading value of %s failed: %w", loc, err)
	}
	if v == nil {
		return "", fmt.Errorf("reading value of %s failed: %w", loc, browser.ErrNoSuchElement)
	}
	return *v, nil
}

// editingShortcut presses ctrl+key with the given editor command attached, the
// way Chrome itself maps shortcuts to commands.
func editingShortcut(key, code string, vk int64, command string) chromedp.Tasks {
	down := input.DispatchKeyEvent(input.KeyRawDown).
		WithKey(key).
		WithCode(code).
		WithWindowsVirtualKeyCode(vk).
		WithModifiers(input.ModifierCtrl).
		WithCommands([]string{command})
	up := input.DispatchKeyEvent(input.KeyUp).
		WithKey(key).
		WithCode(code).
		WithWindowsVirtualKeyCode(vk).
		WithModifiers(input.ModifierCtrl)
	return chromedp.Tasks{down, up}
}

// CopySelection selects everything in the element and copies it to the clipboard.
func (s *Session) CopySelection(ctx context.Context, loc browser.Locator) error {
	if err := s.focus(ctx, loc); err != nil {
		return err
	}
	err := s.RunActions(ctx,
		editingShortcut("a", "KeyA", 65, "selectAll"),
		editingShortcut("c", "KeyC", 67, "copy"),
	)
	if err != nil {
		return fmt.Errorf("copy from %s failed: %w", loc, err)
	}
	return nil
}

// SetClipboard writes text to the system clipboard through the async clipboard API.
func (s *Session) SetClipboard(ctx context.Context, text string) error {
	script := fmt.Sprintf(`navigator.clipboard.writeText(%s).then(() => true)`, browser.JSString(text))
	var ok bool
	err := s.RunActions(ctx, chromedp.Evaluate(script, &ok, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(true).WithUserGesture(true)
	}))
	if err != nil {
		return fmt.Errorf("writing clipboard failed: %w", err)
	}
	return nil
}

// Paste focuses the element and issues the native paste command.
func (s *Session) Paste(ctx context.Context, loc browser.Locator) error {
	if err := s.focus(ctx, loc); err != nil {
		return err
	}
	if err := s.RunActions(ctx, editingShortcut("v", "KeyV", 86, "paste")); err != nil {
		return fmt.Errorf("paste into %s failed: %w", loc, err)
	}
	return nil
}

// Evaluate runs an arbitrary script in the page.
func (s *Session) Evaluate(ctx context.Context, script string, res interface{}) error {
	return s.RunActions(ctx, chromedp.Evaluate(script, res))
}

// Screenshot captures the visible viewport as PNG.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := s.RunActions(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return buf, nil
}
