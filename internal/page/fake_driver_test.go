package page

import (
	"context"
	"strings"
	"sync"

	"github.com/xkilldash9x/emojicheck/internal/browser"
)

// fakeDriver is an in-memory encoder page. Every element is interactable
// unless overridden in states.
type fakeDriver struct {
	mu     sync.Mutex
	calls  []string
	states map[browser.Locator]browser.ElementState
	values map[browser.Locator]string

	checked   bool
	clipboard string

	navErr   error
	clickErr error
	forceErr error
	// clickNoop makes clicks succeed without toggling the switch.
	clickNoop bool
	// pasteDrops makes Paste deliver nothing.
	pasteDrops bool
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		states: make(map[browser.Locator]browser.ElementState),
		values: make(map[browser.Locator]string),
	}
}

var readyState = browser.ElementState{Count: 1, Present: true, Visible: true, Enabled: true, Width: 10, Height: 10}

func (f *fakeDriver) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeDriver) called(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (f *fakeDriver) Probe(ctx context.Context, loc browser.Locator) (browser.ElementState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.states[loc]; ok {
		return s, nil
	}
	return readyState, nil
}

func (f *fakeDriver) Screenshot(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Screenshot")
	return []byte("png"), nil
}

func (f *fakeDriver) Navigate(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Navigate " + url)
	return f.navErr
}

func (f *fakeDriver) toggle(loc browser.Locator) {
	if loc == ModeSwitch && !f.clickNoop {
		f.checked = !f.checked
	}
}

func (f *fakeDriver) Click(ctx context.Context, loc browser.Locator) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Click " + loc.Expr)
	if f.clickErr != nil {
		return f.clickErr
	}
	f.toggle(loc)
	return nil
}

func (f *fakeDriver) ForceClick(ctx context.Context, loc browser.Locator) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ForceClick " + loc.Expr)
	if f.forceErr != nil {
		return f.forceErr
	}
	f.toggle(loc)
	return nil
}

func (f *fakeDriver) ScrollIntoView(ctx context.Context, loc browser.Locator) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ScrollIntoView " + loc.Expr)
	return nil
}

func (f *fakeDriver) Clear(ctx context.Context, loc browser.Locator) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Clear " + loc.Expr)
	f.values[loc] = ""
	return nil
}

func (f *fakeDriver) SendKeys(ctx context.Context, loc browser.Locator, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SendKeys " + loc.Expr)
	f.values[loc] += text
	return nil
}

func (f *fakeDriver) Value(ctx context.Context, loc browser.Locator) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Value " + loc.Expr)
	return f.values[loc], nil
}

func (f *fakeDriver) CopySelection(ctx context.Context, loc browser.Locator) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CopySelection " + loc.Expr)
	f.clipboard = f.values[loc]
	return nil
}

func (f *fakeDriver) SetClipboard(ctx context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SetClipboard")
	f.clipboard = text
	return nil
}

func (f *fakeDriver) Paste(ctx context.Context, loc browser.Locator) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Paste " + loc.Expr)
	if !f.pasteDrops {
		f.values[loc] += f.clipboard
	}
	return nil
}

func (f *fakeDriver) Evaluate(ctx context.Context, script string, res interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Evaluate")
	if b, ok := res.(*bool); ok && strings.Contains(script, "checked") {
		*b = f.checked
	}
	return nil
}

var _ browser.Driver = (*fakeDriver)(nil)
