package mocks

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"

	"github.com/xkilldash9x/emojicheck/internal/browser"
)

// Locators of the encoder page, repeated here so the fake does not depend on
// the page package it is used to test.
var (
	modeSwitch      = browser.XPath("//input[@id='mode-switch']")
	textInput       = browser.XPath("//textarea[@id='text-input']")
	firstSuggestion = browser.XPath("(//div[@id='emoji-picker']/*)[1]")
	output          = browser.XPath("//textarea[@id='output']")
)

// Zero-width alphabet of the encoder: one rune per bit, a joiner between
// bytes.
const (
	ZeroWidthOne   = '\u200b'
	ZeroWidthZero  = '\u200c'
	ZeroWidthDelim = '\u200d'
	DefaultCarrier = "😀"
)

// ZeroWidthEncode hides text after carrier, one zero-width run per UTF-8 byte.
func ZeroWidthEncode(carrier, text string) string {
	var b strings.Builder
	b.WriteString(carrier)
	for i := 0; i < len(text); i++ {
		if i > 0 {
			b.WriteRune(ZeroWidthDelim)
		}
		for bit := 7; bit >= 0; bit-- {
			if text[i]&(1<<bit) != 0 {
				b.WriteRune(ZeroWidthOne)
			} else {
				b.WriteRune(ZeroWidthZero)
			}
		}
	}
	return b.String()
}

// ZeroWidthDecode recovers the text hidden by ZeroWidthEncode. Runes outside
// the alphabet are ignored.
func ZeroWidthDecode(encoded string) string {
	var out []byte
	var cur byte
	n := 0
	for _, r := range encoded {
		switch r {
		case ZeroWidthOne, ZeroWidthZero:
			cur <<= 1
			if r == ZeroWidthOne {
				cur |= 1
			}
			n++
		case ZeroWidthDelim:
			if n > 0 {
				out = append(out, cur)
			}
			cur, n = 0, 0
		}
	}
	if n > 0 {
		out = append(out, cur)
	}
	return string(out)
}

// FakeEncoder is an in-memory emoji encoder page implementing browser.Driver.
// The output follows the input as on the real page: encoded in encode mode
// once a carrier is picked, decoded otherwise. Exported fields inject faults
// and must be set before use.
type FakeEncoder struct {
	// Checked is the initial switch state; checked means encode.
	Checked bool
	// SuggestionClickErr is returned when the first suggestion is clicked.
	SuggestionClickErr error
	// PanicOnNavigate makes Navigate panic.
	PanicOnNavigate bool
	// DecodeOverride replaces the decoded output when non-empty.
	DecodeOverride string

	mu        sync.Mutex
	picked    bool
	input     string
	clipboard string
	visited   []string
}

var _ browser.Driver = (*FakeEncoder)(nil)

// Visited lists the URLs passed to Navigate.
func (f *FakeEncoder) Visited() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.visited...)
}

func (f *FakeEncoder) output() string {
	if f.Checked {
		if !f.picked || f.input == "" {
			return ""
		}
		return ZeroWidthEncode(DefaultCarrier, f.input)
	}
	if f.DecodeOverride != "" {
		return f.DecodeOverride
	}
	return ZeroWidthDecode(f.input)
}

func (f *FakeEncoder) Probe(ctx context.Context, loc browser.Locator) (browser.ElementState, error) {
	return browser.ElementState{Count: 1, Present: true, Visible: true, Enabled: true, Width: 10, Height: 10}, nil
}

// Screenshot returns a small solid PNG, green in encode mode.
func (f *FakeEncoder) Screenshot(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	fill := color.RGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff}
	if f.Checked {
		fill = color.RGBA{R: 0x81, G: 0xc7, B: 0x84, A: 0xff}
	}
	f.mu.Unlock()

	img := image.NewRGBA(image.Rect(0, 0, 64, 36))
	for y := 0; y < 36; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, fill)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (f *FakeEncoder) Navigate(ctx context.Context, url string) error {
	if f.PanicOnNavigate {
		panic("navigation exploded")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visited = append(f.visited, url)
	return nil
}

func (f *FakeEncoder) Click(ctx context.Context, loc browser.Locator) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch loc {
	case modeSwitch:
		f.Checked = !f.Checked
	case firstSuggestion:
		if f.SuggestionClickErr != nil {
			return f.SuggestionClickErr
		}
		f.picked = true
	}
	return nil
}

func (f *FakeEncoder) ForceClick(ctx context.Context, loc browser.Locator) error {
	return f.Click(ctx, loc)
}

func (f *FakeEncoder) ScrollIntoView(ctx context.Context, loc browser.Locator) error { return nil }

func (f *FakeEncoder) Clear(ctx context.Context, loc browser.Locator) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if loc == textInput {
		f.input = ""
	}
	return nil
}

func (f *FakeEncoder) SendKeys(ctx context.Context, loc browser.Locator, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if loc == textInput {
		f.input += text
	}
	return nil
}

func (f *FakeEncoder) Value(ctx context.Context, loc browser.Locator) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch loc {
	case textInput:
		return f.input, nil
	case output:
		return f.output(), nil
	}
	return "", browser.ErrNoSuchElement
}

func (f *FakeEncoder) CopySelection(ctx context.Context, loc browser.Locator) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if loc == output {
		f.clipboard = f.output()
	}
	return nil
}

func (f *FakeEncoder) SetClipboard(ctx context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clipboard = text
	return nil
}

func (f *FakeEncoder) Paste(ctx context.Context, loc browser.Locator) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if loc == textInput {
		f.input += f.clipboard
	}
	return nil
}

// Evaluate answers the mode switch query; other scripts are no-ops.
func (f *FakeEncoder) Evaluate(ctx context.Context, script string, res interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := res.(*bool); ok {
		*b = f.Checked
	}
	return nil
}
