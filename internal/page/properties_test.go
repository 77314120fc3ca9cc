package page

import (
	"context"
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"
)

// basicPlane covers printable BMP characters, skipping the surrogate block.
var basicPlane = &unicode.RangeTable{R16: []unicode.Range16{
	{Lo: 0x0020, Hi: 0xD7FF, Stride: 1},
	{Lo: 0xE000, Hi: 0xFFFD, Stride: 1},
}}

func drawBasicText(t *rapid.T, label string) string {
	return rapid.StringOfN(rapid.RuneFrom(nil, basicPlane), 0, 80, -1).Draw(t, label)
}

func drawWideRune(t *rapid.T) rune {
	return rune(rapid.Int32Range(0x10000, unicode.MaxRune).Draw(t, "wide_rune"))
}

func TestEnterTextRouting_BasicPlane_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := drawBasicText(t, "text")
		if NeedsClipboard(text) {
			t.Fatalf("basic plane text %q routed to the clipboard", text)
		}

		d := newFakeDriver()
		p := NewEncoderPage(d, nil, fastSettings, zap.NewNop())
		if err := p.EnterTextSupportingWideCharacters(context.Background(), text); err != nil {
			t.Fatalf("enter %q: %v", text, err)
		}
		if n := d.called("SendKeys"); n != 1 {
			t.Fatalf("expected one SendKeys for %q, got %d", text, n)
		}
		if d.called("SetClipboard") != 0 || d.called("Paste") != 0 {
			t.Fatalf("basic plane text %q touched the clipboard", text)
		}
		if got := d.values[TextInput]; got != text {
			t.Fatalf("input holds %q, want %q", got, text)
		}
	})
}

func TestEnterTextRouting_WideCharacters_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := drawBasicText(t, "prefix") + string(drawWideRune(t)) + drawBasicText(t, "suffix")
		if !NeedsClipboard(text) {
			t.Fatalf("text %q with a supplementary character not routed to the clipboard", text)
		}

		d := newFakeDriver()
		p := NewEncoderPage(d, nil, fastSettings, zap.NewNop())
		if err := p.EnterTextSupportingWideCharacters(context.Background(), text); err != nil {
			t.Fatalf("enter %q: %v", text, err)
		}
		if d.called("SendKeys") != 0 {
			t.Fatalf("wide text %q was typed as key events", text)
		}
		if d.called("SetClipboard") != 1 || d.called("Paste "+TextInput.Expr) != 1 {
			t.Fatalf("wide text %q did not go through one clipboard paste", text)
		}
		if got := d.values[TextInput]; got != text {
			t.Fatalf("input holds %q, want %q", got, text)
		}
	})
}

func TestPreview_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "s")
		got := Preview(s)

		if utf8.RuneCountInString(s) <= previewLimit {
			if got != s {
				t.Fatalf("short value %q changed to %q", s, got)
			}
			return
		}
		head, ok := strings.CutSuffix(got, "...")
		if !ok {
			t.Fatalf("truncated preview %q lacks the ellipsis", got)
		}
		if n := utf8.RuneCountInString(head); n != previewLimit {
			t.Fatalf("preview keeps %d runes, want %d", n, previewLimit)
		}
		if !strings.HasPrefix(s, head) {
			t.Fatalf("preview %q is not a prefix of %q", head, s)
		}
	})
}

func TestReadOutputIsNeverTruncated_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		value := rapid.StringN(0, 200, -1).Draw(t, "value")

		d := newFakeDriver()
		d.values[Output] = value
		core, logs := observer.New(zapcore.InfoLevel)
		p := NewEncoderPage(d, nil, fastSettings, zap.New(core))

		got, err := p.ReadOutput(context.Background())
		if err != nil {
			t.Fatalf("read output: %v", err)
		}
		if got != value {
			t.Fatalf("read %q, want the full %q", got, value)
		}
		if logs.FilterField(zap.String("preview", Preview(value))).Len() != 1 {
			t.Fatalf("expected one log line carrying the preview of %q", value)
		}
	})
}
