package browser

import "context"

// Prober reports the current state of the first element matched by a locator.
// It never blocks waiting for the element; polling is the caller's concern.
type Prober interface {
	Probe(ctx context.Context, loc Locator) (ElementState, error)
}

// Screenshotter captures the current viewport as PNG bytes.
type Screenshotter interface {
	Screenshot(ctx context.Context) ([]byte, error)
}

// Driver is the set of primitive interactions the page model is built from.
// Element methods act on the first element matched by the locator and do not
// wait for it to appear; callers guard them with the wait package.
type Driver interface {
	Prober
	Screenshotter

	// Navigate loads url in the current tab. Failures are *NavigationError.
	Navigate(ctx context.Context, url string) error
	// Click dispatches a real pointer click at the element's centre. It returns
	// *ClickInterceptedError when another element would receive the click.
	Click(ctx context.Context, loc Locator) error
	// ForceClick fires a synthetic click event directly on the element.
	ForceClick(ctx context.Context, loc Locator) error
	ScrollIntoView(ctx context.Context, loc Locator) error
	// Clear empties a text control and fires input and change events.
	Clear(ctx context.Context, loc Locator) error
	// SendKeys focuses the element and types text as key events.
	SendKeys(ctx context.Context, loc Locator, text string) error
	Value(ctx context.Context, loc Locator) (string, error)
	// CopySelection focuses the element, selects all of its content and copies it.
	CopySelection(ctx context.Context, loc Locator) error
	SetClipboard(ctx context.Context, text string) error
	// Paste focuses the element and triggers the native paste command.
	Paste(ctx context.Context, loc Locator) error
	// Evaluate runs script in the page and decodes its result into res (may be nil).
	Evaluate(ctx context.Context, script string, res interface{}) error
}
