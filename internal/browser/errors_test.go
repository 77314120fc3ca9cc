package browser

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestElementNotReadyError(t *testing.T) {
	loc := XPath("//textarea[@id='output']")

	t.Run("absent element", func(t *testing.T) {
		err := error(&ElementNotReadyError{Locator: loc, Timeout: time.Second})
		assert.ErrorIs(t, err, ErrElementNotReady)
		assert.NotErrorIs(t, err, ErrNotInteractable)
		assert.Contains(t, err.Error(), "not present after 1s")
		assert.ErrorIs(t, fmt.Errorf("step failed: %w", err), ErrElementNotReady)
	})

	t.Run("present but unusable element", func(t *testing.T) {
		probeErr := errors.New("probe exploded")
		err := error(&ElementNotReadyError{Locator: loc, Timeout: time.Second, Present: true, Err: probeErr})
		assert.ErrorIs(t, err, ErrElementNotReady)
		assert.ErrorIs(t, err, ErrNotInteractable)
		assert.ErrorIs(t, err, probeErr)
		assert.Contains(t, err.Error(), "present but not interactable")
	})
}

func TestClickInterceptedError(t *testing.T) {
	err := fmt.Errorf("toggle: %w", &ClickInterceptedError{Locator: CSS("#mode-switch"), Obscurer: "label.slider"})
	assert.ErrorIs(t, err, ErrClickIntercepted)
	assert.NotErrorIs(t, err, ErrElementNotReady)

	var target *ClickInterceptedError
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, "label.slider", target.Obscurer)
}

func TestNavigationError(t *testing.T) {
	cause := errors.New("net::ERR_NAME_NOT_RESOLVED")
	err := &NavigationError{URL: "https://example.invalid/", Err: cause}
	assert.ErrorIs(t, err, ErrNavigation)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "https://example.invalid/")
}

func TestLocatorScripts(t *testing.T) {
	x := XPath("(//div[@id='emoji-picker']/*)[1]")
	assert.Equal(t, "xpath=(//div[@id='emoji-picker']/*)[1]", x.String())
	assert.Contains(t, x.JSFirst(), `document.evaluate("(//div[@id='emoji-picker']/*)[1]"`)
	assert.Contains(t, x.JSCount(), "snapshotLength")

	c := CSS(`input[name="q"]`)
	assert.Equal(t, `document.querySelector("input[name=\"q\"]")`, c.JSFirst())
	assert.Equal(t, `document.querySelectorAll("input[name=\"q\"]").length`, c.JSCount())
}

func TestElementState(t *testing.T) {
	s := ElementState{Present: true, Visible: true, Enabled: true, X: 10, Y: 20, Width: 40, Height: 10}
	assert.True(t, s.Interactable())
	x, y := s.Center()
	assert.Equal(t, 30.0, x)
	assert.Equal(t, 25.0, y)

	s.Width = 0
	assert.False(t, s.Interactable())
	assert.False(t, ElementState{Present: true, Visible: true}.Interactable())
}
