package browser

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrElementNotReady  = errors.New("element not ready")
	ErrNotInteractable  = errors.New("element present but not interactable")
	ErrClickIntercepted = errors.New("click intercepted")
	ErrNavigation       = errors.New("navigation failed")
	ErrSessionClosed    = errors.New("browser session closed")
	ErrNoSuchElement    = errors.New("no such element")
)

// ElementNotReadyError reports a wait that timed out. It always matches
// ErrElementNotReady and additionally matches ErrNotInteractable when the
// element was seen in the page but never became usable.
type ElementNotReadyError struct {
	Locator Locator
	Timeout time.Duration
	// Present is true if any probe found the element.
	Present bool
	// Last is the final observed state.
	Last ElementState
	// Err is the last probe error, if any.
	Err error
}

func (e *ElementNotReadyError) Error() string {
	reason := "not present"
	if e.Present {
		reason = "present but not interactable"
	}
	msg := fmt.Sprintf("element %s %s after %v", e.Locator, reason, e.Timeout)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ElementNotReadyError) Is(target error) bool {
	switch target {
	case ErrElementNotReady:
		return true
	case ErrNotInteractable:
		return e.Present
	}
	return false
}

func (e *ElementNotReadyError) Unwrap() error {
	return e.Err
}

// ClickInterceptedError reports that another element sits on top of the click target.
type ClickInterceptedError struct {
	Locator Locator
	// Obscurer describes the element that would have received the click.
	Obscurer string
}

func (e *ClickInterceptedError) Error() string {
	return fmt.Sprintf("click on %s intercepted by %s", e.Locator, e.Obscurer)
}

func (e *ClickInterceptedError) Is(target error) bool {
	return target == ErrClickIntercepted
}

// NavigationError wraps a failed page load.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to %s failed: %v", e.URL, e.Err)
}

func (e *NavigationError) Is(target error) bool {
	return target == ErrNavigation
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}
