package scenario

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"
)

var ErrAssertionFailed = errors.New("round trip assertion failed")

// AssertionFailedError carries both sides of a failed round trip comparison.
type AssertionFailedError struct {
	Expected string
	Actual   string
	// Diff is a go-cmp rendering of Expected against Actual.
	Diff string
}

func (e *AssertionFailedError) Error() string {
	return fmt.Sprintf("decoded text does not match the original: expected %q, got %q", e.Expected, e.Actual)
}

func (e *AssertionFailedError) Is(target error) bool { return target == ErrAssertionFailed }

// AssertRoundTrip compares decoded output with the original input, ignoring
// surrounding whitespace on both.
func AssertRoundTrip(original, decoded string) error {
	want, got := strings.TrimSpace(original), strings.TrimSpace(decoded)
	if want == got {
		return nil
	}
	return &AssertionFailedError{
		Expected: want,
		Actual:   got,
		Diff:     cmp.Diff(want, got),
	}
}
