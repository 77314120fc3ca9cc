// internal/browser/session/context_utils.go
package session

import (
	"context"
)

// CombineContext derives a context from session (which carries the chromedp
// target values) that also ends when op ends. op's deadline, if any, is copied
// onto the result so chromedp sees it directly.
func CombineContext(session, op context.Context) (context.Context, context.CancelFunc) {
	var (
		combined context.Context
		cancel   context.CancelFunc
	)
	if deadline, ok := op.Deadline(); ok {
		combined, cancel = context.WithDeadline(session, deadline)
	} else {
		combined, cancel = context.WithCancel(session)
	}

	stop := context.AfterFunc(op, cancel)
	return combined, func() {
		stop()
		cancel()
	}
}
