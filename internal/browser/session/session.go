// internal/browser/session/session.go
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/emojicheck/internal/browser"
)

// Session is one live Chrome tab driven over CDP. It implements browser.Driver.
// A Session is owned by a single goroutine; it is not safe for concurrent use.
type Session struct {
	id     string
	ctx    context.Context // chromedp tab context; carries the CDP target
	cancel context.CancelFunc
	// allocCancel stops the Chrome process.
	allocCancel context.CancelFunc

	logger *zap.Logger

	// implicitWait bounds every call that arrives without its own deadline.
	implicitWait      time.Duration
	navigationTimeout time.Duration

	closeOnce sync.Once
	closeErr  error
}

var _ browser.Driver = (*Session)(nil)

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// Close terminates the browser. Only the first call has any effect.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.logger.Info("Closing browser session.")
		// chromedp.Cancel closes the tab and waits for Chrome to exit.
		if err := chromedp.Cancel(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.closeErr = fmt.Errorf("failed to close browser: %w", err)
		}
		s.cancel()
		s.allocCancel()
	})
	return s.closeErr
}

// RunActions executes chromedp actions against the tab under ctx's deadline,
// or under the implicit wait when ctx has none.
func (s *Session) RunActions(ctx context.Context, actions ...chromedp.Action) error {
	if s.ctx.Err() != nil {
		return browser.ErrSessionClosed
	}

	opCtx := ctx
	if _, ok := ctx.Deadline(); !ok && s.implicitWait > 0 {
		var cancel context.CancelFunc
		opCtx, cancel = context.WithTimeout(ctx, s.implicitWait)
		defer cancel()
	}

	runCtx, cancel := CombineContext(s.ctx, opCtx)
	defer cancel()

	err := chromedp.Run(runCtx, actions...)
	if err == nil {
		return nil
	}
	// Prioritize the more fundamental context errors.
	if s.ctx.Err() != nil {
		return fmt.Errorf("%w: %v", browser.ErrSessionClosed, err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(opCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("browser operation timed out: %w", opCtx.Err())
	}
	return err
}

func newSession(ctx context.Context, cancel, allocCancel context.CancelFunc, logger *zap.Logger) *Session {
	id := uuid.New().String()
	return &Session{
		id:          id,
		ctx:         ctx,
		cancel:      cancel,
		allocCancel: allocCancel,
		logger:      logger.With(zap.String("session_id", id)),
	}
}
