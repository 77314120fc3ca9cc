// internal/browser/session/factory.go
package session

import (
	"context"
	"fmt"
	"time"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/emojicheck/internal/config"
)

var (
	clipboardReadPermission  = cdpbrowser.PermissionDescriptor{Name: "clipboard-read"}
	clipboardWritePermission = cdpbrowser.PermissionDescriptor{Name: "clipboard-write"}
)

// Factory creates and releases browser sessions with the fixed environment
// options from config.
type Factory struct {
	browserCfg config.BrowserConfig
	waitCfg    config.WaitConfig
	logger     *zap.Logger
}

// NewFactory returns a Factory for the given browser and wait settings.
func NewFactory(browserCfg config.BrowserConfig, waitCfg config.WaitConfig, logger *zap.Logger) *Factory {
	return &Factory{
		browserCfg: browserCfg,
		waitCfg:    waitCfg,
		logger:     logger,
	}
}

// Acquire launches Chrome and returns a live session. The browser's lifetime
// is bound to ctx; Release must still be called to shut it down cleanly.
func (f *Factory) Acquire(ctx context.Context) (*Session, error) {
	f.logger.Info("Launching browser.",
		zap.Bool("headless", f.browserCfg.Headless),
		zap.Bool("incognito", f.browserCfg.Incognito),
		zap.Duration("implicit_wait", f.browserCfg.ImplicitWait),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, DefaultAllocatorOptions(f.browserCfg)...)
	sugar := f.logger.Sugar()
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(sugar.Debugf),
		chromedp.WithErrorf(sugar.Debugf),
	)

	s := newSession(tabCtx, tabCancel, allocCancel, f.logger)
	s.implicitWait = f.browserCfg.ImplicitWait
	s.navigationTimeout = f.waitCfg.NavigationTimeout

	// The first Run starts Chrome. It must use the tab context itself: a
	// deadline here would bound the life of the whole browser.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	grantCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.RunActions(grantCtx,
		cdpbrowser.SetPermission(&clipboardReadPermission, cdpbrowser.PermissionSettingGranted).WithOrigin(""),
		cdpbrowser.SetPermission(&clipboardWritePermission, cdpbrowser.PermissionSettingGranted).WithOrigin(""),
	); err != nil {
		// Clipboard access is only needed for wide character input; the session is still usable.
		s.logger.Warn("Could not grant clipboard permissions.", zap.Error(err))
	}

	if tasks := personaActions(f.browserCfg.Persona); len(tasks) > 0 {
		if err := s.RunActions(grantCtx, tasks); err != nil {
			s.logger.Warn("Could not apply browser persona.", zap.Error(err))
		}
	}

	f.logger.Info("Browser session acquired.", zap.String("session_id", s.ID()))
	return s, nil
}

// Release terminates the session. It is safe to call more than once and with nil.
func (f *Factory) Release(s *Session) error {
	if s == nil {
		return nil
	}
	f.logger.Debug("Releasing browser session.", zap.String("session_id", s.ID()))
	return s.Close()
}
