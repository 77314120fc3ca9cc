package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/xkilldash9x/emojicheck/internal/config"
)

const hideWebdriverScript = `Object.defineProperty(Navigator.prototype, 'webdriver', { get: () => undefined });`

// personaActions builds the overrides for p. Only non-empty fields produce an
// action, so a zero PersonaConfig yields no tasks.
func personaActions(p config.PersonaConfig) chromedp.Tasks {
	var tasks chromedp.Tasks
	if p.UserAgent != "" {
		ua := emulation.SetUserAgentOverride(p.UserAgent)
		if p.Locale != "" {
			ua = ua.WithAcceptLanguage(p.Locale)
		}
		tasks = append(tasks, ua)
	}
	if p.Locale != "" {
		tasks = append(tasks,
			emulation.SetLocaleOverride().WithLocale(p.Locale),
			network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": acceptLanguage(p.Locale)}),
		)
	}
	if p.Timezone != "" {
		tasks = append(tasks, emulation.SetTimezoneOverride(p.Timezone))
	}
	if p.HideWebdriver {
		tasks = append(tasks, chromedp.ActionFunc(func(ctx context.Context) error {
			if _, err := page.AddScriptToEvaluateOnNewDocument(hideWebdriverScript).Do(ctx); err != nil {
				return fmt.Errorf("failed to inject webdriver override: %w", err)
			}
			return nil
		}))
	}
	return tasks
}

// acceptLanguage turns "en-US" into "en-US,en;q=0.9".
func acceptLanguage(locale string) string {
	base, _, found := strings.Cut(locale, "-")
	if !found || base == "" {
		return locale
	}
	return fmt.Sprintf("%s,%s;q=0.9", locale, base)
}
