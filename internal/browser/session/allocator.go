// internal/browser/session/allocator.go
package session

import (
	"fmt"
	"strings"

	"github.com/chromedp/chromedp"

	"github.com/xkilldash9x/emojicheck/internal/config"
)

// allocatorFlag is one Chrome command line switch. A bool value of true means a
// bare switch; false removes a switch set by chromedp's defaults.
type allocatorFlag struct {
	Name  string
	Value interface{}
}

// allocatorFlags translates the browser config into Chrome switches, in the
// order they are applied on top of chromedp.DefaultExecAllocatorOptions.
func allocatorFlags(cfg config.BrowserConfig) []allocatorFlag {
	flags := []allocatorFlag{
		{Name: "headless", Value: cfg.Headless},
	}
	if cfg.Headless {
		// Headless Chrome ignores start-maximized; give it a desktop sized window instead.
		w, h := viewport(cfg)
		flags = append(flags, allocatorFlag{Name: "window-size", Value: fmt.Sprintf("%d,%d", w, h)})
	}
	if cfg.StartMaximized {
		flags = append(flags, allocatorFlag{Name: "start-maximized", Value: true})
	}
	if cfg.DisableNotifications {
		flags = append(flags, allocatorFlag{Name: "disable-notifications", Value: true})
	}
	// chromedp's defaults already disable extensions, so the switch must be
	// removed explicitly when the config asks for them.
	flags = append(flags, allocatorFlag{Name: "disable-extensions", Value: cfg.DisableExtensions})
	if cfg.Incognito {
		flags = append(flags, allocatorFlag{Name: "incognito", Value: true})
	}
	if cfg.NoSandbox {
		flags = append(flags, allocatorFlag{Name: "no-sandbox", Value: true})
	}

	for _, arg := range cfg.Args {
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if name == "" {
			continue
		}
		if hasValue {
			flags = append(flags, allocatorFlag{Name: name, Value: value})
		} else {
			flags = append(flags, allocatorFlag{Name: name, Value: true})
		}
	}
	return flags
}

func viewport(cfg config.BrowserConfig) (int, int) {
	w, h := cfg.Viewport["width"], cfg.Viewport["height"]
	if w <= 0 {
		w = 1920
	}
	if h <= 0 {
		h = 1080
	}
	return w, h
}

// DefaultAllocatorOptions returns the exec allocator options for one session.
func DefaultAllocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	for _, f := range allocatorFlags(cfg) {
		opts = append(opts, chromedp.Flag(f.Name, f.Value))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	return opts
}
