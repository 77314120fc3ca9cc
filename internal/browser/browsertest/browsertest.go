// Package browsertest holds helpers for tests that drive a real Chrome.
package browsertest

import (
	_ "embed"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/xkilldash9x/emojicheck/internal/config"
)

// EnvVar enables browser backed tests when set to any value.
const EnvVar = "EMOJICHECK_E2E"

// EncoderHTML is a self-contained copy of the emoji encoder. It uses the same
// element ids as the public site and the zero-width alphabet of
// mocks.ZeroWidthEncode.
//
//go:embed encoder.html
var EncoderHTML []byte

// RequireBrowser skips the test unless browser tests are enabled. CI images
// without Chrome leave them off.
func RequireBrowser(t *testing.T) {
	t.Helper()
	if os.Getenv(EnvVar) == "" {
		t.Skipf("set %s=1 to run browser backed tests", EnvVar)
	}
}

// NewServer serves page as HTML and closes the server when the test ends.
func NewServer(t *testing.T, page []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// Config returns the default configuration tuned for tests: headless and
// sandboxless Chrome, no run log file, short waits.
func Config(t *testing.T, targetURL string) *config.Config {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.SetBrowserHeadless(true)
	cfg.BrowserCfg.NoSandbox = true
	cfg.SetTargetURL(targetURL)
	cfg.LoggerCfg.LogDir = ""
	cfg.WaitCfg.Timeout = 5 * time.Second
	cfg.ScenarioCfg.ToggleSettle = 200 * time.Millisecond
	cfg.ScenarioCfg.PickSettle = 100 * time.Millisecond
	cfg.ReportCfg.Dir = t.TempDir()
	cfg.ReportCfg.ScreenshotDir = t.TempDir()
	return cfg
}
