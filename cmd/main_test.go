// File: cmd/main_test.go
package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/emojicheck/internal/config"
	"github.com/xkilldash9x/emojicheck/internal/mocks"
	"github.com/xkilldash9x/emojicheck/internal/observability"
	"github.com/xkilldash9x/emojicheck/internal/scenario"
)

// testDirs are the isolated output locations of one test.
type testDirs struct {
	work, reports, screenshots, logs string
}

// resetForTest isolates a command test: a fresh logger, an empty working
// directory without config.yaml, and output paths under t.TempDir.
func resetForTest(t *testing.T) testDirs {
	t.Helper()
	observability.ResetForTest()
	t.Cleanup(observability.ResetForTest)

	work := t.TempDir()
	prevWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(work))
	t.Cleanup(func() { _ = os.Chdir(prevWD) })
	dirs := testDirs{
		work:        work,
		reports:     filepath.Join(work, "reports"),
		screenshots: filepath.Join(work, "reports", "screenshots"),
		logs:        filepath.Join(work, "reports", "logs"),
	}

	t.Setenv("EMOJICHECK_LOGGER_LEVEL", "error")
	t.Setenv("EMOJICHECK_LOGGER_LOG_DIR", dirs.logs)
	t.Setenv("EMOJICHECK_REPORT_DIR", dirs.reports)
	t.Setenv("EMOJICHECK_REPORT_SCREENSHOT_DIR", dirs.screenshots)
	t.Setenv("EMOJICHECK_SCENARIO_TOGGLE_SETTLE", "1ms")
	t.Setenv("EMOJICHECK_SCENARIO_PICK_SETTLE", "1ms")
	t.Setenv("EMOJICHECK_WAIT_TIMEOUT", "500ms")
	t.Setenv("EMOJICHECK_WAIT_POLL_INTERVAL", "10ms")
	return dirs
}

// fixedProvider returns a providerFunc that always hands out p.
func fixedProvider(p scenario.SessionProvider) providerFunc {
	return func(config.Interface, *zap.Logger) scenario.SessionProvider { return p }
}

// encoderProvider serves a single FakeEncoder.
func encoderProvider(t *testing.T, drv *mocks.FakeEncoder) *mocks.MockSessionProvider {
	t.Helper()
	p := new(mocks.MockSessionProvider)
	p.On("Acquire", mock.Anything).Return(drv, nil).Once()
	p.On("Release", drv).Return(nil).Once()
	t.Cleanup(func() { p.AssertExpectations(t) })
	return p
}

// executeCommand runs a fresh command tree and returns everything it printed.
func executeCommand(t *testing.T, provider providerFunc, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand(provider)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
