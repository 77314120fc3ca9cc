// File: cmd/emojicheck/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/xkilldash9x/emojicheck/cmd"
	"github.com/xkilldash9x/emojicheck/internal/observability"
)

// Exit codes.
const (
	exitFailure = 1
	exitPanic   = 2
)

// Function variables for tests.
var (
	osWriteFile = os.WriteFile
	osMkdirAll  = os.MkdirAll
	osExit      = os.Exit
	now         = time.Now
	// panicLogDir matches the default logger.log_dir.
	panicLogDir = filepath.Join("reports", "logs")
)

func main() {
	defer handlePanic()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		stop()
		osExit(exitFailure)
	}
}

// handlePanic writes the panic and its stack to a timestamped file and exits
// with exitPanic.
func handlePanic() {
	r := recover()
	if r == nil {
		return
	}
	observability.Sync()

	panicMessage := fmt.Sprintf("panic: %v\n\n%s", r, debug.Stack())
	path := filepath.Join(panicLogDir, fmt.Sprintf("panic_%s.log", now().Format("20060102_150405")))

	err := osMkdirAll(panicLogDir, 0o755)
	if err == nil {
		err = osWriteFile(path, []byte(panicMessage), 0o644)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: Failed to write panic log: %v\n", err)
		fmt.Fprintf(os.Stderr, "Panic details:\n%s\n", panicMessage)
		osExit(exitPanic)
		return
	}

	fmt.Fprintf(os.Stderr, "\nCRASH: emojicheck panicked. Details logged to %s\n", path)
	osExit(exitPanic)
}
