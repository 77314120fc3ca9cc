// File: cmd/logs.go
package cmd

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/hpcloud/tail"
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/emojicheck/internal/observability"
)

func newLogsCmd() *cobra.Command {
	var follow bool
	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the most recent run log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfig(cmd)
			if err != nil {
				return err
			}
			path, err := latestRunLog(cfg.Logger().LogDir, observability.LogFile())
			if err != nil {
				return err
			}
			return printLog(cmd, path, follow)
		},
	}
	logsCmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep printing lines as they are appended")
	return logsCmd
}

// latestRunLog returns the newest run log in dir, ignoring skip, which is
// the log of the current process.
func latestRunLog(dir, skip string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "test_log_*.log"))
	if err != nil {
		return "", err
	}
	candidates := matches[:0]
	for _, m := range matches {
		if m != skip {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no run logs in %s", dir)
	}
	// The timestamp in the name sorts chronologically.
	sort.Strings(candidates)
	return candidates[len(candidates)-1], nil
}

func printLog(cmd *cobra.Command, path string, follow bool) error {
	t, err := tail.TailFile(path, tail.Config{
		Follow:    follow,
		ReOpen:    follow,
		MustExist: true,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return fmt.Errorf("failed to open log %s: %w", path, err)
	}
	defer t.Cleanup()

	out := cmd.OutOrStdout()
	ctx := cmd.Context()
	for {
		select {
		case <-ctx.Done():
			// Interrupting a follow is the normal way to end it.
			_ = t.Stop()
			return nil
		case line, ok := <-t.Lines:
			if !ok {
				return t.Wait()
			}
			if line.Err != nil {
				return line.Err
			}
			fmt.Fprintln(out, line.Text)
		}
	}
}
