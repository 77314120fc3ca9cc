// File: cmd/run.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/emojicheck/internal/browser"
	"github.com/xkilldash9x/emojicheck/internal/browser/session"
	"github.com/xkilldash9x/emojicheck/internal/config"
	"github.com/xkilldash9x/emojicheck/internal/evidence"
	"github.com/xkilldash9x/emojicheck/internal/observability"
	"github.com/xkilldash9x/emojicheck/internal/page"
	"github.com/xkilldash9x/emojicheck/internal/reporting"
	"github.com/xkilldash9x/emojicheck/internal/scenario"
)

// reportTimeout bounds report rendering, which still runs after the run
// context is cancelled.
const reportTimeout = 30 * time.Second

// providerFunc builds the session provider for a run.
type providerFunc func(cfg config.Interface, logger *zap.Logger) scenario.SessionProvider

func defaultProvider(cfg config.Interface, logger *zap.Logger) scenario.SessionProvider {
	return session.Provider{Factory: session.NewFactory(cfg.Browser(), cfg.Wait(), logger)}
}

func newRunCmd(provider providerFunc) *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the encode/decode round trip and write the reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfig(cmd)
			if err != nil {
				return err
			}
			if err := applyRunFlagOverrides(cmd, cfg); err != nil {
				return err
			}
			return runRoundTrip(cmd.Context(), cfg, provider(cfg, observability.Named("session")), cmd.OutOrStdout())
		},
	}

	runCmd.Flags().Bool("headless", true, "run the browser without a window")
	runCmd.Flags().String("url", "", "encoder URL (default from config)")
	runCmd.Flags().String("text", "", "secret text to round trip (default from config)")
	runCmd.Flags().StringSlice("report-format", nil, "report formats to write: html, junit, json")
	return runCmd
}

// applyRunFlagOverrides copies explicitly set flags onto cfg, which already
// holds the file and environment values.
func applyRunFlagOverrides(cmd *cobra.Command, cfg config.Interface) error {
	flags := cmd.Flags()
	if flags.Changed("headless") {
		headless, err := flags.GetBool("headless")
		if err != nil {
			return err
		}
		cfg.SetBrowserHeadless(headless)
	}
	if flags.Changed("url") {
		u, err := flags.GetString("url")
		if err != nil {
			return err
		}
		cfg.SetTargetURL(u)
	}
	if flags.Changed("text") {
		text, err := flags.GetString("text")
		if err != nil {
			return err
		}
		cfg.SetScenarioSecretText(text)
	}
	if flags.Changed("report-format") {
		formats, err := flags.GetStringSlice("report-format")
		if err != nil {
			return err
		}
		cfg.SetReportFormats(formats)
	}
	if c, ok := cfg.(*config.Config); ok {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid flag value: %w", err)
		}
	}
	return nil
}

// runRoundTrip wires the evidence, report and scenario layers, runs once
// and writes the reports. Each layer logs under its own name from the
// observability registry. The returned error is nil only when the round trip
// held and every report was written.
func runRoundTrip(ctx context.Context, cfg config.Interface, provider scenario.SessionProvider, out io.Writer) error {
	logger := observability.Named("run")
	rc := cfg.Report()
	assembler := reporting.NewAssembler(rc.Dir, reporting.Metadata{
		ProjectName: rc.ProjectName,
		Module:      rc.Module,
		Tester:      rc.Tester,
		Browser:     rc.Browser,
	}, observability.Named("report"), reporting.WithFormats(rc.Formats...))

	capturer := evidence.NewCapturer(rc.ScreenshotDir, observability.Named("evidence"), evidence.WithThumbnails(rc.Thumbnails))
	recorder := evidence.NewRecorder(capturer, observability.Named("step"), assembler)

	settings := page.SettingsFromConfig(cfg)
	build := func(d browser.Driver, rec *evidence.Recorder) *page.EncoderPage {
		return page.NewEncoderPage(d, rec, settings, observability.Named("page"))
	}
	runner := scenario.NewRunner(provider, recorder, build, cfg.Scenario().SecretText, observability.Named("scenario"))

	runErr := runner.Run(ctx)

	reportCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reportTimeout)
	defer cancel()
	paths, reportErr := assembler.Finalize(reportCtx)

	if runErr != nil {
		fmt.Fprintf(out, "FAILED: %v\n", runErr)
		var afe *scenario.AssertionFailedError
		if errors.As(runErr, &afe) {
			fmt.Fprintf(out, "Round trip mismatch (-expected +actual):\n%s", afe.Diff)
		}
	} else {
		fmt.Fprintln(out, "PASSED: decoded text matches the original.")
	}
	for _, p := range paths {
		fmt.Fprintf(out, "Report: %s\n", p)
	}
	if lf := observability.LogFile(); lf != "" {
		fmt.Fprintf(out, "Log: %s\n", lf)
	}

	if reportErr != nil {
		logger.Error("Report generation failed.", zap.Error(reportErr))
	}
	return errors.Join(runErr, reportErr)
}
