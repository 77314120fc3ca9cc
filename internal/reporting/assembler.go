package reporting

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/emojicheck/internal/evidence"
)

// FilePrefix starts the name of every report file.
const FilePrefix = "emoji_encoder_report_"

// Assembler collects step outcomes as an evidence.Observer and renders them
// into report files once the run is over.
type Assembler struct {
	dir     string
	formats []string
	logger  *zap.Logger
	now     func() time.Time
	create  func(format, path string) (Writer, error)

	mu     sync.Mutex
	report Report

	once  sync.Once
	paths []string
	err   error
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithFormats selects the formats Finalize renders. The default is html.
func WithFormats(formats ...string) Option {
	return func(a *Assembler) {
		if len(formats) == 0 {
			return
		}
		a.formats = a.formats[:0:0]
		for _, f := range formats {
			a.formats = append(a.formats, strings.ToLower(strings.TrimSpace(f)))
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

// NewAssembler prepares an empty report under dir. A zero ExecutionTime in
// meta is replaced with the current time.
func NewAssembler(dir string, meta Metadata, logger *zap.Logger, opts ...Option) *Assembler {
	a := &Assembler{
		dir:     dir,
		formats: []string{"html"},
		logger:  logger,
		now:     time.Now,
		create:  New,
	}
	for _, opt := range opts {
		opt(a)
	}
	if meta.ExecutionTime.IsZero() {
		meta.ExecutionTime = a.now()
	}
	a.report = Report{
		Title:    Title,
		Metadata: meta.Entries(),
		Summary:  append([]string(nil), SummaryText...),
		Columns:  append([]string(nil), Columns...),
	}
	return a
}

var _ evidence.Observer = (*Assembler)(nil)

// StepCompleted appends a row for the outcome.
func (a *Assembler) StepCompleted(o evidence.StepOutcome) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.report.Rows = append(a.report.Rows, Row{
		StepOutcome: o,
		Screenshot:  relativeTo(a.dir, o.Screenshot),
		Thumbnail:   relativeTo(a.dir, o.Thumbnail),
	})
}

// RunFinished records the run summary.
func (a *Assembler) RunFinished(s evidence.RunSummary) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s.FinalScreenshot = relativeTo(a.dir, s.FinalScreenshot)
	a.report.Run = &s
}

// Snapshot returns a copy of the report as assembled so far.
func (a *Assembler) Snapshot() Report {
	a.mu.Lock()
	defer a.mu.Unlock()
	r := a.report
	r.Metadata = append([]MetadataEntry(nil), a.report.Metadata...)
	r.Rows = append([]Row(nil), a.report.Rows...)
	if a.report.Run != nil {
		run := *a.report.Run
		r.Run = &run
	}
	return r
}

// Finalize writes one file per configured format and returns their paths.
// Only the first call does any work; later calls return its result.
func (a *Assembler) Finalize(ctx context.Context) ([]string, error) {
	a.once.Do(func() {
		a.paths, a.err = a.finalize(ctx)
	})
	return append([]string(nil), a.paths...), a.err
}

func (a *Assembler) finalize(ctx context.Context) ([]string, error) {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory %s: %w", a.dir, err)
	}

	generated := a.now()
	r := a.Snapshot()
	r.Generated = generated
	stamp := generated.Format("20060102_150405")

	var paths []string
	var errs []error
	for _, format := range a.formats {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		ext, ok := Extensions[format]
		if !ok {
			errs = append(errs, fmt.Errorf("unsupported report format: %s", format))
			continue
		}
		path := filepath.Join(a.dir, FilePrefix+stamp+ext)
		w, err := a.create(format, path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := closeAfter(w, w.Write(&r)); err != nil {
			errs = append(errs, err)
			continue
		}
		a.logger.Info("Report written.", zap.String("format", format), zap.String("path", path))
		paths = append(paths, path)
	}
	return paths, errors.Join(errs...)
}
