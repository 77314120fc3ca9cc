package evidence

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/emojicheck/internal/browser"
)

var ErrEvidenceCapture = errors.New("evidence capture failed")

// CaptureError reports a screenshot that could not be taken or written.
// It is always logged and never fails a step.
type CaptureError struct {
	Step string
	Path string
	Err  error
}

func (e *CaptureError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("capture for step %q to %s: %v", e.Step, e.Path, e.Err)
	}
	return fmt.Sprintf("capture for step %q: %v", e.Step, e.Err)
}

func (e *CaptureError) Is(target error) bool { return target == ErrEvidenceCapture }

func (e *CaptureError) Unwrap() error { return e.Err }

// Shot locates the files written for one capture.
type Shot struct {
	Path      string
	Thumbnail string
}

// Thumbnail dimensions used in the report.
const (
	ThumbWidth  = 320
	ThumbHeight = 180
)

// Capturer writes screenshots into a single directory.
type Capturer struct {
	dir        string
	thumbnails bool
	logger     *zap.Logger

	now       func() time.Time
	mkdirAll  func(path string, perm os.FileMode) error
	writeFile func(name string, data []byte, perm os.FileMode) error
	exists    func(name string) bool
}

// CapturerOption configures a Capturer.
type CapturerOption func(*Capturer)

// WithThumbnails enables the scaled, labelled preview written next to each screenshot.
func WithThumbnails(enabled bool) CapturerOption {
	return func(c *Capturer) { c.thumbnails = enabled }
}

// WithClock replaces the time source used for file names.
func WithClock(now func() time.Time) CapturerOption {
	return func(c *Capturer) { c.now = now }
}

// WithFileWriter replaces the function used to persist files.
func WithFileWriter(write func(name string, data []byte, perm os.FileMode) error) CapturerOption {
	return func(c *Capturer) { c.writeFile = write }
}

// NewCapturer returns a Capturer writing into dir.
func NewCapturer(dir string, logger *zap.Logger, opts ...CapturerOption) *Capturer {
	c := &Capturer{
		dir:       dir,
		logger:    logger,
		now:       time.Now,
		mkdirAll:  os.MkdirAll,
		writeFile: os.WriteFile,
		exists: func(name string) bool {
			_, err := os.Stat(name)
			return err == nil
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dir returns the output directory.
func (c *Capturer) Dir() string { return c.dir }

// Capture screenshots src and stores it as {step}_{outcome}_{HHMMSS}.png. The
// directory tree is created first. Any failure is returned as *CaptureError.
func (c *Capturer) Capture(ctx context.Context, src browser.Screenshotter, step, outcome string) (Shot, error) {
	base := fmt.Sprintf("%s_%s_%s", sanitize(step), sanitize(outcome), c.now().Format("150405"))
	return c.store(ctx, src, step, base)
}

// Snapshot stores an ad hoc screenshot as {name}_{YYYYmmdd_HHMMSS}.png.
func (c *Capturer) Snapshot(ctx context.Context, src browser.Screenshotter, name string) (Shot, error) {
	base := fmt.Sprintf("%s_%s", sanitize(name), c.now().Format("20060102_150405"))
	return c.store(ctx, src, name, base)
}

func (c *Capturer) store(ctx context.Context, src browser.Screenshotter, step, base string) (Shot, error) {
	if err := c.mkdirAll(c.dir, 0o755); err != nil {
		return Shot{}, &CaptureError{Step: step, Err: fmt.Errorf("create %s: %w", c.dir, err)}
	}

	data, err := src.Screenshot(ctx)
	if err != nil {
		return Shot{}, &CaptureError{Step: step, Err: err}
	}

	path := c.uniquePath(base)
	if err := c.writeFile(path, data, 0o644); err != nil {
		return Shot{}, &CaptureError{Step: step, Path: path, Err: err}
	}
	shot := Shot{Path: path}
	c.logger.Debug("Screenshot saved.", zap.String("step", step), zap.String("path", path))

	if c.thumbnails {
		thumbPath := strings.TrimSuffix(path, ".png") + "_thumb.png"
		thumb, err := makeThumbnail(data, step, ThumbWidth, ThumbHeight)
		if err == nil {
			err = c.writeFile(thumbPath, thumb, 0o644)
		}
		if err != nil {
			c.logger.Warn("Thumbnail not written.", zap.String("step", step), zap.Error(err))
		} else {
			shot.Thumbnail = thumbPath
		}
	}
	return shot, nil
}

// uniquePath appends -1, -2, ... when two captures land in the same second.
func (c *Capturer) uniquePath(base string) string {
	path := filepath.Join(c.dir, base+".png")
	for i := 1; c.exists(path); i++ {
		path = filepath.Join(c.dir, fmt.Sprintf("%s-%d.png", base, i))
	}
	return path
}

var nameReplacer = strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_")

// sanitize turns a step name into a file name fragment.
func sanitize(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "step"
	}
	return nameReplacer.Replace(name)
}
