// internal/reporting/reporter.go
package reporting

import (
	"fmt"
	"io"
	"os"
)

// Writer renders a report to an output.
type Writer interface {
	// Write renders the report. It may be called once.
	Write(r *Report) error
	// Close releases the underlying output.
	Close() error
}

// Extensions maps each supported format to its file extension.
var Extensions = map[string]string{
	"html":  ".html",
	"junit": ".xml",
	"json":  ".json",
}

// nopWriteCloser wraps an io.Writer with a no-op Close.
type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// New creates a writer for format. An empty path or "-" writes to stdout.
func New(format, outputPath string) (Writer, error) {
	if _, ok := Extensions[format]; !ok {
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}

	var out io.WriteCloser
	if outputPath == "" || outputPath == "-" {
		out = nopWriteCloser{os.Stdout}
	} else {
		f, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create report file %s: %w", outputPath, err)
		}
		out = f
	}
	return newWriter(format, out), nil
}

func newWriter(format string, out io.WriteCloser) Writer {
	switch format {
	case "junit":
		return &junitWriter{out: out}
	case "json":
		return &jsonWriter{out: out}
	default:
		return &htmlWriter{out: out}
	}
}

// closeAfter closes out and returns the first of the write and close errors.
func closeAfter(out io.Closer, writeErr error) error {
	closeErr := out.Close()
	if writeErr != nil {
		return writeErr
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close report output: %w", closeErr)
	}
	return nil
}
