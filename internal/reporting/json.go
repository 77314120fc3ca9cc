package reporting

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type jsonWriter struct {
	out io.WriteCloser
}

func (w *jsonWriter) Write(r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode json report: %w", err)
	}
	if _, err := w.out.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write json report: %w", err)
	}
	return nil
}

func (w *jsonWriter) Close() error { return w.out.Close() }
