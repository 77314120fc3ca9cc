package reporting

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/xkilldash9x/emojicheck/internal/evidence"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

var htmlTemplate = template.Must(template.New("report.html.tmpl").Funcs(template.FuncMap{
	"rowColor":     func(s string) template.CSS { return template.CSS(RowColor(evidence.Status(s))) },
	"summaryTitle": func() string { return SummaryTitle },
	"counts": func(r *Report) (map[string]int, error) {
		p, f, s := r.Counts()
		return map[string]int{"passed": p, "failed": f, "skipped": s}, nil
	},
	"title": func(s evidence.Status) string {
		if s == "" {
			return ""
		}
		return strings.ToUpper(string(s[:1])) + string(s[1:])
	},
	"duration": func(start, end time.Time) string {
		return end.Sub(start).Round(time.Millisecond).String()
	},
}).ParseFS(templateFS, "templates/report.html.tmpl"))

type htmlWriter struct {
	out io.WriteCloser
}

func (w *htmlWriter) Write(r *Report) error {
	if err := htmlTemplate.Execute(w.out, r); err != nil {
		return fmt.Errorf("failed to render html report: %w", err)
	}
	return nil
}

func (w *htmlWriter) Close() error { return w.out.Close() }
