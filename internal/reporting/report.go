package reporting

import (
	"path/filepath"
	"time"

	"github.com/xkilldash9x/emojicheck/internal/evidence"
)

const (
	Title        = "✨ Emoji Encoder Automation Test Report"
	SummaryTitle = "🎯 Project Summary"
)

// SummaryText is the paragraph shown under the summary heading.
var SummaryText = []string{
	"This report validates the encode/decode flow on the Emoji Encoder web app.",
	"All actions are logged and screenshots are captured automatically for every step.",
}

// Columns of the results table, in order.
var Columns = []string{"Result", "Step", "Description", "Duration", "Screenshot", "Error"}

// RowColors maps a step status to its row background. Unknown statuses use
// the skipped colour.
var RowColors = map[evidence.Status]string{
	evidence.StatusPassed:  "#e8f5e9",
	evidence.StatusFailed:  "#ffebee",
	evidence.StatusSkipped: "#fffde7",
}

// RowColor returns the background for a status.
func RowColor(s evidence.Status) string {
	if c, ok := RowColors[s]; ok {
		return c
	}
	return RowColors[evidence.StatusSkipped]
}

// Metadata describes who ran what. It is shown once at the top of a report.
type Metadata struct {
	ProjectName   string
	Module        string
	Tester        string
	Browser       string
	ExecutionTime time.Time
}

// MetadataEntry is one labelled metadata value.
type MetadataEntry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Entries returns the metadata as ordered labelled values.
func (m Metadata) Entries() []MetadataEntry {
	return []MetadataEntry{
		{"Project Name", m.ProjectName},
		{"Module", m.Module},
		{"Tester", m.Tester},
		{"Browser", m.Browser},
		{"Execution Time", m.ExecutionTime.Format("2006-01-02 15:04:05")},
	}
}

// Row is one results table line. Screenshot and Thumbnail are relative to
// the directory the report is written to.
type Row struct {
	evidence.StepOutcome
	Screenshot string `json:"screenshot,omitempty"`
	Thumbnail  string `json:"thumbnail,omitempty"`
}

// Report is the format independent content every Writer renders.
type Report struct {
	Title     string               `json:"title"`
	Metadata  []MetadataEntry      `json:"metadata"`
	Summary   []string             `json:"summary"`
	Columns   []string             `json:"columns"`
	Rows      []Row                `json:"steps"`
	Run       *evidence.RunSummary `json:"run,omitempty"`
	Generated time.Time            `json:"generated"`
}

// Counts tallies the rows by status.
func (r *Report) Counts() (passed, failed, skipped int) {
	for _, row := range r.Rows {
		switch row.Status {
		case evidence.StatusPassed:
			passed++
		case evidence.StatusFailed:
			failed++
		default:
			skipped++
		}
	}
	return passed, failed, skipped
}

// Passed reports whether the run finished successfully.
func (r *Report) Passed() bool {
	if r.Run != nil {
		return r.Run.Succeeded()
	}
	_, failed, _ := r.Counts()
	return failed == 0
}

// relativeTo rewrites p relative to dir when both resolve to absolute paths.
// Paths that cannot be made relative are returned unchanged.
func relativeTo(dir, p string) string {
	if p == "" {
		return ""
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return filepath.ToSlash(p)
	}
	absP, err := filepath.Abs(p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	rel, err := filepath.Rel(absDir, absP)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}
