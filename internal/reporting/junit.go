package reporting

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/xkilldash9x/emojicheck/internal/evidence"
)

const junitClassName = "emojicheck.round_trip"

type junitWriter struct {
	out io.WriteCloser
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

// Write renders the report as a single JUnit test suite. Screenshots are
// attached with the [[ATTACHMENT|path]] convention CI servers understand.
func (w *junitWriter) Write(r *Report) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	passed, failed, skipped := r.Counts()
	suites := doc.CreateElement("testsuites")
	suites.CreateAttr("name", r.Title)
	suites.CreateAttr("tests", strconv.Itoa(passed+failed+skipped))
	suites.CreateAttr("failures", strconv.Itoa(failed))

	suite := suites.CreateElement("testsuite")
	suite.CreateAttr("name", metadataValue(r.Metadata, "Module", "round trip"))
	suite.CreateAttr("tests", strconv.Itoa(passed+failed+skipped))
	suite.CreateAttr("failures", strconv.Itoa(failed))
	suite.CreateAttr("errors", "0")
	suite.CreateAttr("skipped", strconv.Itoa(skipped))
	if r.Run != nil {
		suite.CreateAttr("id", r.Run.RunID)
		suite.CreateAttr("time", seconds(r.Run.Finished.Sub(r.Run.Started)))
		suite.CreateAttr("timestamp", r.Run.Started.Format("2006-01-02T15:04:05"))
	}

	props := suite.CreateElement("properties")
	for _, m := range r.Metadata {
		p := props.CreateElement("property")
		p.CreateAttr("name", m.Name)
		p.CreateAttr("value", m.Value)
	}

	for _, row := range r.Rows {
		tc := suite.CreateElement("testcase")
		tc.CreateAttr("classname", junitClassName)
		tc.CreateAttr("name", row.Name)
		tc.CreateAttr("time", seconds(row.Duration()))
		switch row.Status {
		case evidence.StatusFailed:
			f := tc.CreateElement("failure")
			f.CreateAttr("message", row.Err)
			f.CreateAttr("type", "StepFailed")
			f.SetText(row.Err)
		case evidence.StatusSkipped:
			tc.CreateElement("skipped").CreateAttr("message", "not reached after an earlier failure")
		}
		out := row.Description
		if row.Screenshot != "" {
			out += "\n[[ATTACHMENT|" + row.Screenshot + "]]"
		}
		if out != "" {
			tc.CreateElement("system-out").SetText(out)
		}
	}

	if r.Run != nil && r.Run.Err != "" {
		suite.CreateElement("system-err").SetText(r.Run.Err)
	}

	doc.Indent(2)
	if _, err := doc.WriteTo(w.out); err != nil {
		return fmt.Errorf("failed to write junit report: %w", err)
	}
	return nil
}

func (w *junitWriter) Close() error { return w.out.Close() }

func metadataValue(entries []MetadataEntry, name, fallback string) string {
	for _, e := range entries {
		if e.Name == name && e.Value != "" {
			return e.Value
		}
	}
	return fallback
}
