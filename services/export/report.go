package exportsvc

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"sync"
	"text/template"
	"time"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/trezcool/rosterdash/assets"
	"github.com/trezcool/rosterdash/core/student"
)

const reportTemplate = "templates/report/summary.md"

var (
	reportTmpl    *template.Template
	reportTmplErr error
	reportInit    sync.Once

	// tables are GitHub flavoured markdown
	mdRenderer = goldmark.New(goldmark.WithExtensions(extension.GFM))
)

// Report is what the summary report shows.
type Report struct {
	Title           string
	GeneratedAt     time.Time
	Username        string
	Total           int
	Average         float64
	AtRiskThreshold float64
	Analytics       student.Analytics
}

func NewReport(title, username string, students []student.Student, average float64) Report {
	return Report{
		Title:           title,
		GeneratedAt:     time.Now(),
		Username:        username,
		Total:           len(students),
		Average:         average,
		AtRiskThreshold: student.AtRiskThreshold,
		Analytics:       student.Derive(students, student.DefaultFilter()),
	}
}

func parseReportTemplate() {
	reportTmpl, reportTmplErr = template.ParseFS(assets.FS, reportTemplate)
	reportTmplErr = errors.Wrap(reportTmplErr, "parsing report template")
}

// WriteMarkdown renders the report as Markdown.
func WriteMarkdown(w io.Writer, rep Report) error {
	reportInit.Do(parseReportTemplate)
	if reportTmplErr != nil {
		return reportTmplErr
	}
	return errors.Wrap(reportTmpl.Execute(w, rep), "rendering report")
}

// WriteHTML renders the report as a standalone HTML page.
func WriteHTML(w io.Writer, rep Report) error {
	var md bytes.Buffer
	if err := WriteMarkdown(&md, rep); err != nil {
		return err
	}
	var body bytes.Buffer
	if err := mdRenderer.Convert(md.Bytes(), &body); err != nil {
		return errors.Wrap(err, "converting report to html")
	}

	_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>%s</title></head>
<body>
%s</body>
</html>
`, html.EscapeString(rep.Title), body.String())
	return errors.Wrap(err, "writing report")
}
