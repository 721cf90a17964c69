package report

import (
	"embed"
	"html/template"
	"io"
	"strings"

	"github.com/sbosshardt/cure-contributors/pkg/models"
)

//go:embed templates/report.html.tmpl
var templates embed.FS

// HTMLRenderer writes a standalone HTML document. Every voter and
// contribution field is escaped by html/template.
type HTMLRenderer struct {
	tmpl *template.Template
}

func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.New("report.html.tmpl").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
		"matchedOn": func(ind models.MatchIndicators) string {
			return strings.Join(MatchedOn(ind), ", ")
		},
	}).ParseFS(templates, "templates/report.html.tmpl")
	if err != nil {
		return nil, err
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

func (r *HTMLRenderer) Render(w io.Writer, summaries []models.MatchSummary) error {
	return r.tmpl.Execute(w, struct {
		Matches []models.MatchSummary
		Totals  Totals
	}{
		Matches: summaries,
		Totals:  ComputeTotals(summaries),
	})
}
