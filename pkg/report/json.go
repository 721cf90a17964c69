package report

import (
	"encoding/json"
	"io"

	"github.com/sbosshardt/cure-contributors/pkg/models"
)

// JSONRenderer writes the summaries and totals as one JSON document.
type JSONRenderer struct {
	Indent string
}

type jsonReport struct {
	Matches []models.MatchSummary `json:"matches"`
	Totals  Totals                `json:"totals"`
}

func (r *JSONRenderer) Render(w io.Writer, summaries []models.MatchSummary) error {
	if summaries == nil {
		summaries = []models.MatchSummary{}
	}
	enc := json.NewEncoder(w)
	if r.Indent != "" {
		enc.SetIndent("", r.Indent)
	}
	return enc.Encode(jsonReport{Matches: summaries, Totals: ComputeTotals(summaries)})
}
