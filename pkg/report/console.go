package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/sbosshardt/cure-contributors/pkg/models"
)

const (
	ruleWidth  = 50
	labelWidth = 16
)

// ConsoleRenderer writes the plain-text report: one "Match #n" section per
// voter followed by a totals footer.
type ConsoleRenderer struct{}

func (r *ConsoleRenderer) Render(w io.Writer, summaries []models.MatchSummary) error {
	bw := bufio.NewWriter(w)
	heavy := strings.Repeat("=", ruleWidth)
	light := strings.Repeat("-", 20)

	for i, summary := range summaries {
		v := summary.Voter
		fmt.Fprintf(bw, "\n%s\nMatch #%d\n%s\n", heavy, i+1, heavy)

		fmt.Fprintf(bw, "\nCure List Voter:\n%s\n", light)
		field(bw, "Last Name", v.LastName)
		field(bw, "First Name", v.FirstName)
		field(bw, "Zip Code", v.ZipCode)
		field(bw, "Party", v.Party)
		field(bw, "Full Name", v.DisplayName())
		field(bw, "Street Address", v.MailedTo)
		field(bw, "Voter ID", v.VoterID)

		fmt.Fprintf(bw, "\nFEC Contributions:\n%s\n", light)
		for j, m := range summary.Contributions {
			c := m.Contribution
			if j > 0 {
				fmt.Fprintln(bw, strings.Repeat("-", 10))
			}
			field(bw, "Full Name", c.ContributorName())
			field(bw, "Street Address", c.Street)
			field(bw, "Committee", c.CommitteeName)
			field(bw, "Date", c.Date)
			field(bw, "Amount", "$"+c.AmountText())
			field(bw, "Employer", c.Employer)
			field(bw, "Occupation", c.Occupation)
			field(bw, "Transaction ID", c.TransactionID)
			field(bw, "Matched On", strings.Join(MatchedOn(m.MatchIndicators), ", "))
		}
	}

	totals := ComputeTotals(summaries)
	fmt.Fprintf(bw, "\n%s\n", heavy)
	fmt.Fprintf(bw, "Total Voters Found: %d\n", totals.Voters)
	fmt.Fprintf(bw, "Total Contributions: %d\n", totals.Contributions)
	fmt.Fprintf(bw, "Total Amount: $%s\n", totals.Amount.StringFixed(2))
	fmt.Fprintf(bw, "%s\n", heavy)

	return bw.Flush()
}

// field writes "Label:   value" with values aligned by display width.
func field(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%s%s\n", runewidth.FillRight(label+":", labelWidth), value)
}
