// Package report groups match pairs by voter and renders them.
package report

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/Gobusters/ectolinq"
	"github.com/shopspring/decimal"

	"github.com/sbosshardt/cure-contributors/pkg/models"
)

type voterKey struct {
	last  string
	first string
	id    string
}

func keyOf(v models.CureListVoter) voterKey {
	id := v.VoterID
	if id == "" {
		id = "#" + strconv.FormatInt(v.ID, 10)
	}
	return voterKey{last: v.LastName, first: v.FirstName, id: id}
}

// GroupByVoter collects pairs under one summary per voter, keyed by last
// name, first name and voter id. Contributions are ordered newest first with
// ties kept in match order; groups are ordered by last then first name with
// ties kept in first-appearance order.
func GroupByVoter(pairs []models.MatchPair) []models.MatchSummary {
	index := make(map[voterKey]int)
	var summaries []models.MatchSummary

	for _, pair := range pairs {
		key := keyOf(pair.Voter)
		i, ok := index[key]
		if !ok {
			i = len(summaries)
			index[key] = i
			summaries = append(summaries, models.MatchSummary{Voter: pair.Voter})
		}
		summaries[i].Contributions = append(summaries[i].Contributions, models.ContributionMatch{
			Contribution:    pair.Contribution,
			MatchIndicators: pair.MatchIndicators,
			Rules:           pair.Rules,
		})
	}

	for i := range summaries {
		slices.SortStableFunc(summaries[i].Contributions, func(a, b models.ContributionMatch) int {
			return cmp.Compare(b.Contribution.Date, a.Contribution.Date)
		})
	}

	slices.SortStableFunc(summaries, func(a, b models.MatchSummary) int {
		return cmp.Or(
			cmp.Compare(a.Voter.LastName, b.Voter.LastName),
			cmp.Compare(a.Voter.FirstName, b.Voter.FirstName),
		)
	})

	return summaries
}

// Totals summarizes a report.
type Totals struct {
	Voters        int             `json:"voters"`
	Contributions int             `json:"contributions"`
	Amount        decimal.Decimal `json:"amount"`
}

// ComputeTotals counts voters and contributions and sums the amounts.
func ComputeTotals(summaries []models.MatchSummary) Totals {
	totals := Totals{Voters: len(summaries), Amount: decimal.Zero}
	for _, s := range summaries {
		totals.Contributions += len(s.Contributions)
		amounts := ectolinq.Map(s.Contributions, func(c models.ContributionMatch) decimal.Decimal {
			return c.Contribution.Amount
		})
		totals.Amount = totals.Amount.Add(decimal.Sum(decimal.Zero, amounts...))
	}
	return totals
}

// MatchedOn names the fields that agreed for a contribution.
func MatchedOn(ind models.MatchIndicators) []string {
	var fields []string
	if ind.FirstName {
		fields = append(fields, "first name")
	}
	if ind.LastName {
		fields = append(fields, "last name")
	}
	if ind.Address {
		fields = append(fields, "address")
	}
	if ind.Zip {
		fields = append(fields, "zip")
	}
	return fields
}
