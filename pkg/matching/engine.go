// Package matching pairs cure-list voters with campaign contributions whose
// normalized names and addresses agree under a configurable policy.
package matching

import (
	"cmp"
	"context"
	"slices"

	"github.com/Gobusters/ectologger"

	"github.com/sbosshardt/cure-contributors/pkg/models"
	"github.com/sbosshardt/cure-contributors/pkg/tracing"
)

// Engine is the in-memory match strategy.
type Engine struct {
	logger     ectologger.Logger
	tokenizers *Tokenizers
	policy     Policy
}

// NewEngine creates a new match engine
func NewEngine(logger ectologger.Logger, tokenizers *Tokenizers, policy Policy) *Engine {
	return &Engine{
		logger:     logger,
		tokenizers: tokenizers,
		policy:     policy,
	}
}

type tokens struct {
	first   string
	last    string
	address string
	zip     string
}

// FindMatches returns every voter/contribution pair the policy admits, each
// pair once, ordered like the SQL strategy.
func (e *Engine) FindMatches(ctx context.Context, voters []models.CureListVoter, contributions []models.ContributionRecord) []models.MatchPair {
	ctx, span := tracing.StartSpan(ctx, "matching.Engine.FindMatches")
	defer span.End()

	contributionTokens := make([]tokens, len(contributions))
	byAddress := make(map[string][]int)
	byLast := make(map[string][]int)
	for i, c := range contributions {
		tk := tokens{
			first:   e.tokenizers.token(e.tokenizers.Name, c.FirstName),
			last:    e.tokenizers.token(e.tokenizers.Name, c.LastName),
			address: e.tokenizers.token(e.tokenizers.Address, c.Street),
			zip:     c.Zip,
		}
		contributionTokens[i] = tk
		if tk.address != "" {
			byAddress[tk.address] = append(byAddress[tk.address], i)
		}
		if tk.last != "" {
			byLast[tk.last] = append(byLast[tk.last], i)
		}
	}

	var pairs []models.MatchPair
	for _, v := range voters {
		vt := tokens{
			first:   e.tokenizers.token(e.tokenizers.Name, v.FirstName),
			last:    e.tokenizers.token(e.tokenizers.Name, v.LastName),
			address: e.tokenizers.token(e.tokenizers.Address, v.MailedTo),
			zip:     v.ZipCode,
		}

		// every rule needs equal addresses or equal last names
		seen := make(map[int]bool)
		for _, i := range slices.Concat(byAddress[vt.address], byLast[vt.last]) {
			if seen[i] {
				continue
			}
			seen[i] = true

			ind := indicators(vt, contributionTokens[i])
			rules, ok := e.policy.Admit(ind)
			if !ok {
				continue
			}
			pairs = append(pairs, models.MatchPair{
				Voter:           v,
				Contribution:    contributions[i],
				MatchIndicators: ind,
				Rules:           rules,
			})
		}
	}

	SortPairs(pairs)

	e.logger.WithContext(ctx).WithFields(map[string]any{
		"voters":        len(voters),
		"contributions": len(contributions),
		"matches":       len(pairs),
	}).Debug("Matched in memory")

	return pairs
}

func indicators(v, c tokens) models.MatchIndicators {
	return models.MatchIndicators{
		Address:   equalTokens(v.address, c.address),
		Zip:       equalTokens(v.zip, c.zip),
		FirstName: equalTokens(v.first, c.first),
		LastName:  equalTokens(v.last, c.last),
	}
}

// equalTokens never treats empty tokens as equal.
func equalTokens(a, b string) bool {
	return a != "" && a == b
}

// SortPairs orders pairs by voter last name, first name and id, then by
// contribution date (newest first) and contribution id.
func SortPairs(pairs []models.MatchPair) {
	slices.SortStableFunc(pairs, func(a, b models.MatchPair) int {
		return cmp.Or(
			cmp.Compare(a.Voter.LastName, b.Voter.LastName),
			cmp.Compare(a.Voter.FirstName, b.Voter.FirstName),
			cmp.Compare(a.Voter.ID, b.Voter.ID),
			cmp.Compare(b.Contribution.Date, a.Contribution.Date),
			cmp.Compare(a.Contribution.ID, b.Contribution.ID),
		)
	})
}
