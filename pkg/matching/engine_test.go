package matching

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbosshardt/cure-contributors/internal/testutil"
	"github.com/sbosshardt/cure-contributors/pkg/lexicon"
	"github.com/sbosshardt/cure-contributors/pkg/models"
)

func newTestEngine(t *testing.T, policy Policy) *Engine {
	t.Helper()
	tokenizers, err := NewTokenizers(TokenizerConfig{Lexicon: lexicon.Default(), MemoSize: 128}, testutil.Logger())
	require.NoError(t, err)
	return NewEngine(testutil.Logger(), tokenizers, policy)
}

func TestEngine_FindMatches(t *testing.T) {
	tests := []struct {
		name         string
		voter        models.CureListVoter
		contribution models.ContributionRecord
		matched      bool
		indicators   models.MatchIndicators
		rules        []string
	}{
		{
			name:         "rule A address and first name",
			voter:        models.CureListVoter{ID: 1, FirstName: "Robert", LastName: "Smith", MailedTo: "123 Main St"},
			contribution: models.ContributionRecord{ID: 1, FirstName: "Bob", LastName: "Jones", Street: "123 Main Street"},
			matched:      true,
			indicators:   models.MatchIndicators{Address: true, FirstName: true},
			rules:        []string{"address_partial_name"},
		},
		{
			name:         "rule B full name",
			voter:        models.CureListVoter{ID: 1, FirstName: "Elizabeth", LastName: "Jones"},
			contribution: models.ContributionRecord{ID: 1, FirstName: "Liz", LastName: "Jones", Street: "999 Other Rd"},
			matched:      true,
			indicators:   models.MatchIndicators{FirstName: true, LastName: true},
			rules:        []string{"full_name"},
		},
		{
			name:         "zip alone never matches",
			voter:        models.CureListVoter{ID: 1, FirstName: "John", LastName: "Smith", ZipCode: "10001"},
			contribution: models.ContributionRecord{ID: 1, FirstName: "Jon", LastName: "Doe", Zip: "10001"},
			matched:      false,
		},
		{
			name:         "address alone never matches",
			voter:        models.CureListVoter{ID: 1, FirstName: "Ann", LastName: "Lee", MailedTo: "5 Oak Ln"},
			contribution: models.ContributionRecord{ID: 1, FirstName: "Mark", LastName: "Ray", Street: "5 Oak Lane"},
			matched:      false,
		},
		{
			name:         "empty names never match",
			voter:        models.CureListVoter{ID: 1, MailedTo: "5 Oak Ln"},
			contribution: models.ContributionRecord{ID: 1, Street: "5 Oak Lane"},
			matched:      false,
		},
		{
			name:         "both rules reported once",
			voter:        models.CureListVoter{ID: 1, FirstName: "William", LastName: "Brown", MailedTo: "7 Pine Dr", ZipCode: "02134"},
			contribution: models.ContributionRecord{ID: 1, FirstName: "Bill", LastName: "Brown", Street: "7 Pine Drive", Zip: "02134"},
			matched:      true,
			indicators:   models.MatchIndicators{Address: true, Zip: true, FirstName: true, LastName: true},
			rules:        []string{"address_partial_name", "full_name"},
		},
	}

	engine := newTestEngine(t, DefaultPolicy())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pairs := engine.FindMatches(context.Background(), []models.CureListVoter{tt.voter}, []models.ContributionRecord{tt.contribution})
			if !tt.matched {
				assert.Empty(t, pairs)
				return
			}
			require.Len(t, pairs, 1)
			assert.Equal(t, tt.indicators, pairs[0].MatchIndicators)
			assert.Equal(t, tt.rules, pairs[0].Rules)
		})
	}
}

func TestEngine_IsSymmetric(t *testing.T) {
	engine := newTestEngine(t, DefaultPolicy())

	// the same people on either side of the join
	voter := models.CureListVoter{ID: 1, FirstName: "Bob", LastName: "Smith", MailedTo: "1 Elm Street"}
	contribution := models.ContributionRecord{ID: 1, FirstName: "Robert", LastName: "Smith", Street: "1 Elm St"}
	flippedVoter := models.CureListVoter{ID: 1, FirstName: "Robert", LastName: "Smith", MailedTo: "1 Elm St"}
	flippedContribution := models.ContributionRecord{ID: 1, FirstName: "Bob", LastName: "Smith", Street: "1 Elm Street"}

	a := engine.FindMatches(context.Background(), []models.CureListVoter{voter}, []models.ContributionRecord{contribution})
	b := engine.FindMatches(context.Background(), []models.CureListVoter{flippedVoter}, []models.ContributionRecord{flippedContribution})
	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.Equal(t, a[0].MatchIndicators, b[0].MatchIndicators)
}

func TestEngine_Ordering(t *testing.T) {
	engine := newTestEngine(t, DefaultPolicy())

	voters := []models.CureListVoter{
		{ID: 1, FirstName: "Zoe", LastName: "Young"},
		{ID: 2, FirstName: "Adam", LastName: "Able"},
	}
	contributions := []models.ContributionRecord{
		{ID: 10, FirstName: "Adam", LastName: "Able", Date: "2023-01-01"},
		{ID: 11, FirstName: "Zoe", LastName: "Young", Date: "2024-01-01"},
		{ID: 12, FirstName: "Adam", LastName: "Able", Date: "2024-06-01"},
		{ID: 13, FirstName: "Adam", LastName: "Able", Date: "2024-06-01"},
	}

	pairs := engine.FindMatches(context.Background(), voters, contributions)
	require.Len(t, pairs, 4)

	got := make([]int64, len(pairs))
	for i, p := range pairs {
		got[i] = p.Contribution.ID
	}
	assert.Equal(t, []int64{12, 13, 10, 11}, got)
}

func TestEngine_RequireZip(t *testing.T) {
	engine := newTestEngine(t, Policy{Rules: []Rule{RuleFullName}, RequireZip: true})

	voters := []models.CureListVoter{{ID: 1, FirstName: "Ann", LastName: "Lee", ZipCode: "10001"}}
	contributions := []models.ContributionRecord{
		{ID: 1, FirstName: "Ann", LastName: "Lee", Zip: "10001"},
		{ID: 2, FirstName: "Ann", LastName: "Lee", Zip: "10002"},
		{ID: 3, FirstName: "Ann", LastName: "Lee"},
	}

	pairs := engine.FindMatches(context.Background(), voters, contributions)
	require.Len(t, pairs, 1)
	assert.Equal(t, int64(1), pairs[0].Contribution.ID)
}
