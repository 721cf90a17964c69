package matching

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbosshardt/cure-contributors/internal/repositories/contribution"
	"github.com/sbosshardt/cure-contributors/internal/repositories/curelistvoter"
	"github.com/sbosshardt/cure-contributors/internal/repositories/match"
	"github.com/sbosshardt/cure-contributors/internal/testutil"
	"github.com/sbosshardt/cure-contributors/pkg/lexicon"
	"github.com/sbosshardt/cure-contributors/pkg/models"
)

type pairKey struct {
	voterID        int64
	contributionID int64
	indicators     models.MatchIndicators
	rules          string
}

func keys(pairs []models.MatchPair) []pairKey {
	out := make([]pairKey, len(pairs))
	for i, p := range pairs {
		out[i] = pairKey{p.Voter.ID, p.Contribution.ID, p.MatchIndicators, fmt.Sprint(p.Rules)}
	}
	return out
}

func TestService_StrategiesAgree(t *testing.T) {
	ctx := context.Background()
	conn := testutil.NewDB(t)
	logger := testutil.Logger()

	tokenizers, err := NewTokenizers(TokenizerConfig{Lexicon: lexicon.Default()}, logger)
	require.NoError(t, err)
	tokenizers.Register()

	voterRepo := curelistvoter.NewRepository(conn, logger)
	contributionRepo := contribution.NewRepository(conn, logger)
	matchRepo := match.NewRepository(conn, logger)

	require.NoError(t, voterRepo.InsertBatch(ctx, []models.CureListVoter{
		{VoterID: "V1", FirstName: "Robert", LastName: "Smith", MailedTo: "123 Main St", ZipCode: "62701"},
		{VoterID: "V2", FirstName: "Elizabeth", LastName: "Jones", MailedTo: "4 Oak Ct", ZipCode: "62702"},
		{VoterID: "V3", FirstName: "John", LastName: "Smith", ZipCode: "10001"},
		{VoterID: "V4", FirstName: "Mary", LastName: "O'Neil", MailedTo: "77 Lake Boulevard Unit 3"},
	}))
	require.NoError(t, contributionRepo.InsertBatch(ctx, []models.ContributionRecord{
		{FirstName: "Bob", LastName: "Jones", Street: "123 Main Street", Date: "2024-01-01", Amount: decimal.NewFromInt(5)},
		{FirstName: "Liz", LastName: "Jones", Street: "999 Other Rd", Date: "2024-02-01", Amount: decimal.NewFromInt(6)},
		{FirstName: "Jon", LastName: "Doe", Zip: "10001", Date: "2024-03-01", Amount: decimal.NewFromInt(7)},
		{FirstName: "Molly", LastName: "ONeil", Street: "77 Lake Blvd", Date: "2023-12-31", Amount: decimal.NewFromInt(8)},
		{FirstName: "Robert", LastName: "Smith", Street: "", Zip: "62701", Date: "2024-01-01", Amount: decimal.NewFromInt(9)},
		{FirstName: "", LastName: "", Street: "", Date: "", Amount: decimal.Zero},
	}))

	for _, policy := range []Policy{
		DefaultPolicy(),
		{Rules: []Rule{RuleFullName}},
		{Rules: []Rule{RuleNameZip}},
		{Rules: []Rule{RuleAddressPartialName, RuleFullName}, RequireZip: true},
	} {
		t.Run(policy.String(), func(t *testing.T) {
			sqlService := NewService(logger, matchRepo, voterRepo, contributionRepo, tokenizers, Config{Strategy: StrategySQL, Policy: policy})
			memoryService := NewService(logger, matchRepo, voterRepo, contributionRepo, tokenizers, Config{Strategy: StrategyMemory, Policy: policy})

			fromSQL, err := sqlService.FindMatches(ctx)
			require.NoError(t, err)
			fromMemory, err := memoryService.FindMatches(ctx)
			require.NoError(t, err)

			assert.Equal(t, keys(fromMemory), keys(fromSQL))
		})
	}

	t.Run("default policy pairs", func(t *testing.T) {
		pairs, err := NewService(logger, matchRepo, voterRepo, contributionRepo, tokenizers, DefaultConfig()).FindMatches(ctx)
		require.NoError(t, err)

		got := make([]string, len(pairs))
		for i, p := range pairs {
			got[i] = fmt.Sprintf("%s/%d", p.Voter.VoterID, p.Contribution.ID)
		}
		// Jones (V2): Liz. O'Neil (V4): Molly at the same address. Smith (V1): Bob at the same address, then Robert.
		assert.Equal(t, []string{"V2/2", "V4/4", "V1/1", "V1/5"}, got)
	})
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategySQL, s)

	s, err = ParseStrategy("memory")
	require.NoError(t, err)
	assert.Equal(t, StrategyMemory, s)

	_, err = ParseStrategy("graph")
	require.Error(t, err)
}
