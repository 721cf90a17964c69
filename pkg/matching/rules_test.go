package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbosshardt/cure-contributors/pkg/models"
)

func TestRule_Admits(t *testing.T) {
	tests := []struct {
		name     string
		ind      models.MatchIndicators
		expected map[Rule]bool
	}{
		{
			name:     "address and first name",
			ind:      models.MatchIndicators{Address: true, FirstName: true},
			expected: map[Rule]bool{RuleAddressPartialName: true, RuleFullName: false, RuleNameZip: false},
		},
		{
			name:     "address only",
			ind:      models.MatchIndicators{Address: true, Zip: true},
			expected: map[Rule]bool{RuleAddressPartialName: false, RuleFullName: false, RuleNameZip: false},
		},
		{
			name:     "full name",
			ind:      models.MatchIndicators{FirstName: true, LastName: true},
			expected: map[Rule]bool{RuleAddressPartialName: false, RuleFullName: true, RuleNameZip: false},
		},
		{
			name:     "full name and zip",
			ind:      models.MatchIndicators{FirstName: true, LastName: true, Zip: true},
			expected: map[Rule]bool{RuleAddressPartialName: false, RuleFullName: true, RuleNameZip: true},
		},
		{
			name:     "zip only",
			ind:      models.MatchIndicators{Zip: true},
			expected: map[Rule]bool{RuleAddressPartialName: false, RuleFullName: false, RuleNameZip: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for rule, want := range tt.expected {
				assert.Equal(t, want, rule.Admits(tt.ind), string(rule))
			}
		})
	}
}

func TestParseRule(t *testing.T) {
	rule, err := ParseRule(" Full_Name ")
	require.NoError(t, err)
	assert.Equal(t, RuleFullName, rule)

	_, err = ParseRule("soundex")
	require.Error(t, err)
}

func TestNewPolicy(t *testing.T) {
	policy, err := NewPolicy([]string{"full_name", "address_partial_name", "full_name"}, true)
	require.NoError(t, err)
	assert.Equal(t, []Rule{RuleFullName, RuleAddressPartialName}, policy.Rules)
	assert.True(t, policy.RequireZip)

	_, err = NewPolicy(nil, false)
	require.Error(t, err)

	_, err = NewPolicy([]string{"full_name", "bogus"}, false)
	require.Error(t, err)
}

func TestPolicy_Admit(t *testing.T) {
	policy := DefaultPolicy()

	rules, ok := policy.Admit(models.MatchIndicators{Address: true, FirstName: true, LastName: true})
	require.True(t, ok)
	assert.Equal(t, []string{"address_partial_name", "full_name"}, rules)

	_, ok = policy.Admit(models.MatchIndicators{Zip: true, FirstName: true})
	assert.False(t, ok)

	policy.RequireZip = true
	_, ok = policy.Admit(models.MatchIndicators{FirstName: true, LastName: true})
	assert.False(t, ok, "zip required")

	rules, ok = policy.Admit(models.MatchIndicators{FirstName: true, LastName: true, Zip: true})
	require.True(t, ok)
	assert.Equal(t, []string{"full_name"}, rules)
}

func TestPolicy_SQL(t *testing.T) {
	assert.Equal(t,
		"((address_match AND (first_name_match OR last_name_match)) OR (first_name_match AND last_name_match))",
		DefaultPolicy().SQL(),
	)

	policy := Policy{Rules: []Rule{RuleNameZip}, RequireZip: true}
	assert.Equal(t, "zip_match AND ((first_name_match AND last_name_match AND zip_match))", policy.SQL())
	assert.Equal(t, "name_zip (zip required)", policy.String())
}
