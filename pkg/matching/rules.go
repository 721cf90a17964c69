package matching

import (
	"fmt"
	"strings"

	"github.com/Gobusters/ectolinq"

	"github.com/sbosshardt/cure-contributors/internal/repositories/match"
	"github.com/sbosshardt/cure-contributors/pkg/models"
)

// Rule is one admission rule of the match policy.
type Rule string

const (
	// RuleAddressPartialName admits a pair whose addresses are equivalent and
	// whose first or last names are equivalent.
	RuleAddressPartialName Rule = "address_partial_name"
	// RuleFullName admits a pair whose first and last names are both equivalent.
	RuleFullName Rule = "full_name"
	// RuleNameZip admits a pair with equivalent first and last names and the
	// same zip code.
	RuleNameZip Rule = "name_zip"
)

// Rules is the closed set of supported rules.
var Rules = []Rule{RuleAddressPartialName, RuleFullName, RuleNameZip}

// ParseRule validates a configured rule name.
func ParseRule(name string) (Rule, error) {
	rule := Rule(strings.ToLower(strings.TrimSpace(name)))
	if !ectolinq.Contains(Rules, rule) {
		return "", fmt.Errorf("unknown match rule %q", name)
	}
	return rule, nil
}

// Admits reports whether the rule accepts a pair with these indicators.
func (r Rule) Admits(ind models.MatchIndicators) bool {
	switch r {
	case RuleAddressPartialName:
		return ind.Address && (ind.FirstName || ind.LastName)
	case RuleFullName:
		return ind.FirstName && ind.LastName
	case RuleNameZip:
		return ind.FirstName && ind.LastName && ind.Zip
	}
	return false
}

// SQL renders the rule over the indicator columns of the match query.
func (r Rule) SQL() string {
	switch r {
	case RuleAddressPartialName:
		return fmt.Sprintf("(%s AND (%s OR %s))", match.AddressMatch, match.FirstNameMatch, match.LastNameMatch)
	case RuleFullName:
		return fmt.Sprintf("(%s AND %s)", match.FirstNameMatch, match.LastNameMatch)
	case RuleNameZip:
		return fmt.Sprintf("(%s AND %s AND %s)", match.FirstNameMatch, match.LastNameMatch, match.ZipMatch)
	}
	return "0"
}

// Policy decides which pairs are reported: a pair is admitted when any rule
// admits it and, with RequireZip, its zip codes are equal.
type Policy struct {
	Rules      []Rule
	RequireZip bool
}

// DefaultPolicy admits pairs by address plus partial name or by full name.
func DefaultPolicy() Policy {
	return Policy{Rules: []Rule{RuleAddressPartialName, RuleFullName}}
}

// NewPolicy builds a policy from configured rule names. Duplicates are
// collapsed; at least one rule is required.
func NewPolicy(names []string, requireZip bool) (Policy, error) {
	policy := Policy{RequireZip: requireZip}
	for _, name := range names {
		rule, err := ParseRule(name)
		if err != nil {
			return Policy{}, err
		}
		if !ectolinq.Contains(policy.Rules, rule) {
			policy.Rules = append(policy.Rules, rule)
		}
	}
	if len(policy.Rules) == 0 {
		return Policy{}, fmt.Errorf("match policy needs at least one rule")
	}
	return policy, nil
}

// Admit returns the names of the rules admitting ind, or false when the pair
// is not reported.
func (p Policy) Admit(ind models.MatchIndicators) ([]string, bool) {
	if p.RequireZip && !ind.Zip {
		return nil, false
	}
	var admitted []string
	for _, rule := range p.Rules {
		if rule.Admits(ind) {
			admitted = append(admitted, string(rule))
		}
	}
	return admitted, len(admitted) > 0
}

// SQL renders the policy as a predicate for the match query.
func (p Policy) SQL() string {
	clauses := ectolinq.Map(p.Rules, func(r Rule) string { return r.SQL() })
	predicate := "(" + strings.Join(clauses, " OR ") + ")"
	if len(clauses) == 0 {
		predicate = "0"
	}
	if p.RequireZip {
		predicate = fmt.Sprintf("%s AND %s", match.ZipMatch, predicate)
	}
	return predicate
}

func (p Policy) String() string {
	names := ectolinq.Map(p.Rules, func(r Rule) string { return string(r) })
	s := strings.Join(names, " OR ")
	if p.RequireZip {
		s += " (zip required)"
	}
	return s
}
