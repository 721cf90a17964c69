package normalizers

import (
	"regexp"
	"strings"
)

// abbreviationRule rewrites any of words, matched as a whole word, to abbr.
type abbreviationRule struct {
	words   []string
	abbr    string
	pattern *regexp.Regexp
}

func newAbbreviationRule(abbr string, words ...string) abbreviationRule {
	return abbreviationRule{
		words:   words,
		abbr:    abbr,
		pattern: regexp.MustCompile(`\b(?:` + strings.Join(words, "|") + `)\b`),
	}
}

// streetTypes is applied in order; each rule is independent.
var streetTypes = []abbreviationRule{
	newAbbreviationRule("st", "street", "str"),
	newAbbreviationRule("av", "avenue", "ave"),
	newAbbreviationRule("rd", "road"),
	newAbbreviationRule("dr", "drive"),
	newAbbreviationRule("ln", "lane"),
	newAbbreviationRule("ct", "court"),
	newAbbreviationRule("cir", "circle"),
	newAbbreviationRule("bl", "boulevard", "blvd"),
	newAbbreviationRule("pl", "place"),
	newAbbreviationRule("tr", "terrace", "ter"),
	newAbbreviationRule("hw", "highway", "hwy"),
	newAbbreviationRule("pw", "parkway", "pkwy"),
}

// unitDesignator matches a unit/suite/apartment marker and the value after it.
var unitDesignator = regexp.MustCompile(`(?:\b(?:unit|apt|apartment|suite|ste)\b\.?|#)\s*[a-z0-9-]+`)

// StreetAbbreviations returns the street-type table as word -> abbreviation.
func StreetAbbreviations() map[string]string {
	out := make(map[string]string)
	for _, rule := range streetTypes {
		for _, w := range rule.words {
			out[w] = rule.abbr
		}
	}
	return out
}

// AddressNormalizer canonicalizes a street address: lowercase, abbreviate
// street types, drop unit designators, then drop separators.
type AddressNormalizer struct {
	opts options
}

func NewAddressNormalizer(opts ...Option) *AddressNormalizer {
	return &AddressNormalizer{opts: newOptions(opts)}
}

func (n *AddressNormalizer) Name() string {
	return "address"
}

func (n *AddressNormalizer) Normalize(raw any) (string, error) {
	token, _, err := n.normalize(raw, false)
	return token, err
}

// Explain returns the value after every step; the last step holds the token.
func (n *AddressNormalizer) Explain(raw any) ([]Step, error) {
	_, steps, err := n.normalize(raw, true)
	return steps, err
}

func (n *AddressNormalizer) normalize(raw any, collect bool) (string, []Step, error) {
	s, ok, err := asString(n.Name(), raw)
	if err != nil || !ok {
		return "", nil, err
	}

	trace := n.opts.tracer(n.Name(), s)
	trace.collect = collect

	s = strings.ToLower(s)
	trace.record("lowercase", s)

	for _, rule := range streetTypes {
		s = rule.pattern.ReplaceAllString(s, rule.abbr)
	}
	trace.record("abbreviate", s)

	s = unitDesignator.ReplaceAllString(s, "")
	trace.record("unit", s)

	s = stripRunes(s, func(r rune) bool {
		switch r {
		case '.', ',', '#', '-':
			return true
		}
		return isSpace(r)
	})
	trace.record("separators", s)

	trace.flush(s)
	return s, trace.steps, nil
}
