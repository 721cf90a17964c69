package normalizers

import (
	"regexp"
	"strings"

	"github.com/sbosshardt/cure-contributors/pkg/lexicon"
)

var generationalSuffix = regexp.MustCompile(`\b(?:jr|sr|iii|ii|iv)\b`)

// NameNormalizer canonicalizes a first or last name: lowercase, resolve
// nicknames, drop generational suffixes and punctuation.
type NameNormalizer struct {
	lexicon *lexicon.Lexicon
	opts    options
}

// NewNameNormalizer builds a name normalizer over lex. A nil lexicon disables
// nickname resolution.
func NewNameNormalizer(lex *lexicon.Lexicon, opts ...Option) *NameNormalizer {
	return &NameNormalizer{lexicon: lex, opts: newOptions(opts)}
}

func (n *NameNormalizer) Name() string {
	return "name"
}

func (n *NameNormalizer) Normalize(raw any) (string, error) {
	token, _, err := n.normalize(raw, false)
	return token, err
}

// Explain returns the value after every step; the last step holds the token.
func (n *NameNormalizer) Explain(raw any) ([]Step, error) {
	_, steps, err := n.normalize(raw, true)
	return steps, err
}

func (n *NameNormalizer) normalize(raw any, collect bool) (string, []Step, error) {
	s, ok, err := asString(n.Name(), raw)
	if err != nil || !ok {
		return "", nil, err
	}

	trace := n.opts.tracer(n.Name(), s)
	trace.collect = collect

	s = strings.TrimSpace(strings.ToLower(s))
	trace.record("lowercase", s)

	if canonical, found := n.lexicon.Canonical(s); found {
		s = canonical
	}
	trace.record("nickname", s)

	s = generationalSuffix.ReplaceAllString(s, "")
	trace.record("suffix", s)

	s = stripRunes(s, func(r rune) bool {
		switch r {
		case '.', ',', '\'', '’', '-':
			return true
		}
		return isSpace(r)
	})
	trace.record("punctuation", s)

	trace.flush(s)
	return s, trace.steps, nil
}
