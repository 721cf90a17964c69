package lexicon

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationKind identifies the rule a lexicon entry broke.
type ValidationKind string

const (
	KindCanonicalAsVariant ValidationKind = "canonical_as_variant"
	KindDuplicateVariant   ValidationKind = "duplicate_variant"
	KindInvalidVariant     ValidationKind = "invalid_variant"
)

// ValidationError describes a single inconsistency in the table.
type ValidationError struct {
	Kind      ValidationKind
	Canonical string
	Variant   string
	Detail    string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %q under %q: %s", e.Kind, e.Variant, e.Canonical, e.Detail)
}

// LexiconValidationError aggregates every violation found by Validate.
type LexiconValidationError struct {
	Errors []ValidationError
}

func (e *LexiconValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, v := range e.Errors {
		msgs[i] = v.Error()
	}
	return fmt.Sprintf("nickname lexicon has %d violation(s): %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Validate checks the lexicon for internal consistency:
//   - no canonical name appears as a variant, under itself or another entry
//   - no variant is listed under two canonical names
//   - every variant is non-empty and lowercase
func (l *Lexicon) Validate() []ValidationError {
	if l == nil {
		return nil
	}

	var errs []ValidationError
	isCanonical := make(map[string]bool, len(l.entries))
	for _, e := range l.entries {
		isCanonical[e.Canonical] = true
	}

	owners := make(map[string][]string)
	for _, e := range l.entries {
		for _, v := range e.Variants {
			switch {
			case strings.TrimSpace(v) == "":
				errs = append(errs, ValidationError{
					Kind: KindInvalidVariant, Canonical: e.Canonical, Variant: v,
					Detail: "variant is empty",
				})
				continue
			case v != strings.ToLower(v):
				errs = append(errs, ValidationError{
					Kind: KindInvalidVariant, Canonical: e.Canonical, Variant: v,
					Detail: "variant is not lowercase",
				})
			}
			if isCanonical[v] {
				detail := "canonical name listed as a variant"
				if v == e.Canonical {
					detail = "canonical name listed as its own variant"
				}
				errs = append(errs, ValidationError{
					Kind: KindCanonicalAsVariant, Canonical: e.Canonical, Variant: v,
					Detail: detail,
				})
			}
			owners[v] = append(owners[v], e.Canonical)
		}
	}

	variants := make([]string, 0, len(owners))
	for v := range owners {
		variants = append(variants, v)
	}
	sort.Strings(variants)
	for _, v := range variants {
		if names := owners[v]; len(names) > 1 {
			errs = append(errs, ValidationError{
				Kind: KindDuplicateVariant, Canonical: names[0], Variant: v,
				Detail: "also listed under " + strings.Join(names[1:], ", "),
			})
		}
	}
	return errs
}

// Check returns a *LexiconValidationError when Validate finds violations.
func (l *Lexicon) Check() error {
	if errs := l.Validate(); len(errs) > 0 {
		return &LexiconValidationError{Errors: errs}
	}
	return nil
}
