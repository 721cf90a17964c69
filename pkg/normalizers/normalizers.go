// Package normalizers turns names, street addresses and zip codes into tokens
// that compare equal when they refer to the same thing.
package normalizers

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/Gobusters/ectologger"
)

// Normalizer canonicalizes a raw value into a comparable token. Tokens carry
// no whitespace or punctuation and only support equality.
type Normalizer interface {
	// Name identifies the normalizer, e.g. "name" or "address".
	Name() string
	// Normalize returns "" for absent input and an *InvalidInputError for
	// values that are not strings.
	Normalize(raw any) (string, error)
}

// InvalidInputError is returned when a normalizer receives a non-string value.
type InvalidInputError struct {
	Normalizer string
	Value      any
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("normalize %s: expected string input, got %T", e.Normalizer, e.Value)
}

// SQLFunctionName is the name a normalizer is registered under in SQL.
func SQLFunctionName(n Normalizer) string {
	return "normalize_" + n.Name()
}

// asString unwraps the accepted input shapes. ok is false for absent values.
func asString(normalizer string, raw any) (s string, ok bool, err error) {
	switch v := raw.(type) {
	case nil:
		return "", false, nil
	case string:
		return v, true, nil
	case *string:
		if v == nil {
			return "", false, nil
		}
		return *v, true, nil
	case sql.NullString:
		return v.String, v.Valid, nil
	default:
		return "", false, &InvalidInputError{Normalizer: normalizer, Value: raw}
	}
}

// Option configures a normalizer.
type Option func(*options)

type options struct {
	logger ectologger.Logger
	debug  bool
}

// WithLogger sets the logger used for debug step tracing.
func WithLogger(logger ectologger.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithDebug records every intermediate step at debug level.
func WithDebug(debug bool) Option {
	return func(o *options) { o.debug = debug }
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Step is the value of an input after one normalization step.
type Step struct {
	Name  string
	Value string
}

// Explainer is implemented by normalizers that can report their steps.
type Explainer interface {
	Explain(raw any) ([]Step, error)
}

// stepTracer records the value after each normalization step. Steps are kept
// when debugging (and logged on flush) or when collecting for Explain.
type stepTracer struct {
	normalizer string
	logger     ectologger.Logger
	debug      bool
	collect    bool
	input      string
	steps      []Step
}

func (o options) tracer(normalizer, input string) *stepTracer {
	return &stepTracer{
		normalizer: normalizer,
		logger:     o.logger,
		debug:      o.debug && o.logger != nil,
		input:      input,
	}
}

func (t *stepTracer) record(step, value string) {
	if !t.debug && !t.collect {
		return
	}
	t.steps = append(t.steps, Step{Name: step, Value: value})
}

func (t *stepTracer) flush(token string) {
	if !t.debug {
		return
	}
	parts := make([]string, len(t.steps))
	for i, s := range t.steps {
		parts[i] = fmt.Sprintf("%s=%q", s.Name, s.Value)
	}
	t.logger.WithFields(map[string]any{
		"normalizer": t.normalizer,
		"input":      t.input,
		"steps":      strings.Join(parts, " "),
		"token":      token,
	}).Debug("Normalized value")
}

// DigitsOnly keeps only digit characters
func DigitsOnly(s string) string {
	var result strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// stripRunes drops every rune for which drop returns true.
func stripRunes(s string, drop func(rune) bool) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if !drop(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r)
}
