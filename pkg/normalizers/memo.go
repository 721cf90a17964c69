package normalizers

import (
	"github.com/Gobusters/ectologger"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemoSize bounds the number of cached tokens per normalizer.
const DefaultMemoSize = 100_000

// Memoized caches the token for every distinct string input. Normalization is
// pure given a fixed lexicon, so a cached token is always current.
type Memoized struct {
	inner Normalizer
	cache *lru.Cache[string, string]
}

func NewMemoized(inner Normalizer, size int) (*Memoized, error) {
	if size <= 0 {
		size = DefaultMemoSize
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &Memoized{inner: inner, cache: cache}, nil
}

func (m *Memoized) Name() string {
	return m.inner.Name()
}

func (m *Memoized) Normalize(raw any) (string, error) {
	s, ok := raw.(string)
	if !ok {
		return m.inner.Normalize(raw)
	}
	if token, hit := m.cache.Get(s); hit {
		return token, nil
	}
	token, err := m.inner.Normalize(s)
	if err != nil {
		return "", err
	}
	m.cache.Add(s, token)
	return token, nil
}

// Len is the number of cached entries.
func (m *Memoized) Len() int {
	return m.cache.Len()
}

// Lenient never fails: input the inner normalizer rejects degrades to the
// empty token, which matches nothing, and the failure is logged.
type Lenient struct {
	inner  Normalizer
	logger ectologger.Logger
}

func NewLenient(inner Normalizer, logger ectologger.Logger) *Lenient {
	return &Lenient{inner: inner, logger: logger}
}

func (l *Lenient) Name() string {
	return l.inner.Name()
}

func (l *Lenient) Normalize(raw any) (string, error) {
	return l.Token(raw), nil
}

// Token normalizes raw, returning "" on failure.
func (l *Lenient) Token(raw any) string {
	token, err := l.inner.Normalize(raw)
	if err != nil {
		if l.logger != nil {
			l.logger.WithError(err).WithFields(map[string]any{
				"normalizer": l.inner.Name(),
			}).Warn("Normalization failed, using empty token")
		}
		return ""
	}
	return token
}
