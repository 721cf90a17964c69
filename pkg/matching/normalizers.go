package matching

import (
	"github.com/Gobusters/ectologger"

	"github.com/sbosshardt/cure-contributors/internal/repositories/match"
	"github.com/sbosshardt/cure-contributors/pkg/database"
	"github.com/sbosshardt/cure-contributors/pkg/lexicon"
	"github.com/sbosshardt/cure-contributors/pkg/normalizers"
)

// Tokenizers holds the normalizers both strategies compare with. Each is
// memoized for the run and lenient: a value that cannot be normalized
// becomes the empty token and is logged.
type Tokenizers struct {
	Name    normalizers.Normalizer
	Address normalizers.Normalizer
	Zip     normalizers.Normalizer
}

// TokenizerConfig configures NewTokenizers.
type TokenizerConfig struct {
	Lexicon  *lexicon.Lexicon
	MemoSize int
	Debug    bool
}

// NewTokenizers builds memoized, lenient name, address and zip normalizers.
func NewTokenizers(cfg TokenizerConfig, logger ectologger.Logger) (*Tokenizers, error) {
	lex := cfg.Lexicon
	if lex == nil {
		lex = lexicon.Default()
	}
	opts := []normalizers.Option{normalizers.WithLogger(logger), normalizers.WithDebug(cfg.Debug)}

	wrap := func(n normalizers.Normalizer) (normalizers.Normalizer, error) {
		return normalizers.NewMemoized(normalizers.NewLenient(n, logger), cfg.MemoSize)
	}

	name, err := wrap(normalizers.NewNameNormalizer(lex, opts...))
	if err != nil {
		return nil, err
	}
	address, err := wrap(normalizers.NewAddressNormalizer(opts...))
	if err != nil {
		return nil, err
	}
	zip, err := wrap(normalizers.ZipNormalizer{})
	if err != nil {
		return nil, err
	}

	return &Tokenizers{Name: name, Address: address, Zip: zip}, nil
}

// Register exposes the tokenizers as SQL functions for connections opened
// afterwards.
func (t *Tokenizers) Register() {
	database.RegisterFunction(match.NameFunction, t.Name.Normalize)
	database.RegisterFunction(match.AddressFunction, t.Address.Normalize)
	database.RegisterFunction(normalizers.SQLFunctionName(t.Zip), t.Zip.Normalize)
}

func (t *Tokenizers) token(n normalizers.Normalizer, raw string) string {
	token, _ := n.Normalize(raw)
	return token
}
