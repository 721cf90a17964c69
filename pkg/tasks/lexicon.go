package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/sbosshardt/cure-contributors/pkg/lexicon"
	"github.com/sbosshardt/cure-contributors/pkg/normalizers"
)

// Normalizer kinds accepted by Normalize.
const (
	KindName    = "name"
	KindAddress = "address"
	KindZip     = "zip"
)

// ValidateLexicon checks the nickname lexicon and lists every violation.
func (t *Tasks) ValidateLexicon(ctx context.Context) error {
	err := t.lexicon.Check()

	var invalid *lexicon.LexiconValidationError
	if errors.As(err, &invalid) {
		for _, v := range invalid.Errors {
			fmt.Fprintln(t.out, v.Error())
		}
		t.log(ctx).WithFields(map[string]any{"violations": len(invalid.Errors)}).Error("Nickname lexicon is invalid")
		return err
	}

	fmt.Fprintf(t.out, "Lexicon OK: %d names\n", t.lexicon.Len())
	return nil
}

// Normalize prints the token for value and, for names and addresses, the
// value after every step.
func (t *Tasks) Normalize(ctx context.Context, kind, value string) (string, error) {
	var n normalizers.Normalizer
	switch strings.ToLower(kind) {
	case KindName:
		n = normalizers.NewNameNormalizer(t.lexicon)
	case KindAddress:
		n = normalizers.NewAddressNormalizer()
	case KindZip:
		n = normalizers.ZipNormalizer{}
	default:
		return "", fmt.Errorf("unknown normalizer %q (use 'name', 'address' or 'zip')", kind)
	}

	if explainer, ok := n.(normalizers.Explainer); ok {
		steps, err := explainer.Explain(value)
		if err != nil {
			return "", err
		}
		for _, step := range steps {
			fmt.Fprintf(t.out, "%s %q\n", runewidth.FillRight(step.Name+":", 14), step.Value)
		}
	}

	token, err := n.Normalize(value)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(t.out, "%s %q\n", runewidth.FillRight("token:", 14), token)

	t.log(ctx).WithFields(map[string]any{"normalizer": n.Name(), "input": value, "token": token}).Debug("Normalized value")
	return token, nil
}
