package normalizers

import "strings"

// FormatZip reduces a US zip code to exactly five digits: non-digits are
// dropped, ZIP+4 is truncated and short values are left-padded with zeros.
// Input without digits yields "".
func FormatZip(s string) string {
	digits := DigitsOnly(s)
	switch {
	case digits == "":
		return ""
	case len(digits) > 5:
		return digits[:5]
	case len(digits) < 5:
		return strings.Repeat("0", 5-len(digits)) + digits
	}
	return digits
}

// ZipNormalizer exposes FormatZip through the Normalizer interface so it can
// be registered as a SQL function.
type ZipNormalizer struct{}

func (ZipNormalizer) Name() string {
	return "zip"
}

func (z ZipNormalizer) Normalize(raw any) (string, error) {
	s, ok, err := asString(z.Name(), raw)
	if err != nil || !ok {
		return "", err
	}
	return FormatZip(s), nil
}
