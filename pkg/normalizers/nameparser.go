package normalizers

import (
	"regexp"
	"strings"
)

// trailingSuffix matches one generational suffix at the end of a display name.
var trailingSuffix = regexp.MustCompile(`(?i)[\s,]+(?:jr|sr|iii|ii|iv|v)\.?\s*$`)

// ParsedName is a display name split into its parts.
type ParsedName struct {
	Last  string
	First string
}

// ParseName splits a "Last, First Middle Suffix" display name. Trailing
// generational suffixes are removed, the text before the first comma is the
// last name and the first whitespace-delimited word after it is the first
// name. Without a comma the whole value is the last name.
func ParseName(full string) ParsedName {
	s := strings.TrimSpace(full)
	for {
		stripped := trailingSuffix.ReplaceAllString(s, "")
		if stripped == s {
			break
		}
		s = strings.TrimSpace(stripped)
	}

	last, rest, found := strings.Cut(s, ",")
	parsed := ParsedName{Last: strings.TrimSpace(last)}
	if !found {
		return parsed
	}
	if fields := strings.Fields(rest); len(fields) > 0 {
		parsed.First = fields[0]
	}
	return parsed
}

// DisplayName renders last and first as "Last, First".
func DisplayName(last, first string) string {
	last, first = strings.TrimSpace(last), strings.TrimSpace(first)
	switch {
	case last == "":
		return first
	case first == "":
		return last
	}
	return last + ", " + first
}
