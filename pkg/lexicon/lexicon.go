// Package lexicon holds the nickname table used to resolve informal first
// names to their canonical form.
package lexicon

import (
	"sort"
	"strings"
)

// Table maps a canonical first name to its informal variants.
type Table map[string][]string

// defaultTable lists only unambiguous variants. Names shared by two canonical
// forms (pat, chris, alex, sam, al, ted, terry, jon, jamie, frank, tina) are
// left out on purpose.
var defaultTable = Table{
	"abigail":    {"abby"},
	"andrew":     {"andy", "drew"},
	"anthony":    {"tony"},
	"arthur":     {"art", "artie"},
	"barbara":    {"barb", "babs"},
	"benjamin":   {"ben", "benny"},
	"charles":    {"chuck", "charlie"},
	"cynthia":    {"cindy"},
	"daniel":     {"dan", "danny"},
	"david":      {"dave", "davey"},
	"deborah":    {"deb", "debbie"},
	"donald":     {"don", "donny"},
	"dorothy":    {"dot", "dottie"},
	"douglas":    {"doug"},
	"edward":     {"ed", "eddie", "ned"},
	"elizabeth":  {"beth", "liz", "betty", "lizzy", "eliza", "lisa", "betsy"},
	"eugene":     {"gene"},
	"frederick":  {"fred", "freddie"},
	"gabriel":    {"gabe"},
	"gerald":     {"gerry"},
	"gregory":    {"greg"},
	"harold":     {"hal"},
	"henry":      {"hank"},
	"jacqueline": {"jackie"},
	"james":      {"jim", "jimmy"},
	"jeffrey":    {"jeff"},
	"jennifer":   {"jen", "jenny"},
	"jerome":     {"jerry"},
	"jessica":    {"jess", "jessie"},
	"john":       {"jack", "johnny"},
	"joseph":     {"joe", "joey"},
	"judith":     {"judy"},
	"katherine":  {"kate", "kathy", "katie", "kat"},
	"kenneth":    {"ken", "kenny"},
	"kimberly":   {"kim"},
	"lawrence":   {"larry"},
	"leonard":    {"len", "lenny"},
	"louis":      {"lou"},
	"margaret":   {"maggie", "meg", "peggy", "marge", "margie"},
	"mary":       {"molly", "polly", "mamie"},
	"matthew":    {"matt", "matty"},
	"michael":    {"mike", "mikey", "mick"},
	"nicholas":   {"nick", "nicky"},
	"pamela":     {"pam"},
	"patricia":   {"patty", "trish", "tricia"},
	"peter":      {"pete"},
	"philip":     {"phil"},
	"raymond":    {"ray"},
	"rebecca":    {"becky", "becca"},
	"richard":    {"rick", "ricky", "dick", "rich", "richie"},
	"robert":     {"bob", "rob", "bobby", "bert", "robbie"},
	"ronald":     {"ron", "ronnie"},
	"stanley":    {"stan"},
	"steven":     {"steve", "stevie"},
	"susan":      {"sue", "susie"},
	"theresa":    {"tess", "tessa"},
	"thomas":     {"tom", "tommy"},
	"timothy":    {"tim", "timmy"},
	"victoria":   {"vicky", "tori"},
	"vincent":    {"vince", "vinny"},
	"virginia":   {"ginny"},
	"walter":     {"walt", "wally"},
	"william":    {"bill", "billy", "will", "willie", "liam"},
	"zachary":    {"zach", "zack"},
}

// Entry is one canonical name and its variants.
type Entry struct {
	Canonical string
	Variants  []string
}

// Lexicon is an immutable view over a Table with a reverse index from variant
// to canonical name. The zero value is an empty lexicon.
type Lexicon struct {
	entries   []Entry
	canonical map[string]string
}

// Default returns the built-in nickname lexicon.
func Default() *Lexicon {
	return defaultLexicon
}

var defaultLexicon = New(defaultTable)

// New copies table into a Lexicon. Entries are ordered by canonical name, and
// when a variant is listed under several canonical names the first one in
// that order wins the reverse index; Validate reports the conflict.
func New(table Table) *Lexicon {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)

	lex := &Lexicon{
		entries:   make([]Entry, 0, len(names)),
		canonical: make(map[string]string),
	}
	for _, name := range names {
		variants := append([]string(nil), table[name]...)
		lex.entries = append(lex.entries, Entry{Canonical: name, Variants: variants})
		for _, v := range variants {
			if _, taken := lex.canonical[v]; !taken {
				lex.canonical[v] = name
			}
		}
	}
	return lex
}

// Canonical resolves an already lowercased variant to its canonical name.
func (l *Lexicon) Canonical(variant string) (string, bool) {
	if l == nil {
		return "", false
	}
	name, ok := l.canonical[variant]
	return name, ok
}

// Variants returns a copy of the variants listed for canonical.
func (l *Lexicon) Variants(canonical string) []string {
	if l == nil {
		return nil
	}
	canonical = strings.ToLower(strings.TrimSpace(canonical))
	i := sort.Search(len(l.entries), func(i int) bool { return l.entries[i].Canonical >= canonical })
	if i < len(l.entries) && l.entries[i].Canonical == canonical {
		return append([]string(nil), l.entries[i].Variants...)
	}
	return nil
}

// Entries returns a copy of every entry ordered by canonical name.
func (l *Lexicon) Entries() []Entry {
	if l == nil {
		return nil
	}
	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		out[i] = Entry{Canonical: e.Canonical, Variants: append([]string(nil), e.Variants...)}
	}
	return out
}

// Len is the number of canonical names.
func (l *Lexicon) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}
