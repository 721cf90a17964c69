package importer

import (
	"fmt"
	"strings"

	"github.com/Gobusters/ectolinq"

	"github.com/sbosshardt/cure-contributors/pkg/models"
	"github.com/sbosshardt/cure-contributors/pkg/normalizers"
)

// CureListFormat is one of the known cure list layouts.
type CureListFormat string

const (
	// FormatSplitName has separate first and last name columns.
	FormatSplitName CureListFormat = "split_name"
	// FormatCombinedName has one "Last, First Middle" name column.
	FormatCombinedName CureListFormat = "combined_name"
	// FormatCombinedNameRegistrant is FormatCombinedName with a registrant id
	// column identifying the voter.
	FormatCombinedNameRegistrant CureListFormat = "combined_name_registrant"
)

// cureListAliases lists the accepted header keys per voter field, most
// specific first.
var cureListAliases = map[string][]string{
	"voter_id":   {"voter_id", "voterid", "voter_number", "voter_no"},
	"registrant": {"registrant_id", "registrant", "reg_id", "registration_id"},
	"party":      {"party", "party_code", "party_affiliation"},
	"name":       {"name", "full_name", "voter_name"},
	"mailed_to":  {"mailed_to", "mailing_address", "mail_address", "street_address", "address", "residence_address"},
	"city":       {"city", "mail_city", "mailing_city"},
	"phone":      {"phone", "phone_number", "telephone"},
	"zip":        {"zip_code", "zip", "zipcode", "postal_code", "mail_zip"},
	"first_name": {"first_name", "first", "given_name"},
	"last_name":  {"last_name", "last", "surname"},
}

// cureListLayout is a detected format with each field resolved to a header key.
type cureListLayout struct {
	format  CureListFormat
	columns map[string]string
}

// DetectCureListFormat inspects header keys and picks the layout.
func DetectCureListFormat(headers []string) (CureListFormat, error) {
	layout, err := detectCureListLayout(headers)
	if err != nil {
		return "", err
	}
	return layout.format, nil
}

func detectCureListLayout(headers []string) (*cureListLayout, error) {
	columns := make(map[string]string, len(cureListAliases))
	for field, aliases := range cureListAliases {
		key := ectolinq.Find(aliases, func(alias string) bool {
			return ectolinq.Contains(headers, alias)
		})
		if !ectolinq.IsEmpty(key) {
			columns[field] = key
		}
	}

	_, hasFirst := columns["first_name"]
	_, hasLast := columns["last_name"]
	_, hasName := columns["name"]
	_, hasRegistrant := columns["registrant"]

	layout := &cureListLayout{columns: columns}
	switch {
	case hasFirst && hasLast:
		layout.format = FormatSplitName
	case hasName && hasRegistrant:
		layout.format = FormatCombinedNameRegistrant
	case hasName:
		layout.format = FormatCombinedName
	default:
		return nil, fmt.Errorf("unrecognized cure list layout: need first_name and last_name columns or a name column (have %s)", strings.Join(headers, ", "))
	}
	return layout, nil
}

func (l *cureListLayout) get(row Row, field string) string {
	key, ok := l.columns[field]
	if !ok {
		return ""
	}
	return row.Get(key)
}

// voter maps one row to a voter in the shape every format shares.
func (l *cureListLayout) voter(row Row) models.CureListVoter {
	v := models.CureListVoter{
		VoterID:  l.get(row, "voter_id"),
		Party:    l.get(row, "party"),
		Name:     l.get(row, "name"),
		MailedTo: l.get(row, "mailed_to"),
		City:     l.get(row, "city"),
		Phone:    l.get(row, "phone"),
		ZipCode:  normalizers.FormatZip(l.get(row, "zip")),
	}

	switch l.format {
	case FormatSplitName:
		v.FirstName = l.get(row, "first_name")
		v.LastName = l.get(row, "last_name")
		if v.Name == "" {
			v.Name = normalizers.DisplayName(v.LastName, v.FirstName)
		}
	case FormatCombinedName, FormatCombinedNameRegistrant:
		parsed := normalizers.ParseName(v.Name)
		v.FirstName = parsed.First
		v.LastName = parsed.Last
		if l.format == FormatCombinedNameRegistrant {
			if registrant := l.get(row, "registrant"); registrant != "" {
				v.VoterID = registrant
			}
		}
	}
	return v
}
