package importer

import (
	"fmt"
	"sort"
)

// Contribution fields a ColumnMap can bind.
const (
	FieldCommitteeID   = "committee_id"
	FieldCommitteeName = "committee_name"
	FieldTransactionID = "transaction_id"
	FieldFileNumber    = "file_number"
	FieldFirstName     = "contributor_first_name"
	FieldLastName      = "contributor_last_name"
	FieldStreet        = "contributor_street_1"
	FieldCity          = "contributor_city"
	FieldState         = "contributor_state"
	FieldZip           = "contributor_zip"
	FieldEmployer      = "contributor_employer"
	FieldOccupation    = "contributor_occupation"
	FieldDate          = "contribution_receipt_date"
	FieldAmount        = "contribution_receipt_amount"
	FieldLinkID        = "link_id"
	FieldMemoText      = "memo_text"
)

// RequiredContributionFields must resolve to a column in every file.
var RequiredContributionFields = []string{FieldFirstName, FieldLastName}

// ColumnMap binds contribution fields to header keys.
type ColumnMap map[string]string

// DefaultContributionColumns maps every field to the header key of the FEC
// Schedule A export, where the names coincide.
func DefaultContributionColumns() ColumnMap {
	fields := []string{
		FieldCommitteeID, FieldCommitteeName, FieldTransactionID, FieldFileNumber,
		FieldFirstName, FieldLastName, FieldStreet, FieldCity, FieldState, FieldZip,
		FieldEmployer, FieldOccupation, FieldDate, FieldAmount, FieldLinkID, FieldMemoText,
	}
	m := make(ColumnMap, len(fields))
	for _, f := range fields {
		m[f] = f
	}
	return m
}

// WithOverrides returns a copy of m with overrides applied. Override values
// are header names and are normalized to keys; unknown fields are an error.
func (m ColumnMap) WithOverrides(overrides map[string]string) (ColumnMap, error) {
	out := make(ColumnMap, len(m))
	for k, v := range m {
		out[k] = v
	}

	fields := make([]string, 0, len(overrides))
	for f := range overrides {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	for _, field := range fields {
		if _, ok := m[field]; !ok {
			return nil, fmt.Errorf("unknown contribution field %q in column overrides", field)
		}
		out[field] = NormalizeHeaderKey(overrides[field])
	}
	return out, nil
}

// Missing lists the required fields whose column is not in table.
func (m ColumnMap) Missing(table *Table) []string {
	var missing []string
	for _, field := range RequiredContributionFields {
		if !table.Has(m[field]) {
			missing = append(missing, m[field])
		}
	}
	return missing
}

func (m ColumnMap) get(row Row, field string) string {
	return row.Get(m[field])
}
