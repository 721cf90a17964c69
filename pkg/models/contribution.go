package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContributionRecord is one itemized campaign contribution.
// Field order matches schema: id, committee_id, committee_name, transaction_id, ...
type ContributionRecord struct {
	ID            int64           `json:"id" db:"id"`
	CommitteeID   string          `json:"committee_id" db:"committee_id"`
	CommitteeName string          `json:"committee_name" db:"committee_name"`
	TransactionID string          `json:"transaction_id" db:"transaction_id"`
	FileNumber    string          `json:"file_number" db:"file_number"`
	FirstName     string          `json:"contributor_first_name" db:"contributor_first_name"`
	LastName      string          `json:"contributor_last_name" db:"contributor_last_name"`
	Street        string          `json:"contributor_street_1" db:"contributor_street_1"`
	City          string          `json:"contributor_city" db:"contributor_city"`
	State         string          `json:"contributor_state" db:"contributor_state"`
	Zip           string          `json:"contributor_zip" db:"contributor_zip"` // 5 digits or empty
	Employer      string          `json:"contributor_employer" db:"contributor_employer"`
	Occupation    string          `json:"contributor_occupation" db:"contributor_occupation"`
	Date          string          `json:"contribution_receipt_date" db:"contribution_receipt_date"` // YYYY-MM-DD or empty
	Amount        decimal.Decimal `json:"contribution_receipt_amount" db:"contribution_receipt_amount"`
	LinkID        string          `json:"link_id" db:"link_id"`
	MemoText      string          `json:"memo_text" db:"memo_text"`
	ImportBatchID string          `json:"import_batch_id" db:"import_batch_id"`
	SourceFile    string          `json:"source_file" db:"source_file"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// AmountText is the amount as stored: two decimal places.
func (c ContributionRecord) AmountText() string {
	return c.Amount.StringFixed(2)
}

// ContributorName renders the contributor as "Last, First".
func (c ContributionRecord) ContributorName() string {
	return displayName(c.LastName, c.FirstName)
}
