package models

import (
	"strings"
	"time"
)

// CureListVoter is a voter whose mail ballot needs correction.
// Field order matches schema: id, voter_id, party, name, mailed_to, ...
type CureListVoter struct {
	ID            int64     `json:"id" db:"id"`
	VoterID       string    `json:"voter_id" db:"voter_id"`
	Party         string    `json:"party" db:"party"`
	Name          string    `json:"name" db:"name"` // display name, "Last, First"
	MailedTo      string    `json:"mailed_to" db:"mailed_to"`
	City          string    `json:"city" db:"city"`
	Phone         string    `json:"phone" db:"phone"`
	ZipCode       string    `json:"zip_code" db:"zip_code"` // 5 digits or empty
	LastName      string    `json:"last_name" db:"last_name"`
	FirstName     string    `json:"first_name" db:"first_name"`
	ImportBatchID string    `json:"import_batch_id" db:"import_batch_id"`
	SourceFile    string    `json:"source_file" db:"source_file"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// DisplayName is the stored display name, or "Last, First" when none was imported.
func (v CureListVoter) DisplayName() string {
	if strings.TrimSpace(v.Name) != "" {
		return v.Name
	}
	return displayName(v.LastName, v.FirstName)
}

func displayName(last, first string) string {
	last, first = strings.TrimSpace(last), strings.TrimSpace(first)
	switch {
	case last == "":
		return first
	case first == "":
		return last
	}
	return last + ", " + first
}
