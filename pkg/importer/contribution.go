package importer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/sbosshardt/cure-contributors/pkg/models"
	"github.com/sbosshardt/cure-contributors/pkg/normalizers"
)

// dateLayouts are tried in order when parsing receipt dates.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"20060102",
	"01-02-2006",
}

// ParseDate converts a receipt date to YYYY-MM-DD.
func ParseDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", raw)
}

// ParseAmount reads a currency amount, ignoring "$", "," and whitespace. A
// value in parentheses is negative.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.Map(func(r rune) rune {
		switch r {
		case '$', ',', ' ', '\t':
			return -1
		}
		return r
	}, raw)
	if s == "" {
		return decimal.Zero, nil
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unrecognized amount %q", raw)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// contributionRow is the raw, uncoerced part of a row that must hold for
// the row to be imported. Zip, date and amount are coerced with warnings
// instead.
type contributionRow struct {
	FirstName string `validate:"max=100"`
	LastName  string `validate:"required_without=FirstName,max=100"`
	State     string `validate:"omitempty,len=2,alpha"`
}

// rowFields names the contribution field behind each contributionRow field.
var rowFields = map[string]string{
	"FirstName": FieldFirstName,
	"LastName":  FieldLastName,
	"State":     FieldState,
}

// parseContribution maps one row to a record. Amounts and dates that cannot
// be used are replaced (0.00 and "") and reported as warnings. A row without
// any contributor name or with a malformed state fails.
func parseContribution(validate *validator.Validate, cols ColumnMap, row Row) (models.ContributionRecord, []string, error) {
	raw := contributionRow{
		FirstName: strings.TrimSpace(cols.get(row, FieldFirstName)),
		LastName:  strings.TrimSpace(cols.get(row, FieldLastName)),
		State:     strings.TrimSpace(cols.get(row, FieldState)),
	}
	if err := validate.Struct(raw); err != nil {
		return models.ContributionRecord{}, nil, rowError(err)
	}

	var warnings []string

	record := models.ContributionRecord{
		CommitteeID:   cols.get(row, FieldCommitteeID),
		CommitteeName: cols.get(row, FieldCommitteeName),
		TransactionID: cols.get(row, FieldTransactionID),
		FileNumber:    cols.get(row, FieldFileNumber),
		FirstName:     cols.get(row, FieldFirstName),
		LastName:      cols.get(row, FieldLastName),
		Street:        cols.get(row, FieldStreet),
		City:          cols.get(row, FieldCity),
		State:         cols.get(row, FieldState),
		Zip:           normalizers.FormatZip(cols.get(row, FieldZip)),
		Employer:      cols.get(row, FieldEmployer),
		Occupation:    cols.get(row, FieldOccupation),
		LinkID:        cols.get(row, FieldLinkID),
		MemoText:      cols.get(row, FieldMemoText),
	}

	date, err := ParseDate(cols.get(row, FieldDate))
	if err != nil {
		warnings = append(warnings, err.Error())
	}
	record.Date = date

	amount, err := ParseAmount(cols.get(row, FieldAmount))
	switch {
	case err != nil:
		warnings = append(warnings, err.Error()+", using 0.00")
		amount = decimal.Zero
	case amount.IsNegative():
		warnings = append(warnings, fmt.Sprintf("negative amount %s, using 0.00", amount.StringFixed(2)))
		amount = decimal.Zero
	}
	record.Amount = amount.Round(2)

	return record, warnings, nil
}

// rowError rewrites validator failures in terms of contribution fields.
func rowError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := rowFields[fe.Field()]
		switch fe.Tag() {
		case "required_without":
			messages = append(messages, fmt.Sprintf("%s or %s is required", FieldLastName, FieldFirstName))
		case "len", "alpha":
			messages = append(messages, fmt.Sprintf("%s %q is not a two letter code", field, fe.Value()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s is longer than %s characters", field, fe.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return errors.New(strings.Join(messages, "; "))
}
