package match

import (
	"context"
	"fmt"
	"strings"

	"github.com/Gobusters/ectolinq"
	"github.com/Gobusters/ectologger"

	"github.com/sbosshardt/cure-contributors/pkg/database"
	"github.com/sbosshardt/cure-contributors/pkg/models"
	"github.com/sbosshardt/cure-contributors/pkg/tracing"
)

// SQL functions the join relies on. They must be registered with
// database.RegisterFunction before the database is opened.
const (
	NameFunction    = "normalize_name"
	AddressFunction = "normalize_address"
)

// Indicator columns produced for every candidate pair. A policy predicate
// passed to FindMatches is written in terms of these.
const (
	AddressMatch   = "address_match"
	ZipMatch       = "zip_match"
	FirstNameMatch = "first_name_match"
	LastNameMatch  = "last_name_match"
)

var voterColumns = []string{
	"id", "voter_id", "party", "name", "mailed_to", "city", "phone", "zip_code",
	"last_name", "first_name", "import_batch_id", "source_file",
}

var contributionColumns = []string{
	"id", "committee_id", "committee_name", "transaction_id", "file_number",
	"contributor_first_name", "contributor_last_name", "contributor_street_1",
	"contributor_city", "contributor_state", "contributor_zip",
	"contributor_employer", "contributor_occupation",
	"contribution_receipt_date", "contribution_receipt_amount",
	"link_id", "memo_text", "import_batch_id", "source_file",
}

// Repository runs the voter/contribution join inside SQLite, normalizing
// both sides through the registered SQL functions.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new match repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// FindMatches returns every voter/contribution pair satisfying predicate,
// ordered by voter last name, first name, contribution date (newest first)
// and contribution id. Empty tokens never count as equal.
func (r *Repository) FindMatches(ctx context.Context, predicate string) ([]models.MatchPair, error) {
	ctx, span := tracing.StartSpan(ctx, "match.Repository.FindMatches")
	defer span.End()

	registered := database.RegisteredFunctions()
	for _, fn := range []string{NameFunction, AddressFunction} {
		if !ectolinq.Contains(registered, fn) {
			return nil, database.NewStorageError("find matches", fmt.Errorf("sql function %s is not registered", fn))
		}
	}
	if strings.TrimSpace(predicate) == "" {
		return nil, database.NewStorageError("find matches", fmt.Errorf("empty match predicate"))
	}

	query := BuildQuery(predicate)

	var pairs []models.MatchPair
	if err := database.ExecutorFromContext(ctx, r.db).SelectContext(ctx, &pairs, query); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"predicate": predicate,
			"path":      r.db.Path(),
		}).Error("Failed to find matches")
		return nil, database.NewStorageError("find matches", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"count": len(pairs)}).Debug("Found matches")
	return pairs, nil
}

// BuildQuery renders the match query for predicate.
func BuildQuery(predicate string) string {
	selected := make([]string, 0, len(voterColumns)+len(contributionColumns)+4)
	for _, col := range voterColumns {
		selected = append(selected, fmt.Sprintf(`v.%s AS "voter.%s"`, col, col))
	}
	for _, col := range contributionColumns {
		selected = append(selected, fmt.Sprintf(`c.%s AS "contribution.%s"`, col, col))
	}
	selected = append(selected,
		fmt.Sprintf("(v.address_token <> '' AND v.address_token = c.address_token) AS %s", AddressMatch),
		fmt.Sprintf("(v.zip_code <> '' AND v.zip_code = c.contributor_zip) AS %s", ZipMatch),
		fmt.Sprintf("(v.first_token <> '' AND v.first_token = c.first_token) AS %s", FirstNameMatch),
		fmt.Sprintf("(v.last_token <> '' AND v.last_token = c.last_token) AS %s", LastNameMatch),
	)

	return fmt.Sprintf(`
		WITH voter_tokens AS MATERIALIZED (
			SELECT %s,
				%s(first_name) AS first_token,
				%s(last_name) AS last_token,
				%s(mailed_to) AS address_token
			FROM cure_list_voters
		),
		contribution_tokens AS MATERIALIZED (
			SELECT %s,
				%s(contributor_first_name) AS first_token,
				%s(contributor_last_name) AS last_token,
				%s(contributor_street_1) AS address_token
			FROM contributions
		)
		SELECT * FROM (
			SELECT %s
			FROM voter_tokens v
			CROSS JOIN contribution_tokens c
		)
		WHERE %s
		ORDER BY "voter.last_name", "voter.first_name", "voter.id",
			"contribution.contribution_receipt_date" DESC, "contribution.id"
	`,
		strings.Join(voterColumns, ", "), NameFunction, NameFunction, AddressFunction,
		strings.Join(contributionColumns, ", "), NameFunction, NameFunction, AddressFunction,
		strings.Join(selected, ",\n\t\t\t\t"),
		predicate,
	)
}
