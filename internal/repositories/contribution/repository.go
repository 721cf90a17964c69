package contribution

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/sbosshardt/cure-contributors/pkg/database"
	"github.com/sbosshardt/cure-contributors/pkg/models"
	"github.com/sbosshardt/cure-contributors/pkg/tracing"
)

const (
	table = "contributions"

	// DefaultBatchSize keeps multi-row inserts well below SQLite's bound
	// parameter limit.
	DefaultBatchSize = 500
)

var insertColumns = []string{
	"committee_id", "committee_name", "transaction_id", "file_number",
	"contributor_first_name", "contributor_last_name", "contributor_street_1",
	"contributor_city", "contributor_state", "contributor_zip",
	"contributor_employer", "contributor_occupation",
	"contribution_receipt_date", "contribution_receipt_amount",
	"link_id", "memo_text", "import_batch_id", "source_file",
}

// Columns is every column of the contributions table in schema order.
var Columns = append(append([]string{"id"}, insertColumns...), "created_at")

// Repository handles contribution persistence
type Repository struct {
	db        database.DB
	logger    ectologger.Logger
	batchSize int
}

// NewRepository creates a new contribution repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:        db,
		logger:    logger,
		batchSize: DefaultBatchSize,
	}
}

// WithBatchSize overrides the number of rows per insert statement.
func (r *Repository) WithBatchSize(size int) *Repository {
	if size > 0 {
		r.batchSize = size
	}
	return r
}

// InsertBatch inserts records in multi-row statements. It joins the
// transaction carried by ctx when there is one.
func (r *Repository) InsertBatch(ctx context.Context, records []models.ContributionRecord) error {
	ctx, span := tracing.StartSpan(ctx, "contribution.Repository.InsertBatch")
	defer span.End()

	if len(records) == 0 {
		return nil
	}

	exec := database.ExecutorFromContext(ctx, r.db)
	for _, window := range database.Chunk(len(records), r.batchSize) {
		ib := database.NewInsertBuilder()
		ib.InsertInto(table)
		ib.Cols(insertColumns...)
		for _, c := range records[window[0]:window[1]] {
			ib.Values(
				c.CommitteeID, c.CommitteeName, c.TransactionID, c.FileNumber,
				c.FirstName, c.LastName, c.Street,
				c.City, c.State, c.Zip,
				c.Employer, c.Occupation,
				c.Date, c.AmountText(),
				c.LinkID, c.MemoText, c.ImportBatchID, c.SourceFile,
			)
		}

		query, args := ib.Build()
		if _, err := exec.ExecContext(ctx, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"rows":   window[1] - window[0],
				"offset": window[0],
			}).Error("Failed to insert contributions batch")
			return database.NewStorageError("insert contributions", err)
		}
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"count": len(records)}).Debug("Inserted contributions")
	return nil
}

// List returns every contribution ordered by id.
func (r *Repository) List(ctx context.Context) ([]models.ContributionRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "contribution.Repository.List")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(Columns...)
	sb.From(table)
	sb.OrderBy("id")

	query, args := sb.Build()
	var records []models.ContributionRecord
	if err := database.ExecutorFromContext(ctx, r.db).SelectContext(ctx, &records, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list contributions")
		return nil, database.NewStorageError("list contributions", err)
	}

	return records, nil
}

// ListByBatch returns the contributions written by one import batch.
func (r *Repository) ListByBatch(ctx context.Context, batchID string) ([]models.ContributionRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "contribution.Repository.ListByBatch")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(Columns...)
	sb.From(table)
	sb.Where(sb.Equal("import_batch_id", batchID))
	sb.OrderBy("id")

	query, args := sb.Build()
	var records []models.ContributionRecord
	if err := database.ExecutorFromContext(ctx, r.db).SelectContext(ctx, &records, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"batch_id": batchID}).Error("Failed to list contributions by batch")
		return nil, database.NewStorageError("list contributions", err)
	}

	return records, nil
}

// Count returns the number of stored contributions.
func (r *Repository) Count(ctx context.Context) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "contribution.Repository.Count")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From(table)

	query, args := sb.Build()
	var count int
	if err := database.ExecutorFromContext(ctx, r.db).GetContext(ctx, &count, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count contributions")
		return 0, database.NewStorageError("count contributions", err)
	}

	return count, nil
}

// Purge deletes every contribution and returns the number removed.
func (r *Repository) Purge(ctx context.Context) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "contribution.Repository.Purge")
	defer span.End()

	db := database.NewDeleteBuilder()
	db.DeleteFrom(table)

	query, args := db.Build()
	result, err := database.ExecutorFromContext(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to purge contributions")
		return 0, database.NewStorageError("purge contributions", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, database.NewStorageError("purge contributions", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"deleted": deleted}).Info("Purged contributions")
	return deleted, nil
}
