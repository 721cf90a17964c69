package curelistvoter

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/sbosshardt/cure-contributors/pkg/database"
	"github.com/sbosshardt/cure-contributors/pkg/models"
	"github.com/sbosshardt/cure-contributors/pkg/tracing"
)

const (
	table = "cure_list_voters"

	// DefaultBatchSize keeps multi-row inserts well below SQLite's bound
	// parameter limit.
	DefaultBatchSize = 500
)

var insertColumns = []string{
	"voter_id", "party", "name", "mailed_to", "city", "phone", "zip_code",
	"last_name", "first_name", "import_batch_id", "source_file",
}

// Columns is every column of the cure_list_voters table in schema order.
var Columns = append(append([]string{"id"}, insertColumns...), "created_at")

// Repository handles cure list voter persistence
type Repository struct {
	db        database.DB
	logger    ectologger.Logger
	batchSize int
}

// NewRepository creates a new cure list voter repository
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

// InsertBatch inserts voters in multi-row statements. It joins the
// transaction carried by ctx when there is one.
func (r *Repository) InsertBatch(ctx context.Context, voters []models.CureListVoter) error {
	ctx, span := tracing.StartSpan(ctx, "curelistvoter.Repository.InsertBatch")
	defer span.End()

	if len(voters) == 0 {
		return nil
	}

	exec := database.ExecutorFromContext(ctx, r.db)
	for _, window := range database.Chunk(len(voters), r.batchSize) {
		ib := database.NewInsertBuilder()
		ib.InsertInto(table)
		ib.Cols(insertColumns...)
		for _, v := range voters[window[0]:window[1]] {
			ib.Values(
				v.VoterID, v.Party, v.Name, v.MailedTo, v.City, v.Phone, v.ZipCode,
				v.LastName, v.FirstName, v.ImportBatchID, v.SourceFile,
			)
		}

		query, args := ib.Build()
		if _, err := exec.ExecContext(ctx, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"rows":   window[1] - window[0],
				"offset": window[0],
			}).Error("Failed to insert cure list voters batch")
			return database.NewStorageError("insert cure list voters", err)
		}
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"count": len(voters)}).Debug("Inserted cure list voters")
	return nil
}

// List returns every voter ordered by id.
func (r *Repository) List(ctx context.Context) ([]models.CureListVoter, error) {
	ctx, span := tracing.StartSpan(ctx, "curelistvoter.Repository.List")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(Columns...)
	sb.From(table)
	sb.OrderBy("id")

	query, args := sb.Build()
	var voters []models.CureListVoter
	if err := database.ExecutorFromContext(ctx, r.db).SelectContext(ctx, &voters, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list cure list voters")
		return nil, database.NewStorageError("list cure list voters", err)
	}

	return voters, nil
}

// ListByBatch returns the voters written by one import batch.
func (r *Repository) ListByBatch(ctx context.Context, batchID string) ([]models.CureListVoter, error) {
	ctx, span := tracing.StartSpan(ctx, "curelistvoter.Repository.ListByBatch")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(Columns...)
	sb.From(table)
	sb.Where(sb.Equal("import_batch_id", batchID))
	sb.OrderBy("id")

	query, args := sb.Build()
	var voters []models.CureListVoter
	if err := database.ExecutorFromContext(ctx, r.db).SelectContext(ctx, &voters, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"batch_id": batchID}).Error("Failed to list cure list voters by batch")
		return nil, database.NewStorageError("list cure list voters", err)
	}

	return voters, nil
}

// Count returns the number of stored voters.
func (r *Repository) Count(ctx context.Context) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "curelistvoter.Repository.Count")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From(table)

	query, args := sb.Build()
	var count int
	if err := database.ExecutorFromContext(ctx, r.db).GetContext(ctx, &count, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count cure list voters")
		return 0, database.NewStorageError("count cure list voters", err)
	}

	return count, nil
}

// Purge deletes every voter and returns the number removed.
func (r *Repository) Purge(ctx context.Context) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "curelistvoter.Repository.Purge")
	defer span.End()

	db := database.NewDeleteBuilder()
	db.DeleteFrom(table)

	query, args := db.Build()
	result, err := database.ExecutorFromContext(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to purge cure list voters")
		return 0, database.NewStorageError("purge cure list voters", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, database.NewStorageError("purge cure list voters", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"deleted": deleted}).Info("Purged cure list voters")
	return deleted, nil
}
