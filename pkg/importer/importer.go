// Package importer reads contribution exports and cure list spreadsheets and
// persists them, one transaction per file.
package importer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/sbosshardt/cure-contributors/internal/repositories/contribution"
	"github.com/sbosshardt/cure-contributors/internal/repositories/curelistvoter"
	appctx "github.com/sbosshardt/cure-contributors/pkg/context"
	"github.com/sbosshardt/cure-contributors/pkg/database"
	"github.com/sbosshardt/cure-contributors/pkg/models"
	"github.com/sbosshardt/cure-contributors/pkg/tracing"
)

// Options tune an Importer. Zero values select the defaults.
type Options struct {
	ContributionColumns ColumnMap
	// CureListSheet names the worksheet to read; empty means the first.
	CureListSheet string
	BatchSize     int
}

// Warning is a row that was imported with a substituted value.
type Warning struct {
	Row     int
	Message string
}

// Result describes one imported file.
type Result struct {
	BatchID  string
	File     string
	Rows     int
	Warnings []Warning
	// Format is set for cure lists.
	Format CureListFormat
}

type Importer struct {
	db               database.DB
	contributionRepo *contribution.Repository
	voterRepo        *curelistvoter.Repository
	logger           ectologger.Logger
	opts             Options
	validate         *validator.Validate
}

func NewImporter(db database.DB, logger ectologger.Logger, opts Options) *Importer {
	if opts.ContributionColumns == nil {
		opts.ContributionColumns = DefaultContributionColumns()
	}
	return &Importer{
		db:               db,
		contributionRepo: contribution.NewRepository(db, logger).WithBatchSize(opts.BatchSize),
		voterRepo:        curelistvoter.NewRepository(db, logger).WithBatchSize(opts.BatchSize),
		logger:           logger,
		opts:             opts,
		validate:         validator.New(),
	}
}

// ImportContributions imports each file in its own transaction. A failing
// file is rolled back and the remaining files are still imported; the
// returned error aggregates every failure.
func (i *Importer) ImportContributions(ctx context.Context, files ...string) ([]Result, error) {
	ctx, span := tracing.StartSpan(ctx, "importer.Importer.ImportContributions")
	defer span.End()

	var (
		results []Result
		errs    *multierror.Error
	)
	for _, file := range files {
		result, err := i.importContributionFile(ctx, file)
		if err != nil {
			tracing.RecordError(ctx, err)
			i.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"file": file,
			}).Error("Failed to import contributions file, rolled back")
			errs = multierror.Append(errs, err)
			continue
		}
		results = append(results, *result)
	}

	return results, errs.ErrorOrNil()
}

func (i *Importer) importContributionFile(ctx context.Context, file string) (*Result, error) {
	ctx, span := tracing.StartSpan(ctx, "importer.Importer.importContributionFile")
	defer span.End()

	table, err := ReadTable(file, "")
	if err != nil {
		return nil, NewImportError(file, 0, err)
	}

	cols := i.opts.ContributionColumns
	if missing := cols.Missing(table); len(missing) > 0 {
		return nil, NewImportError(file, 1, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", ")))
	}

	result := &Result{BatchID: uuid.NewString(), File: file}
	ctx = appctx.SetBatchID(ctx, result.BatchID)
	source := filepath.Base(file)

	records := make([]models.ContributionRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		record, warnings, err := parseContribution(i.validate, cols, row)
		if err != nil {
			return nil, NewImportError(file, row.Number, err)
		}
		for _, w := range warnings {
			result.Warnings = append(result.Warnings, Warning{Row: row.Number, Message: w})
		}
		record.ImportBatchID = result.BatchID
		record.SourceFile = source
		records = append(records, record)
	}

	if err := i.persist(ctx, func(ctx context.Context) error {
		return i.contributionRepo.InsertBatch(ctx, records)
	}); err != nil {
		return nil, NewImportError(file, 0, err)
	}

	result.Rows = len(records)
	i.logResult(ctx, result)
	return result, nil
}

// ImportCureList imports one cure list in a single transaction. The layout
// is detected from the header row.
func (i *Importer) ImportCureList(ctx context.Context, file string) (*Result, error) {
	ctx, span := tracing.StartSpan(ctx, "importer.Importer.ImportCureList")
	defer span.End()

	table, err := ReadTable(file, i.opts.CureListSheet)
	if err != nil {
		return nil, NewImportError(file, 0, err)
	}

	layout, err := detectCureListLayout(table.Headers)
	if err != nil {
		return nil, NewImportError(file, 1, err)
	}

	result := &Result{BatchID: uuid.NewString(), File: file, Format: layout.format}
	ctx = appctx.SetBatchID(ctx, result.BatchID)
	source := filepath.Base(file)

	voters := make([]models.CureListVoter, 0, len(table.Rows))
	for _, row := range table.Rows {
		voter := layout.voter(row)
		if voter.LastName == "" && voter.FirstName == "" {
			result.Warnings = append(result.Warnings, Warning{Row: row.Number, Message: "voter has no name"})
		}
		voter.ImportBatchID = result.BatchID
		voter.SourceFile = source
		voters = append(voters, voter)
	}

	if err := i.persist(ctx, func(ctx context.Context) error {
		return i.voterRepo.InsertBatch(ctx, voters)
	}); err != nil {
		return nil, NewImportError(file, 0, err)
	}

	result.Rows = len(voters)
	i.logResult(ctx, result)
	return result, nil
}

// persist runs write inside a transaction that is committed only if write
// succeeds.
func (i *Importer) persist(ctx context.Context, write func(ctx context.Context) error) error {
	ctx, tx, err := i.db.GetTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := write(ctx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (i *Importer) logResult(ctx context.Context, result *Result) {
	log := i.logger.WithContext(ctx).WithFields(appctx.Fields(ctx))
	for _, w := range result.Warnings {
		log.WithFields(map[string]any{
			"file": result.File,
			"row":  w.Row,
		}).Warn(w.Message)
	}

	fields := map[string]any{
		"file":     result.File,
		"rows":     result.Rows,
		"warnings": len(result.Warnings),
	}
	if result.Format != "" {
		fields["format"] = string(result.Format)
	}
	log.WithFields(fields).Info("Imported file")
}
