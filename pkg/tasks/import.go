package tasks

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectoinject"

	"github.com/sbosshardt/cure-contributors/pkg/database"
	"github.com/sbosshardt/cure-contributors/pkg/importer"
	"github.com/sbosshardt/cure-contributors/pkg/tracing"
)

func (t *Tasks) newImporter(db database.DB) (*importer.Importer, error) {
	cols, err := importer.DefaultContributionColumns().WithOverrides(t.cfg.Import.ContributionColumns)
	if err != nil {
		return nil, err
	}
	return importer.NewImporter(db, t.logger, importer.Options{
		ContributionColumns: cols,
		CureListSheet:       t.cfg.Import.CureListSheet,
		BatchSize:           t.cfg.Import.BatchSize,
	}), nil
}

// ImportContributions imports each file in its own transaction. Files that
// import cleanly stay imported even when another file fails.
func (t *Tasks) ImportContributions(ctx context.Context, path string, files []string) (results []importer.Result, err error) {
	ctx, span := tracing.StartSpan(ctx, "tasks.Tasks.ImportContributions")
	defer span.End()

	ctx, s, err := t.open(ctx, sessionOptions{path: path})
	if err != nil {
		return nil, err
	}
	defer t.closeSession(ctx, s, &err)

	ctx, imp, err := ectoinject.GetContext[*importer.Importer](ctx)
	if err != nil {
		return nil, err
	}

	results, err = imp.ImportContributions(ctx, files...)
	for _, r := range results {
		fmt.Fprintf(t.out, "Imported %d contribution(s) from %s (batch %s, %d warning(s))\n", r.Rows, r.File, r.BatchID, len(r.Warnings))
	}
	return results, err
}

// ImportCureList imports one cure list spreadsheet.
func (t *Tasks) ImportCureList(ctx context.Context, path, file string) (result *importer.Result, err error) {
	ctx, span := tracing.StartSpan(ctx, "tasks.Tasks.ImportCureList")
	defer span.End()

	ctx, s, err := t.open(ctx, sessionOptions{path: path})
	if err != nil {
		return nil, err
	}
	defer t.closeSession(ctx, s, &err)

	ctx, imp, err := ectoinject.GetContext[*importer.Importer](ctx)
	if err != nil {
		return nil, err
	}

	result, err = imp.ImportCureList(ctx, file)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(t.out, "Imported %d voter(s) from %s as %s (batch %s, %d warning(s))\n", result.Rows, result.File, result.Format, result.BatchID, len(result.Warnings))
	return result, nil
}
