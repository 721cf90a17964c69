package tasks

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectoinject"

	"github.com/sbosshardt/cure-contributors/internal/repositories/contribution"
	"github.com/sbosshardt/cure-contributors/internal/repositories/curelistvoter"
	"github.com/sbosshardt/cure-contributors/pkg/database"
	"github.com/sbosshardt/cure-contributors/pkg/tracing"
)

// CreateDB creates the database file if needed and brings its schema up to
// date. Running it against an existing database is safe.
func (t *Tasks) CreateDB(ctx context.Context, path string) (err error) {
	ctx, span := tracing.StartSpan(ctx, "tasks.Tasks.CreateDB")
	defer span.End()

	ctx, s, err := t.open(ctx, sessionOptions{path: path, create: true})
	if err != nil {
		return err
	}
	defer t.closeSession(ctx, s, &err)

	t.log(ctx).WithFields(map[string]any{"path": s.db.Path()}).Info("Database created/verified")
	fmt.Fprintf(t.out, "Database ready at %s\n", s.db.Path())
	return nil
}

// ResetDB deletes the database file and creates it again.
func (t *Tasks) ResetDB(ctx context.Context, path string) error {
	ctx, span := tracing.StartSpan(ctx, "tasks.Tasks.ResetDB")
	defer span.End()

	removed, err := database.Remove(path)
	if err != nil {
		t.log(ctx).WithError(err).WithFields(map[string]any{"path": path}).Error("Failed to delete database")
		return err
	}
	if removed {
		t.log(ctx).WithFields(map[string]any{"path": path}).Info("Deleted existing database")
	}
	return t.CreateDB(ctx, path)
}

// PurgeContributions deletes every contribution and reports how many were
// removed.
func (t *Tasks) PurgeContributions(ctx context.Context, path string) (deleted int64, err error) {
	ctx, span := tracing.StartSpan(ctx, "tasks.Tasks.PurgeContributions")
	defer span.End()

	ctx, s, err := t.open(ctx, sessionOptions{path: path})
	if err != nil {
		return 0, err
	}
	defer t.closeSession(ctx, s, &err)

	ctx, repo, err := ectoinject.GetContext[*contribution.Repository](ctx)
	if err != nil {
		return 0, err
	}

	deleted, err = repo.Purge(ctx)
	if err != nil {
		return 0, err
	}
	fmt.Fprintf(t.out, "Deleted %d contribution(s)\n", deleted)
	return deleted, nil
}

// PurgeCureList deletes every cure list voter and reports how many were
// removed.
func (t *Tasks) PurgeCureList(ctx context.Context, path string) (deleted int64, err error) {
	ctx, span := tracing.StartSpan(ctx, "tasks.Tasks.PurgeCureList")
	defer span.End()

	ctx, s, err := t.open(ctx, sessionOptions{path: path})
	if err != nil {
		return 0, err
	}
	defer t.closeSession(ctx, s, &err)

	ctx, repo, err := ectoinject.GetContext[*curelistvoter.Repository](ctx)
	if err != nil {
		return 0, err
	}

	deleted, err = repo.Purge(ctx)
	if err != nil {
		return 0, err
	}
	fmt.Fprintf(t.out, "Deleted %d cure list voter(s)\n", deleted)
	return deleted, nil
}
