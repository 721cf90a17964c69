package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type DB interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
	Close() error
	DriverName() string
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	PingContext(ctx context.Context) error
	QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error)
	Rebind(query string) string
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	Stats() sql.DBStats
	GetTx(ctx context.Context, opts *sql.TxOptions) (context.Context, Tx, error)
	Path() string
}

type DatabaseInstance struct {
	*sqlx.DB
	logger ectologger.Logger
	path   string
}

func NewDatabaseInstance(db *sqlx.DB, logger ectologger.Logger, path string) DB {
	return &DatabaseInstance{
		DB:     db,
		logger: logger,
		path:   path,
	}
}

func (db *DatabaseInstance) GetTx(ctx context.Context, opts *sql.TxOptions) (context.Context, Tx, error) {
	return GetTx(ctx, db.logger, db, opts)
}

// Path is the database file backing this instance.
func (db *DatabaseInstance) Path() string {
	return db.path
}

// Options tune the SQLite connection.
type Options struct {
	BusyTimeout time.Duration
	// Create allows a missing database file to be created.
	Create bool
}

// Open opens (and optionally creates) the SQLite database at path using the
// driver that exposes the registered normalizers as SQL functions.
func Open(ctx context.Context, path string, opts Options, logger ectologger.Logger) (DB, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, NewStorageError("resolve path", errors.Wrap(err, path))
	}

	if !opts.Create {
		if _, err := os.Stat(abs); err != nil {
			return nil, NotFoundError("open", errors.Wrapf(err, "database %s does not exist, run create-db first", abs))
		}
	}

	registerDriver()

	busy := opts.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=%d", abs, busy.Milliseconds())

	conn, err := sqlx.Open(DriverName, dsn)
	if err != nil {
		return nil, NewStorageError("open", errors.Wrap(err, abs))
	}
	// SQLite allows a single writer; one connection keeps transactions and
	// function registrations on the same handle.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, NewStorageError("ping", errors.Wrap(err, abs))
	}

	logger.WithContext(ctx).WithFields(map[string]any{"path": abs}).Debug("Opened database")

	return NewDatabaseInstance(conn, logger, abs), nil
}

// Remove deletes the database file at path if it exists.
func Remove(path string) (bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, NewStorageError("resolve path", errors.Wrap(err, path))
	}
	if _, err := os.Stat(abs); os.IsNotExist(err) {
		return false, nil
	}
	if err := os.Remove(abs); err != nil {
		return false, NewStorageError("remove", errors.Wrap(err, abs))
	}
	return true, nil
}
