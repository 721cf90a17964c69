// Package tasks implements the operation behind each CLI command.
package tasks

import (
	"context"
	"io"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/sbosshardt/cure-contributors/config"
	"github.com/sbosshardt/cure-contributors/db"
	appctx "github.com/sbosshardt/cure-contributors/pkg/context"
	"github.com/sbosshardt/cure-contributors/pkg/database"
	"github.com/sbosshardt/cure-contributors/pkg/lexicon"
	"github.com/sbosshardt/cure-contributors/pkg/matching"
	"github.com/sbosshardt/cure-contributors/pkg/startup"
	"github.com/sbosshardt/cure-contributors/pkg/tracing"
	"github.com/sbosshardt/cure-contributors/pkg/tracing/exporters"
)

// Dependency names used at startup.
const (
	DependencyTracing  = "tracing"
	DependencyLexicon  = "lexicon"
	DependencyDatabase = "database"
)

type Tasks struct {
	cfg     *config.Config
	logger  ectologger.Logger
	out     io.Writer
	lexicon *lexicon.Lexicon
	backoff time.Duration
}

type Option func(*Tasks)

// WithLexicon replaces the built-in nickname lexicon.
func WithLexicon(lex *lexicon.Lexicon) Option {
	return func(t *Tasks) { t.lexicon = lex }
}

// WithStartupBackoff sets the base delay between startup attempts.
func WithStartupBackoff(d time.Duration) Option {
	return func(t *Tasks) { t.backoff = d }
}

// New returns tasks writing human readable output to out.
func New(cfg *config.Config, logger ectologger.Logger, out io.Writer, opts ...Option) *Tasks {
	t := &Tasks{
		cfg:     cfg,
		logger:  logger,
		out:     out,
		lexicon: lexicon.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// session is an opened database with the tokenizers its SQL functions use.
type session struct {
	db         database.DB
	tokenizers *matching.Tokenizers
	startup    *startup.Startup
}

func (s *session) Close(ctx context.Context) error {
	return s.startup.Stop(ctx)
}

type sessionOptions struct {
	path string
	// create migrates a new or existing file; otherwise the file must exist
	// and already carry the schema.
	create bool
	debug  bool
	// checkLexicon validates the lexicon before the database is opened.
	checkLexicon bool
}

// open starts tracing, the lexicon check and the database in that order.
// Tokenizers are registered as SQL functions before the database opens. The
// returned context carries the session's dependency container.
func (t *Tasks) open(ctx context.Context, opts sessionOptions) (context.Context, *session, error) {
	tokenizers, err := matching.NewTokenizers(matching.TokenizerConfig{
		Lexicon:  t.lexicon,
		MemoSize: t.cfg.Matching.MemoCacheSize,
		Debug:    opts.debug,
	}, t.logger)
	if err != nil {
		return ctx, nil, err
	}
	tokenizers.Register()

	s := &session{
		tokenizers: tokenizers,
		startup:    startup.NewStartup(t.logger, t.cfg.StartupMaxAttempts),
	}
	if t.backoff > 0 {
		s.startup.WithBackoff(t.backoff)
	}

	var provider *tracing.Provider
	s.startup.AddDependency(&startup.Dependency{
		Name: DependencyTracing,
		OnStart: func(ctx context.Context) error {
			p, err := tracing.Setup(ctx, t.tracingConfig(), t.logger)
			if err != nil {
				return startup.Permanent(err)
			}
			provider = p
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return provider.Shutdown(ctx)
		},
	})

	requires := []string{DependencyTracing}
	if opts.checkLexicon {
		s.startup.AddDependency(&startup.Dependency{
			Name:     DependencyLexicon,
			Requires: []string{DependencyTracing},
			OnStart: func(ctx context.Context) error {
				if err := t.lexicon.Check(); err != nil {
					return startup.Permanent(err)
				}
				t.logger.WithContext(ctx).WithFields(map[string]any{"entries": t.lexicon.Len()}).Debug("Nickname lexicon is valid")
				return nil
			},
		})
		requires = append(requires, DependencyLexicon)
	}

	s.startup.AddDependency(&startup.Dependency{
		Name:     DependencyDatabase,
		Requires: requires,
		OnStart: func(ctx context.Context) error {
			conn, err := t.openDatabase(ctx, opts)
			if err != nil {
				return err
			}
			s.db = conn
			return nil
		},
		OnStop: func(context.Context) error {
			if s.db == nil {
				return nil
			}
			return s.db.Close()
		},
	})

	if err := s.startup.Start(ctx); err != nil {
		if stopErr := s.startup.Stop(ctx); stopErr != nil {
			t.logger.WithContext(ctx).WithError(stopErr).Warn("Failed to stop dependencies after startup failure")
		}
		return ctx, nil, err
	}

	ctx, err = t.newContainer(ctx, s)
	if err != nil {
		t.closeSession(ctx, s, &err)
		return ctx, nil, err
	}
	return ctx, s, nil
}

func (t *Tasks) openDatabase(ctx context.Context, opts sessionOptions) (database.DB, error) {
	conn, err := database.Open(ctx, opts.path, database.Options{
		BusyTimeout: t.cfg.Database.BusyTimeout,
		Create:      opts.create,
	}, t.logger)
	if err != nil {
		if httperror.IsNotFound(err) {
			return nil, startup.Permanent(err)
		}
		return nil, err
	}

	if opts.create {
		err = database.NewMigrationService(t.logger, t.migrationConfig()).Migrate(conn)
	} else {
		err = database.ValidateSchema(ctx, conn)
	}
	if err != nil {
		conn.Close()
		return nil, startup.Permanent(err)
	}
	return conn, nil
}

func (t *Tasks) migrationConfig() *database.MigrationConfig {
	return &database.MigrationConfig{
		MigrationFolderPath: t.cfg.Database.MigrationFolderPath,
		Embedded:            db.Migrations,
		EmbeddedPath:        db.MigrationsPath,
		Version:             uint(t.cfg.Database.MigrationVersion),
		Force:               t.cfg.Database.MigrationForce,
		AutoRollback:        t.cfg.Database.MigrationAutoRollback,
	}
}

func (t *Tasks) tracingConfig() tracing.Config {
	return tracing.Config{
		ServiceName: t.cfg.AppName,
		Exporter:    t.cfg.Tracing.Exporter,
		OTLP: exporters.OTLPConfig{
			Endpoint: t.cfg.Tracing.Endpoint,
			Protocol: t.cfg.Tracing.Protocol,
			Insecure: t.cfg.Tracing.Insecure,
		},
	}
}

// log returns the logger carrying the run fields of ctx.
func (t *Tasks) log(ctx context.Context) ectologger.Logger {
	return t.logger.WithContext(ctx).WithFields(appctx.Fields(ctx))
}

// closeSession stops the session, keeping err when it is already set.
func (t *Tasks) closeSession(ctx context.Context, s *session, err *error) {
	if closeErr := s.Close(ctx); closeErr != nil {
		t.log(ctx).WithError(closeErr).Warn("Failed to close database")
		if *err == nil {
			*err = closeErr
		}
	}
}
