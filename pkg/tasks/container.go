package tasks

import (
	"context"

	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectoinject/ectocontainer"
	"github.com/Gobusters/ectoinject/lifecycles"
	"github.com/Gobusters/ectoinject/loglevel"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/sbosshardt/cure-contributors/internal/repositories/contribution"
	"github.com/sbosshardt/cure-contributors/internal/repositories/curelistvoter"
	"github.com/sbosshardt/cure-contributors/internal/repositories/match"
	"github.com/sbosshardt/cure-contributors/pkg/database"
	"github.com/sbosshardt/cure-contributors/pkg/importer"
	"github.com/sbosshardt/cure-contributors/pkg/matching"
)

// newContainer registers the session's database and everything built on it
// in a container of its own and makes that container active on ctx.
func (t *Tasks) newContainer(ctx context.Context, s *session) (context.Context, error) {
	container, err := ectoinject.NewDIContainer(ectocontainer.DIContainerConfig{
		ID:                       "session-" + uuid.NewString(),
		AllowCaptiveDependencies: true,
		AllowMissingDependencies: true,
		LoggerConfig: &ectocontainer.DIContainerLoggerConfig{
			Prefix:   "ectoinject",
			LogLevel: loglevel.INFO,
			Enabled:  true,
			LogFunc: func(ctx context.Context, level, msg string) {
				log := t.logger.WithContext(ctx).WithField("component", "ectoinject")
				if level == loglevel.WARN {
					log.Warn(msg)
					return
				}
				log.Debug(msg)
			},
		},
	})
	if err != nil {
		return ctx, err
	}

	registrations := []func() error{
		func() error { return ectoinject.RegisterInstance[database.DB](container, s.db) },
		func() error { return ectoinject.RegisterInstance[ectologger.Logger](container, t.logger) },
		func() error { return ectoinject.RegisterInstance[*matching.Tokenizers](container, s.tokenizers) },
		func() error {
			return ectoinject.RegisterInstance[*contribution.Repository](container, contribution.NewRepository(s.db, t.logger))
		},
		func() error {
			return ectoinject.RegisterInstance[*curelistvoter.Repository](container, curelistvoter.NewRepository(s.db, t.logger))
		},
		func() error {
			return ectoinject.RegisterInstance[*match.Repository](container, match.NewRepository(s.db, t.logger))
		},
		func() error {
			return ectoinject.RegisterInstanceFunc[*importer.Importer](container, lifecycles.Singleton, func(context.Context) (any, error) {
				return t.newImporter(s.db)
			})
		},
		func() error {
			return ectoinject.RegisterInstanceFunc[*matching.Service](container, lifecycles.Singleton, t.newMatchingService)
		},
	}
	for _, register := range registrations {
		if err := register(); err != nil {
			return ctx, err
		}
	}

	return ectoinject.SetActiveContainer(ctx, container.GetContainerID())
}

// newMatchingService builds the service from the repositories registered in
// the active container.
func (t *Tasks) newMatchingService(ctx context.Context) (any, error) {
	cfg, err := t.matchingConfig()
	if err != nil {
		return nil, err
	}
	ctx, matchRepo, err := ectoinject.GetContext[*match.Repository](ctx)
	if err != nil {
		return nil, err
	}
	ctx, voterRepo, err := ectoinject.GetContext[*curelistvoter.Repository](ctx)
	if err != nil {
		return nil, err
	}
	ctx, contribRepo, err := ectoinject.GetContext[*contribution.Repository](ctx)
	if err != nil {
		return nil, err
	}
	_, tokenizers, err := ectoinject.GetContext[*matching.Tokenizers](ctx)
	if err != nil {
		return nil, err
	}
	return matching.NewService(t.logger, matchRepo, voterRepo, contribRepo, tokenizers, cfg), nil
}
