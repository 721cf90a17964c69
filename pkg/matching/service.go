package matching

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"

	"github.com/sbosshardt/cure-contributors/internal/repositories/contribution"
	"github.com/sbosshardt/cure-contributors/internal/repositories/curelistvoter"
	"github.com/sbosshardt/cure-contributors/internal/repositories/match"
	"github.com/sbosshardt/cure-contributors/pkg/models"
	"github.com/sbosshardt/cure-contributors/pkg/tracing"
)

// Strategy selects where the join runs.
type Strategy string

const (
	// StrategySQL joins inside SQLite through the registered normalizer functions.
	StrategySQL Strategy = "sql"
	// StrategyMemory loads both tables and joins with Engine.
	StrategyMemory Strategy = "memory"
)

// ParseStrategy validates a configured strategy name.
func ParseStrategy(name string) (Strategy, error) {
	switch s := Strategy(name); s {
	case StrategySQL, StrategyMemory:
		return s, nil
	case "":
		return StrategySQL, nil
	}
	return "", fmt.Errorf("unknown match strategy %q (use 'sql' or 'memory')", name)
}

// Config contains configuration for the matching service.
type Config struct {
	Strategy Strategy
	Policy   Policy
}

// DefaultConfig returns the SQL strategy with the default policy.
func DefaultConfig() Config {
	return Config{
		Strategy: StrategySQL,
		Policy:   DefaultPolicy(),
	}
}

// Service finds matches across the stored voters and contributions.
type Service struct {
	log              ectologger.Logger
	matchRepo        *match.Repository
	voterRepo        *curelistvoter.Repository
	contributionRepo *contribution.Repository
	engine           *Engine
	cfg              Config
}

// NewService creates a new matching service.
func NewService(
	log ectologger.Logger,
	matchRepo *match.Repository,
	voterRepo *curelistvoter.Repository,
	contributionRepo *contribution.Repository,
	tokenizers *Tokenizers,
	cfg Config,
) *Service {
	return &Service{
		log:              log,
		matchRepo:        matchRepo,
		voterRepo:        voterRepo,
		contributionRepo: contributionRepo,
		engine:           NewEngine(log, tokenizers, cfg.Policy),
		cfg:              cfg,
	}
}

// FindMatches runs the configured strategy. Both strategies return the same
// pairs in the same order.
func (s *Service) FindMatches(ctx context.Context) ([]models.MatchPair, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Service.FindMatches")
	defer span.End()

	log := s.log.WithContext(ctx).WithFields(map[string]any{
		"strategy": s.cfg.Strategy,
		"policy":   s.cfg.Policy.String(),
	})
	log.Debug("Finding matches")

	switch s.cfg.Strategy {
	case StrategyMemory:
		return s.findInMemory(ctx)
	case StrategySQL, "":
		return s.findInSQL(ctx)
	}
	return nil, fmt.Errorf("unknown match strategy %q", s.cfg.Strategy)
}

func (s *Service) findInSQL(ctx context.Context) ([]models.MatchPair, error) {
	pairs, err := s.matchRepo.FindMatches(ctx, s.cfg.Policy.SQL())
	if err != nil {
		return nil, err
	}

	admitted := pairs[:0]
	for _, pair := range pairs {
		rules, ok := s.cfg.Policy.Admit(pair.MatchIndicators)
		if !ok {
			s.log.WithContext(ctx).WithFields(map[string]any{
				"voter_id":        pair.Voter.ID,
				"contribution_id": pair.Contribution.ID,
			}).Warn("Dropping pair the policy does not admit")
			continue
		}
		pair.Rules = rules
		admitted = append(admitted, pair)
	}
	return admitted, nil
}

func (s *Service) findInMemory(ctx context.Context) ([]models.MatchPair, error) {
	voters, err := s.voterRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	contributions, err := s.contributionRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.FindMatches(ctx, voters, contributions), nil
}
