package tasks

import (
	"context"
	"os"

	"github.com/Gobusters/ectoinject"
	"github.com/davecgh/go-spew/spew"

	"github.com/sbosshardt/cure-contributors/pkg/matching"
	"github.com/sbosshardt/cure-contributors/pkg/models"
	"github.com/sbosshardt/cure-contributors/pkg/report"
	"github.com/sbosshardt/cure-contributors/pkg/tracing"
)

// ReportOptions are the generate-report flags.
type ReportOptions struct {
	// Output is the file to write; empty writes to the task output.
	Output string
	// Format overrides both the configured format and the output extension.
	Format string
	// Debug logs normalization steps, validates the lexicon first and dumps
	// the summaries.
	Debug bool
}

// GenerateReport matches the stored voters against the stored contributions
// and renders the grouped result.
func (t *Tasks) GenerateReport(ctx context.Context, path string, opts ReportOptions) (summaries []models.MatchSummary, err error) {
	ctx, span := tracing.StartSpan(ctx, "tasks.Tasks.GenerateReport")
	defer span.End()

	format, err := t.reportFormat(opts)
	if err != nil {
		return nil, err
	}
	renderer, err := report.NewRenderer(format)
	if err != nil {
		return nil, err
	}
	if _, err := t.matchingConfig(); err != nil {
		return nil, err
	}

	ctx, s, err := t.open(ctx, sessionOptions{path: path, debug: opts.Debug, checkLexicon: opts.Debug})
	if err != nil {
		return nil, err
	}
	defer t.closeSession(ctx, s, &err)

	ctx, service, err := ectoinject.GetContext[*matching.Service](ctx)
	if err != nil {
		return nil, err
	}

	pairs, err := service.FindMatches(ctx)
	if err != nil {
		return nil, err
	}
	summaries = report.GroupByVoter(pairs)

	log := t.log(ctx)
	if opts.Debug {
		log.Debug("Match summaries:\n" + spew.Sdump(summaries))
	}

	if err := t.writeReport(renderer, opts.Output, summaries); err != nil {
		log.WithError(err).WithFields(map[string]any{"output": opts.Output}).Error("Failed to write report")
		return nil, err
	}

	totals := report.ComputeTotals(summaries)
	log.WithFields(map[string]any{
		"format":        string(format),
		"output":        opts.Output,
		"voters":        totals.Voters,
		"contributions": totals.Contributions,
	}).Info("Generated report")
	return summaries, nil
}

// reportFormat resolves the flag, then the configured format, then the
// output extension.
func (t *Tasks) reportFormat(opts ReportOptions) (report.Format, error) {
	for _, name := range []string{opts.Format, t.cfg.Report.Format} {
		format, err := report.ParseFormat(name)
		if err != nil {
			return "", err
		}
		if format != "" {
			return format, nil
		}
	}
	if opts.Output != "" {
		return report.FormatFromPath(opts.Output), nil
	}
	return report.FormatText, nil
}

func (t *Tasks) matchingConfig() (matching.Config, error) {
	strategy, err := matching.ParseStrategy(t.cfg.Matching.Strategy)
	if err != nil {
		return matching.Config{}, err
	}
	policy, err := matching.NewPolicy(t.cfg.Matching.Rules, t.cfg.Matching.RequireZip)
	if err != nil {
		return matching.Config{}, err
	}
	return matching.Config{Strategy: strategy, Policy: policy}, nil
}

func (t *Tasks) writeReport(renderer report.Renderer, output string, summaries []models.MatchSummary) error {
	if output == "" {
		return renderer.Render(t.out, summaries)
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := renderer.Render(f, summaries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
