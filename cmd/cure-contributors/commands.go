package main

import (
	"context"
	"io"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/spf13/cobra"

	"github.com/sbosshardt/cure-contributors/config"
	appctx "github.com/sbosshardt/cure-contributors/pkg/context"
	"github.com/sbosshardt/cure-contributors/pkg/database"
	"github.com/sbosshardt/cure-contributors/pkg/logging"
	"github.com/sbosshardt/cure-contributors/pkg/tasks"
)

// app carries the state shared by every command: flags, config and logger.
type app struct {
	configPath string
	logLevel   string
	out        io.Writer

	cfg    *config.Config
	logger *logging.Logger
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:           "cure-contributors",
		Short:         "Generate reports of campaign contributions by cure list voters",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.logger.Sync()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config")

	root.AddCommand(
		a.createDBCmd(),
		a.resetDBCmd(),
		a.importContributionsCmd(),
		a.importCureListCmd(),
		a.generateReportCmd(),
		a.purgeContributionsCmd(),
		a.purgeCureListCmd(),
		a.validateLexiconCmd(),
		a.normalizeCmd(),
	)
	return root
}

// setup loads the configuration and builds the logger. A --debug flag on the
// command lowers the log level to debug unless --log-level is given.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if debug, err := cmd.Flags().GetBool("debug"); err == nil && debug {
		level = "debug"
	}
	if a.logLevel != "" {
		level = a.logLevel
	}

	logger, err := logging.New(level, cfg.PrettyLogs)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// run tags ctx with a run id and the command name, then calls fn.
func (a *app) run(cmd *cobra.Command, fn func(ctx context.Context, t *tasks.Tasks) error) error {
	ctx := appctx.NewRun(cmd.Context(), cmd.Name())
	log := a.logger.WithContext(ctx).WithFields(appctx.Fields(ctx))

	log.Debug("Running command")
	if err := fn(ctx, tasks.New(a.cfg, a.logger, a.out)); err != nil {
		if httperror.IsHTTPError(err) {
			log = log.WithField("status", database.StatusCode(err))
		}
		log.WithError(err).Error("Command failed")
		return err
	}
	return nil
}

func (a *app) createDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-db <dbFile>",
		Short: "Create a new database file (if needed)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, t *tasks.Tasks) error {
				return t.CreateDB(ctx, args[0])
			})
		},
	}
}

func (a *app) resetDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-db <dbFile>",
		Short: "Delete the database file and create it again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, t *tasks.Tasks) error {
				return t.ResetDB(ctx, args[0])
			})
		},
	}
}

func (a *app) importContributionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-contributions <dbFile> <csvFiles...>",
		Short: "Import contribution CSV files into the database",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, t *tasks.Tasks) error {
				_, err := t.ImportContributions(ctx, args[0], args[1:])
				return err
			})
		},
	}
}

func (a *app) importCureListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-cure-list <dbFile> <excelFile>",
		Short: "Import a cure list spreadsheet into the database",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, t *tasks.Tasks) error {
				_, err := t.ImportCureList(ctx, args[0], args[1])
				return err
			})
		},
	}
}

func (a *app) generateReportCmd() *cobra.Command {
	var opts tasks.ReportOptions
	cmd := &cobra.Command{
		Use:   "generate-report <dbFile>",
		Short: "Report contributions made by cure list voters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, t *tasks.Tasks) error {
				_, err := t.GenerateReport(ctx, args[0], opts)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&opts.Output, "output-file", "o", "", "write the report to a file instead of stdout")
	cmd.Flags().StringVar(&opts.Format, "format", "", "report format (text, html, json); defaults to the output file extension")
	cmd.Flags().BoolVarP(&opts.Debug, "debug", "d", false, "log normalization steps, validate the lexicon and dump the matches")
	return cmd
}

func (a *app) purgeContributionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge-contributions <dbFile>",
		Short: "Delete every contribution from the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, t *tasks.Tasks) error {
				_, err := t.PurgeContributions(ctx, args[0])
				return err
			})
		},
	}
}

func (a *app) purgeCureListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge-cure-list <dbFile>",
		Short: "Delete every cure list voter from the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, t *tasks.Tasks) error {
				_, err := t.PurgeCureList(ctx, args[0])
				return err
			})
		},
	}
}

func (a *app) validateLexiconCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-lexicon",
		Short: "Check the nickname lexicon for conflicting entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context, t *tasks.Tasks) error {
				return t.ValidateLexicon(ctx)
			})
		},
	}
}

func (a *app) normalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "normalize <name|address|zip> <value>",
		Short:     "Show how a value is normalized for matching",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{tasks.KindName, tasks.KindAddress, tasks.KindZip},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, t *tasks.Tasks) error {
				_, err := t.Normalize(ctx, args[0], args[1])
				return err
			})
		},
	}
}
