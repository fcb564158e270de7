package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dockfix/dockfix/internal/artifact"
	"github.com/dockfix/dockfix/internal/config"
	"github.com/dockfix/dockfix/internal/constants"
	"github.com/dockfix/dockfix/internal/domain"
	"github.com/dockfix/dockfix/internal/engine"
	"github.com/dockfix/dockfix/internal/errors"
	"github.com/dockfix/dockfix/internal/fix"
	"github.com/dockfix/dockfix/internal/pattern"
	"github.com/dockfix/dockfix/internal/report"
	"github.com/dockfix/dockfix/internal/runner"
	"github.com/dockfix/dockfix/internal/signal"
	"github.com/dockfix/dockfix/internal/tui"
)

// repairFlags holds flags specific to the repair command.
type repairFlags struct {
	tier        string
	concurrency int
	reportDir   string
	inPlace     bool
	builder     string
	timeout     time.Duration
	validate    string
}

// AddRepairCommand adds the repair command to the root command.
func AddRepairCommand(root *cobra.Command, global *GlobalFlags) {
	flags := &repairFlags{}

	cmd := &cobra.Command{
		Use:   "repair <dockerfile> [dockerfile...]",
		Short: "Run the build and iteratively repair known failures",
		Long: `Repair runs the configured build command against each Dockerfile and,
when the build fails, classifies the output against the error pattern table.
A matching pattern applies exactly one fix, then the build is retried with
the modified Dockerfile. The loop stops on success, on an unmatched error,
or when the tier's iteration budget is exhausted.

Repaired Dockerfiles are written next to the original with a .repaired
suffix unless --in-place is given. Independent Dockerfiles are repaired
in parallel; iterations within one run are always sequential.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepair(cmd, args, flags, global)
		},
	}

	cmd.Flags().StringVarP(&flags.tier, "tier", "t", "", "complexity tier: simple, medium, or complex")
	cmd.Flags().IntVarP(&flags.concurrency, "concurrency", "c", 0, "max Dockerfiles repaired in parallel")
	cmd.Flags().StringVar(&flags.reportDir, "report-dir", "", "directory for build-result.json (per Dockerfile)")
	cmd.Flags().BoolVar(&flags.inPlace, "in-place", false, "overwrite the original Dockerfile on success")
	cmd.Flags().StringVar(&flags.builder, "builder", "", "build command to run (overrides config)")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "per-attempt build timeout (overrides config)")
	cmd.Flags().StringVar(&flags.validate, "validate", "", "probe command run after a successful build; failure output re-enters the repair loop")

	root.AddCommand(cmd)
}

// runRepair executes the repair command across one or more Dockerfiles.
func runRepair(cmd *cobra.Command, args []string, flags *repairFlags, global *GlobalFlags) error {
	tui.CheckNoColor()
	logger := GetLogger()
	out := tui.NewOutput(cmd.OutOrStdout(), global.Output)

	handler := signal.NewHandler(cmd.Context())
	defer handler.Stop()
	ctx := handler.Context()

	cfg, err := loadRepairConfig(ctx, flags)
	if err != nil {
		return err
	}

	tier, ok := constants.ParseTier(cfg.Repair.Tier)
	if !ok {
		return errors.Wrapf(errors.ErrInvalidTier, "tier %q must be one of %v", cfg.Repair.Tier, constants.Tiers())
	}

	table, err := buildPatternTable(cfg)
	if err != nil {
		return err
	}

	logger.Info().
		Int("dockerfiles", len(args)).
		Str("tier", tier.String()).
		Int("patterns", table.Len()).
		Msg("starting repair")

	results := make([]*domain.RunResult, len(args))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Repair.Concurrency)

	for i, path := range args {
		g.Go(func() error {
			result, runErr := repairOne(gctx, path, cfg, table, tier, flags, logger)
			results[i] = result
			// Terminal non-success outcomes still produced a result and a
			// report; only infrastructure faults abort the whole group.
			if runErr != nil && result == nil {
				return errors.Wrapf(runErr, "repair of %s aborted", path)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		select {
		case <-handler.Interrupted():
			out.Warning("interrupted, partial results may have been written")
		default:
		}
		return err
	}

	return summarize(out, args, results)
}

// loadRepairConfig loads layered config and applies repair flag overrides.
func loadRepairConfig(ctx context.Context, flags *repairFlags) (*config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}

	if flags.tier != "" {
		cfg.Repair.Tier = flags.tier
	}
	if flags.concurrency > 0 {
		cfg.Repair.Concurrency = flags.concurrency
	}
	if flags.reportDir != "" {
		cfg.Repair.ReportDir = flags.reportDir
	}
	if flags.builder != "" {
		cfg.Build.Command = flags.builder
	}
	if flags.timeout > 0 {
		cfg.Build.Timeout = flags.timeout
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildPatternTable assembles the pattern table from built-ins, disabled
// categories, and any user pattern file. User patterns are appended after the
// built-ins so built-in priority is preserved.
func buildPatternTable(cfg *config.Config) (*pattern.Table, error) {
	table := pattern.Default()

	if len(cfg.Patterns.DisabledCategories) > 0 {
		categories := make([]pattern.Category, 0, len(cfg.Patterns.DisabledCategories))
		for _, c := range cfg.Patterns.DisabledCategories {
			categories = append(categories, pattern.Category(c))
		}
		filtered, err := table.WithoutCategories(categories...)
		if err != nil {
			return nil, err
		}
		table = filtered
	}

	if cfg.Patterns.ExtraFile == "" {
		return table, nil
	}

	extras, err := pattern.LoadFile(cfg.Patterns.ExtraFile)
	if err != nil {
		return nil, err
	}
	return pattern.NewTable(append(table.Patterns(), extras...))
}

// repairOne runs the full repair loop for a single Dockerfile and writes its
// report and repaired artifact.
func repairOne(ctx context.Context, path string, cfg *config.Config, table *pattern.Table, tier constants.ComplexityTier, flags *repairFlags, logger zerolog.Logger) (*domain.RunResult, error) {
	runLogger := logger.With().Str("dockerfile", path).Logger()

	art, err := artifact.Load(path)
	if err != nil {
		return nil, err
	}

	buildRunner := runner.NewRunner(cfg.Build.Command,
		runner.WithTimeout(cfg.Build.Timeout),
		runner.WithTailBytes(cfg.Build.OutputTailBytes),
		runner.WithLogger(runLogger),
	)

	engineOpts := []engine.Option{
		engine.WithApplicator(fix.NewApplicator(fix.WithLogger(runLogger))),
		engine.WithBudgets(cfg.Repair.Budgets.Budgets()),
		engine.WithLogger(runLogger),
	}
	if flags.validate != "" {
		engineOpts = append(engineOpts, engine.WithValidator(engine.NewCommandValidator(flags.validate)))
	}

	eng, err := engine.New(buildRunner, table, engineOpts...)
	if err != nil {
		return nil, err
	}

	result, runErr := eng.Run(ctx, art, tier)
	if result == nil {
		// Infrastructure fault or cancellation: no iterations to report.
		return nil, runErr
	}

	if err := persistRun(result, path, cfg, flags.inPlace, runLogger); err != nil {
		return result, err
	}

	return result, runErr
}

// persistRun writes the run report and, when the artifact changed, the
// repaired Dockerfile.
func persistRun(result *domain.RunResult, path string, cfg *config.Config, inPlace bool, logger zerolog.Logger) error {
	writer := report.NewWriter(report.WithLogger(logger))
	reportDir := cfg.Repair.ReportDir
	if reportDir == "." {
		reportDir = filepath.Dir(path)
	}
	if _, err := writer.Write(result, reportDir); err != nil {
		return err
	}

	if result.FinalArtifact == nil || result.FinalArtifact.Version() == 0 {
		return nil
	}

	target := path + ".repaired"
	if inPlace {
		target = path
	}
	if err := result.FinalArtifact.Save(target); err != nil {
		return err
	}
	logger.Info().Str("path", target).Int("version", result.FinalArtifact.Version()).Msg("wrote repaired dockerfile")
	return nil
}

// summarize renders per-Dockerfile run summaries and decides the exit error.
func summarize(out tui.Output, paths []string, results []*domain.RunResult) error {
	writer := report.NewWriter()
	var firstFailure error

	for i, result := range results {
		if result == nil {
			continue
		}

		if err := out.Run(paths[i], result, writer.Build(result)); err != nil {
			return err
		}

		if result.Outcome != constants.RunStateSuccess && firstFailure == nil {
			firstFailure = outcomeError(result)
		}
	}

	return firstFailure
}

// outcomeError maps a terminal non-success outcome to its sentinel error.
// Failed outcomes also wrap ErrBuildFailed so callers can test for "the
// build is still broken" without enumerating the terminal causes.
func outcomeError(result *domain.RunResult) error {
	switch result.Outcome {
	case constants.RunStatePartialSuccess:
		return fmt.Errorf("%w: %d iterations used", errors.ErrBudgetExhausted, result.TotalIterations)
	case constants.RunStateFailed:
		for _, iter := range result.Iterations {
			if iter.Status == constants.IterationFixFailed {
				return fmt.Errorf("%w: %w: pattern %s", errors.ErrBuildFailed, errors.ErrFixApplication, iter.PatternID)
			}
		}
		return fmt.Errorf("%w: %w", errors.ErrBuildFailed, errors.ErrUnmatchedFailure)
	case constants.RunStateRunning, constants.RunStateSuccess:
		return nil
	}
	return stderrors.New("unknown run outcome")
}
