package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	paralleltests "github.com/fpbouchard/parallel-tests"
	"github.com/fpbouchard/parallel-tests/internal/kvutil"
	"github.com/fpbouchard/parallel-tests/internal/metrics"
	"github.com/fpbouchard/parallel-tests/internal/natsutil"
	"github.com/fpbouchard/parallel-tests/internal/plan"
	"github.com/fpbouchard/parallel-tests/source"
	"github.com/fpbouchard/parallel-tests/types"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

const featureExt = ".feature"

type splitArgs struct {
	groups           int
	groupBy          string
	singleProcess    []string
	isolate          bool
	ignoreTagPattern string
	noSolver         bool
	solvers          []string
	solverTimeout    time.Duration
	metricsFile      string
}

func newSplitCommand(rootArgs *RootArgs) *cobra.Command {
	cmdArgs := &splitArgs{}
	cmd := &cobra.Command{
		Use:   "split [flags] <file-or-dir>...",
		Short: "Split feature files into balanced groups",
		Long: "Split weighs the given feature files (directories are searched for *.feature)\n" +
			"and prints one line per group. With --nats-url and --run-id the plan is also\n" +
			"published so each worker can fetch its own group.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(cmd, rootArgs, cmdArgs, args)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&cmdArgs.groups, "groups", "n", 0, "number of groups (default: number of CPUs)")
	flags.StringVar(&cmdArgs.groupBy, "group-by", "", "weight source: steps or scenarios")
	flags.StringArrayVar(&cmdArgs.singleProcess, "single-process", nil,
		"regular expression of items pinned to group 0 (repeatable)")
	flags.BoolVar(&cmdArgs.isolate, "isolate", false, "reserve group 0 for single-process items")
	flags.StringVar(&cmdArgs.ignoreTagPattern, "ignore-tag-pattern", "", "skip scenarios with a tag matching this expression")
	flags.BoolVar(&cmdArgs.noSolver, "no-solver", false, "always use the best effort balancer")
	flags.StringSliceVar(&cmdArgs.solvers, "solvers", nil, "solver backends in preference order (cbc,glpsol)")
	flags.DurationVar(&cmdArgs.solverTimeout, "solver-timeout", 0, "abort grouping after this long (0 = no limit)")
	flags.StringVar(&cmdArgs.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")

	return cmd
}

// apply overrides configuration values with the flags given on the command line.
func (a *splitArgs) apply(cmd *cobra.Command, cfg *paralleltests.Config) {
	flags := cmd.Flags()
	if flags.Changed("groups") {
		cfg.Groups = a.groups
	}
	if flags.Changed("group-by") {
		cfg.GroupBy = a.groupBy
	}
	if flags.Changed("single-process") {
		cfg.SingleProcess = append(cfg.SingleProcess, a.singleProcess...)
	}
	if flags.Changed("isolate") {
		cfg.Isolate = a.isolate
	}
	if flags.Changed("ignore-tag-pattern") {
		cfg.IgnoreTagPattern = a.ignoreTagPattern
	}
	if flags.Changed("no-solver") {
		cfg.Solver.Disabled = a.noSolver
	}
	if flags.Changed("solvers") {
		cfg.Solver.Backends = a.solvers
	}
	if flags.Changed("solver-timeout") {
		cfg.Solver.Timeout = a.solverTimeout
	}
}

func runSplit(cmd *cobra.Command, rootArgs *RootArgs, cmdArgs *splitArgs, args []string) error {
	ctx := cmd.Context()
	logger := rootArgs.logger(cmd.ErrOrStderr())

	if rootArgs.Format != formatText && rootArgs.Format != formatJSON {
		return fmt.Errorf("%w: unknown format %q", types.ErrInvalidConfig, rootArgs.Format)
	}

	cfg, err := rootArgs.loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("groups") && cmdArgs.groups < 1 {
		return fmt.Errorf("%w: got %d", types.ErrInvalidGroupCount, cmdArgs.groups)
	}
	cmdArgs.apply(cmd, cfg)

	files, err := findFeatureFiles(args)
	if err != nil {
		return err
	}
	logger.Debug("feature files collected", "count", len(files))

	var src types.WeightSource
	srcOpts := []source.Option{
		source.WithIgnoreTagPattern(cfg.IgnoreTagPattern),
		source.WithLogger(logger),
	}
	if cfg.GroupBy == paralleltests.GroupByScenarios {
		src = source.NewScenarios(files, srcOpts...)
	} else {
		src = source.NewSteps(files, srcOpts...)
	}

	opts := []paralleltests.Option{paralleltests.WithLogger(logger)}
	var registry *prometheus.Registry
	var collector types.MetricsCollector
	if cmdArgs.metricsFile != "" {
		registry = prometheus.NewRegistry()
		collector = metrics.NewPrometheus(registry, "")
		opts = append(opts, paralleltests.WithMetrics(collector))
	}

	grouper, err := paralleltests.NewGrouperFromConfig(cfg, opts...)
	if err != nil {
		return err
	}

	partition, err := grouper.PartitionSource(ctx, src, cfg.Groups, cfg.Constraints())
	if err != nil {
		return err
	}

	if err := writePartition(cmd.OutOrStdout(), rootArgs.Format, partition); err != nil {
		return err
	}

	if cfg.Plan.URL != "" && rootArgs.RunID != "" {
		if err := publishPlan(ctx, cfg.Plan, rootArgs.RunID, partition, logger, collector); err != nil {
			return err
		}
	} else if rootArgs.RunID != "" {
		logger.Warn("run id given without a NATS url, plan not published", "run_id", rootArgs.RunID)
	}

	if registry != nil {
		if err := prometheus.WriteToTextfile(cmdArgs.metricsFile, registry); err != nil {
			return fmt.Errorf("failed to write metrics file: %w", err)
		}
	}

	return nil
}

func publishPlan(
	ctx context.Context,
	cfg paralleltests.PlanConfig,
	runID string,
	partition *types.Partition,
	logger types.Logger,
	collector types.PlanMetrics,
) error {
	if err := plan.ValidateRunID(runID); err != nil {
		return err
	}

	nc, err := natsutil.Connect(cfg.URL, "grouper-split", cfg.OperationTimeout, logger)
	if err != nil {
		return err
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.OperationTimeout)
	defer cancel()

	kv, err := kvutil.EnsureKVBucketWithRetry(ctx, js, kvutil.PlanBucketConfig(cfg.Bucket, cfg.TTL), 3)
	if err != nil {
		return natsutil.Classify(types.ErrPublishFailed, "open bucket "+cfg.Bucket, err)
	}

	_, err = plan.NewPublisher(kv, logger, collector).Publish(ctx, runID, partition)

	return err
}

// findFeatureFiles expands directory arguments into the feature files below them.
// Files named explicitly are kept whatever their extension.
func findFeatureFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, featureExt) {
				files = append(files, path)
			}

			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

func writePartition(w io.Writer, format string, partition *types.Partition) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(partition)
	}

	for _, g := range partition.Groups {
		if _, err := fmt.Fprintln(w, strings.Join(g.Items, " ")); err != nil {
			return err
		}
	}

	return nil
}
