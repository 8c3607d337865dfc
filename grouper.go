package paralleltests

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/fpbouchard/parallel-tests/internal/logging"
	"github.com/fpbouchard/parallel-tests/internal/metrics"
	"github.com/fpbouchard/parallel-tests/mip"
	"github.com/fpbouchard/parallel-tests/strategy"
	"github.com/fpbouchard/parallel-tests/types"
)

// Failure reasons reported to MetricsCollector.RecordPartitionFailure.
const (
	failureConfig = "config"
	failureSolver = "solver"
	failureSource = "source"
)

// Grouper partitions weighted items into a fixed number of balanced groups.
//
// A Grouper holds no state between calls and is safe for concurrent use as long
// as its solver backends are.
type Grouper struct {
	solvers         []mip.Solver
	logger          Logger
	metrics         MetricsCollector
	relativeGap     float64
	assignThreshold float64
	solveTimeout    time.Duration
}

// NewGrouper creates a new Grouper.
//
// Parameters:
//   - opts: Optional configuration (WithSolvers, WithLogger, WithMetrics,
//     WithRelativeGap, WithAssignThreshold, WithSolveTimeout)
//
// Returns:
//   - *Grouper: Initialized grouper
//
// Example:
//
//	g := paralleltests.NewGrouper(paralleltests.WithSolvers(cbc.New()))
//	p, err := g.Partition(ctx, items, 4, paralleltests.Constraints{})
func NewGrouper(opts ...Option) *Grouper {
	options := &grouperOptions{
		relativeGap:     strategy.DefaultRelativeGap,
		assignThreshold: strategy.DefaultAssignThreshold,
	}
	for _, opt := range opts {
		opt(options)
	}

	// Provide safe defaults for optional dependencies to avoid nil checks everywhere
	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	loggerInstance := options.logger
	if loggerInstance == nil {
		loggerInstance = logging.NewNop()
	}

	return &Grouper{
		solvers:         options.solvers,
		logger:          loggerInstance,
		metrics:         metricsCollector,
		relativeGap:     options.relativeGap,
		assignThreshold: options.assignThreshold,
		solveTimeout:    options.solveTimeout,
	}
}

// NewGrouperFromConfig creates a Grouper whose solver settings come from cfg.
//
// Defaults are applied to cfg and it is validated first. Options given here are
// applied after the configuration: scalar settings override it and WithSolvers
// appends backends after the configured ones.
//
// Parameters:
//   - cfg: Configuration (modified in place by SetDefaults)
//   - opts: Additional options
//
// Returns:
//   - *Grouper: Initialized grouper
//   - error: Configuration error
func NewGrouperFromConfig(cfg *Config, opts ...Option) (*Grouper, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}

	SetDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// The logger option may come later in opts; resolve it before building backends.
	probe := &grouperOptions{}
	for _, opt := range opts {
		opt(probe)
	}

	solvers, err := SolversFromConfig(cfg.Solver, probe.logger)
	if err != nil {
		return nil, err
	}

	base := []Option{
		WithSolvers(solvers...),
		WithRelativeGap(cfg.Solver.RelativeGap),
		WithAssignThreshold(cfg.Solver.AssignThreshold),
		WithSolveTimeout(cfg.Solver.Timeout),
	}

	return NewGrouper(append(base, opts...)...), nil
}

// Partition distributes items into numGroups groups, minimizing the heaviest group.
//
// The algorithm:
//  1. Validate the group count, the pinning patterns and the items
//  2. Select the balancer once: exact with the first available solver, else greedy
//  3. Pin items matching any single-process pattern to group 0 (first match wins)
//  4. Balance the remaining items over all groups, or groups 1..N-1 when isolated
//  5. Sort each group's identifiers
//
// Parameters:
//   - ctx: Context for cancellation; canceling aborts a running solver
//   - items: Weighted items, read-only; identifiers must be unique
//   - numGroups: Number of groups, at least 1
//   - constraints: Pinning patterns and the isolate flag
//
// Returns:
//   - *Partition: Exactly numGroups finalized groups
//   - error: A configuration error (see IsConfigurationError) or a fatal balancing
//     error; no partial partition is ever returned
//
// Example:
//
//	p, err := g.Partition(ctx, items, 4, paralleltests.Constraints{
//	    SingleProcess: []string{`^features/slow/`},
//	    Isolate:       true,
//	})
func (g *Grouper) Partition(ctx context.Context, items []Item, numGroups int, constraints Constraints) (*Partition, error) {
	patterns, err := validate(items, numGroups, constraints)
	if err != nil {
		g.metrics.RecordPartitionFailure(failureConfig)
		return nil, err
	}

	balancer := g.selectBalancer()

	pinned, remaining := splitPinned(items, patterns)

	groups := make([]*types.Group, numGroups)
	for i := range groups {
		groups[i] = &types.Group{}
	}

	targets := groups
	if constraints.Isolate {
		targets = groups[1:]
	}
	if len(targets) == 0 && len(remaining) > 0 {
		g.metrics.RecordPartitionFailure(failureConfig)
		return nil, fmt.Errorf("%w: isolate with %d group leaves %d unpinned items without a group",
			types.ErrNoTargetGroups, numGroups, len(remaining))
	}

	for _, item := range pinned {
		groups[0].AddItem(item)
	}

	if g.solveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.solveTimeout)
		defer cancel()
	}

	g.logger.Info("balancing groups",
		"strategy", balancer.Name(),
		"items", len(remaining),
		"pinned", len(pinned),
		"groups", len(targets),
	)

	if err := balancer.Assign(ctx, remaining, targets); err != nil {
		g.metrics.RecordPartitionFailure(failureSolver)
		g.logger.Error("balancing failed", "strategy", balancer.Name(), "error", err)

		return nil, err
	}

	partition := &Partition{Groups: make([]types.Group, numGroups), Strategy: balancer.Name()}
	for i, group := range groups {
		group.Finalize()
		partition.Groups[i] = *group
		g.metrics.RecordGroupWeight(i, group.Weight)
		g.logger.Info("group total weight", "strategy", balancer.Name(), "group", i, "weight", group.Weight, "items", group.Len())
	}

	g.metrics.RecordPartition(partition.Strategy, numGroups, len(items), partition.Makespan())
	g.logger.Debug("partition complete", "fingerprint", partition.Fingerprint(), "makespan", partition.Makespan())

	return partition, nil
}

// PartitionSource pulls items from src and partitions them.
//
// Parameters:
//   - ctx: Context for cancellation
//   - src: Weight source (by steps, by scenarios, static)
//   - numGroups: Number of groups, at least 1
//   - constraints: Pinning patterns and the isolate flag
//
// Returns:
//   - *Partition: Exactly numGroups finalized groups
//   - error: ErrWeightSourceRequired, a wrapped source error, or any Partition error
func (g *Grouper) PartitionSource(ctx context.Context, src WeightSource, numGroups int, constraints Constraints) (*Partition, error) {
	if src == nil {
		g.metrics.RecordPartitionFailure(failureConfig)
		return nil, ErrWeightSourceRequired
	}

	items, err := src.Items(ctx)
	if err != nil {
		g.metrics.RecordPartitionFailure(failureSource)
		return nil, fmt.Errorf("failed to load weighted items: %w", err)
	}

	return g.Partition(ctx, items, numGroups, constraints)
}

// selectBalancer probes the solver backends in order. The choice holds for the
// whole call.
func (g *Grouper) selectBalancer() Balancer {
	for _, s := range g.solvers {
		if s == nil || !s.Available() {
			continue
		}

		return strategy.NewExact(s,
			strategy.WithRelativeGap(g.relativeGap),
			strategy.WithAssignThreshold(g.assignThreshold),
			strategy.WithExactLogger(g.logger),
			strategy.WithExactMetrics(g.metrics),
		)
	}

	if len(g.solvers) > 0 {
		g.logger.Warn("no solver backend available, using best effort", "configured", len(g.solvers))
	}
	g.metrics.RecordBestEffortFallback()

	return strategy.NewGreedy(strategy.WithGreedyLogger(g.logger))
}

// validate reports configuration errors before any assignment work.
func validate(items []Item, numGroups int, constraints Constraints) ([]*regexp.Regexp, error) {
	if numGroups < 1 {
		return nil, fmt.Errorf("%w: got %d", types.ErrInvalidGroupCount, numGroups)
	}

	patterns, err := compilePatterns(constraints.SingleProcess)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if !item.Valid() {
			return nil, fmt.Errorf("%w: %q has weight %v", types.ErrInvalidWeight, item.ID, item.Weight)
		}
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("%w: %q", types.ErrDuplicateItem, item.ID)
		}
		seen[item.ID] = struct{}{}
	}

	return patterns, nil
}

func compilePatterns(exprs []string) ([]*regexp.Regexp, error) {
	patterns := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", types.ErrInvalidPattern, expr, err)
		}
		patterns = append(patterns, re)
	}

	return patterns, nil
}

// splitPinned removes items matching the patterns, pattern by pattern, keeping
// input order within each pattern's matches.
func splitPinned(items []Item, patterns []*regexp.Regexp) ([]Item, []Item) {
	remaining := items
	var pinned []Item
	for _, re := range patterns {
		var rest []Item
		for _, item := range remaining {
			if re.MatchString(item.ID) {
				pinned = append(pinned, item)
			} else {
				rest = append(rest, item)
			}
		}
		remaining = rest
	}

	return pinned, remaining
}
