package paralleltests

import (
	"fmt"
	"os"
	"regexp"
	"runtime"
	"slices"
	"time"

	"github.com/fpbouchard/parallel-tests/types"
	"gopkg.in/yaml.v3"
)

// Weight source kinds accepted by Config.GroupBy.
const (
	// GroupBySteps weighs each feature file by its number of steps.
	GroupBySteps = "steps"

	// GroupByScenarios splits feature files into scenarios weighed by their steps.
	GroupByScenarios = "scenarios"
)

// SolverConfig controls the exact balancer.
type SolverConfig struct {
	// Disabled forces the greedy ("best effort") balancer even when a backend is installed.
	Disabled bool `yaml:"disabled"`

	// Backends lists solver backends in preference order. The first available one is used.
	// Known backends: "cbc", "glpsol".
	Backends []string `yaml:"backends"`

	// Paths optionally maps a backend name to an explicit executable path.
	// Backends without an entry are looked up on PATH.
	Paths map[string]string `yaml:"paths"`

	// RelativeGap is the relative optimality gap handed to the solver.
	// A small non-zero gap bounds solve time; 0 asks for a proven optimum.
	RelativeGap float64 `yaml:"relativeGap"`

	// AssignThreshold is the value above which an assignment variable reads as 1.
	// Must be in (0.5, 1].
	AssignThreshold float64 `yaml:"assignThreshold"`

	// Timeout bounds one grouping call (0 = no limit). Expiry aborts the call;
	// it never triggers a greedy retry.
	Timeout time.Duration `yaml:"timeout"`
}

// PlanConfig configures publishing of finished plans to a NATS JetStream KV bucket.
type PlanConfig struct {
	// URL is the NATS server URL. Empty disables publishing.
	URL string `yaml:"url"`

	// Bucket is the KV bucket holding plans.
	Bucket string `yaml:"bucket"`

	// TTL is how long plans remain in KV (0 = no expiration).
	TTL time.Duration `yaml:"ttl"`

	// OperationTimeout is the timeout for KV operations (get, put, delete).
	OperationTimeout time.Duration `yaml:"operationTimeout"`
}

// Config is the configuration for grouping runs.
//
// All duration fields accept standard Go duration strings like "30s", "5m", "1h".
type Config struct {
	// Groups is the number of groups (worker processes) to produce.
	// Defaults to the number of CPUs.
	Groups int `yaml:"groups"`

	// GroupBy selects the weight source: "steps" or "scenarios".
	GroupBy string `yaml:"groupBy"`

	// SingleProcess lists regular expressions; matching items are pinned to group 0.
	SingleProcess []string `yaml:"singleProcess"`

	// Isolate reserves group 0 for pinned items only.
	Isolate bool `yaml:"isolate"`

	// IgnoreTagPattern excludes scenarios whose tags match this regular expression.
	IgnoreTagPattern string `yaml:"ignoreTagPattern"`

	// Solver controls the exact balancer.
	Solver SolverConfig `yaml:"solver"`

	// Plan controls plan publishing.
	Plan PlanConfig `yaml:"plan"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		Groups:  runtime.NumCPU(),
		GroupBy: GroupBySteps,
		Solver: SolverConfig{
			Backends:        []string{"cbc", "glpsol"},
			RelativeGap:     0.002,
			AssignThreshold: 0.99,
		},
		Plan: PlanConfig{
			Bucket:           "grouper-plans",
			TTL:              24 * time.Hour,
			OperationTimeout: 10 * time.Second,
		},
	}
}

// SetDefaults fills in missing configuration values with defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Groups == 0 {
		cfg.Groups = defaults.Groups
	}
	if cfg.GroupBy == "" {
		cfg.GroupBy = defaults.GroupBy
	}
	if len(cfg.Solver.Backends) == 0 {
		cfg.Solver.Backends = defaults.Solver.Backends
	}
	if cfg.Solver.RelativeGap == 0 {
		cfg.Solver.RelativeGap = defaults.Solver.RelativeGap
	}
	if cfg.Solver.AssignThreshold == 0 {
		cfg.Solver.AssignThreshold = defaults.Solver.AssignThreshold
	}
	if cfg.Plan.Bucket == "" {
		cfg.Plan.Bucket = defaults.Plan.Bucket
	}
	if cfg.Plan.OperationTimeout == 0 {
		cfg.Plan.OperationTimeout = defaults.Plan.OperationTimeout
	}
	// Note: Plan.TTL of 0 is valid (no expiration), so we don't apply default
	// Note: Solver.Timeout of 0 is valid (no limit)
}

// Validate checks configuration constraints and returns error for invalid values.
//
// Returns:
//   - error: Validation error wrapping a configuration sentinel, nil if valid
func (cfg *Config) Validate() error {
	if cfg.Groups < 1 {
		return fmt.Errorf("%w: got %d", types.ErrInvalidGroupCount, cfg.Groups)
	}

	if cfg.GroupBy != GroupBySteps && cfg.GroupBy != GroupByScenarios {
		return fmt.Errorf("%w: groupBy must be %q or %q, got %q",
			types.ErrInvalidConfig, GroupBySteps, GroupByScenarios, cfg.GroupBy)
	}

	if _, err := compilePatterns(cfg.SingleProcess); err != nil {
		return err
	}

	if cfg.IgnoreTagPattern != "" {
		if _, err := regexp.Compile(cfg.IgnoreTagPattern); err != nil {
			return fmt.Errorf("%w: ignoreTagPattern: %w", types.ErrInvalidConfig, err)
		}
	}

	for _, name := range cfg.Solver.Backends {
		if !slices.Contains(SolverNames(), name) {
			return fmt.Errorf("%w: %q", types.ErrUnknownSolver, name)
		}
	}
	for name := range cfg.Solver.Paths {
		if !slices.Contains(SolverNames(), name) {
			return fmt.Errorf("%w: %q in solver paths", types.ErrUnknownSolver, name)
		}
	}

	if cfg.Solver.RelativeGap < 0 || cfg.Solver.RelativeGap >= 1 {
		return fmt.Errorf("%w: relativeGap must be in [0, 1), got %v", types.ErrInvalidConfig, cfg.Solver.RelativeGap)
	}

	if cfg.Solver.AssignThreshold <= 0.5 || cfg.Solver.AssignThreshold > 1 {
		return fmt.Errorf("%w: assignThreshold must be in (0.5, 1], got %v", types.ErrInvalidConfig, cfg.Solver.AssignThreshold)
	}

	if cfg.Solver.Timeout < 0 {
		return fmt.Errorf("%w: solver timeout must be >= 0, got %v", types.ErrInvalidConfig, cfg.Solver.Timeout)
	}

	if cfg.Plan.TTL < 0 {
		return fmt.Errorf("%w: plan ttl must be >= 0, got %v", types.ErrInvalidConfig, cfg.Plan.TTL)
	}

	if cfg.Plan.URL != "" && cfg.Plan.Bucket == "" {
		return fmt.Errorf("%w: plan bucket is required when a NATS url is set", types.ErrInvalidConfig)
	}

	return nil
}

// Constraints returns the placement constraints described by the configuration.
func (cfg *Config) Constraints() Constraints {
	return Constraints{
		SingleProcess: slices.Clone(cfg.SingleProcess),
		Isolate:       cfg.Isolate,
	}
}

// LoadConfig loads configuration from a YAML file.
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded configuration with defaults applied
//   - error: Error if file cannot be read, parsed or validated
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config file: %w", types.ErrInvalidConfig, err)
	}

	SetDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// TestConfig returns a configuration for fast, hermetic test runs.
//
// The solver is disabled so results never depend on installed backends.
//
// Returns:
//   - Config: Configuration with two groups and the greedy balancer
func TestConfig() Config {
	cfg := DefaultConfig()
	cfg.Groups = 2
	cfg.Solver.Disabled = true
	cfg.Plan.TTL = time.Minute

	return cfg
}
