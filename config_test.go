package paralleltests

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/fpbouchard/parallel-tests/types"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, runtime.NumCPU(), cfg.Groups)
	require.Equal(t, GroupBySteps, cfg.GroupBy)
	require.False(t, cfg.Isolate)
	require.False(t, cfg.Solver.Disabled)
	require.Equal(t, []string{"cbc", "glpsol"}, cfg.Solver.Backends)
	require.Equal(t, 0.002, cfg.Solver.RelativeGap)
	require.Equal(t, 0.99, cfg.Solver.AssignThreshold)
	require.Zero(t, cfg.Solver.Timeout)
	require.Equal(t, "grouper-plans", cfg.Plan.Bucket)
	require.Equal(t, 24*time.Hour, cfg.Plan.TTL)
	require.Equal(t, 10*time.Second, cfg.Plan.OperationTimeout)
	require.NoError(t, cfg.Validate())
}

func TestSetDefaults(t *testing.T) {
	t.Run("applies defaults to empty config", func(t *testing.T) {
		cfg := Config{}
		SetDefaults(&cfg)

		require.Equal(t, runtime.NumCPU(), cfg.Groups)
		require.Equal(t, GroupBySteps, cfg.GroupBy)
		require.Equal(t, []string{"cbc", "glpsol"}, cfg.Solver.Backends)
		require.Equal(t, 0.99, cfg.Solver.AssignThreshold)
		require.Equal(t, "grouper-plans", cfg.Plan.Bucket)
		require.Zero(t, cfg.Plan.TTL, "zero TTL means no expiration")
	})

	t.Run("preserves custom values", func(t *testing.T) {
		cfg := Config{
			Groups:           3,
			GroupBy:          GroupByScenarios,
			SingleProcess:    []string{"^a"},
			Isolate:          true,
			IgnoreTagPattern: "@wip",
			Solver: SolverConfig{
				Backends:        []string{"glpsol"},
				RelativeGap:     0.05,
				AssignThreshold: 0.9,
				Timeout:         time.Minute,
			},
			Plan: PlanConfig{
				URL:              "nats://localhost:4222",
				Bucket:           "plans",
				TTL:              time.Hour,
				OperationTimeout: 3 * time.Second,
			},
		}
		want := cfg
		SetDefaults(&cfg)

		require.Equal(t, want, cfg)
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		err    error
	}{
		{name: "zero groups", mutate: func(c *Config) { c.Groups = 0 }, err: types.ErrInvalidGroupCount},
		{name: "unknown group by", mutate: func(c *Config) { c.GroupBy = "filesize" }, err: types.ErrInvalidConfig},
		{name: "bad pattern", mutate: func(c *Config) { c.SingleProcess = []string{"("} }, err: types.ErrInvalidPattern},
		{name: "bad tag pattern", mutate: func(c *Config) { c.IgnoreTagPattern = "[" }, err: types.ErrInvalidConfig},
		{name: "unknown backend", mutate: func(c *Config) { c.Solver.Backends = []string{"cplex"} }, err: types.ErrUnknownSolver},
		{name: "unknown path", mutate: func(c *Config) { c.Solver.Paths = map[string]string{"gurobi": "/x"} }, err: types.ErrUnknownSolver},
		{name: "negative gap", mutate: func(c *Config) { c.Solver.RelativeGap = -0.1 }, err: types.ErrInvalidConfig},
		{name: "gap too large", mutate: func(c *Config) { c.Solver.RelativeGap = 1 }, err: types.ErrInvalidConfig},
		{name: "threshold too low", mutate: func(c *Config) { c.Solver.AssignThreshold = 0.5 }, err: types.ErrInvalidConfig},
		{name: "threshold too high", mutate: func(c *Config) { c.Solver.AssignThreshold = 1.5 }, err: types.ErrInvalidConfig},
		{name: "negative timeout", mutate: func(c *Config) { c.Solver.Timeout = -time.Second }, err: types.ErrInvalidConfig},
		{name: "negative ttl", mutate: func(c *Config) { c.Plan.TTL = -time.Second }, err: types.ErrInvalidConfig},
		{name: "url without bucket", mutate: func(c *Config) { c.Plan.URL = "nats://x"; c.Plan.Bucket = "" }, err: types.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.ErrorIs(t, err, tt.err)
			require.True(t, IsConfigurationError(err))
		})
	}
}

func TestConfig_Constraints(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SingleProcess = []string{"^a", "^b"}
	cfg.Isolate = true

	c := cfg.Constraints()
	require.Equal(t, []string{"^a", "^b"}, c.SingleProcess)
	require.True(t, c.Isolate)

	c.SingleProcess[0] = "changed"
	require.Equal(t, "^a", cfg.SingleProcess[0], "constraints must not alias the config")
}

// TestConfig_YAML demonstrates that time.Duration works directly with YAML unmarshaling
func TestConfig_YAML(t *testing.T) {
	yamlConfig := `
groups: 6
groupBy: scenarios
singleProcess:
  - ^features/db/
  - _serial\.feature$
isolate: true
ignoreTagPattern: "@(wip|manual)"
solver:
  backends: [glpsol, cbc]
  paths:
    cbc: /opt/coin/bin/cbc
  relativeGap: 0.01
  assignThreshold: 0.95
  timeout: 2m
plan:
  url: nats://ci-nats:4222
  bucket: ci-plans
  ttl: 1h
  operationTimeout: 5s
`

	var cfg Config
	err := yaml.Unmarshal([]byte(yamlConfig), &cfg)
	require.NoError(t, err)

	require.Equal(t, 6, cfg.Groups)
	require.Equal(t, GroupByScenarios, cfg.GroupBy)
	require.Equal(t, []string{"^features/db/", `_serial\.feature$`}, cfg.SingleProcess)
	require.True(t, cfg.Isolate)
	require.Equal(t, "@(wip|manual)", cfg.IgnoreTagPattern)
	require.Equal(t, []string{"glpsol", "cbc"}, cfg.Solver.Backends)
	require.Equal(t, "/opt/coin/bin/cbc", cfg.Solver.Paths["cbc"])
	require.Equal(t, 0.01, cfg.Solver.RelativeGap)
	require.Equal(t, 0.95, cfg.Solver.AssignThreshold)
	require.Equal(t, 2*time.Minute, cfg.Solver.Timeout)
	require.Equal(t, "nats://ci-nats:4222", cfg.Plan.URL)
	require.Equal(t, "ci-plans", cfg.Plan.Bucket)
	require.Equal(t, time.Hour, cfg.Plan.TTL)
	require.Equal(t, 5*time.Second, cfg.Plan.OperationTimeout)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("partial file gets defaults", func(t *testing.T) {
		path := filepath.Join(dir, "partial.yaml")
		require.NoError(t, os.WriteFile(path, []byte("groups: 3\nsolver:\n  disabled: true\n"), 0o600))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		require.Equal(t, 3, cfg.Groups)
		require.True(t, cfg.Solver.Disabled)
		require.Equal(t, GroupBySteps, cfg.GroupBy)
		require.Equal(t, 0.002, cfg.Solver.RelativeGap)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(dir, "nope.yaml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("groups: [1, 2\n"), 0o600))

		_, err := LoadConfig(path)
		require.ErrorIs(t, err, types.ErrInvalidConfig)
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(dir, "invalid.yaml")
		require.NoError(t, os.WriteFile(path, []byte("groups: -2\n"), 0o600))

		_, err := LoadConfig(path)
		require.ErrorIs(t, err, types.ErrInvalidGroupCount)
	})
}

func TestTestConfig(t *testing.T) {
	cfg := TestConfig()

	require.Equal(t, 2, cfg.Groups)
	require.True(t, cfg.Solver.Disabled)
	require.NoError(t, cfg.Validate())
}
