package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	grouptest "github.com/fpbouchard/parallel-tests/testing"
	"github.com/fpbouchard/parallel-tests/types"
)

// feature returns a feature with one scenario of the given number of steps.
func feature(name string, steps int) string {
	var b strings.Builder
	b.WriteString("Feature: " + name + "\n\n  Scenario: " + name + "\n")
	for i := range steps {
		if i == 0 {
			b.WriteString("    Given a step\n")
			continue
		}
		b.WriteString("    And another step\n")
	}

	return b.String()
}

func writeSuite(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	files := map[string]int{
		"a.feature":        4,
		"b.feature":        3,
		"c.feature":        3,
		"nested/d.feature": 2,
		"slow/e.feature":   5,
	}
	for name, steps := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(feature(name, steps)), 0o600))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("not a feature"), 0o600))

	return dir
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Second)
	defer cancel()
	err := cmd.ExecuteContext(ctx)

	return stdout.String(), stderr.String(), err
}

func TestSplit_Text(t *testing.T) {
	dir := writeSuite(t)

	stdout, _, err := run(t, "split", "--no-solver", "-n", "2", dir)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)

	var all []string
	for _, line := range lines {
		all = append(all, strings.Fields(line)...)
	}
	require.Len(t, all, 5)
	require.NotContains(t, stdout, "README.md")
}

func TestSplit_JSON(t *testing.T) {
	dir := writeSuite(t)

	stdout, _, err := run(t, "split", "--no-solver", "-n", "3", "--format", "json",
		"--single-process", "/slow/", "--isolate", dir)
	require.NoError(t, err)

	var p types.Partition
	require.NoError(t, json.Unmarshal([]byte(stdout), &p))
	require.Len(t, p.Groups, 3)
	require.Equal(t, types.StrategyBestEffort, p.Strategy)
	require.Len(t, p.Groups[0].Items, 1)
	require.True(t, strings.HasSuffix(p.Groups[0].Items[0], "slow/e.feature"))
	require.InDelta(t, 5.0, p.Groups[0].Weight, 1e-9)
	// 4,3,3,2 over two groups
	require.InDelta(t, 6.0, p.Makespan(), 1e-9)
}

func TestSplit_Scenarios(t *testing.T) {
	dir := writeSuite(t)

	stdout, _, err := run(t, "split", "--no-solver", "-n", "2", "--group-by", "scenarios", "-f", "json", dir)
	require.NoError(t, err)

	var p types.Partition
	require.NoError(t, json.Unmarshal([]byte(stdout), &p))
	require.Equal(t, 5, p.ItemCount())
	for _, g := range p.Groups {
		for _, id := range g.Items {
			require.Contains(t, id, ".feature:3")
		}
	}
}

func TestSplit_ConfigFile(t *testing.T) {
	dir := writeSuite(t)
	cfgPath := filepath.Join(t.TempDir(), "grouper.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("groups: 4\nsolver:\n  disabled: true\n"), 0o600))

	stdout, _, err := run(t, "split", "--config", cfgPath, "-f", "json", dir)
	require.NoError(t, err)

	var p types.Partition
	require.NoError(t, json.Unmarshal([]byte(stdout), &p))
	require.Len(t, p.Groups, 4)

	// Flags win over the file.
	stdout, _, err = run(t, "split", "--config", cfgPath, "-n", "1", dir)
	require.NoError(t, err)
	require.Len(t, strings.Split(strings.TrimSpace(stdout), "\n"), 1)
}

func TestSplit_MetricsFile(t *testing.T) {
	dir := writeSuite(t)
	metricsPath := filepath.Join(t.TempDir(), "grouper.prom")

	_, _, err := run(t, "split", "--no-solver", "-n", "2", "--metrics-file", metricsPath, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "grouper_partition_runs_total")
	require.Contains(t, string(data), "grouper_solver_best_effort_fallbacks_total")
}

func TestSplit_Errors(t *testing.T) {
	dir := writeSuite(t)

	tests := []struct {
		name      string
		args      []string
		configErr bool
	}{
		{name: "no arguments", args: []string{"split"}},
		{name: "missing path", args: []string{"split", "--no-solver", filepath.Join(dir, "missing")}},
		{name: "zero groups", args: []string{"split", "--no-solver", "-n", "0", dir}, configErr: true},
		{name: "bad pattern", args: []string{"split", "--no-solver", "--single-process", "(", dir}, configErr: true},
		{name: "bad group-by", args: []string{"split", "--no-solver", "--group-by", "lines", dir}, configErr: true},
		{name: "unknown solver", args: []string{"split", "--solvers", "gurobi", dir}, configErr: true},
		{name: "bad format", args: []string{"split", "--no-solver", "-f", "xml", dir}, configErr: true},
		{name: "isolate single group", args: []string{"split", "--no-solver", "-n", "1", "--isolate", dir}, configErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			require.Error(t, err)
			require.Equal(t, tt.configErr, types.IsConfigurationError(err), err.Error())
		})
	}
}

func TestSplitAndFetch(t *testing.T) {
	ns, _ := grouptest.StartEmbeddedNATS(t)
	dir := writeSuite(t)
	natsArgs := []string{"--nats-url", ns.ClientURL(), "--bucket", "plans", "--run-id", "build-17"}

	stdout, _, err := run(t, append([]string{"split", "--no-solver", "-n", "2", dir}, natsArgs...)...)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)

	for idx, line := range lines {
		got, _, err := run(t, append([]string{"fetch", "--index", strconv.Itoa(idx)}, natsArgs...)...)
		require.NoError(t, err)
		require.Equal(t, line, strings.TrimSpace(got))
	}

	t.Run("json", func(t *testing.T) {
		got, _, err := run(t, append([]string{"fetch", "-i", "1", "-f", "json"}, natsArgs...)...)
		require.NoError(t, err)
		require.Contains(t, got, `"version":1`)
	})

	t.Run("index out of range", func(t *testing.T) {
		_, _, err := run(t, append([]string{"fetch", "-i", "2"}, natsArgs...)...)
		require.ErrorIs(t, err, types.ErrPlanNotFound)
	})

	t.Run("unknown run", func(t *testing.T) {
		_, _, err := run(t, "fetch", "--nats-url", ns.ClientURL(), "--bucket", "plans", "--run-id", "build-18")
		require.ErrorIs(t, err, types.ErrPlanNotFound)
	})

	t.Run("missing bucket", func(t *testing.T) {
		_, _, err := run(t, "fetch", "--nats-url", ns.ClientURL(), "--bucket", "nope", "--run-id", "build-17")
		require.ErrorIs(t, err, types.ErrPlanNotFound)
	})
}

func TestFetch_Wait(t *testing.T) {
	ns, _ := grouptest.StartEmbeddedNATS(t)
	dir := writeSuite(t)
	natsArgs := []string{"--nats-url", ns.ClientURL(), "--bucket", "plans", "--run-id", "build-3"}

	done := make(chan string, 1)
	go func() {
		got, _, err := run(t, append([]string{"fetch", "--wait", "-i", "0"}, natsArgs...)...)
		if err != nil {
			got = "error: " + err.Error()
		}
		done <- got
	}()

	time.Sleep(100 * time.Millisecond)
	stdout, _, err := run(t, append([]string{"split", "--no-solver", "-n", "1", dir}, natsArgs...)...)
	require.NoError(t, err)

	select {
	case got := <-done:
		require.Equal(t, strings.TrimSpace(stdout), strings.TrimSpace(got))
	case <-time.After(5 * time.Second):
		t.Fatal("fetch --wait did not return")
	}
}

func TestFetch_Errors(t *testing.T) {
	_, _, err := run(t, "fetch", "--run-id", "build-1")
	require.ErrorIs(t, err, types.ErrInvalidConfig)

	_, _, err = run(t, "fetch", "--nats-url", "nats://127.0.0.1:1", "--run-id", "a.b")
	require.ErrorIs(t, err, types.ErrInvalidRunID)
}
