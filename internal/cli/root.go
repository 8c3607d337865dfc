// Package cli implements the grouper command line tool.
package cli

import (
	"io"
	"log/slog"

	paralleltests "github.com/fpbouchard/parallel-tests"
	"github.com/fpbouchard/parallel-tests/internal/logging"
	"github.com/spf13/cobra"
)

// RootArgs holds the persistent flags shared by all subcommands.
type RootArgs struct {
	ConfigPath string
	Verbose    bool
	NatsURL    string
	Bucket     string
	RunID      string
	Format     string
}

const (
	formatText = "text"
	formatJSON = "json"
)

// NewRootCmd builds the grouper command tree.
//
// Returns:
//   - *cobra.Command: Root command with the split and fetch subcommands
func NewRootCmd() *cobra.Command {
	rootArgs := &RootArgs{}
	cmd := &cobra.Command{
		Use:   "grouper",
		Short: "Split Gherkin test suites into balanced groups for parallel runs.",
		Long: "grouper weighs feature files (or scenarios) by their steps and distributes them\n" +
			"into groups of near-equal weight, one group per parallel test process.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&rootArgs.ConfigPath, "config", "c", "", "YAML configuration file")
	flags.BoolVarP(&rootArgs.Verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&rootArgs.NatsURL, "nats-url", "", "NATS server URL for plan distribution")
	flags.StringVar(&rootArgs.Bucket, "bucket", "", "KV bucket holding plans")
	flags.StringVar(&rootArgs.RunID, "run-id", "", "run identifier a plan is published under")
	flags.StringVarP(&rootArgs.Format, "format", "f", formatText, "output format: text or json")

	cmd.AddCommand(newSplitCommand(rootArgs))
	cmd.AddCommand(newFetchCommand(rootArgs))

	return cmd
}

// loadConfig reads the configuration file, or the defaults when none is given,
// and applies the persistent flag overrides.
func (a *RootArgs) loadConfig(cmd *cobra.Command) (*paralleltests.Config, error) {
	var cfg *paralleltests.Config
	if a.ConfigPath != "" {
		loaded, err := paralleltests.LoadConfig(a.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		defaults := paralleltests.DefaultConfig()
		cfg = &defaults
	}

	flags := cmd.Flags()
	if flags.Changed("nats-url") {
		cfg.Plan.URL = a.NatsURL
	}
	if flags.Changed("bucket") {
		cfg.Plan.Bucket = a.Bucket
	}

	return cfg, nil
}

func (a *RootArgs) logger(w io.Writer) *logging.SlogLogger {
	level := slog.LevelInfo
	if a.Verbose {
		level = slog.LevelDebug
	}

	return logging.NewSlogText(w, level)
}
