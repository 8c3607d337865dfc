package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fpbouchard/parallel-tests/internal/kvutil"
	"github.com/fpbouchard/parallel-tests/internal/natsutil"
	"github.com/fpbouchard/parallel-tests/internal/plan"
	"github.com/fpbouchard/parallel-tests/types"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/spf13/cobra"
)

type fetchArgs struct {
	index int
	wait  bool
}

func newFetchCommand(rootArgs *RootArgs) *cobra.Command {
	cmdArgs := &fetchArgs{}
	cmd := &cobra.Command{
		Use:   "fetch --run-id <id> --index <n>",
		Short: "Print one group of a published plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFetch(cmd, rootArgs, cmdArgs)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&cmdArgs.index, "index", "i", 0, "zero-based group index of this worker")
	flags.BoolVarP(&cmdArgs.wait, "wait", "w", false, "wait until the plan is published")

	return cmd
}

func runFetch(cmd *cobra.Command, rootArgs *RootArgs, cmdArgs *fetchArgs) error {
	logger := rootArgs.logger(cmd.ErrOrStderr())

	cfg, err := rootArgs.loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Plan.URL == "" {
		return fmt.Errorf("%w: a NATS url is required to fetch a plan", types.ErrInvalidConfig)
	}
	if err := plan.ValidateRunID(rootArgs.RunID); err != nil {
		return err
	}

	nc, err := natsutil.Connect(cfg.Plan.URL, "grouper-fetch", cfg.Plan.OperationTimeout, logger)
	if err != nil {
		return err
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx := cmd.Context()
	if cmdArgs.wait {
		kv, err := kvutil.EnsureKVBucketWithRetry(ctx, js, kvutil.PlanBucketConfig(cfg.Plan.Bucket, cfg.Plan.TTL), 3)
		if err != nil {
			return err
		}
		logger.Info("waiting for plan", "run_id", rootArgs.RunID)
		if _, err := plan.WaitForPlan(ctx, kv, rootArgs.RunID); err != nil {
			return err
		}
	}

	opCtx, cancel := context.WithTimeout(ctx, cfg.Plan.OperationTimeout)
	defer cancel()

	kv, err := kvutil.OpenKVBucket(opCtx, js, cfg.Plan.Bucket)
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrPlanNotFound, err)
	}

	group, err := plan.Fetch(opCtx, kv, rootArgs.RunID, cmdArgs.index)
	if err != nil {
		return err
	}
	logger.Debug("group fetched", "index", group.Index, "items", len(group.Items), "version", group.Version)

	w := cmd.OutOrStdout()
	if rootArgs.Format == formatJSON {
		return json.NewEncoder(w).Encode(group)
	}
	_, err = fmt.Fprintln(w, strings.Join(group.Items, " "))

	return err
}
