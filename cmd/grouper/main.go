// Command grouper splits Gherkin test suites into balanced groups for parallel runs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	paralleltests "github.com/fpbouchard/parallel-tests"
	"github.com/fpbouchard/parallel-tests/internal/cli"
)

// Exit codes.
const (
	exitFailure   = 1
	exitBadConfig = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.NewRootCmd().ExecuteContext(ctx)
	if err == nil {
		return
	}

	fmt.Fprintf(os.Stderr, "grouper: %v\n", err)
	code := exitFailure
	if paralleltests.IsConfigurationError(err) {
		code = exitBadConfig
	}
	stop()
	os.Exit(code) //nolint:gocritic // stop already called
}

