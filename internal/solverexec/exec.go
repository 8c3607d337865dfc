// Package solverexec runs external MILP solver executables.
//
// Backends write a model file into a private working directory, run the solver
// binary there and read back the solution file. The working directory is removed
// when the run finishes.
package solverexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/fpbouchard/parallel-tests/mip"
	"github.com/fpbouchard/parallel-tests/types"
)

// ModelFile is the name of the LP file inside the working directory.
const ModelFile = "model.lp"

// SolutionFile is the name of the solution file inside the working directory.
const SolutionFile = "solution.txt"

// waitDelay bounds how long output pipes may outlive a killed solver process.
const waitDelay = time.Second

// Binary locates a solver executable.
type Binary struct {
	// Name is the executable name looked up on PATH when Path is empty.
	Name string

	// Path is an explicit executable path.
	Path string
}

// Resolve returns the executable path.
//
// Returns:
//   - string: Absolute or PATH-resolved executable
//   - error: exec.ErrNotFound (wrapped) when the binary cannot be found
func (b Binary) Resolve() (string, error) {
	if b.Path != "" {
		info, err := os.Stat(b.Path)
		if err != nil {
			return "", fmt.Errorf("solver binary %s: %w", b.Path, err)
		}
		if info.IsDir() || info.Mode()&0o111 == 0 {
			return "", fmt.Errorf("solver binary %s: %w", b.Path, exec.ErrNotFound)
		}

		return b.Path, nil
	}

	return exec.LookPath(b.Name)
}

// Available reports whether the executable can be resolved.
func (b Binary) Available() bool {
	_, err := b.Resolve()
	return err == nil
}

// Run is one solver invocation.
type Run struct {
	// Dir is the private working directory holding ModelFile and SolutionFile.
	Dir string

	// Output is the combined stdout and stderr of the solver process.
	Output []byte
}

// ModelPath returns the model file path.
func (r *Run) ModelPath() string {
	return filepath.Join(r.Dir, ModelFile)
}

// SolutionPath returns the solution file path.
func (r *Run) SolutionPath() string {
	return filepath.Join(r.Dir, SolutionFile)
}

// Execute writes the model, runs the solver and hands the run to read.
//
// Parameters:
//   - ctx: Context; cancellation kills the solver process
//   - bin: Executable to run
//   - model: Model written to ModelFile in LP format
//   - args: Builds the argument list from the run's file paths
//   - read: Parses the solution once the process exited
//   - logger: Receives the solver output at Debug level
//
// Returns:
//   - *mip.Solution: Result of read
//   - error: mip.ErrBackendFailed (wrapped) or the context error
func Execute(
	ctx context.Context,
	bin Binary,
	model *mip.Model,
	args func(r *Run) []string,
	read func(r *Run) (*mip.Solution, error),
	logger types.Logger,
) (*mip.Solution, error) {
	path, err := bin.Resolve()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", mip.ErrBackendFailed, err)
	}

	dir, err := os.MkdirTemp("", "grouper-"+bin.Name+"-")
	if err != nil {
		return nil, fmt.Errorf("%w: create work dir: %w", mip.ErrBackendFailed, err)
	}
	defer os.RemoveAll(dir)

	run := &Run{Dir: dir}
	if err := writeModel(run.ModelPath(), model); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, path, args(run)...)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	runErr := cmd.Run()
	run.Output = out.Bytes()
	logger.Debug("solver finished", "solver", bin.Name, "output", out.String())

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("solver %s: %w", bin.Name, ctxErr)
	}

	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		return nil, fmt.Errorf("%w: run %s: %w", mip.ErrBackendFailed, bin.Name, runErr)
	}

	sol, err := read(run)
	if err != nil {
		if runErr != nil {
			return nil, fmt.Errorf("%w: %s exited with %w: %w", mip.ErrBackendFailed, bin.Name, runErr, err)
		}

		return nil, fmt.Errorf("%w: %s: %w", mip.ErrBackendFailed, bin.Name, err)
	}

	return sol, nil
}

func writeModel(path string, model *mip.Model) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create model file: %w", mip.ErrBackendFailed, err)
	}

	if err := mip.WriteLP(f, model); err != nil {
		_ = f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: write model file: %w", mip.ErrBackendFailed, err)
	}

	return nil
}
