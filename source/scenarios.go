package source

import (
	"context"
	"fmt"
	"slices"

	"github.com/fpbouchard/parallel-tests/types"
)

// Scenarios splits feature files into single scenarios.
//
// Each item is identified as "path:line", the line of the scenario or, for
// scenario outlines, of the example row. The weight is the number of steps the
// run executes, background included. Ignored scenarios are left out.
type Scenarios struct {
	files []string
	opts  parseOptions
}

var _ types.WeightSource = (*Scenarios)(nil)

// NewScenarios creates a per-scenario weight source over feature files.
//
// Parameters:
//   - files: Feature file paths
//   - opts: Optional configuration (WithIgnoreTagPattern, WithConcurrency, WithLogger)
//
// Returns:
//   - *Scenarios: Initialized source; files are read on each Items call
func NewScenarios(files []string, opts ...Option) *Scenarios {
	return &Scenarios{files: slices.Clone(files), opts: newParseOptions(opts)}
}

// Items parses the feature files and returns one item per scenario run.
//
// Items are grouped by file in input order, then in file order.
//
// Returns:
//   - []types.Item: One item per scenario or example row
//   - error: Unreadable or unparsable file, invalid ignore pattern, or ctx.Err()
func (s *Scenarios) Items(ctx context.Context) ([]types.Item, error) {
	files := dedupe(s.files)
	features, err := parseFeatures(ctx, files, s.opts)
	if err != nil {
		return nil, err
	}

	var items []types.Item
	for i, f := range features {
		for _, run := range f.runs {
			if run.ignored {
				continue
			}
			items = append(items, types.NewItem(ScenarioID(files[i], run.line), float64(run.steps)))
		}
	}

	return items, nil
}

// ScenarioID formats the identifier of the scenario at line in path.
func ScenarioID(path string, line int64) string {
	return fmt.Sprintf("%s:%d", path, line)
}
