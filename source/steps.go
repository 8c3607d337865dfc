package source

import (
	"cmp"
	"context"
	"slices"

	"github.com/fpbouchard/parallel-tests/types"
)

// Steps weighs each feature file by its number of executable steps.
//
// Background steps count once per scenario they precede, and outline steps once
// per example row. Scenarios with an ignored tag contribute nothing; a file whose
// scenarios are all ignored is still returned, with weight 0.
type Steps struct {
	files []string
	opts  parseOptions
}

var _ types.WeightSource = (*Steps)(nil)

// NewSteps creates a step-count weight source over feature files.
//
// Parameters:
//   - files: Feature file paths
//   - opts: Optional configuration (WithIgnoreTagPattern, WithConcurrency, WithLogger)
//
// Returns:
//   - *Steps: Initialized source; files are read on each Items call
//
// Example:
//
//	src := source.NewSteps(files, source.WithIgnoreTagPattern(`^@(wip|manual)$`))
//	items, err := src.Items(ctx)
func NewSteps(files []string, opts ...Option) *Steps {
	return &Steps{files: slices.Clone(files), opts: newParseOptions(opts)}
}

// Items parses the feature files and returns one item per file.
//
// Items are sorted by descending weight; files of equal weight keep their input
// order.
//
// Returns:
//   - []types.Item: One item per distinct file
//   - error: Unreadable or unparsable file, invalid ignore pattern, or ctx.Err()
func (s *Steps) Items(ctx context.Context) ([]types.Item, error) {
	files := dedupe(s.files)
	features, err := parseFeatures(ctx, files, s.opts)
	if err != nil {
		return nil, err
	}

	items := make([]types.Item, len(files))
	for i, f := range features {
		items[i] = types.NewItem(files[i], float64(f.steps()))
	}
	slices.SortStableFunc(items, func(a, b types.Item) int {
		return cmp.Compare(b.Weight, a.Weight)
	})

	return items, nil
}

// dedupe drops repeated paths, keeping the first occurrence.
func dedupe(files []string) []string {
	seen := make(map[string]struct{}, len(files))
	out := make([]string, 0, len(files))
	for _, f := range files {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}

	return out
}
