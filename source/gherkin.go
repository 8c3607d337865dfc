package source

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"runtime"

	gherkin "github.com/cucumber/gherkin/go/v26"
	messages "github.com/cucumber/messages/go/v21"
	"github.com/puzpuzpuz/xsync/v4"
	"golang.org/x/sync/errgroup"

	"github.com/fpbouchard/parallel-tests/internal/logging"
	"github.com/fpbouchard/parallel-tests/types"
)

// scenarioRun is one executable scenario: a plain scenario or one example row
// of a scenario outline.
type scenarioRun struct {
	line    int64
	steps   int
	ignored bool
}

// feature holds the runs of one parsed feature file in file order.
type feature struct {
	runs []scenarioRun
}

// steps returns the total number of steps over all runs that are not ignored.
func (f *feature) steps() int {
	total := 0
	for _, r := range f.runs {
		if !r.ignored {
			total += r.steps
		}
	}

	return total
}

// Option configures the Gherkin-based sources.
type Option func(*parseOptions)

type parseOptions struct {
	ignoreTagPattern string
	concurrency      int
	logger           types.Logger
}

// WithIgnoreTagPattern excludes scenarios carrying a tag that matches expr.
//
// Tags are matched including the leading '@'. Feature, rule, scenario and
// examples tags all apply.
func WithIgnoreTagPattern(expr string) Option {
	return func(o *parseOptions) {
		o.ignoreTagPattern = expr
	}
}

// WithConcurrency limits how many files are parsed at once (default GOMAXPROCS).
func WithConcurrency(n int) Option {
	return func(o *parseOptions) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger types.Logger) Option {
	return func(o *parseOptions) {
		o.logger = logger
	}
}

func newParseOptions(opts []Option) parseOptions {
	o := parseOptions{concurrency: runtime.GOMAXPROCS(0), logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// parseFeatures parses files concurrently and returns them in input order.
func parseFeatures(ctx context.Context, files []string, o parseOptions) ([]*feature, error) {
	var ignore *regexp.Regexp
	if o.ignoreTagPattern != "" {
		re, err := regexp.Compile(o.ignoreTagPattern)
		if err != nil {
			return nil, fmt.Errorf("%w: ignore tag pattern %q: %w", types.ErrInvalidConfig, o.ignoreTagPattern, err)
		}
		ignore = re
	}

	parsed := xsync.NewMap[string, *feature]()

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(o.concurrency)
	for _, file := range files {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, done := parsed.Load(file); done {
				return nil
			}

			f, err := parseFeatureFile(file, ignore)
			if err != nil {
				return err
			}
			parsed.Store(file, f)

			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	features := make([]*feature, len(files))
	for i, file := range files {
		f, ok := parsed.Load(file)
		if !ok {
			return nil, fmt.Errorf("feature file %s was not parsed", file)
		}
		features[i] = f
	}
	o.logger.Debug("parsed feature files", "files", len(files), "unique", parsed.Size())

	return features, nil
}

func parseFeatureFile(path string, ignore *regexp.Regexp) (*feature, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open feature file: %w", err)
	}
	defer fh.Close()

	doc, err := gherkin.ParseGherkinDocument(fh, (&messages.Incrementing{}).NewId)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return collectRuns(doc, ignore), nil
}

// collectRuns walks a parsed document. Background steps count once per run in
// their scope; outline steps count once per example row.
func collectRuns(doc *messages.GherkinDocument, ignore *regexp.Regexp) *feature {
	f := &feature{}
	if doc == nil || doc.Feature == nil {
		return f
	}

	featureIgnored := tagsMatch(doc.Feature.Tags, ignore)
	background := 0
	for _, child := range doc.Feature.Children {
		switch {
		case child.Background != nil:
			background = len(child.Background.Steps)
		case child.Scenario != nil:
			f.addScenario(child.Scenario, background, featureIgnored, ignore)
		case child.Rule != nil:
			ruleIgnored := featureIgnored || tagsMatch(child.Rule.Tags, ignore)
			ruleBackground := background
			for _, rc := range child.Rule.Children {
				switch {
				case rc.Background != nil:
					ruleBackground = background + len(rc.Background.Steps)
				case rc.Scenario != nil:
					f.addScenario(rc.Scenario, ruleBackground, ruleIgnored, ignore)
				}
			}
		}
	}

	return f
}

func (f *feature) addScenario(s *messages.Scenario, background int, inheritedIgnore bool, ignore *regexp.Regexp) {
	ignored := inheritedIgnore || tagsMatch(s.Tags, ignore)
	steps := background + len(s.Steps)

	if len(s.Examples) == 0 {
		f.runs = append(f.runs, scenarioRun{line: lineOf(s.Location), steps: steps, ignored: ignored})
		return
	}

	for _, ex := range s.Examples {
		exIgnored := ignored || tagsMatch(ex.Tags, ignore)
		for _, row := range ex.TableBody {
			f.runs = append(f.runs, scenarioRun{line: lineOf(row.Location), steps: steps, ignored: exIgnored})
		}
	}
}

func tagsMatch(tags []*messages.Tag, ignore *regexp.Regexp) bool {
	if ignore == nil {
		return false
	}
	for _, tag := range tags {
		if ignore.MatchString(tag.Name) {
			return true
		}
	}

	return false
}

func lineOf(loc *messages.Location) int64 {
	if loc == nil {
		return 0
	}

	return loc.Line
}
