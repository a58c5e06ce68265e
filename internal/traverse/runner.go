package traverse

import (
	"context"
	"errors"
	"sync"

	"github.com/pharmaseek/pharmaseek/internal/browser"
	"github.com/pharmaseek/pharmaseek/internal/logger"
	"github.com/pharmaseek/pharmaseek/internal/registry"
	"github.com/pharmaseek/pharmaseek/internal/results"
	"github.com/pharmaseek/pharmaseek/pkg/pdftext"
)

// SessionFactory opens a fresh browsing session. Each substance run owns
// an isolated session; page state is mutated destructively by navigation,
// so sessions are never shared across runs.
type SessionFactory func() (browser.Session, error)

// Runner executes a whole scrape: one engine run per substance, merged
// into a single output set for one flush at the end.
type Runner struct {
	newSession  SessionFactory
	profile     *registry.Profile
	pdfText     pdftext.Extractor
	cfg         Config
	concurrency int
}

// NewRunner creates a runner. Concurrency below 1 is treated as 1.
func NewRunner(factory SessionFactory, profile *registry.Profile, pdfText pdftext.Extractor, cfg Config, concurrency int) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{
		newSession:  factory,
		profile:     profile,
		pdfText:     pdfText,
		cfg:         cfg,
		concurrency: concurrency,
	}
}

type runOutcome struct {
	substance string
	set       *results.Set
	skipped   int
	err       error
}

// RunAll runs every substance and merges the per-run output sets in input
// order. A failed substance never prevents the others from running.
func (r *Runner) RunAll(ctx context.Context, substances []string) (*results.Set, results.Summary) {
	outcomes := make([]runOutcome, len(substances))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < r.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = r.runOne(ctx, substances[i])
			}
		}()
	}
	for i := range substances {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	merged := &results.Set{}
	summary := results.Summary{}
	for _, o := range outcomes {
		summary.ItemsSkipped += o.skipped
		switch {
		case o.err != nil && errors.Is(o.err, ErrNoResults):
			// Zero results, not a crash.
			summary.ZeroResults = append(summary.ZeroResults, o.substance)
		case o.err != nil:
			logger.Error("substance run failed", "substance", o.substance, "error", o.err)
			summary.FailedRuns = append(summary.FailedRuns, o.substance)
		case o.set.Len() == 0:
			summary.ZeroResults = append(summary.ZeroResults, o.substance)
			merged.Merge(o.set)
		default:
			merged.Merge(o.set)
		}
	}
	summary.Rows = merged.Len()
	return merged, summary
}

// runOne opens a session, runs the engine for one substance, and closes
// the session regardless of outcome.
func (r *Runner) runOne(ctx context.Context, substance string) runOutcome {
	session, err := r.newSession()
	if err != nil {
		return runOutcome{substance: substance, set: &results.Set{}, err: err}
	}
	defer func() { _ = session.Close() }()

	engine := New(session, r.profile, r.pdfText, r.cfg)
	set, err := engine.Run(ctx, substance)
	return runOutcome{substance: substance, set: set, skipped: engine.Skipped(), err: err}
}
