package analysis

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/antlab/forageshift/internal/circstat"
	"github.com/antlab/forageshift/internal/types"
)

// GroupSummary pairs a group key with its circular summary and the derived
// plot interval.
type GroupSummary struct {
	Key      types.GroupKey
	Summary  circstat.Summary
	Interval circstat.PlotInterval
}

// Runner summarizes groups of observations using a fixed-size worker pool.
// Groups are independent, so the work fans out trivially; result order is
// normalized afterwards so callers get deterministic output.
type Runner struct {
	workers int
	logger  *zap.SugaredLogger
}

// NewRunner creates a Runner. workers below 1 is treated as 1.
func NewRunner(workers int, logger *zap.SugaredLogger) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		workers: workers,
		logger:  logger,
	}
}

// SummarizeGroups computes circular summaries for every group. Groups whose
// summarization fails (empty samples) are skipped with a warning rather than
// aborting the run.
func (r *Runner) SummarizeGroups(ctx context.Context, groups map[types.GroupKey][]float64) []GroupSummary {
	type job struct {
		key   types.GroupKey
		hours []float64
	}

	jobs := make(chan job)
	results := make(chan GroupSummary, len(groups))

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				summary, err := circstat.Summarize(j.hours)
				if err != nil {
					r.logger.Warnf("skipping group %+v: %v", j.key, err)
					continue
				}
				results <- GroupSummary{
					Key:      j.key,
					Summary:  summary,
					Interval: circstat.DerivePlotInterval(summary),
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for key, hours := range groups {
			select {
			case jobs <- job{key: key, hours: hours}:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(results)

	summaries := make([]GroupSummary, 0, len(groups))
	for gs := range results {
		summaries = append(summaries, gs)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return lessGroupKey(summaries[i].Key, summaries[j].Key)
	})
	return summaries
}

func lessGroupKey(a, b types.GroupKey) bool {
	if a.Site != b.Site {
		return a.Site < b.Site
	}
	if a.Species != b.Species {
		return a.Species < b.Species
	}
	if a.Season != b.Season {
		return a.Season < b.Season
	}
	return a.Chamber < b.Chamber
}
