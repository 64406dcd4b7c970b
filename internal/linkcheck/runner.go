package linkcheck

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pastchais/check-notion-url/internal/telemetry"
)

// RunnerConfig controls batch execution.
type RunnerConfig struct {
	// Concurrency caps how many probes are in flight at once.
	Concurrency int
	// Delay spaces out probe admissions to avoid request bursts. Zero
	// disables pacing.
	Delay time.Duration
}

// Summary aggregates the terminal state of every record in a run.
type Summary struct {
	Processed          int
	Skipped            int
	WriteFailures      int
	DuplicatesArchived int
	ByStatus           map[Status]int
}

// Runner applies a Classifier to a batch of records under a concurrency cap.
type Runner struct {
	concurrency int
	pacer       *rate.Limiter
	logger      *zap.Logger
}

// NewRunner constructs a Runner. Concurrency values below one are raised to
// one.
func NewRunner(cfg RunnerConfig, logger *zap.Logger) *Runner {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	var pacer *rate.Limiter
	if cfg.Delay > 0 {
		pacer = rate.NewLimiter(rate.Every(cfg.Delay), 1)
	}
	return &Runner{
		concurrency: cfg.Concurrency,
		pacer:       pacer,
		logger:      logger,
	}
}

// Run probes every record and hands each outcome to onResult. Records without
// a URL are skipped. A failing onResult is logged and does not affect the
// other records. Run returns once every record reached a terminal state;
// completion order across records is unconstrained.
func (r *Runner) Run(
	ctx context.Context,
	records []LinkRecord,
	classify Classifier,
	onResult func(LinkRecord, Status) error,
) Summary {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		summary = Summary{ByStatus: make(map[Status]int)}
	)
	sem := make(chan struct{}, r.concurrency)

	for _, rec := range records {
		if rec.URL == "" {
			r.logger.Warn("record has no URL, skipping",
				zap.String("record_id", rec.ID),
				zap.String("title", rec.Title),
			)
			summary.Skipped++
			continue
		}

		if err := r.admit(ctx, sem); err != nil {
			r.logger.Warn("batch interrupted", zap.Error(err))
			summary.Skipped++
			continue
		}

		wg.Add(1)
		go func(rec LinkRecord) {
			defer wg.Done()
			defer func() { <-sem }()

			telemetry.IncActiveProbes()
			defer telemetry.DecActiveProbes()

			start := time.Now()
			status := classify.Classify(ctx, rec.URL)
			telemetry.ObserveProbe(status.String(), time.Since(start))

			r.logger.Debug("probe finished",
				zap.String("record_id", rec.ID),
				zap.String("url", rec.URL),
				zap.Stringer("status", status),
			)

			writeFailed := false
			if err := onResult(rec, status); err != nil {
				writeFailed = true
				r.logger.Error("status write failed",
					zap.String("record_id", rec.ID),
					zap.String("url", rec.URL),
					zap.Stringer("status", status),
					zap.Error(err),
				)
			}

			mu.Lock()
			summary.Processed++
			summary.ByStatus[status]++
			if writeFailed {
				summary.WriteFailures++
			}
			mu.Unlock()
		}(rec)
	}

	wg.Wait()
	return summary
}

// admit paces admissions and takes a concurrency slot.
func (r *Runner) admit(ctx context.Context, sem chan struct{}) error {
	if r.pacer != nil {
		if err := r.pacer.Wait(ctx); err != nil {
			return err
		}
	}
	select {
	case sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
