package linkcheck

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pastchais/check-notion-url/internal/telemetry"
)

// ClassifierFactory builds the classifier for a run. The returned release
// function tears down whatever the classifier holds (for the headless
// strategy, the shared browser) and is called exactly once per run. The
// factory is only invoked when at least one record actually needs a probe.
type ClassifierFactory func(ctx context.Context) (Classifier, func(), error)

// Pipeline executes one full check run against a record store.
type Pipeline struct {
	store   RecordStore
	factory ClassifierFactory
	runner  *Runner
	logger  *zap.Logger
}

// NewPipeline wires a Pipeline.
func NewPipeline(store RecordStore, factory ClassifierFactory, runner *Runner, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		store:   store,
		factory: factory,
		runner:  runner,
		logger:  logger,
	}
}

// Run fetches the records, archives duplicates, probes the canonical set and
// writes the observed statuses back. Per-record failures are logged and
// swallowed; only store-wide failures (fetch, classifier setup) are returned.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	records, err := p.store.FetchAll(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("fetch records: %w", err)
	}
	telemetry.ObserveRecordsFetched(len(records))
	p.logger.Info("records fetched", zap.Int("count", len(records)))

	canonical, duplicates := Partition(records)
	archived := p.archiveDuplicates(ctx, duplicates)

	probeable := 0
	for _, rec := range canonical {
		if rec.URL != "" {
			probeable++
		}
	}

	var classifier Classifier
	if probeable > 0 {
		c, release, ferr := p.factory(ctx)
		if ferr != nil {
			return Summary{}, fmt.Errorf("acquire classifier: %w", ferr)
		}
		defer release()
		classifier = c
	}

	summary := p.runner.Run(ctx, canonical, classifier, func(rec LinkRecord, status Status) error {
		return p.store.WriteStatus(ctx, rec.ID, status)
	})
	summary.DuplicatesArchived = archived

	p.logger.Info("run finished",
		zap.Int("processed", summary.Processed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("write_failures", summary.WriteFailures),
		zap.Int("duplicates_archived", summary.DuplicatesArchived),
	)
	return summary, nil
}

// archiveDuplicates soft-deletes every duplicate record. Failures are logged
// per record and never abort the run.
func (p *Pipeline) archiveDuplicates(ctx context.Context, duplicates []LinkRecord) int {
	archived := 0
	for _, dup := range duplicates {
		if err := p.store.Archive(ctx, dup.ID); err != nil {
			p.logger.Error("archive duplicate failed",
				zap.String("record_id", dup.ID),
				zap.String("url", dup.URL),
				zap.Error(err),
			)
			continue
		}
		archived++
		telemetry.ObserveDuplicateArchived()
		p.logger.Debug("duplicate archived",
			zap.String("record_id", dup.ID),
			zap.String("url", dup.URL),
		)
	}
	return archived
}
