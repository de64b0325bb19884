package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tasklens/pkg/domain/interfaces"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
	"github.com/secmon-lab/tasklens/pkg/service/extraction"
	"github.com/secmon-lab/tasklens/pkg/service/participant"
	"github.com/secmon-lab/tasklens/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// ExtractionUseCase runs the batch extraction pipeline
type ExtractionUseCase struct {
	repo         interfaces.Repository
	extractor    extraction.Service
	participants *participant.Cache
	location     *time.Location
	now          func() time.Time
}

func NewExtractionUseCase(repo interfaces.Repository, extractor extraction.Service, participants *participant.Cache, loc *time.Location, now func() time.Time) *ExtractionUseCase {
	return &ExtractionUseCase{
		repo:         repo,
		extractor:    extractor,
		participants: participants,
		location:     loc,
		now:          now,
	}
}

type batchRun struct {
	runID       string
	cfg         model.BatchConfig
	resolver    *ThreadResolver
	formatter   *TranscriptFormatter
	extractedAt time.Time
}

// RunExtraction plans batches over the stored messages and extracts action items from
// each. Configuration errors are returned before any external call. Once batches start,
// a failing batch is recorded in the report and the run continues; cancellation is
// checked between batches and ends the run with Cancelled set.
func (uc *ExtractionUseCase) RunExtraction(ctx context.Context, cfg model.BatchConfig) (*model.ExtractionReport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if uc.extractor == nil {
		return nil, goerr.Wrap(model.ErrConfiguration, "no extraction service configured")
	}

	msgs, err := uc.repo.Message().List(ctx, cfg.ChannelID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list messages")
	}

	batches, err := PlanBatches(msgs, cfg)
	if err != nil {
		return nil, err
	}

	directory, err := uc.participants.Get(ctx)
	if err != nil {
		logging.From(ctx).Warn("participant directory unavailable, using raw identifiers", "error", err)
	}

	report := &model.ExtractionReport{
		RunID:          uuid.NewString(),
		BatchesPlanned: len(batches),
		BatchFailures:  []model.BatchFailure{},
		StartedAt:      uc.now(),
	}
	logger := logging.From(ctx).With(RunIDKey, report.RunID)
	logger.Info("extraction run starting",
		"messages", len(msgs),
		"batches", len(batches),
		"batch_size", cfg.Size,
		"overlap", cfg.Overlap,
		"direction", cfg.Direction,
		"concurrency", cfg.Concurrency,
	)

	run := &batchRun{
		runID:       report.RunID,
		cfg:         cfg,
		resolver:    NewThreadResolver(uc.repo.Message(), cfg.ContextDepth),
		formatter:   NewTranscriptFormatter(directory, uc.location),
		extractedAt: report.StartedAt,
	}

	var (
		mu sync.Mutex
		eg errgroup.Group
	)
	eg.SetLimit(cfg.Concurrency)

	for _, b := range batches {
		if ctx.Err() != nil {
			break
		}

		eg.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			outcome, err := uc.processBatch(logging.With(ctx, logger), run, b)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.BatchFailures = append(report.BatchFailures, model.BatchFailure{
					Range:  b.Range(),
					Reason: failureReason(err),
					Err:    err,
				})
				return nil
			}
			report.BatchesProcessed++
			report.ItemsAdded += len(outcome.Items)
			report.ItemsDropped += outcome.Dropped
			if outcome.Unparsable {
				report.UnparsableResponses++
			}
			return nil
		})
	}
	_ = eg.Wait()

	sort.Slice(report.BatchFailures, func(i, j int) bool {
		return report.BatchFailures[i].Range.Index < report.BatchFailures[j].Range.Index
	})
	report.Cancelled = ctx.Err() != nil
	report.FinishedAt = uc.now()

	logger.Info("extraction run finished",
		"items_added", report.ItemsAdded,
		"items_dropped", report.ItemsDropped,
		"batches_processed", report.BatchesProcessed,
		"batch_failures", len(report.BatchFailures),
		"cancelled", report.Cancelled,
	)

	return report, nil
}

func (uc *ExtractionUseCase) processBatch(ctx context.Context, run *batchRun, b *model.Batch) (*model.BatchOutcome, error) {
	logger := logging.From(ctx)
	msgs := b.Chronological()
	rng := b.Range()

	logger.Info("batch starting",
		model.BatchIndexKey, b.Index,
		"first_message_id", rng.FirstMessageID,
		"last_message_id", rng.LastMessageID,
		"messages", len(msgs),
	)

	ancestors := run.resolver.ResolveBatch(ctx, msgs)
	transcript := run.formatter.Format(msgs, ancestors)

	result, err := uc.extractor.Extract(ctx, extraction.Input{
		Transcript:    transcript,
		ReferenceDate: msgs[len(msgs)-1].PostedAt.In(run.formatter.location),
		AssignerFocus: run.cfg.AssignerFocus,
	})
	if err != nil {
		logger.Warn("batch failed", model.BatchIndexKey, b.Index, "error", err)
		return nil, goerr.Wrap(err, "batch extraction failed", goerr.V(model.BatchIndexKey, b.Index))
	}

	outcome := &model.BatchOutcome{
		Dropped:    result.Dropped,
		Unparsable: result.Unparsable,
	}
	for _, c := range result.Candidates {
		src := AttributeSource(c, msgs)
		outcome.Items = append(outcome.Items, c.ToActionItem(src.ID, run.runID, run.extractedAt))
	}

	if len(outcome.Items) > 0 {
		// a batch that finished extraction is persisted even when the run is being cancelled
		created, err := uc.repo.ActionItem().CreateMany(context.WithoutCancel(ctx), outcome.Items)
		if err != nil {
			logger.Warn("failed to store batch items", model.BatchIndexKey, b.Index, "error", err)
			return nil, goerr.Wrap(err, "failed to store action items", goerr.V(model.BatchIndexKey, b.Index))
		}
		outcome.Items = created
	}

	logger.Info("batch finished",
		model.BatchIndexKey, b.Index,
		"first_message_id", rng.FirstMessageID,
		"last_message_id", rng.LastMessageID,
		"items_added", len(outcome.Items),
		"items_dropped", outcome.Dropped,
		"unparsable", outcome.Unparsable,
	)
	return outcome, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, model.ErrPermanentService):
		return "permanent service error"
	case errors.Is(err, model.ErrTransientService):
		return "transient service error (retries exhausted)"
	case errors.Is(err, model.ErrStoreUnavailable):
		return "store unavailable"
	default:
		return err.Error()
	}
}
