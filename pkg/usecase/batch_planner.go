package usecase

import (
	"slices"

	"github.com/secmon-lab/tasklens/pkg/domain/model"
	"github.com/secmon-lab/tasklens/pkg/domain/types"
)

// PlanBatches partitions msgs into windows of cfg.Size that advance by cfg.Stride().
// Every message lands in at least one batch, adjacent full batches share exactly
// cfg.Overlap messages and only the last batch may be shorter. With newest-first the
// first batch holds the most recent messages.
func PlanBatches(msgs []*model.Message, cfg model.BatchConfig) ([]*model.Batch, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ordered := slices.Clone(msgs)
	model.SortMessages(ordered)
	if cfg.Direction == types.DirectionNewestFirst {
		slices.Reverse(ordered)
	}

	n := len(ordered)
	stride := cfg.Stride()
	var batches []*model.Batch
	for start := 0; start < n; start += stride {
		end := min(start+cfg.Size, n)
		batches = append(batches, &model.Batch{
			Index:    len(batches),
			Messages: slices.Clone(ordered[start:end]),
		})
		if end == n {
			break
		}
	}

	return batches, nil
}
