package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
	"github.com/secmon-lab/tasklens/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Extraction holds CLI flags for an extraction run
type Extraction struct {
	batchSize    int
	overlap      int
	direction    string
	concurrency  int
	contextDepth int
	channel      string
	assigner     string
}

func (x *Extraction) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "batch-size",
			Usage:       "Messages per LLM request",
			Category:    "Extraction",
			Value:       model.DefaultBatchSize,
			Sources:     cli.EnvVars("TASKLENS_BATCH_SIZE"),
			Destination: &x.batchSize,
		},
		&cli.IntFlag{
			Name:        "overlap",
			Usage:       "Messages shared by adjacent batches",
			Category:    "Extraction",
			Value:       model.DefaultOverlap,
			Sources:     cli.EnvVars("TASKLENS_OVERLAP"),
			Destination: &x.overlap,
		},
		&cli.StringFlag{
			Name:        "direction",
			Usage:       "Batch planning order (newest-first, oldest-first)",
			Category:    "Extraction",
			Value:       types.DirectionNewestFirst.String(),
			Sources:     cli.EnvVars("TASKLENS_DIRECTION"),
			Destination: &x.direction,
		},
		&cli.IntFlag{
			Name:        "concurrency",
			Usage:       "Batches processed in parallel",
			Category:    "Extraction",
			Value:       1,
			Sources:     cli.EnvVars("TASKLENS_CONCURRENCY"),
			Destination: &x.concurrency,
		},
		&cli.IntFlag{
			Name:        "context-depth",
			Usage:       "Thread ancestors included for replies",
			Category:    "Extraction",
			Value:       model.DefaultContextDepth,
			Sources:     cli.EnvVars("TASKLENS_CONTEXT_DEPTH"),
			Destination: &x.contextDepth,
		},
		&cli.StringFlag{
			Name:        "channel",
			Usage:       "Limit extraction to one channel ID",
			Category:    "Extraction",
			Sources:     cli.EnvVars("TASKLENS_CHANNEL"),
			Destination: &x.channel,
		},
		&cli.StringFlag{
			Name:        "assigner",
			Usage:       "Only extract requests made by this person",
			Category:    "Extraction",
			Sources:     cli.EnvVars("TASKLENS_ASSIGNER"),
			Destination: &x.assigner,
		},
	}
}

func (x Extraction) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("batch_size", x.batchSize),
		slog.Int("overlap", x.overlap),
		slog.String("direction", x.direction),
		slog.Int("concurrency", x.concurrency),
		slog.Int("context_depth", x.contextDepth),
		slog.String("channel", x.channel),
		slog.String("assigner", x.assigner),
	)
}

// BatchConfig merges flags with the file: a flag wins when isSet reports it was given
// explicitly, then the file value, then the flag default.
func (x *Extraction) BatchConfig(file *AppConfig, isSet func(name string) bool) (model.BatchConfig, error) {
	cfg := model.BatchConfig{
		Size:          x.batchSize,
		Overlap:       x.overlap,
		Concurrency:   x.concurrency,
		ContextDepth:  x.contextDepth,
		ChannelID:     x.channel,
		AssignerFocus: x.assigner,
	}
	direction := x.direction

	if file != nil {
		ex := file.Extraction
		if !isSet("batch-size") && ex.BatchSize > 0 {
			cfg.Size = ex.BatchSize
		}
		if !isSet("overlap") && ex.Overlap != nil {
			cfg.Overlap = *ex.Overlap
		}
		if !isSet("direction") && ex.Direction != "" {
			direction = ex.Direction
		}
		if !isSet("concurrency") && ex.Concurrency > 0 {
			cfg.Concurrency = ex.Concurrency
		}
		if !isSet("context-depth") && ex.ContextDepth != nil {
			cfg.ContextDepth = *ex.ContextDepth
		}
		if !isSet("channel") && ex.Channel != "" {
			cfg.ChannelID = ex.Channel
		}
		if !isSet("assigner") && ex.Assigner != "" {
			cfg.AssignerFocus = ex.Assigner
		}
	}

	d, err := types.ParseDirection(direction)
	if err != nil {
		return cfg, goerr.Wrap(ErrInvalidDirection, err.Error(), goerr.V("direction", direction))
	}
	cfg.Direction = d

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
