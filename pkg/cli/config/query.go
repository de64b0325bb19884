package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
	"github.com/secmon-lab/tasklens/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Query holds CLI flags bounding the question path
type Query struct {
	maxRows             int
	defaultRows         int
	rateLimit           int
	timeout             time.Duration
	similarityThreshold float64
}

func (x *Query) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "max-rows",
			Usage:       "Maximum rows a query may return",
			Category:    "Query",
			Value:       model.DefaultMaxRows,
			Sources:     cli.EnvVars("TASKLENS_MAX_ROWS"),
			Destination: &x.maxRows,
		},
		&cli.IntFlag{
			Name:        "default-rows",
			Usage:       "Rows returned when a question names no limit",
			Category:    "Query",
			Value:       model.DefaultRows,
			Sources:     cli.EnvVars("TASKLENS_DEFAULT_ROWS"),
			Destination: &x.defaultRows,
		},
		&cli.IntFlag{
			Name:        "rate-limit",
			Usage:       "Question translations per minute (0 disables)",
			Category:    "Query",
			Value:       usecase.DefaultRateLimitPerMinute,
			Sources:     cli.EnvVars("TASKLENS_RATE_LIMIT"),
			Destination: &x.rateLimit,
		},
		&cli.DurationFlag{
			Name:        "query-timeout",
			Usage:       "Timeout for executing one query",
			Category:    "Query",
			Value:       usecase.DefaultQueryTimeout,
			Sources:     cli.EnvVars("TASKLENS_QUERY_TIMEOUT"),
			Destination: &x.timeout,
		},
		&cli.FloatFlag{
			Name:        "similarity-threshold",
			Usage:       "Token similarity needed to group two action items",
			Category:    "Query",
			Value:       model.DefaultSimilarityThreshold,
			Sources:     cli.EnvVars("TASKLENS_SIMILARITY_THRESHOLD"),
			Destination: &x.similarityThreshold,
		},
	}
}

func (x Query) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("max_rows", x.maxRows),
		slog.Int("default_rows", x.defaultRows),
		slog.Int("rate_limit", x.rateLimit),
		slog.Duration("timeout", x.timeout),
		slog.Float64("similarity_threshold", x.similarityThreshold),
	)
}

// QueryConfig merges flags with the file in the same way as Extraction.BatchConfig
func (x *Query) QueryConfig(file *AppConfig, isSet func(name string) bool) (usecase.QueryConfig, error) {
	cfg := usecase.QueryConfig{
		Limits: model.QueryLimits{
			MaxRows:     x.maxRows,
			DefaultRows: x.defaultRows,
		},
		RateLimitPerMinute:  x.rateLimit,
		Timeout:             x.timeout,
		SimilarityThreshold: x.similarityThreshold,
	}

	if file != nil {
		q := file.Query
		if !isSet("max-rows") && q.MaxRows > 0 {
			cfg.Limits.MaxRows = q.MaxRows
		}
		if !isSet("default-rows") && q.DefaultRows > 0 {
			cfg.Limits.DefaultRows = q.DefaultRows
		}
		if !isSet("rate-limit") && q.RateLimit != nil {
			cfg.RateLimitPerMinute = *q.RateLimit
		}
		if !isSet("query-timeout") && q.Timeout != "" {
			d, err := time.ParseDuration(q.Timeout)
			if err != nil {
				return cfg, goerr.Wrap(ErrInvalidConfig, "invalid query timeout", goerr.V("timeout", q.Timeout))
			}
			cfg.Timeout = d
		}
		if !isSet("similarity-threshold") && q.SimilarityThreshold > 0 {
			cfg.SimilarityThreshold = q.SimilarityThreshold
		}
	}

	if cfg.Limits.MaxRows <= 0 {
		return cfg, goerr.Wrap(ErrInvalidConfig, "max-rows must be positive", goerr.V("max_rows", cfg.Limits.MaxRows))
	}
	if cfg.Limits.DefaultRows <= 0 || cfg.Limits.DefaultRows > cfg.Limits.MaxRows {
		return cfg, goerr.Wrap(ErrInvalidConfig, "default-rows must be between 1 and max-rows",
			goerr.V("default_rows", cfg.Limits.DefaultRows), goerr.V("max_rows", cfg.Limits.MaxRows))
	}
	if cfg.Timeout <= 0 {
		return cfg, goerr.Wrap(ErrInvalidConfig, "query-timeout must be positive", goerr.V("timeout", cfg.Timeout))
	}
	if cfg.SimilarityThreshold <= 0 || cfg.SimilarityThreshold > 1 {
		return cfg, goerr.Wrap(ErrInvalidConfig, "similarity-threshold must be in (0, 1]",
			goerr.V("similarity_threshold", cfg.SimilarityThreshold))
	}
	return cfg, nil
}
