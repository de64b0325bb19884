package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/claude"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/m-mizutani/gollem/llm/openai"
	"github.com/urfave/cli/v3"
)

// LLM providers
const (
	ProviderGemini = "gemini"
	ProviderClaude = "claude"
	ProviderOpenAI = "openai"
)

// LLM holds configuration for the language model used by extraction and query translation
type LLM struct {
	provider        string
	model           string
	geminiProject   string
	geminiLocation  string
	anthropicAPIKey string
	openaiAPIKey    string
}

// Flags returns CLI flags for LLM configuration
func (x *LLM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "llm-provider",
			Usage:       "LLM provider (gemini, claude, openai). Empty picks the first provider with credentials",
			Category:    "LLM",
			Sources:     cli.EnvVars("TASKLENS_LLM_PROVIDER"),
			Destination: &x.provider,
		},
		&cli.StringFlag{
			Name:        "llm-model",
			Usage:       "Model name; the provider default is used when empty",
			Category:    "LLM",
			Sources:     cli.EnvVars("TASKLENS_LLM_MODEL"),
			Destination: &x.model,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini API",
			Category:    "LLM",
			Sources:     cli.EnvVars("TASKLENS_GEMINI_PROJECT"),
			Destination: &x.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini API",
			Category:    "LLM",
			Value:       "us-central1",
			Sources:     cli.EnvVars("TASKLENS_GEMINI_LOCATION"),
			Destination: &x.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "anthropic-api-key",
			Usage:       "Anthropic API key for Claude",
			Category:    "LLM",
			Sources:     cli.EnvVars("TASKLENS_ANTHROPIC_API_KEY"),
			Destination: &x.anthropicAPIKey,
		},
		&cli.StringFlag{
			Name:        "openai-api-key",
			Usage:       "OpenAI API key",
			Category:    "LLM",
			Sources:     cli.EnvVars("TASKLENS_OPENAI_API_KEY"),
			Destination: &x.openaiAPIKey,
		},
	}
}

// LogValue never includes API keys
func (x LLM) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("provider", x.resolveProvider()),
		slog.String("model", x.model),
		slog.String("gemini_project", x.geminiProject),
		slog.String("gemini_location", x.geminiLocation),
		slog.Int("anthropic_api_key.len", len(x.anthropicAPIKey)),
		slog.Int("openai_api_key.len", len(x.openaiAPIKey)),
	)
}

func (x *LLM) resolveProvider() string {
	if x.provider != "" {
		return x.provider
	}
	switch {
	case x.geminiProject != "":
		return ProviderGemini
	case x.anthropicAPIKey != "":
		return ProviderClaude
	case x.openaiAPIKey != "":
		return ProviderOpenAI
	default:
		return ""
	}
}

// Configure creates the LLM client. It returns nil when no provider is configured:
// questions are then answered by the heuristic translator and extraction refuses to run.
func (x *LLM) Configure(ctx context.Context) (gollem.LLMClient, error) {
	switch provider := x.resolveProvider(); provider {
	case "":
		return nil, nil

	case ProviderGemini:
		if x.geminiProject == "" {
			return nil, goerr.Wrap(ErrInvalidConfig, "gemini-project is required for the gemini provider")
		}
		var opts []gemini.Option
		if x.model != "" {
			opts = append(opts, gemini.WithModel(x.model))
		}
		client, err := gemini.New(ctx, x.geminiProject, x.geminiLocation, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Gemini client")
		}
		return client, nil

	case ProviderClaude:
		if x.anthropicAPIKey == "" {
			return nil, goerr.Wrap(ErrInvalidConfig, "anthropic-api-key is required for the claude provider")
		}
		var opts []claude.Option
		if x.model != "" {
			opts = append(opts, claude.WithModel(x.model))
		}
		client, err := claude.New(ctx, x.anthropicAPIKey, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Claude client")
		}
		return client, nil

	case ProviderOpenAI:
		if x.openaiAPIKey == "" {
			return nil, goerr.Wrap(ErrInvalidConfig, "openai-api-key is required for the openai provider")
		}
		var opts []openai.Option
		if x.model != "" {
			opts = append(opts, openai.WithModel(x.model))
		}
		client, err := openai.New(ctx, x.openaiAPIKey, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create OpenAI client")
		}
		return client, nil

	default:
		return nil, goerr.Wrap(ErrInvalidConfig, "unknown LLM provider", goerr.V("provider", provider))
	}
}
