package extraction

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
	"github.com/secmon-lab/tasklens/pkg/utils/logging"
	"github.com/secmon-lab/tasklens/pkg/utils/retry"
)

// client implements Service interface
type client struct {
	llmClient   gollem.LLMClient
	policy      retry.Policy
	clock       retry.Clock
	callTimeout time.Duration
}

// Option is a functional option for client configuration
type Option func(*client)

// WithRetryPolicy overrides the default 1s/2s/4s policy
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *client) { c.policy = p }
}

// WithClock replaces the clock used for backoff
func WithClock(clock retry.Clock) Option {
	return func(c *client) { c.clock = clock }
}

// WithCallTimeout bounds a single LLM call
func WithCallTimeout(d time.Duration) Option {
	return func(c *client) { c.callTimeout = d }
}

// New creates a new extraction service with the provided LLM client
func New(llmClient gollem.LLMClient, opts ...Option) (Service, error) {
	if llmClient == nil {
		return nil, goerr.Wrap(model.ErrConfiguration, "LLM client is required for extraction")
	}

	c := &client{
		llmClient:   llmClient,
		policy:      retry.DefaultPolicy(),
		clock:       retry.RealClock(),
		callTimeout: 2 * time.Minute,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *client) Extract(ctx context.Context, input Input) (*Result, error) {
	logger := logging.From(ctx)
	userPrompt := buildUserPrompt(input)

	var text string
	machine := retry.New(c.policy,
		retry.WithClock(c.clock),
		retry.WithClassifier(Classify),
		retry.WithObserver(func(tr retry.Transition) {
			if tr.To == retry.StateBackingOff {
				logger.Warn("extraction call failed, backing off",
					"attempt", tr.Attempt,
					"backoff", tr.Backoff,
					"error", tr.Err,
				)
			}
		}),
	)

	err := machine.Run(ctx, func(ctx context.Context) error {
		// an in-flight call is bounded by its own timeout, not by run cancellation
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.callTimeout)
		defer cancel()

		session, err := c.llmClient.NewSession(callCtx,
			gollem.WithSessionSystemPrompt(systemPrompt),
		)
		if err != nil {
			return goerr.Wrap(err, "failed to create LLM session")
		}

		resp, err := session.GenerateContent(callCtx, gollem.Text(userPrompt))
		if err != nil {
			return goerr.Wrap(err, "failed to generate content from LLM")
		}
		if resp == nil {
			text = ""
			return nil
		}
		text = strings.Join(resp.Texts, "\n")
		return nil
	})

	if err != nil {
		if ctx.Err() != nil {
			return nil, goerr.Wrap(err, "extraction cancelled", goerr.V("attempts", machine.Attempts()))
		}
		sentinel := model.ErrTransientService
		if Classify(err) == retry.Permanent {
			sentinel = model.ErrPermanentService
		}
		return nil, goerr.Wrap(sentinel, "extraction call failed",
			goerr.V("attempts", machine.Attempts()),
			goerr.V("error", err.Error()),
		)
	}

	candidates, dropped, unparsable := ParseRecords(text)
	if unparsable {
		logger.Warn("extraction response contained no records", "response_length", len(text))
	}

	return &Result{
		Candidates: candidates,
		Dropped:    dropped,
		Unparsable: unparsable,
		Attempts:   machine.Attempts(),
	}, nil
}
