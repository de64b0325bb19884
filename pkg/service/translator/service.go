package translator

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
	"github.com/secmon-lab/tasklens/pkg/domain/types"
)

//go:embed prompt/system.md
var systemPromptTmpl string

var systemPrompt = template.Must(template.New("translator_system").Parse(systemPromptTmpl))

var fieldDescriptions = map[types.QueryField]string{
	types.QueryFieldPerson:   "name of the assigner or the assignee",
	types.QueryFieldAssigner: "name of the person who asked for the task",
	types.QueryFieldAssignee: "name of the person who should do the task",
	types.QueryFieldStatus:   "open, completed or unknown",
	types.QueryFieldUrgency:  "low, normal or high",
	types.QueryFieldDate:     "date the task was mentioned, YYYY-MM-DD",
	types.QueryFieldText:     "words in the task description or quote",
}

var allOperators = []types.QueryOperator{
	types.QueryOpEq,
	types.QueryOpContains,
	types.QueryOpGte,
	types.QueryOpLte,
}

// client implements Service with an LLM
type client struct {
	llmClient gollem.LLMClient
}

// New creates an LLM backed translator
func New(llmClient gollem.LLMClient) (Service, error) {
	if llmClient == nil {
		return nil, goerr.Wrap(model.ErrConfiguration, "LLM client is required for translation")
	}
	return &client{llmClient: llmClient}, nil
}

type llmPredicate struct {
	Field  string   `json:"field"`
	Op     string   `json:"op"`
	Values []string `json:"values"`
}

type llmPlan struct {
	Understood     bool           `json:"understood"`
	Intent         string         `json:"intent"`
	Predicates     []llmPredicate `json:"predicates"`
	SortField      string         `json:"sort_field"`
	SortDescending bool           `json:"sort_descending"`
	Limit          int            `json:"limit"`
}

func planSchema() *gollem.Parameter {
	fields := make([]string, 0, len(types.AllQueryFields()))
	for _, f := range types.AllQueryFields() {
		fields = append(fields, f.String())
	}
	ops := make([]string, 0, len(allOperators))
	for _, op := range allOperators {
		ops = append(ops, op.String())
	}

	return &gollem.Parameter{
		Title:       "QueryPlan",
		Description: "Structured read-only query over action items",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"understood": {
				Type:        gollem.TypeBoolean,
				Description: "false when the question cannot be answered with the allowed filters",
				Required:    true,
			},
			"intent": {
				Type:        gollem.TypeString,
				Description: "read for questions, write when the question asks to modify data",
				Required:    true,
				Enum:        []string{types.QueryIntentRead.String(), "write"},
			},
			"predicates": {
				Type:        gollem.TypeArray,
				Description: "conditions that all must hold",
				Required:    true,
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"field":  {Type: gollem.TypeString, Enum: fields, Required: true},
						"op":     {Type: gollem.TypeString, Enum: ops, Required: true},
						"values": {Type: gollem.TypeArray, Items: &gollem.Parameter{Type: gollem.TypeString}, Required: true},
					},
				},
			},
			"sort_field": {
				Type: gollem.TypeString,
				Enum: []string{
					types.SortFieldDate.String(),
					types.SortFieldExtracted.String(),
					types.SortFieldConfidence.String(),
					types.SortFieldUrgency.String(),
				},
			},
			"sort_descending": {Type: gollem.TypeBoolean},
			"limit":           {Type: gollem.TypeInteger, Description: "0 for the default"},
		},
	}
}

func buildSystemPrompt(input Input) (string, error) {
	type fieldDoc struct {
		Name        string
		Description string
		Operators   string
	}

	data := struct {
		Today  string
		Fields []fieldDoc
		People string
	}{
		Today:  input.Now.Format(model.QueryDateLayout),
		People: strings.Join(input.KnownPeople, ", "),
	}

	for _, f := range types.AllQueryFields() {
		var ops []string
		for _, op := range allOperators {
			if op.AllowedFor(f) {
				ops = append(ops, op.String())
			}
		}
		data.Fields = append(data.Fields, fieldDoc{
			Name:        f.String(),
			Description: fieldDescriptions[f],
			Operators:   strings.Join(ops, ", "),
		})
	}

	var buf bytes.Buffer
	if err := systemPrompt.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to execute translator system prompt template")
	}
	return buf.String(), nil
}

func (c *client) Translate(ctx context.Context, input Input) (*model.QueryPlan, error) {
	prompt, err := buildSystemPrompt(input)
	if err != nil {
		return nil, err
	}

	session, err := c.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(planSchema()),
		gollem.WithSessionSystemPrompt(prompt),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create session for translation")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text("Question: "+input.Question))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate query plan")
	}
	if resp == nil || len(resp.Texts) == 0 {
		return nil, goerr.Wrap(model.ErrParse, "translation returned empty result")
	}

	return parsePlan(strings.Join(resp.Texts, "\n"))
}

// parsePlan locates the JSON object in a response and converts it into a QueryPlan.
// Field and operator names are passed through as given so that validation can reject them.
func parsePlan(text string) (*model.QueryPlan, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, goerr.Wrap(model.ErrParse, "no JSON object in translation response", goerr.V("response", text))
	}

	var raw llmPlan
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, goerr.Wrap(model.ErrParse, "failed to parse translation response",
			goerr.V("response", text), goerr.V("error", err.Error()))
	}
	if !raw.Understood {
		return nil, goerr.Wrap(ErrNotUnderstood, "translator could not map the question")
	}

	plan := &model.QueryPlan{
		Entity: types.QueryEntityActionItems,
		Intent: types.QueryIntent(raw.Intent),
		Limit:  raw.Limit,
	}
	for _, p := range raw.Predicates {
		plan.Predicates = append(plan.Predicates, model.Predicate{
			Field:  types.QueryField(p.Field),
			Op:     types.QueryOperator(p.Op),
			Values: p.Values,
		})
	}
	if raw.SortField != "" {
		plan.Sort = &model.SortSpec{
			Field:      types.SortField(raw.SortField),
			Descending: raw.SortDescending,
		}
	}

	return plan, nil
}
