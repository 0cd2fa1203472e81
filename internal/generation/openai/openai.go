package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"ragsum/internal/domain"
	"ragsum/internal/generation"
)

const (
	DefaultModel     = "gpt-4o-mini"
	DefaultAPIKeyEnv = "OPENAI_API_KEY"
)

const instructions = "You write faithful, concise summaries. Use only facts stated in the input. " +
	"Reply with JSON matching the schema."

// Config configures the OpenAI generator. APIKey wins over APIKeyEnv.
type Config struct {
	BaseURL    string
	APIKey     string
	APIKeyEnv  string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// Client summarizes through the OpenAI Responses API with structured output.
type Client struct {
	client *openai.Client
	model  string
}

var _ domain.Generator = (*Client)(nil)

type summaryResponse struct {
	Summary string `json:"summary" jsonschema:"description=The summary as plain prose"`
}

var summarySchema = generateSchema[summaryResponse]()

// NewClient creates a client, or fails with domain.ErrGenerationUnavailable
// when no API key can be found.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = DefaultAPIKeyEnv
	}
	key := cfg.APIKey
	if key == "" {
		key = os.Getenv(cfg.APIKeyEnv)
	}
	if key == "" {
		return nil, fmt.Errorf("%w: missing API key in env %s", domain.ErrGenerationUnavailable, cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithRequestTimeout(cfg.Timeout),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)
	return &Client{client: &client, model: cfg.Model}, nil
}

// Name returns the identifier of this generator.
func (c *Client) Name() string { return "openai" }

// Generate requests a JSON summary of text in about maxSentences sentences.
func (c *Client) Generate(ctx context.Context, text string, maxSentences int) (string, error) {
	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:        "Summary",
			Schema:      summarySchema,
			Strict:      openai.Bool(true),
			Description: openai.String("Summary JSON"),
			Type:        "json_schema",
		},
	}
	params := responses.ResponseNewParams{
		Model:           c.model,
		MaxOutputTokens: openai.Int(1024),
		Instructions:    openai.String(instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(generation.Prompt(text, maxSentences)),
		},
		Text: responses.ResponseTextConfigParam{
			Format: format,
		},
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}
	summary, err := decodeSummary(resp.OutputText())
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}
	return summary, nil
}

func decodeSummary(outputText string) (string, error) {
	s := strings.TrimSpace(outputText)
	if s == "" {
		return "", errors.New("empty model response")
	}
	var out summaryResponse
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return "", fmt.Errorf("unmarshal summary: %w", err)
	}
	out.Summary = strings.TrimSpace(out.Summary)
	if out.Summary == "" {
		return "", errors.New("empty summary")
	}
	return out.Summary, nil
}

func generateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)
	b, err := schema.MarshalJSON()
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	requireAllProperties(m)
	return m
}

// requireAllProperties applies the strict-mode rules: every object lists all
// of its properties as required and forbids additional ones.
func requireAllProperties(schema map[string]any) {
	if t, ok := schema["type"].(string); !ok || t != "object" {
		return
	}
	schema["additionalProperties"] = false
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		return
	}
	required := make([]string, 0, len(props))
	for name, prop := range props {
		required = append(required, name)
		if p, ok := prop.(map[string]any); ok {
			requireAllProperties(p)
		}
	}
	schema["required"] = required
}
