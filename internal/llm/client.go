package llm

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/option"
)

// Client is what generators and the analyzer need from a model provider.
type Client interface {
	// GenerateContent returns free text (a document body).
	GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GenerateJSON returns a JSON document with any markdown fence removed.
	GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error)
	GetModel(tier ModelTier) string
	Close() error
}

// NewClient creates the client for config.Provider.
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini, "":
		return NewGeminiClient(ctx, config, apiKey)
	default:
		return nil, &ConfigError{Message: "unsupported provider: " + string(config.Provider)}
	}
}

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
	tracer trace.Tracer
}

// NewGeminiClient creates a Gemini client. Calls are traced with the global
// tracer provider.
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, &ConfigError{Message: "API key is required"}
	}
	if config == nil {
		config = DefaultConfig()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, &APICallError{Message: "failed to create Gemini client", Cause: err}
	}

	return &GeminiClient{
		client: client,
		config: config,
		tracer: otel.Tracer("github.com/jonathan/docpack/internal/llm"),
	}, nil
}

// call describes one model request.
type call struct {
	op          string
	tier        ModelTier
	temperature float32
	json        bool
}

func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.generate(ctx, prompt, call{op: "generate_content", tier: tier, temperature: c.config.Temperature})
}

func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	text, err := c.generate(ctx, prompt, call{op: "generate_json", tier: tier, temperature: c.config.JSONTemperature, json: true})
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

func (c *GeminiClient) generate(ctx context.Context, prompt string, req call) (string, error) {
	modelName := c.config.GetModel(req.tier)
	if modelName == "" {
		return "", &ConfigError{Message: "no model configured for tier " + string(req.tier)}
	}

	ctx, span := c.tracer.Start(ctx, "llm."+req.op, trace.WithAttributes(
		attribute.String("llm.model", modelName),
		attribute.String("llm.tier", string(req.tier)),
		attribute.Int("llm.prompt_bytes", len(prompt)),
	))
	defer span.End()

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(req.temperature)
	if c.config.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(c.config.MaxOutputTokens)
	}
	if c.config.SystemInstruction != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(c.config.SystemInstruction)}}
	}
	if req.json {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		err = &APICallError{Message: "failed to " + strings.ReplaceAll(req.op, "_", " "), Cause: err}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	if resp != nil && resp.UsageMetadata != nil {
		span.SetAttributes(
			attribute.Int("llm.tokens.prompt", int(resp.UsageMetadata.PromptTokenCount)),
			attribute.Int("llm.tokens.output", int(resp.UsageMetadata.CandidatesTokenCount)),
		)
	}

	text, err := responseText(resp)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return text, nil
}

func (c *GeminiClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// responseText joins the text parts of the first candidate. Blocked prompts
// and safety stops are reported as BlockedError.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", &EmptyResponseError{Message: "no response"}
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != genai.BlockReasonUnspecified {
		return "", &BlockedError{Reason: fb.BlockReason.String()}
	}
	if len(resp.Candidates) == 0 {
		return "", &EmptyResponseError{Message: "no candidates in response"}
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", &BlockedError{Reason: candidate.FinishReason.String()}
	}
	if candidate.Content == nil {
		return "", &EmptyResponseError{Message: "no content in response"}
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", &EmptyResponseError{Message: "no text parts in response"}
	}
	return sb.String(), nil
}
