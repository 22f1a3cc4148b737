package llm

import (
	"context"
	"fmt"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
)

// OpenAIConfig configures an OpenAIBackend. BaseURL may point at a local
// OpenAI-compatible inference server (e.g. one serving a channel-tagged
// model), not only api.openai.com.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAIBackend generates shaped text via the OpenAI chat completions
// streaming API, or any OpenAI-compatible server reachable at BaseURL.
type OpenAIBackend struct {
	client oai.Client
	model  string
}

// NewOpenAIBackend constructs an OpenAIBackend.
func NewOpenAIBackend(cfg OpenAIConfig) (*OpenAIBackend, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model must not be empty", ErrNotLoaded)
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIBackend{
		client: oai.NewClient(opts...),
		model:  cfg.Model,
	}, nil
}

func (o *OpenAIBackend) Name() string { return "openai:" + o.model }

// Generate streams a chat completion, invoking emit once per content delta.
func (o *OpenAIBackend) Generate(ctx context.Context, req Request, emit TokenFunc) error {
	req = defaultSampling(req)

	params := oai.ChatCompletionNewParams{
		Model: shared.ChatModel(o.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(systemPrompt(req.Mode)),
			oai.UserMessage(userPrompt(req.Text)),
		},
		Temperature: param.NewOpt(req.Temperature),
		TopP:        param.NewOpt(req.TopP),
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = param.NewOpt(int64(req.MaxTokens))
	}

	stream := o.client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			emit(delta)
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	return nil
}
