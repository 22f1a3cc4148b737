package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

// OllamaConfig configures an OllamaBackend.
type OllamaConfig struct {
	Host  string
	Model string
}

// OllamaBackend generates shaped text via a local Ollama server, streaming
// tokens as they arrive. This is the same official client the rest of the
// ecosystem uses for local-model chat; connection pooling mirrors the
// low-latency local-request tuning used for repeated calls to the same
// host.
type OllamaBackend struct {
	client *api.Client
	model  string
}

// NewOllamaBackend dials no connection eagerly; api.Client is lazy per
// request.
func NewOllamaBackend(cfg OllamaConfig) (*OllamaBackend, error) {
	host := strings.TrimSuffix(cfg.Host, "/")
	parsed, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid ollama host: %v", ErrNotLoaded, err)
	}

	httpClient := &http.Client{
		Timeout: 0, // streaming responses must not be capped by an overall timeout
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &OllamaBackend{
		client: api.NewClient(parsed, httpClient),
		model:  cfg.Model,
	}, nil
}

func (o *OllamaBackend) Name() string { return "ollama:" + o.model }

// Generate streams a chat completion token by token, invoking emit once per
// content delta the server sends.
func (o *OllamaBackend) Generate(ctx context.Context, req Request, emit TokenFunc) error {
	req = defaultSampling(req)

	messages := []api.Message{
		{Role: "system", Content: systemPrompt(req.Mode)},
		{Role: "user", Content: userPrompt(req.Text)},
	}

	stream := true
	err := o.client.Chat(ctx, &api.ChatRequest{
		Model:    o.model,
		Messages: messages,
		Stream:   &stream,
		Options: map[string]any{
			"temperature": req.Temperature,
			"top_p":       req.TopP,
			"num_predict": req.MaxTokens,
		},
	}, func(resp api.ChatResponse) error {
		if resp.Message.Content != "" {
			emit(resp.Message.Content)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	return nil
}
