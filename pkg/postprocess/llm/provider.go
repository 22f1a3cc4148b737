package llm

import (
	"context"
	"errors"
)

// ErrGenerationFailed wraps a provider-level generation error.
var ErrGenerationFailed = errors.New("llm: generation failed")

// ErrNotLoaded indicates the backend's model or connection is unavailable.
var ErrNotLoaded = errors.New("llm: model not loaded")

// Mode is the shaping mode requested for a generation, mirroring the
// session's dictation Mode.
type Mode string

const (
	ModeProofread Mode = "proofread"
	ModeLetter    Mode = "letter"
)

// Request is one shaping job: the transcribed text to shape, the mode that
// selects the prompt template, and sampling parameters tuned per model
// family.
type Request struct {
	Mode        Mode
	Text        string
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// TokenFunc is called once per token as a generation streams in. Providers
// call it synchronously from within Generate; the caller is responsible for
// feeding each token to a StreamParser.
type TokenFunc func(token string)

// Provider generates a shaped response for a Request, invoking emit once
// per streamed token.
type Provider interface {
	Generate(ctx context.Context, req Request, emit TokenFunc) error
	Name() string
}
