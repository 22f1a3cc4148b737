// Package transcriber converts a completed DictationBuffer's PCM audio into
// text, per spec.md §4.5. The concrete engine is a pluggable capability;
// this package defines the contract and two adapters — a file-style
// backend (pkg/transcriber/sherpa) and a streaming-style backend
// (pkg/transcriber/streamws).
package transcriber

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Result is the outcome of a successful Transcribe call. Text may be empty
// — that is not an error, per spec.md §4.5's "empty transcription" event.
type Result struct {
	Text    string
	Elapsed time.Duration
}

// Transcriber consumes raw PCM16 mono audio and an optional free-form hint
// (used by some engines to bias decoding toward domain vocabulary) and
// produces a Result, or one of the sentinel errors below.
type Transcriber interface {
	Transcribe(ctx context.Context, pcm []byte, sampleRate int, hint string) (Result, error)
	Name() string
}

// Sentinel errors forming the taxonomy of spec.md §4.5: ModelNotLoaded,
// AudioFormatUnsupported, InternalEngineError. Backends wrap these with
// fmt.Errorf("%w: ...") so callers can errors.Is against them while still
// getting engine-specific detail.
var (
	ErrModelNotLoaded        = errors.New("transcriber: model not loaded")
	ErrAudioFormatUnsupported = errors.New("transcriber: audio format unsupported")
)

// InternalEngineError wraps an engine-specific failure that doesn't fit the
// other two sentinels.
type InternalEngineError struct {
	Msg string
	Err error
}

func (e *InternalEngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transcriber: internal engine error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("transcriber: internal engine error: %s", e.Msg)
}

func (e *InternalEngineError) Unwrap() error { return e.Err }

// ErrEmptyTranscription names the empty-transcription outcome. Transcribe
// never returns it (empty text with a nil error is the contract), and no
// code in this module returns or checks it.
var ErrEmptyTranscription = errors.New("transcriber: empty transcription")
