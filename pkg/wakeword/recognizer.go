package wakeword

import (
	"context"
	"sync"

	"github.com/scriptorhq/scriptor/pkg/audio"
	"github.com/scriptorhq/scriptor/pkg/transcriber"
)

// TranscriberRecognizer adapts any transcriber.Transcriber into a
// Recognizer by accumulating Activation-phase frames and decoding them in
// one shot on Recognize, per spec.md §4.3's "given a sequence of frames,
// yields a final recognized phrase" contract. This lets the wake-word path
// and the post-dictation transcription path share one loaded model instead
// of requiring a second, purpose-built spotter.
type TranscriberRecognizer struct {
	engine     transcriber.Transcriber
	sampleRate int

	mu     sync.Mutex
	frames []audio.Frame
}

// NewTranscriberRecognizer wraps engine, already loaded, as a Recognizer.
func NewTranscriberRecognizer(engine transcriber.Transcriber, sampleRate int) *TranscriberRecognizer {
	return &TranscriberRecognizer{engine: engine, sampleRate: sampleRate}
}

// Ready always reports true: the wrapped engine is loaded at construction
// time, so this recognizer never reports a Preparing window of its own.
func (r *TranscriberRecognizer) Ready() bool { return true }

// Feed accumulates a frame for the next Recognize call.
func (r *TranscriberRecognizer) Feed(f audio.Frame) {
	r.mu.Lock()
	r.frames = append(r.frames, f)
	r.mu.Unlock()
}

// Recognize decodes every frame accumulated since the last call and clears
// the buffer, regardless of outcome.
func (r *TranscriberRecognizer) Recognize(ctx context.Context) (string, error) {
	r.mu.Lock()
	frames := r.frames
	r.frames = nil
	r.mu.Unlock()

	if len(frames) == 0 {
		return "", nil
	}
	pcm := audio.ConcatPCM(frames)
	result, err := r.engine.Transcribe(ctx, pcm, r.sampleRate, "")
	if err != nil {
		return "", err
	}
	return result.Text, nil
}
