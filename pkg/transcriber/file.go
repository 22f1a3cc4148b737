package transcriber

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/scriptorhq/scriptor/pkg/audio"
)

// Engine is the minimal contract a file-style ASR engine needs: given a
// path to a complete WAV file, produce text.
type Engine interface {
	TranscribeFile(ctx context.Context, path string) (string, error)
	Name() string
}

// FileBackend adapts a file-style Engine to Transcriber by building a WAV
// container from the PCM blob, writing it to a scoped temporary file, and
// guaranteeing its deletion on every exit path — spec.md §4.5's "the
// Transcriber owns a scoped temporary-file resource... with guaranteed
// deletion on all exit paths".
type FileBackend struct {
	engine Engine
}

// NewFileBackend wraps engine.
func NewFileBackend(engine Engine) *FileBackend {
	return &FileBackend{engine: engine}
}

func (f *FileBackend) Name() string { return f.engine.Name() }

func (f *FileBackend) Transcribe(ctx context.Context, pcm []byte, sampleRate int, hint string) (Result, error) {
	wavData := audio.NewWavBuffer(pcm, sampleRate)

	tmp, err := os.CreateTemp("", "scriptor-dictation-*.wav")
	if err != nil {
		return Result{}, &InternalEngineError{Msg: "failed to create temp file", Err: err}
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.Write(wavData); err != nil {
		tmp.Close()
		return Result{}, &InternalEngineError{Msg: "failed to write temp file", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return Result{}, &InternalEngineError{Msg: "failed to close temp file", Err: err}
	}

	start := time.Now()
	text, err := f.engine.TranscribeFile(ctx, path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrModelNotLoaded, err)
	}
	return Result{Text: text, Elapsed: time.Since(start)}, nil
}
