// Package sherpa adapts an offline Whisper-style sherpa-onnx recognizer to
// the transcriber.Transcriber contract — the "file-style" backend of
// spec.md §4.5, which decodes a complete audio buffer in one call rather
// than streaming partial results.
package sherpa

import (
	"context"
	"fmt"
	"sync"
	"time"

	sherpa_onnx "github.com/k2-fsa/sherpa-onnx-go/sherpa_onnx"

	"github.com/scriptorhq/scriptor/pkg/transcriber"
)

// Config configures the offline Whisper model, grounded on the
// encoder/decoder/tokens triple every sherpa-onnx Whisper setup in the
// retrieval pack uses.
type Config struct {
	Encoder    string
	Decoder    string
	Tokens     string
	Language   string // "" triggers auto-detection
	NumThreads int
	Provider   string // "cpu", "cuda", "coreml"
}

// Backend wraps a sherpa-onnx OfflineRecognizer. sherpa-onnx's C bindings
// are not safe for concurrent decode calls on the same recognizer, so
// Transcribe serializes through mu — the Transcriber worker already runs
// at most one dictation at a time per spec.md §5, so this is never a
// bottleneck in practice.
type Backend struct {
	mu         sync.Mutex
	recognizer *sherpa_onnx.OfflineRecognizer
	loaded     bool
}

// New constructs a Backend and loads the model immediately (model loading
// is expensive; spec.md §4.3 treats "recognizer not yet loaded" as a
// legitimate transient state only for the wake-word path, not here — the
// Transcriber is only invoked once a dictation is already complete).
func New(cfg Config) (*Backend, error) {
	rc := sherpa_onnx.OfflineRecognizerConfig{}
	rc.ModelConfig.Whisper.Encoder = cfg.Encoder
	rc.ModelConfig.Whisper.Decoder = cfg.Decoder
	rc.ModelConfig.Whisper.Language = cfg.Language
	rc.ModelConfig.Whisper.Task = "transcribe"
	rc.ModelConfig.Whisper.TailPaddings = -1
	rc.ModelConfig.Tokens = cfg.Tokens
	rc.ModelConfig.NumThreads = cfg.NumThreads
	rc.ModelConfig.Provider = cfg.Provider
	rc.DecodingMethod = "greedy_search"

	recognizer := sherpa_onnx.NewOfflineRecognizer(&rc)
	if recognizer == nil {
		return nil, fmt.Errorf("%w: sherpa-onnx offline recognizer failed to initialize", transcriber.ErrModelNotLoaded)
	}
	return &Backend{recognizer: recognizer, loaded: true}, nil
}

func (b *Backend) Name() string { return "sherpa-onnx-whisper" }

// Transcribe decodes pcm (16-bit signed mono at sampleRate) in a single
// blocking call. hint is not passed to the engine; unsupported sample
// rates surface as AudioFormatUnsupported rather than silently resampling.
func (b *Backend) Transcribe(ctx context.Context, pcm []byte, sampleRate int, hint string) (transcriber.Result, error) {
	if !b.loaded {
		return transcriber.Result{}, transcriber.ErrModelNotLoaded
	}
	if sampleRate != 16000 {
		return transcriber.Result{}, fmt.Errorf("%w: got %d Hz, want 16000", transcriber.ErrAudioFormatUnsupported, sampleRate)
	}

	samples := pcm16ToFloat32(pcm)

	b.mu.Lock()
	defer b.mu.Unlock()

	start := time.Now()
	stream := sherpa_onnx.NewOfflineStream(b.recognizer)
	defer sherpa_onnx.DeleteOfflineStream(stream)

	stream.AcceptWaveform(sampleRate, samples)
	select {
	case <-ctx.Done():
		return transcriber.Result{}, ctx.Err()
	default:
	}
	b.recognizer.Decode(stream)
	result := stream.GetResult()

	return transcriber.Result{Text: result.Text, Elapsed: time.Since(start)}, nil
}

func pcm16ToFloat32(pcm []byte) []float32 {
	n := len(pcm) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v := int16(uint16(pcm[i*2]) | uint16(pcm[i*2+1])<<8)
		out[i] = float32(v) / 32768.0
	}
	return out
}
