// Package streamws adapts a remote streaming ASR engine reachable over a
// websocket to the transcriber.Transcriber contract — spec.md §4.5's
// "streaming-style" backend, which may internally chunk long audio rather
// than requiring a complete file up front.
//
// The wire protocol mirrors the one the rest of this codebase already uses
// for a different streaming capability (LLM TTS in the teacher project):
// a JSON request opens the turn, binary frames carry audio in, text
// messages carry interim/final transcripts out, and a text "EOS" message
// ends the turn.
package streamws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/scriptorhq/scriptor/pkg/transcriber"
)

// Config addresses the remote streaming ASR endpoint.
type Config struct {
	Host   string // e.g. "asr.example.internal"
	Path   string // e.g. "/v1/stream"
	APIKey string
}

// Backend holds a reusable websocket connection to a streaming ASR
// service, reconnecting lazily the same way the teacher's LokutorTTS
// provider does.
type Backend struct {
	cfg Config

	mu   sync.Mutex
	conn *websocket.Conn
}

// New builds a Backend. The connection is not opened until the first
// Transcribe call.
func New(cfg Config) *Backend {
	return &Backend{cfg: cfg}
}

func (b *Backend) Name() string { return "streaming-ws" }

func (b *Backend) getConn(ctx context.Context) (*websocket.Conn, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn != nil {
		return b.conn, nil
	}
	u := url.URL{Scheme: "wss", Host: b.cfg.Host, Path: b.cfg.Path, RawQuery: "api_key=" + b.cfg.APIKey}
	conn, _, err := websocket.Dial(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: streaming-ws dial failed: %v", transcriber.ErrModelNotLoaded, err)
	}
	b.conn = conn
	return conn, nil
}

type startRequest struct {
	SampleRate int    `json:"sample_rate"`
	Encoding   string `json:"encoding"`
	Hint       string `json:"hint,omitempty"`
}

// Transcribe streams pcm to the remote engine in fixed-size chunks and
// collects the final transcript. Interim text messages (isFinal=false, by
// convention a leading "~" byte) are ignored; only the terminal transcript
// is returned, consistent with the Transcriber contract's single blocking
// result.
func (b *Backend) Transcribe(ctx context.Context, pcm []byte, sampleRate int, hint string) (transcriber.Result, error) {
	conn, err := b.getConn(ctx)
	if err != nil {
		return transcriber.Result{}, err
	}

	start := time.Now()

	req := startRequest{SampleRate: sampleRate, Encoding: "pcm_s16le", Hint: hint}
	if err := wsjson.Write(ctx, conn, req); err != nil {
		b.dropConn()
		return transcriber.Result{}, &transcriber.InternalEngineError{Msg: "failed to send start frame", Err: err}
	}

	const chunkBytes = 3200 // 100ms of 16kHz mono PCM16
	for off := 0; off < len(pcm); off += chunkBytes {
		end := off + chunkBytes
		if end > len(pcm) {
			end = len(pcm)
		}
		if err := conn.Write(ctx, websocket.MessageBinary, pcm[off:end]); err != nil {
			b.dropConn()
			return transcriber.Result{}, &transcriber.InternalEngineError{Msg: "failed to send audio frame", Err: err}
		}
	}
	if err := conn.Write(ctx, websocket.MessageText, []byte("EOS")); err != nil {
		b.dropConn()
		return transcriber.Result{}, &transcriber.InternalEngineError{Msg: "failed to send end-of-stream", Err: err}
	}

	var final string
	for {
		msgType, payload, err := conn.Read(ctx)
		if err != nil {
			b.dropConn()
			return transcriber.Result{}, &transcriber.InternalEngineError{Msg: "failed to read transcript", Err: err}
		}
		if msgType != websocket.MessageText {
			continue
		}
		var msg struct {
			Transcript string `json:"transcript"`
			IsFinal    bool   `json:"is_final"`
			Error      string `json:"error,omitempty"`
		}
		if err := json.Unmarshal(payload, &msg); err != nil {
			continue
		}
		if msg.Error != "" {
			return transcriber.Result{}, &transcriber.InternalEngineError{Msg: msg.Error}
		}
		if msg.IsFinal {
			final = msg.Transcript
			break
		}
	}

	return transcriber.Result{Text: final, Elapsed: time.Since(start)}, nil
}

func (b *Backend) dropConn() {
	b.mu.Lock()
	if b.conn != nil {
		b.conn.Close(websocket.StatusAbnormalClosure, "streamws: error")
		b.conn = nil
	}
	b.mu.Unlock()
}

// Close releases the underlying connection, if any.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn != nil {
		err := b.conn.Close(websocket.StatusNormalClosure, "")
		b.conn = nil
		return err
	}
	return nil
}
