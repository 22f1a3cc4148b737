package wakeword

import (
	"context"
	"sync"

	"github.com/scriptorhq/scriptor/pkg/audio"
)

// prepareBufferMS is the bounded drop-oldest buffer held while the
// recognizer is still loading, per spec.md §4.3 ("≤ 2 s").
const prepareBufferMS = 2000

// Recognizer is the pluggable wake-word recognition capability. Ready
// reports whether the underlying model has finished loading. Feed appends a
// frame to the recognizer's rolling window; Recognize asks it to finalize
// and return the best phrase it heard, or "" if nothing intelligible
// accumulated.
type Recognizer interface {
	Ready() bool
	Feed(f audio.Frame)
	Recognize(ctx context.Context) (phrase string, err error)
}

// Hit is emitted when the router resolves a recognized phrase to a
// configured wake word.
type Hit struct {
	Entry Entry
}

// Router dispatches capture frames to the wake-word recognizer while the
// session is in Activation, and buffers audio in a bounded drop-oldest
// queue if the recognizer has not finished loading yet (the session
// reports a Preparing substate during that window).
type Router struct {
	table      *Table
	recognizer Recognizer
	frameMillis int

	mu      sync.Mutex
	pending []audio.Frame
	maxPending int
}

// NewRouter builds a Router over table and recognizer. frameMillis sizes
// the prepare-buffer capacity.
func NewRouter(table *Table, recognizer Recognizer, frameMillis int) *Router {
	max := prepareBufferMS / frameMillis
	if max < 1 {
		max = 1
	}
	return &Router{table: table, recognizer: recognizer, frameMillis: frameMillis, maxPending: max}
}

// Preparing reports whether the recognizer has not finished loading, which
// the caller surfaces as the Preparing IPC substate.
func (r *Router) Preparing() bool {
	return !r.recognizer.Ready()
}

// Feed routes one frame. If the recognizer is still loading, the frame is
// held in a bounded drop-oldest buffer and replayed into the recognizer
// once it becomes ready (the caller should call Drain after a readiness
// transition).
func (r *Router) Feed(f audio.Frame) {
	if !r.recognizer.Ready() {
		r.mu.Lock()
		r.pending = append(r.pending, f)
		if len(r.pending) > r.maxPending {
			r.pending = r.pending[len(r.pending)-r.maxPending:]
		}
		r.mu.Unlock()
		return
	}
	r.Drain()
	r.recognizer.Feed(f)
}

// Drain replays any frames buffered while the recognizer was loading, once
// it becomes ready.
func (r *Router) Drain() {
	r.mu.Lock()
	pending := r.pending
	r.pending = nil
	r.mu.Unlock()
	for _, f := range pending {
		r.recognizer.Feed(f)
	}
}

// Resolve asks the recognizer to finalize its current window and, on a
// match against the wake-word table, returns the Hit. A false ok with a nil
// error means the recognizer produced no phrase that matched any
// configured wake word.
func (r *Router) Resolve(ctx context.Context) (Hit, bool, error) {
	phrase, err := r.recognizer.Recognize(ctx)
	if err != nil {
		return Hit{}, false, err
	}
	if phrase == "" {
		return Hit{}, false, nil
	}
	entry, ok := r.table.Lookup(phrase)
	if !ok {
		return Hit{}, false, nil
	}
	return Hit{Entry: entry}, true, nil
}
