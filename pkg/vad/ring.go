package vad

import "github.com/scriptorhq/scriptor/pkg/audio"

// RingBufferDurationMS is the default pre-roll window retained before a
// SpeechStart event, per spec.md §4.2's "captured audio must include a
// short pre-roll so the leading edge of an utterance is not clipped".
const RingBufferDurationMS = 600

// RingBuffer is a bounded FIFO of recent frames. Once full, pushing a new
// frame drops the oldest — it exists purely to flush into the dictation
// buffer the instant speech is confirmed, not as a durable store.
type RingBuffer struct {
	frames []audio.Frame
	cap    int
	next   int
	size   int
}

// NewRingBuffer sizes a RingBuffer to hold durationMS of audio at the given
// frame length.
func NewRingBuffer(durationMS, frameMillis int) *RingBuffer {
	cap := durationMS / frameMillis
	if cap < 1 {
		cap = 1
	}
	return &RingBuffer{frames: make([]audio.Frame, cap), cap: cap}
}

// Push appends a frame, evicting the oldest once the buffer is full.
func (r *RingBuffer) Push(f audio.Frame) {
	r.frames[r.next] = f
	r.next = (r.next + 1) % r.cap
	if r.size < r.cap {
		r.size++
	}
}

// Drain returns the buffered frames in chronological order and empties the
// buffer.
func (r *RingBuffer) Drain() []audio.Frame {
	if r.size == 0 {
		return nil
	}
	out := make([]audio.Frame, r.size)
	start := (r.next - r.size + r.cap) % r.cap
	for i := 0; i < r.size; i++ {
		out[i] = r.frames[(start+i)%r.cap]
	}
	r.next = 0
	r.size = 0
	return out
}

// Len reports how many frames are currently buffered.
func (r *RingBuffer) Len() int { return r.size }
