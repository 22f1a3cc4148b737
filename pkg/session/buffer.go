package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/scriptorhq/scriptor/pkg/audio"
)

// longBufferWarnInterval is how often a still-growing DictationBuffer emits
// a warning event, per spec.md §8 ("very long DictationBuffer (> 5
// minutes)... a warning event is emitted at 5-minute intervals").
const longBufferWarnInterval = 5 * time.Minute

// DictationBuffer is an ordered, growable sequence of audio frames. It is
// never truncated; very long recordings only trigger a warning, per
// spec.md §3 and §9 ("arena/index for DictationBuffer... concatenation is
// a single pass at the transition to Processing").
//
// JobID identifies this one dictation attempt end to end, surviving the
// Dictation->Processing ownership transfer: the Transcriber/LLM workers
// carry it on their Action and the Machine compares it against its own
// notion of the current job before delivering, so a result that outlives
// its own abort is recognized as stale instead of delivered.
type DictationBuffer struct {
	JobID string

	frames    []audio.Frame
	startedAt time.Time
	lastWarn  time.Duration
}

// NewDictationBuffer starts an empty buffer, optionally pre-seeded with
// ring-buffer pre-roll frames, tagged with a fresh JobID.
func NewDictationBuffer(preroll []audio.Frame) *DictationBuffer {
	return &DictationBuffer{
		JobID:     uuid.NewString(),
		frames:    append([]audio.Frame{}, preroll...),
		startedAt: time.Now(),
	}
}

// Seed prepends pre-roll frames flushed from the VAD ring buffer at the
// moment speech is confirmed, per spec.md §4.2. Only meaningful before any
// Append calls; seeding after the buffer has started growing would
// misorder the recording.
func (b *DictationBuffer) Seed(preroll []audio.Frame) {
	if len(preroll) == 0 {
		return
	}
	b.frames = append(append([]audio.Frame{}, preroll...), b.frames...)
}

// Append adds a frame, returning true if this append crossed a
// longBufferWarnInterval boundary and the caller should emit a warning
// event.
func (b *DictationBuffer) Append(f audio.Frame) (warn bool) {
	b.frames = append(b.frames, f)
	elapsed := time.Since(b.startedAt)
	if elapsed-b.lastWarn >= longBufferWarnInterval {
		b.lastWarn = elapsed
		return true
	}
	return false
}

// Len reports the number of buffered frames.
func (b *DictationBuffer) Len() int { return len(b.frames) }

// Empty reports whether no frames were ever appended, used for the
// spec.md §8 boundary case ("Empty DictationBuffer triggers no delivery").
func (b *DictationBuffer) Empty() bool { return len(b.frames) == 0 }

// Elapsed reports how long the buffer has been accumulating.
func (b *DictationBuffer) Elapsed() time.Duration { return time.Since(b.startedAt) }

// PCM concatenates all frames into a single PCM16 blob in one pass, done
// only once at the transition to Processing per spec.md §9.
func (b *DictationBuffer) PCM() []byte {
	return audio.ConcatPCM(b.frames)
}
