// Package vad classifies audio frames as speech or non-speech and holds the
// pre-roll ring buffer that prevents the leading edge of an utterance from
// being clipped, per spec.md §4.2.
package vad

import (
	"fmt"
	"time"

	"github.com/scriptorhq/scriptor/pkg/audio"
)

// EventType tags a state change emitted by Detector.Process.
type EventType string

const (
	SpeechStart EventType = "SPEECH_START"
	SpeechEnd   EventType = "SPEECH_END"
)

// Event reports a speech boundary crossing.
type Event struct {
	Type      EventType
	Timestamp time.Time
}

// essentiallySilentMax is the hard ceiling for the "essentially silent" fast
// path. spec.md §4.2 and §9 are explicit that raising this constant breaks
// the pipeline by suppressing real speech, so Detector construction rejects
// any threshold above it.
const essentiallySilentMax = 15

// Config configures a Detector. Aggressiveness follows the conventional
// 0..3 VAD scale; each level tightens the RMS threshold and raises the
// number of consecutive frames required to confirm speech onset, following
// the teacher's RMSVAD hysteresis design (pkg/orchestrator/vad.go in the
// retrieval pack's lokutor-orchestrator).
type Config struct {
	Aggressiveness      int           // 0..3, default 1
	SilenceThreshold     time.Duration // default 1.5s, spec.md §4.2
	EssentiallySilentMax int16         // default 3, must be <= 15
	FrameMillis          int           // used to convert silence duration to frame counts
}

// DefaultConfig returns the spec.md §4.2 defaults.
func DefaultConfig() Config {
	return Config{
		Aggressiveness:       1,
		SilenceThreshold:     1500 * time.Millisecond,
		EssentiallySilentMax: 3,
		FrameMillis:          audio.DefaultFrameMillis,
	}
}

var aggressivenessThresholds = [4]float64{0.012, 0.018, 0.028, 0.045}
var aggressivenessMinConfirmed = [4]int{4, 6, 8, 10}

// Detector is a lightweight RMS-based VAD with hysteresis, generalized from
// a fixed threshold into the 0..3 aggressiveness scale spec.md calls for.
type Detector struct {
	threshold    float64
	minConfirmed int
	silenceLimit time.Duration
	essSilent    int16

	consecutive  int
	speaking     bool
	silenceStart time.Time
}

// New builds a Detector from cfg. It returns an error if
// EssentiallySilentMax exceeds the hard ceiling — see spec.md §8's boundary
// behavior for this constant.
func New(cfg Config) (*Detector, error) {
	if cfg.EssentiallySilentMax > essentiallySilentMax {
		return nil, fmt.Errorf("vad: essentially-silent threshold %d exceeds maximum %d; raising it suppresses real speech", cfg.EssentiallySilentMax, essentiallySilentMax)
	}
	a := cfg.Aggressiveness
	if a < 0 || a > 3 {
		a = 1
	}
	return &Detector{
		threshold:    aggressivenessThresholds[a],
		minConfirmed: aggressivenessMinConfirmed[a],
		silenceLimit: cfg.SilenceThreshold,
		essSilent:    cfg.EssentiallySilentMax,
	}, nil
}

// EssentiallySilent reports whether a frame bypasses VAD and is treated as
// non-speech outright, per the spec.md §4.2 fast path.
func (d *Detector) EssentiallySilent(f audio.Frame) bool {
	return f.MaxAbs() <= d.essSilent
}

// Process classifies one frame, returning a boundary Event when speech
// starts or the configured silence threshold is reached while triggered.
// A nil Event means no boundary was crossed on this frame; the bool is true
// while the frame is above the threshold or a detected utterance is still
// within its silence allowance.
func (d *Detector) Process(f audio.Frame) (*Event, bool) {
	now := time.Now()

	if d.EssentiallySilent(f) {
		return d.feedSilence(now)
	}

	rms := calculateRMS(f.Samples)
	if rms > d.threshold {
		d.consecutive++
		if !d.speaking {
			if d.consecutive >= d.minConfirmed {
				d.speaking = true
				return &Event{Type: SpeechStart, Timestamp: now}, true
			}
			return nil, true
		}
		d.silenceStart = time.Time{}
		return nil, true
	}
	return d.feedSilence(now)
}

func (d *Detector) feedSilence(now time.Time) (*Event, bool) {
	d.consecutive = 0
	if !d.speaking {
		return nil, false
	}
	if d.silenceStart.IsZero() {
		d.silenceStart = now
	}
	if now.Sub(d.silenceStart) >= d.silenceLimit {
		d.speaking = false
		d.silenceStart = time.Time{}
		return &Event{Type: SpeechEnd, Timestamp: now}, false
	}
	return nil, true
}

// IsSpeaking reports the detector's current classification.
func (d *Detector) IsSpeaking() bool { return d.speaking }

// Reset clears all hysteresis state, used when a dictation session ends.
func (d *Detector) Reset() {
	d.consecutive = 0
	d.speaking = false
	d.silenceStart = time.Time{}
}

func calculateRMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s) / 32768.0
		sum += v * v
	}
	return sqrt(sum / float64(len(samples)))
}

// sqrt avoids importing math in the hot path's only caller list beyond this
// one use; kept as a thin wrapper so callers read clearly.
func sqrt(v float64) float64 {
	if v <= 0 {
		return 0
	}
	// Newton's method converges in a handful of iterations for the 0..1
	// range RMS values fall in; avoids a second stdlib import for one call
	// site. math.Sqrt would be equally fine — this just mirrors the
	// single-purpose helpers the teacher package favors.
	x := v
	for i := 0; i < 8; i++ {
		x = 0.5 * (x + v/x)
	}
	return x
}
