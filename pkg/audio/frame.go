// Package audio owns the microphone input device and produces fixed-size
// PCM frames for the rest of the pipeline.
package audio

import "encoding/binary"

// DefaultSampleRate is the capture rate the rest of the pipeline assumes.
const DefaultSampleRate = 16000

// DefaultFrameMillis is the nominal frame duration.
const DefaultFrameMillis = 30

// FrameSize returns the number of int16 samples in one frame for the given
// sample rate and frame duration.
func FrameSize(sampleRate, frameMillis int) int {
	return sampleRate * frameMillis / 1000
}

// Frame is an immutable, fixed-length block of 16-bit signed PCM samples.
// It carries its own max-absolute-amplitude so gating code (VAD fast path,
// waveform UI) never has to rescan the samples.
type Frame struct {
	Samples   []int16
	maxAbs    int16
	Sequence  uint64
}

// NewFrame builds a Frame from raw little-endian PCM16 bytes.
func NewFrame(seq uint64, pcm []byte) Frame {
	samples := make([]int16, len(pcm)/2)
	var maxAbs int16
	for i := range samples {
		s := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		samples[i] = s
		if a := abs16(s); a > maxAbs {
			maxAbs = a
		}
	}
	return Frame{Samples: samples, maxAbs: maxAbs, Sequence: seq}
}

// MaxAbs returns the frame's maximum absolute sample value (0..32767).
func (f Frame) MaxAbs() int16 {
	return f.maxAbs
}

// Amplitude maps the frame's peak amplitude onto the 0..100 scale used by
// the AUDIO_AMP IPC event.
func (f Frame) Amplitude() int {
	v := int(f.maxAbs) * 100 / 32767
	if v > 100 {
		return 100
	}
	if v < 0 {
		return 0
	}
	return v
}

// Bytes concatenates the frame's samples back into little-endian PCM16.
func (f Frame) Bytes() []byte {
	out := make([]byte, len(f.Samples)*2)
	for i, s := range f.Samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func abs16(v int16) int16 {
	if v < 0 {
		if v == -32768 {
			return 32767
		}
		return -v
	}
	return v
}

// ConcatPCM flattens a slice of Frames into one contiguous PCM16 blob. This
// is the single-pass concatenation spec.md calls for at the transition to
// Processing — no per-frame back-pointers are kept.
func ConcatPCM(frames []Frame) []byte {
	n := 0
	for _, f := range frames {
		n += len(f.Samples) * 2
	}
	out := make([]byte, 0, n)
	for _, f := range frames {
		out = append(out, f.Bytes()...)
	}
	return out
}
