package audio

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pcm16(samples ...int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func TestFrameAmplitudeBounds(t *testing.T) {
	cases := []struct {
		name    string
		samples []int16
	}{
		{"silence", []int16{0, 0, 0}},
		{"max", []int16{32767, -32768}},
		{"quiet", []int16{3, -3, 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := NewFrame(0, pcm16(tc.samples...))
			amp := f.Amplitude()
			assert.GreaterOrEqual(t, amp, 0)
			assert.LessOrEqual(t, amp, 100)
		})
	}
}

func TestFrameRoundTrip(t *testing.T) {
	raw := pcm16(100, -200, 300, -400)
	f := NewFrame(7, raw)
	require.Equal(t, uint64(7), f.Sequence)
	require.Equal(t, raw, f.Bytes())
}

func TestConcatPCM(t *testing.T) {
	f1 := NewFrame(0, pcm16(1, 2))
	f2 := NewFrame(1, pcm16(3, 4))
	blob := ConcatPCM([]Frame{f1, f2})
	require.Equal(t, append(pcm16(1, 2), pcm16(3, 4)...), blob)
}

func TestFrameSize(t *testing.T) {
	require.Equal(t, 480, FrameSize(DefaultSampleRate, DefaultFrameMillis))
}
