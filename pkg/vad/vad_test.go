package vad

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/scriptorhq/scriptor/pkg/audio"
	"github.com/stretchr/testify/require"
)

func tone(n int, amp int16) audio.Frame {
	raw := make([]byte, n*2)
	for i := 0; i < n; i++ {
		v := amp
		if i%2 == 1 {
			v = -amp
		}
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(v))
	}
	return audio.NewFrame(0, raw)
}

func TestNewRejectsTooHighEssentiallySilent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EssentiallySilentMax = 16
	_, err := New(cfg)
	require.Error(t, err)
}

func TestEssentiallySilentFastPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EssentiallySilentMax = 5
	d, err := New(cfg)
	require.NoError(t, err)
	require.True(t, d.EssentiallySilent(tone(10, 3)))
	require.False(t, d.EssentiallySilent(tone(10, 1000)))
}

func TestSpeechStartRequiresConsecutiveFrames(t *testing.T) {
	d, err := New(DefaultConfig())
	require.NoError(t, err)
	loud := tone(480, 20000)
	var ev *Event
	for i := 0; i < aggressivenessMinConfirmed[1]; i++ {
		ev, _ = d.Process(loud)
	}
	require.NotNil(t, ev)
	require.Equal(t, SpeechStart, ev.Type)
	require.True(t, d.IsSpeaking())
}

func TestSpeechEndAfterSilenceThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SilenceThreshold = 10 * time.Millisecond
	d, err := New(cfg)
	require.NoError(t, err)

	loud := tone(480, 20000)
	for i := 0; i < aggressivenessMinConfirmed[1]; i++ {
		d.Process(loud)
	}
	require.True(t, d.IsSpeaking())

	quiet := tone(480, 1)
	var ev *Event
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		ev, _ = d.Process(quiet)
		if ev != nil {
			break
		}
		time.Sleep(2 * time.Millisecond)
	}
	require.NotNil(t, ev)
	require.Equal(t, SpeechEnd, ev.Type)
	require.False(t, d.IsSpeaking())
}

func TestRingBufferDropsOldestWhenFull(t *testing.T) {
	rb := NewRingBuffer(RingBufferDurationMS, 30) // 20 frame capacity
	for i := 0; i < 25; i++ {
		rb.Push(audio.NewFrame(uint64(i), make([]byte, 4)))
	}
	drained := rb.Drain()
	require.Len(t, drained, 20)
	require.Equal(t, uint64(5), drained[0].Sequence)
	require.Equal(t, uint64(24), drained[len(drained)-1].Sequence)
	require.Equal(t, 0, rb.Len())
}

func TestRingBufferDrainEmptiesBuffer(t *testing.T) {
	rb := NewRingBuffer(90, 30)
	rb.Push(audio.NewFrame(0, make([]byte, 4)))
	require.Len(t, rb.Drain(), 1)
	require.Nil(t, rb.Drain())
}
