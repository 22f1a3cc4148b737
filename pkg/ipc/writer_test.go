package ipc

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteLineIsAtomicAcrossConcurrentWriters(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	done := make(chan struct{})
	for i := 0; i < 20; i++ {
		go func(n int) {
			_ = w.State(StateSnapshot{AudioState: "activation"})
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 20; i++ {
		<-done
	}

	scanner := bufio.NewScanner(&buf)
	count := 0
	for scanner.Scan() {
		require.True(t, strings.HasPrefix(scanner.Text(), "STATE:"))
		count++
	}
	require.Equal(t, 20, count)
}

func TestEscapeUnescapeRoundTrip(t *testing.T) {
	original := "line one\nline two\r\nline three"
	escaped := Escape(original)
	require.NotContains(t, escaped, "\n")
	require.NotContains(t, escaped, "\r")
	require.Equal(t, original, Unescape(escaped))
}

func TestStatusColorAndEscaping(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Status(ColorRed, "device\nlost"))
	require.Equal(t, "STATUS:red:device\\nlost\n", buf.String())
}

func TestAudioAmpClampsToBounds(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.AudioAmp(150))
	require.NoError(t, w.AudioAmp(-5))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Equal(t, "AUDIO_AMP:100", lines[0])
	require.Equal(t, "AUDIO_AMP:0", lines[1])
}

func TestFinalTranscriptEscapesPayload(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.FinalTranscript("line one\nline two"))
	require.Equal(t, "FINAL_TRANSCRIPT:line one\\nline two\n", buf.String())
}
