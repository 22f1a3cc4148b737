package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func feedAll(p *StreamParser, tokens ...string) []Delta {
	var all []Delta
	for _, tok := range tokens {
		all = append(all, p.Feed(tok)...)
	}
	return all
}

func TestStreamParserAnalysisThenFinal(t *testing.T) {
	p := NewStreamParser()
	deltas := feedAll(p,
		"<|start|>assistant<|channel|>analysis<|message|>",
		"checking spelling",
		"<|end|>",
		"<|start|>assistant<|channel|>final<|message|>",
		"- corrected text.",
		"<|end|>",
	)

	var thinking, chunks strings.Builder
	for _, d := range deltas {
		thinking.WriteString(d.Thinking)
		chunks.WriteString(d.Chunk)
	}
	require.Equal(t, "checking spelling", thinking.String())
	require.Equal(t, "- corrected text.", chunks.String())

	final, analysis, text := p.Finalize()
	require.True(t, final.End)
	require.Equal(t, "checking spelling", analysis)
	require.Equal(t, "- corrected text.", text)
}

func TestStreamParserShortFormTags(t *testing.T) {
	p := NewStreamParser()
	deltas := feedAll(p,
		"<|channel|>final<|message|>",
		"short form output",
		"<|end|>",
	)
	var chunks strings.Builder
	for _, d := range deltas {
		chunks.WriteString(d.Chunk)
	}
	require.Equal(t, "short form output", chunks.String())
}

func TestStreamParserTagStraddlesTokenBoundary(t *testing.T) {
	p := NewStreamParser()
	tag := "<|start|>assistant<|channel|>final<|message|>"
	mid := len(tag) / 2
	deltas := feedAll(p, tag[:mid], tag[mid:], "hello", "<|end|>")
	var chunks strings.Builder
	for _, d := range deltas {
		chunks.WriteString(d.Chunk)
	}
	require.Equal(t, "hello", chunks.String())
}

func TestStreamParserNeverReemitsPreviousCharacters(t *testing.T) {
	p := NewStreamParser()
	deltas := feedAll(p,
		"<|channel|>final<|message|>",
		"ab", "cd", "ef",
		"<|end|>",
	)
	var seen strings.Builder
	for _, d := range deltas {
		seen.WriteString(d.Chunk)
	}
	require.Equal(t, "abcdef", seen.String())
}

func TestStreamParserAnalysisTruncatesAt600Chars(t *testing.T) {
	p := NewStreamParser()
	long := strings.Repeat("x", 700)
	deltas := feedAll(p,
		"<|channel|>analysis<|message|>",
		long,
		"<|end|>",
	)
	var thinking strings.Builder
	sawTruncated := false
	for _, d := range deltas {
		thinking.WriteString(d.Thinking)
		if d.Truncated {
			sawTruncated = true
		}
	}
	require.True(t, sawTruncated)
	require.Contains(t, thinking.String(), truncatedMarker)
	require.LessOrEqual(t, len(thinking.String()), analysisCap+len(truncatedMarker))

	// Feeding more analysis text after truncation must not forward anything further.
	more := p.Feed("more text that should never appear")
	for _, d := range more {
		require.Empty(t, d.Thinking)
	}
}

func TestStreamParserInlineThinkLeakageIsRoutedToThinking(t *testing.T) {
	p := NewStreamParser()
	deltas := feedAll(p,
		"<|channel|>final<|message|>",
		"<think>reasoning</think>- corrected text.",
		"<|end|>",
	)
	var thinking, chunks strings.Builder
	for _, d := range deltas {
		thinking.WriteString(d.Thinking)
		chunks.WriteString(d.Chunk)
	}
	require.Equal(t, "reasoning", thinking.String())
	require.Equal(t, "- corrected text.", chunks.String())
	require.NotContains(t, chunks.String(), "<think>")
}

func TestStreamParserFinalizeFlushesResidualBuffer(t *testing.T) {
	p := NewStreamParser()
	p.Feed("<|channel|>final<|message|>")
	p.Feed("no terminator yet")

	final, _, text := p.Finalize()
	require.True(t, final.End)
	require.Equal(t, "no terminator yet", text)
}

func TestStreamParserOutsidePreambleIsDiscarded(t *testing.T) {
	p := NewStreamParser()
	deltas := feedAll(p,
		"some preamble text",
		"<|channel|>final<|message|>",
		"kept text",
		"<|end|>",
	)
	var chunks strings.Builder
	for _, d := range deltas {
		chunks.WriteString(d.Chunk)
	}
	require.Equal(t, "kept text", chunks.String())
	require.NotContains(t, chunks.String(), "preamble")
}
