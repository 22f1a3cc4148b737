package phonetic

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchPhoneticOverlapWins(t *testing.T) {
	m := New()
	best, score, ok := m.Match("metoprolol", []string{"metoprolol", "amoxicillin", "lisinopril"})
	require.True(t, ok)
	require.Equal(t, "metoprolol", best)
	require.Greater(t, score, 0.9)
}

func TestMatchNoCandidatesReturnsFalse(t *testing.T) {
	m := New()
	_, _, ok := m.Match("aspirin", nil)
	require.False(t, ok)
}

func TestMatchEmptyWordReturnsFalse(t *testing.T) {
	m := New()
	_, _, ok := m.Match("", []string{"aspirin"})
	require.False(t, ok)
}

func TestMatchFuzzyFallbackBelowThresholdFails(t *testing.T) {
	m := New()
	_, _, ok := m.Match("zzzzz", []string{"aspirin"})
	require.False(t, ok)
}

func TestOverlapsSharedCode(t *testing.T) {
	a := CodeSet([]string{"night"})
	b := CodeSet([]string{"knight"})
	require.True(t, Overlaps(a, b))
}

func TestSimilarityIdentical(t *testing.T) {
	require.Equal(t, 1.0, Similarity("aspirin", "aspirin"))
}
