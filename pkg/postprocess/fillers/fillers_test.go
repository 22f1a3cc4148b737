package fillers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyDisabledIsNoOp(t *testing.T) {
	f := NewFilter([]string{"um", "uh"}, false)
	out := f.Apply("um, the patient, uh, is stable")
	require.Equal(t, "um, the patient, uh, is stable", out)
}

func TestApplyRemovesWholeWordsOnly(t *testing.T) {
	f := NewFilter([]string{"um", "like"}, true)
	out := f.Apply("um the patient is, like, stable")
	require.NotContains(t, out, "um")
	require.NotContains(t, out, "like")
	require.Contains(t, out, "stable")
}

func TestApplyDoesNotMatchSubstring(t *testing.T) {
	f := NewFilter([]string{"like"}, true)
	out := f.Apply("the patient likes the treatment")
	require.Contains(t, out, "likes")
}

func TestApplyCleansOrphanedCommas(t *testing.T) {
	f := NewFilter([]string{"um", "uh"}, true)
	out := f.Apply("um, the patient, uh, is stable.")
	require.Equal(t, "the patient, is stable.", out)
}

func TestApplyNoFillerWordsConfiguredIsNoOp(t *testing.T) {
	f := NewFilter(nil, true)
	out := f.Apply("patient is stable")
	require.Equal(t, "patient is stable", out)
}

func TestSetWordsRebuildsPattern(t *testing.T) {
	f := NewFilter([]string{"um"}, true)
	f.SetWords([]string{"actually"})
	out := f.Apply("actually the patient is um stable")
	require.Contains(t, out, "um")
	require.NotContains(t, out, "actually")
}
