package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeProofreadExtractsBulletBlock(t *testing.T) {
	in := "- Patient complained of fever.\n- Chills for 3 days.\n\nSome trailing commentary."
	out := NormalizeProofread(in)
	require.Equal(t, "- Patient complained of fever.\n- Chills for 3 days.", out)
}

func TestNormalizeProofreadCollapsesContinuationLines(t *testing.T) {
	in := "- Patient complained of fever\nand chills for 3 days."
	out := NormalizeProofread(in)
	require.Equal(t, "- Patient complained of fever and chills for 3 days.", out)
}

func TestNormalizeProofreadNoBulletsReturnsTrimmedInput(t *testing.T) {
	in := "  just plain corrected text.  "
	out := NormalizeProofread(in)
	require.Equal(t, "just plain corrected text.", out)
}

func TestNormalizeProofreadStandardizesMarkers(t *testing.T) {
	in := "* First issue.\n• Second issue."
	out := NormalizeProofread(in)
	require.Equal(t, "- First issue.\n- Second issue.", out)
}

func TestNormalizeProofreadSplitsLongBullets(t *testing.T) {
	long := "Patient reports chest pain that began three days ago and has been constant since onset " +
		"without relief from rest or over the counter medication taken at home. Additionally, " +
		"patient reports shortness of breath on exertion and mild dizziness."
	in := "- " + long
	out := NormalizeProofread(in)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], "- Patient reports chest pain that began"))
	require.True(t, strings.HasSuffix(lines[0], "Additionally"))
	require.True(t, strings.HasPrefix(lines[1], "- ,"))
}
