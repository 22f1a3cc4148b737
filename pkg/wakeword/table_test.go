package wakeword

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTableLookupExactWord(t *testing.T) {
	tbl := NewTable(nil)
	tbl.Rebuild([]Entry{
		{Word: "note", Command: StartDictate},
		{Word: "proofread", Command: StartProofread},
	})
	e, ok := tbl.Lookup("note")
	require.True(t, ok)
	require.Equal(t, StartDictate, e.Command)
}

func TestTableLookupWithinPhrase(t *testing.T) {
	tbl := NewTable(nil)
	tbl.Rebuild([]Entry{{Word: "letter", Command: StartLetter}})
	e, ok := tbl.Lookup("start letter please")
	require.True(t, ok)
	require.Equal(t, StartLetter, e.Command)
}

func TestTableLookupMiss(t *testing.T) {
	tbl := NewTable(nil)
	tbl.Rebuild([]Entry{{Word: "note", Command: StartDictate}})
	_, ok := tbl.Lookup("completely unrelated phrase")
	require.False(t, ok)
}

func TestTableCollisionLastWriteWins(t *testing.T) {
	tbl := NewTable(nil)
	tbl.Rebuild([]Entry{
		{Word: "note", Command: StartDictate},
		{Word: "note", Command: StartProofread},
	})
	e, ok := tbl.Lookup("note")
	require.True(t, ok)
	require.Equal(t, StartProofread, e.Command)
}

func TestTableRebuildReplacesContents(t *testing.T) {
	tbl := NewTable(nil)
	tbl.Rebuild([]Entry{{Word: "note", Command: StartDictate}})
	tbl.Rebuild([]Entry{{Word: "letter", Command: StartLetter}})
	_, ok := tbl.Lookup("note")
	require.False(t, ok)
	_, ok = tbl.Lookup("letter")
	require.True(t, ok)
}
