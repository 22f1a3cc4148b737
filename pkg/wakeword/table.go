// Package wakeword maps recognized phrases to the command that should start
// a dictation, and routes capture frames to either the wake-word recognizer
// or the dictation buffer depending on session state, per spec.md §4.3.
package wakeword

import (
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/scriptorhq/scriptor/pkg/phonetic"
)

// Command identifies which mode a recognized wake word (or hotkey) starts.
type Command string

const (
	StartDictate   Command = "StartDictate"
	StartProofread Command = "StartProofread"
	StartLetter    Command = "StartLetter"
)

// Entry is one configured wake word bound to a Command.
type Entry struct {
	Word    string
	Command Command
}

// Table maps a phonetic key to the wake word and command it resolved from.
// On configuration changes the table is rebuilt wholesale; a collision on
// the same phonetic key across two different commands logs a warning and
// the later entry wins, per spec.md §3's explicit "last write wins" rule.
type Table struct {
	mu      sync.RWMutex
	byKey   map[string]Entry
	logger  *log.Logger
}

// NewTable builds an empty Table. Use Rebuild to populate it.
func NewTable(logger *log.Logger) *Table {
	return &Table{byKey: make(map[string]Entry), logger: logger}
}

// Rebuild replaces the table contents from entries, double-metaphone-keying
// each word. Called whenever configuration changes.
func (t *Table) Rebuild(entries []Entry) {
	next := make(map[string]Entry, len(entries)*2)
	for _, e := range entries {
		primary, secondary := phonetic.Codes(strings.ToLower(strings.TrimSpace(e.Word)))
		for _, key := range []string{primary, secondary} {
			if key == "" {
				continue
			}
			if existing, ok := next[key]; ok && existing.Command != e.Command {
				if t.logger != nil {
					t.logger.Warn("wake word phonetic collision, last write wins",
						"key", key, "existing", existing.Word, "incoming", e.Word)
				}
			}
			next[key] = e
		}
	}
	t.mu.Lock()
	t.byKey = next
	t.mu.Unlock()
}

// Lookup resolves a recognized phrase to its wake-word Entry, trying the
// whole phrase first and then each individual word, matching the router's
// need to handle multi-word wake phrases.
func (t *Table) Lookup(phrase string) (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	phrase = strings.ToLower(strings.TrimSpace(phrase))
	if phrase == "" {
		return Entry{}, false
	}
	if e, ok := t.lookupCodes(phrase); ok {
		return e, ok
	}
	for _, word := range strings.Fields(phrase) {
		if e, ok := t.lookupCodes(word); ok {
			return e, ok
		}
	}
	return Entry{}, false
}

func (t *Table) lookupCodes(s string) (Entry, bool) {
	primary, secondary := phonetic.Codes(s)
	if primary != "" {
		if e, ok := t.byKey[primary]; ok {
			return e, true
		}
	}
	if secondary != "" {
		if e, ok := t.byKey[secondary]; ok {
			return e, true
		}
	}
	return Entry{}, false
}
