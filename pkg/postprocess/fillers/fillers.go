// Package fillers removes configured filler words from transcribed text.
package fillers

import (
	"regexp"
	"strings"
	"sync"
)

// Filter strips a configurable set of filler words from text, matching as
// whole words and cleaning up the punctuation and spacing left behind.
// Disabled by default; the caller enables it per the persisted
// filterFillerWords setting.
type Filter struct {
	mu      sync.RWMutex
	words   []string
	enabled bool
	pattern *regexp.Regexp
}

// NewFilter builds a Filter with an initial word list and enabled state.
func NewFilter(words []string, enabled bool) *Filter {
	f := &Filter{enabled: enabled}
	f.SetWords(words)
	return f
}

// SetWords replaces the filler word list and rebuilds the matching pattern.
func (f *Filter) SetWords(words []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.words = append([]string(nil), words...)
	f.pattern = buildPattern(words)
}

// Words returns the current filler word list.
func (f *Filter) Words() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.words...)
}

// SetEnabled toggles filtering on or off.
func (f *Filter) SetEnabled(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = enabled
}

// Enabled reports whether filtering is currently on.
func (f *Filter) Enabled() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.enabled
}

func buildPattern(words []string) *regexp.Regexp {
	if len(words) == 0 {
		return nil
	}
	escaped := make([]string, len(words))
	for i, w := range words {
		escaped[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(escaped, "|") + `)\b`)
}

var (
	repeatComma  = regexp.MustCompile(`,\s*,`)
	leadingComma = regexp.MustCompile(`^\s*,\s*`)
	commaBeforePunct = regexp.MustCompile(`,\s*([.!?])`)
	trailingComma = regexp.MustCompile(`\s*,\s*$`)
	extraSpace   = regexp.MustCompile(`\s+`)
)

// Apply removes filler words from text if filtering is enabled, then cleans
// up the orphaned commas and extra spacing the removal leaves behind. A
// no-op when filtering is disabled or no filler words are configured.
func (f *Filter) Apply(text string) string {
	if text == "" {
		return text
	}

	f.mu.RLock()
	enabled := f.enabled
	pattern := f.pattern
	f.mu.RUnlock()

	if !enabled || pattern == nil {
		return text
	}

	out := pattern.ReplaceAllString(text, "")
	out = repeatComma.ReplaceAllString(out, ",")
	out = leadingComma.ReplaceAllString(out, "")
	out = commaBeforePunct.ReplaceAllString(out, "$1")
	out = trailingComma.ReplaceAllString(out, "")
	out = extraSpace.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}
