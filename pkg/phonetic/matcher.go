// Package phonetic provides Double Metaphone phonetic encoding and
// Jaro-Winkler ranked matching, shared by pkg/wakeword (matching spoken
// audio against the wake-word table) and pkg/vocabulary (fuzzy correction
// of transcribed terms).
package phonetic

import "github.com/antzucaro/matchr"

const (
	// DefaultThreshold is the minimum Jaro-Winkler score required for a
	// phonetically-overlapping candidate to be accepted.
	DefaultThreshold = 0.70
	// DefaultFuzzyThreshold is the minimum score required when falling
	// back to pure string similarity with no phonetic overlap.
	DefaultFuzzyThreshold = 0.85
)

// Codes returns the primary and secondary Double Metaphone codes for word.
// Either may be empty for very short or vowel-only input.
func Codes(word string) (primary, secondary string) {
	return matchr.DoubleMetaphone(word)
}

// CodeSet returns the union of Double Metaphone codes across tokens, for
// overlap testing against a candidate's own code set.
func CodeSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens)*2)
	for _, t := range tokens {
		p, s := matchr.DoubleMetaphone(t)
		if p != "" {
			set[p] = struct{}{}
		}
		if s != "" {
			set[s] = struct{}{}
		}
	}
	return set
}

// Overlaps reports whether two code sets share at least one code.
func Overlaps(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}

// Similarity returns the Jaro-Winkler similarity of a and b.
func Similarity(a, b string) float64 {
	return matchr.JaroWinkler(a, b, false)
}

// Matcher picks the best candidate from a fixed list of known terms for a
// spoken or transcribed word, using phonetic-overlap-then-similarity
// ranking: candidates sharing a Double Metaphone code with word are
// preferred and ranked by Jaro-Winkler score against DefaultThreshold;
// absent any phonetic overlap, the matcher falls back to pure similarity
// against the stricter DefaultFuzzyThreshold.
type Matcher struct {
	phoneticThreshold float64
	fuzzyThreshold    float64
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithPhoneticThreshold overrides DefaultThreshold.
func WithPhoneticThreshold(t float64) Option {
	return func(m *Matcher) { m.phoneticThreshold = t }
}

// WithFuzzyThreshold overrides DefaultFuzzyThreshold.
func WithFuzzyThreshold(t float64) Option {
	return func(m *Matcher) { m.fuzzyThreshold = t }
}

// New builds a Matcher with default thresholds, overridden by opts.
func New(opts ...Option) *Matcher {
	m := &Matcher{phoneticThreshold: DefaultThreshold, fuzzyThreshold: DefaultFuzzyThreshold}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Match returns the best-matching candidate for word, or ok=false if none
// clears the relevant threshold.
func (m *Matcher) Match(word string, candidates []string) (best string, score float64, ok bool) {
	if word == "" || len(candidates) == 0 {
		return "", 0, false
	}
	wordCodes := CodeSet([]string{word})

	var bestPhonetic bool
	for _, c := range candidates {
		if c == "" {
			continue
		}
		candCodes := CodeSet([]string{c})
		phonetic := Overlaps(wordCodes, candCodes)
		s := Similarity(word, c)

		if phonetic {
			if s >= m.phoneticThreshold && (!bestPhonetic || s > score) {
				best, score, ok, bestPhonetic = c, s, true, true
			}
		} else if !bestPhonetic {
			if s >= m.fuzzyThreshold && s > score {
				best, score, ok = c, s, true
			}
		}
	}
	return best, score, ok
}
