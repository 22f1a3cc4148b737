package vocabulary

import (
	"regexp"
	"strings"

	"github.com/scriptorhq/scriptor/pkg/phonetic"
)

var wordPattern = regexp.MustCompile(`[A-Za-z][A-Za-z\-']*`)

// FuzzyLexicon is the secondary, conservative fallback correction pass of
// spec.md §4.6.1: a fixed domain lexicon (e.g. a drug-name index) matched
// via double-metaphone lookup. A candidate is accepted only if it shares
// the original's first letter, differs in length by at most 3, and scores
// at least 0.92 on string similarity — by construction this rejects almost
// everything, which is the point: false positives here corrupt clinical
// text.
type FuzzyLexicon struct {
	terms       []string
	phoneticIdx map[string][]string // metaphone -> candidate terms
}

// NewFuzzyLexicon indexes terms by Double Metaphone code for lookup.
func NewFuzzyLexicon(terms []string) *FuzzyLexicon {
	l := &FuzzyLexicon{terms: terms, phoneticIdx: make(map[string][]string)}
	for _, term := range terms {
		p, s := phonetic.Codes(term)
		for _, code := range []string{p, s} {
			if code != "" {
				l.phoneticIdx[code] = append(l.phoneticIdx[code], term)
			}
		}
	}
	return l
}

// Apply scans text word-by-word and replaces any word with a high-
// confidence lexicon match, preserving case per the same rule as the
// primary correction pass.
func (l *FuzzyLexicon) Apply(text string) (string, []Correction) {
	matches := wordPattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text, nil
	}

	type replacement struct {
		start, end int
		text       string
	}
	var replacements []replacement
	var corrections []Correction

	for _, m := range matches {
		start, end := m[0], m[1]
		word := text[start:end]
		candidate, ok := l.bestCandidate(word)
		if !ok {
			continue
		}
		rep := preserveCase(word, candidate)
		if strings.EqualFold(rep, word) {
			continue
		}
		replacements = append(replacements, replacement{start, end, rep})
		corrections = append(corrections, Correction{
			Original:  word,
			Corrected: rep,
			Position:  start,
			Category:  "medication",
		})
	}

	if len(replacements) == 0 {
		return text, nil
	}

	out := text
	for i := len(replacements) - 1; i >= 0; i-- {
		r := replacements[i]
		out = out[:r.start] + r.text + out[r.end:]
	}
	return out, corrections
}

func (l *FuzzyLexicon) bestCandidate(word string) (string, bool) {
	p, s := phonetic.Codes(word)
	seen := make(map[string]struct{})
	var pool []string
	for _, code := range []string{p, s} {
		if code == "" {
			continue
		}
		for _, cand := range l.phoneticIdx[code] {
			if _, ok := seen[cand]; !ok {
				seen[cand] = struct{}{}
				pool = append(pool, cand)
			}
		}
	}

	wordLower := strings.ToLower(word)
	var best string
	var bestScore float64
	for _, cand := range pool {
		if abs(len(cand)-len(word)) > 3 {
			continue
		}
		if len(cand) == 0 || strings.ToLower(cand)[0] != wordLower[0] {
			continue
		}
		score := phonetic.Similarity(word, cand)
		if score >= 0.92 && score > bestScore {
			best, bestScore = cand, score
		}
	}
	return best, best != ""
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
