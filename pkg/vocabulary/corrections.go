package vocabulary

import (
	"regexp"
	"strings"
)

// ApplyCorrections runs the two-stage correction pipeline of spec.md
// §4.6.1: first, whole-word replacement of any known variation with its
// term's canonical form (case-preserving, deterministic for a fixed Store
// snapshot); then, if a FuzzyLexicon is attached, a conservative phonetic
// fallback pass over whatever the first stage left untouched.
func (s *Store) ApplyCorrections(text string) (string, []Correction) {
	// Held for the whole matching-and-increment pass, not just the
	// snapshot copy: Term.UsageCount is mutated below, and Stats/Save
	// read the same Term pointers under their own lock, so the
	// increments must be serialized against them too.
	s.mu.Lock()
	terms := make([]*Term, 0, len(s.byCanonical))
	for _, t := range s.byCanonical {
		terms = append(terms, t)
	}

	// Sort by canonical key for determinism — map iteration order is
	// randomized in Go, and spec.md §8 requires the process be
	// deterministic for a given snapshot.
	sortTermsByCanonical(terms)

	out := text
	var applied []Correction

	for _, t := range terms {
		for _, variation := range t.Variations {
			if variation == "" {
				continue
			}
			pattern, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(variation) + `\b`)
			if err != nil {
				continue
			}
			matches := pattern.FindAllStringIndex(out, -1)
			if len(matches) == 0 {
				continue
			}
			for i := len(matches) - 1; i >= 0; i-- {
				start, end := matches[i][0], matches[i][1]
				original := out[start:end]
				replacement := preserveCase(original, t.Canonical)
				out = out[:start] + replacement + out[end:]
				applied = append(applied, Correction{
					Original:  original,
					Corrected: replacement,
					Position:  start,
					Category:  t.Category,
				})
				t.UsageCount++
			}
		}
	}
	fuzzy := s.fuzzy
	s.mu.Unlock()

	if len(applied) > 0 {
		_ = s.Save()
	}

	if fuzzy != nil {
		var fuzzyCorrections []Correction
		out, fuzzyCorrections = fuzzy.Apply(out)
		applied = append(applied, fuzzyCorrections...)
	}

	return out, applied
}

func sortTermsByCanonical(terms []*Term) {
	for i := 1; i < len(terms); i++ {
		for j := i; j > 0 && terms[j].Canonical < terms[j-1].Canonical; j-- {
			terms[j], terms[j-1] = terms[j-1], terms[j]
		}
	}
}

// preserveCase mirrors spec.md §8's literal rule: if original is all
// uppercase, deliver the canonical form upper-cased; if all lowercase,
// lower-cased; if title-case, title-cased; otherwise the canonical form is
// used unchanged.
func preserveCase(original, canonical string) string {
	switch {
	case isUpper(original):
		return strings.ToUpper(canonical)
	case isLower(original):
		return strings.ToLower(canonical)
	case isTitle(original):
		return titleCase(canonical)
	default:
		return canonical
	}
}

func isUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

func isLower(s string) bool {
	hasLetter := false
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			return false
		}
		if r >= 'a' && r <= 'z' {
			hasLetter = true
		}
	}
	return hasLetter
}

func isTitle(s string) bool {
	words := strings.Fields(s)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		runes := []rune(w)
		if len(runes) == 0 {
			continue
		}
		if !(runes[0] >= 'A' && runes[0] <= 'Z') {
			return false
		}
		for _, r := range runes[1:] {
			if r >= 'A' && r <= 'Z' {
				return false
			}
		}
	}
	return true
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(w)
		if len(runes) == 0 {
			continue
		}
		runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
		for j := 1; j < len(runes); j++ {
			runes[j] = []rune(strings.ToLower(string(runes[j])))[0]
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
