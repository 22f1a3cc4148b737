package vocabulary

import (
	"sort"
	"strings"
	"time"

	"github.com/scriptorhq/scriptor/pkg/phonetic"
)

// promoteThreshold is the repeat count at which a learned correction
// becomes a permanent VocabularyTerm, per spec.md §3/§4.6.1 ("two
// repetitions of the same (observed, canonical) promote the pair").
const promoteThreshold = 2

// LearnFromCorrection records a user-reported (observed, canonical)
// correction. On the second occurrence of the same pair it promotes the
// pair into a VocabularyTerm, category inferred by categorize, falling
// back to "general".
func (s *Store) LearnFromCorrection(original, corrected, context string) bool {
	if strings.TrimSpace(original) == strings.TrimSpace(corrected) {
		return false
	}

	s.mu.Lock()
	s.history = append(s.history, learningEntry{
		Original:  original,
		Corrected: corrected,
		Context:   context,
		Timestamp: time.Now(),
	})
	key := strings.ToLower(original) + " -> " + strings.ToLower(corrected)
	s.patterns[key]++
	count := s.patterns[key]
	s.mu.Unlock()

	if count >= promoteThreshold {
		s.promote(original, corrected)
	}
	_ = s.Save()
	return true
}

func (s *Store) promote(original, corrected string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.byCanonical {
		if strings.EqualFold(t.Canonical, corrected) {
			if !containsFold(t.Variations, original) {
				t.Variations = append(t.Variations, original)
			}
			return
		}
	}
	category := categorize(corrected)
	s.index(&Term{Canonical: corrected, Variations: []string{original}, Category: category})
}

// categorize infers a VocabularyTerm category from simple morphological
// rules, falling back to "general" — ported from the original system's
// suffix-pattern heuristics (medication suffixes, professional-title
// prefixes, clinical-term suffixes).
func categorize(term string) string {
	lower := strings.ToLower(term)

	medicationSuffixes := []string{"mycin", "cillin", "phen", "zole", "pine"}
	for _, suf := range medicationSuffixes {
		if strings.Contains(lower, suf) {
			return "medication"
		}
	}

	titlePrefixes := []string{"dr.", "doctor", "mr.", "mrs.", "ms.", "prof.", "professor"}
	for _, p := range titlePrefixes {
		if strings.HasPrefix(lower, p) {
			return "names"
		}
	}

	technicalSuffixes := []string{"itis", "osis", "emia", "pathy", "gram", "scopy", "monia", "thorax", "tension"}
	for _, suf := range technicalSuffixes {
		if strings.Contains(lower, suf) {
			return "technical_terms"
		}
	}

	return "general"
}

// Suggestion is a candidate correction returned by SuggestCorrections.
type Suggestion struct {
	Original   string  `json:"original"`
	Suggested  string  `json:"suggested"`
	Confidence float64 `json:"confidence"`
	Category   string  `json:"category"`
	UsageCount uint64  `json:"usage_count"`
}

// SuggestCorrections ranks vocabulary terms by similarity to each word in
// text, returning up to maxSuggestions candidates sorted by confidence
// then usage count, per spec.md §4.6.1's `get_suggestions` API.
func (s *Store) SuggestCorrections(text string, maxSuggestions int) []Suggestion {
	s.mu.RLock()
	terms := make([]*Term, 0, len(s.byCanonical))
	for _, t := range s.byCanonical {
		terms = append(terms, t)
	}
	s.mu.RUnlock()

	var out []Suggestion
	for _, word := range strings.Fields(text) {
		for _, t := range terms {
			score := phonetic.Similarity(strings.ToLower(word), strings.ToLower(t.Canonical))
			if score < 0.6 {
				continue
			}
			out = append(out, Suggestion{
				Original:   word,
				Suggested:  t.Canonical,
				Confidence: score,
				Category:   t.Category,
				UsageCount: t.UsageCount,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].UsageCount > out[j].UsageCount
	})
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
