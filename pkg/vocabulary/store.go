// Package vocabulary implements the Vocabulary Correction stage of
// spec.md §4.6.1: whole-word, case-preserving replacement of recognized
// variations with canonical terms, a conservative phonetic fuzzy fallback,
// and a learning log that promotes repeated corrections into permanent
// vocabulary terms.
package vocabulary

import (
	"encoding/json"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/scriptorhq/scriptor/pkg/phonetic"
)

// Term is a canonical vocabulary entry with its known spoken/misrecognized
// variations, per spec.md §3's VocabularyTerm.
type Term struct {
	Canonical    string   `json:"canonical"`
	Variations   []string `json:"variations"`
	Category     string   `json:"category"`
	UsageCount   uint64   `json:"usage_count"`
	PhoneticKeys []string `json:"phonetic_keys"`
}

// Correction is one applied replacement, returned for observability per
// spec.md §4.6.1 ("the full list of applied corrections is returned").
type Correction struct {
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
	Position  int    `json:"position"`
	Category  string `json:"category"`
}

// learningEntry is one logged (observed, canonical, context, timestamp)
// correction, per spec.md §3's learning log.
type learningEntry struct {
	Original  string    `json:"original"`
	Corrected string    `json:"corrected"`
	Context   string    `json:"context"`
	Timestamp time.Time `json:"timestamp"`
}

type persisted struct {
	Terms    []Term           `json:"terms"`
	Patterns map[string]int   `json:"patterns"`
	History  []learningEntry  `json:"history"`
}

// Store is the read-mostly vocabulary index: a mapping of canonical key to
// Term plus a phonetic index for fuzzy lookup, persisted as JSON and
// guarded by a reader-writer lock per spec.md §5's shared-resource policy.
type Store struct {
	mu sync.RWMutex

	path string

	byCanonical map[string]*Term
	phoneticIdx map[string][]string // metaphone code -> canonical keys

	patterns map[string]int // "original -> corrected" (lowercased) -> count
	history  []learningEntry

	fuzzy *FuzzyLexicon
}

// NewStore builds an empty in-memory Store. Load populates it from path.
func NewStore() *Store {
	return &Store{
		byCanonical: make(map[string]*Term),
		phoneticIdx: make(map[string][]string),
		patterns:    make(map[string]int),
	}
}

// SetFuzzyLexicon attaches a domain lexicon (e.g. a drug-name index) used
// by the secondary fuzzy correction pass of spec.md §4.6.1.
func (s *Store) SetFuzzyLexicon(f *FuzzyLexicon) {
	s.mu.Lock()
	s.fuzzy = f
	s.mu.Unlock()
}

// Load reads a persisted Store snapshot from path. A missing file is not
// an error — the Store simply starts empty, matching spec.md §7's
// VocabularyError policy of "always recoverable by falling back to
// in-memory defaults".
func (s *Store) Load(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	s.byCanonical = make(map[string]*Term, len(p.Terms))
	s.phoneticIdx = make(map[string][]string)
	for i := range p.Terms {
		t := p.Terms[i]
		s.index(&t)
	}
	if p.Patterns != nil {
		s.patterns = p.Patterns
	}
	s.history = p.History
	return nil
}

// Save persists the Store to its configured path. A no-op if Load/SetPath
// was never called.
func (s *Store) Save() error {
	s.mu.RLock()
	if s.path == "" {
		s.mu.RUnlock()
		return nil
	}
	p := persisted{Patterns: s.patterns, History: s.history}
	for _, t := range s.byCanonical {
		p.Terms = append(p.Terms, *t)
	}
	path := s.path
	s.mu.RUnlock()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// SetPath configures where Save writes, without requiring a Load call.
func (s *Store) SetPath(path string) {
	s.mu.Lock()
	s.path = path
	s.mu.Unlock()
}

// index adds or replaces t in both the canonical map and the phonetic
// index. Caller must hold s.mu.
func (s *Store) index(t *Term) {
	key := canonicalKey(t.Canonical)
	s.byCanonical[key] = t

	if len(t.PhoneticKeys) == 0 {
		p, sec := phonetic.Codes(t.Canonical)
		for _, code := range []string{p, sec} {
			if code != "" {
				t.PhoneticKeys = append(t.PhoneticKeys, code)
			}
		}
	}
	for _, code := range t.PhoneticKeys {
		s.phoneticIdx[code] = appendUnique(s.phoneticIdx[code], key)
	}
}

// AddTerm inserts or replaces a canonical term with its variations.
func (s *Store) AddTerm(canonical string, variations []string, category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index(&Term{Canonical: canonical, Variations: variations, Category: category})
}

// DeleteTerm removes a canonical term.
func (s *Store) DeleteTerm(canonical string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byCanonical, canonicalKey(canonical))
}

// Terms returns a snapshot copy of all terms.
func (s *Store) Terms() []Term {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Term, 0, len(s.byCanonical))
	for _, t := range s.byCanonical {
		out = append(out, *t)
	}
	return out
}

// Stats mirrors spec.md §4.6.1's vocabulary statistics surfaced on the
// `get_stats` VOCABULARY_API command.
type Stats struct {
	TotalTerms       int            `json:"total_terms"`
	Categories       map[string]int `json:"categories"`
	TotalCorrections int            `json:"total_corrections"`
	TotalUsage       uint64         `json:"total_usage"`
	LearningPatterns int            `json:"learning_patterns"`
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	categories := make(map[string]int)
	var totalUsage uint64
	for _, t := range s.byCanonical {
		categories[t.Category]++
		totalUsage += t.UsageCount
	}
	return Stats{
		TotalTerms:       len(s.byCanonical),
		Categories:       categories,
		TotalCorrections: len(s.history),
		TotalUsage:       totalUsage,
		LearningPatterns: len(s.patterns),
	}
}

func canonicalKey(canonical string) string {
	return strings.ToLower(strings.TrimSpace(canonical))
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
