// Package config holds the persisted user settings and the
// compile-time defaults they fall back to when a key is missing.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
)

// Settings is the single JSON document persisted between sessions,
// matching exactly the key set the UI exchanges over CONFIG:<json>.
type Settings struct {
	SelectedAsrModel      string   `json:"selectedAsrModel"`
	SelectedProofingModel string   `json:"selectedProofingModel"`
	SelectedLetterModel   string   `json:"selectedLetterModel"`
	ProofingPrompt        string   `json:"proofingPrompt"`
	LetterPrompt          string   `json:"letterPrompt"`
	WakeWords             WakeWords `json:"wakeWords"`
	FilterFillerWords     bool     `json:"filterFillerWords"`
	FillerWords           []string `json:"fillerWords"`
}

// WakeWords groups the configured activation phrases by the command
// they trigger, mirroring the category structure a dictation engine's
// wake-word table is built from.
type WakeWords struct {
	Dictate   []string `json:"dictate"`
	Proofread []string `json:"proofread"`
	Letter    []string `json:"letter"`
}

const (
	defaultProofreadPrompt = "You are proofreading text that will be entered into a professional document.\n" +
		"Correct any grammatical errors, spelling mistakes, or awkward phrasing.\n" +
		"Ensure the text is clear, concise, and maintains accuracy."

	defaultLetterPrompt = "You are finalizing text that will be sent as a professional message.\n" +
		"Ensure the text is grammatically correct, clear, concise, and maintains accuracy.\n" +
		"Format it appropriately for professional communication.\n" +
		"Return only the finalized message without adding any extra comments, context, or introductory phrases."
)

// Defaults is the compile-time table every missing settings key falls
// back to. There is deliberately no hidden-file fallback: an absent or
// unreadable settings file just means every key takes its default.
func Defaults() Settings {
	return Settings{
		SelectedAsrModel:      "parakeet-tdt-0.6b-v2",
		SelectedProofingModel: "qwen3:8b",
		SelectedLetterModel:   "qwen3:8b",
		ProofingPrompt:        defaultProofreadPrompt,
		LetterPrompt:          defaultLetterPrompt,
		WakeWords: WakeWords{
			Dictate:   []string{"note", "dictation", "dictate"},
			Proofread: []string{"proof", "proofread"},
			Letter:    []string{"letter"},
		},
		FilterFillerWords: true,
		FillerWords:       []string{"um", "uh", "ah", "er", "hmm", "mm", "mhm"},
	}
}

// Store guards the current Settings and persists them to a single JSON
// file on disk.
type Store struct {
	mu       sync.RWMutex
	path     string
	settings Settings
	logger   *log.Logger
}

// NewStore loads path if it exists, merging found keys over Defaults,
// and otherwise starts from Defaults outright. Load errors (missing
// file, malformed JSON) are logged and fall back to defaults rather
// than failing startup.
func NewStore(path string, logger *log.Logger) *Store {
	s := &Store{path: path, settings: Defaults(), logger: logger}
	s.Load()
	return s
}

// Load re-reads the settings file, merging found keys over the current
// in-memory defaults. A missing file or malformed JSON is logged and
// leaves the current settings (typically the compile-time defaults)
// untouched.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("settings load failed, using defaults", "path", s.path, "err", err)
		}
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	merged := s.settings
	if err := json.Unmarshal(data, &merged); err != nil {
		s.logger.Warn("settings file malformed, using defaults", "path", s.path, "err", err)
		return nil
	}
	s.settings = merged
	return nil
}

// Save writes the current settings to path, creating its parent
// directory if necessary.
func (s *Store) Save() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.settings, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, data, 0o644)
}

// Get returns a copy of the current settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Apply merges a partial settings document (the payload of an inbound
// CONFIG:<json> command) over the current settings and persists the
// result. Keys absent from raw are left untouched.
func (s *Store) Apply(raw json.RawMessage) error {
	s.mu.Lock()
	merged := s.settings
	if err := json.Unmarshal(raw, &merged); err != nil {
		s.mu.Unlock()
		return err
	}
	s.settings = merged
	s.mu.Unlock()
	return s.Save()
}
