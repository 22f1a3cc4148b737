package ipc

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/scriptorhq/scriptor/pkg/vocabulary"
)

// VocabularyRequest is one parsed VOCABULARY_API:<id>:<json> command.
type VocabularyRequest struct {
	ID      string
	Command string
	Raw     json.RawMessage
}

// ParseVocabularyRequest splits a VOCABULARY_API command's payload
// ("<id>:<json>") into its request id and body, then unmarshals the body's
// "command" field.
func ParseVocabularyRequest(payload string) (VocabularyRequest, error) {
	idx := strings.IndexByte(payload, ':')
	if idx < 0 {
		return VocabularyRequest{}, fmt.Errorf("ipc: malformed VOCABULARY_API payload")
	}
	id, rawJSON := payload[:idx], payload[idx+1:]

	var envelope struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal([]byte(rawJSON), &envelope); err != nil {
		return VocabularyRequest{}, fmt.Errorf("ipc: malformed VOCABULARY_API body: %w", err)
	}
	return VocabularyRequest{ID: id, Command: envelope.Command, Raw: json.RawMessage(rawJSON)}, nil
}

// VocabularyAPI dispatches parsed VocabularyRequests against a
// vocabulary.Store, implementing every sub-command spec.md §6 names:
// add_term, get_list, get_stats, edit_term, delete_term, import_template,
// export, clear_all, learn_correction, get_suggestions.
type VocabularyAPI struct {
	store *vocabulary.Store
}

// NewVocabularyAPI builds a VocabularyAPI bound to store.
func NewVocabularyAPI(store *vocabulary.Store) *VocabularyAPI {
	return &VocabularyAPI{store: store}
}

// Handle executes req and returns the JSON-serializable response body for
// a VOCAB_RESPONSE:<id>:<json> line. Errors never propagate past this
// boundary; they're folded into the response per spec.md §7's
// VocabularyError policy (bypass rather than fail the pipeline).
func (a *VocabularyAPI) Handle(req VocabularyRequest) any {
	switch req.Command {
	case "add_term":
		var body struct {
			Canonical  string   `json:"canonical"`
			Variations []string `json:"variations"`
			Category   string   `json:"category"`
		}
		if err := json.Unmarshal(req.Raw, &body); err != nil {
			return errorResponse(err)
		}
		a.store.AddTerm(body.Canonical, body.Variations, body.Category)
		return okResponse()

	case "get_list":
		return map[string]any{"ok": true, "terms": a.store.Terms()}

	case "get_stats":
		return map[string]any{"ok": true, "stats": a.store.Stats()}

	case "edit_term":
		var body struct {
			Canonical  string   `json:"canonical"`
			Variations []string `json:"variations"`
			Category   string   `json:"category"`
		}
		if err := json.Unmarshal(req.Raw, &body); err != nil {
			return errorResponse(err)
		}
		a.store.AddTerm(body.Canonical, body.Variations, body.Category)
		return okResponse()

	case "delete_term":
		var body struct {
			Canonical string `json:"canonical"`
		}
		if err := json.Unmarshal(req.Raw, &body); err != nil {
			return errorResponse(err)
		}
		a.store.DeleteTerm(body.Canonical)
		return okResponse()

	case "import_template":
		var body struct {
			Terms []vocabulary.Term `json:"terms"`
		}
		if err := json.Unmarshal(req.Raw, &body); err != nil {
			return errorResponse(err)
		}
		for _, t := range body.Terms {
			a.store.AddTerm(t.Canonical, t.Variations, t.Category)
		}
		return okResponse()

	case "export":
		return map[string]any{"ok": true, "terms": a.store.Terms()}

	case "clear_all":
		for _, t := range a.store.Terms() {
			a.store.DeleteTerm(t.Canonical)
		}
		return okResponse()

	case "learn_correction":
		var body struct {
			Original  string `json:"original"`
			Corrected string `json:"corrected"`
			Context   string `json:"context"`
		}
		if err := json.Unmarshal(req.Raw, &body); err != nil {
			return errorResponse(err)
		}
		recorded := a.store.LearnFromCorrection(body.Original, body.Corrected, body.Context)
		return map[string]any{"ok": true, "recorded": recorded}

	case "get_suggestions":
		var body struct {
			Text string `json:"text"`
			Max  int    `json:"max"`
		}
		if err := json.Unmarshal(req.Raw, &body); err != nil {
			return errorResponse(err)
		}
		if body.Max <= 0 {
			body.Max = 5
		}
		return map[string]any{"ok": true, "suggestions": a.store.SuggestCorrections(body.Text, body.Max)}

	default:
		return errorResponse(fmt.Errorf("ipc: unknown vocabulary command %q", req.Command))
	}
}

func okResponse() map[string]any { return map[string]any{"ok": true} }

func errorResponse(err error) map[string]any {
	return map[string]any{"ok": false, "error": err.Error()}
}
