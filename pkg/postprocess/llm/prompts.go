package llm

import "fmt"

// systemPrompt returns the mode-specific system prompt, per spec.md
// §4.6.2's prompting rules. The instructions are deliberately terse and
// mode-scoped; no shared preamble leaks between modes.
func systemPrompt(mode Mode) string {
	switch mode {
	case ModeProofread:
		return "You proofread dictated clinical text for spelling, grammar, and punctuation errors only. " +
			"Respond with ONLY the corrected text as a bulleted list using \"-\" markers, one issue per bullet. " +
			"No meta commentary, no preamble, no <think> tags."
	case ModeLetter:
		return "You rewrite dictated text as a short, formal letter body. " +
			"Respond with ONLY the rewritten letter text. No reasoning, no meta commentary, no <think> tags."
	default:
		return "You shape dictated text. Respond with only the shaped text."
	}
}

func userPrompt(text string) string {
	return fmt.Sprintf("Dictated text:\n%s", text)
}

// defaultSampling fills in the conservative channel-tagged-model defaults
// of spec.md §4.6.2 when a Request leaves sampling parameters unset.
func defaultSampling(req Request) Request {
	if req.Temperature == 0 {
		req.Temperature = 0.3
	}
	if req.TopP == 0 {
		req.TopP = 0.95
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = 1024
	}
	return req
}
