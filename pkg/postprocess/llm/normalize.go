package llm

import (
	"regexp"
	"strings"
)

var bulletLine = regexp.MustCompile(`^\s*[-*•]\s+`)

// splitPatterns are natural junctions a long bullet gets split on, ported
// from the original system's long-bullet splitter.
var splitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\. The second (?:issue|concern|problem)`),
	regexp.MustCompile(`\. The person also`),
	regexp.MustCompile(`\. He also`),
	regexp.MustCompile(`\. She also`),
	regexp.MustCompile(`\. Additionally`),
	regexp.MustCompile(`\. Furthermore`),
	regexp.MustCompile(`\. He seeks?`),
	regexp.MustCompile(`\. Person seeks?`),
}

// NormalizeProofread applies the post-LLM normalization rule of spec.md
// §4.6.2: extract the first contiguous block of bullet lines, collapse
// continuation lines into their bullet, split overly long bullets on
// natural junctions, and return the joined list with standardized "- "
// markers. If no bullets are found, the trimmed input is returned
// unchanged.
func NormalizeProofread(text string) string {
	lines := strings.Split(text, "\n")

	var bullets []string
	inBlock := false

	for _, line := range lines {
		if bulletLine.MatchString(line) {
			cleaned := strings.TrimSpace(bulletLine.ReplaceAllString(line, ""))
			if cleaned == "" {
				continue
			}
			if len(cleaned) > 200 {
				bullets = append(bullets, splitLongBullet(cleaned)...)
			} else {
				bullets = append(bullets, cleaned)
			}
			inBlock = true
			continue
		}
		if inBlock && strings.TrimSpace(line) != "" {
			if len(bullets) > 0 {
				bullets[len(bullets)-1] += " " + strings.TrimSpace(line)
			}
			continue
		}
		if inBlock && strings.TrimSpace(line) == "" {
			break
		}
	}

	if len(bullets) == 0 {
		return strings.TrimSpace(text)
	}

	out := make([]string, len(bullets))
	for i, b := range bullets {
		out[i] = "- " + b
	}
	return strings.Join(out, "\n")
}

func splitLongBullet(line string) []string {
	parts := []string{line}
	for _, pattern := range splitPatterns {
		var next []string
		for _, part := range parts {
			pieces := pattern.Split(part, -1)
			if len(pieces) < 2 {
				next = append(next, part)
				continue
			}
			matches := pattern.FindAllString(part, -1)
			for i, piece := range pieces {
				combined := piece
				if i < len(matches) {
					combined += matches[i]
				}
				if strings.TrimSpace(combined) != "" {
					next = append(next, strings.TrimSpace(combined))
				}
			}
		}
		parts = next
	}
	var out []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, strings.TrimSpace(p))
		}
	}
	return out
}
