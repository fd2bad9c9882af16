package chords

import "strings"

// cleanResponse strips common LLM artifacts around a JSON payload.
func cleanResponse(s string) string {
	s = strings.TrimSpace(s)

	// Strip thinking tags (reasoning models leak these even in JSON mode)
	if idx := strings.Index(s, "</think>"); idx >= 0 {
		s = strings.TrimSpace(s[idx+len("</think>"):])
	}

	// Markdown fences: ```json ... ```
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "json")
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}

	return strings.TrimSpace(s)
}
