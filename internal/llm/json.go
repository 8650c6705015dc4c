package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

var codeBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// ExtractJSON pulls the JSON payload out of a model answer. Models sometimes
// wrap JSON in prose or a markdown code fence despite instructions. Returns
// the input unchanged when no valid JSON can be isolated.
func ExtractJSON(text string) string {
	text = strings.TrimSpace(text)

	if json.Valid([]byte(text)) {
		return text
	}

	if m := codeBlockPattern.FindStringSubmatch(text); m != nil {
		candidate := strings.TrimSpace(m[1])
		if json.Valid([]byte(candidate)) {
			return candidate
		}
	}

	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		start := strings.Index(text, pair[0])
		if start == -1 {
			continue
		}
		end := strings.LastIndex(text, pair[1])
		if end > start {
			candidate := text[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate
			}
		}
	}

	return text
}
