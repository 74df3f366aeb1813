// Package segment splits raw extracted document text into ordered
// sentence units. Splitting is deterministic so reprocessing a document
// always yields the same unit sequence.
package segment

import "strings"

// Split normalizes line endings, then splits each non-blank line at
// sentence-terminal punctuation followed by whitespace. Fragments that
// are empty after trimming are dropped.
func Split(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	var sentences []string
	for _, line := range strings.Split(normalized, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		for _, part := range splitLine(trimmed) {
			s := strings.TrimSpace(part)
			if s != "" {
				sentences = append(sentences, s)
			}
		}
	}
	return sentences
}

func splitLine(line string) []string {
	var parts []string
	runes := []rune(line)
	start := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && isSpace(runes[i+1]) {
			parts = append(parts, string(runes[start:i+1]))
			start = i + 1
		}
	}
	if start < len(runes) {
		parts = append(parts, string(runes[start:]))
	}
	return parts
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}
