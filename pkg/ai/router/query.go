package router

import (
	"strings"
)

const queryTrimChars = "?!.,;:\"'()[]{}“”‘’"

// extractQuery drops stopwords and edge punctuation, keeping the original
// casing of content words. "What SEAI grants apply?" becomes "SEAI grants".
func (c *compiledRules) extractQuery(text string) string {
	fields := strings.Fields(text)
	kept := make([]string, 0, len(fields))
	for _, f := range fields {
		word := strings.Trim(f, queryTrimChars)
		if word == "" {
			continue
		}
		lower := strings.ToLower(word)
		// Keep the letter in "Part A"; it is also the article stopword.
		afterPart := len(kept) > 0 && strings.EqualFold(kept[len(kept)-1], "part")
		if _, stop := c.stopwords[lower]; stop && !afterPart {
			continue
		}
		kept = append(kept, word)
	}
	if len(kept) == 0 {
		return strings.TrimSpace(text)
	}
	return strings.Join(kept, " ")
}
