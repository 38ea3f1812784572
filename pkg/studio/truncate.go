package studio

import "strings"

// DefaultMaxContentChars bounds how much document text is handed to
// the LLM in one generation prompt.
const DefaultMaxContentChars = 20000

const truncationNotice = "\n\n[... content truncated ...]"

// TruncateContent cuts content down to maxChars, preferring a whole
// word boundary when one sits in the last fifth of the budget, and
// appends a notice so the model knows the document continues.
func TruncateContent(content string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxContentChars
	}

	runes := []rune(content)
	if len(runes) <= maxChars {
		return content
	}

	truncated := string(runes[:maxChars])
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > int(float64(len(truncated))*0.8) {
		truncated = truncated[:lastSpace]
	}

	return truncated + truncationNotice
}
