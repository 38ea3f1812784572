package studio

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"ai-docchat-be/internal/apperr"
)

var fencedJSONRe = regexp.MustCompile("```json\\s*([\\s\\S]*?)\\s*```")

// extractJSON pulls the JSON object out of an LLM response. A fenced
// ```json block wins; otherwise the outermost brace-delimited object
// is taken.
func extractJSON(response string) (string, error) {
	if m := fencedJSONRe.FindStringSubmatch(response); m != nil {
		return m[1], nil
	}

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start >= 0 && end > start {
		return response[start : end+1], nil
	}

	return "", fmt.Errorf("%w: no JSON found in response", apperr.ErrParse)
}

func parseJSONResponse(response string, out interface{}) error {
	jsonStr, err := extractJSON(response)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(jsonStr), out); err != nil {
		return fmt.Errorf("%w: parse LLM response as JSON: %v", apperr.ErrParse, err)
	}
	return nil
}
