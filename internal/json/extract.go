// Package json extracts JSON payloads from LLM response text.
//
// Models frequently wrap JSON in markdown fences or surround it with
// commentary. These helpers recover the JSON object so callers can
// unmarshal it.
package json

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSON returns the JSON object portion of a response string.
// It tries, in order: the full response, the response with markdown
// fences stripped, and the substring between the first '{' and the
// last '}'.
//
// Limitations:
// - Only handles JSON objects, not arrays
// - Uses simple brace matching, not full JSON parsing
func extractJSON(response string) (string, error) {
	response = stripMarkdownCodeBlocks(response)

	var probe interface{}
	if err := json.Unmarshal([]byte(response), &probe); err == nil {
		return response, nil
	}

	start := strings.Index(response, "{")
	if start != -1 {
		end := strings.LastIndex(response, "}")
		if end > start {
			candidate := response[start : end+1]
			if err := json.Unmarshal([]byte(candidate), &probe); err == nil {
				return candidate, nil
			}
		}
	}

	preview := response
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}
	return "", fmt.Errorf("no valid JSON in response: %q", preview)
}

// stripMarkdownCodeBlocks removes ```json / ``` fences around a response.
func stripMarkdownCodeBlocks(response string) string {
	trimmed := strings.TrimSpace(response)

	if strings.HasPrefix(trimmed, "```json") {
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "```json"))
	} else if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
	}

	if strings.HasSuffix(trimmed, "```") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, "```"))
	}

	return trimmed
}

// ExtractJSON returns the raw JSON object embedded in a response string.
func ExtractJSON(response string) (string, error) {
	return extractJSON(response)
}

// ExtractJSONFromResponseWithType extracts the JSON object from a
// response and unmarshals it into the provided pointer.
func ExtractJSONFromResponseWithType(response string, result interface{}) error {
	jsonStr, err := extractJSON(response)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(jsonStr), result); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return nil
}
