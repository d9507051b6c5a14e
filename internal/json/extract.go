// Package json recovers structured values from free-form model output.
//
// Models often wrap the requested JSON object in prose or code fences.
// Recovery tries, in order:
// 1. The whole (trimmed, unfenced) response
// 2. The span from the first '{' to the last '}'
//
// Limitations:
// - Only objects are recovered from surrounding text, not arrays
// - Uses simple brace positions, not full JSON scanning
package json

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSON returns the JSON portion of a response string.
func extractJSON(response string) (string, error) {
	response = stripMarkdownCodeBlocks(response)

	if json.Valid([]byte(response)) {
		return response, nil
	}

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start != -1 && end > start {
		candidate := response[start : end+1]
		if json.Valid([]byte(candidate)) {
			return candidate, nil
		}
	}

	preview := response
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}
	return "", fmt.Errorf("no valid JSON in response: %q", preview)
}

// stripMarkdownCodeBlocks trims the text and removes a surrounding
// ```json ... ``` or ``` ... ``` fence.
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

// Extract recovers and decodes a value of type T from a model response.
func Extract[T any](response string) (T, error) {
	var result T
	jsonStr, err := extractJSON(response)
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return result, nil
}

// Recover is Extract for callers that degrade on failure instead of
// reporting it. ok is false when nothing decodable was found.
func Recover[T any](response string) (value T, ok bool) {
	value, err := Extract[T](response)
	return value, err == nil
}
