package annotator

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSONBlock pulls the JSON payload out of a model response, handling
// markdown code fences and surrounding prose. Returns the raw JSON string.
func extractJSONBlock(response string) (string, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return "", fmt.Errorf("response is empty")
	}

	// Strip markdown code fences
	if idx := strings.Index(response, "```"); idx >= 0 {
		rest := response[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		response = strings.TrimSpace(rest)
	}

	// Trim leading prose before the first bracket
	start := strings.IndexAny(response, "[{")
	if start < 0 {
		return "", fmt.Errorf("no JSON structure found in response")
	}
	response = response[start:]

	// Trim trailing prose after the last bracket
	end := strings.LastIndexAny(response, "]}")
	if end >= 0 {
		response = response[:end+1]
	}

	return response, nil
}

// decodeJSONList parses a JSON array into the target slice, attempting
// truncation repair when the first parse fails. A field-shape mismatch is a
// per-call parse error, never a crash.
func decodeJSONList(raw string, target interface{}) error {
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		repaired := repairTruncatedJSON(raw)
		if repaired == raw {
			return fmt.Errorf("failed to parse JSON: %w", err)
		}
		if err2 := json.Unmarshal([]byte(repaired), target); err2 != nil {
			return fmt.Errorf("failed to parse JSON (also tried repair): %w", err)
		}
	}
	return nil
}

// repairTruncatedJSON closes open structures in JSON cut off mid-stream,
// truncating at the last complete element first.
func repairTruncatedJSON(jsonStr string) string {
	var test interface{}
	if json.Unmarshal([]byte(jsonStr), &test) == nil {
		return jsonStr
	}

	// Track open structures
	var stack []rune
	inString := false
	escaped := false
	lastValidPos := 0

	for i, ch := range jsonStr {
		if escaped {
			escaped = false
			continue
		}

		if ch == '\\' && inString {
			escaped = true
			continue
		}

		if ch == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		switch ch {
		case '{', '[':
			stack = append(stack, ch)
		case '}':
			if len(stack) > 0 && stack[len(stack)-1] == '{' {
				stack = stack[:len(stack)-1]
				if len(stack) > 0 || i == len(jsonStr)-1 {
					lastValidPos = i + 1
				}
			}
		case ']':
			if len(stack) > 0 && stack[len(stack)-1] == '[' {
				stack = stack[:len(stack)-1]
				if len(stack) > 0 || i == len(jsonStr)-1 {
					lastValidPos = i + 1
				}
			}
		case ',':
			// After a comma is a good truncation point
			if len(stack) > 0 {
				lastValidPos = i
			}
		}
	}

	if len(stack) == 0 {
		return jsonStr
	}

	repaired := jsonStr
	if lastValidPos > 0 && lastValidPos < len(jsonStr) {
		repaired = strings.TrimSuffix(jsonStr[:lastValidPos], ",")
	}

	// Structures opened past the truncation point were cut away with it, so
	// close only what the kept prefix leaves open.
	stack = openStructures(repaired)
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			repaired += "}"
		} else {
			repaired += "]"
		}
	}

	return repaired
}

// openStructures returns the brackets left open by jsonStr in opening order,
// ignoring brackets inside string literals.
func openStructures(jsonStr string) []rune {
	var stack []rune
	inString := false
	escaped := false

	for _, ch := range jsonStr {
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case '{', '[':
			stack = append(stack, ch)
		case '}':
			if len(stack) > 0 && stack[len(stack)-1] == '{' {
				stack = stack[:len(stack)-1]
			}
		case ']':
			if len(stack) > 0 && stack[len(stack)-1] == '[' {
				stack = stack[:len(stack)-1]
			}
		}
	}

	return stack
}
