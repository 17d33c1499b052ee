package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// jsonSpanPattern matches from the first "{" to the last "}" in the text,
// across newlines. The greedy scan is deliberately preserved for
// compatibility with the intent protocol: nested objects are captured whole,
// but a reply containing two separate JSON objects yields one unparseable
// span and falls back to the raw-text path. Known source of misclassification.
var jsonSpanPattern = regexp.MustCompile(`(?s)\{.*\}`)

// ExtractJSONSpan returns the first greedy {...} span found in the input, or
// "" when the input contains no braced span.
func ExtractJSONSpan(input string) string {
	return jsonSpanPattern.FindString(input)
}

// ParseModelJSON extracts the JSON object embedded in a model reply and
// unmarshals it into target. Model replies may be pure JSON, JSON wrapped in
// markdown code fences, or JSON with surrounding prose.
func ParseModelJSON(input string, target interface{}) error {
	span := ExtractJSONSpan(input)
	if span == "" {
		return fmt.Errorf("no JSON object found in input")
	}
	if err := json.Unmarshal([]byte(span), target); err != nil {
		return fmt.Errorf("failed to parse JSON span: %w", err)
	}
	return nil
}

// StripCodeFences removes markdown code-fence markers from a model reply so
// the remaining text reads as plain prose.
func StripCodeFences(input string) string {
	s := strings.ReplaceAll(input, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
