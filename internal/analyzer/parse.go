package analyzer

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// errNoJSON marks a reply that is pure prose. Callers read it as an empty result.
var errNoJSON = errors.New("no JSON found in response")

var (
	reFence    = regexp.MustCompile("```(?:json)?\\s*")
	reJSONSpan = regexp.MustCompile(`(?s)\[.*\]|\{.*\}`)
)

// cleanJSON strips markdown code fences around a model response.
func cleanJSON(text string) string {
	return strings.TrimSpace(reFence.ReplaceAllString(text, ""))
}

// parseObject decodes a JSON object, tolerating fences and surrounding prose.
func parseObject(text string, v interface{}) error {
	text = cleanJSON(text)
	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}
	span := reJSONSpan.FindString(text)
	if span == "" {
		return errNoJSON
	}
	if err := json.Unmarshal([]byte(span), v); err != nil {
		return fmt.Errorf("parse JSON response: %w", err)
	}
	return nil
}

// parseList decodes a JSON array of T. An object wrapping the array
// (e.g. {"action_items": [...]}) is unwrapped, and a lone object becomes a one element list.
func parseList[T any](text string) ([]T, error) {
	text = cleanJSON(text)

	var list []T
	if err := json.Unmarshal([]byte(text), &list); err == nil {
		return list, nil
	}

	span := reJSONSpan.FindString(text)
	if span == "" {
		return nil, errNoJSON
	}
	if err := json.Unmarshal([]byte(span), &list); err == nil {
		return list, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal([]byte(span), &wrapper); err != nil {
		return nil, fmt.Errorf("parse JSON response: %w", err)
	}
	for _, raw := range wrapper {
		if err := json.Unmarshal(raw, &list); err == nil {
			return list, nil
		}
	}

	var single T
	if err := json.Unmarshal([]byte(span), &single); err != nil {
		return nil, fmt.Errorf("parse JSON response: %w", err)
	}
	return []T{single}, nil
}
