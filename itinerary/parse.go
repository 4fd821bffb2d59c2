package itinerary

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedPlan is returned when planner output is not structured itinerary data.
var ErrMalformedPlan = errors.New("malformed trip plan")

// wrapperKeys are the object keys a model sometimes nests the day list under.
var wrapperKeys = []string{"itinerary", "days", "plan"}

// StripFences removes markdown code fences from model output.
func StripFences(raw string) string {
	s := strings.ReplaceAll(raw, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// Parse turns raw planner text into an Itinerary. Prose around the JSON is
// ignored, including bracketed asides before it. Sparse but well-formed
// entries (no schedule, empty options) are kept as-is; only text that holds
// no itinerary at all is rejected.
func Parse(raw string) (Itinerary, error) {
	s := StripFences(raw)

	var firstErr error
	for from := 0; from < len(s); {
		i := strings.IndexAny(s[from:], "[{")
		if i == -1 {
			break
		}
		start := from + i

		block := balancedBlock(s, start)
		if block == "" {
			// Unclosed, so everything after start is inside it.
			break
		}
		from = start + len(block)

		itin, err := decodeBlock(block)
		if err == nil {
			return itin, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return nil, fmt.Errorf("%w: no JSON found in response", ErrMalformedPlan)
}

func decodeBlock(block string) (Itinerary, error) {
	if block[0] == '{' {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal([]byte(block), &wrapper); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPlan, err)
		}
		inner := ""
		for _, k := range wrapperKeys {
			if v, ok := wrapper[k]; ok {
				inner = strings.TrimSpace(string(v))
				break
			}
		}
		if !strings.HasPrefix(inner, "[") {
			return nil, fmt.Errorf("%w: expected a list of days", ErrMalformedPlan)
		}
		block = inner
	}

	var itin Itinerary
	if err := json.Unmarshal([]byte(block), &itin); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPlan, err)
	}
	if itin == nil {
		itin = Itinerary{}
	}
	return itin, nil
}

// balancedBlock returns the balanced [...] or {...} block opening at s[start],
// or "" if it never closes.
func balancedBlock(s string, start int) string {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch c {
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}

	return ""
}
