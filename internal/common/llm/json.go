package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var errNoJSONObject = errors.New("completion is not a JSON object")

// ExtractJSONObject returns the single JSON object contained in content.
// Models sometimes wrap structured output in markdown fences or add a short
// preamble; both are tolerated, anything else is rejected.
func ExtractJSONObject(content string) (json.RawMessage, error) {
	s := stripCodeFence(strings.TrimSpace(content))

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, errNoJSONObject
	}
	s = s[start : end+1]

	var obj map[string]json.RawMessage
	dec := json.NewDecoder(strings.NewReader(s))
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("%w: %v", errNoJSONObject, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after object", errNoJSONObject)
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(s)); err != nil {
		return nil, fmt.Errorf("%w: %v", errNoJSONObject, err)
	}
	return json.RawMessage(buf.Bytes()), nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the language tag line (```json)
		s = s[nl+1:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
