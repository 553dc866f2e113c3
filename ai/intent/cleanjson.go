package intent

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fenceRegex      = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	jsonObjectRegex = regexp.MustCompile(`(?s)\{.*\}`)
	trailingComma   = regexp.MustCompile(`,\s*([}\]])`)
)

// cleanJSON extracts the JSON payload from a model response. Models often
// wrap the object in a code fence or surround it with prose; take the
// fenced block first, then the widest brace-delimited span, then the raw
// text as a last resort.
func cleanJSON(raw string) string {
	if m := fenceRegex.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := jsonObjectRegex.FindString(raw); m != "" {
		return strings.TrimSpace(m)
	}
	return strings.TrimSpace(raw)
}

// rawIntent mirrors the JSON shape the classification prompt asks for.
type rawIntent struct {
	Operation string         `json:"operation"`
	Tool      string         `json:"tool"` // older prompt revisions said "tool"
	Action    string         `json:"action"`
	Args      map[string]any `json:"args"`
}

// decodeIntent decodes the cleaned response, first strictly, then after a
// lenient pass that fixes the two malformations models actually produce:
// single-quoted strings and trailing commas.
func decodeIntent(cleaned string) (*rawIntent, error) {
	var out rawIntent
	if err := json.Unmarshal([]byte(cleaned), &out); err == nil {
		return &out, nil
	}

	relaxed := trailingComma.ReplaceAllString(cleaned, "$1")
	relaxed = strings.ReplaceAll(relaxed, "'", `"`)
	if err := json.Unmarshal([]byte(relaxed), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// operationName returns whichever operation key the model filled in.
func (r *rawIntent) operationName() string {
	if r.Operation != "" {
		return r.Operation
	}
	return r.Tool
}
