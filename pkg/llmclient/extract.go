package llmclient

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fencePattern         = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// extractJSON finds the first JSON object in a raw LLM response and
// repairs common malformations — markdown code fences and trailing
// commas — before unmarshalling (§4.3 step 3). Returns false if no valid
// JSON object can be recovered.
func extractJSON(raw string, out *rawIntent) bool {
	candidate := raw
	if m := fencePattern.FindStringSubmatch(raw); m != nil {
		candidate = m[1]
	}

	start := strings.Index(candidate, "{")
	end := strings.LastIndex(candidate, "}")
	if start == -1 || end == -1 || end < start {
		return false
	}
	candidate = candidate[start : end+1]
	candidate = trailingCommaPattern.ReplaceAllString(candidate, "$1")

	return json.Unmarshal([]byte(candidate), out) == nil
}

// rawIntent is the wire shape the LLM is instructed to emit; fields are
// looser than Intent (raw strings/numbers) before confidence clamping and
// action-registry validation.
type rawIntent struct {
	Action         string         `json:"action"`
	TargetLabel    *string        `json:"target_label"`
	TargetEntityID *int64         `json:"target_entity_id"`
	TargetTime     *string        `json:"target_time"`
	Parameters     map[string]any `json:"parameters"`
	Confidence     float64        `json:"confidence"`
	Clarify        bool           `json:"clarify"`
	ClarifyOptions []string       `json:"clarify_options"`
	Explanation    string         `json:"explanation"`
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
