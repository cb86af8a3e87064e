package providers

import (
	"encoding/json"
	"strings"
)

type ProviderRef struct {
	Raw   string
	Name  string
	Model string
}

// ParseProviderList splits a "name|name:model" config string into refs.
func ParseProviderList(raw string) []ProviderRef {
	parts := strings.Split(raw, "|")
	out := make([]ProviderRef, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		ref := ProviderRef{Raw: p}
		if strings.Contains(p, ":") {
			x := strings.SplitN(p, ":", 2)
			ref.Name = strings.TrimSpace(x[0])
			ref.Model = strings.TrimSpace(x[1])
		} else {
			ref.Name = p
		}
		out = append(out, ref)
	}
	if len(out) == 0 {
		out = append(out, ProviderRef{Raw: "mock", Name: "mock"})
	}
	return out
}

// ParseAnalysis decodes the JSON document models are prompted to return for
// an analysis call. Reports false when the raw text is not parseable, in
// which case callers fall back to treating the whole text as the summary.
func ParseAnalysis(raw string) (AnalyzeResponse, bool) {
	raw = stripCodeFence(raw)
	if raw == "" {
		return AnalyzeResponse{}, false
	}
	var out AnalyzeResponse
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return AnalyzeResponse{}, false
	}
	if out.Overview == "" && out.Summary == "" && len(out.QA) == 0 {
		return AnalyzeResponse{}, false
	}
	return out, true
}

// ParseExplanation decodes the JSON document returned by an explain call.
func ParseExplanation(raw string) (ExplainResponse, bool) {
	raw = stripCodeFence(raw)
	if raw == "" {
		return ExplainResponse{}, false
	}
	var out ExplainResponse
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return ExplainResponse{}, false
	}
	if out.Explanation == "" {
		return ExplainResponse{}, false
	}
	return out, true
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
