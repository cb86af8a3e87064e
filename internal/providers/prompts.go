package providers

import (
	"fmt"
	"strings"
)

const analysisSystemPrompt = "You are a study assistant. Respond with a single JSON object " +
	`{"overview": string, "summary": string, "qa": [{"question": string, "answer": string}]} ` +
	"and nothing else. The summary uses markdown headings; questions test understanding of the material."

const explainSystemPrompt = "You are a study assistant. Respond with a single JSON object " +
	`{"explanation": string, "related_terms": [string]} and nothing else.`

func analysisPrompt(req AnalyzeRequest) string {
	var b strings.Builder
	style := req.Style
	if style == "" {
		style = "concise"
	}
	fmt.Fprintf(&b, "Summarize the following study material in a %s style.", style)
	if req.MaxSections > 0 {
		fmt.Fprintf(&b, " Use at most %d sections.", req.MaxSections)
	}
	if req.Text != "" {
		b.WriteString("\n\nMaterial:\n")
		b.WriteString(req.Text)
	}
	return b.String()
}

func explainPrompt(req ExplainRequest) string {
	var b strings.Builder
	level := req.Level
	if level == "" {
		level = "intermediate"
	}
	fmt.Fprintf(&b, "Explain the term %q at a %s level.", req.Term, level)
	if req.Context != "" {
		b.WriteString("\n\nIt appears in this context:\n")
		b.WriteString(req.Context)
	}
	return b.String()
}
