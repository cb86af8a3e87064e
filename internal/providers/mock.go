package providers

import (
	"context"
	"fmt"
	"strings"
)

// MockProvider returns deterministic output for development and tests.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Analyze(ctx context.Context, req AnalyzeRequest) (AnalyzeResponse, ProviderInfo, error) {
	_ = ctx
	subject := "the uploaded image"
	if req.Text != "" {
		words := strings.Fields(req.Text)
		n := len(words)
		if n > 8 {
			words = words[:8]
		}
		subject = fmt.Sprintf("%q (%d words)", strings.Join(words, " "), n)
	}
	return AnalyzeResponse{
		Overview: "Deterministic mock overview of " + subject + ".",
		Summary:  "## Mock Summary\n\nDeterministic section output for " + subject + ".",
		QA: []QAPair{
			{Question: "What does this mock cover?", Answer: "It covers " + subject + "."},
		},
	}, ProviderInfo{Name: "mock", Model: "mock-study-v1"}, nil
}

func (m *MockProvider) Explain(ctx context.Context, req ExplainRequest) (ExplainResponse, ProviderInfo, error) {
	_ = ctx
	return ExplainResponse{
		Explanation:  fmt.Sprintf("Deterministic mock explanation of %q at the %s level.", req.Term, req.Level),
		RelatedTerms: []string{req.Term + "-related"},
	}, ProviderInfo{Name: "mock", Model: "mock-study-v1"}, nil
}

func (m *MockProvider) Synthesize(ctx context.Context, req SpeechRequest) ([]byte, ProviderInfo, error) {
	_ = ctx
	return []byte("MOCKAUDIO:" + req.Text), ProviderInfo{Name: "mock", Model: "mock-tts-v1"}, nil
}
