package providers

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyError(t *testing.T) {
	cases := map[string]ErrorType{
		"openai: insufficient_quota":     ErrorQuota,
		"you have run out of credit":     ErrorQuota,
		"http 429 from upstream":         ErrorRate,
		"rate limit reached":             ErrorRate,
		"prompt too long for model":      ErrorContext,
		"request timeout":                ErrorTransient,
		"service temporarily overloaded": ErrorTransient,
		"invalid api key":                ErrorPermanent,
		"model not found":                ErrorPermanent,
	}
	for msg, want := range cases {
		if got := ClassifyError(errors.New(msg)); got != want {
			t.Fatalf("classify %q: got %s want %s", msg, got, want)
		}
	}
}

func TestClassifyErrorNil(t *testing.T) {
	if got := ClassifyError(nil); got != "" {
		t.Fatalf("nil error classified as %s", got)
	}
}

func TestClassifyErrorWrapped(t *testing.T) {
	err := fmt.Errorf("analyze via gemini failed: %w", errors.New("quota exceeded for project"))
	if got := ClassifyError(err); got != ErrorQuota {
		t.Fatalf("wrapped quota error classified as %s", got)
	}
}
