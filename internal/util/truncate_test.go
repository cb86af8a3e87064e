package util

import "testing"

func TestTruncateRunesShortTextUnchanged(t *testing.T) {
	if out := TruncateRunes("short text", 100); out != "short text" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestTruncateRunesCutsAtWordBoundary(t *testing.T) {
	out := TruncateRunes("alpha beta gamma delta", 12)
	if out != "alpha beta" {
		t.Fatalf("expected cut at word boundary, got %q", out)
	}
}

func TestTruncateRunesZeroBudgetDisables(t *testing.T) {
	if out := TruncateRunes("anything at all", 0); out != "anything at all" {
		t.Fatalf("unexpected output: %q", out)
	}
}
