package extract

import (
	"errors"
	"strings"
	"testing"

	"studydesk/internal/util"
)

func TestJoinUnitsKeepsPageOrder(t *testing.T) {
	out := joinUnits("page", []string{"A", "B", "C"})

	wantOrder := []string{
		"--- page 1 ---\nA",
		"--- page 2 ---\nB",
		"--- page 3 ---\nC",
	}
	pos := -1
	for _, marker := range wantOrder {
		i := strings.Index(out, marker)
		if i < 0 {
			t.Fatalf("marker %q missing in output:\n%s", marker, out)
		}
		if i <= pos {
			t.Fatalf("marker %q out of order in output:\n%s", marker, out)
		}
		pos = i
	}
	if strings.Contains(out, "--- page 4 ---") {
		t.Fatalf("unexpected extra page marker:\n%s", out)
	}
}

func TestJoinUnitsEmptyInput(t *testing.T) {
	if out := joinUnits("page", nil); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}

func TestReadDocumentRejectsGarbage(t *testing.T) {
	_, err := ReadDocument([]byte("definitely not a pdf"))
	if !errors.Is(err, util.ErrDocumentFormat) {
		t.Fatalf("expected document format error, got %v", err)
	}
}

func TestReadDocumentRejectsTruncatedHeader(t *testing.T) {
	_, err := ReadDocument([]byte("%PDF-1.7\n"))
	if !errors.Is(err, util.ErrDocumentFormat) {
		t.Fatalf("expected document format error, got %v", err)
	}
}
