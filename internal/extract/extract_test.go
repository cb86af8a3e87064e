package extract

import (
	"errors"
	"strings"
	"testing"

	"studydesk/internal/util"
)

func TestFileImagePassthrough(t *testing.T) {
	blob := []byte{0x89, 0x50, 0x4e, 0x47}
	res, err := File(blob, "image/png", "shot.png")
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if res.Text != "" {
		t.Fatalf("image passthrough must carry no text, got %q", res.Text)
	}
	if len(res.Images) != 1 {
		t.Fatalf("expected exactly one image, got %d", len(res.Images))
	}
	if res.Images[0] != dataURI("image/png", blob) {
		t.Fatalf("unexpected data URI: %s", res.Images[0])
	}
}

func TestFileImageMIMEFromExtensionWhenGeneric(t *testing.T) {
	res, err := File([]byte{0xff, 0xd8}, "application/octet-stream", "photo.jpg")
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if !strings.HasPrefix(res.Images[0], "data:image/jpeg;base64,") {
		t.Fatalf("expected jpeg data URI, got %s", res.Images[0])
	}
}

func TestFileDispatchesSlideDeck(t *testing.T) {
	entries := map[string][]byte{
		"ppt/slides/slide1.xml": []byte(slideXML("deck body")),
	}
	blob := buildDeck(t, entries, []string{"ppt/slides/slide1.xml"})

	res, err := File(blob, "application/octet-stream", "lecture.pptx")
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if !strings.Contains(res.Text, "--- slide 1 ---") {
		t.Fatalf("expected slide marker, got:\n%s", res.Text)
	}
}

func TestFileDispatchesPaginatedDoc(t *testing.T) {
	_, err := File([]byte("not a pdf"), "application/pdf", "paper.pdf")
	if !errors.Is(err, util.ErrDocumentFormat) {
		t.Fatalf("expected document format error from pdf path, got %v", err)
	}
}

func TestFileUnsupportedCarriesDiagnostics(t *testing.T) {
	_, err := File([]byte("hello"), "text/plain", "notes.txt")
	if !errors.Is(err, util.ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "text/plain") || !strings.Contains(msg, ".txt") {
		t.Fatalf("expected mime and extension in error, got %q", msg)
	}
}
