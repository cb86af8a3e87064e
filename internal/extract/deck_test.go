package extract

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"

	"studydesk/internal/util"
)

func dataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func slideXML(texts ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString(`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld><p:spTree>`)
	for _, t := range texts {
		b.WriteString(`<p:sp><p:txBody><a:p><a:r><a:t>` + t + `</a:t></a:r></a:p></p:txBody></p:sp>`)
	}
	b.WriteString(`</p:spTree></p:cSld></p:sld>`)
	return b.String()
}

func buildDeck(t *testing.T, entries map[string][]byte, order []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", name, err)
		}
		if _, err := w.Write(entries[name]); err != nil {
			t.Fatalf("write zip entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestReadDeckOrdersSlidesNumerically(t *testing.T) {
	entries := map[string][]byte{
		"ppt/slides/slide2.xml":  []byte(slideXML("second")),
		"ppt/slides/slide10.xml": []byte(slideXML("tenth")),
		"ppt/slides/slide1.xml":  []byte(slideXML("first")),
		"ppt/slides/slide3.xml":  []byte(slideXML("third")),
	}
	blob := buildDeck(t, entries, []string{
		"ppt/slides/slide2.xml",
		"ppt/slides/slide10.xml",
		"ppt/slides/slide1.xml",
		"ppt/slides/slide3.xml",
	})

	res, err := ReadDeck(blob)
	if err != nil {
		t.Fatalf("ReadDeck: %v", err)
	}

	wantOrder := []string{
		"--- slide 1 ---\nfirst",
		"--- slide 2 ---\nsecond",
		"--- slide 3 ---\nthird",
		"--- slide 10 ---\ntenth",
	}
	pos := -1
	for _, marker := range wantOrder {
		i := strings.Index(res.Text, marker)
		if i < 0 {
			t.Fatalf("marker %q missing in output:\n%s", marker, res.Text)
		}
		if i <= pos {
			t.Fatalf("marker %q out of order in output:\n%s", marker, res.Text)
		}
		pos = i
	}
}

func TestReadDeckCapsImagesAtFifteen(t *testing.T) {
	entries := map[string][]byte{
		"ppt/slides/slide1.xml": []byte(slideXML("hello")),
	}
	order := []string{"ppt/slides/slide1.xml"}
	for i := 1; i <= 30; i++ {
		name := fmt.Sprintf("ppt/media/image%d.png", i)
		entries[name] = []byte(fmt.Sprintf("png-bytes-%d", i))
		order = append(order, name)
	}
	blob := buildDeck(t, entries, order)

	res, err := ReadDeck(blob)
	if err != nil {
		t.Fatalf("ReadDeck: %v", err)
	}
	if len(res.Images) != MaxDeckImages {
		t.Fatalf("expected %d images, got %d", MaxDeckImages, len(res.Images))
	}
	for i, uri := range res.Images {
		want := dataURI("image/png", []byte(fmt.Sprintf("png-bytes-%d", i+1)))
		if uri != want {
			t.Fatalf("image %d out of enumeration order:\ngot  %s\nwant %s", i, uri, want)
		}
	}
}

func TestReadDeckImageMIMEByExtension(t *testing.T) {
	entries := map[string][]byte{
		"ppt/slides/slide1.xml": []byte(slideXML("x")),
		"ppt/media/a.png":       []byte("p"),
		"ppt/media/b.jpeg":      []byte("j"),
		"ppt/media/c.webp":      []byte("w"),
		"ppt/media/skip.gif":    []byte("g"),
	}
	blob := buildDeck(t, entries, []string{
		"ppt/slides/slide1.xml", "ppt/media/a.png", "ppt/media/b.jpeg", "ppt/media/c.webp", "ppt/media/skip.gif",
	})

	res, err := ReadDeck(blob)
	if err != nil {
		t.Fatalf("ReadDeck: %v", err)
	}
	if len(res.Images) != 3 {
		t.Fatalf("expected 3 images, got %d", len(res.Images))
	}
	if !strings.HasPrefix(res.Images[0], "data:image/png;base64,") {
		t.Fatalf("png entry got %q", res.Images[0])
	}
	if !strings.HasPrefix(res.Images[1], "data:image/jpeg;base64,") {
		t.Fatalf("jpeg entry got %q", res.Images[1])
	}
	if !strings.HasPrefix(res.Images[2], "data:image/jpeg;base64,") {
		t.Fatalf("webp entry maps to image/jpeg, got %q", res.Images[2])
	}
}

func TestReadDeckEmptyTextYieldsPlaceholder(t *testing.T) {
	entries := map[string][]byte{
		"ppt/slides/slide1.xml": []byte(slideXML()),
		"ppt/slides/slide2.xml": []byte(slideXML("   ")),
	}
	blob := buildDeck(t, entries, []string{"ppt/slides/slide1.xml", "ppt/slides/slide2.xml"})

	res, err := ReadDeck(blob)
	if err != nil {
		t.Fatalf("ReadDeck: %v", err)
	}
	if res.Text != NoTextPlaceholder {
		t.Fatalf("expected placeholder, got %q", res.Text)
	}
}

func TestReadDeckNoSlidesFails(t *testing.T) {
	entries := map[string][]byte{
		"ppt/media/image1.png": []byte("p"),
	}
	blob := buildDeck(t, entries, []string{"ppt/media/image1.png"})

	_, err := ReadDeck(blob)
	if !errors.Is(err, util.ErrDeckFormat) {
		t.Fatalf("expected deck format error, got %v", err)
	}
}

func TestReadDeckNotAnArchiveFails(t *testing.T) {
	_, err := ReadDeck([]byte("this is not a zip archive"))
	if !errors.Is(err, util.ErrDeckFormat) {
		t.Fatalf("expected deck format error, got %v", err)
	}
}

func TestReadDeckSkipsEmptySlidesKeepsIndices(t *testing.T) {
	entries := map[string][]byte{
		"ppt/slides/slide1.xml": []byte(slideXML()),
		"ppt/slides/slide2.xml": []byte(slideXML("kept")),
	}
	blob := buildDeck(t, entries, []string{"ppt/slides/slide1.xml", "ppt/slides/slide2.xml"})

	res, err := ReadDeck(blob)
	if err != nil {
		t.Fatalf("ReadDeck: %v", err)
	}
	if strings.Contains(res.Text, "--- slide 1 ---") {
		t.Fatalf("empty slide should be omitted:\n%s", res.Text)
	}
	if !strings.Contains(res.Text, "--- slide 2 ---\nkept") {
		t.Fatalf("non-empty slide missing:\n%s", res.Text)
	}
}

func TestSlideTextJoinsRunsWithSpaces(t *testing.T) {
	entries := map[string][]byte{
		"ppt/slides/slide1.xml": []byte(slideXML("alpha", "beta", "gamma")),
	}
	blob := buildDeck(t, entries, []string{"ppt/slides/slide1.xml"})

	res, err := ReadDeck(blob)
	if err != nil {
		t.Fatalf("ReadDeck: %v", err)
	}
	if !strings.Contains(res.Text, "alpha beta gamma") {
		t.Fatalf("expected space-joined runs, got:\n%s", res.Text)
	}
}
