package extract

import (
	"bytes"
	"fmt"
	"strings"

	"studydesk/internal/util"

	"github.com/ledongthuc/pdf"
)

// ReadDocument extracts the text of a paginated PDF document, pages in
// ascending order, each prefixed with its 1-based page marker. Any page that
// fails to decode aborts the whole extraction.
func ReadDocument(blob []byte) (text string, err error) {
	// The pdf library panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("%w: %v", util.ErrDocumentFormat, rec)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", util.ErrDocumentFormat, err)
	}

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		text, err := pageText(r, i)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", util.ErrDocumentFormat, i, err)
		}
		pages = append(pages, text)
	}
	return joinUnits("page", pages), nil
}

// pageText joins a page's text content items with single spaces.
func pageText(r *pdf.Reader, num int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("decode page content: %v", rec)
		}
	}()
	p := r.Page(num)
	if p.V.IsNull() {
		return "", nil
	}
	content := p.Content()
	parts := make([]string, 0, len(content.Text))
	for _, item := range content.Text {
		if item.S != "" {
			parts = append(parts, item.S)
		}
	}
	return strings.Join(parts, " "), nil
}

// joinUnits concatenates per-unit text chunks, each preceded by a marker
// carrying the unit's 1-based number.
func joinUnits(unit string, texts []string) string {
	var b strings.Builder
	for i, text := range texts {
		fmt.Fprintf(&b, "--- %s %d ---\n%s\n\n", unit, i+1, text)
	}
	return strings.TrimSpace(b.String())
}
