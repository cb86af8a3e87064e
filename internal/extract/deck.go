package extract

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"studydesk/internal/util"
)

const (
	// MaxDeckImages bounds memory held by embedded media extraction.
	MaxDeckImages = 15

	// NoTextPlaceholder is returned instead of an empty string when every
	// slide parses to empty text, so callers can tell "nothing extractable"
	// from "extraction never ran".
	NoTextPlaceholder = "No readable text was found in this deck."
)

var slideEntryRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

const deckMediaDir = "ppt/media/"

// ReadDeck extracts ordered slide text and embedded media from a ZIP-based
// slide deck. Slide entries are ordered by their numeric index parsed from
// the entry name; archive enumeration order is never trusted for text
// (slide10 would sort before slide2 lexically).
func ReadDeck(blob []byte) (Result, error) {
	zr, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", util.ErrDeckFormat, err)
	}

	images, err := deckImages(zr)
	if err != nil {
		return Result{}, err
	}

	type slideEntry struct {
		index int
		file  *zip.File
	}
	slides := make([]slideEntry, 0, 16)
	for _, f := range zr.File {
		m := slideEntryRe.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slides = append(slides, slideEntry{index: n, file: f})
	}
	if len(slides) == 0 {
		return Result{}, fmt.Errorf("%w: no slide records in archive", util.ErrDeckFormat)
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].index < slides[j].index })

	var b strings.Builder
	for _, s := range slides {
		text, err := slideText(s.file)
		if err != nil {
			return Result{}, fmt.Errorf("%w: slide %d: %v", util.ErrDeckFormat, s.index, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		fmt.Fprintf(&b, "--- slide %d ---\n%s\n\n", s.index, text)
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		text = NoTextPlaceholder
	}
	return Result{Text: text, Images: images}, nil
}

// deckImages collects embedded raster media as data URIs, at most
// MaxDeckImages entries in archive enumeration order. Entries past the cap
// are dropped silently.
func deckImages(zr *zip.Reader) ([]string, error) {
	images := make([]string, 0, MaxDeckImages)
	for _, f := range zr.File {
		if len(images) == MaxDeckImages {
			break
		}
		if !strings.HasPrefix(f.Name, deckMediaDir) {
			continue
		}
		ext := strings.ToLower(path.Ext(f.Name))
		if ext != ".jpg" && ext != ".jpeg" && ext != ".png" && ext != ".webp" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open media %s: %v", util.ErrDeckFormat, f.Name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: read media %s: %v", util.ErrDeckFormat, f.Name, err)
		}
		mime := "image/jpeg"
		if ext == ".png" {
			mime = "image/png"
		}
		images = append(images, "data:"+mime+";base64,"+base64.StdEncoding.EncodeToString(data))
	}
	return images, nil
}

// slideText parses one slide's markup and joins the content of its text-run
// elements (the DrawingML <a:t> tag) with single spaces.
func slideText(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open slide: %w", err)
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	parts := make([]string, 0, 16)
	depth := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse slide markup: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				depth++
			}
		case xml.EndElement:
			if t.Name.Local == "t" && depth > 0 {
				depth--
			}
		case xml.CharData:
			if depth > 0 {
				if s := string(t); s != "" {
					parts = append(parts, s)
				}
			}
		}
	}
	return strings.Join(parts, " "), nil
}
