package extract

import (
	"path/filepath"
	"strings"
)

// Kind is the classification of an uploaded file.
type Kind int

const (
	KindUnsupported Kind = iota
	KindImage
	KindSlideDeck
	KindPaginatedDoc
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindSlideDeck:
		return "slide_deck"
	case KindPaginatedDoc:
		return "paginated_doc"
	default:
		return "unsupported"
	}
}

const deckMIME = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

var imageExts = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// Classify routes an upload by declared MIME type first, filename extension
// second. Extension fallback matters because slide decks are commonly served
// as application/octet-stream.
func Classify(mimeType, filename string) Kind {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch {
	case mt == "application/pdf":
		return KindPaginatedDoc
	case mt == deckMIME:
		return KindSlideDeck
	case strings.HasPrefix(mt, "image/"):
		return KindImage
	}

	switch ext := strings.ToLower(filepath.Ext(filename)); {
	case ext == ".pdf":
		return KindPaginatedDoc
	case ext == ".pptx":
		return KindSlideDeck
	default:
		if _, ok := imageExts[ext]; ok {
			return KindImage
		}
	}
	return KindUnsupported
}

// imageMIMEFor resolves the MIME type recorded for an image passthrough:
// the declared type when it is a concrete image type, the extension's type
// otherwise.
func imageMIMEFor(mimeType, filename string) string {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if strings.HasPrefix(mt, "image/") {
		return mt
	}
	if m, ok := imageExts[strings.ToLower(filepath.Ext(filename))]; ok {
		return m
	}
	return "image/png"
}
