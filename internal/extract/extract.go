package extract

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"

	"studydesk/internal/util"
)

// Result is the normalized outcome of extracting one upload: concatenated
// unit-marked text plus embedded images as data URIs in discovery order.
type Result struct {
	Text   string   `json:"text"`
	Images []string `json:"images"`
}

// File normalizes an uploaded blob into a Result, dispatching on the
// declared MIME type with filename extension as fallback.
func File(blob []byte, mimeType, filename string) (Result, error) {
	switch Classify(mimeType, filename) {
	case KindImage:
		mime := imageMIMEFor(mimeType, filename)
		uri := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(blob)
		return Result{Images: []string{uri}}, nil
	case KindSlideDeck:
		return ReadDeck(blob)
	case KindPaginatedDoc:
		text, err := ReadDocument(blob)
		if err != nil {
			return Result{}, err
		}
		return Result{Text: text, Images: []string{}}, nil
	default:
		ext := strings.ToLower(filepath.Ext(filename))
		return Result{}, fmt.Errorf("%w: mime=%q ext=%q", util.ErrUnsupportedFormat, mimeType, ext)
	}
}
