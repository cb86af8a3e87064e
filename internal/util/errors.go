package util

import "errors"

var (
	ErrDocumentFormat    = errors.New("not a readable paginated document")
	ErrDeckFormat        = errors.New("not a readable slide deck")
	ErrUnsupportedFormat = errors.New("unsupported file format")

	ErrInvalidCode         = errors.New("redemption code not recognized")
	ErrPersistence         = errors.New("local store write failed")
	ErrInsufficientCredits = errors.New("no credits remaining")
)
