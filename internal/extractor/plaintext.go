package extractor

import (
	"context"
	"strings"
	"unicode/utf8"
)

// PlainText treats the document bytes as UTF-8 text as-is. Used for
// .txt uploads and as the extractor in tests.
type PlainText struct{}

func NewPlainText() *PlainText {
	return &PlainText{}
}

func (e *PlainText) Name() string {
	return "plaintext"
}

func (e *PlainText) Extract(_ context.Context, data []byte) (string, error) {
	text := string(data)
	if !utf8.ValidString(text) || strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}
