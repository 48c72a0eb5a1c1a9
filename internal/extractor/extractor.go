// Package extractor turns raw document bytes into plain text.
package extractor

import (
	"context"
	"errors"
)

// ErrNoText is returned when a document yields no readable text
var ErrNoText = errors.New("document contains no readable text")

// Extractor extracts plain text from raw document bytes
type Extractor interface {
	// Name returns the extractor identifier
	Name() string

	// Extract returns the plain text contained in data
	Extract(ctx context.Context, data []byte) (string, error)
}
