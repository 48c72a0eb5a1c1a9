// Package multipart decodes multipart/form-data bodies that have been
// buffered fully in memory. It deliberately avoids streaming: upload
// payloads here are a single document plus small form fields, so the
// whole body is materialized before parsing begins.
package multipart

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrMissingBoundary is returned when the content-type header carries no boundary token
	ErrMissingBoundary = errors.New("multipart: no boundary found in content type")

	// ErrMalformedBody is returned when the body contains no boundary delimiter
	ErrMalformedBody = errors.New("multipart: invalid multipart body")
)

// Part is one decoded segment of a multipart stream. Filename is empty
// for plain form fields.
type Part struct {
	Name     string
	Filename string
	Data     []byte
}

var (
	nameRe     = regexp.MustCompile(`(?:^|[;\s])name="([^"]*)"`)
	filenameRe = regexp.MustCompile(`filename="([^"]*)"`)
)

// Boundary extracts the boundary token from a Content-Type header value.
func Boundary(contentType string) (string, error) {
	_, rest, found := strings.Cut(contentType, "boundary=")
	if !found {
		return "", ErrMissingBoundary
	}
	if i := strings.IndexByte(rest, ';'); i >= 0 {
		rest = rest[:i]
	}
	rest = strings.Trim(strings.TrimSpace(rest), `"`)
	if rest == "" {
		return "", ErrMissingBoundary
	}
	return rest, nil
}

type parseState int

const (
	stateSeekBoundary parseState = iota
	stateReadPart
	stateDone
)

// Parse decodes a complete multipart body using the given boundary token.
// Parts are returned in stream order. A part without a name attribute, or
// without a header/payload separator, is dropped rather than failing the
// whole parse. The body must contain both the opening delimiter and the
// closing delimiter or Parse fails with ErrMalformedBody.
func Parse(body []byte, boundary string) ([]Part, error) {
	open := []byte("--" + boundary)
	delim := []byte("\r\n--" + boundary)

	var parts []Part
	state := stateSeekBoundary
	cursor := 0

	for state != stateDone {
		switch state {
		case stateSeekBoundary:
			i := bytes.Index(body, open)
			if i < 0 {
				return nil, ErrMalformedBody
			}
			cursor = i + len(open)
			state = stateReadPart

		case stateReadPart:
			rest := body[cursor:]
			if bytes.HasPrefix(rest, []byte("--")) {
				// Closing delimiter reached
				state = stateDone
				continue
			}
			if !bytes.HasPrefix(rest, []byte("\r\n")) {
				return nil, ErrMalformedBody
			}
			end := bytes.Index(rest[2:], delim)
			if end < 0 {
				// Stream ends without a closing delimiter
				return nil, ErrMalformedBody
			}
			raw := rest[2 : 2+end]
			if p, ok := parsePart(raw); ok {
				parts = append(parts, p)
			}
			cursor += 2 + end + len(delim)
		}
	}

	return parts, nil
}

// parsePart splits one raw part into header text and payload bytes.
// Returns false for parts that should be silently dropped.
func parsePart(raw []byte) (Part, bool) {
	headerEnd := bytes.Index(raw, []byte("\r\n\r\n"))
	if headerEnd < 0 {
		return Part{}, false
	}

	headers := string(raw[:headerEnd])
	data := raw[headerEnd+4:]

	nameMatch := nameRe.FindStringSubmatch(headers)
	if nameMatch == nil {
		return Part{}, false
	}

	p := Part{Name: nameMatch[1], Data: data}
	if m := filenameRe.FindStringSubmatch(headers); m != nil {
		p.Filename = m[1]
	}
	return p, true
}
