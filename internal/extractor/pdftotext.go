package extractor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// PdfToText extracts PDF text by shelling out to poppler's pdftotext,
// reading the document on stdin and collecting plain text on stdout.
type PdfToText struct {
	binary string
}

// NewPdfToText creates a pdftotext-backed extractor. An empty binary
// path falls back to whatever "pdftotext" resolves to on PATH.
func NewPdfToText(binary string) *PdfToText {
	if binary == "" {
		binary = "pdftotext"
	}
	return &PdfToText{binary: binary}
}

// DetectPdfToText reports whether pdftotext is available on PATH.
func DetectPdfToText() bool {
	_, err := exec.LookPath("pdftotext")
	return err == nil
}

func (e *PdfToText) Name() string {
	return "pdftotext"
}

func (e *PdfToText) Extract(ctx context.Context, data []byte) (string, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, e.binary, "-", "-")
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("pdftotext: %s: %w", msg, err)
		}
		return "", fmt.Errorf("pdftotext: %w", err)
	}

	text := stdout.String()
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}
