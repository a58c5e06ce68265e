// Package pdftext exposes the PDF-to-text capability consumed by the
// traversal engine. The default implementation reads the embedded text
// layer; scanned leaflets without one simply yield an extraction miss
// downstream, never an abort.
package pdftext

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extractor converts a PDF file into plain text.
type Extractor interface {
	Extract(path string) (string, error)
}

// Default returns the standard extractor.
func Default() Extractor {
	return textLayer{}
}

type textLayer struct{}

// Extract reads the text layer of every page, one page per block.
func (textLayer) Extract(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer func() { _ = f.Close() }()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not lose the rest.
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	out := b.String()
	if len(strings.TrimSpace(out)) < 10 {
		return "", fmt.Errorf("pdf has no usable text layer")
	}
	return out, nil
}
