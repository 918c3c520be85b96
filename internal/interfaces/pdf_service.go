package interfaces

import (
	"context"
)

// PDFExtraction holds the result of extracting text from an uploaded PDF
type PDFExtraction struct {
	Text      string // plain text, pages joined with blank lines
	PageCount int    // always >= 1
	Degraded  bool   // true when extraction failed and Text is placeholder content
}

// PDFExtractor extracts text content from PDF bytes.
// Extraction is best-effort: a parse failure degrades to placeholder text
// with an estimated page count rather than failing the upload.
type PDFExtractor interface {
	Extract(ctx context.Context, data []byte) (*PDFExtraction, error)
}

// PDFRenderer renders markdown content to a PDF byte slice.
// Used for transcript export.
type PDFRenderer interface {
	RenderMarkdown(markdown, title string) ([]byte, error)
}
