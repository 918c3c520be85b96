// -----------------------------------------------------------------------
// PDF Extractor Service - Extract text content from uploaded PDFs
// Uses pdfcpu for structure validation and ledongthuc/pdf for text
// -----------------------------------------------------------------------

package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	ldpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/parley/internal/interfaces"
)

// fallbackPageBytes is the per-page size estimate used when a PDF cannot
// be parsed and the page count has to be guessed from the file size.
const fallbackPageBytes = 50 * 1024

// Extractor implements the PDFExtractor interface
type Extractor struct {
	logger arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.PDFExtractor = (*Extractor)(nil)

// NewExtractor creates a new PDF extractor service
func NewExtractor(logger arbor.ILogger) *Extractor {
	return &Extractor{
		logger: logger,
	}
}

// Extract pulls plain text and the page count out of PDF bytes.
// Extraction is best-effort: unparseable files degrade to placeholder
// text with a size-based page estimate instead of failing the upload.
func (e *Extractor) Extract(ctx context.Context, data []byte) (*interfaces.PDFExtraction, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("pdf data cannot be empty")
	}

	pageCount, err := e.pageCount(data)
	if err != nil {
		e.logger.Warn().Err(err).Msg("PDF parsing failed, using fallback content")
		return e.degraded(data), nil
	}

	text, err := e.extractText(data, pageCount)
	if err != nil {
		e.logger.Warn().Err(err).Msg("PDF text extraction failed, using fallback content")
		extraction := e.degraded(data)
		extraction.PageCount = pageCount
		return extraction, nil
	}

	return &interfaces.PDFExtraction{
		Text:      text,
		PageCount: pageCount,
	}, nil
}

// pageCount validates the PDF structure and returns its page count
func (e *Extractor) pageCount(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	pdfCtx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := api.ValidateContext(pdfCtx); err != nil {
		return 0, fmt.Errorf("PDF validation failed: %w", err)
	}
	if pdfCtx.PageCount < 1 {
		return 0, fmt.Errorf("PDF has no pages")
	}
	return pdfCtx.PageCount, nil
}

// extractText reads plain text page by page, joining pages with blank lines
func (e *Extractor) extractText(data []byte, pageCount int) (string, error) {
	reader, err := ldpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF for text extraction: %w", err)
	}

	var builder strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.Warn().Err(err).Int("page", pageNum).Msg("Failed to extract page text")
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(strings.TrimSpace(text))
	}

	return builder.String(), nil
}

// degraded builds the placeholder extraction for unparseable PDFs.
// The document stays chat-able, the assistant just has less to work with.
func (e *Extractor) degraded(data []byte) *interfaces.PDFExtraction {
	pages := len(data) / fallbackPageBytes
	if pages < 1 {
		pages = 1
	}

	text := fmt.Sprintf(`PDF Document (%dKB)
This PDF has been uploaded and processed.
You can chat with this document using AI assistance.

Note: Full text extraction failed. Consider using a different PDF processing service for better results.`,
		len(data)/1024)

	return &interfaces.PDFExtraction{
		Text:      text,
		PageCount: pages,
		Degraded:  true,
	}
}
