package pdf

import (
	"bytes"
	"context"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

// buildTestPDF generates a real PDF with one text line per page
func buildTestPDF(t *testing.T, pages ...string) []byte {
	t.Helper()

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetFont("Arial", "", 12)
	for _, content := range pages {
		doc.AddPage()
		doc.Cell(40, 10, content)
	}

	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func TestExtractor_Extract(t *testing.T) {
	extractor := NewExtractor(arbor.NewLogger())
	data := buildTestPDF(t, "Hello world", "Second page")

	result, err := extractor.Extract(context.Background(), data)
	require.NoError(t, err)

	assert.Equal(t, 2, result.PageCount)
	assert.False(t, result.Degraded)
	assert.Contains(t, result.Text, "Hello world")
	assert.Contains(t, result.Text, "Second page")
}

func TestExtractor_DegradesOnInvalidPDF(t *testing.T) {
	extractor := NewExtractor(arbor.NewLogger())

	result, err := extractor.Extract(context.Background(), []byte("this is not a pdf"))
	require.NoError(t, err)

	assert.True(t, result.Degraded)
	assert.Equal(t, 1, result.PageCount)
	assert.Contains(t, result.Text, "text extraction failed")
}

func TestExtractor_EmptyInput(t *testing.T) {
	extractor := NewExtractor(arbor.NewLogger())

	_, err := extractor.Extract(context.Background(), nil)
	assert.Error(t, err)
}

func TestRenderer_RenderMarkdown(t *testing.T) {
	renderer := NewRenderer(arbor.NewLogger())

	markdown := "# Conversation\n\n**You:** What is this about?\n\n**Assistant:** It covers `testing` in Go.\n\n---\n\n- first point\n- second point\n"

	data, err := renderer.RenderMarkdown(markdown, "Chat Transcript")
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
