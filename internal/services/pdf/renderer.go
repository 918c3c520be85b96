package pdf

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/ternarybob/parley/internal/interfaces"
)

// Renderer implements the PDFRenderer interface for transcript export
type Renderer struct {
	logger arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.PDFRenderer = (*Renderer)(nil)

// NewRenderer creates a new markdown to PDF renderer
func NewRenderer(logger arbor.ILogger) *Renderer {
	return &Renderer{
		logger: logger,
	}
}

// RenderMarkdown converts markdown content to a PDF byte slice. The title
// is rendered as a document heading above the content.
func (r *Renderer) RenderMarkdown(markdown, title string) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(10, 10, 10)
	doc.SetAutoPageBreak(true, 10)
	doc.AddPage()

	if title != "" {
		doc.SetFont("Arial", "B", 14)
		doc.MultiCell(0, 7, title, "", "L", false)
		doc.Ln(4)
	}

	doc.SetFont("Arial", "", 9)

	md := goldmark.New(
		goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
	)

	source := []byte(markdown)
	root := md.Parser().Parse(text.NewReader(source))

	walker := &markdownWalker{
		pdf:    doc,
		source: source,
		font:   "Arial",
		size:   9,
	}

	if err := ast.Walk(root, walker.walk); err != nil {
		r.logger.Error().Err(err).Msg("Failed to render markdown")
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}

	r.logger.Debug().Int("pdf_size", buf.Len()).Msg("Transcript PDF generated")
	return buf.Bytes(), nil
}

type markdownWalker struct {
	pdf       *fpdf.Fpdf
	source    []byte
	font      string
	size      float64
	bold      bool
	italic    bool
	listLevel int
}

func (w *markdownWalker) updateFont() {
	style := ""
	if w.bold {
		style += "B"
	}
	if w.italic {
		style += "I"
	}
	w.pdf.SetFont(w.font, style, w.size)
}

func (w *markdownWalker) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		if entering {
			w.pdf.Ln(5)
			size := 13.0 - float64(node.Level)
			if size < 9 {
				size = 9
			}
			w.pdf.SetFont(w.font, "B", size)
		} else {
			w.pdf.Ln(6)
			w.updateFont()
		}
	case *ast.Paragraph:
		if !entering {
			w.pdf.Ln(7)
		}
	case *ast.Text:
		if entering {
			w.pdf.Write(5, string(node.Text(w.source)))
			if node.SoftLineBreak() || node.HardLineBreak() {
				w.pdf.Ln(5)
			}
		}
	case *ast.Emphasis:
		if node.Level == 2 {
			w.bold = entering
		} else {
			w.italic = entering
		}
		w.updateFont()
	case *ast.CodeSpan:
		if entering {
			w.pdf.SetFont("Courier", "", w.size)
			for c := node.FirstChild(); c != nil; c = c.NextSibling() {
				if textNode, ok := c.(*ast.Text); ok {
					w.pdf.Write(5, string(textNode.Segment.Value(w.source)))
				}
			}
		} else {
			w.updateFont()
		}
		return ast.WalkSkipChildren, nil
	case *ast.FencedCodeBlock:
		if entering {
			w.renderCodeLines(node.Lines())
			return ast.WalkSkipChildren, nil
		}
	case *ast.CodeBlock:
		if entering {
			w.renderCodeLines(node.Lines())
			return ast.WalkSkipChildren, nil
		}
	case *ast.List:
		if entering {
			w.listLevel++
		} else {
			w.listLevel--
			if w.listLevel == 0 {
				w.pdf.Ln(2)
			}
		}
	case *ast.ListItem:
		if entering {
			w.pdf.Ln(5)
			indent := float64(w.listLevel) * 5.0
			w.pdf.SetX(10 + indent)
			w.pdf.Write(5, "- ")
		}
	case *ast.ThematicBreak:
		if entering {
			w.pdf.Ln(3)
			w.pdf.Line(10, w.pdf.GetY(), 200, w.pdf.GetY())
			w.pdf.Ln(3)
		}
	}
	return ast.WalkContinue, nil
}

func (w *markdownWalker) renderCodeLines(lines *text.Segments) {
	w.pdf.Ln(2)
	w.pdf.SetFont("Courier", "", w.size)
	w.pdf.SetFillColor(245, 245, 245)

	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		w.pdf.MultiCell(0, 5, string(segment.Value(w.source)), "", "L", true)
	}

	w.pdf.SetFillColor(255, 255, 255)
	w.updateFont()
	w.pdf.Ln(2)
}
