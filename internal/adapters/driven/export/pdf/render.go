package pdf

import (
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
)

// headingSizes maps heading levels to font sizes; deeper levels use the last.
var headingSizes = []float64{16, 14, 12.5, 11.5}

type listState struct {
	ordered bool
	next    int
}

// renderer walks a goldmark AST and writes it to a gofpdf document.
type renderer struct {
	pdf  *gofpdf.Fpdf
	tr   func(string) string
	src  []byte
	left float64

	bold   int
	italic int
	code   int
	size   float64
	lists  []listState
	quotes int
}

func newRenderer(pdf *gofpdf.Fpdf, tr func(string) string, src []byte) *renderer {
	left, _, _, _ := pdf.GetMargins()
	r := &renderer{pdf: pdf, tr: tr, src: src, left: left, size: bodySize}
	r.applyFont()
	return r
}

func (r *renderer) render(doc ast.Node) error {
	if err := ast.Walk(doc, r.visit); err != nil {
		return err
	}
	return r.pdf.Error()
}

func (r *renderer) visit(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		if entering {
			r.pdf.Ln(2)
			r.size = headingSizes[min(node.Level, len(headingSizes))-1]
			r.bold++
		} else {
			r.bold--
			r.size = bodySize
			r.pdf.Ln(lineHeight + 2)
		}
		r.applyFont()

	case *ast.Paragraph:
		if !entering {
			r.pdf.Ln(lineHeight)
			if len(r.lists) == 0 {
				r.pdf.Ln(2)
			}
		}

	case *ast.TextBlock:
		if !entering {
			r.pdf.Ln(lineHeight)
		}

	case *ast.List:
		if entering {
			r.lists = append(r.lists, listState{ordered: node.IsOrdered(), next: node.Start})
		} else {
			r.lists = r.lists[:len(r.lists)-1]
			r.indent()
			if len(r.lists) == 0 {
				r.pdf.Ln(2)
			}
		}

	case *ast.ListItem:
		if entering {
			r.indent()
			r.pdf.Write(lineHeight, r.marker())
			r.pdf.SetLeftMargin(r.pdf.GetX())
		} else {
			r.indent()
		}

	case *ast.Blockquote:
		if entering {
			r.quotes++
			r.italic++
		} else {
			r.quotes--
			r.italic--
		}
		r.indent()
		r.applyFont()

	case *ast.Emphasis:
		delta := 1
		if !entering {
			delta = -1
		}
		if node.Level >= 2 {
			r.bold += delta
		} else {
			r.italic += delta
		}
		r.applyFont()

	case *east.Strikethrough:
		// Core fonts have no strike style; the text is kept as is.

	case *ast.CodeSpan:
		if entering {
			r.code++
		} else {
			r.code--
		}
		r.applyFont()

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		if entering {
			r.codeBlock(n)
		}
		return ast.WalkSkipChildren, nil

	case *ast.ThematicBreak:
		if entering {
			w, _ := r.pdf.GetPageSize()
			_, _, right, _ := r.pdf.GetMargins()
			y := r.pdf.GetY() + 2
			r.pdf.SetDrawColor(180, 180, 180)
			r.pdf.Line(r.left, y, w-right, y)
			r.pdf.Ln(5)
		}

	case *ast.Text:
		if entering {
			r.write(string(node.Segment.Value(r.src)))
			switch {
			case node.HardLineBreak():
				r.pdf.Ln(lineHeight)
			case node.SoftLineBreak():
				r.write(" ")
			}
		}

	case *ast.String:
		if entering {
			r.write(string(node.Value))
		}

	case *ast.AutoLink:
		if entering {
			r.write(string(node.URL(r.src)))
		}
		return ast.WalkSkipChildren, nil

	case *ast.HTMLBlock, *ast.RawHTML:
		return ast.WalkSkipChildren, nil
	}

	return ast.WalkContinue, nil
}

func (r *renderer) write(s string) {
	if s == "" {
		return
	}
	r.pdf.Write(lineHeight, r.tr(s))
}

// indent moves the left margin to the current list and quote depth.
func (r *renderer) indent() {
	depth := len(r.lists) + r.quotes
	if depth > 0 && len(r.lists) > 0 {
		depth--
	}
	margin := r.left + float64(depth)*6
	r.pdf.SetLeftMargin(margin)
	r.pdf.SetX(margin)
}

func (r *renderer) marker() string {
	top := &r.lists[len(r.lists)-1]
	if !top.ordered {
		return r.tr("• ")
	}
	m := fmt.Sprintf("%d. ", top.next)
	top.next++
	return m
}

func (r *renderer) codeBlock(n ast.Node) {
	r.pdf.SetFont("Courier", "", bodySize-1.5)
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := strings.TrimRight(string(seg.Value(r.src)), "\r\n")
		r.pdf.MultiCell(0, lineHeight-1, r.tr(line), "", "L", false)
	}
	r.pdf.Ln(2)
	r.applyFont()
}

func (r *renderer) applyFont() {
	family := "Helvetica"
	if r.code > 0 {
		family = "Courier"
	}
	style := ""
	if r.bold > 0 {
		style += "B"
	}
	if r.italic > 0 {
		style += "I"
	}
	r.pdf.SetFont(family, style, r.size)
}
