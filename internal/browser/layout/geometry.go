// internal/browser/layout/geometry.go
package layout

import (
	"fmt"
	"strconv"

	"github.com/xkilldash9x/htmlview/internal/browser/dom"
	"github.com/xkilldash9x/htmlview/internal/browser/style"
)

// -- Geometry Primitives --

// Rect is an axis aligned rectangle in device pixels.
type Rect struct {
	X, Y, Width, Height int
}

// ExpandedBy returns a new rectangle expanded by the edge sizes.
func (r Rect) ExpandedBy(e Edges) Rect {
	return Rect{
		X:      r.X - e.Left,
		Y:      r.Y - e.Top,
		Width:  r.Width + e.Left + e.Right,
		Height: r.Height + e.Top + e.Bottom,
	}
}

// ShrunkBy is the inverse of ExpandedBy. Sizes do not go below zero.
func (r Rect) ShrunkBy(e Edges) Rect {
	return Rect{
		X:      r.X + e.Left,
		Y:      r.Y + e.Top,
		Width:  max(0, r.Width-e.Left-e.Right),
		Height: max(0, r.Height-e.Top-e.Bottom),
	}
}

// Union returns the smallest rectangle containing r and o. An empty r is
// ignored.
func (r Rect) Union(o Rect) Rect {
	if r.Width == 0 && r.Height == 0 {
		return o
	}
	x0, y0 := min(r.X, o.X), min(r.Y, o.Y)
	x1, y1 := max(r.X+r.Width, o.X+o.Width), max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Edges holds the sizes of the four sides of a margin, border or padding.
type Edges struct {
	Top, Right, Bottom, Left int
}

// Dimensions describes a box by its content rectangle and the edges around
// it.
type Dimensions struct {
	// Content area in document coordinates.
	Content Rect

	Padding Edges
	Border  Edges
	Margin  Edges
}

// MarginBox returns the rectangle enclosing the margin area.
func (d Dimensions) MarginBox() Rect {
	return d.BorderBox().ExpandedBy(d.Margin)
}

// BorderBox returns the rectangle enclosing the border area.
func (d Dimensions) BorderBox() Rect {
	return d.PaddingBox().ExpandedBy(d.Border)
}

// PaddingBox returns the rectangle enclosing the padding area.
func (d Dimensions) PaddingBox() Rect {
	return d.Content.ExpandedBy(d.Padding)
}

// -- Geometry Records --

// TextLine is one visual line of text in document coordinates. The rectangle
// is that of the glyphs: sub and superscripts are shorter and shifted off
// the line. Empty lines are not reported.
type TextLine struct {
	Rect
	Text string
}

// Geometry is the laid out position of one box.
type Geometry struct {
	Box  BoxID
	Node dom.NodeID
	Kind BoxKind
	Dimensions
	// Bounds is the measured rectangle, covering the margin box and any
	// content sticking out of it.
	Bounds Rect
	// Lines is set for text boxes.
	Lines []TextLine
	// Marker is the list marker of list items, including the trailing
	// space.
	Marker string
}

// Geometry returns the records of all laid out boxes in paint order. Boxes
// that were not laid out (or the whole tree before Layout) yield nothing.
func (e *Engine) Geometry() []Geometry {
	if e.tree == nil || e.tree.Len() == 0 {
		return nil
	}
	root := e.tree.Box(e.tree.Root())
	if !root.laidOut {
		return nil
	}
	var out []Geometry
	e.collect(e.tree.Root(), root.X, root.Y, &out)
	return out
}

func (e *Engine) collect(id BoxID, x, y int, out *[]Geometry) {
	*out = append(*out, e.geometryOf(id, x, y))
	for _, child := range e.tree.Box(id).display {
		c := e.tree.Box(child)
		e.collect(child, x+c.X, y+c.Y, out)
	}
}

// geometryOf builds the record of box id whose measured rectangle starts at
// x, y.
func (e *Engine) geometryOf(id BoxID, x, y int) Geometry {
	b := e.tree.Box(id)
	s := e.style(id)
	g := Geometry{
		Box:    id,
		Node:   b.Node,
		Kind:   b.Kind,
		Bounds: Rect{X: x, Y: y, Width: b.Width, Height: b.Height},
	}

	if b.Kind == KindText {
		g.Content = g.Bounds
		fnt, shift := e.lineFont(s)
		fh := e.widths.Height(fnt)
		for _, l := range b.Lines {
			if l.Length == 0 {
				continue
			}
			g.Lines = append(g.Lines, TextLine{
				Rect: Rect{X: x + l.X, Y: y + l.Y + shift, Width: l.Width, Height: fh},
				Text: string(b.runes[l.Start : l.Start+l.Length]),
			})
		}
		return g
	}

	ed := e.resolveEdges(s, b.ContainingWidth)
	g.Margin = Edges{Top: ed.marginTop, Right: b.MarginRight, Bottom: ed.marginBottom, Left: b.MarginLeft}
	g.Border = Edges{Top: ed.borderTop, Right: ed.borderRight, Bottom: ed.borderBottom, Left: ed.borderLeft}
	g.Padding = Edges{Top: ed.paddingTop, Right: ed.paddingRight, Bottom: ed.paddingBottom, Left: ed.paddingLeft}
	margin := Rect{X: x + b.BoxX, Y: y + b.BoxY, Width: b.BoxWidth, Height: b.BoxHeight}
	g.Content = margin.ShrunkBy(g.Margin).ShrunkBy(g.Border).ShrunkBy(g.Padding)

	if s.Enum(style.Display) == style.ListItem {
		g.Marker = e.marker(id, s)
	}
	return g
}

// marker returns the list marker of the list item box id.
func (e *Engine) marker(id BoxID, s *style.Style) string {
	switch s.Enum(style.ListStyleType) {
	case style.None:
		return ""
	case style.Disc:
		return "• "
	case style.Circle:
		return "◦ "
	case style.Square:
		return "■ "
	case style.Decimal:
		return strconv.Itoa(e.ordinal(id)) + ". "
	}
	return "* "
}

// ordinal is the number of a list item among the list items of its parent
// box, honouring the start attribute of an enclosing list element.
func (e *Engine) ordinal(id BoxID) int {
	b := e.tree.Box(id)
	n := 1
	if b.Parent != NoBox {
		p := e.tree.Box(b.Parent)
		n = e.doc.AttributeInt(p.Node, "start", 1)
		for _, sib := range p.Children {
			if sib == id {
				break
			}
			if e.tree.Box(sib).Kind != KindText && e.style(sib).Enum(style.Display) == style.ListItem {
				n++
			}
		}
	}
	return n
}

// ElementGeometry returns the geometry of the first element selected by the
// XPath selector. Elements laid out as part of a line of text get a record
// spanning their lines.
func (e *Engine) ElementGeometry(selector string) (*Geometry, error) {
	if e.doc == nil {
		return nil, fmt.Errorf("no document has been built")
	}
	node, err := e.doc.Query(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid XPath selector '%s': %w", selector, err)
	}
	if node == dom.NoNode {
		return nil, fmt.Errorf("element not found matching selector '%s'", selector)
	}
	if s := e.doc.ComputedStyle(node); s != nil && s.Enum(style.Visibility) == style.Hidden {
		return nil, fmt.Errorf("element '%s' is hidden", selector)
	}

	var inline *Geometry
	for _, g := range e.Geometry() {
		if g.Kind != KindText && g.Node == node {
			return &g, nil
		}
		if g.Kind == KindText && e.contains(node, g.Node) {
			if inline == nil {
				inline = &Geometry{Box: g.Box, Node: node, Kind: KindText}
			}
			for _, l := range g.Lines {
				inline.Content = inline.Content.Union(l.Rect)
			}
			inline.Lines = append(inline.Lines, g.Lines...)
		}
	}
	if inline != nil {
		inline.Bounds = inline.Content
		return inline, nil
	}
	return nil, fmt.Errorf("element '%s' found in DOM but not rendered (e.g., display: none)", selector)
}

// contains reports whether n is ancestor or lies below it.
func (e *Engine) contains(ancestor, n dom.NodeID) bool {
	for ; n != dom.NoNode; n = e.doc.Parent(n) {
		if n == ancestor {
			return true
		}
	}
	return false
}
