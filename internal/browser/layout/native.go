// internal/browser/layout/native.go
package layout

import (
	"strings"

	"github.com/xkilldash9x/htmlview/internal/browser/dom"
	"github.com/xkilldash9x/htmlview/internal/browser/style"
)

// -- Replaced Elements --

// placeholderImageSize is the size of an image whose bitmap is unknown, in
// CSS pixels.
const placeholderImageSize = 16

func (e *Engine) measureNative(id BoxID, outerMaxWidth int, ctx *LayoutContext) {
	b := e.tree.Box(id)
	s := e.style(id)
	b.ContainingWidth = outerMaxWidth
	b.BoxX, b.BoxY = 0, 0

	w, h := e.intrinsicSize(id, s)
	b.IntrinsicWidth, b.IntrinsicHeight = w, h
	if s.IsLengthFixedOrPercent(style.Width) {
		w = e.pxOf(s, style.Width, outerMaxWidth)
	}
	if e.isHeightFixed(id) {
		h = e.fixedInnerHeight(id)
	}

	g := e.resolveEdges(s, outerMaxWidth)
	b.MarginLeft, b.MarginRight = g.marginLeft, g.marginRight
	b.BoxWidth = w + g.left() + g.right()
	b.BoxHeight = h + g.top() + g.bottom()
	b.Width, b.Height = b.BoxWidth, b.BoxHeight
	b.display = nil

	if ctx != nil {
		ctx.Advance(b.BoxHeight)
	}
}

func (e *Engine) nativeWidths(id BoxID, containingWidth int) {
	b := e.tree.Box(id)
	s := e.style(id)
	var w int
	if s.IsLengthFixedOrPercent(style.Width) {
		w = e.pxOf(s, style.Width, containingWidth)
	} else {
		w, _ = e.intrinsicSize(id, s)
	}
	b.minWidth = w + e.horizontalBorder(s, containingWidth)
	b.maxWidth = b.minWidth
}

// intrinsicSize returns the content size of a replaced element in device
// pixels. Form fields are sized from their font; images ask the configured
// IntrinsicSizer and fall back to a placeholder.
func (e *Engine) intrinsicSize(id BoxID, s *style.Style) (int, int) {
	node := e.tree.Box(id).Node
	if e.sizer != nil {
		if w, h, ok := e.sizer(e.doc, node); ok {
			return scaled(w, e.scale), scaled(h, e.scale)
		}
	}

	fnt := e.font(s)
	fh := e.widths.Height(fnt)
	field := fh + fh/2

	switch e.doc.Name(node) {
	case "img":
		return scaled(placeholderImageSize, e.scale), scaled(placeholderImageSize, e.scale)

	case "input":
		t, _ := e.doc.Attribute(node, "type")
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "hidden":
			return 0, 0
		case "checkbox", "radio":
			return fh, fh
		case "submit", "reset", "button":
			label, ok := e.doc.Attribute(node, "value")
			if !ok {
				label = strings.ToLower(strings.TrimSpace(t))
			}
			return e.widths.Width(fnt, []rune(label)) + fh, field
		}
		// Text fields normally get their width from the size attribute.
		return 20 * e.widths.RuneWidth(fnt, 'x'), field

	case "textarea":
		rows := max(e.doc.AttributeInt(node, "rows", 2), 1)
		cols := max(e.doc.AttributeInt(node, "cols", 20), 1)
		return cols * e.widths.RuneWidth(fnt, 'x'), rows*fh + fh/2

	case "select":
		widest := 0
		for _, opt := range e.options(node) {
			widest = max(widest, e.widths.Width(fnt, []rune(strings.TrimSpace(e.doc.TextContent(opt)))))
		}
		size := max(e.doc.AttributeInt(node, "size", 1), 1)
		return widest + fh, size*fh + fh/2
	}
	return 0, 0
}

// options lists the option elements of a select, looking through
// optgroups.
func (e *Engine) options(node dom.NodeID) []dom.NodeID {
	var out []dom.NodeID
	e.doc.Walk(node, func(id dom.NodeID) bool {
		if e.doc.Kind(id) != dom.ElementNode {
			return false
		}
		if e.doc.Name(id) == "option" {
			out = append(out, id)
			return false
		}
		return true
	})
	return out
}
