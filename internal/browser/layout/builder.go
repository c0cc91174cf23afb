// internal/browser/layout/builder.go
package layout

import (
	"slices"

	"github.com/xkilldash9x/htmlview/internal/browser/dom"
	"github.com/xkilldash9x/htmlview/internal/browser/style"
)

// -- Box Tree Construction --

// builder turns the element tree into boxes. Inline elements do not get
// boxes of their own: their text is merged into text boxes of the enclosing
// block, split at element boundaries so that every text box has one style.
type builder struct {
	e    *Engine
	doc  *dom.Document
	tree *Tree

	// preserveLeadingSpace reports whether a space at the start of the next
	// text run is significant, i.e. the preceding content did not end in
	// whitespace.
	preserveLeadingSpace bool
}

func newBuilder(e *Engine) *builder {
	return &builder{e: e, doc: e.doc, tree: newTree()}
}

func (b *builder) build() *Tree {
	b.tree.labels = make(map[string]BoxID)
	root := b.doc.Root()
	if root == dom.NoNode {
		return b.tree
	}
	b.tree.root = b.tree.add(Box{Kind: KindBlock, Node: root, Parent: NoBox, row: dom.NoNode})
	b.preserveLeadingSpace = true
	b.addChildren(b.tree.root, root)
	return b.tree
}

func (b *builder) style(id dom.NodeID) *style.Style {
	if s := b.doc.ComputedStyle(id); s != nil {
		return s
	}
	return style.New()
}

// addChildren adds the content of element to the block box parent.
//
// Runs of whitespace collapse to one space. Whitespace is removed at the
// start and end of blocks, before and after nested blocks, and after a
// forced line break. Inside white-space: pre all text is kept as is.
func (b *builder) addChildren(parent BoxID, element dom.NodeID) {
	s := b.style(element)
	isBlock := s.IsBlock(true)
	preserve := b.preserveLeadingSpace && !isBlock
	pre := s.Enum(style.WhiteSpace) == style.Pre
	var buf []rune

	for _, child := range b.doc.Children(element) {
		if b.doc.Kind(child) == dom.TextNode {
			if pre {
				buf = append(buf, []rune(b.doc.Text(child))...)
				continue
			}
			buf = appendCollapsed(buf, b.doc.Text(child), preserve)
			if len(buf) > 0 {
				preserve = buf[len(buf)-1] > ' '
			}
			continue
		}
		if b.doc.Name(child) == "br" {
			buf = trimTrailingSpace(buf)
			buf = append(buf, '\n')
			preserve = false
			continue
		}
		childIsBlock := b.style(child).IsBlock(true)
		if !pre && childIsBlock {
			buf = trimTrailingSpace(buf)
		}
		if len(buf) > 0 {
			b.addText(parent, element, buf)
			preserve = buf[len(buf)-1] > ' '
			buf = nil
		}
		b.preserveLeadingSpace = preserve
		b.addElement(parent, child)
		preserve = b.preserveLeadingSpace && !childIsBlock
	}

	if isBlock {
		buf = trimTrailingSpace(buf)
	}
	if len(buf) > 0 {
		b.addText(parent, element, buf)
		preserve = !isBlock && buf[len(buf)-1] > ' '
	}
	b.preserveLeadingSpace = preserve
}

// addElement adds the boxes generated by child to parent.
func (b *builder) addElement(parent BoxID, child dom.NodeID) {
	s := b.style(child)
	first := len(b.tree.Box(parent).Children)

	display := s.Enum(style.Display)
	switch {
	case display == style.None:
	case display == style.Table || display == style.InlineTable:
		b.addTable(parent, child)
	case isNative(b.doc.Name(child)):
		if b.doc.Name(child) == "img" {
			b.preserveLeadingSpace = true
		}
		b.tree.add(Box{Kind: KindNative, Node: child, Parent: parent, row: dom.NoNode})
	case s.IsBlock(false) || isFloating(s):
		id := b.tree.add(Box{Kind: KindBlock, Node: child, Parent: parent, row: dom.NoNode})
		b.addChildren(id, child)
	default:
		b.addChildren(parent, child)
	}

	b.addLabel(parent, child, first)
}

// addLabel maps the id (or name) of an element to the first box generated
// for it, falling back to the box preceding it.
func (b *builder) addLabel(parent BoxID, element dom.NodeID, first int) {
	label, ok := b.doc.Attribute(element, "id")
	if !ok {
		label, ok = b.doc.Attribute(element, "name")
	}
	if !ok || label == "" {
		return
	}
	children := b.tree.Box(parent).Children
	switch {
	case len(children) == 0:
		b.tree.labels[label] = parent
	default:
		b.tree.labels[label] = children[min(len(children)-1, first)]
	}
}

func (b *builder) addText(parent BoxID, element dom.NodeID, text []rune) {
	b.tree.add(Box{Kind: KindText, Node: element, Parent: parent, row: dom.NoNode, runes: slices.Clone(text)})
}

// addTable adds a table box. Rows become children of the table ahead of the
// cells; row groups are looked through.
func (b *builder) addTable(parent BoxID, element dom.NodeID) {
	table := b.tree.add(Box{Kind: KindTable, Node: element, Parent: parent, row: dom.NoNode})
	b.addTableContent(table, element)

	var rows, cells []BoxID
	for _, c := range b.tree.Box(table).Children {
		if b.tree.Box(c).row == dom.NoNode {
			rows = append(rows, c)
		} else {
			cells = append(cells, c)
		}
	}
	t := b.tree.Box(table)
	t.rowCount = len(rows)
	t.Children = append(rows, cells...)
}

func (b *builder) addTableContent(table BoxID, element dom.NodeID) {
	for _, child := range b.doc.Children(element) {
		if b.doc.Kind(child) != dom.ElementNode {
			continue
		}
		switch b.style(child).Enum(style.Display) {
		case style.TableCell:
			cell := b.tree.add(Box{Kind: KindBlock, Node: child, Parent: table, row: b.doc.Parent(child)})
			b.preserveLeadingSpace = true
			b.addChildren(cell, child)
		case style.TableRow:
			b.tree.add(Box{Kind: KindBlock, Node: child, Parent: table, row: dom.NoNode})
			b.addTableContent(table, child)
		default:
			b.addTableContent(table, child)
		}
	}
}

func isNative(name string) bool {
	switch name {
	case "img", "input", "textarea", "select":
		return true
	}
	return false
}

func isFloating(s *style.Style) bool {
	f := s.Enum(style.Float)
	return f == style.KeywordLeft || f == style.KeywordRight
}

// appendCollapsed appends text with every run of whitespace collapsed into a
// single space. Carriage returns are dropped. Leading whitespace is dropped
// unless preserveLeadingSpace is set.
func appendCollapsed(buf []rune, text string, preserveLeadingSpace bool) []rune {
	wasSpace := !preserveLeadingSpace
	for _, c := range text {
		switch {
		case c == '\r':
		case c <= ' ':
			if !wasSpace {
				buf = append(buf, ' ')
				wasSpace = true
			}
		default:
			buf = append(buf, c)
			wasSpace = false
		}
	}
	return buf
}

// trimTrailingSpace removes one trailing space. Line breaks are kept.
func trimTrailingSpace(buf []rune) []rune {
	if n := len(buf); n > 0 && buf[n-1] == ' ' {
		return buf[:n-1]
	}
	return buf
}
