// internal/browser/layout/box.go
package layout

import (
	"github.com/xkilldash9x/htmlview/internal/browser/dom"
)

// -- Core Structures: Box Tree --

// BoxID is the handle of a box in a Tree.
type BoxID int32

// NoBox is the id of a missing box.
const NoBox BoxID = -1

// BoxKind is the closed set of box variants.
type BoxKind uint8

const (
	// KindBlock is a block container: block, list item, inline block or
	// table cell. Its children flow inside it.
	KindBlock BoxKind = iota
	// KindTable is a table with row and cell children.
	KindTable
	// KindText is a run of normalised text styled by its element.
	KindText
	// KindNative is a replaced element (image or form field) with an
	// intrinsic size.
	KindNative
)

func (k BoxKind) String() string {
	switch k {
	case KindBlock:
		return "block"
	case KindTable:
		return "table"
	case KindText:
		return "text"
	case KindNative:
		return "native"
	}
	return "unknown"
}

// Line is one visual line of a text box. Start and Length index runes of the
// box text; X and Y are relative to the text box.
type Line struct {
	Start  int
	Length int
	X      int
	Y      int
	Width  int
}

// Box is a node of the box tree.
//
// X, Y, Width and Height describe the measured rectangle relative to the
// parent box's measured rectangle. The measured rectangle may be larger than
// the CSS margin box when content sticks out of it; BoxX, BoxY, BoxWidth and
// BoxHeight locate the margin box inside the measured rectangle.
type Box struct {
	Kind   BoxKind
	Node   dom.NodeID
	Parent BoxID
	// Children in document order. Tables hold their rows first, then their
	// cells.
	Children []BoxID

	X, Y, Width, Height int

	BoxX, BoxY, BoxWidth, BoxHeight int

	// MarginLeft and MarginRight are the used side margins after auto
	// margins were resolved.
	MarginLeft, MarginRight int

	// ContainingWidth is the width percentages resolved against in the last
	// layout.
	ContainingWidth int

	// Text boxes.
	runes []rune
	Lines []Line

	// Tables.
	rowCount int

	// Table cells: the row element the cell belongs to.
	row dom.NodeID

	// Native boxes.
	IntrinsicWidth, IntrinsicHeight int

	// display lists the laid out children in paint order: in-flow content
	// first, relatively and absolutely positioned boxes last.
	display []BoxID

	minWidth, maxWidth int
	widthFor           int
	widthValid         bool
	needsLayout        bool
	laidOut            bool
}

// Text returns the normalised text of a text box.
func (b *Box) Text() string { return string(b.runes) }

// Display returns the laid out children in paint order.
func (b *Box) Display() []BoxID { return b.display }

// Tree is an arena of boxes.
type Tree struct {
	boxes  []Box
	root   BoxID
	labels map[string]BoxID
}

// Anchor returns the box generated for the element with the given id or
// name attribute.
func (t *Tree) Anchor(label string) (BoxID, bool) {
	id, ok := t.labels[label]
	return id, ok
}

func newTree() *Tree {
	return &Tree{root: NoBox}
}

func (t *Tree) add(b Box) BoxID {
	b.needsLayout = true
	t.boxes = append(t.boxes, b)
	id := BoxID(len(t.boxes) - 1)
	if b.Parent != NoBox {
		p := &t.boxes[b.Parent]
		p.Children = append(p.Children, id)
	}
	return id
}

// Root returns the root box, or NoBox for an empty tree.
func (t *Tree) Root() BoxID { return t.root }

// Len returns the number of boxes.
func (t *Tree) Len() int { return len(t.boxes) }

// Box returns the box with the given id. The pointer is valid until the tree
// is rebuilt.
func (t *Tree) Box(id BoxID) *Box {
	if id < 0 || int(id) >= len(t.boxes) {
		return nil
	}
	return &t.boxes[id]
}

// Invalidate marks the intrinsic widths and the layout of id and all its
// ancestors stale.
func (t *Tree) Invalidate(id BoxID) {
	for id != NoBox {
		b := t.Box(id)
		if b == nil {
			return
		}
		b.widthValid = false
		b.needsLayout = true
		id = b.Parent
	}
}

// InvalidateAll marks every box stale, as needed after a restyle.
func (t *Tree) InvalidateAll() {
	for i := range t.boxes {
		t.boxes[i].widthValid = false
		t.boxes[i].needsLayout = true
	}
}

// nextText returns the document order sibling following child index i of
// parent if it is a text box.
func (t *Tree) nextText(parent BoxID, i int) BoxID {
	p := t.Box(parent)
	if p == nil || i+1 >= len(p.Children) {
		return NoBox
	}
	next := p.Children[i+1]
	if t.boxes[next].Kind != KindText {
		return NoBox
	}
	return next
}
