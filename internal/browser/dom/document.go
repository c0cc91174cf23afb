// internal/browser/dom/document.go
package dom

import (
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/htmlview/internal/browser/style"
)

// NodeID is the handle of a node in a Document. Ids are assigned in
// creation order, which the suppliers make equal to document order.
type NodeID int32

// NoNode is the id of a missing node.
const NoNode NodeID = -1

// Kind distinguishes element and text nodes.
type Kind uint8

const (
	ElementNode Kind = iota
	TextNode
)

// Attribute is a single name/value pair. Names are lower case.
type Attribute struct {
	Name  string
	Value string
}

type node struct {
	kind     Kind
	name     string
	text     string
	attrs    []Attribute
	parent   NodeID
	children []NodeID
	style    *style.Style
}

// Document is an arena of element and text nodes. The zero value is not
// usable; create documents with NewDocument or one of the parsers.
type Document struct {
	nodes      []node
	root       NodeID
	base       *url.URL
	needsBuild bool
	logger     *zap.Logger
}

// Option configures a Document.
type Option func(*Document)

// WithLogger sets the logger used for parse and cascade diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(d *Document) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithBaseURL sets the document URL. A <base href> in the document is
// resolved against it.
func WithBaseURL(u *url.URL) Option {
	return func(d *Document) {
		d.base = u
	}
}

// NewDocument returns an empty document.
func NewDocument(opts ...Option) *Document {
	d := &Document{root: NoNode, logger: zap.NewNop(), needsBuild: true}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// -- Construction --

// CreateElement adds a detached element node.
func (d *Document) CreateElement(name string, attrs ...Attribute) NodeID {
	d.nodes = append(d.nodes, node{kind: ElementNode, name: strings.ToLower(name), attrs: attrs, parent: NoNode})
	d.needsBuild = true
	return NodeID(len(d.nodes) - 1)
}

// CreateText adds a detached text node.
func (d *Document) CreateText(text string) NodeID {
	d.nodes = append(d.nodes, node{kind: TextNode, text: text, parent: NoNode})
	d.needsBuild = true
	return NodeID(len(d.nodes) - 1)
}

// AppendChild attaches child as the last child of parent. The first node
// attached to nothing becomes the root when no root is set.
func (d *Document) AppendChild(parent, child NodeID) {
	if !d.valid(child) || !d.valid(parent) || d.nodes[parent].kind != ElementNode {
		return
	}
	d.nodes[child].parent = parent
	d.nodes[parent].children = append(d.nodes[parent].children, child)
	d.needsBuild = true
}

// SetRoot makes id the document element.
func (d *Document) SetRoot(id NodeID) {
	if d.valid(id) {
		d.root = id
		d.needsBuild = true
	}
}

// SetAttribute sets or replaces an attribute of an element.
func (d *Document) SetAttribute(id NodeID, name, value string) {
	if !d.valid(id) {
		return
	}
	name = strings.ToLower(name)
	n := &d.nodes[id]
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			n.attrs[i].Value = value
			return
		}
	}
	n.attrs = append(n.attrs, Attribute{Name: name, Value: value})
}

// -- Accessors --

func (d *Document) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(d.nodes)
}

// Len returns the number of nodes in the arena.
func (d *Document) Len() int { return len(d.nodes) }

// Root returns the document element, or NoNode for an empty document.
func (d *Document) Root() NodeID { return d.root }

// BaseURL returns the URL relative references resolve against. It may be nil.
func (d *Document) BaseURL() *url.URL { return d.base }

// Logger returns the document's logger.
func (d *Document) Logger() *zap.Logger { return d.logger }

func (d *Document) Kind(id NodeID) Kind {
	if !d.valid(id) {
		return TextNode
	}
	return d.nodes[id].kind
}

// Name returns the lower case element name, or "" for text nodes.
func (d *Document) Name(id NodeID) string {
	if !d.valid(id) {
		return ""
	}
	return d.nodes[id].name
}

// Text returns the content of a text node.
func (d *Document) Text(id NodeID) string {
	if !d.valid(id) {
		return ""
	}
	return d.nodes[id].text
}

func (d *Document) Parent(id NodeID) NodeID {
	if !d.valid(id) {
		return NoNode
	}
	return d.nodes[id].parent
}

// Children returns the child ids of id. The slice must not be modified.
func (d *Document) Children(id NodeID) []NodeID {
	if !d.valid(id) {
		return nil
	}
	return d.nodes[id].children
}

// Attributes returns the attributes of an element in source order.
func (d *Document) Attributes(id NodeID) []Attribute {
	if !d.valid(id) {
		return nil
	}
	return d.nodes[id].attrs
}

func (d *Document) Attribute(id NodeID, name string) (string, bool) {
	if !d.valid(id) {
		return "", false
	}
	for _, a := range d.nodes[id].attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttributeInt returns the integer value of an attribute, or def if the
// attribute is missing or not an integer.
func (d *Document) AttributeInt(id NodeID, name string, def int) int {
	v, ok := d.Attribute(id, name)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return i
}

// TableAttribute looks up an attribute on id and, failing that, on the
// enclosing row, row group and table elements.
func (d *Document) TableAttribute(id NodeID, name string) (string, bool) {
	for {
		if v, ok := d.Attribute(id, name); ok {
			return v, true
		}
		if d.Name(id) == "table" {
			return "", false
		}
		id = d.Parent(id)
		switch d.Name(id) {
		case "table", "tr", "thead", "tbody", "tfoot":
		default:
			return "", false
		}
	}
}

// TextContent concatenates the text nodes below id in document order.
func (d *Document) TextContent(id NodeID) string {
	if !d.valid(id) {
		return ""
	}
	if d.nodes[id].kind == TextNode {
		return d.nodes[id].text
	}
	var sb strings.Builder
	for _, c := range d.nodes[id].children {
		sb.WriteString(d.TextContent(c))
	}
	return sb.String()
}

// Walk visits id and its descendants in document order. Returning false
// from fn skips the children of the visited node.
func (d *Document) Walk(id NodeID, fn func(NodeID) bool) {
	if !d.valid(id) || !fn(id) {
		return
	}
	for _, c := range d.nodes[id].children {
		d.Walk(c, fn)
	}
}

// FindFirst returns the first element below (and including) the root with
// the given name.
func (d *Document) FindFirst(name string) NodeID {
	found := NoNode
	d.Walk(d.root, func(id NodeID) bool {
		if found != NoNode {
			return false
		}
		if d.nodes[id].kind == ElementNode && d.nodes[id].name == name {
			found = id
			return false
		}
		return true
	})
	return found
}

// ElementByID returns the first element whose id attribute equals idAttr.
func (d *Document) ElementByID(idAttr string) NodeID {
	found := NoNode
	d.Walk(d.root, func(id NodeID) bool {
		if found != NoNode {
			return false
		}
		if v, ok := d.Attribute(id, "id"); ok && v == idAttr {
			found = id
			return false
		}
		return true
	})
	return found
}

// Title returns the trimmed content of the first title element.
func (d *Document) Title() string {
	if t := d.FindFirst("title"); t != NoNode {
		return strings.TrimSpace(d.TextContent(t))
	}
	return ""
}

// -- Style --

// ComputedStyle returns the style computed for an element by the last
// cascade, or nil.
func (d *Document) ComputedStyle(id NodeID) *style.Style {
	if !d.valid(id) {
		return nil
	}
	return d.nodes[id].style
}

// NeedsBuild reports whether the structure or a display-relevant style
// changed since the flag was last cleared.
func (d *Document) NeedsBuild() bool { return d.needsBuild }

// ClearNeedsBuild is called once a box tree reflects the document.
func (d *Document) ClearNeedsBuild() { d.needsBuild = false }

// Cascade computes the style of every element from the given sheets.
func (d *Document) Cascade(sheets ...*style.StyleSheet) {
	if d.root == NoNode {
		return
	}
	style.Cascade(d.Element(d.root), sheets...)
}

// Element returns the cascade handle for id.
func (d *Document) Element(id NodeID) Element {
	return Element{doc: d, id: id}
}

// Element is a value handle on an element node. It implements
// style.Element.
type Element struct {
	doc *Document
	id  NodeID
}

var _ style.Element = Element{}

func (e Element) ID() NodeID { return e.id }

func (e Element) Name() string { return e.doc.Name(e.id) }

func (e Element) Attribute(name string) (string, bool) {
	return e.doc.Attribute(e.id, name)
}

// IsLink reports whether the element is an anchor with an href.
func (e Element) IsLink() bool {
	_, ok := e.doc.Attribute(e.id, "href")
	return ok && e.doc.Name(e.id) == "a"
}

func (e Element) ChildElements() []style.Element {
	var out []style.Element
	for _, c := range e.doc.Children(e.id) {
		if e.doc.nodes[c].kind == ElementNode {
			out = append(out, Element{doc: e.doc, id: c})
		}
	}
	return out
}

// SetComputedStyle stores s and flags the document for a rebuild when the
// display type or the block nature of the element changed.
func (e Element) SetComputedStyle(s *style.Style) bool {
	n := &e.doc.nodes[e.id]
	prev := n.style
	n.style = s
	if !e.doc.needsBuild {
		e.doc.needsBuild = prev == nil ||
			prev.Enum(style.Display) != s.Enum(style.Display) ||
			prev.IsBlock(false) != s.IsBlock(false)
	}
	return true
}

func (e Element) ComputedStyle() *style.Style { return e.doc.ComputedStyle(e.id) }
