// internal/browser/dom/query.go
package dom

import (
	"fmt"

	"github.com/antchfx/xpath"
)

// -- XPath Queries --

// Query returns the first node selected by the XPath expression, or NoNode.
func (d *Document) Query(expr string) (NodeID, error) {
	ids, err := d.query(expr, 1)
	if err != nil || len(ids) == 0 {
		return NoNode, err
	}
	return ids[0], nil
}

// QueryAll returns every node selected by the XPath expression in document
// order.
func (d *Document) QueryAll(expr string) ([]NodeID, error) {
	return d.query(expr, -1)
}

func (d *Document) query(expr string, limit int) ([]NodeID, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}
	var ids []NodeID
	iter := compiled.Select(d.navigator())
	for iter.MoveNext() {
		n, ok := iter.Current().(*navigator)
		if !ok || n.cur == NoNode || n.attr >= 0 {
			continue
		}
		ids = append(ids, n.cur)
		if limit > 0 && len(ids) >= limit {
			break
		}
	}
	return ids, nil
}

func (d *Document) navigator() *navigator {
	return &navigator{doc: d, cur: NoNode, attr: -1}
}

// navigator implements xpath.NodeNavigator over the arena. A cur of NoNode
// stands for the document node above the root element.
type navigator struct {
	doc  *Document
	cur  NodeID
	attr int
}

func (n *navigator) NodeType() xpath.NodeType {
	switch {
	case n.cur == NoNode:
		return xpath.RootNode
	case n.attr >= 0:
		return xpath.AttributeNode
	case n.doc.Kind(n.cur) == TextNode:
		return xpath.TextNode
	}
	return xpath.ElementNode
}

func (n *navigator) LocalName() string {
	if n.attr >= 0 {
		return n.doc.nodes[n.cur].attrs[n.attr].Name
	}
	if n.cur == NoNode {
		return ""
	}
	return n.doc.Name(n.cur)
}

func (n *navigator) Prefix() string { return "" }

func (n *navigator) Value() string {
	switch {
	case n.cur == NoNode:
		return n.doc.TextContent(n.doc.root)
	case n.attr >= 0:
		return n.doc.nodes[n.cur].attrs[n.attr].Value
	}
	return n.doc.TextContent(n.cur)
}

func (n *navigator) Copy() xpath.NodeNavigator {
	c := *n
	return &c
}

func (n *navigator) MoveToRoot() {
	n.cur, n.attr = NoNode, -1
}

func (n *navigator) MoveToParent() bool {
	if n.attr >= 0 {
		n.attr = -1
		return true
	}
	if n.cur == NoNode {
		return false
	}
	n.cur = n.doc.Parent(n.cur)
	return true
}

func (n *navigator) MoveToNextAttribute() bool {
	if n.cur == NoNode || n.doc.Kind(n.cur) != ElementNode {
		return false
	}
	if n.attr+1 >= len(n.doc.nodes[n.cur].attrs) {
		return false
	}
	n.attr++
	return true
}

func (n *navigator) MoveToChild() bool {
	if n.attr >= 0 {
		return false
	}
	if n.cur == NoNode {
		if n.doc.root == NoNode {
			return false
		}
		n.cur = n.doc.root
		return true
	}
	kids := n.doc.Children(n.cur)
	if len(kids) == 0 {
		return false
	}
	n.cur = kids[0]
	return true
}

func (n *navigator) MoveToFirst() bool {
	sibs, i := n.siblings()
	if i <= 0 {
		return false
	}
	n.cur = sibs[0]
	return true
}

func (n *navigator) MoveToNext() bool {
	sibs, i := n.siblings()
	if i < 0 || i+1 >= len(sibs) {
		return false
	}
	n.cur = sibs[i+1]
	return true
}

func (n *navigator) MoveToPrevious() bool {
	sibs, i := n.siblings()
	if i <= 0 {
		return false
	}
	n.cur = sibs[i-1]
	return true
}

func (n *navigator) MoveTo(other xpath.NodeNavigator) bool {
	o, ok := other.(*navigator)
	if !ok || o.doc != n.doc {
		return false
	}
	*n = *o
	return true
}

// siblings returns the sibling list of the current node and its index in
// it, or -1 when the navigator is on an attribute or the document node.
func (n *navigator) siblings() ([]NodeID, int) {
	if n.attr >= 0 || n.cur == NoNode {
		return nil, -1
	}
	parent := n.doc.Parent(n.cur)
	if parent == NoNode {
		return []NodeID{n.cur}, 0
	}
	sibs := n.doc.Children(parent)
	for i, s := range sibs {
		if s == n.cur {
			return sibs, i
		}
	}
	return nil, -1
}
