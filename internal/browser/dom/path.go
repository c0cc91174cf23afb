// internal/browser/dom/path.go
package dom

import (
	"fmt"
	"slices"
	"strings"
)

// Path returns an XPath expression that selects id. The nearest ancestor
// (or the node itself) carrying an id attribute anchors the path; text
// nodes are addressed with text().
func (d *Document) Path(id NodeID) string {
	if !d.valid(id) {
		return ""
	}

	var path []string
	for n := id; n != NoNode; n = d.Parent(n) {
		if d.Kind(n) == TextNode {
			path = append(path, fmt.Sprintf("text()[%d]", d.siblingIndex(n)))
			continue
		}
		if v, ok := d.Attribute(n, "id"); ok && v != "" {
			path = append(path, fmt.Sprintf(`//*[@id='%s']`, v))
			break
		}
		path = append(path, fmt.Sprintf("%s[%d]", d.Name(n), d.siblingIndex(n)))
	}

	slices.Reverse(path)
	xpath := strings.Join(path, "/")
	if !strings.HasPrefix(xpath, "//*[@id=") {
		xpath = "/" + xpath
	}
	return xpath
}

// siblingIndex is the one based position of n among the preceding siblings
// of the same name (or among text siblings for text nodes).
func (d *Document) siblingIndex(n NodeID) int {
	parent := d.Parent(n)
	if parent == NoNode {
		return 1
	}
	index := 1
	for _, s := range d.Children(parent) {
		if s == n {
			break
		}
		if d.Kind(s) == d.Kind(n) && d.Name(s) == d.Name(n) {
			index++
		}
	}
	return index
}
