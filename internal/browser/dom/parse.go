// internal/browser/dom/parse.go
package dom

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/beevik/etree"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/htmlview/internal/browser/style"
)

// -- HTML --

// ParseHTML reads an HTML document. Comments, doctypes and processing
// instructions are dropped; the html element becomes the root.
func ParseHTML(r io.Reader, opts ...Option) (*Document, error) {
	top, err := htmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	d := NewDocument(opts...)
	for c := top.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			d.SetRoot(d.convertHTML(c))
			break
		}
	}
	if base := htmlquery.FindOne(top, "//head/base[@href]"); base != nil {
		d.setBase(htmlquery.SelectAttr(base, "href"))
	}
	d.logger.Debug("Parsed HTML document.", zap.Int("nodes", d.Len()))
	return d, nil
}

func (d *Document) convertHTML(n *html.Node) NodeID {
	attrs := make([]Attribute, 0, len(n.Attr))
	for _, a := range n.Attr {
		if a.Namespace == "" {
			attrs = append(attrs, Attribute{Name: strings.ToLower(a.Key), Value: a.Val})
		}
	}
	id := d.CreateElement(n.Data, attrs...)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			d.AppendChild(id, d.convertHTML(c))
		case html.TextNode:
			d.AppendChild(id, d.CreateText(c.Data))
		}
	}
	return id
}

// -- XHTML --

// ParseXHTML reads a well formed XHTML (or plain XML) document. Namespace
// prefixes are dropped from element and attribute names.
func ParseXHTML(r io.Reader, opts ...Option) (*Document, error) {
	x := etree.NewDocument()
	x.ReadSettings.Entity = xml.HTMLEntity
	if _, err := x.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("failed to parse XHTML: %w", err)
	}
	root := x.Root()
	if root == nil {
		return nil, fmt.Errorf("failed to parse XHTML: no root element")
	}
	d := NewDocument(opts...)
	d.SetRoot(d.convertXML(root))
	if base := root.FindElement("./head/base[@href]"); base != nil {
		d.setBase(base.SelectAttrValue("href", ""))
	}
	d.logger.Debug("Parsed XHTML document.", zap.Int("nodes", d.Len()))
	return d, nil
}

func (d *Document) convertXML(e *etree.Element) NodeID {
	attrs := make([]Attribute, 0, len(e.Attr))
	for _, a := range e.Attr {
		if a.Space == "xmlns" || (a.Space == "" && a.Key == "xmlns") {
			continue
		}
		attrs = append(attrs, Attribute{Name: strings.ToLower(a.Key), Value: a.Value})
	}
	id := d.CreateElement(e.Tag, attrs...)
	for _, tok := range e.Child {
		switch c := tok.(type) {
		case *etree.Element:
			d.AppendChild(id, d.convertXML(c))
		case *etree.CharData:
			d.AppendChild(id, d.CreateText(c.Data))
		}
	}
	return id
}

func (d *Document) setBase(href string) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		d.logger.Warn("Ignoring malformed base URL.", zap.String("href", href), zap.Error(err))
		return
	}
	if d.base != nil {
		ref = d.base.ResolveReference(ref)
	}
	d.base = ref
}

// -- Style sources --

// StyleSource is a style sheet referenced by the document: either the body
// of a <style> element or the target of a <link rel=stylesheet>.
type StyleSource struct {
	// CSS holds the sheet text of a style element.
	CSS string
	// Href is the resolved URL of a linked sheet; nil for style elements.
	Href *url.URL
	// Nesting orders the sheet among the others; pass it to
	// style.StyleSheet.Read.
	Nesting []int
}

// StyleSources lists the document's style sheets in document order, leaving
// out those whose media attribute does not match mediaTypes.
func (d *Document) StyleSources(mediaTypes []string) []StyleSource {
	var out []StyleSource
	d.Walk(d.root, func(id NodeID) bool {
		if d.Kind(id) != ElementNode {
			return false
		}
		media, _ := d.Attribute(id, "media")
		switch d.Name(id) {
		case "style":
			if style.MatchesMediaType(media, mediaTypes) {
				out = append(out, StyleSource{CSS: d.TextContent(id), Nesting: []int{int(id)}})
			}
			return false
		case "link":
			if !d.isStyleSheetLink(id) || !style.MatchesMediaType(media, mediaTypes) {
				return false
			}
			href, _ := d.Attribute(id, "href")
			u, err := d.Resolve(href)
			if err != nil {
				d.logger.Warn("Ignoring style sheet link.", zap.String("href", href), zap.Error(err))
				return false
			}
			out = append(out, StyleSource{Href: u, Nesting: []int{int(id)}})
			return false
		}
		return true
	})
	return out
}

func (d *Document) isStyleSheetLink(id NodeID) bool {
	href, ok := d.Attribute(id, "href")
	if !ok || strings.TrimSpace(href) == "" {
		return false
	}
	rel, _ := d.Attribute(id, "rel")
	fields := strings.Fields(strings.ToLower(rel))
	for _, f := range fields {
		if f == "alternate" {
			return false
		}
	}
	for _, f := range fields {
		if f == "stylesheet" {
			return true
		}
	}
	t, _ := d.Attribute(id, "type")
	return strings.EqualFold(strings.TrimSpace(t), "text/css")
}

// Resolve resolves a reference against the document base URL.
func (d *Document) Resolve(ref string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", ref, err)
	}
	if d.base != nil {
		u = d.base.ResolveReference(u)
	}
	return u, nil
}
