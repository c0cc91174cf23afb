// internal/browser/style/stylesheet.go
package style

import (
	"net/url"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/htmlview/internal/browser/parser"
)

// DefaultMediaTypes are the media types a sheet is rendered for unless
// configured otherwise.
var DefaultMediaTypes = []string{"all", "screen", "mobile"}

// Element is the view of a document element the cascade needs.
type Element interface {
	// Name returns the lower case element name.
	Name() string
	// Attribute returns the value of the named attribute.
	Attribute(name string) (string, bool)
	// IsLink reports whether the element matches the :link pseudo-class.
	IsLink() bool
	// ChildElements returns the element children in document order.
	ChildElements() []Element
	// PresentationalHints adds styles derived from HTML attributes. They
	// rank above the user-agent sheet and below every author rule.
	PresentationalHints(s *Style)
	// SetComputedStyle attaches the resolved style and reports whether the
	// cascade should descend into the children.
	SetComputedStyle(s *Style) bool
}

// Dependency is a style sheet referenced through @import.
type Dependency struct {
	URL *url.URL
	// Nesting is the nesting path of the importing sheet followed by the
	// position of the @import statement; rules read from the dependency
	// must be read with this path.
	Nesting []int
}

type attributeOp uint8

const (
	attributeExists attributeOp = iota + 1
	attributeEquals
	attributeIncludes
	attributeDashMatch
)

var attributeOpText = map[attributeOp]string{
	attributeEquals:    "=",
	attributeIncludes:  "~=",
	attributeDashMatch: "|=",
}

// attributeBranch indexes the sub-sheets of one (operator, name) pair by
// attribute value.
type attributeBranch struct {
	op     attributeOp
	name   string
	values map[string]*StyleSheet
}

// StyleSheet is a node of the selector prefix tree. The root node holds the
// rules without any simple selector (universal rules); descending through
// the branch maps consumes one simple selector or combinator each.
type StyleSheet struct {
	elementNames  map[string]*StyleSheet
	pseudoClasses map[string]*StyleSheet
	attributes    []*attributeBranch
	child         *StyleSheet
	descendants   *StyleSheet
	properties    []*Style

	// Only used on the root.
	logger            *zap.Logger
	specificityOffset int
}

// Option configures a StyleSheet.
type Option func(*StyleSheet)

// WithLogger routes parse diagnostics to l.
func WithLogger(l *zap.Logger) Option {
	return func(ss *StyleSheet) {
		if l != nil {
			ss.logger = l
		}
	}
}

// NewStyleSheet returns an empty sheet.
func NewStyleSheet(opts ...Option) *StyleSheet {
	ss := &StyleSheet{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(ss)
	}
	return ss
}

// MatchesMediaType reports whether the comma separated media list matches
// one of types. An empty list and "all" always match.
func MatchesMediaType(list string, types []string) bool {
	list = strings.ToLower(strings.TrimSpace(list))
	if list == "" {
		return true
	}
	for _, m := range strings.Split(list, ",") {
		m = strings.TrimSpace(m)
		if m == "all" {
			return true
		}
		for _, t := range types {
			if strings.EqualFold(m, t) {
				return true
			}
		}
	}
	return false
}

// -- Reading --

// Read parses css into the sheet. base resolves @import targets; nesting is
// the nesting path of this sheet (nil for a top level sheet, or the path
// reported by the Dependency it was loaded for). Imports matching
// mediaTypes are returned for the caller to fetch and read in turn.
func (ss *StyleSheet) Read(css string, base *url.URL, nesting []int, mediaTypes []string) []Dependency {
	source := ""
	if base != nil {
		source = base.String()
	}
	t := parser.NewTokenizer(css, parser.WithLogger(ss.logger), parser.WithSource(source))

	var deps []Dependency
	position := 0
	inMedia := false
	for t.Type != parser.EOF {
		switch {
		case t.Type == parser.AtKeyword && strings.EqualFold(t.StringValue, "media"):
			t.NextToken(false)
			inMedia = false
			for t.Type != '{' && t.Type != parser.EOF {
				if t.Type != ',' {
					inMedia = inMedia || MatchesMediaType(t.StringValue, mediaTypes)
				}
				t.NextToken(false)
			}
			if !inMedia {
				t.SkipBlock()
			} else {
				t.NextToken(false)
			}

		case t.Type == parser.AtKeyword && strings.EqualFold(t.StringValue, "import"):
			t.NextToken(false)
			target := t.StringValue
			t.NextToken(false)
			var media []string
			for t.Type != ';' && t.Type != parser.EOF {
				if t.Type == parser.Ident {
					media = append(media, t.StringValue)
				}
				t.NextToken(false)
			}
			if MatchesMediaType(strings.Join(media, ","), mediaTypes) {
				if u, err := resolve(base, target); err != nil {
					t.Debug("invalid import url")
				} else {
					path := make([]int, len(nesting)+1)
					copy(path, nesting)
					path[len(nesting)] = position
					deps = append(deps, Dependency{URL: u, Nesting: path})
				}
			}
			t.NextToken(false)
			position++

		case t.Type == parser.AtKeyword:
			t.Debug("unsupported @" + t.StringValue)
			t.NextToken(false)
			t.SkipStatement()

		case t.Type == '}':
			if !inMedia {
				t.Debug("unexpected }")
			}
			inMedia = false
			t.NextToken(false)

		default:
			ss.readRule(t, nesting, position)
			position++
		}
	}
	return deps
}

func resolve(base *url.URL, ref string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return nil, err
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	return u, nil
}

type selectorTarget struct {
	node        *StyleSheet
	specificity int
}

// readRule reads a selector group and its declaration block.
func (ss *StyleSheet) readRule(t *parser.Tokenizer, nesting []int, position int) {
	var targets []selectorTarget
	if node, spec, ok := ss.parseSelector(t); ok {
		targets = append(targets, selectorTarget{node, spec})
	}
	for t.Type == ',' {
		t.NextToken(false)
		if node, spec, ok := ss.parseSelector(t); ok {
			targets = append(targets, selectorTarget{node, spec})
		}
	}

	normal, important := &Style{}, &Style{}
	if t.Type == '{' {
		t.NextToken(false)
		normal.read(t, important)
		t.Expect('}')
	} else {
		t.Debug("{ expected")
	}

	for _, target := range targets {
		for _, block := range []struct {
			decl  *Style
			extra int
		}{{normal, 0}, {important, SpecificityImportant}} {
			if block.decl.Empty() {
				continue
			}
			s := block.decl.Clone()
			s.Specificity = target.specificity + block.extra + ss.specificityOffset
			s.Nesting = nesting
			s.Position = position
			target.node.properties = append(target.node.properties, s)
		}
	}
	t.NextToken(false)
}

// parseSelector descends the prefix tree along one selector and returns the
// node the declarations attach to together with the selector specificity.
// An unsupported selector yields ok == false and leaves the tokenizer at
// the next ',', '{' or EOF.
func (ss *StyleSheet) parseSelector(t *parser.Tokenizer) (node *StyleSheet, specificity int, ok bool) {
	node = ss
	failed := false
	empty := true

loop:
	for ; ; empty = false {
		switch t.Type {
		case parser.Ident:
			node = descend(&node.elementNames, strings.ToLower(t.StringValue))
			specificity += SpecificityElement
			t.NextToken(true)

		case '*':
			t.NextToken(true)

		case '[':
			t.NextToken(false)
			name := strings.ToLower(t.StringValue)
			t.NextToken(false)
			op := attributeExists
			value := ""
			if t.Type != ']' {
				switch t.Type {
				case parser.Includes:
					op = attributeIncludes
				case '=':
					op = attributeEquals
				case parser.DashMatch:
					op = attributeDashMatch
				default:
					failed = true
					break loop
				}
				t.NextToken(false)
				if t.Type != parser.String && t.Type != parser.Ident {
					failed = true
					break loop
				}
				value = t.StringValue
				t.NextToken(false)
				if !t.Expect(']') {
					failed = true
					break loop
				}
			}
			node = node.attributeNode(op, name, value)
			specificity += SpecificityClass
			t.NextToken(true)

		case '.':
			t.NextToken(false)
			if t.Type != parser.Ident {
				failed = true
				break loop
			}
			node = node.attributeNode(attributeIncludes, "class", t.StringValue)
			specificity += SpecificityClass
			t.NextToken(true)

		case parser.Hash:
			node = node.attributeNode(attributeEquals, "id", t.StringValue)
			specificity += SpecificityID
			t.NextToken(true)

		case ':':
			t.NextToken(false)
			if t.Type != parser.Ident {
				failed = true
				break loop
			}
			node = descend(&node.pseudoClasses, strings.ToLower(t.StringValue))
			specificity += SpecificityClass
			t.NextToken(true)

		case parser.Whitespace:
			t.NextToken(false)
			switch t.Type {
			case '{', ',', parser.EOF:
				break loop
			case '>':
				node = node.childSheet()
				t.NextToken(false)
			default:
				if node.descendants == nil {
					node.descendants = &StyleSheet{}
				}
				node = node.descendants
			}

		case '>':
			node = node.childSheet()
			t.NextToken(false)

		default:
			break loop
		}
	}

	if failed || empty || (t.Type != ',' && t.Type != '{') {
		t.Debug("unrecognized selector")
		for t.Type != ',' && t.Type != '{' && t.Type != parser.EOF {
			t.NextToken(false)
		}
		return nil, 0, false
	}
	return node, specificity, true
}

func (ss *StyleSheet) childSheet() *StyleSheet {
	if ss.child == nil {
		ss.child = &StyleSheet{}
	}
	return ss.child
}

func (ss *StyleSheet) attributeNode(op attributeOp, name, value string) *StyleSheet {
	for _, b := range ss.attributes {
		if b.op == op && b.name == name {
			return descend(&b.values, value)
		}
	}
	b := &attributeBranch{op: op, name: name}
	ss.attributes = append(ss.attributes, b)
	return descend(&b.values, value)
}

func descend(m *map[string]*StyleSheet, key string) *StyleSheet {
	if *m == nil {
		*m = make(map[string]*StyleSheet)
	}
	s, ok := (*m)[key]
	if !ok {
		s = &StyleSheet{}
		(*m)[key] = s
	}
	return s
}

// -- Matching --

// collectStyles matches e against this node. Declaration blocks are
// insertion sorted into queue by ascending specificity; sub-sheets that
// apply to the children (child combinator) or to all descendants
// (descendant combinator) are appended to children and descendants.
func (ss *StyleSheet) collectStyles(e Element, queue *[]*Style, children, descendants *[]*StyleSheet) {
	for _, p := range ss.properties {
		index := len(*queue)
		for index > 0 {
			s := (*queue)[index-1]
			if s == p {
				index = -1
				break
			}
			if s.CompareSpecificity(p) < 0 {
				break
			}
			index--
		}
		if index == -1 {
			continue
		}
		*queue = append(*queue, nil)
		copy((*queue)[index+1:], (*queue)[index:])
		(*queue)[index] = p
	}

	for _, b := range ss.attributes {
		value, ok := e.Attribute(b.name)
		if !ok {
			continue
		}
		switch b.op {
		case attributeExists:
			collectFrom(e, b.values, "", queue, children, descendants)
		case attributeEquals:
			collectFrom(e, b.values, value, queue, children, descendants)
		case attributeIncludes:
			for _, v := range strings.Fields(value) {
				collectFrom(e, b.values, v, queue, children, descendants)
			}
		case attributeDashMatch:
			for _, v := range strings.Split(value, ",") {
				v = strings.TrimSpace(v)
				collectFrom(e, b.values, v, queue, children, descendants)
				if i := strings.IndexByte(v, '-'); i > 0 {
					collectFrom(e, b.values, v[:i], queue, children, descendants)
				}
			}
		}
	}

	if ss.elementNames != nil {
		collectFrom(e, ss.elementNames, e.Name(), queue, children, descendants)
	}
	if ss.child != nil {
		*children = append(*children, ss.child)
	}
	if ss.pseudoClasses != nil && e.IsLink() {
		collectFrom(e, ss.pseudoClasses, "link", queue, children, descendants)
	}
	if ss.descendants != nil {
		*descendants = append(*descendants, ss.descendants)
	}
}

func collectFrom(e Element, m map[string]*StyleSheet, key string, queue *[]*Style, children, descendants *[]*StyleSheet) {
	if s, ok := m[key]; ok {
		s.collectStyles(e, queue, children, descendants)
	}
}

// Apply computes the style of root and its descendants from this sheet.
func (ss *StyleSheet) Apply(root Element) {
	Cascade(root, ss)
}

// Cascade computes the style of root and its descendants from the given
// sheets, which all apply at any depth.
func Cascade(root Element, sheets ...*StyleSheet) {
	if root == nil {
		return
	}
	var logger *zap.Logger
	for _, s := range sheets {
		if s != nil && s.logger != nil {
			logger = s.logger
			break
		}
	}
	anywhere := make([]*StyleSheet, 0, len(sheets))
	for _, s := range sheets {
		if s != nil {
			anywhere = append(anywhere, s)
		}
	}
	apply(root, nil, nil, anywhere, logger)
}

func apply(e Element, parent *Style, here, anywhere []*StyleSheet, logger *zap.Logger) {
	var queue []*Style
	var children, descendants []*StyleSheet

	for _, s := range here {
		s.collectStyles(e, &queue, &children, &descendants)
	}
	for _, s := range anywhere {
		descendants = append(descendants, s)
		s.collectStyles(e, &queue, &children, &descendants)
	}

	style := New()
	hinted := false
	for _, decl := range queue {
		if !hinted && decl.Specificity >= 0 {
			e.PresentationalHints(style)
			hinted = true
		}
		style.Merge(decl)
	}
	if !hinted {
		e.PresentationalHints(style)
	}

	if attr, ok := e.Attribute("style"); ok && attr != "" {
		inline := New()
		if logger != nil {
			inline.ReadDeclarations(attr, parser.WithLogger(logger), parser.WithSource("style attribute of <"+e.Name()+">"))
		} else {
			inline.ReadDeclarations(attr)
		}
		style.Merge(inline)
	}

	style.Inherit(parent)

	if e.SetComputedStyle(style) {
		for _, c := range e.ChildElements() {
			apply(c, style, children, descendants, logger)
		}
	}
}

// -- Debugging --

// String dumps the selector tree with the declaration blocks at each node.
func (ss *StyleSheet) String() string {
	var sb strings.Builder
	ss.write("", &sb)
	return sb.String()
}

func (ss *StyleSheet) write(current string, sb *strings.Builder) {
	if len(ss.properties) > 0 {
		if current == "" {
			sb.WriteString("*")
		} else {
			sb.WriteString(current)
		}
		sb.WriteString(" {\n")
		for _, p := range ss.properties {
			p.write(sb, "  ")
		}
		sb.WriteString("}\n")
	}

	for _, k := range sortedKeys(ss.elementNames) {
		ss.elementNames[k].write(current+k, sb)
	}
	for _, k := range sortedKeys(ss.pseudoClasses) {
		ss.pseudoClasses[k].write(current+":"+k, sb)
	}
	for _, b := range ss.attributes {
		prefix := current + "[" + b.name
		for _, k := range sortedKeys(b.values) {
			if b.op == attributeExists {
				b.values[k].write(prefix+"]", sb)
			} else {
				b.values[k].write(prefix+attributeOpText[b.op]+`"`+k+`"]`, sb)
			}
		}
	}
	if ss.descendants != nil {
		ss.descendants.write(current+" ", sb)
	}
	if ss.child != nil {
		ss.child.write(current+" > ", sb)
	}
}

func sortedKeys(m map[string]*StyleSheet) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
