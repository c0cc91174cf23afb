// internal/browser/layout/layout_test.go
package layout_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/htmlview/internal/browser/dom"
	"github.com/xkilldash9x/htmlview/internal/browser/layout"
	"github.com/xkilldash9x/htmlview/internal/browser/style"
)

// -- Test Helpers --

// setupLayoutTest parses the HTML, cascades the default sheet and the given
// CSS, and lays the document out at width. Text is measured at 10px per
// character and 16px per line; the body padding is removed so that content
// starts at the origin.
func setupLayoutTest(t *testing.T, htmlString, cssString string, width int, opts ...layout.Option) (*layout.Engine, *dom.Document) {
	t.Helper()

	doc, err := dom.ParseHTML(strings.NewReader(htmlString))
	require.NoError(t, err, "Failed to parse test HTML")

	author := style.NewStyleSheet()
	author.Read("body { padding: 0 } "+cssString, nil, nil, style.DefaultMediaTypes)
	doc.Cascade(style.DefaultStyleSheet(zap.NewNop()), author)

	opts = append([]layout.Option{layout.WithMeasurer(layout.FixedMeasurer{CharWidth: 10})}, opts...)
	engine := layout.NewEngine(opts...)
	engine.Build(doc)
	engine.Layout(width)
	return engine, doc
}

// geometry returns the record of the element selected by xpath.
func geometry(t *testing.T, e *layout.Engine, xpath string) *layout.Geometry {
	t.Helper()
	g, err := e.ElementGeometry(xpath)
	require.NoError(t, err)
	return g
}

// textLines returns every laid out line of text in paint order.
func textLines(e *layout.Engine) []layout.TextLine {
	var lines []layout.TextLine
	for _, g := range e.Geometry() {
		lines = append(lines, g.Lines...)
	}
	return lines
}

// texts returns the text of every text box in tree order.
func texts(e *layout.Engine) []string {
	var out []string
	tree := e.Tree()
	for i := range tree.Len() {
		if b := tree.Box(layout.BoxID(i)); b.Kind == layout.KindText {
			out = append(out, b.Text())
		}
	}
	return out
}

// -- Box Tree --

func TestBoxTreeWhitespace(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected []string
	}{
		{"Runs collapse across inline elements", `<p>  a   <b>b</b>  c </p>`, []string{"a ", "b", " c"}},
		{"Whitespace around blocks is dropped", `<div> x <p> y </p> z </div>`, []string{"x", "y", "z"}},
		{"Line breaks become newlines", `<p>ab <br> cd</p>`, []string{"ab\ncd"}},
		{"Preformatted text is kept", "<pre>a  b\n c</pre>", []string{"a  b\n c"}},
		{"Hidden elements produce nothing", `<p>a<span style="display:none">b</span></p>`, []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := setupLayoutTest(t, tt.html, "", 200)
			assert.Equal(t, tt.expected, texts(e))
		})
	}
}

func TestBoxTreeAnchors(t *testing.T) {
	e, doc := setupLayoutTest(t, `<p id="first">a</p><a name="second"></a><p>b</p>`, "", 200)

	id, ok := e.Tree().Anchor("first")
	require.True(t, ok)
	assert.Equal(t, doc.ElementByID("first"), e.Tree().Box(id).Node)

	_, ok = e.Tree().Anchor("second")
	assert.True(t, ok, "name attributes label boxes too")

	_, ok = e.Tree().Anchor("missing")
	assert.False(t, ok)
}

func TestBoxTreeTables(t *testing.T) {
	e, _ := setupLayoutTest(t, `<table><tr><td>a</td><td>b</td></tr><tr><td>c</td></tr></table>`, "", 200)
	tree := e.Tree()

	var table *layout.Box
	for i := range tree.Len() {
		if b := tree.Box(layout.BoxID(i)); b.Kind == layout.KindTable {
			table = b
		}
	}
	require.NotNil(t, table)
	require.Len(t, table.Children, 5, "two rows and three cells")
	for i, child := range table.Children {
		name := e.Document().Name(tree.Box(child).Node)
		if i < 2 {
			assert.Equal(t, "tr", name)
		} else {
			assert.Equal(t, "td", name)
		}
	}
}

// -- Text --

func TestTextLineBreaking(t *testing.T) {
	t.Run("Breaks after the last word that fits", func(t *testing.T) {
		e, _ := setupLayoutTest(t, `<p>abc def</p>`, "p { margin: 0 }", 50)
		lines := textLines(e)
		require.Len(t, lines, 2)
		assert.Equal(t, "abc", lines[0].Text)
		assert.Equal(t, "def", lines[1].Text)
		assert.Equal(t, layout.Rect{X: 0, Y: 0, Width: 30, Height: 16}, lines[0].Rect)
		assert.Equal(t, layout.Rect{X: 0, Y: 16, Width: 30, Height: 16}, lines[1].Rect)

		assert.Equal(t, 32, geometry(t, e, "//p").Content.Height)
	})

	t.Run("Fits on one line", func(t *testing.T) {
		e, _ := setupLayoutTest(t, `<p>abc def</p>`, "p { margin: 0 }", 200)
		lines := textLines(e)
		require.Len(t, lines, 1)
		assert.Equal(t, "abc def", lines[0].Text)
		assert.Equal(t, 70, lines[0].Width)
	})

	t.Run("Overlong word gets a line of its own", func(t *testing.T) {
		e, _ := setupLayoutTest(t, `<p>ab cdefghijkl</p>`, "p { margin: 0 }", 50)
		lines := textLines(e)
		require.Len(t, lines, 2)
		assert.Equal(t, "ab", lines[0].Text)
		assert.Equal(t, "cdefghijkl", lines[1].Text)
		assert.Equal(t, 50, lines[1].Width, "clipped to the block width")
	})

	t.Run("Forced line break", func(t *testing.T) {
		e, _ := setupLayoutTest(t, `<p>ab<br>cd</p>`, "p { margin: 0 }", 200)
		lines := textLines(e)
		require.Len(t, lines, 2)
		assert.Equal(t, "ab", lines[0].Text)
		assert.Equal(t, "cd", lines[1].Text)
		assert.Equal(t, 16, lines[1].Y)
	})

	t.Run("Unbreakable run across inline elements", func(t *testing.T) {
		e, _ := setupLayoutTest(t, `<p>ab<b>cdefgh</b>ij</p>`, "p { margin: 0 }", 50)
		expected := []layout.TextLine{
			{Rect: layout.Rect{X: 0, Y: 0, Width: 20, Height: 16}, Text: "ab"},
			{Rect: layout.Rect{X: 0, Y: 16, Width: 50, Height: 16}, Text: "cdefgh"},
			{Rect: layout.Rect{X: 0, Y: 32, Width: 20, Height: 16}, Text: "ij"},
		}
		assert.Empty(t, cmp.Diff(expected, textLines(e)), "lines break at element boundaries and report no empty lines")
	})

	t.Run("Centered text", func(t *testing.T) {
		e, _ := setupLayoutTest(t, `<div style="text-align: center">ab</div>`, "", 200)
		lines := textLines(e)
		require.Len(t, lines, 1)
		assert.Equal(t, 90, lines[0].X)
	})
}

func TestSubAndSuperscript(t *testing.T) {
	e, _ := setupLayoutTest(t, `<p>ab<sub>cd</sub><sup>ef</sup></p>`, "p { margin: 0 }", 400)

	tests := []struct {
		name     string
		text     string
		expected layout.Rect
	}{
		{"Normal text", "ab", layout.Rect{X: 0, Y: 0, Width: 20, Height: 16}},
		{"Subscript is smaller and lowered", "cd", layout.Rect{X: 20, Y: 4, Width: 14, Height: 12}},
		{"Superscript is smaller and raised", "ef", layout.Rect{X: 34, Y: -4, Width: 14, Height: 12}},
	}

	lines := textLines(e)
	require.Len(t, lines, len(tests))
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.text, lines[i].Text)
			assert.Equal(t, tt.expected, lines[i].Rect)
		})
	}
}

// -- Blocks --

func TestBlockLayout(t *testing.T) {
	t.Run("Adjacent vertical margins collapse", func(t *testing.T) {
		e, _ := setupLayoutTest(t, `<p id="a">a</p><p id="b">b</p>`, "p { margin: 10px 0 }", 200)
		a := geometry(t, e, "//*[@id='a']")
		b := geometry(t, e, "//*[@id='b']")
		assert.Equal(t, 10, a.Content.Y)
		assert.Equal(t, 16, a.Content.Height)
		assert.Equal(t, 10, b.Content.Y-(a.Content.Y+a.Content.Height))
	})

	t.Run("Auto margins center a block", func(t *testing.T) {
		e, _ := setupLayoutTest(t, `<div id="d"></div>`, "#d { width: 100px; margin: 0 auto }", 200)
		d := geometry(t, e, "//*[@id='d']")
		assert.Equal(t, 50, d.Content.X)
		assert.Equal(t, 100, d.Content.Width)
		assert.Equal(t, layout.Edges{Left: 50, Right: 50}, d.Margin)
	})

	t.Run("Percentage width", func(t *testing.T) {
		e, _ := setupLayoutTest(t, `<div id="d"></div>`, "#d { width: 50% }", 200)
		assert.Equal(t, 100, geometry(t, e, "//*[@id='d']").Content.Width)
	})

	t.Run("Edges", func(t *testing.T) {
		e, _ := setupLayoutTest(t, `<div id="d">x</div>`,
			"#d { margin: 1px 2px 3px 4px; border: 5px solid black; padding: 6px }", 200)
		d := geometry(t, e, "//*[@id='d']")
		assert.Equal(t, layout.Edges{Top: 1, Right: 2, Bottom: 3, Left: 4}, d.Margin)
		assert.Equal(t, layout.Edges{Top: 5, Right: 5, Bottom: 5, Left: 5}, d.Border)
		assert.Equal(t, layout.Rect{X: 15, Y: 12, Width: 200 - 4 - 2 - 22, Height: 16}, d.Content)
		assert.Equal(t, layout.Rect{X: 0, Y: 0, Width: 200, Height: 16 + 22 + 4}, d.MarginBox())
	})

	t.Run("Fixed height", func(t *testing.T) {
		e, _ := setupLayoutTest(t, `<div id="d">x</div>`, "#d { height: 50px }", 200)
		assert.Equal(t, 50, geometry(t, e, "//*[@id='d']").Content.Height)
	})
}

func TestFloats(t *testing.T) {
	const html = `<div id="f"></div><div id="c">x</div>`
	const floatCSS = "#f { float: left; width: 50px; height: 20px } "

	t.Run("Text flows beside a left float", func(t *testing.T) {
		e, _ := setupLayoutTest(t, html, floatCSS, 200)
		f := geometry(t, e, "//*[@id='f']")
		assert.Equal(t, layout.Rect{X: 0, Y: 0, Width: 50, Height: 20}, f.Content)

		lines := textLines(e)
		require.Len(t, lines, 1)
		assert.Equal(t, 50, lines[0].X)
		assert.Equal(t, 0, lines[0].Y)
	})

	t.Run("Right float", func(t *testing.T) {
		e, _ := setupLayoutTest(t, html, "#f { float: right; width: 50px; height: 20px }", 200)
		assert.Equal(t, 150, geometry(t, e, "//*[@id='f']").Content.X)
		assert.Equal(t, 0, textLines(e)[0].X)
	})

	t.Run("Clear moves below the float", func(t *testing.T) {
		e, _ := setupLayoutTest(t, html, floatCSS+"#c { clear: both }", 200)
		c := geometry(t, e, "//*[@id='c']")
		assert.Equal(t, 20, c.Content.Y)
		lines := textLines(e)
		require.Len(t, lines, 1)
		assert.Equal(t, 0, lines[0].X)
		assert.Equal(t, 20, lines[0].Y)
	})
}

func TestPositioning(t *testing.T) {
	const html = `<div id="c"><div id="p"></div></div>`
	const container = "#c { height: 100px } #p { position: absolute; width: 30px; height: 5px; "

	tests := []struct {
		name     string
		css      string
		expected layout.Rect
	}{
		{"Left and top", container + "left: 10px; top: 20px }", layout.Rect{X: 10, Y: 20, Width: 30, Height: 5}},
		{"Right and bottom", container + "right: 10px; bottom: 10px }", layout.Rect{X: 160, Y: 85, Width: 30, Height: 5}},
		{"Static position", container + "}", layout.Rect{X: 0, Y: 0, Width: 30, Height: 5}},
		{"Relative offset", "#p { position: relative; left: 5px; top: 7px; height: 5px }", layout.Rect{X: 5, Y: 7, Width: 200, Height: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := setupLayoutTest(t, html, tt.css, 200)
			assert.Equal(t, tt.expected, geometry(t, e, "//*[@id='p']").Content)
		})
	}
}

// -- Tables --

func TestTableLayout(t *testing.T) {
	t.Run("Fixed width distributes by maximum share", func(t *testing.T) {
		e, _ := setupLayoutTest(t,
			`<table style="width: 200px"><tr><td>aaaa</td><td>bbbbbb</td></tr></table>`,
			"td { padding: 0 }", 400)
		first := geometry(t, e, "//td[1]")
		second := geometry(t, e, "//td[2]")
		assert.Equal(t, 80, first.Content.Width)
		assert.Equal(t, 120, second.Content.Width)
		assert.Equal(t, 80, second.Content.X)
		assert.Equal(t, 200, first.Content.Width+second.Content.Width)
	})

	t.Run("Auto width shrinks to content", func(t *testing.T) {
		e, _ := setupLayoutTest(t,
			`<table><tr><td>aaaa</td><td>bbbbbb</td></tr></table>`,
			"td { padding: 0 }", 400)
		assert.Equal(t, 40, geometry(t, e, "//td[1]").Content.Width)
		assert.Equal(t, 60, geometry(t, e, "//td[2]").Content.Width)
	})

	t.Run("Cells of a row share its height", func(t *testing.T) {
		e, _ := setupLayoutTest(t,
			`<table><tr><td>a<br>b</td><td>c</td></tr></table>`,
			"td { padding: 0 }", 400)
		assert.Equal(t, 32, geometry(t, e, "//td[1]").Content.Height)
		assert.Equal(t, 32, geometry(t, e, "//td[2]").Content.Height)
		assert.Equal(t, 32, geometry(t, e, "//tr").Content.Height)
	})

	t.Run("Column spans", func(t *testing.T) {
		e, _ := setupLayoutTest(t,
			`<table><tr><td colspan="2">aaaaaa</td></tr><tr><td>a</td><td>b</td></tr></table>`,
			"td { padding: 0 }", 400)
		span := geometry(t, e, "//tr[1]/td[1]")
		a := geometry(t, e, "//tr[2]/td[1]")
		b := geometry(t, e, "//tr[2]/td[2]")
		assert.Equal(t, a.Content.Width+b.Content.Width, span.Content.Width)
		assert.Equal(t, a.Content.X+a.Content.Width, b.Content.X)
	})
}

func TestTableRowsFollowWidthChanges(t *testing.T) {
	const html = `<table><tr><td id="a">aaa bbb ccc</td><td id="b" style="width: 30px">c</td></tr></table>`
	fresh, _ := setupLayoutTest(t, html, "", 400)
	want := fresh.Geometry()

	e, _ := setupLayoutTest(t, html, "", 400)
	e.Layout(60)
	narrow := geometry(t, e, "//*[@id='b']").Content.Height
	assert.Greater(t, narrow, geometry(t, fresh, "//*[@id='b']").Content.Height, "the wrapped cell stretches its row")

	e.Layout(400)
	assert.Empty(t, cmp.Diff(want, e.Geometry()))
	assert.Equal(t, geometry(t, fresh, "//*[@id='a']").Content, geometry(t, e, "//*[@id='a']").Content)
}

func TestInlineTables(t *testing.T) {
	const table = `<table><tr><td>x</td></tr></table>`

	tests := []struct {
		name     string
		html     string
		width    int
		expected layout.Rect
	}{
		{"Placed on the current line when it fits", `<div>ab` + table + `</div>`, 400, layout.Rect{X: 20, Y: 0, Width: 12, Height: 18}},
		{"Starts a new line when it does not", `<div>abc` + table + `</div>`, 40, layout.Rect{X: 0, Y: 16, Width: 12, Height: 18}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := setupLayoutTest(t, tt.html, "", tt.width)
			assert.Equal(t, tt.expected, geometry(t, e, "//table").Content)
		})
	}
}

// -- Replaced Elements --

func TestNativeElements(t *testing.T) {
	t.Run("Image placeholder", func(t *testing.T) {
		e, _ := setupLayoutTest(t, `<p><img src="x.png"></p>`, "p { margin: 0 }", 200)
		g := geometry(t, e, "//img")
		assert.Equal(t, layout.KindNative, g.Kind)
		assert.Equal(t, 16, g.Content.Width)
		assert.Equal(t, 16, g.Content.Height)
	})

	t.Run("Intrinsic sizer", func(t *testing.T) {
		sizer := func(doc *dom.Document, id dom.NodeID) (int, int, bool) {
			return 100, 50, doc.Name(id) == "img"
		}
		e, _ := setupLayoutTest(t, `<p><img src="x.png"></p>`, "p { margin: 0 } img { width: 40px }", 200,
			layout.WithIntrinsicSizer(sizer))
		g := geometry(t, e, "//img")
		assert.Equal(t, 40, g.Content.Width, "the specified width wins")
		assert.Equal(t, 50, g.Content.Height)
	})

	t.Run("Checkbox is a square of the font height", func(t *testing.T) {
		e, _ := setupLayoutTest(t, `<p><input type="checkbox"></p>`, "p { margin: 0 }", 200)
		g := geometry(t, e, "//input")
		assert.Equal(t, 16, g.Content.Width)
		assert.Equal(t, 16, g.Content.Height)
	})
}

// -- Lists --

func TestListMarkers(t *testing.T) {
	e, _ := setupLayoutTest(t,
		`<ol start="3"><li>a</li><li>b</li></ol><ul><li>c</li><ul><li>d</li></ul></ul><ul style="list-style-type: none"><li>e</li></ul>`,
		"", 400)

	assert.Equal(t, "3. ", geometry(t, e, "//ol/li[1]").Marker)
	assert.Equal(t, "4. ", geometry(t, e, "//ol/li[2]").Marker)
	assert.Equal(t, "■ ", geometry(t, e, "//ul[1]/li").Marker)
	assert.Equal(t, "◦ ", geometry(t, e, "//ul/ul/li").Marker)
	assert.Equal(t, "", geometry(t, e, "//ul[@style]/li").Marker)
}

// -- Geometry Lookup --

func TestElementGeometry(t *testing.T) {
	e, _ := setupLayoutTest(t,
		`<p>one <b id="bold">two</b></p><div id="gone" style="display: none">x</div><div id="hidden" style="visibility: hidden">y</div>`,
		"p { margin: 0 }", 200)

	t.Run("Inline element spans its text", func(t *testing.T) {
		g := geometry(t, e, "//*[@id='bold']")
		assert.Equal(t, layout.KindText, g.Kind)
		require.Len(t, g.Lines, 1)
		assert.Equal(t, "two", g.Lines[0].Text)
		assert.Equal(t, layout.Rect{X: 40, Y: 0, Width: 30, Height: 16}, g.Content)
	})

	errorCases := []struct {
		name     string
		selector string
		message  string
	}{
		{"Invalid selector", "//p[", "invalid XPath selector"},
		{"No match", "//table", "element not found"},
		{"Not rendered", "//*[@id='gone']", "not rendered"},
		{"Hidden", "//*[@id='hidden']", "is hidden"},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.ElementGeometry(tt.selector)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}

	t.Run("Before layout", func(t *testing.T) {
		fresh := layout.NewEngine()
		_, err := fresh.ElementGeometry("//p")
		assert.Error(t, err)
		assert.Nil(t, fresh.Geometry())
	})
}

// -- Properties --

func TestIntrinsicWidths(t *testing.T) {
	documents := []string{
		`<p>aaa bb</p>`,
		`<p>a b c d e f g</p><div style="float:left">xx yy</div>`,
		`<table><tr><td>aaaa bb</td><td>c</td></tr></table>`,
		`<ul><li>one two</li><li><img src="a.png"> three</li></ul>`,
		`<pre>long preformatted line</pre>`,
	}
	for _, html := range documents {
		t.Run(html, func(t *testing.T) {
			e, _ := setupLayoutTest(t, html, "", 400)
			root := e.Tree().Root()
			minW := e.MinimumWidth(root, 400)
			maxW := e.MaximumWidth(root, 400)
			assert.LessOrEqual(t, minW, maxW)
			assert.Positive(t, minW)
		})
	}

	t.Run("Words and lines", func(t *testing.T) {
		e, _ := setupLayoutTest(t, `<p>aaa bb</p>`, "p { margin: 0 }", 400)
		root := e.Tree().Root()
		assert.Equal(t, 40, e.MinimumWidth(root, 400))
		assert.Equal(t, 60, e.MaximumWidth(root, 400))
	})
}

func TestLayoutIsIdempotent(t *testing.T) {
	const html = `<h1>Title</h1>
		<div style="float: right; width: 60px">side bar</div>
		<p>Some <i>styled</i> text that wraps over a few lines.</p>
		<table><tr><td>a</td><td>b c d</td></tr></table>
		<ol><li>one</li><li>two</li></ol>
		<div style="position: relative; left: 3px">moved</div>`

	e, doc := setupLayoutTest(t, html, "", 200)
	first := e.Geometry()
	require.NotEmpty(t, first)

	t.Run("Same width is a no-op", func(t *testing.T) {
		e.Layout(200)
		assert.Empty(t, cmp.Diff(first, e.Geometry()))
	})

	t.Run("Invalidated layout", func(t *testing.T) {
		e.Invalidate(doc.Root())
		e.Layout(200)
		assert.Empty(t, cmp.Diff(first, e.Geometry()))
	})

	t.Run("Rebuilt tree", func(t *testing.T) {
		e.Build(doc)
		e.Layout(200)
		assert.Empty(t, cmp.Diff(first, e.Geometry()))
	})

	t.Run("Width round trip", func(t *testing.T) {
		e.Layout(120)
		narrow := e.Geometry()
		assert.NotEmpty(t, cmp.Diff(first, narrow))
		e.Layout(200)
		assert.Empty(t, cmp.Diff(first, e.Geometry()))
	})
}

func TestPixelScale(t *testing.T) {
	e, _ := setupLayoutTest(t, `<div id="d">ab</div>`, "#d { width: 50px }", 400, layout.WithPixelScale(2))
	d := geometry(t, e, "//*[@id='d']")
	assert.Equal(t, 100, d.Content.Width)
	assert.Equal(t, 32, d.Content.Height, "fonts scale too")
}
