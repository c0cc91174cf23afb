package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCascadeOrdering(t *testing.T) {
	red, green, blue := uint32(0xffff0000), uint32(0xff008000), uint32(0xff0000ff)

	tests := []struct {
		name     string
		css      string
		inline   string
		expected uint32
	}{
		{"Higher specificity wins regardless of order", "#t { color: blue } p { color: red }", "", blue},
		{"Class beats element", "p.note { color: green } p { color: red }", "", green},
		{"Later rule wins on equal specificity", "p { color: red } p { color: green }", "", green},
		{"Inline style wins over sheet rules", "#t { color: blue }", "color: red", red},
		{"Important beats higher specificity", "p { color: red !important } #t { color: blue }", "", red},
		{"Important only affects its declaration", "p { color: red !important; font-style: italic } #t { color: blue; font-style: normal }", "", red},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := map[string]string{"id": "t", "class": "note"}
			if tt.inline != "" {
				attrs["style"] = tt.inline
			}
			doc := el("p", attrs)
			Cascade(doc, sheet(t, tt.css))
			require.NotNil(t, doc.computed)
			assert.Equal(t, tt.expected, doc.computed.Color(Color))
		})
	}
}

func TestImportOrder(t *testing.T) {
	// The imported sheet is read with the nesting path reported for its
	// @import, so the importing sheet's own rules come later.
	ss := NewStyleSheet()
	deps := ss.Read(`@import "a.css"; p { color: red }`, nil, nil, DefaultMediaTypes)
	require.Len(t, deps, 1)
	ss.Read(`p { color: blue; font-style: italic }`, deps[0].URL, deps[0].Nesting, DefaultMediaTypes)

	doc := el("p", nil)
	Cascade(doc, ss)
	assert.Equal(t, uint32(0xffff0000), doc.computed.Color(Color))
	assert.Equal(t, Italic, doc.computed.Enum(FontStyle))
}

func TestUserAgentSheet(t *testing.T) {
	ua := DefaultStyleSheet(nil)

	doc := el("body", nil,
		el("p", map[string]string{"id": "para"}),
		el("ul", map[string]string{"id": "l1"},
			el("li", nil,
				el("ul", map[string]string{"id": "l2"},
					el("li", nil, el("ul", map[string]string{"id": "l3"})),
				),
			),
		),
		el("a", map[string]string{"id": "link", "href": "#"}),
		el("h1", map[string]string{"id": "head"}),
		el("script", map[string]string{"id": "js"}),
	)

	t.Run("defaults", func(t *testing.T) {
		Cascade(doc, ua)
		assert.Equal(t, Block, doc.computed.Enum(Display))
		assert.Equal(t, 6, doc.computed.Px(PaddingLeft))

		p := doc.find("para").computed
		assert.Equal(t, Block, p.Enum(Display))
		assert.Equal(t, 12, p.Px(MarginTop))

		assert.Equal(t, Square, doc.find("l1").computed.Enum(ListStyleType))
		assert.Equal(t, Circle, doc.find("l2").computed.Enum(ListStyleType))
		assert.Equal(t, Disc, doc.find("l3").computed.Enum(ListStyleType))

		link := doc.find("link").computed
		assert.Equal(t, uint32(0xff0000ff), link.Color(Color))
		assert.Equal(t, Underline, link.Enum(TextDecoration))

		h1 := doc.find("head").computed
		assert.Equal(t, 24, h1.FontPx())
		assert.Equal(t, WeightBold, h1.Raw(FontWeight))

		assert.Equal(t, None, doc.find("js").computed.Enum(Display))
	})

	t.Run("any author rule outranks the user-agent sheet", func(t *testing.T) {
		Cascade(doc, ua, sheet(t, "* { margin-top: 0 } li { display: inline }"))
		assert.Equal(t, 0, doc.find("para").computed.Px(MarginTop))
		assert.Equal(t, Block, doc.find("l2").computed.Enum(Display), "li rule does not reach ul")
	})
}

func TestPresentationalHints(t *testing.T) {
	center := func(s *Style) { s.Set(TextAlign, Center, UnitEnum) }

	t.Run("hints beat the user-agent sheet", func(t *testing.T) {
		td := el("td", nil)
		td.hints = center
		Cascade(td, DefaultStyleSheet(nil))
		assert.Equal(t, Center, td.computed.Enum(TextAlign))
		assert.Equal(t, TableCell, td.computed.Enum(Display))
	})

	t.Run("author rules beat hints", func(t *testing.T) {
		td := el("td", nil)
		td.hints = center
		Cascade(td, DefaultStyleSheet(nil), sheet(t, "td { text-align: right }"))
		assert.Equal(t, KeywordRight, td.computed.Enum(TextAlign))
	})

	t.Run("hints apply without any sheet", func(t *testing.T) {
		td := el("td", nil)
		td.hints = center
		Cascade(td)
		assert.Equal(t, Center, td.computed.Enum(TextAlign))
	})
}

func TestCascadeInheritance(t *testing.T) {
	doc := el("div", nil,
		el("p", map[string]string{"id": "plain"}),
		el("p", map[string]string{"id": "explicit", "style": "color: inherit; background-color: inherit"}),
		el("p", map[string]string{"id": "small", "style": "font-size: 50%"},
			el("span", map[string]string{"id": "inner", "style": "font-size: 200%"}),
		),
	)
	Cascade(doc, sheet(t, "div { color: red; background-color: yellow; font-size: 20px }"))

	plain := doc.find("plain").computed
	assert.Equal(t, uint32(0xffff0000), plain.Color(Color))
	assert.False(t, plain.IsSet(BackgroundColor))

	explicit := doc.find("explicit").computed
	assert.Equal(t, uint32(0xffff0000), explicit.Color(Color))
	assert.Equal(t, uint32(0xffffff00), explicit.Color(BackgroundColor))

	assert.Equal(t, 10, doc.find("small").computed.FontPx())
	assert.Equal(t, 20, doc.find("inner").computed.FontPx())
}

func TestCascadeVeto(t *testing.T) {
	child := el("p", nil)
	doc := el("div", nil, child)
	doc.veto = true
	Cascade(doc, sheet(t, "p { color: red }"))
	require.NotNil(t, doc.computed)
	assert.Nil(t, child.computed)

	Cascade(nil, sheet(t, "p { color: red }"))
}
