// internal/browser/layout/measure.go
package layout

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/xkilldash9x/htmlview/internal/browser/style"
)

// -- Fonts and Measurement --

// Font identifies a font for measurement. It is comparable and serves as a
// cache key.
type Font struct {
	// Size is the font size in device pixels.
	Size   int
	Bold   bool
	Italic bool
	Family string
}

// fontOf derives the font of a computed style at the given pixel scale.
func fontOf(s *style.Style, scale float64) Font {
	f := Font{
		Size:   scaled(s.FontPx(), scale),
		Bold:   s.Raw(style.FontWeight) >= style.WeightBold,
		Family: s.FontFamilyName(),
	}
	switch s.Enum(style.FontStyle) {
	case style.Italic, style.Oblique:
		f.Italic = true
	}
	return f
}

// Measurer supplies glyph metrics. Implementations must be deterministic.
type Measurer interface {
	// Advance returns the advance width of r in pixels.
	Advance(f Font, r rune) int
	// Metrics returns the line height and ascent in pixels.
	Metrics(f Font) (height, ascent int)
}

// FaceMeasurer measures with a font.Face designed at a nominal pixel size,
// scaling linearly to the requested size.
type FaceMeasurer struct {
	face    font.Face
	nominal fixed.Int26_6
	height  fixed.Int26_6
	ascent  fixed.Int26_6
}

// NewFaceMeasurer wraps face. A nil face selects basicfont.Face7x13.
func NewFaceMeasurer(face font.Face) *FaceMeasurer {
	if face == nil {
		face = basicfont.Face7x13
	}
	m := face.Metrics()
	nominal := m.Height
	if nominal <= 0 {
		nominal = fixed.I(13)
	}
	return &FaceMeasurer{face: face, nominal: nominal, height: m.Height, ascent: m.Ascent}
}

// SetNominalSize overrides the pixel size the face is taken to be designed
// at. Text of that size measures with the face's own advances.
func (m *FaceMeasurer) SetNominalSize(px int) {
	if px > 0 {
		m.nominal = fixed.I(px)
	}
}

// Advance implements Measurer. Control characters have no width; glyphs
// missing from the face measure like '?'.
func (m *FaceMeasurer) Advance(f Font, r rune) int {
	if r < ' ' {
		return 0
	}
	adv, ok := m.face.GlyphAdvance(r)
	if !ok {
		adv, _ = m.face.GlyphAdvance('?')
	}
	w := m.scale(adv, f.Size)
	if f.Bold {
		w++
	}
	return w
}

// Metrics implements Measurer.
func (m *FaceMeasurer) Metrics(f Font) (int, int) {
	return m.scale(m.height, f.Size), m.scale(m.ascent, f.Size)
}

func (m *FaceMeasurer) scale(v fixed.Int26_6, size int) int {
	return (v * fixed.I(size) / m.nominal).Round()
}

// FixedMeasurer gives every printable rune the same advance, scaled from a
// 16px reference size. Lines are as tall as the font size.
type FixedMeasurer struct {
	// CharWidth is the advance at 16px.
	CharWidth int
}

// Advance implements Measurer.
func (m FixedMeasurer) Advance(f Font, r rune) int {
	if r < ' ' {
		return 0
	}
	return m.CharWidth * f.Size / 16
}

// Metrics implements Measurer.
func (m FixedMeasurer) Metrics(f Font) (int, int) {
	return f.Size, f.Size * 4 / 5
}

// -- Width Cache --

const (
	initialCacheRunes = 128
	maxCachedRune     = 0x10000
)

// WidthCache memoises rune advances per font. Each font's table starts at
// 128 entries and doubles until it covers the rune asked for; runes beyond
// the basic multilingual plane are measured directly.
type WidthCache struct {
	m     Measurer
	fonts map[Font][]int32
}

// NewWidthCache returns a cache in front of m.
func NewWidthCache(m Measurer) *WidthCache {
	return &WidthCache{m: m, fonts: make(map[Font][]int32)}
}

// RuneWidth returns the advance of r in f.
func (c *WidthCache) RuneWidth(f Font, r rune) int {
	if r < 0 || r >= maxCachedRune {
		return c.m.Advance(f, r)
	}
	table := c.fonts[f]
	if int(r) >= len(table) {
		n := max(len(table), initialCacheRunes)
		for n <= int(r) {
			n *= 2
		}
		grown := make([]int32, n)
		copy(grown, table)
		table = grown
		c.fonts[f] = table
	}
	// Entries hold the width plus one so that zero means unknown.
	if table[r] == 0 {
		table[r] = int32(c.m.Advance(f, r)) + 1
	}
	return int(table[r]) - 1
}

// Width returns the advance of text in f.
func (c *WidthCache) Width(f Font, text []rune) int {
	w := 0
	for _, r := range text {
		w += c.RuneWidth(f, r)
	}
	return w
}

// Height returns the line height of f, at least one pixel.
func (c *WidthCache) Height(f Font) int {
	h, _ := c.m.Metrics(f)
	return max(h, 1)
}
