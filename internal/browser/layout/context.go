// internal/browser/layout/context.go
package layout

import (
	"github.com/xkilldash9x/htmlview/internal/browser/style"
)

// -- Layout Context --

// segment is a horizontal band of free space: between x0 and x1 for the
// next h pixels.
type segment struct {
	x0, x1, h int
}

// bands is the free space list shared by a block and every nested context
// laid out in the same flow. Coordinates are relative to the outermost
// context.
type bands struct {
	segs []segment
}

// LayoutContext tracks the vertical cursor of a block and the horizontal
// space left over by floats. Nested block contexts share the float bands of
// their parent so that floats affect text in descendants.
type LayoutContext struct {
	bands *bands

	maxWidth int
	// BoxX and BoxY are the position found by the last PlaceBox, relative to
	// this context.
	BoxX, BoxY int
	// CurrentY is the top of the current line.
	CurrentY int
	// LineHeight is the height of the current line so far.
	LineHeight int

	textAlign     int
	verticalAlign int

	leftBorderX  int
	rightBorderX int
}

// NewLayoutContext creates the context for a block of the given inner width.
// With a parent, the parent is first advanced to top (where the block content
// starts) and the float bands are shared; x0 is the content left edge
// relative to the parent context.
func NewLayoutContext(maxWidth int, s *style.Style, parent *LayoutContext, x0, top int) *LayoutContext {
	c := &LayoutContext{maxWidth: maxWidth}
	if s != nil {
		c.textAlign = s.Enum(style.TextAlign)
		c.verticalAlign = s.Enum(style.VerticalAlign)
	}
	if parent != nil {
		parent.Advance(top)
		c.bands = parent.bands
		c.leftBorderX = parent.leftBorderX + x0
	} else {
		c.bands = &bands{}
	}
	c.rightBorderX = c.leftBorderX + maxWidth
	return c
}

// MaxWidth is the inner width of the block.
func (c *LayoutContext) MaxWidth() int { return c.maxWidth }

// HorizontalSpace returns the width available for a line of at least
// height (and at least the current line height) at the cursor.
func (c *LayoutContext) HorizontalSpace(height int) int {
	height = max(height, c.LineHeight)
	segs := c.bands.segs
	if len(segs) == 0 {
		return c.maxWidth
	}
	x0, x1 := c.leftBorderX, c.rightBorderX
	h := 0
	for _, s := range segs {
		x0 = max(x0, s.x0)
		x1 = min(x1, s.x1)
		h += s.h
		if h >= height {
			break
		}
	}
	return x1 - x0
}

// Advance moves the cursor down by h and starts a new line. Bands that end
// above the new cursor are dropped. A negative h (from a negative margin)
// moves the cursor up and grows the first band.
func (c *LayoutContext) Advance(h int) {
	c.CurrentY += h
	c.LineHeight = 0
	segs := c.bands.segs
	for len(segs) > 0 && h >= segs[0].h {
		h -= segs[0].h
		segs = segs[1:]
	}
	if len(segs) > 0 {
		segs[0].h -= h
	}
	c.bands.segs = segs
}

// AdjustCurrentY moves the cursor without touching the bands.
func (c *LayoutContext) AdjustCurrentY(delta int) {
	c.CurrentY += delta
}

// SetLineHeight sets the height of the current line.
func (c *LayoutContext) SetLineHeight(h int) {
	c.LineHeight = h
}

// PlaceBox finds a position for a box of the given size, stores it in BoxX
// and BoxY and reserves the area so that later content flows around it.
// Boxes that do not float extend the current line and are placed on the
// first band wide enough for them; floats are style.KeywordLeft or
// style.KeywordRight. A clear of style.KeywordLeft, style.KeywordRight or
// style.Both forbids positions next to earlier floats on that side.
func (c *LayoutContext) PlaceBox(w, h, float, clear int) {
	if float != style.KeywordLeft && float != style.KeywordRight {
		c.LineHeight = max(c.LineHeight, h)
		h = c.LineHeight
	}
	start, y, x0, x1 := c.findBand(w, h, clear)
	segs := c.bands.segs

	if float == style.KeywordRight {
		c.BoxX = x1 - w - c.leftBorderX
	} else {
		c.BoxX = x0 - c.leftBorderX
	}
	c.BoxY = c.CurrentY + y

	// Reserve the box area in the bands it covers, splitting the last one if
	// the box ends inside it. Inline boxes reserve from the left for the
	// height of the line so that the next box on the line goes after them.
	remaining := h
	i := start
	for ; i < len(segs) && remaining > 0; i++ {
		if segs[i].h > remaining {
			tail := segs[i]
			tail.h -= remaining
			segs[i].h = remaining
			segs = append(segs, segment{})
			copy(segs[i+2:], segs[i+1:])
			segs[i+1] = tail
		}
		c.reserve(&segs[i], float, x0, x1, w)
		remaining -= segs[i].h
	}
	if remaining > 0 {
		s := segment{x0: c.leftBorderX, x1: c.rightBorderX, h: remaining}
		c.reserve(&s, float, x0, x1, w)
		segs = append(segs, s)
	}
	c.bands.segs = segs
}

// findBand returns the index and offset of the first band where the
// corridor of the next h pixels is at least w wide and satisfies clear,
// together with the corridor bounds. Below the last band the whole width is
// free.
func (c *LayoutContext) findBand(w, h, clear int) (start, y, x0, x1 int) {
	clearLeft := clear == style.KeywordLeft || clear == style.Both
	clearRight := clear == style.KeywordRight || clear == style.Both

	segs := c.bands.segs
	for ; start < len(segs); start++ {
		x0, x1 = c.leftBorderX, c.rightBorderX
		covered := 0
		for i := start; i < len(segs) && covered < max(h, 1); i++ {
			x0 = max(x0, segs[i].x0)
			x1 = min(x1, segs[i].x1)
			covered += segs[i].h
		}
		fits := x1-x0 >= w &&
			(!clearLeft || x0 <= c.leftBorderX) &&
			(!clearRight || x1 >= c.rightBorderX)
		if fits {
			return start, y, x0, x1
		}
		y += segs[start].h
	}
	return start, y, c.leftBorderX, c.rightBorderX
}

func (c *LayoutContext) reserve(s *segment, float, x0, x1, w int) {
	if float == style.KeywordRight {
		s.x1 = min(s.x1, x1-w)
	} else {
		s.x0 = max(s.x0, x0+w)
	}
}

// Clear moves the cursor below earlier floats on the given side. It reports
// whether the cursor moved. The bands are left as they are.
func (c *LayoutContext) Clear(clear int) bool {
	if clear != style.KeywordLeft && clear != style.KeywordRight && clear != style.Both {
		return false
	}
	if _, y, _, _ := c.findBand(0, 0, clear); y > 0 {
		c.Advance(y)
		return true
	}
	return false
}

// AdjustmentX returns the horizontal offset of a line that leaves space
// pixels free, according to text-align.
func (c *LayoutContext) AdjustmentX(space int) int {
	switch c.textAlign {
	case style.Center:
		return space / 2
	case style.KeywordRight:
		return space
	}
	return 0
}

// AdjustmentY returns the vertical offset of an inline box that is space
// pixels shorter than its line, according to vertical-align. The baseline
// default approximates the descent as an eighth of the line.
func (c *LayoutContext) AdjustmentY(space int) int {
	switch c.verticalAlign {
	case style.KeywordTop, style.TextTop:
		return 0
	case style.KeywordBottom, style.TextBottom:
		return space
	case style.Middle:
		return space / 2
	}
	return space * 7 / 8
}
