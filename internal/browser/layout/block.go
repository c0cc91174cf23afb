// internal/browser/layout/block.go
package layout

import (
	"slices"

	"github.com/xkilldash9x/htmlview/internal/browser/style"
)

// -- Block Layout --

// flow is the state of laying out the children of one block.
type flow struct {
	ctx *LayoutContext
	// display collects the laid out children in paint order.
	display []BoxID
	// lineStart is the display index of the first box on the current line.
	lineStart int
	// insertAt is where the next in-flow box goes in display. Positioned
	// boxes are appended behind it so that they paint on top.
	insertAt int
}

func (f *flow) insert(id BoxID) {
	f.display = slices.Insert(f.display, f.insertAt, id)
	f.insertAt++
}

func (f *flow) appendOnTop(id BoxID) {
	f.display = append(f.display, id)
}

// edges holds the resolved margins, borders and paddings of a box.
type edges struct {
	marginTop, marginRight, marginBottom, marginLeft     int
	borderTop, borderRight, borderBottom, borderLeft     int
	paddingTop, paddingRight, paddingBottom, paddingLeft int
}

func (e *Engine) resolveEdges(s *style.Style, containingWidth int) edges {
	return edges{
		marginTop:     e.pxOf(s, style.MarginTop, containingWidth),
		marginRight:   e.pxOf(s, style.MarginRight, containingWidth),
		marginBottom:  e.pxOf(s, style.MarginBottom, containingWidth),
		marginLeft:    e.pxOf(s, style.MarginLeft, containingWidth),
		borderTop:     e.px(s, style.BorderTopWidth),
		borderRight:   e.px(s, style.BorderRightWidth),
		borderBottom:  e.px(s, style.BorderBottomWidth),
		borderLeft:    e.px(s, style.BorderLeftWidth),
		paddingTop:    e.pxOf(s, style.PaddingTop, containingWidth),
		paddingRight:  e.pxOf(s, style.PaddingRight, containingWidth),
		paddingBottom: e.pxOf(s, style.PaddingBottom, containingWidth),
		paddingLeft:   e.pxOf(s, style.PaddingLeft, containingWidth),
	}
}

func (g edges) left() int   { return g.marginLeft + g.borderLeft + g.paddingLeft }
func (g edges) right() int  { return g.marginRight + g.borderRight + g.paddingRight }
func (g edges) top() int    { return g.marginTop + g.borderTop + g.paddingTop }
func (g edges) bottom() int { return g.marginBottom + g.borderBottom + g.paddingBottom }

// measureBlock lays out the box id for an available width of outerMaxWidth
// (including its own margins). Blocks in the normal flow pass the layout
// context of their parent, which is advanced past the box; floats, inline
// blocks, table cells and positioned boxes pass nil and are positioned by
// the caller using BoxX, BoxY, BoxWidth and BoxHeight. shrinkWrap sizes the
// box to its content instead of the available width.
func (e *Engine) measureBlock(id BoxID, outerMaxWidth, viewport int, parent *LayoutContext, shrinkWrap bool) {
	b := e.tree.Box(id)
	if b.laidOut && !b.needsLayout && parent == nil && b.ContainingWidth == outerMaxWidth {
		return
	}
	switch b.Kind {
	case KindTable:
		e.measureTable(id, outerMaxWidth, viewport, parent, shrinkWrap)
	case KindNative:
		e.measureNative(id, outerMaxWidth, parent)
	default:
		e.layoutBlock(id, outerMaxWidth, viewport, parent, shrinkWrap)
	}
	b.laidOut = true
	b.needsLayout = false
}

type positioned struct {
	id      BoxID
	staticY int
}

func (e *Engine) layoutBlock(id BoxID, outerMaxWidth, viewport int, parentCtx *LayoutContext, shrinkWrap bool) {
	b := e.tree.Box(id)
	s := e.style(id)
	b.ContainingWidth = outerMaxWidth
	b.BoxX, b.BoxY = 0, 0

	g := e.resolveEdges(s, outerMaxWidth)
	b.MarginLeft, b.MarginRight = g.marginLeft, g.marginRight
	left, right, top, bottom := g.left(), g.right(), g.top(), g.bottom()

	display := s.Enum(style.Display)
	switch {
	case shrinkWrap && s.IsLengthFixedOrPercent(style.Width):
		outerMaxWidth = e.pxOf(s, style.Width, outerMaxWidth) + left + right
	case shrinkWrap:
		outerMaxWidth = min(outerMaxWidth, e.MaximumWidth(id, b.ContainingWidth))
	case display != style.TableCell && s.IsLengthFixedOrPercent(style.Width):
		// Distribute the space around a block of fixed width over its auto
		// margins, or add it to the right margin.
		remaining := b.ContainingWidth - e.pxOf(s, style.Width, b.ContainingWidth) - left - right
		switch {
		case s.Enum(style.MarginLeft) == style.Auto && s.Enum(style.MarginRight) == style.Auto:
			b.MarginLeft, b.MarginRight = remaining/2, remaining/2
			left += remaining / 2
			right += remaining / 2
		case s.Enum(style.MarginLeft) == style.Auto:
			b.MarginLeft = remaining
			left += remaining
		default:
			b.MarginRight += remaining
			right += remaining
		}
	}

	b.BoxWidth = outerMaxWidth
	fixedHeight := b.Parent != NoBox && e.isHeightFixed(id)
	if fixedHeight {
		b.BoxHeight = top + e.fixedInnerHeight(id) + bottom
	}

	innerMaxWidth := outerMaxWidth - left - right
	f := &flow{ctx: NewLayoutContext(min(innerMaxWidth, viewport), s, parentCtx, left, top)}
	ctx := f.ctx

	// Break positions carry over between adjacent text boxes only.
	breakPos := -1
	previous := NoBox
	var absolutes []positioned

	for index, child := range b.Children {
		c := e.tree.Box(child)
		cs := e.style(child)
		position := cs.Enum(style.Position)

		if c.Kind == KindText {
			f.display = slices.Insert(f.display, f.insertAt, child)
			c.X, c.Y = left, top+ctx.CurrentY
			breakPos = e.layoutText(f, id, index, breakPos)
			if len(c.Lines) > 1 {
				f.lineStart = f.insertAt
			}
			f.insertAt++
			if position == style.Relative {
				e.offsetRelative(child, cs, innerMaxWidth, id)
			}
			continue
		}
		breakPos = -1

		childDisplay := cs.Enum(style.Display)
		float := cs.Enum(style.Float)

		switch {
		case position == style.Absolute || position == style.Fixed:
			// Positioned once the height of this block is known; the layout
			// context is not affected.
			f.appendOnTop(child)
			e.measureBlock(child, innerMaxWidth, viewport, nil, true)
			absolutes = append(absolutes, positioned{id: child, staticY: top + ctx.CurrentY})
			continue

		case float == style.KeywordLeft || float == style.KeywordRight:
			f.appendOnTop(child)
			e.measureBlock(child, innerMaxWidth, viewport, nil, true)
			ctx.PlaceBox(c.BoxWidth, c.BoxHeight, float, cs.Enum(style.Clear))
			c.X = left + ctx.BoxX - c.BoxX
			c.Y = top + ctx.BoxY - c.BoxY

		case childDisplay == style.Block || childDisplay == style.ListItem:
			// Blocks start on a new line.
			if ctx.LineHeight > 0 {
				if f.lineStart != f.insertAt {
					e.adjustLine(f, f.lineStart, f.insertAt)
				}
				ctx.Advance(ctx.LineHeight)
				previous = NoBox
			}
			if position == style.Relative {
				f.appendOnTop(child)
			} else {
				f.insert(child)
			}
			if ctx.Clear(cs.Enum(style.Clear)) {
				previous = NoBox
			}
			if previous != NoBox {
				// The bottom margin of the previous block is already applied.
				m1 := e.pxOf(e.style(previous), style.MarginBottom, outerMaxWidth)
				m2 := e.pxOf(cs, style.MarginTop, outerMaxWidth)
				ctx.Advance(collapseMargins(m1, m2))
			}
			saveY := ctx.CurrentY
			e.measureBlock(child, innerMaxWidth, viewport, ctx, false)
			c.X = left - c.BoxX
			c.Y = top + saveY - c.BoxY
			f.lineStart = f.insertAt
			previous = child

		default:
			// Inline blocks, tables and replaced elements flow like text.
			f.display = slices.Insert(f.display, f.insertAt, child)
			previous = NoBox
			e.measureBlock(child, innerMaxWidth, viewport, nil, childDisplay != style.Table)
			if ctx.HorizontalSpace(c.BoxHeight) >= c.BoxWidth {
				ctx.PlaceBox(c.BoxWidth, c.BoxHeight, style.None, 0)
			} else {
				e.adjustLine(f, f.lineStart, f.insertAt)
				f.lineStart = f.insertAt
				ctx.Advance(ctx.LineHeight)
				ctx.PlaceBox(c.BoxWidth, c.BoxHeight, style.None, 0)
				ctx.Advance(ctx.BoxY - ctx.CurrentY)
				ctx.SetLineHeight(c.BoxHeight)
			}
			c.X = left + ctx.BoxX - c.BoxX
			c.Y = top + ctx.CurrentY - c.BoxY
			f.insertAt++
		}

		if position == style.Relative {
			e.offsetRelative(child, cs, innerMaxWidth, id)
		}
	}

	if f.lineStart != f.insertAt && ctx.LineHeight != 0 {
		e.adjustLine(f, f.lineStart, f.insertAt)
	}
	ctx.Advance(ctx.LineHeight)
	if parentCtx == nil {
		ctx.Clear(style.Both)
	}

	if !fixedHeight {
		b.BoxHeight = top + ctx.CurrentY + bottom
	}
	if parentCtx != nil {
		parentCtx.AdjustCurrentY(ctx.CurrentY)
		parentCtx.Advance(b.BoxHeight - ctx.CurrentY - top)
	}

	for _, p := range absolutes {
		e.placeAbsolute(id, g, p)
	}

	b.display = f.display
	e.adjustDimensions(id, s)
}

// collapseMargins returns the cursor correction for adjacent vertical
// margins m1 (already applied) and m2 (about to be applied).
func collapseMargins(m1, m2 int) int {
	switch {
	case m1 < 0 && m2 < 0:
		return -(m1 + m2)
	case m1 < 0:
		return -m1
	case m2 < 0:
		return -m2
	}
	return -min(m1, m2)
}

// placeAbsolute positions an absolutely positioned child against the
// padding box of block. Without offsets the child stays at the position it
// would have had in the flow.
func (e *Engine) placeAbsolute(block BoxID, g edges, p positioned) {
	b := e.tree.Box(block)
	c := e.tree.Box(p.id)
	cs := e.style(p.id)

	left1 := b.MarginLeft + g.borderLeft
	right1 := b.MarginRight + g.borderRight
	top1 := g.marginTop + g.borderTop
	bottom1 := g.marginBottom + g.borderBottom
	iw := b.BoxWidth - left1 - right1
	ih := b.BoxHeight - top1 - bottom1

	switch {
	case cs.Enum(style.Left) != style.Auto:
		c.X = left1 + e.pxOf(cs, style.Left, iw) - c.BoxX
	case cs.Enum(style.Right) != style.Auto:
		c.X = b.BoxWidth - right1 - e.pxOf(cs, style.Right, iw) - c.BoxWidth - c.BoxX
	default:
		c.X = left1 + g.paddingLeft - c.BoxX
	}
	switch {
	case cs.Enum(style.Top) != style.Auto:
		c.Y = top1 + e.pxOf(cs, style.Top, ih) - c.BoxY
	case cs.Enum(style.Bottom) != style.Auto:
		c.Y = b.BoxHeight - bottom1 - e.pxOf(cs, style.Bottom, ih) - c.BoxHeight - c.BoxY
	default:
		c.Y = p.staticY - c.BoxY
	}
}

// offsetRelative shifts a relatively positioned child by its offsets. left
// wins over right and top over bottom.
func (e *Engine) offsetRelative(child BoxID, cs *style.Style, containingWidth int, block BoxID) {
	c := e.tree.Box(child)
	containingHeight := 0
	if e.isHeightFixed(block) {
		containingHeight = e.fixedInnerHeight(block)
	}
	switch {
	case cs.Enum(style.Left) != style.Auto:
		c.X += e.pxOf(cs, style.Left, containingWidth)
	case cs.Enum(style.Right) != style.Auto:
		c.X -= e.pxOf(cs, style.Right, containingWidth)
	}
	switch {
	case cs.Enum(style.Top) != style.Auto:
		c.Y += e.pxOf(cs, style.Top, containingHeight)
	case cs.Enum(style.Bottom) != style.Auto:
		c.Y -= e.pxOf(cs, style.Bottom, containingHeight)
	}
}

// adjustLine aligns the boxes of the finished line [start, end) of the
// display list horizontally (text-align) and vertically (vertical-align).
func (e *Engine) adjustLine(f *flow, start, end int) {
	lineHeight := f.ctx.LineHeight
	indent := f.ctx.AdjustmentX(f.ctx.HorizontalSpace(lineHeight))
	for i := start; i < end; i++ {
		c := e.tree.Box(f.display[i])
		if c.Kind == KindText && len(c.Lines) > 1 {
			e.adjustLastLine(f.display[i], indent, lineHeight, f.ctx)
			continue
		}
		c.X += indent
		c.Y += f.ctx.AdjustmentY(lineHeight - c.Height)
	}
}

// adjustDimensions grows the measured rectangle of a block to cover all its
// children and records where the margin box sits inside it. The root and
// blocks with overflow: hidden keep their margin box as is.
func (e *Engine) adjustDimensions(id BoxID, s *style.Style) {
	b := e.tree.Box(id)
	minX, minY := 0, 0
	maxX, maxY := b.BoxWidth, b.BoxHeight

	if b.Parent != NoBox && s.Enum(style.Overflow) != style.Hidden {
		for _, child := range b.display {
			c := e.tree.Box(child)
			minX = min(minX, c.X)
			minY = min(minY, c.Y)
			maxX = max(maxX, c.X+c.Width)
			maxY = max(maxY, c.Y+c.Height)
		}
		if s.Enum(style.Display) == style.ListItem {
			// Room for the marker in the margin of the list.
			minX = min(minX, -e.px(e.style(b.Parent), style.MarginLeft))
		}
		b.BoxX, b.BoxY = -minX, -minY
		if minX < 0 || minY < 0 {
			for _, child := range b.display {
				c := e.tree.Box(child)
				c.X -= minX
				c.Y -= minY
			}
		}
	}
	b.Width, b.Height = maxX-minX, maxY-minY
}

// -- Intrinsic widths of blocks --

func (e *Engine) blockWidths(id BoxID, containingWidth int) {
	b := e.tree.Box(id)
	s := e.style(id)
	border := e.horizontalBorder(s, containingWidth)
	display := s.Enum(style.Display)

	var minW, maxW, line int
	if display != style.TableCell && s.IsLengthFixedOrPercent(style.Width) {
		minW = e.pxOf(s, style.Width, containingWidth)
		maxW = minW
	} else {
		minW = e.px(s, style.Width)
		maxW = minW
		childWidth := containingWidth - border
		if display == style.TableCell {
			childWidth = e.pxOf(s, style.Width, containingWidth) + border
		}
		for _, child := range b.Children {
			c := e.tree.Box(child)
			if c.Kind == KindText {
				e.textWidths(child, &minW, &maxW, &line)
				continue
			}
			cs := e.style(child)
			if p := cs.Enum(style.Position); p == style.Absolute || p == style.Fixed {
				continue
			}
			childDisplay := cs.Enum(style.Display)
			if cs.Enum(style.Float) == style.None &&
				(childDisplay == style.Block || childDisplay == style.ListItem) {
				maxW = max(maxW, line, e.MaximumWidth(child, childWidth))
				line = 0
			} else {
				line += e.MaximumWidth(child, childWidth)
			}
			minW = max(minW, e.MinimumWidth(child, childWidth))
		}
	}
	maxW = max(maxW, line)

	b.minWidth = minW + border
	b.maxWidth = maxW + border
}
