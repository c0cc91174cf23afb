// internal/browser/layout/text.go
package layout

import (
	"math"
	"strings"

	"github.com/xkilldash9x/htmlview/internal/browser/style"
)

// -- Text Layout --

// Sentinels returned by findBreak.
const (
	// noBreakNeeded means the rest of the run fits on the line.
	noBreakNeeded = math.MaxInt32
	// noBreakFound means nothing fits before the first break opportunity.
	noBreakFound = math.MinInt32
)

// breakChars may end a line when followed by a printable character.
const breakChars = "-.,/+(!?;"

// canBreak reports whether a line may break between c and d.
func canBreak(c, d rune) bool {
	if c <= ' ' || c == ')' {
		return true
	}
	return d > ' ' && strings.ContainsRune(breakChars, c)
}

// layoutText breaks the text box at child index of parent into lines and
// places them in the flow. breakPos is the first break position carried over
// from the preceding text box of the same run, or -1 to search afresh. The
// return value is the break position carried over to the next text box.
func (e *Engine) layoutText(f *flow, parent BoxID, index, breakPos int) int {
	id := e.tree.Box(parent).Children[index]
	t := e.tree.Box(id)
	s := e.style(id)
	ctx := f.ctx

	fontHeight := e.widths.Height(e.font(s))
	maxWidth := ctx.MaxWidth()
	available := ctx.HorizontalSpace(fontHeight)
	lineFont, _ := e.lineFont(s)

	if breakPos == -1 {
		breakPos = max(0, e.findBreak(parent, index, 0, available, available == maxWidth))
	}

	n := len(t.runes)
	t.Lines = t.Lines[:0]

	if breakPos > n {
		w := min(e.widths.Width(lineFont, t.runes), maxWidth)
		ctx.PlaceBox(w, fontHeight, style.None, 0)
		t.X += ctx.BoxX
		t.Width, t.Height = w, fontHeight
		t.Lines = append(t.Lines, Line{Start: 0, Length: n, Width: w})
		return breakPos - n
	}

	h := max(ctx.LineHeight, fontHeight)
	ctx.SetLineHeight(h)
	firstLineY := ctx.AdjustmentY(h - fontHeight)
	mainY := h - fontHeight - firstLineY

	y := firstLineY
	lastBreak := 0
	for breakPos <= n {
		end := breakPos
		if end > lastBreak && t.runes[end-1] <= ' ' {
			end--
		}
		w := min(e.widths.Width(lineFont, t.runes[lastBreak:end]), maxWidth)

		if f.lineStart != f.insertAt {
			e.adjustLine(f, f.lineStart, f.insertAt)
			f.lineStart = f.insertAt
		}

		ctx.PlaceBox(w, fontHeight, style.None, 0)
		t.Lines = append(t.Lines, Line{
			Start:  lastBreak,
			Length: end - lastBreak,
			X:      ctx.BoxX + ctx.AdjustmentX(available-w),
			Y:      y,
			Width:  w,
		})
		ctx.Advance(ctx.LineHeight)

		lastBreak = breakPos
		available = ctx.HorizontalSpace(fontHeight)
		breakPos = max(lastBreak, e.findBreak(parent, index, lastBreak, available, available == maxWidth))

		if len(t.Lines) == 1 {
			y += mainY
		}
		y += fontHeight
		h += fontHeight
	}

	w := min(e.widths.Width(lineFont, t.runes[lastBreak:]), ctx.HorizontalSpace(fontHeight))
	ctx.PlaceBox(w, fontHeight, style.None, 0)
	t.Lines = append(t.Lines, Line{Start: lastBreak, Length: n - lastBreak, X: ctx.BoxX, Y: y, Width: w})

	t.Width, t.Height = maxWidth, h
	return breakPos - n
}

// lineFont returns the font the text of s is set in and the vertical shift
// of its baseline. Sub and superscripts use three quarters of the font size
// and move down or up by a quarter of it.
func (e *Engine) lineFont(s *style.Style) (Font, int) {
	f := e.font(s)
	shift := 0
	switch s.Enum(style.VerticalAlign) {
	case style.Sub:
		shift = f.Size / 4
	case style.Super:
		shift = -f.Size / 4
	default:
		return f, 0
	}
	f.Size = f.Size * 3 / 4
	return f, shift
}

// adjustLastLine aligns the last line of a multi-line text box once the
// height of that line is known.
func (e *Engine) adjustLastLine(id BoxID, indent, lineHeight int, ctx *LayoutContext) {
	t := e.tree.Box(id)
	dy := ctx.AdjustmentY(lineHeight - e.widths.Height(e.font(e.style(id))))
	t.Height += dy
	last := &t.Lines[len(t.Lines)-1]
	last.X += indent
	last.Y += dy
}

// findBreak finds the first break position of a new line starting at rune
// start of the text box at child index of parent, continuing into following
// text boxes when needed. Positions past the end of the box belong to later
// boxes. With force set, a position is returned even if the first word does
// not fit.
func (e *Engine) findBreak(parent BoxID, index, start, maxWidth int, force bool) int {
	id := e.tree.Box(parent).Children[index]
	t := e.tree.Box(id)
	n := len(t.runes)
	if start >= n {
		if e.tree.nextText(parent, index) == NoBox {
			return noBreakNeeded
		}
		return shiftBreak(e.findBreak(parent, index+1, start-n, maxWidth, force), n)
	}
	fnt, _ := e.lineFont(e.style(id))
	w := e.widths.RuneWidth(fnt, t.runes[start])
	return e.scanBreak(parent, index, t.runes[start], start+1, w, noBreakFound, maxWidth, force)
}

// scanBreak continues a break search at rune next of a text box, with cur
// the preceding rune, w the width so far and best the last position that
// fit. A forced break in a box the search continued into falls on the box
// boundary, so that the lines of the earlier boxes stay apart from it.
func (e *Engine) scanBreak(parent BoxID, index int, cur rune, next, w, best, maxWidth int, force bool) int {
	id := e.tree.Box(parent).Children[index]
	runes := e.tree.Box(id).runes
	n := len(runes)
	fnt, _ := e.lineFont(e.style(id))

	if cur == '\n' {
		return next
	}
	continued := next == 0 && w > 0
	start := next
	for ; next < n; next++ {
		r := runes[next]
		if canBreak(cur, r) {
			w += e.widths.Width(fnt, runes[start:next])
			if w > maxWidth {
				if best == noBreakFound && force {
					if continued {
						return 0
					}
					return next
				}
				return best
			}
			if cur == '\n' {
				return next
			}
			start, best = next, next
		}
		cur = r
	}
	w += e.widths.Width(fnt, runes[start:next])
	if w > maxWidth {
		if best != noBreakFound {
			return best
		}
		if force && continued {
			return 0
		}
	}

	if e.tree.nextText(parent, index) == NoBox {
		if w <= maxWidth || force {
			return noBreakNeeded
		}
		return noBreakFound
	}
	if best != noBreakFound {
		best -= n
	}
	return shiftBreak(e.scanBreak(parent, index+1, cur, next-n, w, best, maxWidth, force), n)
}

// shiftBreak converts a break position of the following text box into one
// of the current box.
func shiftBreak(pos, n int) int {
	if pos > noBreakFound && pos < noBreakNeeded {
		return pos + n
	}
	return pos
}

// textWidths adds a text box to an intrinsic width computation. Words are
// the runs between break opportunities; line accumulates the width of the
// current unbroken line across boxes.
func (e *Engine) textWidths(id BoxID, minW, maxW, line *int) {
	t := e.tree.Box(id)
	fnt, _ := e.lineFont(e.style(id))
	runes := t.runes

	add := func(word []rune, c rune) {
		w := e.widths.Width(fnt, word)
		*minW = max(*minW, w)
		*line += w
		if c == '\n' {
			*maxW = max(*maxW, *line)
			*line = 0
		}
	}

	c, start := ' ', 0
	for j, d := range runes {
		if canBreak(c, d) {
			add(runes[start:j], c)
			start = j
		}
		c = d
	}
	add(runes[start:], c)
}
