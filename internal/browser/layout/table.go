// internal/browser/layout/table.go
package layout

import (
	"github.com/xkilldash9x/htmlview/internal/browser/dom"
	"github.com/xkilldash9x/htmlview/internal/browser/style"
)

// -- Table Layout --

// grid is the cell placement of a table.
type grid struct {
	cells            []BoxID
	cols, rows       []int
	colSpans         []int
	rowSpans         []int
	colCount         int
	minW, specW      []int
	maxW             []int
	fixed            []bool
	minSum, specSum  int
	maxSum           int
	left, right      int
	top, bottom      int
	maxInner         int
	minInner         int
	fixedTableWidth  bool
	autoMarginOffset int
}

func (e *Engine) measureTable(id BoxID, containerWidth, viewport int, ctx *LayoutContext, shrinkWrap bool) {
	b := e.tree.Box(id)
	b.ContainingWidth = containerWidth
	e.formatTable(id, containerWidth, viewport, false, shrinkWrap)
	if ctx != nil {
		ctx.Advance(b.BoxHeight)
	}
}

// formatTable computes the intrinsic widths of a table (measureOnly) or lays
// it out. Column widths follow the automatic table layout: each column gets
// its minimum width, then columns are widened towards their specified
// widths, then towards their maximum widths in proportion to them.
func (e *Engine) formatTable(id BoxID, containerWidth, viewport int, measureOnly, shrinkWrap bool) {
	b := e.tree.Box(id)
	s := e.style(id)
	g := e.placeCells(id, s, containerWidth, shrinkWrap)
	e.columnWidths(g)

	if measureOnly {
		b.minWidth = max(g.minSum, g.minInner) + g.left + g.right
		b.maxWidth = max(g.maxSum, g.minInner) + g.left + g.right
		return
	}

	widths, actual := distributeColumns(g)

	b.MarginLeft = e.pxOf(s, style.MarginLeft, containerWidth)
	b.MarginRight = e.pxOf(s, style.MarginRight, containerWidth)
	b.BoxX, b.BoxY = 0, 0
	b.BoxWidth = actual + g.left + g.right
	if !shrinkWrap && s.Enum(style.MarginLeft) == style.Auto && s.Enum(style.MarginRight) == style.Auto {
		m := max(0, (containerWidth-g.left-g.right-actual)/2)
		b.MarginLeft, b.MarginRight = m, m
		g.autoMarginOffset = m
		b.BoxWidth += 2 * m
	}

	rowHeights := e.layoutCells(g, widths, viewport)

	var display []BoxID
	y := 0
	for i, h := range rowHeights {
		if i < b.rowCount {
			row := e.tree.Box(b.Children[i])
			row.X, row.Y = g.left+g.autoMarginOffset, g.top+y
			row.Width, row.Height = actual, h
			row.BoxX, row.BoxY = 0, 0
			row.BoxWidth, row.BoxHeight = actual, h
			row.laidOut = true
			row.needsLayout = false
			display = append(display, b.Children[i])
		}
		y += h
	}
	b.display = append(display, g.cells...)
	b.BoxHeight = g.top + y + g.bottom
	b.Width, b.Height = b.BoxWidth, b.BoxHeight
}

// placeCells assigns a column and row to every cell, skipping columns still
// occupied by row spans from above.
func (e *Engine) placeCells(id BoxID, s *style.Style, containerWidth int, shrinkWrap bool) *grid {
	b := e.tree.Box(id)
	g := &grid{
		left:   e.pxOf(s, style.MarginLeft, containerWidth) + e.pxOf(s, style.PaddingLeft, containerWidth) + e.px(s, style.BorderLeftWidth),
		right:  e.pxOf(s, style.MarginRight, containerWidth) + e.pxOf(s, style.PaddingRight, containerWidth) + e.px(s, style.BorderRightWidth),
		top:    e.pxOf(s, style.MarginTop, containerWidth) + e.pxOf(s, style.PaddingTop, containerWidth) + e.px(s, style.BorderTopWidth),
		bottom: e.pxOf(s, style.MarginBottom, containerWidth) + e.pxOf(s, style.PaddingBottom, containerWidth) + e.px(s, style.BorderBottomWidth),
	}
	g.fixedTableWidth = s.IsLengthFixedOrPercent(style.Width)
	switch {
	case shrinkWrap:
		g.maxInner = e.MaximumWidth(id, containerWidth) - g.left - g.right
	case g.fixedTableWidth:
		g.maxInner = e.pxOf(s, style.Width, containerWidth)
		g.minInner = g.maxInner
	default:
		g.maxInner = containerWidth - g.left - g.right
	}

	g.cells = b.Children[b.rowCount:]
	n := len(g.cells)
	g.cols, g.rows = make([]int, n), make([]int, n)
	g.colSpans, g.rowSpans = make([]int, n), make([]int, n)

	// skip holds, per column, the number of rows (including the current
	// one) still covered by a cell from above.
	var skip []int
	currentRow := dom.NoNode
	column, row := 0, 0
	for i, cell := range g.cells {
		c := e.tree.Box(cell)
		if currentRow == dom.NoNode {
			currentRow = c.row
		} else if currentRow != c.row {
			currentRow = c.row
			column = 0
			row++
			for j := range skip {
				if skip[j] > 0 {
					skip[j]--
				}
			}
		}
		for column < len(skip) && skip[column] > 0 {
			column++
		}
		rowSpan := max(e.doc.AttributeInt(c.Node, "rowspan", 1), 1)
		colSpan := max(e.doc.AttributeInt(c.Node, "colspan", 1), 1)
		g.cols[i], g.rows[i] = column, row
		g.colSpans[i], g.rowSpans[i] = colSpan, rowSpan

		for len(skip) < column+colSpan {
			skip = append(skip, 1)
		}
		for j := 0; j < colSpan; j++ {
			skip[column] = rowSpan
			column++
		}
	}
	g.colCount = len(skip)
	return g
}

// columnWidths computes the minimum, specified and maximum width of every
// column.
func (e *Engine) columnWidths(g *grid) {
	g.minW = make([]int, g.colCount)
	g.specW = make([]int, g.colCount)
	g.maxW = make([]int, g.colCount)
	g.fixed = make([]bool, g.colCount)

	for i, cell := range g.cells {
		if g.colSpans[i] != 1 {
			continue
		}
		col := g.cols[i]
		g.minW[col] = max(g.minW[col], e.MinimumWidth(cell, g.maxInner))
		g.specW[col] = max(g.specW[col], e.specifiedWidth(cell, g.maxInner))
		g.maxW[col] = max(g.maxW[col], e.MaximumWidth(cell, g.maxInner))
		if e.style(cell).IsLengthFixed(style.Width) {
			g.fixed[col] = true
		}
	}

	// Spread cells spanning several columns over the columns that are not
	// fixed, or over all of them if every column is fixed.
	for i, cell := range g.cells {
		span := g.colSpans[i]
		if span <= 1 {
			continue
		}
		col := g.cols[i]
		minSum, maxSum, div := 0, 0, 0
		for j := col; j < col+span; j++ {
			minSum += g.minW[j]
			maxSum += g.maxW[j]
			if !g.fixed[j] {
				div++
			}
		}
		if div == 0 {
			div = span
		}
		addMin := max((e.MinimumWidth(cell, g.maxInner)-minSum+div-1)/div, 0)
		addMax := max((e.MaximumWidth(cell, g.maxInner)-maxSum+div-1)/div, 0)
		for j := col; j < col+span; j++ {
			if div == span || !g.fixed[j] {
				g.minW[j] += addMin
				g.maxW[j] += addMax
			}
		}
	}

	for i := range g.colCount {
		g.specW[i] = max(g.minW[i], g.specW[i])
		if g.fixed[i] {
			g.maxW[i] = g.specW[i]
		}
		g.minSum += g.minW[i]
		g.specSum += g.specW[i]
		g.maxSum += g.maxW[i]
	}
}

// distributeColumns returns the used column widths and their sum.
func distributeColumns(g *grid) ([]int, int) {
	widths := make([]int, g.colCount)
	narrow := g.maxSum >= g.maxInner
	if narrow {
		copy(widths, g.minW)
	} else {
		copy(widths, g.maxW)
	}
	actual := 0
	for _, w := range widths {
		actual += w
	}

	// Widen columns towards their specified widths.
	want := 0
	for i, w := range widths {
		want += max(0, g.specW[i]-w)
	}
	if want > 0 && g.maxInner > actual {
		give := min(want, g.maxInner-actual)
		for i, w := range widths {
			add := max(0, g.specW[i]-w) * give / want
			widths[i] += add
			actual += add
		}
	}

	// Hand out what is left: towards the maximum widths when the table is
	// narrower than its content, beyond them only for tables of fixed width.
	slack := g.maxInner - actual
	if slack <= 0 || (!narrow && !g.fixedTableWidth) {
		return widths, actual
	}
	weights := make([]int, g.colCount)
	total, last := 0, -1
	for i := range g.colCount {
		if g.fixed[i] {
			continue
		}
		if narrow {
			weights[i] = max(0, g.maxW[i]-widths[i])
		} else {
			weights[i] = g.maxW[i]
		}
		total += weights[i]
		if weights[i] > 0 {
			last = i
		}
	}
	if total > 0 {
		given := 0
		for i := range g.colCount {
			add := weights[i] * slack / total
			widths[i] += add
			given += add
		}
		widths[last] += slack - given
		return widths, g.maxInner
	}
	if !g.fixedTableWidth || g.colCount == 0 {
		return widths, actual
	}

	// Nothing to go by: expand evenly, sparing fixed columns if possible.
	var eligible []int
	for i := range g.colCount {
		if !g.fixed[i] {
			eligible = append(eligible, i)
		}
	}
	if len(eligible) == 0 {
		for i := range g.colCount {
			eligible = append(eligible, i)
		}
	}
	add := slack / len(eligible)
	for _, i := range eligible {
		widths[i] += add
	}
	widths[eligible[len(eligible)-1]] += slack - add*len(eligible)
	return widths, g.maxInner
}

// layoutCells lays out every cell at its column position and returns the
// row heights.
func (e *Engine) layoutCells(g *grid, widths []int, viewport int) []int {
	var rowHeights []int
	open := make([]BoxID, g.colCount)
	for i := range open {
		open[i] = NoBox
	}
	spans := make([]int, g.colCount)
	accumulated := make([]int, g.colCount)

	x, y, column, currentRow := 0, 0, 0, 0
	for i, cell := range g.cells {
		if currentRow != g.rows[i] {
			h := e.formatRow(open, spans, accumulated)
			rowHeights = append(rowHeights, h)
			y += h
			x, column = 0, 0
			currentRow = g.rows[i]
		}
		for column < g.cols[i] {
			x += widths[column]
			column++
		}
		open[column] = cell
		accumulated[column] = 0

		w := 0
		for j := column; j < column+g.colSpans[i]; j++ {
			w += widths[j]
			spans[j] = g.rowSpans[i]
		}
		// The last pass stretched the cell to its row.
		e.tree.Box(cell).needsLayout = true
		e.measureBlock(cell, w, viewport, nil, false)
		c := e.tree.Box(cell)
		c.X = g.left + g.autoMarginOffset + x - c.BoxX
		c.Y = g.top + y - c.BoxY

		x += w
		column += g.colSpans[i]
	}
	return append(rowHeights, e.formatRow(open, spans, accumulated))
}

// formatRow finishes a table row: cells ending in this row are stretched to
// the row height and their content aligned vertically. Cells spanning
// further rows accumulate the row height.
func (e *Engine) formatRow(open []BoxID, spans, accumulated []int) int {
	rowHeight := 0
	for i, cell := range open {
		if spans[i] == 1 && cell != NoBox {
			rowHeight = max(rowHeight, e.tree.Box(cell).BoxHeight-accumulated[i])
		}
	}
	for i, cell := range open {
		if spans[i] == 1 && cell != NoBox {
			c := e.tree.Box(cell)
			gap := rowHeight + accumulated[i] - c.BoxHeight
			c.BoxHeight += gap
			c.Height += gap
			e.alignCellContent(cell, gap)
			open[i] = NoBox
		}
		if spans[i] > 0 {
			spans[i]--
			accumulated[i] += rowHeight
		}
	}
	return rowHeight
}

// alignCellContent moves the content of a cell down according to its
// vertical-align when the row is taller than the cell.
func (e *Engine) alignCellContent(cell BoxID, gap int) {
	factor := 1
	switch e.style(cell).Enum(style.VerticalAlign) {
	case style.KeywordTop:
		factor = 0
	case style.KeywordBottom:
		factor = 2
	}
	dy := factor * gap / 2
	if dy <= 0 {
		return
	}
	for _, child := range e.tree.Box(cell).display {
		e.tree.Box(child).Y += dy
	}
}

// specifiedWidth is the width a cell asks for, including its margins,
// borders and paddings.
func (e *Engine) specifiedWidth(cell BoxID, containerWidth int) int {
	s := e.style(cell)
	return e.pxOf(s, style.Width, containerWidth) + e.horizontalBorder(s, containerWidth)
}
