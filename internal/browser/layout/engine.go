// internal/browser/layout/engine.go
package layout

import (
	"math"

	"go.uber.org/zap"

	"github.com/xkilldash9x/htmlview/internal/browser/dom"
	"github.com/xkilldash9x/htmlview/internal/browser/style"
)

// -- Engine --

// IntrinsicSizer reports the natural size of a replaced element (typically
// an image whose bitmap the host has decoded). ok is false when unknown.
type IntrinsicSizer func(doc *dom.Document, id dom.NodeID) (w, h int, ok bool)

// Engine builds the box tree of a styled document and lays it out.
type Engine struct {
	doc      *dom.Document
	tree     *Tree
	widths   *WidthCache
	scale    float64
	viewport int
	sizer    IntrinsicSizer
	logger   *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithMeasurer sets the text measurer. The default measures with
// basicfont.Face7x13.
func WithMeasurer(m Measurer) Option {
	return func(e *Engine) {
		if m != nil {
			e.widths = NewWidthCache(m)
		}
	}
}

// WithPixelScale sets the device pixels per CSS pixel.
func WithPixelScale(scale float64) Option {
	return func(e *Engine) {
		if scale > 0 {
			e.scale = scale
		}
	}
}

// WithViewport caps the line width of blocks to the viewport width even when
// the layout width is larger. Zero uses the layout width.
func WithViewport(width int) Option {
	return func(e *Engine) {
		e.viewport = width
	}
}

// WithIntrinsicSizer sets the source of natural sizes for replaced elements.
func WithIntrinsicSizer(s IntrinsicSizer) Option {
	return func(e *Engine) {
		e.sizer = s
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine returns an engine with no document.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		scale:  1,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.widths == nil {
		e.widths = NewWidthCache(NewFaceMeasurer(nil))
	}
	e.logger = e.logger.Named("layout")
	return e
}

// Tree returns the current box tree, or nil before Build.
func (e *Engine) Tree() *Tree { return e.tree }

// Document returns the document last built.
func (e *Engine) Document() *dom.Document { return e.doc }

// Build prepares the box tree of a cascaded document. The tree is rebuilt
// when the document is new or reports a structural style change; otherwise
// the existing boxes are only marked for re-measurement.
func (e *Engine) Build(doc *dom.Document) {
	if doc != e.doc || e.tree == nil || doc.NeedsBuild() {
		e.doc = doc
		e.tree = newBuilder(e).build()
		doc.ClearNeedsBuild()
		e.logger.Debug("Built box tree.", zap.Int("boxes", e.tree.Len()))
		return
	}
	e.tree.InvalidateAll()
}

// Invalidate marks the box generated for node (and its ancestors) for
// re-measurement.
func (e *Engine) Invalidate(node dom.NodeID) {
	if e.tree == nil {
		return
	}
	for i := range e.tree.boxes {
		if e.tree.boxes[i].Node == node {
			e.tree.Invalidate(BoxID(i))
		}
	}
}

// Layout lays the tree out for the given width in device pixels. A repeated
// call with the same width and no invalidation in between does nothing.
func (e *Engine) Layout(width int) {
	if e.tree == nil || e.tree.root == NoBox {
		return
	}
	viewport := e.viewport
	if viewport <= 0 {
		viewport = width
	}
	root := e.tree.Box(e.tree.root)
	if root.laidOut && !root.needsLayout && root.ContainingWidth == width {
		return
	}
	e.measureBlock(e.tree.root, width, viewport, nil, false)
	e.logger.Debug("Laid out document.",
		zap.Int("width", width),
		zap.Int("height", root.Height))
}

// -- Style helpers --

func (e *Engine) style(id BoxID) *style.Style {
	s := e.doc.ComputedStyle(e.tree.Box(id).Node)
	if s == nil {
		return style.New()
	}
	return s
}

func scaled(px int, scale float64) int {
	return int(math.Round(float64(px) * scale))
}

// px converts a property of a style to device pixels.
func (e *Engine) px(s *style.Style, id style.Property) int {
	return scaled(s.Px(id), e.scale)
}

// pxOf converts a property to device pixels, resolving percentages against a
// base given in device pixels.
func (e *Engine) pxOf(s *style.Style, id style.Property, base int) int {
	return scaled(s.PxOf(id, int(math.Round(float64(base)/e.scale))), e.scale)
}

func (e *Engine) font(s *style.Style) Font {
	return fontOf(s, e.scale)
}

// horizontalBorder is the sum of the horizontal margins, borders and
// paddings of s.
func (e *Engine) horizontalBorder(s *style.Style, containingWidth int) int {
	return e.pxOf(s, style.MarginLeft, containingWidth) + e.pxOf(s, style.MarginRight, containingWidth) +
		e.px(s, style.BorderLeftWidth) + e.px(s, style.BorderRightWidth) +
		e.pxOf(s, style.PaddingLeft, containingWidth) + e.pxOf(s, style.PaddingRight, containingWidth)
}

// isHeightFixed reports whether the height of a box is known before its
// content is laid out: an absolute height, or a percentage of a parent whose
// height is known.
func (e *Engine) isHeightFixed(id BoxID) bool {
	s := e.style(id)
	if s.IsLengthFixed(style.Height) {
		return true
	}
	parent := e.tree.Box(id).Parent
	return s.Unit(style.Height) == style.UnitPercent && parent != NoBox && e.isHeightFixed(parent)
}

// fixedInnerHeight is the content height of a box whose height is fixed.
func (e *Engine) fixedInnerHeight(id BoxID) int {
	s := e.style(id)
	if s.IsLengthFixed(style.Height) {
		return e.px(s, style.Height)
	}
	parent := e.tree.Box(id).Parent
	if parent == NoBox {
		return 0
	}
	return e.pxOf(s, style.Height, e.fixedInnerHeight(parent))
}

// -- Intrinsic widths --

// MinimumWidth returns the narrowest width id can be laid out in without
// overflow, including its own margins, borders and paddings.
func (e *Engine) MinimumWidth(id BoxID, containingWidth int) int {
	e.intrinsicWidths(id, containingWidth)
	return e.tree.Box(id).minWidth
}

// MaximumWidth returns the width id takes when nothing wraps.
func (e *Engine) MaximumWidth(id BoxID, containingWidth int) int {
	e.intrinsicWidths(id, containingWidth)
	return e.tree.Box(id).maxWidth
}

func (e *Engine) intrinsicWidths(id BoxID, containingWidth int) {
	b := e.tree.Box(id)
	if b.widthValid && b.widthFor == containingWidth {
		return
	}
	switch b.Kind {
	case KindTable:
		e.formatTable(id, containingWidth, 0, true, false)
	case KindNative:
		e.nativeWidths(id, containingWidth)
	default:
		e.blockWidths(id, containingWidth)
	}
	b.widthFor = containingWidth
	b.widthValid = true
}
