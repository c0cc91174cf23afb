// internal/browser/style/values.go
package style

// Property identifies a CSS property slot in a Style. The first
// TextPropertyCount ids are text properties; all of them except
// BackgroundColor and Display are inherited implicitly.
type Property int

const (
	BackgroundColor Property = iota
	BorderCollapse
	BorderSpacing
	CaptionSide
	Color
	Display
	EmptyCells
	FontFamily
	FontSize
	FontStyle
	FontVariant
	FontWeight
	LineHeight
	ListStylePosition
	ListStyleType
	TextAlign
	TextDecoration
	TextIndent
	TextTransform
	Visibility
	WhiteSpace

	BackgroundImage
	BackgroundPositionX
	BackgroundPositionY
	BackgroundRepeat

	BorderTopColor
	BorderRightColor
	BorderBottomColor
	BorderLeftColor
	BorderTopWidth
	BorderRightWidth
	BorderBottomWidth
	BorderLeftWidth
	BorderTopStyle
	BorderRightStyle
	BorderBottomStyle
	BorderLeftStyle

	Bottom
	Clear
	Clip
	Float
	Height
	Left
	MarginTop
	MarginRight
	MarginBottom
	MarginLeft
	Overflow
	PaddingTop
	PaddingRight
	PaddingBottom
	PaddingLeft
	Position
	Right
	TableLayout
	Top
	VerticalAlign
	Width
	ZIndex

	BorderTopSpacing
	BorderRightSpacing
	BorderBottomSpacing
	BorderLeftSpacing

	// PropertyCount is the number of regular property slots.
	PropertyCount int = iota
)

// TextPropertyCount is the number of leading text properties.
const TextPropertyCount = int(WhiteSpace) + 1

// Shorthand flags and pseudo ids accepted by Style.SetAt. The TRBL flag fans
// a value out over the four sides starting at the or-ed side property; the
// border flag routes a value to the color, style or width quadruple
// depending on its unit and keyword.
const (
	MultivalueTRBL   Property = 0x10000
	MultivalueBorder Property = 0x20000

	ShorthandBackground         Property = 0x1000
	ShorthandBackgroundPosition Property = 0x1001
	ShorthandFont               Property = 0x1002
	ShorthandListStyle          Property = 0x1003

	Unrecognized Property = 0x1234
)

// Unit is the unit of a property value.
type Unit int8

const (
	UnitNumber Unit = iota
	UnitPercent
	UnitCm
	UnitEm
	UnitEx
	UnitIn
	UnitMm
	UnitPc
	UnitPt
	UnitPx

	UnitEnum   Unit = 16
	UnitARGB   Unit = 17
	UnitString Unit = 18
)

var unitNames = [...]string{"", "%", "cm", "em", "ex", "in", "mm", "pc", "pt", "px"}

// Enum keyword codes. Side keywords (top, right, bottom, left) use the code
// of the corresponding offset property.
const (
	None    = 0
	Auto    = 1001
	Inherit = 1002
	Hidden  = 1003
	Invalid = 1004

	Absolute   = 1100
	Baseline   = 1101
	Both       = 1102
	Center     = 1103
	Fixed      = 1105
	Hide       = 1106
	Inside     = 1107
	Justify    = 1108
	Medium     = 1109
	Middle     = 1110
	NoRepeat   = 1111
	NoWrap     = 1112
	Outside    = 1113
	Pre        = 1114
	PreWrap    = 1115
	PreLine    = 1116
	Relative   = 1117
	Repeat     = 1118
	RepeatX    = 1119
	RepeatY    = 1120
	Scroll     = 1121
	Show       = 1124
	Static     = 1125
	TextTop    = 1126
	TextBottom = 1127
	Thick      = 1128
	Thin       = 1129
	Collapse   = 1130
	Separate   = 1131

	Inline           = 1201
	Block            = 1202
	InlineBlock      = 1204
	ListItem         = 1205
	Table            = 1206
	InlineTable      = 1207
	TableRow         = 1208
	TableRowGroup    = 1209
	TableHeaderGroup = 1210
	TableFooterGroup = 1211
	TableColumn      = 1212
	TableColumnGroup = 1213
	TableCell        = 1214
	TableCaption     = 1215

	Square  = 1301
	Circle  = 1302
	Disc    = 1303
	Decimal = 1304

	Dotted = 1401
	Dashed = 1402
	Solid  = 1403
	Double = 1404
	Groove = 1405
	Ridge  = 1406
	Inset  = 1407
	Outset = 1408

	Capitalize = 1500
	Italic     = 1501
	Oblique    = 1502
	Sub        = 1503
	Super      = 1504
	Underline  = 1505
	Uppercase  = 1506
	Lowercase  = 1507

	KeywordTop    = int(Top)
	KeywordRight  = int(Right)
	KeywordBottom = int(Bottom)
	KeywordLeft   = int(Left)
)

// Font weights are numbers scaled by 1000.
const (
	WeightNormal = 400000
	WeightBold   = 700000
)

// keyword is a value table entry: a code together with its unit.
type keyword struct {
	value int
	unit  Unit
}

var (
	nameToProperty = map[string]Property{}
	propertyToName = map[Property]string{}
	keywordValues  = map[string]keyword{}
	enumNames      = map[int]string{}
)

var sideNames = [4]string{"-top", "-right", "-bottom", "-left"}

func addName(name string, id Property) {
	nameToProperty[name] = id
	propertyToName[id] = name
}

func addValue(name string, value int, unit Unit) {
	keywordValues[name] = keyword{value, unit}
	if unit == UnitEnum {
		if _, ok := enumNames[value]; !ok {
			enumNames[value] = name
		}
	}
}

func init() {
	addName("background", ShorthandBackground)
	addName("background-color", BackgroundColor)
	addName("background-image", BackgroundImage)
	addName("background-position", ShorthandBackgroundPosition)
	addName("background-repeat", BackgroundRepeat)
	addName("border", MultivalueBorder|MultivalueTRBL)
	addName("border-collapse", BorderCollapse)
	addName("border-color", MultivalueTRBL|BorderTopColor)
	addName("border-style", MultivalueTRBL|BorderTopStyle)
	addName("border-width", MultivalueTRBL|BorderTopWidth)
	addName("border-spacing", MultivalueTRBL|BorderTopSpacing)
	addName("bottom", Bottom)
	addName("caption-side", CaptionSide)
	addName("clear", Clear)
	addName("clip", Clip)
	addName("color", Color)
	addName("display", Display)
	addName("empty-cells", EmptyCells)
	addName("float", Float)
	addName("font", ShorthandFont)
	addName("font-family", FontFamily)
	addName("font-size", FontSize)
	addName("font-style", FontStyle)
	addName("font-variant", FontVariant)
	addName("font-weight", FontWeight)
	addName("height", Height)
	addName("left", Left)
	addName("line-height", LineHeight)
	addName("list-style", ShorthandListStyle)
	addName("list-style-position", ListStylePosition)
	addName("list-style-type", ListStyleType)
	addName("margin", MultivalueTRBL|MarginTop)
	addName("overflow", Overflow)
	addName("padding", MultivalueTRBL|PaddingTop)
	addName("position", Position)
	addName("right", Right)
	addName("table-layout", TableLayout)
	addName("text-align", TextAlign)
	addName("text-decoration", TextDecoration)
	addName("text-indent", TextIndent)
	addName("text-transform", TextTransform)
	addName("top", Top)
	addName("vertical-align", VerticalAlign)
	addName("visibility", Visibility)
	addName("white-space", WhiteSpace)
	addName("width", Width)
	addName("z-index", ZIndex)

	for i, side := range sideNames {
		p := Property(i)
		addName("border"+side+"-color", BorderTopColor+p)
		addName("border"+side+"-style", BorderTopStyle+p)
		addName("border"+side+"-width", BorderTopWidth+p)
		addName("border"+side+"-spacing", BorderTopSpacing+p)
		addName("border"+side, MultivalueBorder|p)
		addName("margin"+side, MarginTop+p)
		addName("padding"+side, PaddingTop+p)
	}

	addValue("none", None, UnitEnum)
	addValue("auto", Auto, UnitEnum)
	addValue("inherit", Inherit, UnitEnum)
	addValue("hidden", Hidden, UnitEnum)

	addValue("normal", WeightNormal, UnitNumber)
	addValue("lighter", WeightNormal, UnitNumber)
	addValue("bold", WeightBold, UnitNumber)
	addValue("bolder", WeightBold, UnitNumber)

	addValue("inline", Inline, UnitEnum)
	addValue("block", Block, UnitEnum)
	addValue("inline-block", InlineBlock, UnitEnum)
	addValue("list-item", ListItem, UnitEnum)
	addValue("table", Table, UnitEnum)
	addValue("inline-table", InlineTable, UnitEnum)
	addValue("table-row", TableRow, UnitEnum)
	addValue("table-row-group", TableRowGroup, UnitEnum)
	addValue("table-header-group", TableHeaderGroup, UnitEnum)
	addValue("table-footer-group", TableFooterGroup, UnitEnum)
	addValue("table-column", TableColumn, UnitEnum)
	addValue("table-column-group", TableColumnGroup, UnitEnum)
	addValue("table-cell", TableCell, UnitEnum)
	addValue("table-caption", TableCaption, UnitEnum)

	addValue("absolute", Absolute, UnitEnum)
	addValue("baseline", Baseline, UnitEnum)
	addValue("both", Both, UnitEnum)
	addValue("center", Center, UnitEnum)
	addValue("fixed", Fixed, UnitEnum)
	addValue("hide", Hide, UnitEnum)
	addValue("inside", Inside, UnitEnum)
	addValue("justify", Justify, UnitEnum)
	addValue("medium", Medium, UnitEnum)
	addValue("middle", Middle, UnitEnum)
	addValue("no-repeat", NoRepeat, UnitEnum)
	addValue("nowrap", NoWrap, UnitEnum)
	addValue("outside", Outside, UnitEnum)
	addValue("pre", Pre, UnitEnum)
	addValue("pre-wrap", PreWrap, UnitEnum)
	addValue("pre-line", PreLine, UnitEnum)
	addValue("relative", Relative, UnitEnum)
	addValue("repeat", Repeat, UnitEnum)
	addValue("repeat-x", RepeatX, UnitEnum)
	addValue("repeat-y", RepeatY, UnitEnum)
	addValue("scroll", Scroll, UnitEnum)
	addValue("show", Show, UnitEnum)
	addValue("static", Static, UnitEnum)
	addValue("text-top", TextTop, UnitEnum)
	addValue("text-bottom", TextBottom, UnitEnum)
	addValue("thick", Thick, UnitEnum)
	addValue("thin", Thin, UnitEnum)
	addValue("collapse", Collapse, UnitEnum)
	addValue("separate", Separate, UnitEnum)

	addValue("square", Square, UnitEnum)
	addValue("circle", Circle, UnitEnum)
	addValue("disc", Disc, UnitEnum)
	addValue("decimal", Decimal, UnitEnum)

	addValue("dotted", Dotted, UnitEnum)
	addValue("dashed", Dashed, UnitEnum)
	addValue("solid", Solid, UnitEnum)
	addValue("double", Double, UnitEnum)
	addValue("groove", Groove, UnitEnum)
	addValue("ridge", Ridge, UnitEnum)
	addValue("inset", Inset, UnitEnum)
	addValue("outset", Outset, UnitEnum)

	addValue("capitalize", Capitalize, UnitEnum)
	addValue("italic", Italic, UnitEnum)
	addValue("oblique", Oblique, UnitEnum)
	addValue("sub", Sub, UnitEnum)
	addValue("super", Super, UnitEnum)
	addValue("underline", Underline, UnitEnum)
	addValue("uppercase", Uppercase, UnitEnum)
	addValue("lowercase", Lowercase, UnitEnum)

	addValue("top", KeywordTop, UnitEnum)
	addValue("right", KeywordRight, UnitEnum)
	addValue("bottom", KeywordBottom, UnitEnum)
	addValue("left", KeywordLeft, UnitEnum)

	addValue("transparent", 0, UnitARGB)
	addValue("aqua", 0xff00ffff, UnitARGB)
	addValue("black", 0xff000000, UnitARGB)
	addValue("blue", 0xff0000ff, UnitARGB)
	addValue("fuchsia", 0xffff00ff, UnitARGB)
	addValue("gray", 0xff808080, UnitARGB)
	addValue("grey", 0xff808080, UnitARGB)
	addValue("green", 0xff008000, UnitARGB)
	addValue("lime", 0xff00ff00, UnitARGB)
	addValue("maroon", 0xff800000, UnitARGB)
	addValue("navy", 0xff000080, UnitARGB)
	addValue("olive", 0xff808000, UnitARGB)
	addValue("orange", 0xffffa500, UnitARGB)
	addValue("pink", 0xffffc0cb, UnitARGB)
	addValue("purple", 0xff800080, UnitARGB)
	addValue("red", 0xffff0000, UnitARGB)
	addValue("silver", 0xffc0c0c0, UnitARGB)
	addValue("teal", 0xff008080, UnitARGB)
	addValue("white", 0xffffffff, UnitARGB)
	addValue("yellow", 0xffffff00, UnitARGB)
}

// LookupProperty maps a lower case CSS property name to its id (possibly
// or-ed with shorthand flags).
func LookupProperty(name string) (Property, bool) {
	id, ok := nameToProperty[name]
	return id, ok
}

// Name returns the CSS name of a property id.
func (p Property) Name() string {
	if n, ok := propertyToName[p]; ok {
		return n
	}
	return "?"
}

// IsText reports whether p is one of the leading text properties.
func (p Property) IsText() bool {
	return p >= 0 && int(p) < TextPropertyCount
}

// IsInherited reports whether p is inherited implicitly.
func (p Property) IsInherited() bool {
	return p.IsText() && p != BackgroundColor && p != Display
}

// EnumName returns the keyword for an enum code, or "" if unknown.
func EnumName(code int) string {
	return enumNames[code]
}
