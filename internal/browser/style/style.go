// internal/browser/style/style.go
package style

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// DPI is the resolution used to convert absolute units to pixels.
const DPI = 96

// DefaultFontSize is the font size of an unstyled element, in points ×1000.
const DefaultFontSize = 12000

// Specificity weights. A declaration block's specificity is the sum of the
// weights of its selector's simple selectors; !important declarations are
// moved into their own band above every normal declaration.
const (
	SpecificityElement   = 1
	SpecificityClass     = 100 * SpecificityElement
	SpecificityID        = 100 * SpecificityClass
	SpecificityImportant = 100 * SpecificityID
)

// Style is a sparse table of CSS property values. Each slot holds a fixed
// point magnitude (×1000 for lengths) together with its unit; a bitset marks
// the slots that carry an explicit value. Unset slots read through a
// property specific default.
//
// A Style must be finalized with Inherit before layout reads it; after that
// it is treated as read-only.
type Style struct {
	values [PropertyCount]int
	units  [PropertyCount]Unit
	mask   uint64

	backgroundImage string
	fontFamily      string

	// Cascade ordering keys. Only meaningful for declaration blocks held by
	// a StyleSheet.
	Specificity int
	Nesting     []int
	Position    int
}

// New returns an empty style.
func New() *Style {
	return &Style{}
}

// Clone returns a deep copy of s.
func (s *Style) Clone() *Style {
	c := *s
	if s.Nesting != nil {
		c.Nesting = append([]int(nil), s.Nesting...)
	}
	return &c
}

// -- Set bounds --

// IsSet reports whether id carries an explicit value.
func (s *Style) IsSet(id Property) bool {
	return id >= 0 && int(id) < PropertyCount && s.mask&(1<<uint(id)) != 0
}

// FirstSet returns the lowest set property id, or PropertyCount if none is set.
func (s *Style) FirstSet() int {
	if s.mask == 0 {
		return PropertyCount
	}
	return bits.TrailingZeros64(s.mask)
}

// LastSet returns the highest set property id, or -1 if none is set.
func (s *Style) LastSet() int {
	return 63 - bits.LeadingZeros64(s.mask)
}

// Empty reports whether no property is set.
func (s *Style) Empty() bool {
	return s.mask == 0
}

func (s *Style) clear(id Property) {
	s.mask &^= 1 << uint(id)
	s.values[id] = 0
	s.units[id] = 0
}

// -- Setters --

// Set stores value with the given unit in a single property slot.
// Unrecognized and out of range ids are ignored.
func (s *Style) Set(id Property, value int, unit Unit) *Style {
	if id < 0 || int(id) >= PropertyCount {
		return s
	}
	s.values[id] = value
	s.units[id] = unit
	s.mask |= 1 << uint(id)
	return s
}

// SetAt stores a value that appeared at position pos of a (possibly
// shorthand) declaration. Shorthand ids and the TRBL / border flags are
// expanded into the elementary properties they stand for.
//
// For TRBL properties a value at pos 0 sets all four sides, pos 1 sets
// right and left, pos 2 sets bottom and pos 3 sets left, which yields the
// usual one to four value expansion when the values arrive in order.
func (s *Style) SetAt(id Property, value int, unit Unit, pos int) *Style {
	switch {
	case id&MultivalueBorder != 0:
		side := id &^ (MultivalueBorder | MultivalueTRBL)
		flags := id & MultivalueTRBL
		switch {
		case unit == UnitARGB:
			side += BorderTopColor
		case unit == UnitEnum && (value == Medium || value == Thin || value == Thick):
			side += BorderTopWidth
		case unit == UnitEnum:
			side += BorderTopStyle
		default:
			side += BorderTopWidth
		}
		return s.SetAt(side|flags, value, unit, 0)

	case id&MultivalueTRBL != 0:
		id &^= MultivalueTRBL
		switch pos {
		case 0:
			s.Set(id, value, unit)
			s.Set(id+1, value, unit)
			s.Set(id+2, value, unit)
			s.Set(id+3, value, unit)
		case 1:
			s.Set(id+1, value, unit)
			s.Set(id+3, value, unit)
		case 2:
			s.Set(id+2, value, unit)
		case 3:
			s.Set(id+3, value, unit)
		}
		return s
	}

	switch id {
	case ShorthandFont:
		switch {
		case unit == UnitNumber:
			s.Set(FontWeight, value, unit)
		case unit == UnitEnum && (value == Italic || value == Oblique):
			s.Set(FontStyle, value, unit)
		case unit == UnitPercent || (unit >= UnitCm && unit <= UnitPx):
			s.Set(FontSize, value, unit)
		}

	case ShorthandBackground:
		switch {
		case unit == UnitEnum && value == Inherit && pos == 0:
			s.Set(BackgroundColor, Inherit, UnitEnum)
			s.Set(BackgroundRepeat, Inherit, UnitEnum)
			s.Set(BackgroundPositionX, Inherit, UnitEnum)
			s.Set(BackgroundPositionY, Inherit, UnitEnum)
		case unit == UnitARGB:
			s.Set(BackgroundColor, value, unit)
		case unit == UnitEnum && (value == NoRepeat || value == Repeat || value == RepeatX || value == RepeatY):
			s.Set(BackgroundRepeat, value, unit)
		case unit == UnitEnum && (value == Scroll || value == Fixed):
			// attachment is not modelled
		case unit == UnitEnum && value == None:
			// background-image: none
		case !s.IsSet(BackgroundPositionX):
			s.Set(BackgroundPositionX, value, unit)
			s.Set(BackgroundPositionY, value, unit)
		default:
			s.Set(BackgroundPositionY, value, unit)
		}

	case ShorthandBackgroundPosition:
		if pos == 0 {
			s.Set(BackgroundPositionX, value, unit)
		}
		if pos <= 1 {
			s.Set(BackgroundPositionY, value, unit)
		}

	case ShorthandListStyle:
		switch {
		case pos == 0 && unit == UnitEnum && value == Inherit:
			s.Set(ListStylePosition, Inherit, UnitEnum)
			s.Set(ListStyleType, Inherit, UnitEnum)
		case unit == UnitEnum && (value == Inside || value == Outside):
			s.Set(ListStylePosition, value, unit)
		default:
			s.Set(ListStyleType, value, unit)
		}

	default:
		s.Set(id, value, unit)
	}
	return s
}

// Merge copies every property set in from into s, overwriting.
func (s *Style) Merge(from *Style) {
	if from == nil {
		return
	}
	for id := from.FirstSet(); id <= from.LastSet(); id++ {
		if from.IsSet(Property(id)) {
			s.Set(Property(id), from.values[id], from.units[id])
		}
	}
	if from.backgroundImage != "" {
		s.backgroundImage = from.backgroundImage
	}
	if from.fontFamily != "" {
		s.fontFamily = from.fontFamily
	}
}

// SetFontFamily sets the font-family string slot.
func (s *Style) SetFontFamily(family string) *Style {
	s.fontFamily = family
	return s.Set(FontFamily, 0, UnitString)
}

// SetBackgroundImage sets the background-image URL slot.
func (s *Style) SetBackgroundImage(url string) *Style {
	s.backgroundImage = url
	return s.Set(BackgroundImage, 0, UnitString)
}

// FontFamilyName returns the font-family string slot.
func (s *Style) FontFamilyName() string { return s.fontFamily }

// BackgroundImageURL returns the background-image string slot.
func (s *Style) BackgroundImageURL() string { return s.backgroundImage }

// -- Inheritance --

var emptyStyle Style

// Inherit resolves s against its parent's resolved style. Explicit inherit
// keywords take the parent's value; unset inherited text properties copy it.
// Relative font sizes are resolved against the parent's font size and
// percentage line heights against the element's own font size.
//
// A nil parent stands for the root, resolving against the defaults.
func (s *Style) Inherit(from *Style) {
	if from == nil {
		from = &emptyStyle
	}
	lo := min(s.FirstSet(), from.FirstSet())
	hi := max(s.LastSet(), from.LastSet())

	for id := lo; id <= hi; id++ {
		p := Property(id)
		if s.IsSet(p) {
			if s.units[id] != UnitEnum || s.values[id] != Inherit {
				continue
			}
			switch p {
			case BackgroundImage:
				s.backgroundImage = from.backgroundImage
			case FontFamily:
				s.fontFamily = from.fontFamily
			}
			if from.IsSet(p) {
				s.Set(p, from.values[id], from.units[id])
			} else {
				s.clear(p)
			}
		} else if p.IsInherited() && from.IsSet(p) {
			if p == FontFamily {
				s.fontFamily = from.fontFamily
			}
			s.Set(p, from.values[id], from.units[id])
		}
	}

	if s.IsSet(FontSize) {
		base := from.fontMilliPx()
		v := s.values[FontSize]
		switch s.units[FontSize] {
		case UnitPercent:
			s.Set(FontSize, base*v/100000, UnitPx)
		case UnitEm:
			s.Set(FontSize, base*v/1000, UnitPx)
		case UnitEx:
			s.Set(FontSize, base*v/2000, UnitPx)
		}
	}
	if s.IsSet(LineHeight) && s.units[LineHeight] == UnitPercent {
		s.Set(LineHeight, s.fontMilliPx()*s.values[LineHeight]/100000, UnitPx)
	}
}

// -- Getters --

// Raw returns the stored magnitude of id, or its default when unset. A
// percentage height reads as auto; callers that can resolve it check the
// unit first.
func (s *Style) Raw(id Property) int {
	if s.IsSet(id) {
		if id == Height && s.units[id] == UnitPercent {
			return Auto
		}
		return s.values[id]
	}
	switch id {
	case BorderTopWidth, BorderRightWidth, BorderBottomWidth, BorderLeftWidth:
		return Medium
	case Bottom, Height, Left, Right, TableLayout, Top, Width:
		return Auto
	case Color:
		return 0xff000000
	case Display:
		return Inline
	case FontSize:
		return DefaultFontSize
	case FontWeight:
		return WeightNormal
	case LineHeight:
		return 100000
	case ListStyleType:
		return Disc
	case Position:
		return Static
	case BackgroundRepeat:
		return Repeat
	}
	return 0
}

// Unit returns the unit of id, or the unit of its default when unset.
func (s *Style) Unit(id Property) Unit {
	if s.IsSet(id) {
		return s.units[id]
	}
	switch id {
	case BackgroundPositionX, BackgroundPositionY, LineHeight:
		return UnitPercent
	case BackgroundColor, Color:
		return UnitARGB
	case FontWeight:
		return UnitNumber
	case FontSize:
		return UnitPt
	}
	return UnitEnum
}

// Enum returns the keyword code of id, or Invalid if id does not hold a
// keyword.
func (s *Style) Enum(id Property) int {
	if s.Unit(id) == UnitEnum {
		return s.Raw(id)
	}
	return Invalid
}

// Color returns the ARGB value of id, or 0 (transparent) if id does not hold
// a color.
func (s *Style) Color(id Property) uint32 {
	if s.Unit(id) == UnitARGB {
		return uint32(s.Raw(id))
	}
	return 0
}

// IsLengthFixed reports whether id holds an absolute or font relative length.
func (s *Style) IsLengthFixed(id Property) bool {
	u := s.Unit(id)
	return u == UnitNumber || (u >= UnitCm && u <= UnitPx)
}

// IsLengthFixedOrPercent reports whether id holds a length or a percentage.
func (s *Style) IsLengthFixedOrPercent(id Property) bool {
	return s.Unit(id) == UnitPercent || s.IsLengthFixed(id)
}

// IsBlock reports whether the element generates a block box. With full set,
// only block, list-item and table displays (and absolute positioning)
// qualify; otherwise any display other than inline does.
func (s *Style) IsBlock(full bool) bool {
	display := s.Enum(Display)
	if display == Block || display == Table || display == ListItem || s.Enum(Position) == Absolute {
		return true
	}
	if full {
		return false
	}
	return display != Inline
}

// Px converts id to CSS pixels. Percentages resolve to 0 here; use PxOf to
// supply a base. Border widths are 0 when the matching border style is none.
func (s *Style) Px(id Property) int {
	if id >= BorderTopWidth && id <= BorderLeftWidth {
		if s.Raw(id-BorderTopWidth+BorderTopStyle) == None {
			return 0
		}
		if s.Unit(id) == UnitEnum {
			switch s.Raw(id) {
			case Thin:
				return 1
			case Thick:
				return 3
			default:
				return 2
			}
		}
		if s.Raw(id) < 0 {
			return 0
		}
	}
	return s.toMilliPx(id) / 1000
}

// PxOf converts id to CSS pixels, resolving a percentage against base.
func (s *Style) PxOf(id Property, base int) int {
	if s.IsSet(id) && s.units[id] == UnitPercent {
		return base * s.values[id] / 100000
	}
	return s.Px(id)
}

// FontPx returns the resolved font size in pixels.
func (s *Style) FontPx() int {
	return s.fontMilliPx() / 1000
}

// LineHeightPx returns the line height in pixels; normal line height is the
// font size.
func (s *Style) LineHeightPx() int {
	v := s.Raw(LineHeight)
	switch s.Unit(LineHeight) {
	case UnitPercent:
		return s.fontMilliPx() * v / 100000 / 1000
	case UnitNumber:
		return s.fontMilliPx() * v / 1000 / 1000
	}
	return s.Px(LineHeight)
}

func (s *Style) fontMilliPx() int {
	if !s.IsSet(FontSize) {
		return DefaultFontSize * DPI / 72
	}
	v := s.values[FontSize]
	switch s.units[FontSize] {
	case UnitPercent:
		return DefaultFontSize * DPI / 72 * v / 100000
	case UnitEm:
		return DefaultFontSize * DPI / 72 * v / 1000
	case UnitEx:
		return DefaultFontSize * DPI / 72 * v / 2000
	}
	return s.toMilliPx(FontSize)
}

// toMilliPx converts a length to pixels ×1000. Keyword, color and string
// values, as well as percentages, convert to 0.
func (s *Style) toMilliPx(id Property) int {
	v := s.Raw(id)
	if v == 0 {
		return 0
	}
	switch s.Unit(id) {
	case UnitEm:
		return v * s.fontMilliPx() / 1000
	case UnitEx:
		return v * s.fontMilliPx() / 2000
	case UnitIn:
		return v * DPI
	case UnitCm:
		return v * DPI * 100 / 254
	case UnitMm:
		return v * DPI * 10 / 254
	case UnitPt:
		return v * DPI / 72
	case UnitPc:
		return v * DPI / 6
	case UnitPx, UnitNumber:
		return v
	}
	return 0
}

// BackgroundReferencePoint resolves a background position property for an
// image of the given length inside a container of the given length.
func (s *Style) BackgroundReferencePoint(id Property, containerLength, imageLength int) int {
	var percent int
	switch s.Unit(id) {
	case UnitEnum:
		switch s.Raw(id) {
		case Center:
			percent = 50
		case KeywordRight, KeywordBottom:
			percent = 100
		default:
			return 0
		}
	case UnitPercent:
		percent = s.Raw(id) / 1000
	default:
		return s.Px(id)
	}
	return (containerLength - imageLength) * percent / 100
}

// -- Ordering --

// CompareSpecificity orders two declaration blocks for the cascade: by
// specificity, then by nesting path (the positions of the enclosing import
// statements), then by position within the innermost sheet.
func (s *Style) CompareSpecificity(o *Style) int {
	if s.Specificity != o.Specificity {
		if s.Specificity > o.Specificity {
			return 1
		}
		return -1
	}
	n := min(len(s.Nesting), len(o.Nesting))
	for i := 0; i < n; i++ {
		if s.Nesting[i] != o.Nesting[i] {
			return s.Nesting[i] - o.Nesting[i]
		}
	}
	p1, p2 := s.Position, o.Position
	if len(s.Nesting) > n {
		p1 = s.Nesting[n]
	}
	if len(o.Nesting) > n {
		p2 = o.Nesting[n]
	}
	return p1 - p2
}

// -- Formatting --

// Value renders the value of id as CSS text, or "" if id is unset.
func (s *Style) Value(id Property) string {
	if !s.IsSet(id) {
		return ""
	}
	switch id {
	case BackgroundImage:
		return "url(" + s.backgroundImage + ")"
	case FontFamily:
		return s.fontFamily
	}
	v := s.values[id]
	unit := s.units[id]
	switch unit {
	case UnitARGB:
		return fmt.Sprintf("#%06x", v&0xffffff)
	case UnitEnum:
		return EnumName(v)
	case UnitString:
		return ""
	}
	var sb strings.Builder
	if v%1000 == 0 {
		sb.WriteString(strconv.Itoa(v / 1000))
	} else {
		if v < 0 {
			sb.WriteByte('-')
			v = -v
		}
		sb.WriteString(strconv.Itoa(v / 1000))
		sb.WriteByte('.')
		sb.WriteString(strings.TrimRight(fmt.Sprintf("%03d", v%1000), "0"))
	}
	if int(unit) < len(unitNames) {
		sb.WriteString(unitNames[unit])
	}
	return sb.String()
}

// String renders the set properties as a CSS declaration list.
func (s *Style) String() string {
	var sb strings.Builder
	s.write(&sb, "")
	return sb.String()
}

func (s *Style) write(sb *strings.Builder, indent string) {
	for id := 0; id < PropertyCount; id++ {
		p := Property(id)
		if s.IsSet(p) {
			fmt.Fprintf(sb, "%s%s: %s;\n", indent, p.Name(), s.Value(p))
		}
	}
}
