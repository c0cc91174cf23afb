// internal/browser/dom/hints.go
package dom

import (
	"strconv"
	"strings"

	"github.com/xkilldash9x/htmlview/internal/browser/style"
)

// nonTextInputTypes are input types that do not get a size based width.
var nonTextInputTypes = []string{"checkbox", "cancel", "submit", "hidden", "radio", "image"}

// tableBorderColor is the color of borders requested by a border attribute.
const tableBorderColor = 0xffcccccc

// PresentationalHints translates legacy HTML attributes (align, width,
// bgcolor, table borders and spacing, font color, image spacing, form field
// sizes) into style values.
func (e Element) PresentationalHints(s *style.Style) {
	d, id := e.doc, e.id
	name := d.Name(id)

	align, ok := d.Attribute(id, "align")
	if !ok {
		align, ok = d.Attribute(id, "halign")
	}
	if ok {
		switch strings.ToLower(strings.TrimSpace(align)) {
		case "left":
			s.Set(style.TextAlign, style.KeywordLeft, style.UnitEnum)
		case "right":
			s.Set(style.TextAlign, style.KeywordRight, style.UnitEnum)
		case "center":
			s.Set(style.TextAlign, style.Center, style.UnitEnum)
		}
	}

	if v, ok := d.Attribute(id, "width"); ok {
		setLengthHint(s, style.Width, v)
	}
	if v, ok := d.Attribute(id, "height"); ok {
		setLengthHint(s, style.Height, v)
	}
	if v, ok := d.Attribute(id, "bgcolor"); ok {
		s.SetColor(style.BackgroundColor, v, 0)
	}

	switch name {
	case "table", "td", "th":
		table := name == "table"
		if v, ok := d.TableAttribute(id, "valign"); ok {
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "top":
				s.Set(style.VerticalAlign, style.KeywordTop, style.UnitEnum)
			case "bottom":
				s.Set(style.VerticalAlign, style.KeywordBottom, style.UnitEnum)
			case "center", "middle":
				s.Set(style.VerticalAlign, style.Middle, style.UnitEnum)
			}
		}
		if v, ok := d.TableAttribute(id, "border"); ok {
			border, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				border = 1
			}
			if !table {
				border = min(border, 1)
			}
			s.SetAt(style.BorderTopStyle|style.MultivalueTRBL, style.Solid, style.UnitEnum, 0)
			s.SetAt(style.BorderTopColor|style.MultivalueTRBL, tableBorderColor, style.UnitARGB, 0)
			s.SetAt(style.BorderTopWidth|style.MultivalueTRBL, 1000*border, style.UnitPx, 0)
		}
		if !table {
			if v, ok := d.TableAttribute(id, "cellpadding"); ok {
				padding, _ := strconv.Atoi(strings.TrimSpace(v))
				s.SetAt(style.PaddingTop|style.MultivalueTRBL, 1000*padding, style.UnitPx, 0)
			}
			if v, ok := d.TableAttribute(id, "cellspacing"); ok {
				spacing, _ := strconv.Atoi(strings.TrimSpace(v))
				s.SetAt(style.MarginTop|style.MultivalueTRBL, 500*spacing, style.UnitPx, 0)
			}
		}

	case "font":
		if v, ok := d.Attribute(id, "color"); ok {
			s.SetColor(style.Color, v, 0)
		}

	case "img":
		if i := d.AttributeInt(id, "vspace", -1); i >= 0 {
			s.Set(style.PaddingTop, 1000*i, style.UnitPx)
			s.Set(style.PaddingBottom, 1000*i, style.UnitPx)
		}
		if i := d.AttributeInt(id, "hspace", -1); i >= 0 {
			s.Set(style.PaddingLeft, 1000*i, style.UnitPx)
			s.Set(style.PaddingRight, 1000*i, style.UnitPx)
		}

	case "input":
		t, _ := d.Attribute(id, "type")
		if !s.IsSet(style.Width) && !containsFold(nonTextInputTypes, t) {
			// Two extra characters for the field decoration, at half an em
			// per character.
			size := d.AttributeInt(id, "size", 20)
			s.Set(style.Width, (size+2)*500, style.UnitEm)
		}

	case "textarea":
		if !s.IsSet(style.Width) {
			cols := d.AttributeInt(id, "cols", 20)
			s.Set(style.Width, (cols+2)*500, style.UnitEm)
		}
	}
}

// setLengthHint parses "N", "Npx" or "N%". Anything else is ignored.
func setLengthHint(s *style.Style, id style.Property, v string) {
	v = strings.TrimSpace(v)
	unit := style.UnitPx
	if p, ok := strings.CutSuffix(v, "%"); ok {
		v, unit = p, style.UnitPercent
	} else {
		v = strings.TrimSuffix(v, "px")
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	s.Set(id, 1000*n, unit)
}

func containsFold(list []string, s string) bool {
	for _, e := range list {
		if strings.EqualFold(e, s) {
			return true
		}
	}
	return false
}
