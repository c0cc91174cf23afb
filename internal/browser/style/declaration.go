// internal/browser/style/declaration.go
package style

import (
	"strconv"
	"strings"

	"github.com/xkilldash9x/htmlview/internal/browser/parser"
)

// ReadDeclarations parses a bare declaration list such as the contents of a
// style attribute.
func (s *Style) ReadDeclarations(css string, opts ...parser.Option) {
	s.Read(parser.NewTokenizer(css, opts...))
}

// Read parses declarations from t until EOF or a closing brace, which is
// left unconsumed. Unknown properties and values are reported through the
// tokenizer's debug hook and dropped. A declaration marked !important
// raises the specificity of s to the important band.
func (s *Style) Read(t *parser.Tokenizer) {
	s.read(t, nil)
}

// read parses a declaration block. When important is non-nil, declarations
// marked !important are stored there instead of in s.
func (s *Style) read(t *parser.Tokenizer, important *Style) {
	for t.Type != parser.EOF && t.Type != '}' {
		decl := &Style{}
		if t.Type == parser.Ident {
			decl.readDeclaration(t)
		}

		target := s
		if t.Type == '!' {
			t.NextToken(false)
			if t.Type == parser.Ident && strings.EqualFold(t.StringValue, "important") {
				if important != nil {
					target = important
				} else {
					s.Specificity = SpecificityImportant
				}
				t.NextToken(false)
			}
		}
		target.Merge(decl)

		for t.Type != parser.EOF && t.Type != ';' && t.Type != '}' {
			t.Debug("skipping")
			t.NextToken(false)
		}
		for t.Type == ';' {
			t.NextToken(false)
		}
	}
}

func (s *Style) readDeclaration(t *parser.Tokenizer) {
	name := strings.ToLower(t.StringValue)
	id, ok := LookupProperty(name)
	if !ok {
		t.Debug("unrecognized property")
		id = Unrecognized
	}
	t.NextToken(false)
	if t.Type != ':' {
		return
	}
	t.NextToken(false)

	var family []string
	for pos := 0; ; pos++ {
		switch t.Type {
		case parser.Hash:
			s.SetColor(id, "#"+t.StringValue, pos)

		case parser.Dimension:
			unit := unitIndex(t.StringValue)
			if unit < 0 {
				t.Debug("unsupported unit")
				break
			}
			s.SetAt(id, t.NumericValue, unit, pos)

		case parser.Number:
			s.SetAt(id, t.NumericValue, UnitNumber, pos)

		case parser.Percentage:
			s.SetAt(id, t.NumericValue, UnitPercent, pos)

		case parser.Ident:
			kw, known := keywordValues[strings.ToLower(t.StringValue)]
			switch {
			case id == LineHeight && strings.EqualFold(t.StringValue, "normal"):
				s.Set(LineHeight, 100000, UnitPercent)
			case known && !(id == FontFamily && kw.unit != UnitEnum):
				s.SetAt(id, kw.value, kw.unit, pos)
			case id == ShorthandFont || id == FontFamily:
				family = appendFamilyWord(family, t.StringValue)
			default:
				t.Debug("unrecognized value for " + name)
			}

		case parser.URI:
			if id == ShorthandBackground || id == BackgroundImage {
				s.SetBackgroundImage(t.StringValue)
			}

		case ',':
			if id == ShorthandFont || id == FontFamily {
				family = append(family, ",")
			}

		case parser.String:
			if id == ShorthandFont || id == FontFamily {
				family = appendFamilyWord(family, t.StringValue)
			}

		default:
			if len(family) > 0 {
				s.SetFontFamily(strings.Join(family, ""))
			}
			return
		}
		t.NextToken(false)
	}
}

func appendFamilyWord(family []string, word string) []string {
	if n := len(family); n > 0 && family[n-1] != "," {
		family = append(family, " ")
	}
	return append(family, word)
}

func unitIndex(name string) Unit {
	for i, n := range unitNames {
		if i > 0 && strings.EqualFold(n, name) {
			return Unit(i)
		}
	}
	return -1
}

// SetColor sets a color property from "#rgb", "#rrggbb" or a color keyword.
// Invalid colors are ignored.
func (s *Style) SetColor(id Property, color string, pos int) {
	if strings.HasPrefix(color, "#") {
		hex := color[1:]
		if len(hex) != 3 && len(hex) != 6 {
			return
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return
		}
		value := int(v)
		if len(hex) == 3 {
			value = (value & 0x00f) | ((value & 0x0ff) << 4) |
				((value & 0xff0) << 8) | ((value & 0xf00) << 12)
		}
		s.SetAt(id, 0xff000000|value, UnitARGB, pos)
		return
	}
	if kw, ok := keywordValues[strings.ToLower(strings.TrimSpace(color))]; ok && kw.unit == UnitARGB {
		s.SetAt(id, kw.value, UnitARGB, pos)
	}
}
