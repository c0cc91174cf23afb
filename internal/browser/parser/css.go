// internal/browser/parser/css.go
package parser

import (
	"strings"

	"go.uber.org/zap"
)

// TokenType identifies the kind of token produced by the Tokenizer.
// Single character symbols ('{', ':', ';', ...) are reported as their own
// rune value, so all named token types are negative.
type TokenType int32

const (
	EOF        TokenType = -1
	Ident      TokenType = -2
	AtKeyword  TokenType = -3
	String     TokenType = -4
	Hash       TokenType = -6
	Number     TokenType = -7
	Percentage TokenType = -8
	Dimension  TokenType = -9
	URI        TokenType = -10
	Whitespace TokenType = -14
	Function   TokenType = -16
	Includes   TokenType = -17 // ~=
	DashMatch  TokenType = -18 // |=
)

// symbols are returned as single character tokens.
const symbols = "~|<>+*()[]{}.,;:%=!@#"

const (
	endOfInput    = -1
	uninitialized = -99
)

func (t TokenType) String() string {
	switch t {
	case EOF:
		return "EOF"
	case Ident:
		return "IDENT"
	case AtKeyword:
		return "ATKEYWORD"
	case String:
		return "STRING"
	case Hash:
		return "HASH"
	case Number:
		return "NUMBER"
	case Percentage:
		return "PERCENTAGE"
	case Dimension:
		return "DIMENSION"
	case URI:
		return "URI"
	case Whitespace:
		return "S"
	case Function:
		return "FUNCTION"
	case Includes:
		return "INCLUDES"
	case DashMatch:
		return "DASHMATCH"
	}
	if t > 0 {
		return string(rune(t))
	}
	return "UNKNOWN"
}

// -- Tokenizer --

// Tokenizer splits CSS source text into tokens. It is permissive: there is no
// failure mode, unexpected input is reported through the debug logger and
// skipped.
//
// Numeric tokens carry their value as a fixed point integer scaled by 1000 in
// NumericValue; the unit (for dimensions) or textual content (for identifiers,
// strings, hashes, URIs, functions and at-keywords) is in StringValue.
type Tokenizer struct {
	Type         TokenType
	StringValue  string
	NumericValue int

	input    []rune
	pos      int
	next     int
	line     int
	source   string
	logger   *zap.Logger
	reported int
}

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// WithLogger routes diagnostics to the given logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Tokenizer) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithSource records the URL the CSS text was loaded from, for diagnostics.
func WithSource(url string) Option {
	return func(t *Tokenizer) { t.source = url }
}

// NewTokenizer creates a tokenizer for the given CSS text and reads the first
// token, so Type is valid immediately after construction.
func NewTokenizer(input string, opts ...Option) *Tokenizer {
	t := &Tokenizer{
		input:  []rune(input),
		next:   uninitialized,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.NextToken(false)
	return t
}

// Line returns the zero based line number of the current read position.
func (t *Tokenizer) Line() int {
	return t.line
}

// Source returns the URL passed via WithSource.
func (t *Tokenizer) Source() string {
	return t.source
}

// Diagnostics returns the number of problems reported through Debug.
func (t *Tokenizer) Diagnostics() int {
	return t.reported
}

// NextToken advances to the next token and returns its type. Whitespace is
// skipped unless reportWhitespace is set, in which case a run of whitespace
// yields a single Whitespace token.
func (t *Tokenizer) NextToken(reportWhitespace bool) TokenType {
	t.StringValue = ""
	t.NumericValue = 0

	if t.next == uninitialized {
		t.next = t.read()
	}
	if t.next == endOfInput {
		t.Type = EOF
		return EOF
	}

	if t.next <= ' ' {
		t.skipWhitespace()
		if reportWhitespace {
			t.Type = Whitespace
			return Whitespace
		}
		if t.next == endOfInput {
			t.Type = EOF
			return EOF
		}
	}

	switch c := t.next; {
	case c == '.':
		t.next = t.read()
		if isDigit(t.next) {
			t.readNumeric(true)
		} else {
			t.Type = '.'
		}

	case c == '@':
		t.next = t.read()
		t.StringValue = t.readIdentifier()
		t.Type = AtKeyword

	case c == '#':
		var sb strings.Builder
		t.next = t.read()
		for isNameChar(t.next) {
			sb.WriteRune(rune(t.next))
			t.next = t.read()
		}
		t.StringValue = sb.String()
		t.Type = Hash

	case c == '/':
		t.next = t.read()
		switch t.next {
		case '/':
			for t.next != '\n' && t.next != '\r' && t.next != endOfInput {
				t.next = t.read()
			}
			return t.NextToken(reportWhitespace)
		case '*':
			t.skipBlockComment()
			return t.NextToken(reportWhitespace)
		default:
			t.Type = '/'
		}

	case c == '\'' || c == '"':
		t.next = t.read()
		t.StringValue = t.readString(c)
		t.Type = String

	case c == '-':
		t.next = t.read()
		if isDigit(t.next) || t.next == '.' {
			t.readNumeric(false)
			t.NumericValue = -t.NumericValue
		} else {
			t.StringValue = "-" + t.readIdentifier()
			t.identifierOrFunction()
		}

	case isDigit(c):
		t.readNumeric(false)

	case c == '~' || c == '|':
		t.next = t.read()
		if t.next == '=' {
			if c == '~' {
				t.Type = Includes
			} else {
				t.Type = DashMatch
			}
			t.next = uninitialized
		} else {
			t.Type = TokenType(c)
		}

	case strings.ContainsRune(symbols, rune(c)):
		t.Type = TokenType(c)
		t.next = uninitialized

	default:
		t.StringValue = t.readIdentifier()
		t.identifierOrFunction()
	}
	return t.Type
}

// identifierOrFunction classifies a just-read identifier, consuming the
// argument of url(...) completely.
func (t *Tokenizer) identifierOrFunction() {
	if t.next != '(' {
		t.Type = Ident
		return
	}
	if !strings.EqualFold(t.StringValue, "url") {
		t.Type = Function
		t.next = uninitialized
		return
	}

	t.next = t.read()
	t.skipWhitespace()
	switch q := t.next; q {
	case '\'', '"':
		t.next = t.read()
		t.StringValue = t.readString(q)
		t.next = t.read()
		t.skipWhitespace()
		if t.next != ')' {
			t.Debug("expected ')' after url string")
		}
		t.next = uninitialized
	default:
		t.StringValue = strings.TrimSpace(t.readString(')'))
	}
	t.Type = URI
}

// -- Readers --

func (t *Tokenizer) read() int {
	if t.pos >= len(t.input) {
		return endOfInput
	}
	c := t.input[t.pos]
	t.pos++
	return int(c)
}

func (t *Tokenizer) skipWhitespace() {
	for t.next <= ' ' && t.next != endOfInput {
		if t.next == '\n' {
			t.line++
		}
		t.next = t.read()
	}
}

func (t *Tokenizer) skipBlockComment() {
	t.next = t.read()
	prev := 0
	for t.next != endOfInput && !(prev == '*' && t.next == '/') {
		if t.next == '\n' {
			t.line++
		}
		prev = t.next
		t.next = t.read()
	}
	t.next = uninitialized
}

// readIdentifier reads up to the next symbol or whitespace character.
func (t *Tokenizer) readIdentifier() string {
	var sb strings.Builder
	for t.next != endOfInput && t.next > ' ' && !strings.ContainsRune(symbols, rune(t.next)) {
		if t.next == '\\' {
			sb.WriteRune(t.readEscape())
			continue
		}
		sb.WriteRune(rune(t.next))
		t.next = t.read()
	}
	return sb.String()
}

// readString reads up to (and consumes) the terminating character. Line
// breaks also terminate a string.
func (t *Tokenizer) readString(quote int) string {
	var sb strings.Builder
	for t.next != quote && t.next != endOfInput && t.next != '\n' && t.next != '\r' {
		if t.next == '\\' {
			sb.WriteRune(t.readEscape())
			continue
		}
		sb.WriteRune(rune(t.next))
		t.next = t.read()
	}
	t.next = uninitialized
	return sb.String()
}

// readEscape decodes a backslash escape with up to 6 hex digits. A single
// whitespace character after a hex escape is swallowed.
func (t *Tokenizer) readEscape() rune {
	t.next = t.read()
	digits := 0
	result := 0
	for digits < 6 && isHexDigit(t.next) {
		result = result*16 + hexValue(t.next)
		digits++
		t.next = t.read()
	}
	if digits == 0 {
		if t.next == endOfInput {
			return '\\'
		}
		result = t.next
		t.next = t.read()
	} else if t.next != endOfInput && t.next <= ' ' {
		t.next = t.read()
	}
	return rune(result)
}

// readNumeric reads a number such as 0.3, .3 or 999 into NumericValue
// (scaled by 1000), followed by an optional '%' or unit identifier.
func (t *Tokenizer) readNumeric(fraction bool) {
	var val int64
	var div int64
	if fraction {
		div = 1
	}
	for isDigit(t.next) || (t.next == '.' && div == 0) {
		if t.next == '.' {
			div = 1
		} else {
			if val < 1e12 {
				val = val*10 + int64(t.next-'0')
				if div != 0 {
					div *= 10
				}
			}
		}
		t.next = t.read()
	}
	val *= 1000
	if div != 0 {
		val /= div
	}
	t.NumericValue = int(val)

	switch {
	case t.next == '%':
		t.Type = Percentage
		t.StringValue = "%"
		t.next = uninitialized
	case isLetter(t.next):
		var sb strings.Builder
		for isLetter(t.next) {
			sb.WriteRune(rune(t.next))
			t.next = t.read()
		}
		t.Type = Dimension
		t.StringValue = strings.ToLower(sb.String())
	default:
		t.Type = Number
	}
}

// -- Diagnostics --

// Debug records a diagnostic about the current token.
func (t *Tokenizer) Debug(msg string) {
	t.reported++
	t.logger.Debug(msg,
		zap.Int("line", t.line),
		zap.String("token_type", t.Type.String()),
		zap.String("token", t.StringValue),
		zap.Int("value", t.NumericValue),
		zap.String("source", t.source),
	)
}

// Expect reports a diagnostic if the current token is not of the given type.
func (t *Tokenizer) Expect(tt TokenType) bool {
	if t.Type != tt {
		t.Debug("expected " + tt.String())
		return false
	}
	return true
}

// SkipStatement resynchronizes at the next statement boundary: it consumes
// tokens up to and including ';' or a balanced '{...}' block, stopping in
// front of an unbalanced '}'.
func (t *Tokenizer) SkipStatement() {
	for {
		switch t.Type {
		case EOF, '}':
			return
		case ';':
			t.NextToken(false)
			return
		case '{':
			t.SkipBlock()
			return
		}
		t.NextToken(false)
	}
}

// SkipBlock consumes a '{' ... '}' block including nested blocks. The
// tokenizer must be positioned on the opening brace.
func (t *Tokenizer) SkipBlock() {
	depth := 0
	for t.Type != EOF {
		switch t.Type {
		case '{':
			depth++
		case '}':
			depth--
			if depth <= 0 {
				t.NextToken(false)
				return
			}
		}
		t.NextToken(false)
	}
}

func isDigit(c int) bool  { return c >= '0' && c <= '9' }
func isLetter(c int) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func isNameChar(c int) bool {
	return isDigit(c) || isLetter(c) || c == '-' || c == '_'
}

func isHexDigit(c int) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexValue(c int) int {
	switch {
	case isDigit(c):
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
