package protocol

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Kind tells whether a token holds a number, a string, or nothing
type Kind uint8

const (
	KindEmpty Kind = iota
	KindNumber
	KindString
)

// Token is a single cell of a protocol line
type Token struct {
	Kind Kind
	Num  float64
	Str  string
}

// Number returns a numeric token
func Number(v float64) Token {
	return Token{Kind: KindNumber, Num: v}
}

// Text returns a string token
func Text(s string) Token {
	return Token{Kind: KindString, Str: s}
}

// IsNumber reports whether the token holds a number
func (t Token) IsNumber() bool { return t.Kind == KindNumber }

// IsString reports whether the token holds a string
func (t Token) IsString() bool { return t.Kind == KindString }

// IsEmpty reports whether the token is a missing cell
func (t Token) IsEmpty() bool { return t.Kind == KindEmpty }

// String renders the token the way it would appear in the protocol
func (t Token) String() string {
	switch t.Kind {
	case KindNumber:
		return strconv.FormatFloat(t.Num, 'f', -1, 64)
	case KindString:
		return t.Str
	default:
		return ""
	}
}

// MarshalJSON encodes numbers as JSON numbers, strings as strings and empty cells as null
func (t Token) MarshalJSON() ([]byte, error) {
	switch t.Kind {
	case KindNumber:
		return json.Marshal(t.Num)
	case KindString:
		return json.Marshal(t.Str)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON is the inverse of MarshalJSON
func (t *Token) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		*t = Token{}
	case float64:
		*t = Number(x)
	case string:
		*t = Text(x)
	default:
		return fmt.Errorf("unsupported token value %s", string(data))
	}
	return nil
}

// commaDecimal matches European formatted decimals such as "5,75"
var commaDecimal = regexp.MustCompile(`^[-+]?\d+,\d+$`)

// ParseNumber parses a finite decimal, accepting a comma as the decimal separator
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if commaDecimal.MatchString(s) {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseToken turns a field into a number token when possible, otherwise a string token
func ParseToken(field string) Token {
	if v, ok := ParseNumber(field); ok {
		return Number(v)
	}
	return Text(field)
}

// Line is one classified text line of a protocol (a RawLine)
type Line []Token

// Clone returns a copy of the line that can be modified freely
func (l Line) Clone() Line {
	out := make(Line, len(l))
	copy(out, l)
	return out
}

// String renders the line for diagnostics, e.g. [1 | SMITH Jane | USA | 12.34]
func (l Line) String() string {
	parts := make([]string, len(l))
	for i, t := range l {
		parts[i] = t.String()
	}
	return "[" + strings.Join(parts, " | ") + "]"
}

func (l Line) startsWithString() bool {
	return len(l) > 0 && l[0].IsString()
}

func (l Line) startsWithNumber() bool {
	return len(l) > 0 && l[0].IsNumber()
}

func (l Line) countStrings() int {
	n := 0
	for _, t := range l {
		if t.IsString() {
			n++
		}
	}
	return n
}

// Block is the contiguous run of lines that belongs to one competitor
type Block []Line
