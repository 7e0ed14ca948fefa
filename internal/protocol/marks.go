package protocol

import (
	"regexp"
	"strings"
)

// DefaultMarkSymbols are the single-character annotations printed next to element
// scores: ! and e for edge calls, q, < and << for rotation calls, * for invalid
// elements, S and F for falls and similar, x and X for the second-half bonus.
const DefaultMarkSymbols = "!qe<*>SFxX"

// MarkSet recognizes annotation-mark tokens. Marks may be repeated and joined by a
// pipe or whitespace, e.g. "<<", "q|e" or "! *".
type MarkSet struct {
	symbols string
	pattern *regexp.Regexp
}

// NewMarkSet returns the default symbols extended with extra
func NewMarkSet(extra string) *MarkSet {
	var b strings.Builder
	seen := make(map[rune]bool)
	for _, r := range DefaultMarkSymbols + extra {
		if seen[r] || r == '|' || r == ' ' {
			continue
		}
		seen[r] = true
		b.WriteRune(r)
	}
	symbols := b.String()

	class := "[" + classEscape(symbols) + "]"
	return &MarkSet{
		symbols: symbols,
		pattern: regexp.MustCompile(`^(?:` + class + `[|\s]?)*` + class + `$`),
	}
}

// Symbols returns the recognized mark characters
func (m *MarkSet) Symbols() string {
	return m.symbols
}

// Match reports whether s consists only of mark symbols and joiners
func (m *MarkSet) Match(s string) bool {
	return m.pattern.MatchString(s)
}

// classEscape escapes the characters that are special inside a regexp class
func classEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`\]^-[`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
