package protocol

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// columnDelimiter is the gap the text extractor leaves between table columns
	columnDelimiter = regexp.MustCompile(` {2,}`)

	// joinedNumber matches the first piece of a field such as "5.30 x" or "2 <"
	joinedNumber = regexp.MustCompile(`^-?\d+([.,]\d+)?$`)
)

// SplitLine classifies one raw text line into tokens. It returns nil when the line is
// not a data row: data rows are never empty and always end in a number (the panel score).
func SplitLine(text string, layout Layout) Line {
	fields := splitFields(text)
	line := make(Line, 0, len(fields))
	for _, f := range fields {
		line = append(line, ParseToken(f))
	}

	if layout.Reversed {
		reverseInPlace(line)
	}

	if len(line) == 0 || !line[len(line)-1].IsNumber() {
		return nil
	}

	line = splitLeadingColumn(line)
	return splitJoinedNumbers(line)
}

// Classify runs SplitLine over every line of a document and keeps the data rows
func Classify(texts []string, layout Layout) []Line {
	lines := make([]Line, 0, len(texts))
	for _, text := range texts {
		if line := SplitLine(text, layout); line != nil {
			lines = append(lines, line)
		}
	}
	return lines
}

// splitFields splits on runs of two or more spaces and drops empty fields
func splitFields(text string) []string {
	raw := columnDelimiter.Split(text, -1)
	fields := make([]string, 0, len(raw))
	for _, f := range raw {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// splitLeadingColumn separates an element number that was glued to its label,
// e.g. "1 3Lz" becomes 1 and "3Lz".
func splitLeadingColumn(line Line) Line {
	first := line[0]
	if !first.IsString() || first.Str == "" {
		return line
	}
	if r, _ := utf8.DecodeRuneInString(first.Str); !unicode.IsDigit(r) {
		return line
	}

	head, rest, found := strings.Cut(first.Str, " ")
	out := make(Line, 0, len(line)+1)
	out = append(out, ParseToken(head))
	if found && strings.TrimSpace(rest) != "" {
		out = append(out, Text(strings.TrimSpace(rest)))
	}
	return append(out, line[1:]...)
}

// splitJoinedNumbers splits string tokens that start with a number into their
// space-separated pieces, e.g. "5.30 x 4.20" becomes 5.30, "x", 4.20.
func splitJoinedNumbers(line Line) Line {
	out := make(Line, 0, len(line))
	for _, t := range line {
		if !t.IsString() {
			out = append(out, t)
			continue
		}
		pieces := strings.Fields(t.Str)
		if len(pieces) == 0 || !joinedNumber.MatchString(pieces[0]) {
			out = append(out, t)
			continue
		}
		for _, p := range pieces {
			out = append(out, ParseToken(p))
		}
	}
	return out
}

func reverseInPlace[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
