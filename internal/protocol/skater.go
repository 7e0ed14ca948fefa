package protocol

import (
	"fmt"
	"strings"
)

const (
	elementFixedColumns   = 4 // element order, element, base value, GOE
	componentFixedColumns = 2 // component, factor

	infoAnnotation = "Info"
)

// Summary is the first row of a competitor block
type Summary struct {
	Rank        Token
	Name        string
	Nation      string
	StartNumber Token
	TSS         Token
	TES         Token
	PCS         Token
	Deductions  Token
}

// ElementRow is one row of the technical element table
type ElementRow struct {
	Order      Token
	Element    Token
	BaseValue  Token
	GOE        Token
	Judges     []Token
	PanelScore Token
	Marks      string
	SecondHalf bool
}

// ComponentRow is one row of the program component table
type ComponentRow struct {
	Component  Token
	Factor     Token
	Judges     []Token
	PanelScore Token
}

// SkaterRecord is the parsed protocol of one competitor
type SkaterRecord struct {
	Summary    Summary
	Elements   []ElementRow
	Components []ComponentRow
}

// Document identifies the protocol a block came from
type Document struct {
	Competition string
	Source      string
	Season      int
	Category    string
	Layout      Layout
}

// Parser turns competitor blocks into skater records
type Parser struct {
	rules *LayoutRules
	marks *MarkSet
}

// NewParser creates a parser. Nil arguments select the defaults.
func NewParser(rules *LayoutRules, marks *MarkSet) *Parser {
	if rules == nil {
		rules = DefaultLayoutRules()
	}
	if marks == nil {
		marks = NewMarkSet("")
	}
	return &Parser{rules: rules, marks: marks}
}

// Layout returns the layout the parser applies to a document
func (p *Parser) Layout(competition string, season int) Layout {
	return p.rules.Lookup(competition, season)
}

// ParseSkater parses one competitor block. Any error is a *ParseError and means the
// whole block must be skipped; warnings describe degraded but usable rows.
func (p *Parser) ParseSkater(block Block, doc Document) (*SkaterRecord, []Warning, error) {
	if len(block) == 0 {
		return nil, nil, &ParseError{Competition: doc.Competition, Source: doc.Source, Err: ErrColumnCount}
	}

	first, err := repairSummary(block[0], doc.Layout.SummaryColumns)
	if err != nil {
		return nil, nil, &ParseError{
			Competition: doc.Competition,
			Source:      doc.Source,
			Skater:      skaterLabel(block[0]),
			Row:         block[0],
			Err:         err,
		}
	}
	summary := newSummary(first, doc.Layout)

	rows := block[1:]
	tesIdx, pcsIdx, ok := findBoundaries(rows, summary.TES, summary.PCS)
	if !ok {
		return nil, nil, &ParseError{
			Competition: doc.Competition,
			Source:      doc.Source,
			Skater:      summary.Name,
			Row:         first,
			Err:         fmt.Errorf("%w: tes %s, pcs %s", ErrBoundaryNotFound, summary.TES, summary.PCS),
		}
	}

	rec := &SkaterRecord{Summary: summary}
	w := warner{doc: doc, skater: summary.Name}

	elementRows := make([]Line, 0, tesIdx)
	for _, row := range rows[:tesIdx] {
		norm, marks, secondHalf := p.normalizeElement(row)
		if unknown := trailingStrings(norm, 2); len(unknown) > 0 {
			w.add(WarnUnrecognizedMark, fmt.Sprintf("unrecognized tokens %q in row %s", unknown, norm))
		}
		elementRows = append(elementRows, norm)

		fixed, judges, panel := spread(norm, elementFixedColumns)
		rec.Elements = append(rec.Elements, ElementRow{
			Order:      fixed[0],
			Element:    fixed[1],
			BaseValue:  fixed[2],
			GOE:        fixed[3],
			Judges:     judges,
			PanelScore: panel,
			Marks:      strings.Join(marks, " "),
			SecondHalf: secondHalf,
		})
	}
	w.checkWidths("TES", elementRows)

	componentRows := rows[tesIdx+1 : pcsIdx]
	for _, row := range componentRows {
		fixed, judges, panel := spread(row, componentFixedColumns)
		rec.Components = append(rec.Components, ComponentRow{
			Component:  fixed[0],
			Factor:     fixed[1],
			Judges:     judges,
			PanelScore: panel,
		})
	}
	w.checkWidths("PCS", componentRows)

	return rec, w.warnings, nil
}

// repairSummary validates the column count of the summary row. A row one column short
// with a single string token had its name and nation merged; it is split on the last
// space. Every other mismatch is an error.
func repairSummary(row Line, want int) (Line, error) {
	if len(row) == want {
		return row, nil
	}
	if len(row) == want-1 && row.countStrings() == 1 {
		repaired := splitHeaderToken(row)
		if len(repaired) == want {
			return repaired, nil
		}
	}
	return nil, fmt.Errorf("%w: got %d, want %d", ErrColumnCount, len(row), want)
}

func splitHeaderToken(row Line) Line {
	for i, t := range row {
		if !t.IsString() {
			continue
		}
		idx := strings.LastIndex(t.Str, " ")
		if idx < 0 {
			return row
		}
		out := make(Line, 0, len(row)+1)
		out = append(out, row[:i]...)
		out = append(out, Text(strings.TrimSpace(t.Str[:idx])), ParseToken(t.Str[idx+1:]))
		return append(out, row[i+1:]...)
	}
	return row
}

func newSummary(row Line, layout Layout) Summary {
	n := len(row)
	s := Summary{
		Rank:       row[0],
		Name:       row[1].String(),
		Nation:     row[2].String(),
		TSS:        row[n-4],
		TES:        row[n-3],
		PCS:        row[n-2],
		Deductions: row[n-1],
	}
	if layout.StartNumber {
		s.StartNumber = row[3]
	}
	return s
}

// findBoundaries locates the two-token subtotal rows that close the technical table
// (ending in the TES) and the component table (ending in the PCS). The PCS row must
// come strictly after the TES row.
func findBoundaries(rows []Line, tes, pcs Token) (int, int, bool) {
	if !tes.IsNumber() || !pcs.IsNumber() {
		return -1, -1, false
	}

	tesIdx := -1
	for i, row := range rows {
		if len(row) != 2 || !row[1].IsNumber() {
			continue
		}
		if tesIdx < 0 {
			if row[1].Num == tes.Num {
				tesIdx = i
			}
			continue
		}
		if row[1].Num == pcs.Num {
			return tesIdx, i, true
		}
	}
	return -1, -1, false
}

// normalizeElement applies the technical-row repairs in order: placeholders for
// invalid or unnamed elements, "Info" removal, the second-half flag and marks.
func (p *Parser) normalizeElement(row Line) (Line, []string, bool) {
	row = row.Clone()

	switch {
	case len(row) >= 2 && isZero(row[0]) && isZero(row[1]):
		row = append(Line{Text("0"), Text("Invalid")}, row...)
	case len(row) < 2 || !row[1].IsString():
		row = insertAt(row, 1, Text("Invalid"))
	}

	row = stripInfo(row)

	secondHalf := false
	kept := row[:0]
	for i, t := range row {
		if i >= 2 && t.IsString() && (t.Str == "x" || t.Str == "X") {
			secondHalf = true
			continue
		}
		kept = append(kept, t)
	}
	row = kept

	var marks []string
	kept = row[:0]
	for i, t := range row {
		if i >= 2 && t.IsString() && p.marks.Match(t.Str) {
			marks = append(marks, t.Str)
			continue
		}
		kept = append(kept, t)
	}

	return kept, marks, secondHalf
}

// stripInfo drops "Info" tokens and removes the word from tokens it was glued to
func stripInfo(row Line) Line {
	out := row[:0]
	for _, t := range row {
		if t.IsString() && strings.Contains(t.Str, infoAnnotation) {
			s := strings.TrimSpace(strings.ReplaceAll(t.Str, infoAnnotation, ""))
			if s == "" {
				continue
			}
			t = Text(s)
		}
		out = append(out, t)
	}
	return out
}

// spread assigns the leading fixed columns from the left and the panel score from
// the right; whatever is in between belongs to the judges.
func spread(row Line, fixedColumns int) ([]Token, []Token, Token) {
	fixed := make([]Token, fixedColumns)
	if len(row) == 0 {
		return fixed, nil, Token{}
	}

	body := row[:len(row)-1]
	copy(fixed, body)

	var judges []Token
	if len(body) > fixedColumns {
		judges = append([]Token(nil), body[fixedColumns:]...)
	}
	return fixed, judges, row[len(row)-1]
}

func trailingStrings(row Line, from int) []string {
	var out []string
	for i := from; i < len(row); i++ {
		if row[i].IsString() {
			out = append(out, row[i].Str)
		}
	}
	return out
}

func insertAt(row Line, i int, t Token) Line {
	if i > len(row) {
		i = len(row)
	}
	row = append(row, Token{})
	copy(row[i+1:], row[i:])
	row[i] = t
	return row
}

func isZero(t Token) bool {
	return t.IsNumber() && t.Num == 0
}

func skaterLabel(row Line) string {
	if len(row) > 1 {
		return row[1].String()
	}
	return row.String()
}

// warner collects the warnings of one skater block
type warner struct {
	doc      Document
	skater   string
	warnings []Warning
}

func (w *warner) add(kind WarningKind, detail string) {
	w.warnings = append(w.warnings, Warning{
		Kind:        kind,
		Competition: w.doc.Competition,
		Source:      w.doc.Source,
		Skater:      w.skater,
		Detail:      detail,
	})
}

// checkWidths warns when the rows of one table disagree on their column count;
// downstream consumers must then cope with ragged judge counts.
func (w *warner) checkWidths(table string, rows []Line) {
	if len(rows) == 0 {
		return
	}
	widths := make([]int, len(rows))
	ragged := false
	for i, row := range rows {
		widths[i] = len(row)
		if widths[i] != widths[0] {
			ragged = true
		}
	}
	if ragged {
		w.add(WarnRaggedColumns, fmt.Sprintf("%s rows have different lengths %v", table, widths))
	}
}
