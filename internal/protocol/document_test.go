package protocol

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoSkaters is a modern protocol page as the text extractor renders it
var twoSkaters = []string{
	"ISU World Championships 2015",
	"MEN SHORT PROGRAM JUDGES DETAILS PER SKATER",
	"Rank  Name  Nation  Starting Number  Total Segment Score  Total Element Score  Total Program Component Score (factored)  Total Deductions",
	"1  Jane SMITH  USA  12  12.34  6.50  5.84  0.00",
	"#  Executed Elements  Info  Base Value  GOE  J1  J2  J3  Ref  Scores of Panel",
	"1  3Lz  <  5.90  0.60  1  1  1  6.50",
	"5.90  6.50",
	"Program Components  Factor",
	"Skating Skills  1.00  5.75  6.00  5.75  5.84",
	"Program Components Score (factored)  5.84",
	"Deductions:  0.00",
	"2  Ann LEE  CAN  7  11.00  5.00  6.00  -1.00",
	"1  3T  4.30  0.70  1  1  2  5.00",
	"4.30  5.00",
	"Skating Skills  1.00  6.00  6.00  6.00  6.00",
	"Program Components Score (factored)  6.00",
	"Deductions:  Falls:  -1.00  -1.00",
	"Printed: 28.03.2015 14:20",
}

func TestParseDocument(t *testing.T) {
	doc := Document{Competition: "wc2015", Source: "wc2015_Men_SP_Scores.pdf", Season: 2015, Category: "Men"}

	result := NewParser(nil, nil).ParseDocument(twoSkaters, doc)
	require.Empty(t, result.Failures)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, 2, result.Skaters)
	assert.Equal(t, Layout{SummaryColumns: 8, StartNumber: true}, result.Document.Layout)

	require.Len(t, result.Rows, 4)
	assert.Equal(t, []string{ComponentTES, ComponentPCS, ComponentTES, ComponentPCS}, components(result.Rows))

	first := result.Rows[0]
	assert.Equal(t, "Jane SMITH", first.Name)
	assert.Equal(t, "USA", first.Nation)
	assert.Equal(t, Number(12), first.Stn)
	assert.Equal(t, Text("3Lz"), first.Element)
	assert.Equal(t, "<", first.Marks)
	assert.Equal(t, doc.Source, first.Source)
	assert.Equal(t, "Men", first.Category)

	last := result.Rows[3]
	assert.Equal(t, "Ann LEE", last.Name)
	assert.Equal(t, Number(-1), last.Deductions)
	assert.Equal(t, Text("Skating Skills"), last.Element)
	assert.Equal(t, Number(1), last.Factor)
	assert.True(t, last.ElementOrder.IsEmpty())
}

// TestRowsRoundTrip rebuilds the protocol lines from the parsed rows and checks
// that the reassembled rows match what went in, subtotal rows included.
func TestRowsRoundTrip(t *testing.T) {
	doc := Document{Competition: "wc2015", Source: "s.pdf", Season: 2015}
	p := NewParser(nil, nil)

	lines := []string{
		"1  Jane SMITH  USA  12  12.34  6.50  5.84  0.00",
		"1  3Lz  5.90  0.60  1  1  1  6.50",
		"5.90  6.50",
		"Skating Skills  1.00  5.75  6.00  5.75  5.84",
		"Program Components Score (factored)  5.84",
	}
	result := p.ParseDocument(lines, doc)
	require.Equal(t, 1, result.Skaters)

	var rebuilt []string
	for _, r := range result.Rows {
		var cells []Token
		switch r.Component {
		case ComponentTES:
			cells = append(cells, r.ElementOrder, r.Element, r.BaseValue, r.GOE)
		case ComponentPCS:
			cells = append(cells, r.Element, r.Factor)
		}
		cells = append(cells, r.Judges...)
		cells = append(cells, r.PanelScore)
		rebuilt = append(rebuilt, joinCells(cells))
	}

	want := Classify([]string{lines[1], lines[3]}, result.Document.Layout)
	got := Classify(rebuilt, result.Document.Layout)
	assert.Equal(t, want, got)

	// the subtotals close each table
	sum := result.Rows[0]
	assert.Equal(t, sum.TES, SplitLine(lines[2], result.Document.Layout)[1])
	assert.Equal(t, sum.PCS, SplitLine(lines[4], result.Document.Layout)[1])
}

func TestParseDocumentReversed(t *testing.T) {
	plain := []string{
		"1  Jane SMITH  USA  12.34  6.50  5.84  0.00",
		"1  3Lz  <  5.90  0.60  1  1  1  6.50",
		"2  3F  5.83 x  0.50  1  0  1  6.33",
		"11.73  6.50",
		"Skating Skills  1.00  5.75  6.00  5.75  5.84",
		"Program Components Score (factored)  5.84",
		"2  Ann LEE  CAN  11.00  5.00  6.00  0.00",
		"1  3T  4.30  0.70  1  1  2  5.00",
		"4.30  5.00",
		"Skating Skills  1.00  6.00  6.00  6.00  6.00",
		"Program Components Score (factored)  6.00",
	}

	p := NewParser(nil, nil)
	want := p.ParseDocument(plain, Document{Competition: "wc2004", Source: "s.pdf", Season: 2004})
	got := p.ParseDocument(reverseDocument(plain), Document{Competition: "gpusa2004", Source: "s.pdf", Season: 2004})

	require.True(t, got.Document.Layout.Reversed)
	require.Empty(t, got.Failures)
	assert.Equal(t, 2, got.Skaters)
	assert.Equal(t, want.Rows, got.Rows)
}

func TestParseDocumentSkipsBrokenSkater(t *testing.T) {
	lines := append([]string{
		"3  Bob  12  11.00  5.00  6.00  0.00",
		"1  3T  4.30  0.70  1  1  2  5.00",
		"Skating Skills  1.00  6.00  6.00  6.00  6.00",
	}, twoSkaters...)

	result := NewParser(nil, nil).ParseDocument(lines, Document{Competition: "wc2015", Source: "s.pdf", Season: 2015})
	assert.Equal(t, 2, result.Skaters)
	require.Len(t, result.Failures, 1)
	assert.ErrorIs(t, result.Failures[0], ErrColumnCount)
	assert.Equal(t, "s.pdf", result.Failures[0].Source)
	assert.Len(t, result.Rows, 4)
}

func TestParseDocumentEmpty(t *testing.T) {
	result := NewParser(nil, nil).ParseDocument([]string{"no data here"}, Document{Competition: "wc2015", Season: 2015})
	assert.Zero(t, result.Skaters)
	assert.Empty(t, result.Rows)
	assert.Empty(t, result.Failures)
}

func TestRowJSON(t *testing.T) {
	result := NewParser(nil, nil).ParseDocument(twoSkaters, Document{Competition: "wc2015", Source: "s.pdf", Season: 2015})
	require.NotEmpty(t, result.Rows)

	data, err := json.Marshal(result.Rows[1])
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "PCS", m["component"])
	assert.Nil(t, m["element_order"])
	assert.Equal(t, "Skating Skills", m["element"])
	assert.Equal(t, 12.0, m["stn"])
	assert.NotContains(t, m, "marks")
}

func components(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Component
	}
	return out
}

func joinCells(cells []Token) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = c.String()
	}
	return strings.Join(parts, "  ")
}

// reverseDocument renders lines the way 2004 Grand Prix protocols print them:
// lines bottom to top with the columns right to left.
func reverseDocument(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		fields := splitFields(line)
		reverseInPlace(fields)
		out[len(lines)-1-i] = strings.Join(fields, "  ")
	}
	return out
}
