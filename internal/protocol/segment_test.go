package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegment(t *testing.T) {
	summary := func(rank float64) Line { return Line{Number(rank), Text("A"), Text("USA"), Number(1)} }
	element := Line{Number(1), Text("3Lz"), Number(5.9)}
	component := Line{Text("Skating Skills"), Number(1), Number(5.75)}

	tests := []struct {
		name       string
		lines      []Line
		wantBlocks []int
	}{
		{"empty", nil, nil},
		{"single skater", []Line{summary(1), element, component}, []int{3}},
		{
			name:       "two skaters",
			lines:      []Line{summary(1), element, element, component, component, summary(2), element, component},
			wantBlocks: []int{5, 3},
		},
		{
			name:       "leading text lines stay in the first block",
			lines:      []Line{component, summary(1), element, component},
			wantBlocks: []int{1, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := Segment(tt.lines)
			var sizes []int
			for _, b := range blocks {
				sizes = append(sizes, len(b))
			}
			assert.Equal(t, tt.wantBlocks, sizes)
		})
	}
}

func TestSegmentIsLossless(t *testing.T) {
	var lines []Line
	for i := 0; i < 40; i++ {
		switch i % 7 {
		case 0, 1, 2:
			lines = append(lines, Line{Number(float64(i)), Number(1)})
		case 3:
			lines = append(lines, Line{Text("component"), Number(float64(i))})
		default:
			lines = append(lines, Line{Text("x"), Number(1)})
		}
	}

	blocks := Segment(lines)
	require.NotEmpty(t, blocks)

	var joined []Line
	for _, b := range blocks {
		require.NotEmpty(t, b)
		joined = append(joined, b...)
	}
	assert.Equal(t, lines, joined)
}

func TestSegmentBlocksDoNotAlias(t *testing.T) {
	lines := []Line{
		{Number(1), Text("a")},
		{Text("b"), Number(1)},
		{Number(2), Text("c")},
	}
	blocks := Segment(lines)
	require.Len(t, blocks, 2)

	blocks[0] = append(blocks[0], Line{Text("extra")})
	assert.Equal(t, Number(2), lines[2][0])
}
