package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkSetMatch(t *testing.T) {
	marks := NewMarkSet("")

	for _, s := range []string{"<", "<<", "q|e", "! *", "x", "X", "F", "e|<<"} {
		assert.True(t, marks.Match(s), s)
	}
	for _, s := range []string{"", "|", "3Lz", "Info", "<|", "?", "ee3"} {
		assert.False(t, marks.Match(s), s)
	}
}

func TestMarkSetExtraSymbols(t *testing.T) {
	marks := NewMarkSet("?q-")

	assert.Equal(t, DefaultMarkSymbols+"?-", marks.Symbols())
	assert.True(t, marks.Match("?"))
	assert.True(t, marks.Match("<-"))
	assert.False(t, marks.Match("a"))
}
