package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayoutLookup(t *testing.T) {
	rules := NewLayoutRules([]LayoutOverride{
		{Competition: "EC2012", SummaryColumns: 7},
		{Competition: "ec2012", Season: 2013, StartNumber: true},
		{Competition: "  "},
	})

	tests := []struct {
		name   string
		comp   string
		season int
		want   Layout
	}{
		{"legacy", "wc2006", 2006, Layout{SummaryColumns: 7}},
		{"modern", "wc2015", 2015, Layout{SummaryColumns: 8, StartNumber: true}},
		{"early start number", "wjc2009", 2008, Layout{SummaryColumns: 8, StartNumber: true}},
		{"case insensitive", "WC2009", 2008, Layout{SummaryColumns: 8, StartNumber: true}},
		{"grand prix 2004 is reversed", "gpusa2004", 2004, Layout{SummaryColumns: 7, Reversed: true}},
		{"grand prix 2005 is not", "gpusa2005", 2005, Layout{SummaryColumns: 7}},
		{"season-less override", "ec2012", 2012, Layout{SummaryColumns: 7}},
		{"season override wins", "ec2012", 2013, Layout{SummaryColumns: 8, StartNumber: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.Lookup(tt.comp, tt.season))
		})
	}
}

func TestDefaultLayoutRulesIgnoreOverrides(t *testing.T) {
	assert.Equal(t, Layout{SummaryColumns: 8, StartNumber: true}, DefaultLayoutRules().Lookup("ec2012", 2013))
}
