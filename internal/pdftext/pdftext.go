// Package pdftext extracts reading-order text lines from PDF protocol documents.
//
// Lines are rebuilt from positioned glyphs. Glyphs on the same baseline form a line,
// and the horizontal gap between neighbouring glyphs decides whether they are joined
// directly, by one space, or by the two-space column delimiter the protocol parser
// splits on.
package pdftext

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"
)

// ErrMalformed is returned when the PDF library fails on a document
var ErrMalformed = errors.New("malformed pdf")

// columnDelimiter separates table columns in an extracted line
const columnDelimiter = "  "

// Options tune line assembly. Gaps are multiples of the glyph's font size, the row
// tolerance is in points.
type Options struct {
	WordGap      float64 `koanf:"word_gap"`
	ColumnGap    float64 `koanf:"column_gap"`
	RowTolerance float64 `koanf:"row_tolerance"`
}

// DefaultOptions returns options that work for ISU protocols
func DefaultOptions() Options {
	return Options{
		WordGap:      0.15,
		ColumnGap:    0.9,
		RowTolerance: 2.0,
	}
}

// Page holds the lines of one page, top to bottom
type Page struct {
	Number int
	Lines  []string
}

// Text returns the page as newline separated text
func (p Page) Text() string {
	return strings.Join(p.Lines, "\n")
}

// Extractor reads PDF files
type Extractor struct {
	opts Options
}

// New creates an extractor. Zero option fields fall back to the defaults.
func New(opts Options) *Extractor {
	def := DefaultOptions()
	if opts.WordGap <= 0 {
		opts.WordGap = def.WordGap
	}
	if opts.ColumnGap <= 0 {
		opts.ColumnGap = def.ColumnGap
	}
	if opts.RowTolerance <= 0 {
		opts.RowTolerance = def.RowTolerance
	}
	return &Extractor{opts: opts}
}

// ExtractFile returns the text lines of every page of a PDF file
func (e *Extractor) ExtractFile(ctx context.Context, path string) (pages []Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: %s: %v", ErrMalformed, path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pages = append(pages, Page{
			Number: i,
			Lines:  assembleLines(p.Content().Text, e.opts),
		})
	}

	return pages, nil
}

type row struct {
	yMin, yMax float64
	glyphs     []pdf.Text
}

// assembleLines groups glyphs into lines by baseline and joins each line left to right
func assembleLines(glyphs []pdf.Text, opts Options) []string {
	var rows []*row
	for _, g := range glyphs {
		if strings.TrimSpace(g.S) == "" {
			continue
		}

		var target *row
		for _, r := range rows {
			if g.Y >= r.yMin-opts.RowTolerance && g.Y <= r.yMax+opts.RowTolerance {
				target = r
				break
			}
		}
		if target == nil {
			target = &row{yMin: g.Y, yMax: g.Y}
			rows = append(rows, target)
		}
		target.glyphs = append(target.glyphs, g)
		target.yMin = math.Min(target.yMin, g.Y)
		target.yMax = math.Max(target.yMax, g.Y)
	}

	// PDF coordinates grow upwards
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].yMax > rows[j].yMax
	})

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, joinRow(r.glyphs, opts))
	}
	return lines
}

func joinRow(glyphs []pdf.Text, opts Options) string {
	sort.SliceStable(glyphs, func(i, j int) bool {
		return glyphs[i].X < glyphs[j].X
	})

	var b strings.Builder
	prevEnd := math.Inf(-1)
	for _, g := range glyphs {
		if b.Len() > 0 {
			size := g.FontSize
			if size <= 0 {
				size = 1
			}
			gap := g.X - prevEnd
			switch {
			case gap >= opts.ColumnGap*size:
				b.WriteString(columnDelimiter)
			case gap >= opts.WordGap*size:
				b.WriteByte(' ')
			}
		}
		b.WriteString(g.S)
		prevEnd = math.Max(prevEnd, g.X+g.W)
	}

	return norm.NFC.String(strings.TrimSpace(b.String()))
}
